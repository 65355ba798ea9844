package utils

import "github.com/google/uuid"

// NewSessionID returns the identifier the gateway assigns to a new connection.
func NewSessionID() string {
	return uuid.NewString()
}
