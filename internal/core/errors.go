package core

import "errors"

// Error codes for protocol errors reported by the gateway.
const (
	ErrCodeBadRequest     = "bad_request"
	ErrCodeInvalidMessage = "invalid_message"
)

var (
	// ErrRoomNotFound is returned when a room id does not resolve.
	ErrRoomNotFound = errors.New("room not found")
	// ErrRoomFull is returned when a room is at capacity.
	ErrRoomFull = errors.New("room is full")
	// ErrHubStopped is returned by queries once the hub run loop has exited.
	ErrHubStopped = errors.New("hub stopped")
)
