package core

import "time"

// ChatMessage is the domain model for a chat line relayed to a room.
type ChatMessage struct {
	From      string
	Nickname  string
	Text      string
	Position  Position
	CreatedAt time.Time
}
