package store

import (
	"context"
	"time"
)

// EntryKind names a lifecycle fact recorded in the journal.
type EntryKind string

const (
	EntrySessionJoined  EntryKind = "session_joined"
	EntrySessionLeft    EntryKind = "session_left"
	EntrySessionExpired EntryKind = "session_expired"
	EntryRoomCreated    EntryKind = "room_created"
	EntryRoomDeleted    EntryKind = "room_deleted"
)

// Entry is one journal record.
type Entry struct {
	ID        int64
	Kind      EntryKind
	SessionID string
	Nickname  string
	RoomID    string
	At        time.Time
}

// Journal is an append-only activity log. It is never read back into live state.
type Journal interface {
	// Append persists an entry and sets its ID.
	Append(ctx context.Context, entry *Entry) error

	// Recent returns up to limit entries, newest first.
	Recent(ctx context.Context, limit int) ([]*Entry, error)

	// Close closes the underlying database connection.
	Close() error
}
