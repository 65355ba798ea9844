package core

import "context"

// Stats is a point-in-time count of live state.
type Stats struct {
	Users int
	Rooms int
}

// Users returns a copy of every joined session.
func (h *Hub) Users(ctx context.Context) ([]Session, error) {
	return query(ctx, h, func() []Session {
		all := h.presence.All()
		users := make([]Session, 0, len(all))
		for _, sess := range all {
			users = append(users, *sess)
		}
		return users
	})
}

// Rooms returns a snapshot of every room, the agora first.
func (h *Hub) Rooms(ctx context.Context) ([]RoomInfo, error) {
	return query(ctx, h, func() []RoomInfo {
		all := h.rooms.All()
		rooms := make([]RoomInfo, 0, len(all))
		for _, r := range all {
			rooms = append(rooms, r.Info())
		}
		return rooms
	})
}

// Stats returns the current session and room counts.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	return query(ctx, h, func() Stats {
		return Stats{Users: h.presence.Len(), Rooms: h.rooms.Len()}
	})
}

// query runs fn on the hub goroutine and hands its result back over a channel.
// The caller never shares memory with fn, so giving up early is safe.
func query[T any](ctx context.Context, h *Hub, fn func() T) (T, error) {
	var zero T
	result := make(chan T, 1)
	req := request{kind: requestQuery, query: func() {
		result <- fn()
	}}

	select {
	case h.inbox <- req:
	case <-h.done:
		return zero, ErrHubStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}

	select {
	case v := <-result:
		return v, nil
	case <-h.done:
		return zero, ErrHubStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}
