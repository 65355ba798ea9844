package core

import "github.com/rs/zerolog"

// Router delivers events to room subscribers or to one session. Delivery is
// best effort: a subscriber whose buffer is full misses the event.
type Router struct {
	subs *Subscriptions
	log  *zerolog.Logger
}

// NewRouter creates a router over the subscription table.
func NewRouter(subs *Subscriptions, logger *zerolog.Logger) *Router {
	return &Router{subs: subs, log: logger}
}

// SendToRoom delivers to every subscriber of the room except excludeID and
// returns the number of clients that accepted the event.
func (r *Router) SendToRoom(roomID string, ev *Event, excludeID string) int {
	sent := 0
	for c := range r.subs.Subscribers(roomID) {
		if c.ID == excludeID {
			continue
		}
		if r.deliver(c, ev) {
			sent++
		}
	}
	return sent
}

// SendToSession delivers to exactly one connection.
func (r *Router) SendToSession(id string, ev *Event) bool {
	c, ok := r.subs.Client(id)
	if !ok {
		return false
	}
	return r.deliver(c, ev)
}

func (r *Router) deliver(c *Client, ev *Event) bool {
	select {
	case c.Events <- ev:
		return true
	default:
		// Drop if slow consumer.
		r.log.Debug().Str("session_id", c.ID).Stringer("event", ev.Kind).Msg("event dropped, client buffer full")
		return false
	}
}
