package core

import (
	"context"
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

// expectNoEvent fails if an event of the given kind shows up within wait.
// Other kinds are consumed and ignored.
func expectNoEvent(t *testing.T, ch <-chan *Event, kind EventKind, wait time.Duration) {
	t.Helper()

	timer := time.NewTimer(wait)
	defer timer.Stop()
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event %v: %+v", kind, ev)
			}
		case <-timer.C:
			return
		}
	}
}

func startHub(t *testing.T, opts ...Option) *Hub {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	hub := NewHub(opts...)
	go hub.Run(ctx)
	return hub
}

// joinAgora connects a client, joins it to the agora and returns it with the
// current-users snapshot it received.
func joinAgora(t *testing.T, hub *Hub, id, nickname string) (*Client, []Session) {
	t.Helper()

	c := NewClient(id, 32)
	hub.RegisterClient(c)
	hub.Submit(c, Command{Kind: CommandJoinAgora, Profile: Profile{Nickname: nickname}})
	ev := mustEvent(t, c.Events, EventCurrentUsers)
	return c, ev.Users
}

// barrier returns once every request queued before it has been handled.
func barrier(t *testing.T, hub *Hub) Stats {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	st, err := hub.Stats(ctx)
	if err != nil {
		t.Fatalf("hub stats: %v", err)
	}
	return st
}

func sessionRoom(t *testing.T, hub *Hub, id string) string {
	t.Helper()

	users, err := hub.Users(context.Background())
	if err != nil {
		t.Fatalf("hub users: %v", err)
	}
	for _, u := range users {
		if u.ID == id {
			return u.Room
		}
	}
	t.Fatalf("session %s not found", id)
	return ""
}

func roomByID(t *testing.T, hub *Hub, id string) (RoomInfo, bool) {
	t.Helper()

	rooms, err := hub.Rooms(context.Background())
	if err != nil {
		t.Fatalf("hub rooms: %v", err)
	}
	for _, r := range rooms {
		if r.ID == id {
			return r, true
		}
	}
	return RoomInfo{}, false
}

func createRoom(t *testing.T, hub *Hub, c *Client, name string, maxUsers int) RoomInfo {
	t.Helper()

	hub.Submit(c, Command{Kind: CommandCreateRoom, Room: RoomRequest{Name: name, MaxUsers: maxUsers}})
	ev := mustEvent(t, c.Events, EventRoomCreated)
	return *ev.Room
}
