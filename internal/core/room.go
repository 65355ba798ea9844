package core

import (
	"sort"

	"github.com/google/uuid"
)

const (
	// AgoraID is the id of the permanent default room.
	AgoraID = "agora"
	// DefaultMaxUsers caps created rooms when the request does not.
	DefaultMaxUsers = 10
)

// Room groups sessions that share one broadcast scope.
type Room struct {
	ID       string
	Name     string
	Creator  string
	MaxUsers int
	Private  bool // informational only
	members  map[string]struct{}
}

func newRoom(id, name, creator string, maxUsers int, private bool) *Room {
	return &Room{
		ID:       id,
		Name:     name,
		Creator:  creator,
		MaxUsers: maxUsers,
		Private:  private,
		members:  make(map[string]struct{}),
	}
}

// IsAgora reports whether the room is the permanent default room.
func (r *Room) IsAgora() bool {
	return r.ID == AgoraID
}

// Has reports whether the session is a member.
func (r *Room) Has(sessionID string) bool {
	_, ok := r.members[sessionID]
	return ok
}

// Len returns the member count.
func (r *Room) Len() int {
	return len(r.members)
}

// Empty returns true if no sessions are in the room.
func (r *Room) Empty() bool {
	return len(r.members) == 0
}

// Members returns member ids in sorted order.
func (r *Room) Members() []string {
	out := make([]string, 0, len(r.members))
	for id := range r.members {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Info returns a detached copy safe to hand to other goroutines.
func (r *Room) Info() RoomInfo {
	return RoomInfo{
		ID:       r.ID,
		Name:     r.Name,
		Creator:  r.Creator,
		MaxUsers: r.MaxUsers,
		Private:  r.Private,
		Members:  r.Members(),
	}
}

// RoomInfo is a read-only snapshot of a room.
type RoomInfo struct {
	ID       string
	Name     string
	Creator  string
	MaxUsers int
	Private  bool
	Members  []string
}

// Directory stores rooms by id and always holds the agora. It is not safe for
// concurrent use; the hub goroutine is its only caller.
type Directory struct {
	rooms           map[string]*Room
	defaultMaxUsers int
	newID           func() string
}

// NewDirectory creates a directory holding only the agora.
func NewDirectory(defaultMaxUsers int) *Directory {
	if defaultMaxUsers <= 0 {
		defaultMaxUsers = DefaultMaxUsers
	}
	d := &Directory{
		rooms:           make(map[string]*Room),
		defaultMaxUsers: defaultMaxUsers,
		newID:           uuid.NewString,
	}
	d.rooms[AgoraID] = newRoom(AgoraID, "Agora", "", 0, false)
	return d
}

// Agora returns the default room.
func (d *Directory) Agora() *Room {
	return d.rooms[AgoraID]
}

// Get returns the room with the given id.
func (d *Directory) Get(id string) (*Room, bool) {
	r, ok := d.rooms[id]
	return r, ok
}

// Create allocates a room whose only member is the creator. The creator is not
// removed from its previous room here.
func (d *Directory) Create(name string, maxUsers int, private bool, creatorID string) *Room {
	if maxUsers <= 0 {
		maxUsers = d.defaultMaxUsers
	}
	r := newRoom(d.newID(), name, creatorID, maxUsers, private)
	r.members[creatorID] = struct{}{}
	d.rooms[r.ID] = r
	return r
}

// Join adds the session to the room and points the session at it. The
// capacity check and the insert are one step.
func (d *Directory) Join(roomID string, sess *Session) error {
	r, ok := d.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}
	if !r.IsAgora() && !r.Has(sess.ID) && len(r.members) >= r.MaxUsers {
		return ErrRoomFull
	}
	r.members[sess.ID] = struct{}{}
	sess.Room = roomID
	return nil
}

// Leave removes the session from the room and deletes a created room that
// became empty. It reports whether the room was deleted.
func (d *Directory) Leave(roomID, sessionID string) bool {
	r, ok := d.rooms[roomID]
	if !ok {
		return false
	}
	delete(r.members, sessionID)
	if r.Empty() && !r.IsAgora() {
		delete(d.rooms, roomID)
		return true
	}
	return false
}

// All returns every room, agora first, the rest ordered by id.
func (d *Directory) All() []*Room {
	out := make([]*Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		if !r.IsAgora() {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return append([]*Room{d.Agora()}, out...)
}

// Len returns the number of rooms including the agora.
func (d *Directory) Len() int {
	return len(d.rooms)
}
