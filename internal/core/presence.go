package core

import (
	"math/rand"
	"sort"
	"strconv"
	"time"
)

const (
	spawnExtent      = 50.0
	defaultSkinTone  = "default"
	defaultAccessory = "none"
)

var clothPalette = []string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#96CEB4", "#FFEAA7",
	"#DDA0DD", "#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E9",
}

// Position is a point in the shared world.
type Position struct {
	X float64
	Y float64
	Z float64
}

// Appearance is the cosmetic attribute bag of a participant.
type Appearance struct {
	ClothColor string
	SkinTone   string
	Accessory  string
}

// Session is the live state of one joined participant.
type Session struct {
	ID         string
	Nickname   string
	Position   Position
	Appearance Appearance
	Room       string
	LastSeen   time.Time
}

// Presence stores joined sessions by id. It is not safe for concurrent use;
// the hub goroutine is its only caller.
type Presence struct {
	sessions map[string]*Session
	spawn    func() Position
	pick     func(n int) int
}

// NewPresence creates an empty registry.
func NewPresence() *Presence {
	return &Presence{
		sessions: make(map[string]*Session),
		spawn:    randomSpawn,
		pick:     rand.Intn,
	}
}

func randomSpawn() Position {
	return Position{
		X: rand.Float64()*2*spawnExtent - spawnExtent,
		Y: 0,
		Z: rand.Float64()*2*spawnExtent - spawnExtent,
	}
}

// Register applies defaults to the profile and inserts a session placed in the agora.
func (p *Presence) Register(id string, profile Profile, now time.Time) *Session {
	nickname := profile.Nickname
	if nickname == "" {
		nickname = "Plaggona_" + strconv.Itoa(p.pick(1000))
	}

	appearance := profile.Appearance
	if appearance.ClothColor == "" {
		appearance.ClothColor = clothPalette[p.pick(len(clothPalette))]
	}
	if appearance.SkinTone == "" {
		appearance.SkinTone = defaultSkinTone
	}
	if appearance.Accessory == "" {
		appearance.Accessory = defaultAccessory
	}

	sess := &Session{
		ID:         id,
		Nickname:   nickname,
		Position:   p.spawn(),
		Appearance: appearance,
		Room:       AgoraID,
		LastSeen:   now,
	}
	p.sessions[id] = sess
	return sess
}

// Lookup returns the session for id. A missing session is a normal case.
func (p *Presence) Lookup(id string) (*Session, bool) {
	sess, ok := p.sessions[id]
	return sess, ok
}

// UpdatePosition overwrites the position and refreshes LastSeen.
func (p *Presence) UpdatePosition(id string, pos Position, now time.Time) bool {
	sess, ok := p.sessions[id]
	if !ok {
		return false
	}
	sess.Position = pos
	sess.LastSeen = now
	return true
}

// Touch refreshes LastSeen.
func (p *Presence) Touch(id string, now time.Time) {
	if sess, ok := p.sessions[id]; ok {
		sess.LastSeen = now
	}
}

// Remove deletes the session record.
func (p *Presence) Remove(id string) {
	delete(p.sessions, id)
}

// All returns the sessions ordered by id.
func (p *Presence) All() []*Session {
	out := make([]*Session, 0, len(p.sessions))
	for _, sess := range p.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of sessions.
func (p *Presence) Len() int {
	return len(p.sessions)
}
