package core

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/plaggona-server/internal/store"
)

// DefaultSessionTimeout is the inactivity window after which a sweep reclaims a session.
const DefaultSessionTimeout = 5 * time.Minute

// Recorder receives lifecycle entries. Record must not block.
type Recorder interface {
	Record(entry store.Entry)
}

type requestKind int

const (
	requestConnect requestKind = iota
	requestCommand
	requestDisconnect
	requestSweep
	requestQuery
)

type request struct {
	kind   requestKind
	client *Client
	cmd    Command
	query  func()
}

// Hub sequences every state change. All registry, directory and subscription
// access happens on the Run goroutine, one request at a time.
type Hub struct {
	inbox chan request
	done  chan struct{}

	presence *Presence
	rooms    *Directory
	subs     *Subscriptions
	router   *Router

	clock    clock.Clock
	timeout  time.Duration
	recorder Recorder
	log      *zerolog.Logger
}

// Option configures a Hub.
type Option func(*Hub)

// WithClock sets the clock used for LastSeen, chat timestamps and sweeps.
func WithClock(c clock.Clock) Option {
	return func(h *Hub) { h.clock = c }
}

// WithLogger sets the hub logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(h *Hub) { h.log = logger }
}

// WithSessionTimeout sets the inactivity window used by Sweep.
func WithSessionTimeout(d time.Duration) Option {
	return func(h *Hub) {
		if d > 0 {
			h.timeout = d
		}
	}
}

// WithDefaultMaxUsers sets the capacity of created rooms that do not ask for one.
func WithDefaultMaxUsers(n int) Option {
	return func(h *Hub) { h.rooms = NewDirectory(n) }
}

// WithRecorder sets the lifecycle recorder.
func WithRecorder(r Recorder) Option {
	return func(h *Hub) { h.recorder = r }
}

// NewHub creates a hub with an empty agora.
func NewHub(opts ...Option) *Hub {
	nop := zerolog.Nop()
	h := &Hub{
		inbox:    make(chan request, 256),
		done:     make(chan struct{}),
		presence: NewPresence(),
		rooms:    NewDirectory(DefaultMaxUsers),
		subs:     NewSubscriptions(),
		clock:    clock.New(),
		timeout:  DefaultSessionTimeout,
		log:      &nop,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.router = NewRouter(h.subs, h.log)
	return h
}

// Run processes requests until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-h.inbox:
			h.handle(req)
		}
	}
}

// RegisterClient attaches a new connection. The session stays unjoined until join-agora.
func (h *Hub) RegisterClient(c *Client) {
	h.enqueue(request{kind: requestConnect, client: c})
}

// UnregisterClient runs the disconnect transition for the connection and
// closes its event channel.
func (h *Hub) UnregisterClient(c *Client) {
	h.enqueue(request{kind: requestDisconnect, client: c})
}

// Submit queues a client command.
func (h *Hub) Submit(c *Client, cmd Command) {
	h.enqueue(request{kind: requestCommand, client: c, cmd: cmd})
}

// Sweep queues a liveness sweep.
func (h *Hub) Sweep() {
	h.enqueue(request{kind: requestSweep})
}

func (h *Hub) enqueue(req request) {
	select {
	case h.inbox <- req:
	case <-h.done:
	}
}

func (h *Hub) handle(req request) {
	switch req.kind {
	case requestConnect:
		h.subs.Attach(req.client)
		h.log.Debug().Str("session_id", req.client.ID).Msg("client connected")
	case requestCommand:
		h.dispatch(req.client.ID, req.cmd)
	case requestDisconnect:
		h.disconnect(req.client.ID, store.EntrySessionLeft)
		h.release(req.client.ID)
	case requestSweep:
		h.sweep()
	case requestQuery:
		req.query()
	}
}

func (h *Hub) dispatch(id string, cmd Command) {
	if cmd.Kind == CommandJoinAgora {
		h.joinAgora(id, cmd.Profile)
		return
	}

	sess, ok := h.presence.Lookup(id)
	if !ok {
		h.log.Debug().Str("session_id", id).Stringer("command", cmd.Kind).Msg("command from unjoined session dropped")
		return
	}
	h.presence.Touch(id, h.clock.Now())

	switch cmd.Kind {
	case CommandUpdatePosition:
		h.updatePosition(sess, cmd.Position)
	case CommandChatMessage:
		h.chat(sess, cmd.Text)
	case CommandGesture:
		h.gesture(sess, cmd.Gesture)
	case CommandCreateRoom:
		h.createRoom(sess, cmd.Room)
	case CommandJoinRoom:
		h.joinRoom(sess, cmd.RoomID)
	case CommandReturnToAgora:
		h.returnToAgora(sess)
	}
}

func (h *Hub) joinAgora(id string, profile Profile) {
	if _, joined := h.presence.Lookup(id); joined {
		h.log.Debug().Str("session_id", id).Msg("repeated join-agora ignored")
		return
	}
	c, ok := h.subs.Client(id)
	if !ok {
		return
	}

	sess := h.presence.Register(id, profile, h.clock.Now())
	if err := h.rooms.Join(AgoraID, sess); err != nil {
		// The agora always exists and has no capacity.
		h.log.Error().Err(err).Str("session_id", id).Msg("join agora")
		h.presence.Remove(id)
		return
	}
	h.subs.Subscribe(AgoraID, c)

	peers := make([]Session, 0, h.rooms.Agora().Len())
	for _, memberID := range h.rooms.Agora().Members() {
		if memberID == id {
			continue
		}
		if peer, ok := h.presence.Lookup(memberID); ok {
			peers = append(peers, *peer)
		}
	}
	h.router.SendToSession(id, &Event{Kind: EventCurrentUsers, Users: peers})
	h.router.SendToRoom(AgoraID, &Event{Kind: EventUserJoined, User: snapshot(sess)}, id)

	h.record(store.EntrySessionJoined, sess, AgoraID)
	h.log.Info().Str("session_id", id).Str("nickname", sess.Nickname).Msg("joined the agora")
}

func (h *Hub) updatePosition(sess *Session, pos Position) {
	h.presence.UpdatePosition(sess.ID, pos, h.clock.Now())
	h.router.SendToRoom(sess.Room, &Event{Kind: EventUserMoved, Session: sess.ID, Position: pos}, sess.ID)
}

// chat is delivered to the sender as well; movement and gestures are not.
func (h *Hub) chat(sess *Session, text string) {
	h.router.SendToRoom(sess.Room, &Event{
		Kind:    EventChatMessage,
		Session: sess.ID,
		Chat: &ChatMessage{
			From:      sess.ID,
			Nickname:  sess.Nickname,
			Text:      text,
			Position:  sess.Position,
			CreatedAt: h.clock.Now(),
		},
	}, "")
}

func (h *Hub) gesture(sess *Session, gesture string) {
	h.router.SendToRoom(sess.Room, &Event{
		Kind:     EventUserGesture,
		Session:  sess.ID,
		Gesture:  gesture,
		Position: sess.Position,
	}, sess.ID)
}

func (h *Hub) createRoom(sess *Session, req RoomRequest) {
	c, ok := h.subs.Client(sess.ID)
	if !ok {
		return
	}
	prev := sess.Room

	room := h.rooms.Create(req.Name, req.MaxUsers, req.Private, sess.ID)
	sess.Room = room.ID
	h.leave(prev, sess)
	h.subs.Subscribe(room.ID, c)

	h.router.SendToRoom(prev, &Event{Kind: EventUserLeft, Session: sess.ID}, sess.ID)
	info := room.Info()
	h.router.SendToSession(sess.ID, &Event{Kind: EventRoomCreated, Room: &info})

	h.record(store.EntryRoomCreated, sess, room.ID)
	h.log.Info().
		Str("session_id", sess.ID).
		Str("room_id", room.ID).
		Str("room_name", room.Name).
		Int("max_users", room.MaxUsers).
		Msg("room created")
}

func (h *Hub) joinRoom(sess *Session, roomID string) {
	if roomID == sess.Room {
		return
	}
	c, ok := h.subs.Client(sess.ID)
	if !ok {
		return
	}
	prev := sess.Room

	if err := h.rooms.Join(roomID, sess); err != nil {
		h.log.Debug().Err(err).Str("session_id", sess.ID).Str("room_id", roomID).Msg("join-room refused")
		return
	}
	h.leave(prev, sess)
	h.subs.Subscribe(roomID, c)

	h.router.SendToRoom(prev, &Event{Kind: EventUserLeft, Session: sess.ID}, sess.ID)
	h.router.SendToRoom(roomID, &Event{Kind: EventUserJoined, User: snapshot(sess)}, sess.ID)
	h.router.SendToSession(sess.ID, &Event{Kind: EventRoomJoined, RoomID: roomID})

	h.log.Debug().Str("session_id", sess.ID).Str("from", prev).Str("room_id", roomID).Msg("joined room")
}

func (h *Hub) returnToAgora(sess *Session) {
	if sess.Room == AgoraID {
		return
	}
	c, ok := h.subs.Client(sess.ID)
	if !ok {
		return
	}
	prev := sess.Room

	h.leave(prev, sess)
	if err := h.rooms.Join(AgoraID, sess); err != nil {
		h.log.Error().Err(err).Str("session_id", sess.ID).Msg("return to agora")
		return
	}
	h.subs.Subscribe(AgoraID, c)

	h.router.SendToRoom(prev, &Event{Kind: EventUserLeft, Session: sess.ID}, sess.ID)
	h.router.SendToRoom(AgoraID, &Event{Kind: EventUserJoined, User: snapshot(sess)}, sess.ID)

	h.log.Debug().Str("session_id", sess.ID).Str("from", prev).Msg("returned to agora")
}

// disconnect is the only teardown path, shared by connection close and sweep.
func (h *Hub) disconnect(id string, reason store.EntryKind) {
	sess, ok := h.presence.Lookup(id)
	if !ok {
		return
	}
	prev := sess.Room

	h.leave(prev, sess)
	if c, ok := h.subs.Client(id); ok {
		h.subs.UnsubscribeAll(c)
	}
	h.router.SendToRoom(prev, &Event{Kind: EventUserLeft, Session: id}, id)
	h.presence.Remove(id)

	h.record(reason, sess, prev)
	h.log.Info().Str("session_id", id).Str("nickname", sess.Nickname).Str("reason", string(reason)).Msg("left the metaverse")
}

// release forgets the connection and closes its event channel exactly once.
func (h *Hub) release(id string) {
	if c, ok := h.subs.Detach(id); ok {
		close(c.Events)
	}
}

func (h *Hub) sweep() {
	now := h.clock.Now()
	expired := 0
	for _, sess := range h.presence.All() {
		if now.Sub(sess.LastSeen) <= h.timeout {
			continue
		}
		h.log.Info().Str("session_id", sess.ID).Str("nickname", sess.Nickname).Time("last_seen", sess.LastSeen).Msg("cleaning up inactive user")
		h.disconnect(sess.ID, store.EntrySessionExpired)
		h.release(sess.ID)
		expired++
	}
	if expired > 0 {
		h.log.Info().Int("expired", expired).Int("remaining", h.presence.Len()).Msg("liveness sweep completed")
	}
}

// leave removes the session from a room, deleting a created room that empties.
func (h *Hub) leave(roomID string, sess *Session) {
	if h.rooms.Leave(roomID, sess.ID) {
		h.record(store.EntryRoomDeleted, sess, roomID)
		h.log.Debug().Str("room_id", roomID).Msg("room deleted")
	}
}

func (h *Hub) record(kind store.EntryKind, sess *Session, roomID string) {
	if h.recorder == nil {
		return
	}
	h.recorder.Record(store.Entry{
		Kind:      kind,
		SessionID: sess.ID,
		Nickname:  sess.Nickname,
		RoomID:    roomID,
		At:        h.clock.Now(),
	})
}

func snapshot(sess *Session) *Session {
	cp := *sess
	return &cp
}
