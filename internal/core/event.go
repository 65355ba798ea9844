package core

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventCurrentUsers delivers the agora snapshot to a joiner.
	EventCurrentUsers EventKind = iota
	// EventUserJoined notifies room peers about a new member.
	EventUserJoined
	// EventUserLeft notifies room peers that a member is gone.
	EventUserLeft
	// EventUserMoved notifies room peers about a position change.
	EventUserMoved
	// EventChatMessage carries a chat line to the whole room.
	EventChatMessage
	// EventUserGesture notifies room peers about a gesture.
	EventUserGesture
	// EventRoomCreated confirms room creation to its creator.
	EventRoomCreated
	// EventRoomJoined confirms a successful join-room to the joiner.
	EventRoomJoined
)

func (k EventKind) String() string {
	switch k {
	case EventCurrentUsers:
		return "current-users"
	case EventUserJoined:
		return "user-joined"
	case EventUserLeft:
		return "user-left"
	case EventUserMoved:
		return "user-moved"
	case EventChatMessage:
		return "chat-message"
	case EventUserGesture:
		return "user-gesture"
	case EventRoomCreated:
		return "room-created"
	case EventRoomJoined:
		return "room-joined"
	default:
		return "unknown"
	}
}

// Event is sent to clients to describe what happened in the system.
// Events are shared between recipients and must not be modified after send.
type Event struct {
	Kind     EventKind
	Session  string    // subject session for left/moved/gesture
	User     *Session  // EventUserJoined
	Users    []Session // EventCurrentUsers
	Position Position
	Gesture  string
	Chat     *ChatMessage
	Room     *RoomInfo // EventRoomCreated
	RoomID   string    // EventRoomJoined
}
