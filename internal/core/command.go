package core

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandJoinAgora registers the session and places it in the agora.
	CommandJoinAgora CommandKind = iota
	// CommandUpdatePosition overwrites the session position.
	CommandUpdatePosition
	// CommandChatMessage sends a chat line to the current room.
	CommandChatMessage
	// CommandGesture plays a gesture for the current room.
	CommandGesture
	// CommandCreateRoom creates a room and moves the creator into it.
	CommandCreateRoom
	// CommandJoinRoom moves the session into an existing room.
	CommandJoinRoom
	// CommandReturnToAgora moves the session back to the agora.
	CommandReturnToAgora
)

func (k CommandKind) String() string {
	switch k {
	case CommandJoinAgora:
		return "join-agora"
	case CommandUpdatePosition:
		return "update-position"
	case CommandChatMessage:
		return "chat-message"
	case CommandGesture:
		return "gesture"
	case CommandCreateRoom:
		return "create-room"
	case CommandJoinRoom:
		return "join-room"
	case CommandReturnToAgora:
		return "return-to-agora"
	default:
		return "unknown"
	}
}

// Profile carries the client supplied identity for join-agora.
// Empty fields are defaulted by the presence registry.
type Profile struct {
	Nickname   string
	Appearance Appearance
}

// RoomRequest carries the parameters of create-room.
type RoomRequest struct {
	Name     string
	MaxUsers int
	Private  bool
}

// Command represents an action requested by a client.
type Command struct {
	Kind     CommandKind
	Profile  Profile
	Position Position
	Text     string
	Gesture  string
	Room     RoomRequest
	RoomID   string
}
