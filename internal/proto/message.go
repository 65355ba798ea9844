package proto

import (
	"bytes"
	"encoding/json"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

const (
	InboundTypeJoinAgora      = "join-agora"
	InboundTypeUpdatePosition = "update-position"
	InboundTypeChatMessage    = "chat-message"
	InboundTypeGesture        = "gesture"
	InboundTypeCreateRoom     = "create-room"
	InboundTypeJoinRoom       = "join-room"
	InboundTypeReturnToAgora  = "return-to-agora"

	OutboundTypeEvent = "event"
	OutboundTypeError = "error"

	EventCurrentUsers = "current-users"
	EventUserJoined   = "user-joined"
	EventUserLeft     = "user-left"
	EventUserMoved    = "user-moved"
	EventChatMessage  = "chat-message"
	EventUserGesture  = "user-gesture"
	EventRoomCreated  = "room-created"
	EventRoomJoined   = "room-joined"
)

// JoinAgoraData introduces the participant. Every field is optional.
type JoinAgoraData struct {
	Nickname   string `json:"nickname,omitempty"`
	ClothColor string `json:"clothColor,omitempty"`
	SkinTone   string `json:"skinTone,omitempty"`
	Accessory  string `json:"accessory,omitempty"`
}

// Position is a point in the shared world.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ChatData is a chat line from the client.
type ChatData struct {
	Text string `json:"text"`
}

// GestureData names the gesture to play.
type GestureData struct {
	Type string `json:"type"`
}

// CreateRoomData requests a new room.
type CreateRoomData struct {
	Name     string `json:"name"`
	MaxUsers int    `json:"maxUsers,omitempty"`
	Private  bool   `json:"private,omitempty"`
}

// JoinRoomData requests to move into a room. Clients may send either
// {"roomId": "..."} or the bare id string.
type JoinRoomData struct {
	RoomID string `json:"roomId"`
}

// UnmarshalJSON accepts both the object and the bare string form.
func (d *JoinRoomData) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		return json.Unmarshal(b, &d.RoomID)
	}
	type plain JoinRoomData
	var p plain
	if err := json.Unmarshal(b, &p); err != nil {
		return err
	}
	*d = JoinRoomData(p)
	return nil
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// Appearance is the cosmetic attribute bag of a user.
type Appearance struct {
	ClothColor string `json:"clothColor"`
	SkinTone   string `json:"skinTone"`
	Accessory  string `json:"accessory"`
}

// User is the public view of a session.
type User struct {
	ID         string     `json:"id"`
	Nickname   string     `json:"nickname"`
	Position   Position   `json:"position"`
	Appearance Appearance `json:"appearance"`
	Room       string     `json:"room"`
	LastSeen   int64      `json:"lastSeen"`
}

// Room is the public view of a room.
type Room struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Creator  string   `json:"creator,omitempty"`
	MaxUsers int      `json:"maxUsers,omitempty"`
	Private  bool     `json:"private"`
	Members  []string `json:"members"`
}

// EventUserMovedData notifies that a user moved.
type EventUserMovedData struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
}

// EventChatMessageData is a chat line relayed to a room.
type EventChatMessageData struct {
	UserID    string   `json:"userId"`
	Nickname  string   `json:"nickname"`
	Message   string   `json:"message"`
	Timestamp int64    `json:"timestamp"`
	Position  Position `json:"position"`
}

// EventUserGestureData notifies that a user played a gesture.
type EventUserGestureData struct {
	UserID   string   `json:"userId"`
	Gesture  string   `json:"gesture"`
	Position Position `json:"position"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
