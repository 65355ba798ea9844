package http

import (
	"encoding/json"
	"testing"

	"github.com/coder/websocket"

	"github.com/vovakirdan/plaggona-server/internal/core"
	"github.com/vovakirdan/plaggona-server/internal/proto"
)

func TestWebSocketJoinAndChat(t *testing.T) {
	ts := startTestServer(t, nil)
	ctx := testContext(t)

	connA := dial(ctx, t, ts)
	connB := dial(ctx, t, ts)

	if users := joinAgora(ctx, t, connA, "alice"); len(users) != 0 {
		t.Fatalf("first joiner expected empty snapshot, got %+v", users)
	}
	users := joinAgora(ctx, t, connB, "bob")
	if len(users) != 1 || users[0].Nickname != "alice" || users[0].Room != core.AgoraID {
		t.Fatalf("unexpected snapshot for bob: %+v", users)
	}

	f := readUntil(ctx, t, connA, isEvent(proto.EventUserJoined))
	var bob proto.User
	if err := json.Unmarshal(f.Data, &bob); err != nil {
		t.Fatalf("decode user-joined: %v", err)
	}
	if bob.Nickname != "bob" || bob.ID == "" || bob.LastSeen == 0 {
		t.Fatalf("unexpected user-joined payload: %+v", bob)
	}

	send(ctx, t, connA, proto.InboundTypeChatMessage, proto.ChatData{Text: "hi there"})

	for _, conn := range []*websocket.Conn{connA, connB} {
		f := readUntil(ctx, t, conn, isEvent(proto.EventChatMessage))
		var chat proto.EventChatMessageData
		if err := json.Unmarshal(f.Data, &chat); err != nil {
			t.Fatalf("decode chat-message: %v", err)
		}
		if chat.Nickname != "alice" || chat.Message != "hi there" || chat.Timestamp == 0 {
			t.Fatalf("unexpected chat payload: %+v", chat)
		}
	}
}

func TestWebSocketPositionUpdateReachesPeers(t *testing.T) {
	ts := startTestServer(t, nil)
	ctx := testContext(t)

	connA := dial(ctx, t, ts)
	connB := dial(ctx, t, ts)
	joinAgora(ctx, t, connA, "alice")
	joinAgora(ctx, t, connB, "bob")
	readUntil(ctx, t, connA, isEvent(proto.EventUserJoined))

	send(ctx, t, connB, proto.InboundTypeUpdatePosition, proto.Position{X: 1, Y: 2, Z: 3})

	f := readUntil(ctx, t, connA, isEvent(proto.EventUserMoved))
	var moved proto.EventUserMovedData
	if err := json.Unmarshal(f.Data, &moved); err != nil {
		t.Fatalf("decode user-moved: %v", err)
	}
	if moved.Position != (proto.Position{X: 1, Y: 2, Z: 3}) {
		t.Fatalf("unexpected position: %+v", moved.Position)
	}
}

func TestWebSocketCreateAndJoinRoomByBareID(t *testing.T) {
	ts := startTestServer(t, nil)
	ctx := testContext(t)

	connA := dial(ctx, t, ts)
	connB := dial(ctx, t, ts)
	joinAgora(ctx, t, connA, "alice")
	joinAgora(ctx, t, connB, "bob")
	readUntil(ctx, t, connA, isEvent(proto.EventUserJoined))

	send(ctx, t, connA, proto.InboundTypeCreateRoom, proto.CreateRoomData{Name: "lounge", MaxUsers: 2})
	f := readUntil(ctx, t, connA, isEvent(proto.EventRoomCreated))
	var room proto.Room
	if err := json.Unmarshal(f.Data, &room); err != nil {
		t.Fatalf("decode room-created: %v", err)
	}
	if room.Name != "lounge" || room.MaxUsers != 2 || len(room.Members) != 1 {
		t.Fatalf("unexpected room: %+v", room)
	}

	// join-room also accepts the bare id string as its payload.
	send(ctx, t, connB, proto.InboundTypeJoinRoom, room.ID)

	f = readUntil(ctx, t, connB, isEvent(proto.EventRoomJoined))
	var joined string
	if err := json.Unmarshal(f.Data, &joined); err != nil {
		t.Fatalf("decode room-joined: %v", err)
	}
	if joined != room.ID {
		t.Fatalf("room-joined = %q, want %q", joined, room.ID)
	}

	f = readUntil(ctx, t, connA, isEvent(proto.EventUserJoined))
	var peer proto.User
	if err := json.Unmarshal(f.Data, &peer); err != nil {
		t.Fatalf("decode user-joined: %v", err)
	}
	if peer.Nickname != "bob" || peer.Room != room.ID {
		t.Fatalf("unexpected peer in room: %+v", peer)
	}
}

func TestWebSocketProtocolErrorsKeepConnectionOpen(t *testing.T) {
	ts := startTestServer(t, nil)
	ctx := testContext(t)

	conn := dial(ctx, t, ts)

	if err := conn.Write(ctx, websocket.MessageText, []byte("not json")); err != nil {
		t.Fatalf("write raw: %v", err)
	}
	f := readUntil(ctx, t, conn, isError)
	if f.Error.Code != core.ErrCodeInvalidMessage {
		t.Fatalf("malformed envelope: code = %q", f.Error.Code)
	}

	send(ctx, t, conn, "teleport", nil)
	f = readUntil(ctx, t, conn, isError)
	if f.Error.Code != core.ErrCodeInvalidMessage {
		t.Fatalf("unknown type: code = %q", f.Error.Code)
	}

	send(ctx, t, conn, proto.InboundTypeJoinRoom, proto.JoinRoomData{})
	f = readUntil(ctx, t, conn, isError)
	if f.Error.Code != core.ErrCodeBadRequest {
		t.Fatalf("missing roomId: code = %q", f.Error.Code)
	}

	// The session is still usable.
	joinAgora(ctx, t, conn, "carol")
}

func TestWebSocketDisconnectNotifiesPeers(t *testing.T) {
	ts := startTestServer(t, nil)
	ctx := testContext(t)

	connA := dial(ctx, t, ts)
	connB := dial(ctx, t, ts)
	joinAgora(ctx, t, connA, "alice")
	joinAgora(ctx, t, connB, "bob")

	f := readUntil(ctx, t, connA, isEvent(proto.EventUserJoined))
	var bob proto.User
	if err := json.Unmarshal(f.Data, &bob); err != nil {
		t.Fatalf("decode user-joined: %v", err)
	}

	connB.Close(websocket.StatusNormalClosure, "bye")

	f = readUntil(ctx, t, connA, isEvent(proto.EventUserLeft))
	var left string
	if err := json.Unmarshal(f.Data, &left); err != nil {
		t.Fatalf("decode user-left: %v", err)
	}
	if left != bob.ID {
		t.Fatalf("user-left = %q, want %q", left, bob.ID)
	}
}

func TestWebSocketEmptyChatAndGestureAreDropped(t *testing.T) {
	ts := startTestServer(t, nil)
	ctx := testContext(t)

	conn := dial(ctx, t, ts)
	joinAgora(ctx, t, conn, "alice")

	send(ctx, t, conn, proto.InboundTypeChatMessage, proto.ChatData{Text: "   "})
	send(ctx, t, conn, proto.InboundTypeGesture, proto.GestureData{})
	send(ctx, t, conn, proto.InboundTypeChatMessage, proto.ChatData{Text: "real"})

	// Nothing is answered for the empty messages, so the next frame is the relayed chat.
	f := readUntil(ctx, t, conn, func(frame) bool { return true })
	if f.Type != proto.OutboundTypeEvent || f.Event != proto.EventChatMessage {
		t.Fatalf("expected chat-message, got %+v", f)
	}
	var chat proto.EventChatMessageData
	if err := json.Unmarshal(f.Data, &chat); err != nil {
		t.Fatalf("decode chat-message: %v", err)
	}
	if chat.Message != "real" {
		t.Fatalf("message = %q, want real", chat.Message)
	}
}
