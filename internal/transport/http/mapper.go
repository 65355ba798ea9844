package http

import (
	"encoding/json"
	"strings"

	"github.com/vovakirdan/plaggona-server/internal/core"
	"github.com/vovakirdan/plaggona-server/internal/proto"
)

func badRequest(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeBadRequest, Msg: msg}
}

func invalidMessage(msg string) *proto.Error {
	return &proto.Error{Code: core.ErrCodeInvalidMessage, Msg: msg}
}

// hasData reports whether the envelope carries a payload other than null.
func hasData(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s != "" && s != "null"
}

// decode unmarshals the envelope payload into v. A missing payload is
// accepted only when optional is set.
func decode(inbound proto.Inbound, v any, optional bool) *proto.Error {
	if !hasData(inbound.Data) {
		if optional {
			return nil
		}
		return badRequest(inbound.Type + " requires data")
	}
	if err := json.Unmarshal(inbound.Data, v); err != nil {
		return invalidMessage("malformed " + inbound.Type + " payload")
	}
	return nil
}

// inboundToCommand maps an envelope to a hub command. The bool is false when the
// message is dropped: silently for empty chat lines and gestures, otherwise
// with the returned protocol error.
func inboundToCommand(inbound proto.Inbound) (core.Command, bool, *proto.Error) {
	switch inbound.Type {
	case proto.InboundTypeJoinAgora:
		var join proto.JoinAgoraData
		if perr := decode(inbound, &join, true); perr != nil {
			return core.Command{}, false, perr
		}
		return core.Command{
			Kind: core.CommandJoinAgora,
			Profile: core.Profile{
				Nickname: strings.TrimSpace(join.Nickname),
				Appearance: core.Appearance{
					ClothColor: join.ClothColor,
					SkinTone:   join.SkinTone,
					Accessory:  join.Accessory,
				},
			},
		}, true, nil
	case proto.InboundTypeUpdatePosition:
		var pos proto.Position
		if perr := decode(inbound, &pos, false); perr != nil {
			return core.Command{}, false, perr
		}
		return core.Command{
			Kind:     core.CommandUpdatePosition,
			Position: positionFromProto(pos),
		}, true, nil
	case proto.InboundTypeChatMessage:
		var chat proto.ChatData
		if perr := decode(inbound, &chat, false); perr != nil {
			return core.Command{}, false, perr
		}
		if strings.TrimSpace(chat.Text) == "" {
			return core.Command{}, false, nil
		}
		return core.Command{
			Kind: core.CommandChatMessage,
			Text: chat.Text,
		}, true, nil
	case proto.InboundTypeGesture:
		var gesture proto.GestureData
		if perr := decode(inbound, &gesture, false); perr != nil {
			return core.Command{}, false, perr
		}
		if gesture.Type == "" {
			return core.Command{}, false, nil
		}
		return core.Command{
			Kind:    core.CommandGesture,
			Gesture: gesture.Type,
		}, true, nil
	case proto.InboundTypeCreateRoom:
		var room proto.CreateRoomData
		if perr := decode(inbound, &room, true); perr != nil {
			return core.Command{}, false, perr
		}
		if room.MaxUsers < 0 {
			return core.Command{}, false, badRequest("maxUsers must not be negative")
		}
		return core.Command{
			Kind: core.CommandCreateRoom,
			Room: core.RoomRequest{
				Name:     strings.TrimSpace(room.Name),
				MaxUsers: room.MaxUsers,
				Private:  room.Private,
			},
		}, true, nil
	case proto.InboundTypeJoinRoom:
		var join proto.JoinRoomData
		if perr := decode(inbound, &join, false); perr != nil {
			return core.Command{}, false, perr
		}
		if join.RoomID == "" {
			return core.Command{}, false, badRequest("roomId is required")
		}
		return core.Command{
			Kind:   core.CommandJoinRoom,
			RoomID: join.RoomID,
		}, true, nil
	case proto.InboundTypeReturnToAgora:
		return core.Command{Kind: core.CommandReturnToAgora}, true, nil
	default:
		return core.Command{}, false, invalidMessage("unknown message type")
	}
}

func outboundFromEvent(ev *core.Event) proto.Outbound {
	out := proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: ev.Kind.String(),
	}

	switch ev.Kind {
	case core.EventCurrentUsers:
		users := make([]proto.User, 0, len(ev.Users))
		for i := range ev.Users {
			users = append(users, userToProto(&ev.Users[i]))
		}
		out.Data = users
	case core.EventUserJoined:
		if ev.User != nil {
			out.Data = userToProto(ev.User)
		}
	case core.EventUserLeft:
		out.Data = ev.Session
	case core.EventUserMoved:
		out.Data = proto.EventUserMovedData{
			ID:       ev.Session,
			Position: positionToProto(ev.Position),
		}
	case core.EventChatMessage:
		if ev.Chat != nil {
			out.Data = proto.EventChatMessageData{
				UserID:    ev.Chat.From,
				Nickname:  ev.Chat.Nickname,
				Message:   ev.Chat.Text,
				Timestamp: ev.Chat.CreatedAt.UnixMilli(),
				Position:  positionToProto(ev.Chat.Position),
			}
		}
	case core.EventUserGesture:
		out.Data = proto.EventUserGestureData{
			UserID:   ev.Session,
			Gesture:  ev.Gesture,
			Position: positionToProto(ev.Position),
		}
	case core.EventRoomCreated:
		if ev.Room != nil {
			out.Data = roomToProto(ev.Room)
		}
	case core.EventRoomJoined:
		out.Data = ev.RoomID
	}

	return out
}

func userToProto(s *core.Session) proto.User {
	return proto.User{
		ID:       s.ID,
		Nickname: s.Nickname,
		Position: positionToProto(s.Position),
		Appearance: proto.Appearance{
			ClothColor: s.Appearance.ClothColor,
			SkinTone:   s.Appearance.SkinTone,
			Accessory:  s.Appearance.Accessory,
		},
		Room:     s.Room,
		LastSeen: s.LastSeen.UnixMilli(),
	}
}

func roomToProto(r *core.RoomInfo) proto.Room {
	members := r.Members
	if members == nil {
		members = []string{}
	}
	return proto.Room{
		ID:       r.ID,
		Name:     r.Name,
		Creator:  r.Creator,
		MaxUsers: r.MaxUsers,
		Private:  r.Private,
		Members:  members,
	}
}

func positionFromProto(p proto.Position) core.Position {
	return core.Position{X: p.X, Y: p.Y, Z: p.Z}
}

func positionToProto(p core.Position) proto.Position {
	return proto.Position{X: p.X, Y: p.Y, Z: p.Z}
}
