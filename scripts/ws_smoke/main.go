package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/plaggona-server/internal/proto"
)

type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	nickname := flag.String("nickname", "tester", "nickname to join the agora with")
	text := flag.String("text", "hello from smoke test", "chat text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	if err := send(proto.InboundTypeJoinAgora, proto.JoinAgoraData{Nickname: *nickname}); err != nil {
		return err
	}
	if err := send(proto.InboundTypeChatMessage, proto.ChatData{Text: *text}); err != nil {
		return err
	}

	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		if f.Type == proto.OutboundTypeError && f.Error != nil {
			return fmt.Errorf("server error %s: %s", f.Error.Code, f.Error.Msg)
		}
		fmt.Printf("Received: type=%s event=%s\n", f.Type, f.Event)

		switch f.Event {
		case proto.EventCurrentUsers:
			var users []proto.User
			if err := json.Unmarshal(f.Data, &users); err != nil {
				return fmt.Errorf("unmarshal current-users: %w", err)
			}
			fmt.Printf("Agora has %d other user(s)\n", len(users))
		case proto.EventChatMessage:
			var evt proto.EventChatMessageData
			if err := json.Unmarshal(f.Data, &evt); err != nil {
				fmt.Printf("Raw data: %s\n", string(f.Data))
				return fmt.Errorf("unmarshal chat-message: %w", err)
			}
			fmt.Printf("Chat: user=%s nickname=%s text=%q ts=%d\n", evt.UserID, evt.Nickname, evt.Message, evt.Timestamp)
			return nil
		}
	}
}
