package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

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

const help = `Commands:
  <text>            send a chat message
  /move X Y Z       update position
  /gesture NAME     play a gesture
  /create NAME [N]  create a room with optional capacity
  /join ROOM_ID     join a room
  /agora            return to the agora`

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:3000/ws", "WebSocket address")
	nickname := flag.String("nickname", "", "nickname (random when empty)")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if err := send(ctx, conn, proto.InboundTypeJoinAgora, proto.JoinAgoraData{Nickname: *nickname}); err != nil {
		return err
	}

	fmt.Printf("Connected to %s\n%s\n", *addr, help)

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	stop()
	cancel()
	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func send(ctx context.Context, conn *websocket.Conn, typ string, data any) error {
	var payload json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		payload = b
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
		return fmt.Errorf("send %s: %w", typ, err)
	}
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if f.Type == proto.OutboundTypeError && f.Error != nil {
			fmt.Printf("! %s: %s\n", f.Error.Code, f.Error.Msg)
			continue
		}

		switch f.Event {
		case proto.EventCurrentUsers:
			var users []proto.User
			if err := json.Unmarshal(f.Data, &users); err != nil {
				log.Printf("unmarshal current-users: %v", err)
				continue
			}
			names := make([]string, 0, len(users))
			for _, u := range users {
				names = append(names, u.Nickname)
			}
			fmt.Printf("* in the agora: %s\n", strings.Join(names, ", "))
		case proto.EventUserJoined:
			var u proto.User
			if err := json.Unmarshal(f.Data, &u); err != nil {
				log.Printf("unmarshal user-joined: %v", err)
				continue
			}
			fmt.Printf("* %s joined (%s)\n", u.Nickname, u.Room)
		case proto.EventUserLeft, proto.EventRoomJoined:
			var id string
			if err := json.Unmarshal(f.Data, &id); err != nil {
				log.Printf("unmarshal %s: %v", f.Event, err)
				continue
			}
			fmt.Printf("* %s %s\n", f.Event, id)
		case proto.EventChatMessage:
			var evt proto.EventChatMessageData
			if err := json.Unmarshal(f.Data, &evt); err != nil {
				log.Printf("unmarshal chat-message: %v", err)
				continue
			}
			fmt.Printf("%s: %s\n", evt.Nickname, evt.Message)
		case proto.EventRoomCreated:
			var room proto.Room
			if err := json.Unmarshal(f.Data, &room); err != nil {
				log.Printf("unmarshal room-created: %v", err)
				continue
			}
			fmt.Printf("* created room %q id=%s max=%d\n", room.Name, room.ID, room.MaxUsers)
		case proto.EventUserMoved, proto.EventUserGesture:
			// too chatty for a terminal
		default:
			fmt.Printf("event=%s data=%s\n", f.Event, string(f.Data))
		}
	}
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			typ, data, err := parseLine(text)
			if err != nil {
				fmt.Println(err)
				continue
			}
			if err := send(ctx, conn, typ, data); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}

func parseLine(text string) (string, any, error) {
	if !strings.HasPrefix(text, "/") {
		return proto.InboundTypeChatMessage, proto.ChatData{Text: text}, nil
	}

	fields := strings.Fields(text)
	switch fields[0] {
	case "/move":
		if len(fields) != 4 {
			return "", nil, errors.New("usage: /move X Y Z")
		}
		var coords [3]float64
		for i := range coords {
			v, err := strconv.ParseFloat(fields[i+1], 64)
			if err != nil {
				return "", nil, fmt.Errorf("bad coordinate %q", fields[i+1])
			}
			coords[i] = v
		}
		return proto.InboundTypeUpdatePosition, proto.Position{X: coords[0], Y: coords[1], Z: coords[2]}, nil
	case "/gesture":
		if len(fields) != 2 {
			return "", nil, errors.New("usage: /gesture NAME")
		}
		return proto.InboundTypeGesture, proto.GestureData{Type: fields[1]}, nil
	case "/create":
		if len(fields) < 2 || len(fields) > 3 {
			return "", nil, errors.New("usage: /create NAME [N]")
		}
		req := proto.CreateRoomData{Name: fields[1]}
		if len(fields) == 3 {
			n, err := strconv.Atoi(fields[2])
			if err != nil {
				return "", nil, fmt.Errorf("bad capacity %q", fields[2])
			}
			req.MaxUsers = n
		}
		return proto.InboundTypeCreateRoom, req, nil
	case "/join":
		if len(fields) != 2 {
			return "", nil, errors.New("usage: /join ROOM_ID")
		}
		return proto.InboundTypeJoinRoom, proto.JoinRoomData{RoomID: fields[1]}, nil
	case "/agora":
		return proto.InboundTypeReturnToAgora, nil, nil
	default:
		return "", nil, errors.New(help)
	}
}
