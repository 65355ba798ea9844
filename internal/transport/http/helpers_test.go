package http

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/plaggona-server/internal/config"
	"github.com/vovakirdan/plaggona-server/internal/core"
	"github.com/vovakirdan/plaggona-server/internal/proto"
	"github.com/vovakirdan/plaggona-server/internal/store"
)

// stubJournal is an in-memory store.Journal that returns entries newest first.
type stubJournal struct {
	entries []*store.Entry
}

func (j *stubJournal) Append(_ context.Context, e *store.Entry) error {
	e.ID = int64(len(j.entries) + 1)
	j.entries = append(j.entries, e)
	return nil
}

func (j *stubJournal) Recent(_ context.Context, limit int) ([]*store.Entry, error) {
	out := make([]*store.Entry, 0, limit)
	for i := len(j.entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, j.entries[i])
	}
	return out, nil
}

func (j *stubJournal) Close() error { return nil }

// startTestServer runs a hub behind the production handler. journal may be nil.
func startTestServer(t *testing.T, journal store.Journal, tune ...func(*config.Config)) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	hub := core.NewHub(core.WithLogger(&logger))
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	cfg := config.Default()
	cfg.Addr = ":0"
	for _, fn := range tune {
		fn(&cfg)
	}
	server := NewServer(hub, journal, &cfg, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return ts
}

func wsURL(ts *httptest.Server) string {
	return strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
}

func dial(ctx context.Context, t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	conn, _, err := websocket.Dial(ctx, wsURL(ts), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "done") })
	return conn
}

func send(ctx context.Context, t *testing.T, conn *websocket.Conn, typ string, data any) {
	t.Helper()

	var raw json.RawMessage
	if data != nil {
		b, err := json.Marshal(data)
		if err != nil {
			t.Fatalf("marshal %s: %v", typ, err)
		}
		raw = b
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: raw}); err != nil {
		t.Fatalf("write %s: %v", typ, err)
	}
}

// frame is the decoded form of an outbound envelope.
type frame struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

// readUntil reads frames until one matches, failing after the context deadline.
func readUntil(ctx context.Context, t *testing.T, conn *websocket.Conn, match func(frame) bool) frame {
	t.Helper()

	for {
		var f frame
		if err := wsjson.Read(ctx, conn, &f); err != nil {
			t.Fatalf("read frame: %v", err)
		}
		if match(f) {
			return f
		}
	}
}

func isEvent(name string) func(frame) bool {
	return func(f frame) bool { return f.Type == proto.OutboundTypeEvent && f.Event == name }
}

func isError(f frame) bool { return f.Type == proto.OutboundTypeError }

// joinAgora joins conn and returns the current-users snapshot it receives.
func joinAgora(ctx context.Context, t *testing.T, conn *websocket.Conn, nickname string) []proto.User {
	t.Helper()

	send(ctx, t, conn, proto.InboundTypeJoinAgora, proto.JoinAgoraData{Nickname: nickname})
	f := readUntil(ctx, t, conn, isEvent(proto.EventCurrentUsers))
	var users []proto.User
	if err := json.Unmarshal(f.Data, &users); err != nil {
		t.Fatalf("decode current-users: %v", err)
	}
	return users
}

func testContext(t *testing.T) context.Context {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)
	return ctx
}
