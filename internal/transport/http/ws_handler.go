package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	stdhttp "net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/plaggona-server/internal/config"
	"github.com/vovakirdan/plaggona-server/internal/core"
	"github.com/vovakirdan/plaggona-server/internal/proto"
	"github.com/vovakirdan/plaggona-server/internal/utils"
)

const writeTimeout = 10 * time.Second

// WSHandler upgrades HTTP connections and bridges them to core.Client.
type WSHandler struct {
	hub          *core.Hub
	buffer       int
	maxMessage   int64
	allowOrigins []string
	log          *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{
		hub:          hub,
		buffer:       cfg.ClientBuffer,
		maxMessage:   cfg.MaxMessageBytes,
		allowOrigins: cfg.CORSOrigins,
		log:          logger,
	}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	conn, err := websocket.Accept(w, r, h.acceptOptions())
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.CloseNow()

	if h.maxMessage > 0 {
		conn.SetReadLimit(h.maxMessage)
	}

	client := core.NewClient(utils.NewSessionID(), h.buffer)
	logger := h.log.With().Str("session_id", client.ID).Str("remote", r.RemoteAddr).Logger()
	logger.Info().Msg("ws connected")

	h.hub.RegisterClient(client)
	defer h.hub.UnregisterClient(client)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, client, &logger)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, client, &logger)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
	case websocket.CloseStatus(err) == websocket.StatusNormalClosure,
		websocket.CloseStatus(err) == websocket.StatusGoingAway:
	default:
		status = websocket.StatusInternalError
		reason = "connection error"
		logger.Warn().Err(err).Msg("ws connection closed with error")
	}

	_ = conn.Close(status, reason)
	logger.Info().Msg("ws disconnected")
}

func (h *WSHandler) acceptOptions() *websocket.AcceptOptions {
	opts := &websocket.AcceptOptions{}
	if len(h.allowOrigins) == 0 {
		opts.InsecureSkipVerify = true
		return opts
	}
	for _, o := range h.allowOrigins {
		if o == "*" {
			opts.InsecureSkipVerify = true
			return opts
		}
		opts.OriginPatterns = append(opts.OriginPatterns, originHost(o))
	}
	return opts
}

// originHost reduces a configured CORS origin such as "https://app.example:8443"
// to the host pattern the websocket origin check matches against.
func originHost(origin string) string {
	if u, err := url.Parse(origin); err == nil && u.Host != "" {
		return u.Host
	}
	return origin
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, logger *zerolog.Logger) error {
	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}

		if typ != websocket.MessageText {
			if err := h.writeError(ctx, conn, invalidMessage("text frames only")); err != nil {
				return err
			}
			continue
		}

		var inbound proto.Inbound
		if err := json.Unmarshal(data, &inbound); err != nil {
			logger.Debug().Err(err).Msg("malformed ws envelope")
			if err := h.writeError(ctx, conn, invalidMessage("malformed envelope")); err != nil {
				return err
			}
			continue
		}

		cmd, ok, perr := inboundToCommand(inbound)
		if perr != nil {
			logger.Debug().Str("type", inbound.Type).Str("code", perr.Code).Msg("rejected ws message")
			if err := h.writeError(ctx, conn, perr); err != nil {
				return err
			}
			continue
		}
		if !ok {
			logger.Debug().Str("type", inbound.Type).Msg("dropped empty ws message")
			continue
		}
		h.hub.Submit(client, cmd)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, client *core.Client, logger *zerolog.Logger) error {
	for {
		select {
		case event, ok := <-client.Events:
			if !ok {
				// Released by the hub, e.g. after the liveness sweep expired the session.
				return nil
			}
			if err := h.write(ctx, conn, outboundFromEvent(event)); err != nil {
				logger.Error().Err(err).Str("event", event.Kind.String()).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) writeError(ctx context.Context, conn *websocket.Conn, perr *proto.Error) error {
	return h.write(ctx, conn, proto.Outbound{
		Type:  proto.OutboundTypeError,
		Error: perr,
	})
}

func (h *WSHandler) write(ctx context.Context, conn *websocket.Conn, v any) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, v)
}
