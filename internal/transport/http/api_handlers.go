package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/plaggona-server/internal/core"
	"github.com/vovakirdan/plaggona-server/internal/proto"
	"github.com/vovakirdan/plaggona-server/internal/store"
)

const (
	defaultActivityLimit = 50
	maxActivityLimit     = 500
)

// APIHandlers provides the read-only HTTP endpoints over live state.
type APIHandlers struct {
	hub     *core.Hub
	journal store.Journal
	started time.Time
	log     *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance. journal may be nil.
func NewAPIHandlers(hub *core.Hub, journal store.Journal, started time.Time, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		hub:     hub,
		journal: journal,
		started: started,
		log:     logger,
	}
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// HealthResponse is the body of GET /api/health.
type HealthResponse struct {
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
	Uptime    float64 `json:"uptime"`
	Users     int     `json:"users"`
	Rooms     int     `json:"rooms"`
}

// ActivityResponse is one journal entry in API responses.
type ActivityResponse struct {
	ID        int64  `json:"id"`
	Kind      string `json:"kind"`
	SessionID string `json:"sessionId,omitempty"`
	Nickname  string `json:"nickname,omitempty"`
	RoomID    string `json:"roomId,omitempty"`
	At        string `json:"at"`
}

// Health reports liveness together with current counts.
// GET /api/health
func (h *APIHandlers) Health(c *gin.Context) {
	stats, err := h.hub.Stats(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read hub stats")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "hub unavailable"})
		return
	}

	now := time.Now()
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: now.UTC().Format(time.RFC3339Nano),
		Uptime:    now.Sub(h.started).Seconds(),
		Users:     stats.Users,
		Rooms:     stats.Rooms,
	})
}

// ListUsers returns every joined participant.
// GET /api/users
func (h *APIHandlers) ListUsers(c *gin.Context) {
	sessions, err := h.hub.Users(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list users")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "hub unavailable"})
		return
	}

	users := make([]proto.User, 0, len(sessions))
	for i := range sessions {
		users = append(users, userToProto(&sessions[i]))
	}
	c.JSON(http.StatusOK, users)
}

// ListActivity returns the most recent journal entries, newest first.
// GET /api/activity?limit=n
func (h *APIHandlers) ListActivity(c *gin.Context) {
	if h.journal == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "activity journal disabled"})
		return
	}

	limit := defaultActivityLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = min(n, maxActivityLimit)
	}

	entries, err := h.journal.Recent(c.Request.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Int("limit", limit).Msg("failed to read activity")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	resp := make([]ActivityResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, ActivityResponse{
			ID:        e.ID,
			Kind:      string(e.Kind),
			SessionID: e.SessionID,
			Nickname:  e.Nickname,
			RoomID:    e.RoomID,
			At:        e.At.UTC().Format(time.RFC3339Nano),
		})
	}
	c.JSON(http.StatusOK, resp)
}
