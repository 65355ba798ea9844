package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/plaggona-server/internal/core"
	"github.com/vovakirdan/plaggona-server/internal/proto"
)

// RoomHandlers provides HTTP handlers for room listing.
type RoomHandlers struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewRoomHandlers creates a new room handlers instance.
func NewRoomHandlers(hub *core.Hub, logger *zerolog.Logger) *RoomHandlers {
	return &RoomHandlers{
		hub: hub,
		log: logger,
	}
}

// ListRooms returns every room, the agora first.
// GET /api/rooms
func (h *RoomHandlers) ListRooms(c *gin.Context) {
	rooms, err := h.hub.Rooms(c.Request.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list rooms")
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "hub unavailable"})
		return
	}

	resp := make([]proto.Room, 0, len(rooms))
	for i := range rooms {
		resp = append(resp, roomToProto(&rooms[i]))
	}
	c.JSON(http.StatusOK, resp)
}
