package http

import (
	stdhttp "net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/plaggona-server/internal/config"
	"github.com/vovakirdan/plaggona-server/internal/core"
	"github.com/vovakirdan/plaggona-server/internal/store"
)

// NewServer builds the HTTP server: the read-only API under /api served by gin
// and the websocket gateway on /ws. journal may be nil when the activity journal is disabled.
func NewServer(hub *core.Hub, journal store.Journal, cfg *config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(LoggerMiddleware(logger))
	router.Use(cors.New(corsConfig(cfg.CORSOrigins)))

	api := NewAPIHandlers(hub, journal, time.Now(), logger)
	rooms := NewRoomHandlers(hub, logger)

	group := router.Group("/api")
	{
		group.GET("/health", api.Health)
		group.GET("/users", api.ListUsers)
		group.GET("/rooms", rooms.ListRooms)
		group.GET("/activity", api.ListActivity)
	}

	// The gateway hijacks the connection, which gin's writer refuses once the
	// upgrade response is written, so it is mounted beside the router.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, cfg, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func corsConfig(origins []string) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowMethods = []string{stdhttp.MethodGet, stdhttp.MethodOptions}
	if len(origins) == 0 {
		cc.AllowAllOrigins = true
		return cc
	}
	for _, o := range origins {
		if o == "*" {
			cc.AllowAllOrigins = true
			return cc
		}
	}
	cc.AllowOrigins = origins
	return cc
}
