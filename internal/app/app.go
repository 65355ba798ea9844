package app

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/plaggona-server/internal/config"
	"github.com/vovakirdan/plaggona-server/internal/core"
	"github.com/vovakirdan/plaggona-server/internal/store"
	"github.com/vovakirdan/plaggona-server/internal/store/sqlite"
	transporthttp "github.com/vovakirdan/plaggona-server/internal/transport/http"
)

const journalQueueSize = 1024

// App wires together core, storage and transport layers.
type App struct {
	server          *stdhttp.Server
	shutdownTimeout time.Duration
	hub             *core.Hub
	monitor         *core.Monitor
	journal         store.Journal
	writer          *store.Writer
	log             *zerolog.Logger
}

// New constructs the application with provided configuration.
func New(cfg *config.Config, logger *zerolog.Logger) (*App, error) {
	a := &App{
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
	}

	opts := []core.Option{
		core.WithClock(clock.New()),
		core.WithLogger(logger),
		core.WithSessionTimeout(cfg.SessionTimeout),
		core.WithDefaultMaxUsers(cfg.DefaultMaxUsers),
	}

	if cfg.JournalPath != "" {
		st, err := sqlite.New(cfg.JournalPath)
		if err != nil {
			return nil, fmt.Errorf("init journal: %w", err)
		}
		logger.Info().Str("journal_path", cfg.JournalPath).Msg("activity journal initialized")

		a.journal = st
		a.writer = store.NewWriter(st, journalQueueSize, logger)
		opts = append(opts, core.WithRecorder(a.writer))
	} else {
		logger.Info().Msg("activity journal disabled")
	}

	a.hub = core.NewHub(opts...)
	a.monitor = core.NewMonitor(a.hub, cfg.SweepInterval, clock.New(), logger)
	a.server = transporthttp.NewServer(a.hub, a.journal, cfg, logger)

	return a, nil
}

// Run starts the HTTP server and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(context.Background())
	writerCtx, stopWriter := context.WithCancel(context.Background())
	defer stopHub()
	defer stopWriter()

	var hubWG, writerWG sync.WaitGroup

	hubWG.Add(2)
	go func() {
		defer hubWG.Done()
		a.hub.Run(hubCtx)
	}()
	go func() {
		defer hubWG.Done()
		a.monitor.Run(hubCtx)
	}()
	if a.writer != nil {
		writerWG.Add(1)
		go func() {
			defer writerWG.Done()
			a.writer.Run(writerCtx)
		}()
	}

	serverErr := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.server.Addr).Msg("http server listening")
		if err := a.server.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			serverErr <- err
			return
		}
		serverErr <- nil
	}()

	var runErr error
	select {
	case err := <-serverErr:
		runErr = err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down http server")
		if err := a.server.Shutdown(shutdownCtx); err != nil {
			runErr = err
		} else {
			runErr = <-serverErr
		}
	}

	// The hub stops first so entries recorded by its last request are
	// queued before the writer drains.
	stopHub()
	hubWG.Wait()
	stopWriter()
	writerWG.Wait()

	a.cleanup()
	return runErr
}

// cleanup closes the journal once the writer has flushed.
func (a *App) cleanup() {
	if a.journal != nil {
		if err := a.journal.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close journal")
		} else {
			a.log.Info().Msg("journal closed")
		}
	}
}
