package core

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
)

// DefaultSweepInterval is how often the monitor asks for a sweep.
const DefaultSweepInterval = 5 * time.Minute

// Sweeper runs one liveness sweep. Hub implements it by queueing the sweep on
// its own goroutine.
type Sweeper interface {
	Sweep()
}

// Monitor triggers sweeps on a fixed interval.
type Monitor struct {
	target   Sweeper
	clock    clock.Clock
	interval time.Duration
	log      *zerolog.Logger
}

// NewMonitor creates a monitor. A nil clock means the wall clock.
func NewMonitor(target Sweeper, interval time.Duration, clk clock.Clock, logger *zerolog.Logger) *Monitor {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &Monitor{
		target:   target,
		clock:    clk,
		interval: interval,
		log:      logger,
	}
}

// Run blocks until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	ticker := m.clock.Ticker(m.interval)
	defer ticker.Stop()

	m.log.Info().Dur("interval", m.interval).Msg("liveness monitor started")
	for {
		select {
		case <-ctx.Done():
			m.log.Info().Msg("liveness monitor stopped")
			return
		case <-ticker.C:
			m.target.Sweep()
		}
	}
}
