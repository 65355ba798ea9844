package core

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
)

type countingSweeper struct {
	swept chan struct{}
}

func (s *countingSweeper) Sweep() {
	s.swept <- struct{}{}
}

func TestMonitorSweepsOnInterval(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mock := clock.NewMock()
	target := &countingSweeper{swept: make(chan struct{}, 1)}
	monitor := NewMonitor(target, time.Minute, mock, nil)
	go monitor.Run(ctx)

	// The ticker is created inside Run; keep advancing until it fires.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mock.Add(time.Minute)
		select {
		case <-target.swept:
			return
		case <-time.After(10 * time.Millisecond):
		}
	}
	t.Fatal("monitor never triggered a sweep")
}

func TestMonitorDrivesHubSweep(t *testing.T) {
	mock := clock.NewMock()
	hub := startHub(t, WithClock(mock), WithSessionTimeout(time.Minute))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go NewMonitor(hub, 30*time.Second, mock, nil).Run(ctx)

	alice, _ := joinAgora(t, hub, "a", "alice")
	bob, _ := joinAgora(t, hub, "b", "bob")
	mustEvent(t, alice.Events, EventUserJoined)

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		mock.Add(30 * time.Second)
		if st := barrier(t, hub); st.Users == 0 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if st := barrier(t, hub); st.Users != 0 {
		t.Fatalf("idle sessions should be reclaimed, got %+v", st)
	}

	for range bob.Events {
	}
}
