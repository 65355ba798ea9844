package store

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultWriterQueue = 1024
	appendTimeout      = 5 * time.Second
)

// Writer moves journal appends off the caller's goroutine. Record never
// blocks; entries are dropped when the queue is full.
type Writer struct {
	journal Journal
	queue   chan Entry
	log     *zerolog.Logger
}

// NewWriter creates a writer with the given queue size.
func NewWriter(journal Journal, queueSize int, logger *zerolog.Logger) *Writer {
	if queueSize <= 0 {
		queueSize = defaultWriterQueue
	}
	return &Writer{
		journal: journal,
		queue:   make(chan Entry, queueSize),
		log:     logger,
	}
}

// Record queues an entry for Run to persist.
func (w *Writer) Record(entry Entry) {
	select {
	case w.queue <- entry:
	default:
		w.log.Warn().Str("kind", string(entry.Kind)).Str("session_id", entry.SessionID).Msg("journal queue full, entry dropped")
	}
}

// Run persists queued entries until ctx is cancelled, then flushes what is left.
func (w *Writer) Run(ctx context.Context) {
	for {
		select {
		case entry := <-w.queue:
			w.append(entry)
		case <-ctx.Done():
			for {
				select {
				case entry := <-w.queue:
					w.append(entry)
				default:
					return
				}
			}
		}
	}
}

func (w *Writer) append(entry Entry) {
	ctx, cancel := context.WithTimeout(context.Background(), appendTimeout)
	defer cancel()

	if err := w.journal.Append(ctx, &entry); err != nil {
		w.log.Error().Err(err).Str("kind", string(entry.Kind)).Msg("failed to append journal entry")
	}
}
