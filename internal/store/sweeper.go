package store

import (
	"context"
	"sync"
	"time"
)

// Sweeper periodically evicts expired sessions. It is independent of
// request handling and stops cleanly on shutdown.
type Sweeper struct {
	sessions *SessionStore
	interval time.Duration
	onEvict  func(sessionIDs []string)

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewSweeper builds a sweeper. onEvict, if non-nil, receives the ids of
// sessions removed by each pass so callers can clear related state.
func NewSweeper(sessions *SessionStore, interval time.Duration, onEvict func([]string)) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{
		sessions: sessions,
		interval: interval,
		onEvict:  onEvict,
	}
}

func (w *Sweeper) Start(ctx context.Context) {
	if w.cancel != nil {
		return
	}
	sweepCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-sweepCtx.Done():
				return
			case <-ticker.C:
				evicted := w.sessions.SweepExpired()
				if len(evicted) > 0 && w.onEvict != nil {
					w.onEvict(evicted)
				}
			}
		}
	}()
}

func (w *Sweeper) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
