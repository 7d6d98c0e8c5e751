package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSweeper_EvictsAndNotifies(t *testing.T) {
	s, _ := newTestSessionStore(time.Hour)
	stale := s.Create()

	now := time.Now()
	s.now = func() time.Time { return now.Add(2 * time.Hour) }

	var mu sync.Mutex
	var notified []string
	sweeper := NewSweeper(s, 10*time.Millisecond, func(ids []string) {
		mu.Lock()
		notified = append(notified, ids...)
		mu.Unlock()
	})

	sweeper.Start(context.Background())
	defer sweeper.Close()

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(notified) == 1 && notified[0] == stale
	}, time.Second, 10*time.Millisecond)

	assert.Equal(t, 0, s.Count())
}

func TestSweeper_CloseStopsCleanly(t *testing.T) {
	s, _ := newTestSessionStore(time.Hour)
	sweeper := NewSweeper(s, 10*time.Millisecond, nil)
	sweeper.Start(context.Background())

	done := make(chan struct{})
	go func() {
		sweeper.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
