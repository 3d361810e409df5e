package background

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkglogger "github.com/sadh911122-sudo/Dark-Triad/pkg/logger"
)

type stubSweeper struct {
	calls  atomic.Int64
	cutoff atomic.Value
}

func (s *stubSweeper) DeleteIdleBefore(ctx context.Context, cutoff time.Time) ([]string, error) {
	s.calls.Add(1)
	s.cutoff.Store(cutoff)
	return []string{"jti-1"}, nil
}

type stubReconciler struct {
	calls atomic.Int64
}

func (s *stubReconciler) Reconcile(ctx context.Context, batchSize int) (int, error) {
	s.calls.Add(1)
	return 0, nil
}

func newManagerForTest(sweeper SessionSweeper, reconciler QueueReconciler) *Manager {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(sweeper, reconciler, logger, pkglogger.NewAuditLogger(logger),
		30*time.Minute, 20*time.Millisecond, 20*time.Millisecond)
}

func TestManager_RunsBothTasks(t *testing.T) {
	sweeper := &stubSweeper{}
	reconciler := &stubReconciler{}

	m := newManagerForTest(sweeper, reconciler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Start(ctx)
	defer m.Stop()

	require.Eventually(t, func() bool {
		return sweeper.calls.Load() >= 2 && reconciler.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond, "both tasks run on startup and on their tickers")

	cutoff, ok := sweeper.cutoff.Load().(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(-30*time.Minute), cutoff, time.Minute,
		"sweep cutoff is last activity older than the session timeout")
}

func TestManager_StopEndsLoop(t *testing.T) {
	sweeper := &stubSweeper{}
	reconciler := &stubReconciler{}

	m := newManagerForTest(sweeper, reconciler)

	done := make(chan struct{})
	go func() {
		m.Start(context.Background())
		close(done)
	}()

	m.Stop()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("manager did not stop")
	}
}
