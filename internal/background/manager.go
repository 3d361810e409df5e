package background

import (
	"context"
	"log/slog"
	"time"

	pkglogger "github.com/sadh911122-sudo/Dark-Triad/pkg/logger"
)

// SessionSweeper deletes idle session rows and reports their tokens.
type SessionSweeper interface {
	DeleteIdleBefore(ctx context.Context, cutoff time.Time) ([]string, error)
}

// QueueReconciler drains the result fallback queue into the primary
// store.
type QueueReconciler interface {
	Reconcile(ctx context.Context, batchSize int) (int, error)
}

// Manager runs the two periodic maintenance tasks: the idle-session
// sweep and the result-queue reconciliation. The sweep exists because
// session timers are in-memory; rows orphaned by a process restart
// have no timer left to expire them.
type Manager struct {
	sessions        SessionSweeper
	reconciler      QueueReconciler
	logger          *slog.Logger
	auditLogger     *pkglogger.AuditLogger
	sessionTimeout  time.Duration
	sweepInterval   time.Duration
	reconcileEvery  time.Duration
	reconcileBatch  int
	stopCh          chan struct{}
}

func NewManager(
	sessions SessionSweeper,
	reconciler QueueReconciler,
	logger *slog.Logger,
	auditLogger *pkglogger.AuditLogger,
	sessionTimeout time.Duration,
	sweepInterval time.Duration,
	reconcileEvery time.Duration,
) *Manager {
	return &Manager{
		sessions:       sessions,
		reconciler:     reconciler,
		logger:         logger,
		auditLogger:    auditLogger,
		sessionTimeout: sessionTimeout,
		sweepInterval:  sweepInterval,
		reconcileEvery: reconcileEvery,
		reconcileBatch: 50,
		stopCh:         make(chan struct{}),
	}
}

// Start runs both tasks until Stop or context cancellation.
func (m *Manager) Start(ctx context.Context) {
	sweepTicker := time.NewTicker(m.sweepInterval)
	defer sweepTicker.Stop()

	reconcileTicker := time.NewTicker(m.reconcileEvery)
	defer reconcileTicker.Stop()

	// Run both once on startup to clear restart leftovers.
	m.sweepSessions(ctx)
	m.reconcileQueue(ctx)

	for {
		select {
		case <-sweepTicker.C:
			m.sweepSessions(ctx)
		case <-reconcileTicker.C:
			m.reconcileQueue(ctx)
		case <-m.stopCh:
			m.logger.Info("background manager stopped")
			return
		case <-ctx.Done():
			m.logger.Info("background manager context cancelled")
			return
		}
	}
}

// Stop signals the manager to stop
func (m *Manager) Stop() {
	close(m.stopCh)
}

func (m *Manager) sweepSessions(ctx context.Context) {
	sweepCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-m.sessionTimeout)

	tokens, err := m.sessions.DeleteIdleBefore(sweepCtx, cutoff)
	if err != nil {
		m.logger.Error("failed to sweep idle sessions", slog.Any("error", err))
		return
	}

	for range tokens {
		m.auditLogger.LogSessionEvent("forced_logout", "", "idle_session_sweep")
	}

	if len(tokens) > 0 {
		m.logger.Info("swept idle sessions", slog.Int("count", len(tokens)))
	}
}

func (m *Manager) reconcileQueue(ctx context.Context) {
	reconcileCtx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	if _, err := m.reconciler.Reconcile(reconcileCtx, m.reconcileBatch); err != nil {
		m.logger.Error("result queue reconciliation failed", slog.Any("error", err))
	}
}
