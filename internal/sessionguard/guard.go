// Package sessionguard owns the inactivity deadlines for live admin
// sessions. Each watched session has a warning deadline and an expiry
// deadline racing against recorded activity; whichever fires first
// wins. Timer state lives in memory only; session rows orphaned by a
// process restart are swept by the background cleanup instead.
package sessionguard

import (
	"fmt"
	"log/slog"
	"sync"
	"time"
)

type Config struct {
	// Timeout is the idle duration after which a session is forcibly
	// logged out. The warning fires WarningWindow before that.
	Timeout       time.Duration
	WarningWindow time.Duration
	// ActivityDebounce collapses activity events closer together than
	// this into a single timer reset.
	ActivityDebounce time.Duration
}

// Guard tracks the timer pair for every watched session token. It is
// an explicit object with Dispose rather than package state so a test
// or a page controller can own its lifecycle.
type Guard struct {
	mu        sync.Mutex
	cfg       Config
	watches   map[string]*watch
	onWarning func(token string)
	onExpiry  func(token string)
	logger    *slog.Logger
	disposed  bool
}

type watch struct {
	warnTimer    *time.Timer
	expireTimer  *time.Timer
	lastActivity time.Time
	warned       bool
	gen          uint64 // invalidates in-flight timer callbacks after a reset
}

// New creates a Guard. onWarning fires exactly once per armed period
// when the warning deadline passes; onExpiry fires when the expiry
// deadline passes, after the guard has already dropped the token.
// Both callbacks run outside the guard's lock.
func New(cfg Config, logger *slog.Logger, onWarning, onExpiry func(token string)) (*Guard, error) {
	if cfg.WarningWindow >= cfg.Timeout {
		return nil, fmt.Errorf("sessionguard: warning window %v must be shorter than timeout %v", cfg.WarningWindow, cfg.Timeout)
	}

	return &Guard{
		cfg:       cfg,
		watches:   make(map[string]*watch),
		onWarning: onWarning,
		onExpiry:  onExpiry,
		logger:    logger,
	}, nil
}

// Watch starts (or restarts) the timer pair for a session token.
// Any previous timers for the token are stopped first, so at most one
// pair is ever armed per token.
func (g *Guard) Watch(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.disposed {
		return
	}

	w, ok := g.watches[token]
	if !ok {
		w = &watch{}
		g.watches[token] = w
	}
	g.resetLocked(token, w)
}

// Touch records user activity. Activity within the debounce window of
// the previous one is ignored; otherwise both deadlines restart from
// now. Returns whether a reset happened.
func (g *Guard) Touch(token string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	w, ok := g.watches[token]
	if !ok {
		return false
	}

	if time.Since(w.lastActivity) < g.cfg.ActivityDebounce {
		return false
	}

	g.resetLocked(token, w)
	return true
}

// Extend unconditionally restarts the deadlines, clearing a pending
// warning. This is the "user accepted the extension prompt" path.
func (g *Guard) Extend(token string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	w, ok := g.watches[token]
	if !ok {
		return false
	}

	g.resetLocked(token, w)
	return true
}

// Remaining reports the time left until forced logout and whether the
// warning has fired for the current period.
func (g *Guard) Remaining(token string) (time.Duration, bool, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()

	w, ok := g.watches[token]
	if !ok {
		return 0, false, false
	}

	remaining := g.cfg.Timeout - time.Since(w.lastActivity)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, w.warned, true
}

// Remove stops the timers for a token and forgets it.
func (g *Guard) Remove(token string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.removeLocked(token)
}

// Dispose stops every timer and rejects further watches. Pending
// callbacks that already left the lock may still run.
func (g *Guard) Dispose() {
	g.mu.Lock()
	defer g.mu.Unlock()

	for token := range g.watches {
		g.removeLocked(token)
	}
	g.disposed = true
}

// resetLocked stops the current timer pair and arms a fresh one. The
// generation bump invalidates callbacks from the stopped timers that
// may already be in flight.
func (g *Guard) resetLocked(token string, w *watch) {
	stopTimers(w)

	w.lastActivity = time.Now()
	w.warned = false
	w.gen++
	gen := w.gen

	w.warnTimer = time.AfterFunc(g.cfg.Timeout-g.cfg.WarningWindow, func() {
		g.fireWarning(token, gen)
	})
	w.expireTimer = time.AfterFunc(g.cfg.Timeout, func() {
		g.fireExpiry(token, gen)
	})
}

func (g *Guard) removeLocked(token string) {
	w, ok := g.watches[token]
	if !ok {
		return
	}
	stopTimers(w)
	w.gen++ // invalidate in-flight callbacks
	delete(g.watches, token)
}

func (g *Guard) fireWarning(token string, gen uint64) {
	g.mu.Lock()
	w, ok := g.watches[token]
	if !ok || w.gen != gen || w.warned {
		g.mu.Unlock()
		return
	}
	w.warned = true
	cb := g.onWarning
	g.mu.Unlock()

	if g.logger != nil {
		g.logger.Info("session nearing inactivity timeout", slog.String("token", token))
	}
	if cb != nil {
		cb(token)
	}
}

func (g *Guard) fireExpiry(token string, gen uint64) {
	g.mu.Lock()
	w, ok := g.watches[token]
	if !ok || w.gen != gen {
		g.mu.Unlock()
		return
	}
	stopTimers(w)
	delete(g.watches, token)
	cb := g.onExpiry
	g.mu.Unlock()

	if g.logger != nil {
		g.logger.Info("session expired from inactivity", slog.String("token", token))
	}
	if cb != nil {
		cb(token)
	}
}

func stopTimers(w *watch) {
	if w.warnTimer != nil {
		w.warnTimer.Stop()
		w.warnTimer = nil
	}
	if w.expireTimer != nil {
		w.expireTimer.Stop()
		w.expireTimer = nil
	}
}
