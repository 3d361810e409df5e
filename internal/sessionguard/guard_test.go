package sessionguard

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects warning/expiry callback invocations.
type recorder struct {
	mu       sync.Mutex
	warnings []string
	expiries []string
}

func (r *recorder) warn(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warnings = append(r.warnings, token)
}

func (r *recorder) expire(token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.expiries = append(r.expiries, token)
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.warnings), len(r.expiries)
}

func newTestGuard(t *testing.T, cfg Config, rec *recorder) *Guard {
	t.Helper()
	g, err := New(cfg, slog.Default(), rec.warn, rec.expire)
	require.NoError(t, err)
	t.Cleanup(g.Dispose)
	return g
}

func TestNew_RejectsWarningWindowNotShorterThanTimeout(t *testing.T) {
	_, err := New(Config{Timeout: time.Minute, WarningWindow: time.Minute}, slog.Default(), nil, nil)
	assert.Error(t, err)
}

func TestGuard_WarningFiresOnceBeforeExpiry(t *testing.T) {
	rec := &recorder{}
	g := newTestGuard(t, Config{
		Timeout:          120 * time.Millisecond,
		WarningWindow:    60 * time.Millisecond,
		ActivityDebounce: 10 * time.Millisecond,
	}, rec)

	g.Watch("s1")

	// After the warning deadline but before expiry.
	time.Sleep(90 * time.Millisecond)
	warns, exps := rec.counts()
	assert.Equal(t, 1, warns, "warning should have fired exactly once")
	assert.Equal(t, 0, exps, "expiry should not have fired yet")

	_, warned, ok := g.Remaining("s1")
	require.True(t, ok)
	assert.True(t, warned)

	// Let the expiry deadline pass.
	time.Sleep(60 * time.Millisecond)
	warns, exps = rec.counts()
	assert.Equal(t, 1, warns)
	assert.Equal(t, 1, exps, "expiry should fire after the full timeout")

	_, _, ok = g.Remaining("s1")
	assert.False(t, ok, "expired session should be forgotten")
}

func TestGuard_ActivityCancelsPendingWarning(t *testing.T) {
	rec := &recorder{}
	g := newTestGuard(t, Config{
		Timeout:          120 * time.Millisecond,
		WarningWindow:    60 * time.Millisecond,
		ActivityDebounce: time.Millisecond,
	}, rec)

	g.Watch("s1")

	// Touch just before the original warning deadline.
	time.Sleep(40 * time.Millisecond)
	require.True(t, g.Touch("s1"))

	// The original warning deadline passes with no warning.
	time.Sleep(40 * time.Millisecond)
	warns, _ := rec.counts()
	assert.Equal(t, 0, warns, "warning must not fire at the original deadline after activity")

	// The rescheduled warning eventually fires.
	time.Sleep(40 * time.Millisecond)
	warns, _ = rec.counts()
	assert.Equal(t, 1, warns)
}

func TestGuard_TouchDebounce(t *testing.T) {
	rec := &recorder{}
	g := newTestGuard(t, Config{
		Timeout:          time.Minute,
		WarningWindow:    time.Second,
		ActivityDebounce: 200 * time.Millisecond,
	}, rec)

	g.Watch("s1")

	// Two activity events inside the debounce window: at most one reset.
	assert.False(t, g.Touch("s1"), "touch inside debounce window must be ignored")
	time.Sleep(10 * time.Millisecond)
	assert.False(t, g.Touch("s1"))

	time.Sleep(200 * time.Millisecond)
	assert.True(t, g.Touch("s1"), "touch outside debounce window must reset")
}

func TestGuard_ExtendClearsWarning(t *testing.T) {
	rec := &recorder{}
	g := newTestGuard(t, Config{
		Timeout:          100 * time.Millisecond,
		WarningWindow:    50 * time.Millisecond,
		ActivityDebounce: time.Millisecond,
	}, rec)

	g.Watch("s1")
	time.Sleep(70 * time.Millisecond)

	_, warned, ok := g.Remaining("s1")
	require.True(t, ok)
	require.True(t, warned)

	// Accepting the prompt restarts both deadlines from now.
	require.True(t, g.Extend("s1"))
	_, warned, ok = g.Remaining("s1")
	require.True(t, ok)
	assert.False(t, warned)

	// Original expiry deadline passes without a forced logout.
	time.Sleep(50 * time.Millisecond)
	_, exps := rec.counts()
	assert.Equal(t, 0, exps)
}

func TestGuard_ExpiryForcesLogout(t *testing.T) {
	rec := &recorder{}
	g := newTestGuard(t, Config{
		Timeout:          60 * time.Millisecond,
		WarningWindow:    30 * time.Millisecond,
		ActivityDebounce: time.Millisecond,
	}, rec)

	g.Watch("s1")
	time.Sleep(100 * time.Millisecond)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.Len(t, rec.expiries, 1)
	assert.Equal(t, "s1", rec.expiries[0])
}

func TestGuard_RemoveStopsTimers(t *testing.T) {
	rec := &recorder{}
	g := newTestGuard(t, Config{
		Timeout:          60 * time.Millisecond,
		WarningWindow:    30 * time.Millisecond,
		ActivityDebounce: time.Millisecond,
	}, rec)

	g.Watch("s1")
	g.Remove("s1")

	time.Sleep(100 * time.Millisecond)
	warns, exps := rec.counts()
	assert.Equal(t, 0, warns)
	assert.Equal(t, 0, exps)

	assert.False(t, g.Touch("s1"), "removed session is not touchable")
}

func TestGuard_RewatchReplacesTimerPair(t *testing.T) {
	rec := &recorder{}
	g := newTestGuard(t, Config{
		Timeout:          80 * time.Millisecond,
		WarningWindow:    40 * time.Millisecond,
		ActivityDebounce: time.Millisecond,
	}, rec)

	g.Watch("s1")
	time.Sleep(30 * time.Millisecond)
	g.Watch("s1") // re-login in the same context replaces the pair

	time.Sleep(30 * time.Millisecond)
	warns, _ := rec.counts()
	assert.Equal(t, 0, warns, "old pair's warning must not fire after rewatch")

	time.Sleep(130 * time.Millisecond)
	warns, exps := rec.counts()
	assert.Equal(t, 1, warns)
	assert.Equal(t, 1, exps)
}

func TestGuard_DisposeStopsEverything(t *testing.T) {
	rec := &recorder{}
	g := newTestGuard(t, Config{
		Timeout:          50 * time.Millisecond,
		WarningWindow:    20 * time.Millisecond,
		ActivityDebounce: time.Millisecond,
	}, rec)

	g.Watch("s1")
	g.Watch("s2")
	g.Dispose()

	time.Sleep(100 * time.Millisecond)
	warns, exps := rec.counts()
	assert.Equal(t, 0, warns)
	assert.Equal(t, 0, exps)

	g.Watch("s3")
	_, _, ok := g.Remaining("s3")
	assert.False(t, ok, "disposed guard must not accept new watches")
}
