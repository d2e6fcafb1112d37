package lock

import (
	"context"
	"sync"
	"time"

	"gametable/internal/common/clock"
)

const defaultTTL = 2 * time.Second

// defaultBackoff is the retry ladder callers walk before giving up on a
// busy session.
var defaultBackoff = []time.Duration{50 * time.Millisecond, 100 * time.Millisecond, 250 * time.Millisecond}

// LockError is a custom error type for lock manager errors
type LockError string

// Error implements the error interface
func (e LockError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrLockBusy  LockError = "session is locked, try again"
	ErrNilConfig LockError = "config cannot be nil"
	ErrNilClock  LockError = "clock cannot be nil"
)

// entry is one held lock. A lock past its expiry is free for the taking
// even without an explicit release, so a crashed holder cannot deadlock a
// session for longer than the TTL.
type entry struct {
	holder   string
	expireAt time.Time
}

// Config holds configuration for the lock manager
type Config struct {
	// Clock abstraction for TTL stamps
	Clock clock.Clock

	// TTL is the lock time-to-live; default 2 seconds
	TTL time.Duration

	// Backoff overrides the retry ladder used by Acquire
	Backoff []time.Duration
}

// Manager provides per-session mutual exclusion with a bounded TTL
type Manager struct {
	mu      sync.Mutex
	clock   clock.Clock
	ttl     time.Duration
	backoff []time.Duration
	locks   map[string]*entry
}

// New creates a new lock manager
func New(cfg *Config) (*Manager, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.Clock == nil {
		return nil, ErrNilClock
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = defaultTTL
	}

	backoff := cfg.Backoff
	if len(backoff) == 0 {
		backoff = defaultBackoff
	}

	return &Manager{
		clock:   cfg.Clock,
		ttl:     ttl,
		backoff: backoff,
		locks:   make(map[string]*entry),
	}, nil
}

// TryAcquire takes the lock for a session without blocking. It returns
// false if another holder currently has an unexpired lock.
func (m *Manager) TryAcquire(sessionID, holder string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	if current, ok := m.locks[sessionID]; ok && now.Before(current.expireAt) && current.holder != holder {
		return false
	}

	m.locks[sessionID] = &entry{
		holder:   holder,
		expireAt: now.Add(m.ttl),
	}

	return true
}

// Acquire takes the lock for a session, retrying along the backoff ladder
// before surfacing ErrLockBusy.
func (m *Manager) Acquire(ctx context.Context, sessionID, holder string) error {
	if m.TryAcquire(sessionID, holder) {
		return nil
	}

	for _, delay := range m.backoff {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		if m.TryAcquire(sessionID, holder) {
			return nil
		}
	}

	return ErrLockBusy
}

// Release gives up the lock for a session. It is idempotent and holder
// checked: releasing a lock you no longer hold (expired and re-taken) is a
// no-op reported back to the caller for logging.
func (m *Manager) Release(sessionID, holder string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.locks[sessionID]
	if !ok {
		return true
	}

	if current.holder != holder {
		return false
	}

	delete(m.locks, sessionID)
	return true
}

// PurgeExpired drops lock entries past their TTL and returns the count.
// Expired locks are already free at acquisition time; this bounds the table
// size under traffic.
func (m *Manager) PurgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	purged := 0
	for sessionID, current := range m.locks {
		if now.After(current.expireAt) {
			delete(m.locks, sessionID)
			purged++
		}
	}

	return purged
}
