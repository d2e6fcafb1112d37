// Package scheduler owns the deferred transitions of the session lifecycle:
// one primary timer at the lobby deadline (or a per-turn timeout) and one
// safety timer slightly later. The safety timer guarantees a session is
// eventually reaped even if the primary firing is lost; its callback must
// re-validate session state and no-op when the primary already ran.
package scheduler

import (
	"sync"
	"time"
)

const defaultSafetyGrace = 10 * time.Second

// Config holds configuration for the orchestrator
type Config struct {
	// SafetyGrace is added to the deadline for the backstop timer;
	// default 10 seconds
	SafetyGrace time.Duration
}

// sessionTimers is the timer pair scheduled for one session
type sessionTimers struct {
	primary *time.Timer
	safety  *time.Timer
}

// Orchestrator keeps at most one scheduled timer pair per session ID
type Orchestrator struct {
	mu     sync.Mutex
	grace  time.Duration
	timers map[string]*sessionTimers
	closed bool
}

// New creates a new countdown orchestrator
func New(cfg *Config) *Orchestrator {
	grace := defaultSafetyGrace
	if cfg != nil && cfg.SafetyGrace > 0 {
		grace = cfg.SafetyGrace
	}

	return &Orchestrator{
		grace:  grace,
		timers: make(map[string]*sessionTimers),
	}
}

// Schedule arms the timer pair for a session. Any previously scheduled pair
// for the same session is cancelled first, so a session never has more than
// one countdown in flight.
func (o *Orchestrator) Schedule(sessionID string, in time.Duration, fire func(), reap func()) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		return
	}

	o.cancelLocked(sessionID)

	o.timers[sessionID] = &sessionTimers{
		primary: time.AfterFunc(in, fire),
		safety: time.AfterFunc(in+o.grace, func() {
			o.Cancel(sessionID)
			reap()
		}),
	}
}

// Cancel disarms both timers for a session. It reports whether anything was
// scheduled and is safe to call for unknown IDs.
func (o *Orchestrator) Cancel(sessionID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.cancelLocked(sessionID)
}

func (o *Orchestrator) cancelLocked(sessionID string) bool {
	pair, ok := o.timers[sessionID]
	if !ok {
		return false
	}

	pair.primary.Stop()
	pair.safety.Stop()
	delete(o.timers, sessionID)

	return true
}

// Close disarms every timer and refuses further scheduling
func (o *Orchestrator) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.closed = true
	for sessionID := range o.timers {
		o.cancelLocked(sessionID)
	}
}
