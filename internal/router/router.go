// Package router dispatches raw component interaction events into the
// session store safely. Per game, one of two strategies serialises access:
//
//   - lock-with-drop: a short exclusive lock per session; an action arriving
//     while the lock is held is discarded silently, not queued. The ack has
//     already been sent and a dropped duplicate click has no lasting effect.
//   - queue: every action for the session executes strictly in arrival
//     order; nothing is dropped.
//
// Errors past the acknowledgment degrade to silence: a failure after the ack
// must never surface as a visible protocol error.
package router

import (
	"context"
	"sync"
	"time"

	"gametable/internal/customid"
	"gametable/internal/games"
	sessionRepo "gametable/internal/repositories/session"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// sessionEndedNotice is shown once per expired session, then clicks on its
// leftover controls are swallowed.
const sessionEndedNotice = "This game has ended."

// noticeRetention bounds how long "already notified" markers are kept
const noticeRetention = 10 * time.Minute

// RouterError is a custom error type for router construction errors
type RouterError string

// Error implements the error interface
func (e RouterError) Error() string {
	return string(e)
}

// Define errors
const (
	ErrNilConfig   RouterError = "config cannot be nil"
	ErrNilRepo     RouterError = "session repository cannot be nil"
	ErrNilLocks    RouterError = "lock manager cannot be nil"
	ErrNilRegistry RouterError = "handler registry cannot be nil"
)

// Event is one raw action event received from the platform
type Event struct {
	// RawCustomID is the identifier carried by the clicked control
	RawCustomID string

	// ActorID is the clicking user
	ActorID string

	// ActorName is the clicking user's display name
	ActorName string

	// Ack acknowledges the interaction; called before any processing
	Ack func() error

	// Notify sends a one-time ephemeral notice to the actor
	Notify func(content string) error

	// Done runs after the action has finished processing, with the session
	// lock already released. Queued games invoke it on the drain goroutine
	// once the queued job completes; dropped events never invoke it.
	Done func()
}

// LockManager is the slice of the lock manager the router needs
type LockManager interface {
	TryAcquire(sessionID, holder string) bool
	Release(sessionID, holder string) bool
}

// Config holds configuration for the router
type Config struct {
	SessionRepo sessionRepo.Repository
	Locks       LockManager
	Registry    *games.Registry
	Logger      zerolog.Logger
}

// Router receives raw action events and dispatches them to game handlers
type Router struct {
	repo     sessionRepo.Repository
	locks    LockManager
	registry *games.Registry
	logger   zerolog.Logger

	queuesMu sync.Mutex
	queues   map[string]*actionQueue

	noticesMu sync.Mutex
	notices   map[string]time.Time
}

// New creates a new interaction router
func New(cfg *Config) (*Router, error) {
	if cfg == nil {
		return nil, ErrNilConfig
	}

	if cfg.SessionRepo == nil {
		return nil, ErrNilRepo
	}

	if cfg.Locks == nil {
		return nil, ErrNilLocks
	}

	if cfg.Registry == nil {
		return nil, ErrNilRegistry
	}

	return &Router{
		repo:     cfg.SessionRepo,
		locks:    cfg.Locks,
		registry: cfg.Registry,
		logger:   cfg.Logger,
		queues:   make(map[string]*actionQueue),
		notices:  make(map[string]time.Time),
	}, nil
}

// HandleActionEvent runs the dispatch pipeline for one event. It never
// returns an error; every outcome, including failures, counts as handled.
func (r *Router) HandleActionEvent(ctx context.Context, event *Event) bool {
	if event == nil {
		return true
	}

	// Acknowledge inside the platform's response budget before doing any
	// real work, so the user never sees an interaction failure.
	if event.Ack != nil {
		if err := event.Ack(); err != nil {
			r.logger.Warn().Err(err).Str("actor_id", event.ActorID).Msg("interaction ack failed")
		}
	}

	decoded, err := customid.Decode(event.RawCustomID)
	if err != nil {
		r.logger.Debug().Err(err).Str("custom_id", event.RawCustomID).Msg("undecodable control id")
		return true
	}

	session, err := r.repo.GetSession(ctx, &sessionRepo.GetSessionInput{SessionID: decoded.SessionID})
	if err != nil {
		r.notifySessionEnded(decoded.SessionID, event)
		return true
	}

	handler, ok := r.registry.Get(session.GameType)
	if !ok {
		r.logger.Error().
			Str("session_id", session.ID).
			Str("game_type", session.GameType).
			Msg("no handler registered for game type")
		return true
	}

	switch handler.Concurrency() {
	case games.ConcurrencyQueue:
		r.enqueue(session.ID, func() {
			r.process(ctx, handler, decoded, event)
			if event.Done != nil {
				event.Done()
			}
		})
	default:
		holder := uuid.New().String()
		if !r.locks.TryAcquire(session.ID, holder) {
			r.logger.Debug().
				Str("session_id", session.ID).
				Str("actor_id", event.ActorID).
				Msg("session locked, action dropped")
			return true
		}

		r.process(ctx, handler, decoded, event)

		if !r.locks.Release(session.ID, holder) {
			r.logger.Warn().Str("session_id", session.ID).Msg("lock release refused, holder superseded")
		}

		// Done runs outside the lock so it may re-enter the session freely
		if event.Done != nil {
			event.Done()
		}
	}

	return true
}

// process runs one decoded action against a freshly re-read session. State
// may have moved between decode and now, so the snapshot carried by the
// control is compared against the live phase and version; a mismatch is a
// stale click and a silent no-op. Queued games compare phase only: earlier
// jobs in the same chain legitimately bump the version, and the queue's
// strict ordering already serialises their writes.
func (r *Router) process(ctx context.Context, handler games.Handler, decoded *customid.ActionID, event *Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error().
				Str("session_id", decoded.SessionID).
				Str("action", decoded.Action).
				Interface("panic", rec).
				Msg("game handler panicked")
		}
	}()

	session, err := r.repo.GetSession(ctx, &sessionRepo.GetSessionInput{SessionID: decoded.SessionID})
	if err != nil {
		r.notifySessionEnded(decoded.SessionID, event)
		return
	}

	stale := session.Phase != decoded.Phase
	if handler.Concurrency() != games.ConcurrencyQueue {
		stale = stale || session.Version != decoded.Version
	}
	if stale {
		r.logger.Debug().
			Str("session_id", session.ID).
			Str("action", decoded.Action).
			Int64("control_version", decoded.Version).
			Int64("session_version", session.Version).
			Msg("stale control clicked")
		return
	}

	action := &games.ActionContext{
		Session:   session,
		ActorID:   event.ActorID,
		ActorName: event.ActorName,
		Action:    decoded.Action,
		Payload:   decoded.Payload,
	}
	action.Commit = func(ctx context.Context) error {
		out, err := r.repo.SaveSession(ctx, &sessionRepo.SaveSessionInput{Session: action.Session})
		if err != nil {
			return err
		}
		action.Session.Version = out.Session.Version
		return nil
	}

	if err := handler.OnAction(ctx, action); err != nil {
		r.logger.Error().
			Err(err).
			Str("session_id", session.ID).
			Str("game_type", session.GameType).
			Str("action", decoded.Action).
			Str("actor_id", event.ActorID).
			Msg("game handler failed")
	}
}

// notifySessionEnded tells the actor their session is gone, once per
// session. Later clicks on the same dead controls are swallowed silently.
func (r *Router) notifySessionEnded(sessionID string, event *Event) {
	if event.Notify == nil {
		return
	}

	r.noticesMu.Lock()
	now := time.Now()
	_, seen := r.notices[sessionID]
	if !seen {
		r.notices[sessionID] = now
		for id, at := range r.notices {
			if now.Sub(at) > noticeRetention {
				delete(r.notices, id)
			}
		}
	}
	r.noticesMu.Unlock()

	if seen {
		return
	}

	if err := event.Notify(sessionEndedNotice); err != nil {
		r.logger.Debug().Err(err).Str("session_id", sessionID).Msg("session ended notice failed")
	}
}
