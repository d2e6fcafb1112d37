package games

import (
	"context"

	"gametable/internal/models"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_handler.go gametable/internal/games Handler

// ConcurrencyMode declares how the router serialises a game's actions
type ConcurrencyMode string

const (
	// ConcurrencyLockDrop takes a short exclusive lock per action and
	// discards actions arriving while it is held. Suited to low-frequency,
	// latency-sensitive clicks where a dropped duplicate has no lasting
	// effect. This is the default.
	ConcurrencyLockDrop ConcurrencyMode = "lock_drop"

	// ConcurrencyQueue runs all actions for a session strictly in arrival
	// order through one ordered chain. Required for high-frequency
	// multi-actor decisions such as simultaneous voting.
	ConcurrencyQueue ConcurrencyMode = "queue"
)

// ActionContext is handed to a game handler for one decoded action event.
// Session is a fresh copy read at processing time, not at receipt time.
type ActionContext struct {
	// Session is the current session state; mutate it, then Commit
	Session *models.Session

	// ActorID is the user who clicked the control
	ActorID string

	// ActorName is the clicking user's display name
	ActorName string

	// Action is the handler-defined action name from the control identifier
	Action string

	// Payload is the opaque value carried by the control identifier
	Payload string

	// Commit persists Session and bumps its version, invalidating every
	// previously rendered control for the session
	Commit func(ctx context.Context) error
}

// Handler is one game's entry point into the interaction pipeline
type Handler interface {
	// GameType is the unique tag sessions of this game carry
	GameType() string

	// LobbySettings returns the lobby configuration for new sessions
	LobbySettings() models.Settings

	// Concurrency declares the serialisation strategy for this game
	Concurrency() ConcurrencyMode

	// OnAction processes one action event against a fresh session
	OnAction(ctx context.Context, action *ActionContext) error

	// Finished reports whether the session has reached this game's end
	// state and should be concluded
	Finished(session *models.Session) bool
}
