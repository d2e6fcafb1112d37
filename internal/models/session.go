package models

import (
	"encoding/json"
	"time"
)

// SessionStatus represents the lifecycle state of a game session
type SessionStatus string

const (
	// SessionStatusWaiting indicates a session is in its lobby, waiting for players
	SessionStatusWaiting SessionStatus = "waiting"

	// SessionStatusActive indicates a game is in progress
	SessionStatusActive SessionStatus = "active"

	// SessionStatusCompleted indicates a game finished normally
	SessionStatusCompleted SessionStatus = "completed"

	// SessionStatusCancelled indicates a game was torn down before finishing
	SessionStatusCancelled SessionStatus = "cancelled"
)

// Terminal reports whether the status has no outgoing transitions
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled
}

// LobbyType controls how players are seated while a session is waiting
type LobbyType string

const (
	// LobbyTypeOpen seats players in join order with no fixed seats
	LobbyTypeOpen LobbyType = "open"

	// LobbyTypeSlotted assigns each player a numbered seat
	LobbyTypeSlotted LobbyType = "slotted"
)

// Settings holds the per-game lobby configuration for a session
type Settings struct {
	// MinPlayers is the minimum number of players required to start
	MinPlayers int

	// MaxPlayers is the maximum number of players allowed to join
	MaxPlayers int

	// LobbyType controls seat assignment
	LobbyType LobbyType

	// CountdownSeconds is the lobby countdown length; 0 disables the countdown
	CountdownSeconds int
}

// Session represents the full mutable state of one game instance,
// scoped to one Discord channel
type Session struct {
	// ID is the unique identifier for the session
	ID string

	// GameType is the registered game handler tag for this session
	GameType string

	// GuildID is the Discord server the session belongs to
	GuildID string

	// ChannelID is the Discord channel the session is played in
	ChannelID string

	// MessageID is the rendered lobby/game message, empty until first render
	MessageID string

	// HostID is the user who created the session
	HostID string

	// Players is the ordered list of joined players
	Players []*Player

	// Status is the lifecycle state of the session
	Status SessionStatus

	// Phase is a free-form game-specific sub-state, independent of Status
	Phase string

	// Version increases on every mutation that invalidates rendered controls
	Version int64

	// PayoutDone records that reward settlement already ran for this session
	PayoutDone bool

	// GameState is an opaque blob owned by the per-game handler
	GameState json.RawMessage

	// WinnerID is the winning player, empty until decided
	WinnerID string

	// CreatedAt is when the session was created
	CreatedAt time.Time

	// StartedAt is when the session moved to active; zero while waiting
	StartedAt time.Time

	// CompletedAt is when the session reached a terminal status
	CompletedAt time.Time

	// CountdownDeadline is when the lobby countdown fires; zero if none
	CountdownDeadline time.Time

	// Settings holds the lobby configuration
	Settings Settings
}

// Player returns the player record for the given user ID, or nil
func (s *Session) Player(playerID string) *Player {
	for _, p := range s.Players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

// HasPlayer reports whether the given user is in the session
func (s *Session) HasPlayer(playerID string) bool {
	return s.Player(playerID) != nil
}

// Clone returns a deep copy of the session. Store reads hand out clones so
// callers cannot mutate store-internal state without going through a save.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}

	out := *s

	out.Players = make([]*Player, len(s.Players))
	for i, p := range s.Players {
		out.Players[i] = p.Clone()
	}

	if s.GameState != nil {
		out.GameState = make(json.RawMessage, len(s.GameState))
		copy(out.GameState, s.GameState)
	}

	return &out
}
