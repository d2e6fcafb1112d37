package game

import (
	"time"

	"gametable/internal/common/clock"
	"gametable/internal/common/uuid"
	"gametable/internal/games"
	"gametable/internal/lock"
	"gametable/internal/models"
	sessionRepo "gametable/internal/repositories/session"
	ledgerRepo "gametable/internal/repositories/rewardledger"
	"gametable/internal/scheduler"
	"github.com/rs/zerolog"
)

// Observer is notified after deferred lifecycle transitions (countdown
// starts, timeouts, cancellations) so the presentation layer can re-render
// without polling. Calls arrive on timer goroutines.
type Observer interface {
	// SessionStarted fires when a countdown moved a lobby into play
	SessionStarted(session *models.Session)

	// SessionEnded fires when a session reached a terminal status through
	// a deferred transition
	SessionEnded(session *models.Session, reason models.EndReason)
}

// Config holds configuration for the game session service
type Config struct {
	// Repository dependencies
	SessionRepo  sessionRepo.Repository
	RewardLedger ledgerRepo.Repository

	// Subsystem dependencies
	Locks     *lock.Manager
	Registry  *games.Registry
	Scheduler *scheduler.Orchestrator

	// Service dependencies
	Clock         clock.Clock
	UUIDGenerator uuid.UUID
	Logger        zerolog.Logger

	// Observer is optional; nil disables re-render notifications
	Observer Observer

	// MaintenanceInterval paces the archive/lock sweep; default 30 seconds
	MaintenanceInterval time.Duration
}

// CreateSessionInput contains parameters for opening a new lobby
type CreateSessionInput struct {
	// GameType selects the registered game handler
	GameType string

	// GuildID is the Discord server the lobby is opened in
	GuildID string

	// ChannelID is the Discord channel that will own the session
	ChannelID string

	// HostID is the creating user, seated as the first player
	HostID string

	// HostName is the creating user's display name
	HostName string

	// HostAvatarURL is the creating user's avatar reference
	HostAvatarURL string
}

// CreateSessionOutput contains the created session
type CreateSessionOutput struct {
	Session *models.Session
}

// JoinSessionInput contains parameters for seating a player
type JoinSessionInput struct {
	SessionID string
	PlayerID  string

	// PlayerName is the joining user's display name
	PlayerName string

	// AvatarURL is the joining user's avatar reference
	AvatarURL string

	// PreferredSlot is the requested seat in slotted lobbies; 0 means any
	PreferredSlot int
}

// JoinSessionOutput contains the updated session
type JoinSessionOutput struct {
	Session *models.Session
}

// LeaveSessionInput contains parameters for removing a player
type LeaveSessionInput struct {
	SessionID string
	PlayerID  string
}

// LeaveSessionOutput contains the updated session; Ended reports that the
// departure tore the session down (host left the lobby)
type LeaveSessionOutput struct {
	Session *models.Session
	Ended   bool
}

// StartGameInput identifies the lobby to start
type StartGameInput struct {
	SessionID string
}

// StartGameOutput contains the now-active session
type StartGameOutput struct {
	Session *models.Session
}

// EndSessionInput contains parameters for concluding a session
type EndSessionInput struct {
	SessionID string

	// WinnerID is the winning player, if any
	WinnerID string

	// Reason determines the terminal status the session lands on
	Reason models.EndReason
}

// EndSessionOutput contains the archived terminal session
type EndSessionOutput struct {
	Session *models.Session
}

// MarkPayoutDoneInput identifies the session to flag
type MarkPayoutDoneInput struct {
	SessionID string
}

// MarkPayoutDoneOutput reports whether settlement had already run
type MarkPayoutDoneOutput struct {
	AlreadyDone bool
}

// AttachMessageInput binds a rendered message to a session
type AttachMessageInput struct {
	SessionID string
	MessageID string
}

// AttachMessageOutput contains the updated session
type AttachMessageOutput struct {
	Session *models.Session
}

// GetSessionInput identifies a session by ID
type GetSessionInput struct {
	SessionID string
}

// GetSessionOutput contains the session
type GetSessionOutput struct {
	Session *models.Session
}

// GetSessionByChannelInput identifies a session by its owning channel
type GetSessionByChannelInput struct {
	ChannelID string
}

// GetSessionByChannelOutput contains the session
type GetSessionByChannelOutput struct {
	Session *models.Session
}
