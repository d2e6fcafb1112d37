package session

import (
	"time"

	"gametable/internal/common/clock"
	"gametable/internal/models"
)

// Config holds configuration for the in-memory session store
type Config struct {
	// Clock abstraction, used for archive retention stamps
	Clock clock.Clock

	// ArchiveTTL is how long ended sessions stay readable; default 5 minutes
	ArchiveTTL time.Duration

	// ArchiveMaxEntries caps the archive; oldest entries evict first.
	// Default 500.
	ArchiveMaxEntries int
}

// SaveSessionInput contains the session to persist
type SaveSessionInput struct {
	Session *models.Session
}

// SaveSessionOutput returns the stored session, including its new version
type SaveSessionOutput struct {
	Session *models.Session
}

// GetSessionInput identifies a session by ID
type GetSessionInput struct {
	SessionID string
}

// GetSessionByChannelInput identifies a session by its owning channel
type GetSessionByChannelInput struct {
	ChannelID string
}

// GetSessionByMessageInput identifies a session by its rendered message
type GetSessionByMessageInput struct {
	MessageID string
}

// GetSessionByPlayerInput identifies a session by one of its players
type GetSessionByPlayerInput struct {
	PlayerID string
}

// DeleteSessionInput identifies a session to remove
type DeleteSessionInput struct {
	SessionID string
}

// ArchiveSessionInput carries the terminal session to archive
type ArchiveSessionInput struct {
	Session *models.Session
}

// GetArchivedSessionInput identifies an archived session by ID
type GetArchivedSessionInput struct {
	SessionID string
}

// MarkArchivedPayoutDoneInput identifies the archived session to flag
type MarkArchivedPayoutDoneInput struct {
	SessionID string
}

// MarkArchivedPayoutDoneOutput reports the prior state of the payout flag
type MarkArchivedPayoutDoneOutput struct {
	AlreadyDone bool
}
