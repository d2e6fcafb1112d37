package session

import (
	"context"

	"gametable/internal/models"
)

// Repository is the authoritative home of live session records and their
// lookup indices, plus the bounded archive of recently ended sessions.
// Implementations must keep the primary map and every secondary index in
// step atomically, and must return copies from every read.
type Repository interface {
	// SaveSession persists a session and bumps its version
	SaveSession(ctx context.Context, input *SaveSessionInput) (*SaveSessionOutput, error)

	// GetSession retrieves a live session by ID
	GetSession(ctx context.Context, input *GetSessionInput) (*models.Session, error)

	// GetSessionByChannel retrieves the live session owned by a channel
	GetSessionByChannel(ctx context.Context, input *GetSessionByChannelInput) (*models.Session, error)

	// GetSessionByMessage retrieves the live session rendered to a message
	GetSessionByMessage(ctx context.Context, input *GetSessionByMessageInput) (*models.Session, error)

	// GetSessionByPlayer retrieves the live session a player is part of
	GetSessionByPlayer(ctx context.Context, input *GetSessionByPlayerInput) (*models.Session, error)

	// DeleteSession removes a session and its index entries without archiving
	DeleteSession(ctx context.Context, input *DeleteSessionInput) error

	// ListWaitingSessions returns all sessions in the waiting lobby phase
	ListWaitingSessions(ctx context.Context) ([]*models.Session, error)

	// ListActiveSessions returns all sessions with games in progress
	ListActiveSessions(ctx context.Context) ([]*models.Session, error)

	// ArchiveSession moves a terminal session out of the live store into
	// the bounded archive for idempotent late reads
	ArchiveSession(ctx context.Context, input *ArchiveSessionInput) error

	// GetArchivedSession retrieves an archived session by ID
	GetArchivedSession(ctx context.Context, input *GetArchivedSessionInput) (*models.Session, error)

	// MarkArchivedPayoutDone flips the payout flag on an archived session,
	// reporting whether it was already set
	MarkArchivedPayoutDone(ctx context.Context, input *MarkArchivedPayoutDoneInput) (*MarkArchivedPayoutDoneOutput, error)

	// PurgeExpired evicts archive entries past their retention window
	PurgeExpired(ctx context.Context) (int, error)
}
