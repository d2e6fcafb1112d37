package rewardledger

//go:generate mockgen -package=mocks -destination=mocks/mock_repository.go gametable/internal/repositories/rewardledger Repository

import (
	"context"

	"gametable/internal/models"
)

// Repository defines the interface for payout record persistence
type Repository interface {
	// RecordPayout writes the payout marker for a session at most once
	RecordPayout(ctx context.Context, input *RecordPayoutInput) (*RecordPayoutOutput, error)

	// GetPayout retrieves the payout marker for a session
	GetPayout(ctx context.Context, input *GetPayoutInput) (*models.PayoutRecord, error)
}
