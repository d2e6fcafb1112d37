package rewardledger

import (
	"gametable/internal/models"
	"github.com/redis/go-redis/v9"
)

// Config holds configuration for the Redis reward ledger repository
type Config struct {
	// Redis client
	RedisClient *redis.Client
}

// RecordPayoutInput carries the payout marker to write
type RecordPayoutInput struct {
	Record *models.PayoutRecord
}

// RecordPayoutOutput reports whether the marker already existed
type RecordPayoutOutput struct {
	AlreadyRecorded bool
}

// GetPayoutInput identifies a payout marker by session
type GetPayoutInput struct {
	SessionID string
}
