package rewardledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"gametable/internal/models"
	"github.com/redis/go-redis/v9"
)

const (
	// Key prefix for Redis
	payoutKeyPrefix = "payout:"
)

// ErrPayoutNotFound is returned when no payout marker exists for a session
var ErrPayoutNotFound = errors.New("payout record not found")

// redisRepository implements the Repository interface using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedis creates a new Redis-backed reward ledger repository
func NewRedis(cfg *Config) (*redisRepository, error) {
	// Validate config
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}

	if cfg.RedisClient == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	// Test connection
	if err := cfg.RedisClient.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &redisRepository{
		client: cfg.RedisClient,
	}, nil
}

// RecordPayout writes the payout marker for a session. SETNX makes the
// write at-most-once: a second attempt for the same session leaves the
// original record in place and reports AlreadyRecorded.
func (r *redisRepository) RecordPayout(ctx context.Context, input *RecordPayoutInput) (*RecordPayoutOutput, error) {
	if input == nil || input.Record == nil {
		return nil, errors.New("input and record cannot be nil")
	}

	if input.Record.SessionID == "" {
		return nil, errors.New("session ID cannot be empty")
	}

	recordJSON, err := json.Marshal(input.Record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payout record: %w", err)
	}

	payoutKey := payoutKeyPrefix + input.Record.SessionID
	created, err := r.client.SetNX(ctx, payoutKey, recordJSON, 0).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to record payout: %w", err)
	}

	return &RecordPayoutOutput{
		AlreadyRecorded: !created,
	}, nil
}

// GetPayout retrieves the payout marker for a session
func (r *redisRepository) GetPayout(ctx context.Context, input *GetPayoutInput) (*models.PayoutRecord, error) {
	if input == nil || input.SessionID == "" {
		return nil, errors.New("input and session ID cannot be empty")
	}

	payoutKey := payoutKeyPrefix + input.SessionID
	recordJSON, err := r.client.Get(ctx, payoutKey).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, ErrPayoutNotFound
		}
		return nil, fmt.Errorf("failed to get payout record: %w", err)
	}

	var record models.PayoutRecord
	if err := json.Unmarshal([]byte(recordJSON), &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal payout record: %w", err)
	}

	return &record, nil
}
