package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"dailybag/core"
	"dailybag/engine"
)

// Config holds Redis connection configuration
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

// Store implements the engine.Storage interface using Redis as the backend.
// Data structure:
// - user:{user_id}:chores -> hash of chore id -> JSON ChoreRecord
// - user:{user_id}:chore_order -> list of chore ids, insertion order
// - user:{user_id}:lifetime -> int (monotone lifetime points)
type Store struct {
	client *redis.Client
}

// New creates a new Redis-backed storage with the provided configuration
func New(config Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
		DialTimeout:  config.DialTimeout,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Store{client: client}, nil
}

// NewWithClient creates a Store using an existing Redis client (useful for testing)
func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

// Close closes the Redis connection
func (s *Store) Close() error {
	return s.client.Close()
}

func choresKey(user core.UserID) string {
	return fmt.Sprintf("user:%s:chores", user)
}

func choreOrderKey(user core.UserID) string {
	return fmt.Sprintf("user:%s:chore_order", user)
}

func lifetimeKey(user core.UserID) string {
	return fmt.Sprintf("user:%s:lifetime", user)
}

func (s *Store) ListRecords(ctx context.Context, user core.UserID) ([]core.ChoreRecord, error) {
	ids, err := s.client.LRange(ctx, choreOrderKey(user), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list chore ids: %w", err)
	}
	if len(ids) == 0 {
		return []core.ChoreRecord{}, nil
	}

	raw, err := s.client.HMGet(ctx, choresKey(user), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch chores: %w", err)
	}

	out := make([]core.ChoreRecord, 0, len(raw))
	for _, v := range raw {
		str, ok := v.(string)
		if !ok {
			continue // id in the order list with no hash entry
		}
		var rec core.ChoreRecord
		if err := json.Unmarshal([]byte(str), &rec); err != nil {
			return nil, fmt.Errorf("failed to decode chore: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Store) PutRecord(ctx context.Context, rec core.ChoreRecord) error {
	user := rec.AssignedTo
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode chore: %w", err)
	}

	existed, err := s.client.HExists(ctx, choresKey(user), rec.ID).Result()
	if err != nil {
		return fmt.Errorf("failed to check chore: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, choresKey(user), rec.ID, data)
	if !existed {
		pipe.RPush(ctx, choreOrderKey(user), rec.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to store chore: %w", err)
	}
	return nil
}

func (s *Store) CompleteRecord(ctx context.Context, user core.UserID, choreID string, at time.Time) (core.ChoreRecord, error) {
	raw, err := s.client.HGet(ctx, choresKey(user), choreID).Result()
	if errors.Is(err, redis.Nil) {
		return core.ChoreRecord{}, engine.ErrChoreNotFound
	}
	if err != nil {
		return core.ChoreRecord{}, fmt.Errorf("failed to fetch chore: %w", err)
	}

	var rec core.ChoreRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return core.ChoreRecord{}, fmt.Errorf("failed to decode chore: %w", err)
	}
	if rec.Completed {
		return rec, engine.ErrAlreadyCompleted
	}

	rec.Completed = true
	rec.CompletedBy = user
	rec.CompletedAt = &at

	data, err := json.Marshal(rec)
	if err != nil {
		return core.ChoreRecord{}, fmt.Errorf("failed to encode chore: %w", err)
	}
	if err := s.client.HSet(ctx, choresKey(user), choreID, data).Err(); err != nil {
		return core.ChoreRecord{}, fmt.Errorf("failed to store chore: %w", err)
	}
	return rec, nil
}

func (s *Store) LifetimePoints(ctx context.Context, user core.UserID) (int, error) {
	val, err := s.client.Get(ctx, lifetimeKey(user)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to fetch lifetime points: %w", err)
	}
	return val, nil
}

func (s *Store) AddLifetimePoints(ctx context.Context, user core.UserID, delta int) (int, error) {
	if delta <= 0 {
		return s.LifetimePoints(ctx, user)
	}
	total, err := s.client.IncrBy(ctx, lifetimeKey(user), int64(delta)).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to add lifetime points: %w", err)
	}
	return int(total), nil
}

var _ engine.Storage = (*Store)(nil)
