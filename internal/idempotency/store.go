package idempotency

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BarkinBalci/marketing-insights-service/internal/config"
)

const keyPrefix = "idem:event:"

// redisClient is the subset of *redis.Client the store uses
type redisClient interface {
	MGet(ctx context.Context, keys ...string) *redis.SliceCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

// Store remembers which event IDs were already written, backed by Valkey/Redis
type Store struct {
	client redisClient
	ttl    time.Duration
	log    *zap.Logger
}

// NewStore connects to Valkey and verifies the connection
func NewStore(ctx context.Context, cfg config.Valkey, log *zap.Logger) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr: net.JoinHostPort(cfg.Host, cfg.Port),
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping valkey: %w", err)
	}

	log.Info("Valkey connection established",
		zap.String("addr", net.JoinHostPort(cfg.Host, cfg.Port)),
		zap.Int("ttl_seconds", cfg.IdempotencyTTLSeconds))

	return newStore(client, time.Duration(cfg.IdempotencyTTLSeconds)*time.Second, log), nil
}

func newStore(client redisClient, ttl time.Duration, log *zap.Logger) *Store {
	return &Store{client: client, ttl: ttl, log: log}
}

// Seen returns the subset of ids that were already marked as processed
func (s *Store) Seen(ctx context.Context, ids []string) (map[string]bool, error) {
	seen := make(map[string]bool)
	if len(ids) == 0 {
		return seen, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = keyPrefix + id
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read idempotency keys: %w", err)
	}

	for i, v := range values {
		if v != nil && i < len(ids) {
			seen[ids[i]] = true
		}
	}
	return seen, nil
}

// MarkProcessed records ids as written for the configured TTL
func (s *Store) MarkProcessed(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := s.client.Set(ctx, keyPrefix+id, 1, s.ttl).Err(); err != nil {
			return fmt.Errorf("failed to set idempotency key for %s: %w", id, err)
		}
	}
	return nil
}

// Close closes the underlying connection
func (s *Store) Close() error {
	return s.client.Close()
}
