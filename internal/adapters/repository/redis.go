package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/circlemate/matchmaker/internal/domain/model"
	"github.com/circlemate/matchmaker/pkg/metrics"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "matchmaker:"

	// Key suffixes under the configured prefix.
	keyProfiles = "profiles"       // Hash: id -> profile JSON
	keyOrder    = "profiles:order" // Sorted set, score = insertion sequence
	keySequence = "profiles:seq"   // Counter feeding the insertion sequence
)

// RedisStore is a Store backed by Redis.
type RedisStore struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedisStore creates a RedisStore on an existing client.
func NewRedisStore(rdb redis.UniversalClient, opts ...Option) *RedisStore {
	s := &RedisStore{rdb: rdb, prefix: defaultKeyPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStore) key(suffix string) string {
	return s.prefix + suffix
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.rdb.Close()
}

// Put inserts or replaces p. The first write of an id fixes its list
// position.
func (s *RedisStore) Put(ctx context.Context, p model.Profile) (bool, error) {
	start := time.Now()
	defer observeSince(metrics.RecordRepositoryUpdateLatency, start)

	if err := p.Validate(); err != nil {
		return false, fmt.Errorf("put: %w", err)
	}
	data, err := json.Marshal(p)
	if err != nil {
		return false, fmt.Errorf("encode profile %s: %w", p.ID, err)
	}

	seq, err := s.rdb.Incr(ctx, s.key(keySequence)).Result()
	if err != nil {
		return false, fmt.Errorf("next sequence: %w", err)
	}

	var added *redis.IntCmd
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, s.key(keyProfiles), p.ID, data)
		added = pipe.ZAddNX(ctx, s.key(keyOrder), redis.Z{Score: float64(seq), Member: p.ID})
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("store profile %s: %w", p.ID, err)
	}
	return added.Val() == 1, nil
}

// Get returns the profile with the given id.
func (s *RedisStore) Get(ctx context.Context, id string) (model.Profile, error) {
	start := time.Now()
	defer observeSince(metrics.RecordRepositoryQueryLatency, start)

	raw, err := s.rdb.HGet(ctx, s.key(keyProfiles), id).Result()
	if errors.Is(err, redis.Nil) {
		return model.Profile{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return model.Profile{}, fmt.Errorf("load profile %s: %w", id, err)
	}
	return decodeProfile(id, raw)
}

// List returns every profile in insertion order. Ids whose payload has
// disappeared are skipped.
func (s *RedisStore) List(ctx context.Context) ([]model.Profile, error) {
	start := time.Now()
	defer observeSince(metrics.RecordRepositoryQueryLatency, start)

	ids, err := s.rdb.ZRange(ctx, s.key(keyOrder), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list order: %w", err)
	}
	if len(ids) == 0 {
		return []model.Profile{}, nil
	}

	vals, err := s.rdb.HMGet(ctx, s.key(keyProfiles), ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	out := make([]model.Profile, 0, len(ids))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		p, err := decodeProfile(ids[i], raw)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// Count returns the number of stored profiles, or 0 when Redis is
// unreachable.
func (s *RedisStore) Count(ctx context.Context) int {
	n, err := s.rdb.HLen(ctx, s.key(keyProfiles)).Result()
	if err != nil {
		metrics.RecordErrorByComponent("repository", "count_failed")
		return 0
	}
	return int(n)
}

func decodeProfile(id, raw string) (model.Profile, error) {
	var p model.Profile
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return model.Profile{}, fmt.Errorf("%w: %s: %v", ErrCorrupt, id, err)
	}
	return p, nil
}
