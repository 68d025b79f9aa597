// Package dedup remembers which LinkedIn job IDs were already fetched so
// repeated runs skip their detail pages.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long a fetched job ID is remembered.
const DefaultTTL = 30 * 24 * time.Hour

// DefaultPrefix namespaces the seen-job keys.
const DefaultPrefix = "jobharvester:seen:"

// NewRedisClient parses redisURL and verifies connectivity.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// SeenSet stores one expiring key per fetched job ID.
type SeenSet struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewSeenSet creates a SeenSet. Empty prefix and non-positive ttl take the
// defaults.
func NewSeenSet(rdb redis.Cmdable, prefix string, ttl time.Duration) *SeenSet {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &SeenSet{rdb: rdb, prefix: prefix, ttl: ttl}
}

// Key returns the Redis key for jobID.
func (s *SeenSet) Key(jobID string) string {
	return s.prefix + jobID
}

// FilterUnseen returns the IDs without a seen key, in input order.
func (s *SeenSet) FilterUnseen(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return ids, nil
	}

	pipe := s.rdb.Pipeline()
	cmds := make([]*redis.IntCmd, len(ids))
	for i, id := range ids {
		cmds[i] = pipe.Exists(ctx, s.Key(id))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to check seen jobs: %w", err)
	}

	unseen := make([]string, 0, len(ids))
	for i, cmd := range cmds {
		if cmd.Val() == 0 {
			unseen = append(unseen, ids[i])
		}
	}
	return unseen, nil
}

// MarkSeen records ids as fetched for the configured TTL.
func (s *SeenSet) MarkSeen(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}

	pipe := s.rdb.Pipeline()
	for _, id := range ids {
		pipe.Set(ctx, s.Key(id), time.Now().UTC().Format(time.RFC3339), s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to mark jobs seen: %w", err)
	}
	return nil
}

// Forget removes every seen key. It is used when the job store is cleared.
func (s *SeenSet) Forget(ctx context.Context) (int, error) {
	var cursor uint64
	removed := 0
	for {
		keys, next, err := s.rdb.Scan(ctx, cursor, s.prefix+"*", 500).Result()
		if err != nil {
			return removed, fmt.Errorf("failed to scan seen jobs: %w", err)
		}
		if len(keys) > 0 {
			n, err := s.rdb.Del(ctx, keys...).Result()
			if err != nil {
				return removed, fmt.Errorf("failed to delete seen jobs: %w", err)
			}
			removed += int(n)
		}
		if next == 0 {
			return removed, nil
		}
		cursor = next
	}
}
