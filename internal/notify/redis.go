package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/jonathan/job-harvester/internal/pipeline"
)

// DefaultChannel receives one event per finished batch.
const DefaultChannel = "EVENT_JOBS_HARVESTED"

// Event is the payload published for a batch.
type Event struct {
	Type    string            `json:"type"`
	Summary *pipeline.Summary `json:"summary"`
}

// RedisPublisher publishes batch summaries on a pub/sub channel.
type RedisPublisher struct {
	rdb     redis.Cmdable
	channel string
}

// NewRedisPublisher creates a publisher. An empty channel uses
// DefaultChannel.
func NewRedisPublisher(rdb redis.Cmdable, channel string) *RedisPublisher {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisPublisher{rdb: rdb, channel: channel}
}

// NotifyRun implements pipeline.Notifier.
func (p *RedisPublisher) NotifyRun(ctx context.Context, s *pipeline.Summary) error {
	payload, err := json.Marshal(Event{Type: p.channel, Summary: s})
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	if err := p.rdb.Publish(ctx, p.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish %s failed: %w", p.channel, err)
	}
	return nil
}
