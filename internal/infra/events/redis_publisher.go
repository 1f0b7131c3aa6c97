// Package events broadcasts run lifecycle events to external listeners.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/whhaicheng/SimDesk/internal/domain/simulation"
)

const (
	// Channel receives every run event.
	Channel = "simdesk:runs"

	lastEventTTL = 24 * time.Hour
)

// RunChannel returns the channel carrying events of a single run.
func RunChannel(runID string) string {
	return Channel + ":" + runID
}

func lastEventKey(runID string) string {
	return "simdesk:run:" + runID + ":last_event"
}

// RedisPublisher publishes events through Redis Pub/Sub and keeps the
// latest event of each run under a key for late subscribers.
type RedisPublisher struct {
	client *redis.Client
}

// NewRedisPublisher creates a publisher on top of an existing client.
func NewRedisPublisher(client *redis.Client) *RedisPublisher {
	return &RedisPublisher{client: client}
}

// Publish sends the event to the global channel and the run channel.
func (p *RedisPublisher) Publish(ctx context.Context, event simulation.Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, Channel, data)
	pipe.Publish(ctx, RunChannel(event.RunID), data)
	if event.Type == simulation.EventDeleted {
		pipe.Del(ctx, lastEventKey(event.RunID))
	} else {
		pipe.Set(ctx, lastEventKey(event.RunID), data, lastEventTTL)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish event %s for run %s: %w", event.Type, event.RunID, err)
	}
	return nil
}

// LastEvent returns the most recent event stored for a run, or nil.
func (p *RedisPublisher) LastEvent(ctx context.Context, runID string) (*simulation.Event, error) {
	data, err := p.client.Get(ctx, lastEventKey(runID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read last event: %w", err)
	}

	var event simulation.Event
	if err := json.Unmarshal(data, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	return &event, nil
}

// Close closes the underlying client.
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
