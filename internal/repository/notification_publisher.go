package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/academic-portal-api/internal/models"
)

// ErrPublisherDisabled is returned when no Redis client is configured.
var ErrPublisherDisabled = errors.New("notification publisher disabled")

// NotificationPublisher pushes notifications onto a Redis pub/sub channel for
// the portal's realtime consumers.
type NotificationPublisher struct {
	client  *redis.Client
	channel string
}

// NewNotificationPublisher constructs a publisher for channel.
func NewNotificationPublisher(client *redis.Client, channel string) *NotificationPublisher {
	return &NotificationPublisher{client: client, channel: channel}
}

// Publish serialises n and publishes it. It returns the number of subscribers reached.
func (p *NotificationPublisher) Publish(ctx context.Context, n models.Notification) (int64, error) {
	if p.client == nil || p.channel == "" {
		return 0, ErrPublisherDisabled
	}
	payload, err := json.Marshal(n)
	if err != nil {
		return 0, fmt.Errorf("marshal notification: %w", err)
	}
	receivers, err := p.client.Publish(ctx, p.channel, payload).Result()
	if err != nil {
		return 0, fmt.Errorf("publish to %s: %w", p.channel, err)
	}
	return receivers, nil
}
