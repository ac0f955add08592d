package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cityportal/models"
	"cityportal/utils"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	bridgeMinBackoff = 500 * time.Millisecond
	bridgeMaxBackoff = 30 * time.Second
)

// RedisBridge publishes through Redis pub/sub so every instance's hub receives the event.
type RedisBridge struct {
	client     *redis.Client
	hub        *Hub
	minBackoff time.Duration
	maxBackoff time.Duration
}

func NewRedisBridge(client *redis.Client, hub *Hub) *RedisBridge {
	return &RedisBridge{client: client, hub: hub, minBackoff: bridgeMinBackoff, maxBackoff: bridgeMaxBackoff}
}

func channelFor(userID string) string {
	return utils.RealtimeChannelPrefix + userID
}

func userFromChannel(channel string) (string, bool) {
	if !strings.HasPrefix(channel, utils.RealtimeChannelPrefix) {
		return "", false
	}
	id := strings.TrimPrefix(channel, utils.RealtimeChannelPrefix)
	return id, id != ""
}

func (b *RedisBridge) Publish(ctx context.Context, n *models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := b.client.Publish(ctx, channelFor(n.UserID), payload).Err(); err != nil {
		return fmt.Errorf("failed to publish realtime event: %w", err)
	}
	return nil
}

// Run forwards Redis messages to the local hub until ctx is done. A failed or dropped
// subscription is retried with exponential backoff.
func (b *RedisBridge) Run(ctx context.Context) error {
	logger := utils.GetLogger()
	delay := b.minBackoff
	for {
		subscribed, err := b.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if subscribed {
			delay = b.minBackoff
		}
		logger.Warn("Realtime bridge disconnected, resubscribing", zap.Duration("backoff", delay), zap.Error(err))

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		if delay *= 2; delay > b.maxBackoff {
			delay = b.maxBackoff
		}
	}
}

// listen holds one subscription. subscribed reports whether Redis confirmed it.
func (b *RedisBridge) listen(ctx context.Context) (subscribed bool, err error) {
	pubsub := b.client.PSubscribe(ctx, utils.RealtimeChannelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return false, fmt.Errorf("failed to subscribe to realtime channel: %w", err)
	}
	utils.GetLogger().Info("Realtime bridge subscribed", zap.String("pattern", utils.RealtimeChannelPrefix+"*"))

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return true, errors.New("realtime subscription closed")
			}
			userID, ok := userFromChannel(msg.Channel)
			if !ok {
				continue
			}
			b.hub.Deliver(userID, []byte(msg.Payload))
		}
	}
}
