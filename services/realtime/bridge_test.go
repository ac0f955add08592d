package realtime

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"cityportal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startBridge(t *testing.T, addr string, hub *Hub) *RedisBridge {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: addr, MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	b := NewRedisBridge(client, hub)
	b.minBackoff = 10 * time.Millisecond
	b.maxBackoff = 50 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- b.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("bridge did not stop")
		}
	})
	return b
}

func receive(t *testing.T, sub *Subscription) models.Notification {
	t.Helper()
	select {
	case payload := <-sub.Events():
		var n models.Notification
		require.NoError(t, json.Unmarshal(payload, &n))
		return n
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
		return models.Notification{}
	}
}

func TestRedisBridge_DeliversToLocalHub(t *testing.T) {
	m := miniredis.RunT(t)
	hub := NewHub(4)
	t.Cleanup(hub.Close)
	sub := hub.Subscribe("u1")
	defer sub.Close()

	b := startBridge(t, m.Addr(), hub)
	require.Eventually(t, func() bool { return m.PubSubNumPat() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, b.Publish(context.Background(), &models.Notification{ID: "n1", UserID: "u1"}))
	assert.Equal(t, "n1", receive(t, sub).ID)

	// other instances publishing on the same Redis reach this hub too
	payload, err := json.Marshal(models.Notification{ID: "n2", UserID: "u1"})
	require.NoError(t, err)
	m.Publish(channelFor("u1"), string(payload))
	assert.Equal(t, "n2", receive(t, sub).ID)
}

func TestRedisBridge_ResubscribesAfterOutage(t *testing.T) {
	m := miniredis.RunT(t)
	addr := m.Addr()
	m.Close()

	hub := NewHub(4)
	t.Cleanup(hub.Close)
	sub := hub.Subscribe("u1")
	defer sub.Close()

	b := startBridge(t, addr, hub)
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, m.Restart())

	require.Eventually(t, func() bool { return m.PubSubNumPat() == 1 }, 3*time.Second, 10*time.Millisecond)
	require.NoError(t, b.Publish(context.Background(), &models.Notification{ID: "n1", UserID: "u1"}))
	assert.Equal(t, "n1", receive(t, sub).ID)
}

func TestRedisBridge_StopsOnCancel(t *testing.T) {
	m := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- NewRedisBridge(client, NewHub(1)).Run(ctx) }()
	require.Eventually(t, func() bool { return m.PubSubNumPat() == 1 }, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
