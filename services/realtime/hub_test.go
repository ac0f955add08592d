package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"cityportal/models"
	"cityportal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	utils.SetLogger(zap.NewNop())
}

func TestHub_DeliversToUserOnly(t *testing.T) {
	h := NewHub(4)
	a := h.Subscribe("alice")
	b := h.Subscribe("bob")
	defer a.Close()
	defer b.Close()

	require.NoError(t, h.Publish(context.Background(), &models.Notification{ID: "n1", UserID: "alice"}))

	var got models.Notification
	require.NoError(t, json.Unmarshal(<-a.Events(), &got))
	assert.Equal(t, "n1", got.ID)
	assert.Len(t, b.Events(), 0)
}

func TestHub_SlowSubscriberDrops(t *testing.T) {
	h := NewHub(1)
	s := h.Subscribe("u")
	defer s.Close()

	assert.Equal(t, 1, h.Deliver("u", []byte("1")))
	assert.Equal(t, 0, h.Deliver("u", []byte("2")))
	assert.Equal(t, "1", string(<-s.Events()))
}

func TestSubscription_CloseIsIdempotent(t *testing.T) {
	h := NewHub(1)
	s := h.Subscribe("u")
	assert.Equal(t, 1, h.Subscribers("u"))

	s.Close()
	s.Close()
	assert.Equal(t, 0, h.Subscribers("u"))

	_, open := <-s.Events()
	assert.False(t, open)
	<-s.Done()
	assert.Equal(t, 0, h.Deliver("u", []byte("x")))
}

func TestHub_ConcurrentDeliverAndClose(t *testing.T) {
	h := NewHub(8)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		s := h.Subscribe("u")
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.Deliver("u", []byte("x"))
			}
		}()
		go func() {
			defer wg.Done()
			s.Close()
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, h.Subscribers("u"))
}

func TestHub_CloseEndsSubscriptions(t *testing.T) {
	h := NewHub(1)
	s := h.Subscribe("u")
	h.Close()
	<-s.Done()

	late := h.Subscribe("u")
	<-late.Done()
	assert.Equal(t, 0, h.Subscribers("u"))
}

func TestUserFromChannel(t *testing.T) {
	id, ok := userFromChannel(channelFor("u-1"))
	assert.True(t, ok)
	assert.Equal(t, "u-1", id)

	_, ok = userFromChannel("other:u-1")
	assert.False(t, ok)
	_, ok = userFromChannel(utils.RealtimeChannelPrefix)
	assert.False(t, ok)
}
