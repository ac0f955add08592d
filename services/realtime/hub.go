// Package realtime fans notifications out to connected clients.
package realtime

import (
	"context"
	"encoding/json"
	"sync"

	"cityportal/models"
	"cityportal/utils"

	"go.uber.org/zap"
)

// DefaultBufferSize is the per-subscription queue length.
const DefaultBufferSize = 32

// Publisher delivers a notification to the user's live subscriptions.
type Publisher interface {
	Publish(ctx context.Context, n *models.Notification) error
}

// Hub keeps per-user subscriptions of this instance.
type Hub struct {
	mu         sync.RWMutex
	subs       map[string]map[*Subscription]struct{}
	bufferSize int
	closed     bool
}

func NewHub(bufferSize int) *Hub {
	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}
	return &Hub{
		subs:       make(map[string]map[*Subscription]struct{}),
		bufferSize: bufferSize,
	}
}

// Subscription is one live stream of a user's events.
type Subscription struct {
	hub    *Hub
	userID string
	events chan []byte
	done   chan struct{}
	once   sync.Once
}

// Subscribe registers a new subscription for userID.
func (h *Hub) Subscribe(userID string) *Subscription {
	s := &Subscription{
		hub:    h,
		userID: userID,
		events: make(chan []byte, h.bufferSize),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		s.closeLocked()
		return s
	}
	set, ok := h.subs[userID]
	if !ok {
		set = make(map[*Subscription]struct{})
		h.subs[userID] = set
	}
	set[s] = struct{}{}
	return s
}

// Events yields encoded notifications. It is closed when the subscription ends.
func (s *Subscription) Events() <-chan []byte { return s.events }

// Done is closed when the subscription ends.
func (s *Subscription) Done() <-chan struct{} { return s.done }

// Close unregisters the subscription. It is safe to call more than once.
func (s *Subscription) Close() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	if set, ok := s.hub.subs[s.userID]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(s.hub.subs, s.userID)
		}
	}
	s.closeLocked()
}

// closeLocked must run with hub.mu held so no Deliver can race the channel close.
func (s *Subscription) closeLocked() {
	s.once.Do(func() {
		close(s.done)
		close(s.events)
	})
}

// Deliver queues payload on every subscription of userID and returns how many accepted it.
// A full subscription drops the event.
func (h *Hub) Deliver(userID string, payload []byte) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for s := range h.subs[userID] {
		select {
		case s.events <- payload:
			delivered++
		default:
			utils.GetLogger().Warn("Dropping realtime event for slow subscriber", zap.String("userID", userID))
		}
	}
	return delivered
}

// Publish implements Publisher for single instance deployments.
func (h *Hub) Publish(ctx context.Context, n *models.Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return err
	}
	h.Deliver(n.UserID, payload)
	return nil
}

// Subscribers returns the number of live subscriptions of userID.
func (h *Hub) Subscribers(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Close ends every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for userID, set := range h.subs {
		for s := range set {
			s.closeLocked()
		}
		delete(h.subs, userID)
	}
}
