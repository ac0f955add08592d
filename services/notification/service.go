package notification

import (
	"context"
	"fmt"
	"time"

	notificationRepo "cityportal/database/repository/notification"
	roleRepo "cityportal/database/repository/role"
	userRepo "cityportal/database/repository/user"
	"cityportal/models"
	"cityportal/services/realtime"
	"cityportal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const fanOutBatch = 500

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	repo      notificationRepo.NotificationRepository
	users     userRepo.UserRepository
	roles     roleRepo.RoleRepository
	publisher realtime.Publisher
	push      PushSender
	queue     BroadcastQueue
	lang      string
	now       func() time.Time
}

// NewDefaultNotificationService wires the service. push and queue may be nil: push is then skipped
// and broadcasts fan out inline.
func NewDefaultNotificationService(
	repo notificationRepo.NotificationRepository,
	users userRepo.UserRepository,
	roles roleRepo.RoleRepository,
	publisher realtime.Publisher,
	push PushSender,
	queue BroadcastQueue,
	defaultLang string,
) *DefaultNotificationService {
	return &DefaultNotificationService{
		repo:      repo,
		users:     users,
		roles:     roles,
		publisher: publisher,
		push:      push,
		queue:     queue,
		lang:      defaultLang,
		now:       time.Now,
	}
}

func (s *DefaultNotificationService) build(in models.NotifyInput) models.Notification {
	if in.Type == "" {
		in.Type = models.NotificationSystem
	}
	return models.Notification{
		ID:        uuid.NewString(),
		UserID:    in.UserID,
		Type:      in.Type,
		Title:     in.Title,
		Body:      in.Body,
		Link:      in.Link,
		Data:      in.Data,
		CreatedAt: s.now().UTC(),
	}
}

func (s *DefaultNotificationService) Notify(ctx context.Context, in models.NotifyInput) (*models.Notification, error) {
	if in.UserID == "" {
		return nil, models.NewValidationError("userId", "required")
	}
	if in.Title.IsEmpty() {
		return nil, models.NewValidationError("title", "required")
	}

	n := s.build(in)
	if err := s.repo.Create(ctx, &n); err != nil {
		return nil, fmt.Errorf("Notify: failed to store notification: %w", err)
	}

	s.deliver(ctx, []models.Notification{n})
	return &n, nil
}

// deliver publishes to live subscribers and sends pushes. Failures are logged only.
func (s *DefaultNotificationService) deliver(ctx context.Context, ns []models.Notification) {
	if len(ns) == 0 {
		return
	}
	logger := utils.GetLogger()
	if s.publisher != nil {
		for i := range ns {
			if err := s.publisher.Publish(ctx, &ns[i]); err != nil {
				logger.Warn("Realtime publish failed", zap.String("userID", ns[i].UserID), zap.Error(err))
			}
		}
	}
	if s.push == nil {
		return
	}

	ids := make([]string, len(ns))
	for i, n := range ns {
		ids[i] = n.UserID
	}
	tokens, err := s.users.PushTokens(ctx, ids)
	if err != nil {
		logger.Warn("Failed to load push tokens", zap.Error(err))
		return
	}
	for _, n := range ns {
		token, ok := tokens[n.UserID]
		if !ok || token == "" {
			continue
		}
		if _, err := s.push.Send(ctx, buildPushMessage(token, n, s.lang)); err != nil {
			logger.Warn("Push delivery failed", zap.String("userID", n.UserID), zap.String("notificationID", n.ID), zap.Error(err))
		}
	}
}

func (s *DefaultNotificationService) List(ctx context.Context, f models.NotificationFilter) (models.List[models.Notification], error) {
	f.Page = f.Page.Normalize()
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return models.List[models.Notification]{}, fmt.Errorf("List: %w", err)
	}
	return models.NewList(items, total, f.Page), nil
}

func (s *DefaultNotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id, s.now().UTC())
}

func (s *DefaultNotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID, s.now().UTC())
}

func (s *DefaultNotificationService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}

func (s *DefaultNotificationService) UpdatePushToken(ctx context.Context, userID, token string) error {
	if err := s.users.SetFCMToken(ctx, userID, token); err != nil {
		return fmt.Errorf("UpdatePushToken: %w", err)
	}
	return nil
}

func (s *DefaultNotificationService) Broadcast(ctx context.Context, req models.BroadcastRequest) error {
	if req.Title.IsEmpty() {
		return models.NewValidationError("title", "required")
	}
	p := models.BroadcastPayload{
		Audience: req.Audience,
		Type:     req.Type,
		Title:    req.Title,
		Body:     req.Body,
		Link:     req.Link,
	}
	return s.Enqueue(ctx, p)
}

// Enqueue queues a broadcast, falling back to an inline fan-out when no queue is wired.
func (s *DefaultNotificationService) Enqueue(ctx context.Context, p models.BroadcastPayload) error {
	if p.Type == "" {
		p.Type = models.NotificationSystem
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if s.queue == nil {
		_, err := s.FanOut(ctx, p)
		return err
	}
	if err := s.queue.EnqueueBroadcast(ctx, p); err != nil {
		return fmt.Errorf("Broadcast: failed to enqueue: %w", err)
	}
	return nil
}

func (s *DefaultNotificationService) audience(ctx context.Context, audience string) ([]string, error) {
	switch audience {
	case models.AudienceAll, "":
		return s.users.ListIDs(ctx)
	case models.AudienceResidents:
		return s.roles.UserIDs(ctx, models.RoleResident)
	case models.AudienceStaff:
		return s.roles.UserIDs(ctx, models.RoleEmployee, models.RoleAdmin)
	default:
		return nil, models.NewValidationError("audience", "unknown audience")
	}
}

// broadcastNotificationID derives the recipient's notification id from the broadcast id,
// so a retried fan-out finds the rows it already wrote.
func broadcastNotificationID(broadcastID, userID string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("broadcast:"+broadcastID+":"+userID)).String()
}

// FanOut stores and delivers the broadcast to every recipient. Running it again with the same
// payload ID only reaches the recipients the earlier run missed.
func (s *DefaultNotificationService) FanOut(ctx context.Context, p models.BroadcastPayload) (int, error) {
	ids, err := s.audience(ctx, p.Audience)
	if err != nil {
		return 0, fmt.Errorf("FanOut: %w", err)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}

	sent := 0
	for start := 0; start < len(ids); start += fanOutBatch {
		end := start + fanOutBatch
		if end > len(ids) {
			end = len(ids)
		}
		batch := make([]models.Notification, 0, end-start)
		for _, id := range ids[start:end] {
			n := s.build(models.NotifyInput{
				UserID: id,
				Type:   p.Type,
				Title:  p.Title,
				Body:   p.Body,
				Link:   p.Link,
				Data:   p.Data,
			})
			n.ID = broadcastNotificationID(p.ID, id)
			batch = append(batch, n)
		}
		created, err := s.repo.CreateMany(ctx, batch)
		if err != nil {
			return sent, fmt.Errorf("FanOut: failed to store batch: %w", err)
		}
		s.deliver(ctx, created)
		sent += len(created)
	}

	utils.GetLogger().Info("Broadcast delivered",
		zap.String("broadcastID", p.ID), zap.String("audience", p.Audience), zap.Int("recipients", sent))
	return sent, nil
}
