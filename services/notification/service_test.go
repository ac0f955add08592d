package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	memoryRepo "cityportal/database/repository/memory"
	notificationRepo "cityportal/database/repository/notification"
	"cityportal/models"
	"cityportal/services/realtime"
	"cityportal/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func init() {
	utils.SetLogger(zap.NewNop())
}

type pushSenderMock struct {
	mu   sync.Mutex
	sent []*messaging.Message
	err  error
}

func (m *pushSenderMock) Send(ctx context.Context, msg *messaging.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, msg)
	return "msg-id", m.err
}

type queueMock struct {
	payloads []models.BroadcastPayload
}

func (q *queueMock) EnqueueBroadcast(ctx context.Context, p models.BroadcastPayload) error {
	q.payloads = append(q.payloads, p)
	return nil
}

type fixture struct {
	store *memoryRepo.Store
	hub   *realtime.Hub
	push  *pushSenderMock
	svc   *DefaultNotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memoryRepo.NewStore()
	hub := realtime.NewHub(8)
	push := &pushSenderMock{}
	svc := NewDefaultNotificationService(
		memoryRepo.NewNotificationRepo(store),
		memoryRepo.NewUserRepo(store),
		memoryRepo.NewRoleRepo(store),
		hub, push, nil, models.LangEN,
	)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(hub.Close)
	return &fixture{store: store, hub: hub, push: push, svc: svc}
}

func (f *fixture) addUser(t *testing.T, id, token string, roles ...models.Role) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, memoryRepo.NewUserRepo(f.store).Create(ctx, &models.User{ID: id, Email: id + "@city.test", FCMToken: token}))
	for _, r := range roles {
		require.NoError(t, memoryRepo.NewRoleRepo(f.store).Add(ctx, &models.UserRole{ID: id + string(r), UserID: id, Role: r}))
	}
}

func TestNotify_PersistsPublishesAndPushes(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "token-1")
	sub := f.hub.Subscribe("u1")

	n, err := f.svc.Notify(context.Background(), models.NotifyInput{
		UserID: "u1",
		Type:   models.NotificationAppealStatus,
		Title:  models.LocalizedText{EN: "Updated", RU: "Обновлено"},
	})
	require.NoError(t, err)
	assert.False(t, n.Read)

	select {
	case <-sub.Events():
	case <-time.After(time.Second):
		t.Fatal("expected realtime event")
	}

	require.Len(t, f.push.sent, 1)
	assert.Equal(t, "token-1", f.push.sent[0].Token)
	assert.Equal(t, "Updated", f.push.sent[0].Notification.Title)
	assert.Equal(t, "Обновлено", f.push.sent[0].Data["titleRu"])

	count, err := f.svc.UnreadCount(context.Background(), "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestNotify_PushFailureDoesNotFail(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "token-1")
	f.push.err = errors.New("fcm unavailable")

	_, err := f.svc.Notify(context.Background(), models.NotifyInput{UserID: "u1", Title: models.Text("Hi")})
	assert.NoError(t, err)
}

func TestNotify_RequiresTitle(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Notify(context.Background(), models.NotifyInput{UserID: "u1"})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestMarkReadAndAll(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "u1", "")
	ctx := context.Background()

	a, err := f.svc.Notify(ctx, models.NotifyInput{UserID: "u1", Title: models.Text("a")})
	require.NoError(t, err)
	_, err = f.svc.Notify(ctx, models.NotifyInput{UserID: "u1", Title: models.Text("b")})
	require.NoError(t, err)
	assert.Empty(t, f.push.sent)

	require.NoError(t, f.svc.MarkRead(ctx, "u1", a.ID))
	assert.ErrorIs(t, f.svc.MarkRead(ctx, "someone-else", a.ID), models.ErrNotFound)

	unread, err := f.svc.List(ctx, models.NotificationFilter{UserID: "u1", UnreadOnly: true})
	require.NoError(t, err)
	assert.EqualValues(t, 1, unread.Total)

	n, err := f.svc.MarkAllRead(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	require.NoError(t, f.svc.Delete(ctx, "u1", a.ID))
	all, err := f.svc.List(ctx, models.NotificationFilter{UserID: "u1"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, all.Total)
}

func TestFanOut_Audiences(t *testing.T) {
	f := newFixture(t)
	f.addUser(t, "r1", "", models.RoleResident)
	f.addUser(t, "r2", "", models.RoleResident)
	f.addUser(t, "e1", "", models.RoleEmployee)
	f.addUser(t, "a1", "", models.RoleEmployee, models.RoleAdmin)
	ctx := context.Background()

	n, err := f.svc.FanOut(ctx, models.BroadcastPayload{Audience: models.AudienceStaff, Title: models.Text("Meeting")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.svc.FanOut(ctx, models.BroadcastPayload{Audience: models.AudienceResidents, Title: models.Text("Water outage")})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = f.svc.FanOut(ctx, models.BroadcastPayload{Audience: models.AudienceAll, Title: models.Text("Holiday")})
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = f.svc.FanOut(ctx, models.BroadcastPayload{Audience: "martians", Title: models.Text("x")})
	assert.ErrorIs(t, err, models.ErrValidation)
}

// failingBatches fails the listed CreateMany calls (1-based) once each.
type failingBatches struct {
	notificationRepo.NotificationRepository
	calls int
	fail  map[int]bool
}

func (r *failingBatches) CreateMany(ctx context.Context, ns []models.Notification) ([]models.Notification, error) {
	r.calls++
	if r.fail[r.calls] {
		return nil, errors.New("transient write error")
	}
	return r.NotificationRepository.CreateMany(ctx, ns)
}

func TestFanOut_RetryDoesNotDuplicate(t *testing.T) {
	f := newFixture(t)
	repo := &failingBatches{NotificationRepository: memoryRepo.NewNotificationRepo(f.store), fail: map[int]bool{2: true}}
	f.svc.repo = repo
	f.svc.push = nil

	users := memoryRepo.NewUserRepo(f.store)
	for i := 0; i < fanOutBatch+1; i++ {
		require.NoError(t, users.Create(context.Background(), &models.User{ID: fmt.Sprintf("u%03d", i), Email: fmt.Sprintf("u%03d@city.test", i)}))
	}
	p := models.BroadcastPayload{ID: "b-1", Audience: models.AudienceAll, Title: models.Text("Road works")}

	sent, err := f.svc.FanOut(context.Background(), p)
	require.Error(t, err)
	assert.Equal(t, fanOutBatch, sent)

	sent, err = f.svc.FanOut(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, 1, sent, "only the recipient missed by the failed batch is new")

	for i := 0; i < fanOutBatch+1; i++ {
		list, err := f.svc.List(context.Background(), models.NotificationFilter{UserID: fmt.Sprintf("u%03d", i)})
		require.NoError(t, err)
		require.EqualValues(t, 1, list.Total, "user u%03d", i)
	}

	sent, err = f.svc.FanOut(context.Background(), models.BroadcastPayload{ID: "b-2", Audience: models.AudienceAll, Title: models.Text("Other")})
	require.NoError(t, err)
	assert.Equal(t, fanOutBatch+1, sent)
}

func TestBroadcastNotificationID(t *testing.T) {
	assert.Equal(t, broadcastNotificationID("b1", "u1"), broadcastNotificationID("b1", "u1"))
	assert.NotEqual(t, broadcastNotificationID("b1", "u1"), broadcastNotificationID("b1", "u2"))
	assert.NotEqual(t, broadcastNotificationID("b1", "u1"), broadcastNotificationID("b2", "u1"))
}

func TestBroadcast_Enqueues(t *testing.T) {
	f := newFixture(t)
	q := &queueMock{}
	f.svc.queue = q

	err := f.svc.Broadcast(context.Background(), models.BroadcastRequest{Audience: models.AudienceAll, Title: models.Text("Hello")})
	require.NoError(t, err)
	require.Len(t, q.payloads, 1)
	assert.Equal(t, models.NotificationSystem, q.payloads[0].Type)
	assert.NotEmpty(t, q.payloads[0].ID)

	err = f.svc.Broadcast(context.Background(), models.BroadcastRequest{Audience: models.AudienceAll})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestBuildPushMessage_KeepsReservedKeys(t *testing.T) {
	msg := buildPushMessage("tok", models.Notification{
		ID:    "n1",
		Type:  models.NotificationNews,
		Title: models.LocalizedText{RU: "Новости"},
		Link:  "/news/1",
		Data:  map[string]string{"type": "spoofed", "newsId": "1"},
	}, models.LangEN)

	assert.Equal(t, "Новости", msg.Notification.Title)
	assert.Equal(t, models.NotificationNews, msg.Data["type"])
	assert.Equal(t, "1", msg.Data["newsId"])
	assert.Equal(t, "/news/1", msg.Data["link"])
}
