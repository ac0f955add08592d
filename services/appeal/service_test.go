package appeal

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	memoryRepo "cityportal/database/repository/memory"
	"cityportal/models"
	"cityportal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type notifierMock struct {
	mu   sync.Mutex
	sent []models.NotifyInput
}

func (m *notifierMock) Notify(ctx context.Context, in models.NotifyInput) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, in)
	return &models.Notification{UserID: in.UserID}, nil
}

func setup(t *testing.T) (*DefaultAppealService, *notifierMock) {
	t.Helper()
	utils.SetLogger(zap.NewNop())
	store := memoryRepo.NewStore()
	roles := memoryRepo.NewRoleRepo(store)
	require.NoError(t, roles.Add(context.Background(), &models.UserRole{ID: "r1", UserID: "emp", Role: models.RoleEmployee}))
	require.NoError(t, roles.Add(context.Background(), &models.UserRole{ID: "r2", UserID: "res", Role: models.RoleResident}))

	n := &notifierMock{}
	svc := NewDefaultAppealService(memoryRepo.NewAppealRepo(store), roles, n)
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC) }
	return svc, n
}

func create(t *testing.T, svc *DefaultAppealService, userID, title string) *models.Appeal {
	t.Helper()
	a, err := svc.Create(context.Background(), userID, models.AppealCreateRequest{
		Title:       title,
		Description: "Large pothole near the bus stop",
		Category:    models.CategoryInfrastructure,
		Address:     "Lenina 1",
	})
	require.NoError(t, err)
	return a
}

func TestCreate(t *testing.T) {
	svc, _ := setup(t)
	a := create(t, svc, "res", " Pothole ")

	assert.Regexp(t, regexp.MustCompile(`^AP-20240301-[0-9a-f]{6}$`), a.Number)
	assert.Equal(t, "Pothole", a.Title)
	assert.Equal(t, models.AppealNew, a.Status)
	assert.Equal(t, models.PriorityMedium, a.Priority)
	assert.Equal(t, "res", a.SubmittedBy)

	_, err := svc.Create(context.Background(), "res", models.AppealCreateRequest{Title: "  ", Description: "x", Category: models.CategoryOther})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestGet_ResidentsSeeOnlyTheirOwn(t *testing.T) {
	svc, _ := setup(t)
	a := create(t, svc, "res", "Pothole")
	ctx := context.Background()

	_, err := svc.Get(ctx, models.Viewer{UserID: "res", Roles: []models.Role{models.RoleResident}}, a.ID)
	assert.NoError(t, err)
	_, err = svc.Get(ctx, models.Viewer{UserID: "other", Roles: []models.Role{models.RoleResident}}, a.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = svc.Get(ctx, models.Viewer{UserID: "emp", Roles: []models.Role{models.RoleEmployee}}, a.ID)
	assert.NoError(t, err)
}

func TestListMine_ScopesToSubmitter(t *testing.T) {
	svc, _ := setup(t)
	create(t, svc, "res", "Pothole")
	create(t, svc, "res", "Broken lamp")
	create(t, svc, "other", "Noise")
	ctx := context.Background()

	mine, err := svc.ListMine(ctx, "res", models.AppealFilter{SubmittedBy: "other"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), mine.Total)
	assert.Equal(t, int64(models.DefaultPageLimit), mine.Limit)

	all, err := svc.List(ctx, models.AppealFilter{Search: "lamp"})
	require.NoError(t, err)
	require.Len(t, all.Items, 1)
	assert.Equal(t, "Broken lamp", all.Items[0].Title)
}

func TestWithdraw_OnlyWhileNew(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	a := create(t, svc, "res", "Pothole")
	b := create(t, svc, "res", "Lamp")

	assert.ErrorIs(t, svc.Withdraw(ctx, "other", a.ID), models.ErrNotFound)
	require.NoError(t, svc.Withdraw(ctx, "res", a.ID))
	_, err := svc.Get(ctx, models.Viewer{UserID: "res"}, a.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.UpdateStatus(ctx, b.ID, models.AppealStatusRequest{Status: models.AppealInProgress})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Withdraw(ctx, "res", b.ID), models.ErrInvalidTransition)
}

func TestUpdateStatus_Workflow(t *testing.T) {
	svc, n := setup(t)
	ctx := context.Background()
	a := create(t, svc, "res", "Pothole")

	_, err := svc.UpdateStatus(ctx, a.ID, models.AppealStatusRequest{Status: models.AppealResolved})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = svc.UpdateStatus(ctx, a.ID, models.AppealStatusRequest{Status: models.AppealInProgress})
	require.NoError(t, err)

	got, err := svc.UpdateStatus(ctx, a.ID, models.AppealStatusRequest{Status: models.AppealResolved, Response: "Patched"})
	require.NoError(t, err)
	require.NotNil(t, got.ResolvedAt)
	assert.Equal(t, "Patched", got.Response)

	got, err = svc.UpdateStatus(ctx, a.ID, models.AppealStatusRequest{Status: models.AppealInProgress})
	require.NoError(t, err)
	assert.Nil(t, got.ResolvedAt)

	require.Len(t, n.sent, 3)
	last := n.sent[2]
	assert.Equal(t, "res", last.UserID)
	assert.Equal(t, models.NotificationAppealStatus, last.Type)
	assert.Contains(t, last.Title.EN, a.Number)
	assert.Contains(t, last.Body.EN, "in progress")
	assert.Contains(t, last.Body.RU, "в работе")
	assert.Equal(t, "in_progress", last.Data["status"])
}

func TestAssign(t *testing.T) {
	svc, n := setup(t)
	ctx := context.Background()
	a := create(t, svc, "res", "Pothole")

	_, err := svc.Assign(ctx, a.ID, "res")
	assert.ErrorIs(t, err, models.ErrValidation)

	got, err := svc.Assign(ctx, a.ID, "emp")
	require.NoError(t, err)
	assert.Equal(t, "emp", got.AssignedTo)

	require.Len(t, n.sent, 1)
	assert.Equal(t, "emp", n.sent[0].UserID)
	assert.Equal(t, models.NotificationAppealAssigned, n.sent[0].Type)

	_, err = svc.Assign(ctx, "missing", "emp")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestDelete(t *testing.T) {
	svc, _ := setup(t)
	a := create(t, svc, "res", "Pothole")
	require.NoError(t, svc.Delete(context.Background(), a.ID))
	assert.ErrorIs(t, svc.Delete(context.Background(), a.ID), models.ErrNotFound)
}
