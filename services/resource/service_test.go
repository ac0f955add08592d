package resource

import (
	"context"
	"errors"
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
	mu     sync.Mutex
	sent   []models.NotifyInput
	failOn string
}

func (m *notifierMock) Notify(ctx context.Context, in models.NotifyInput) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if in.UserID == m.failOn {
		return nil, errors.New("boom")
	}
	m.sent = append(m.sent, in)
	return &models.Notification{UserID: in.UserID}, nil
}

var now = time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)

func setup(t *testing.T) (*DefaultResourceService, *notifierMock) {
	t.Helper()
	utils.SetLogger(zap.NewNop())
	store := memoryRepo.NewStore()
	roles := memoryRepo.NewRoleRepo(store)
	require.NoError(t, roles.Add(context.Background(), &models.UserRole{ID: "r1", UserID: "emp", Role: models.RoleEmployee}))
	require.NoError(t, roles.Add(context.Background(), &models.UserRole{ID: "r2", UserID: "emp2", Role: models.RoleEmployee}))
	n := &notifierMock{}
	svc := NewDefaultResourceService(memoryRepo.NewResourceRepo(store), roles, n)
	svc.now = func() time.Time { return now }
	return svc, n
}

func at(days int) *time.Time {
	t := now.Add(time.Duration(days) * day)
	return &t
}

func request(inv string) models.ResourceRequest {
	return models.ResourceRequest{
		Name:            models.LocalizedText{EN: "Snow plough", RU: "Снегоуборщик"},
		Type:            models.ResourceVehicle,
		InventoryNumber: inv,
		ResponsibleID:   "emp",
	}
}

func TestCreate(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	r, err := svc.Create(ctx, request("INV-1"))
	require.NoError(t, err)
	assert.Equal(t, models.ResourceActive, r.Status)

	_, err = svc.Create(ctx, request("INV-1"))
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	bad := request("INV-2")
	bad.ResponsibleID = "resident"
	_, err = svc.Create(ctx, bad)
	assert.ErrorIs(t, err, models.ErrValidation)

	bad = request("INV-3")
	bad.Name = models.LocalizedText{}
	_, err = svc.Create(ctx, bad)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestUpdate_InventoryClash(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, request("INV-1"))
	require.NoError(t, err)
	b, err := svc.Create(ctx, request("INV-2"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, b.ID, request("INV-1"))
	assert.ErrorIs(t, err, models.ErrAlreadyExists)

	req := request("INV-2")
	req.Status = models.ResourceMaintenance
	got, err := svc.Update(ctx, b.ID, req)
	require.NoError(t, err)
	assert.Equal(t, models.ResourceMaintenance, got.Status)
}

func TestRecordMaintenance(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()
	req := request("INV-1")
	req.Status = models.ResourceMaintenance
	r, err := svc.Create(ctx, req)
	require.NoError(t, err)

	_, err = svc.RecordMaintenance(ctx, r.ID, models.MaintenanceRequest{PerformedAt: *at(2)})
	assert.ErrorIs(t, err, models.ErrValidation)
	_, err = svc.RecordMaintenance(ctx, r.ID, models.MaintenanceRequest{PerformedAt: *at(-1), NextAt: at(-2)})
	assert.ErrorIs(t, err, models.ErrValidation)

	got, err := svc.RecordMaintenance(ctx, r.ID, models.MaintenanceRequest{PerformedAt: *at(-1), NextAt: at(90)})
	require.NoError(t, err)
	assert.Equal(t, models.ResourceActive, got.Status)
	assert.True(t, got.LastMaintenanceAt.Equal(*at(-1)))
	assert.True(t, got.NextMaintenanceAt.Equal(*at(90)))

	dec := request("INV-2")
	dec.Status = models.ResourceDecommissioned
	d, err := svc.Create(ctx, dec)
	require.NoError(t, err)
	_, err = svc.RecordMaintenance(ctx, d.ID, models.MaintenanceRequest{PerformedAt: now})
	assert.ErrorIs(t, err, models.ErrInvalidTransition)
}

func TestNotifyMaintenanceDue(t *testing.T) {
	svc, n := setup(t)
	ctx := context.Background()

	soon := request("INV-1")
	soon.NextMaintenanceAt = at(3)
	_, err := svc.Create(ctx, soon)
	require.NoError(t, err)

	overdue := request("INV-2")
	overdue.NextMaintenanceAt = at(-1)
	overdue.ResponsibleID = "emp2"
	_, err = svc.Create(ctx, overdue)
	require.NoError(t, err)

	later := request("INV-3")
	later.NextMaintenanceAt = at(30)
	_, err = svc.Create(ctx, later)
	require.NoError(t, err)

	orphan := request("INV-4")
	orphan.NextMaintenanceAt = at(1)
	orphan.ResponsibleID = ""
	_, err = svc.Create(ctx, orphan)
	require.NoError(t, err)

	retired := request("INV-5")
	retired.NextMaintenanceAt = at(1)
	retired.Status = models.ResourceDecommissioned
	_, err = svc.Create(ctx, retired)
	require.NoError(t, err)

	due, err := svc.DueForMaintenance(ctx, 7*day)
	require.NoError(t, err)
	assert.Len(t, due, 3)

	sent, err := svc.NotifyMaintenanceDue(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 2, sent)
	require.Len(t, n.sent, 2)
	assert.Equal(t, models.NotificationMaintenanceDue, n.sent[0].Type)
	assert.Contains(t, n.sent[0].Title.RU, "Снегоуборщик")
	assert.Contains(t, n.sent[0].Title.EN, "Snow plough")

	n.sent = nil
	sent, err = svc.NotifyMaintenanceDue(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, sent)
	assert.Empty(t, n.sent)
}

func TestNotifyMaintenanceDue_OncePerDueDate(t *testing.T) {
	svc, n := setup(t)
	ctx := context.Background()

	first := request("INV-1")
	first.NextMaintenanceAt = at(2)
	r1, err := svc.Create(ctx, first)
	require.NoError(t, err)

	second := request("INV-2")
	second.NextMaintenanceAt = at(3)
	second.ResponsibleID = "emp2"
	_, err = svc.Create(ctx, second)
	require.NoError(t, err)

	n.failOn = "emp2"
	sent, err := svc.NotifyMaintenanceDue(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	stored, err := svc.repo.GetByID(ctx, r1.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.MaintenanceNotifiedFor)
	assert.True(t, stored.MaintenanceNotifiedFor.Equal(*at(2)))

	// The failed reminder is retried on the next scan, the delivered one is not.
	n.failOn = ""
	n.sent = nil
	sent, err = svc.NotifyMaintenanceDue(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, n.sent, 1)
	assert.Equal(t, "emp2", n.sent[0].UserID)

	// A new due date re-arms the reminder.
	_, err = svc.RecordMaintenance(ctx, r1.ID, models.MaintenanceRequest{PerformedAt: now.Add(-time.Hour), NextAt: at(5)})
	require.NoError(t, err)
	n.sent = nil
	sent, err = svc.NotifyMaintenanceDue(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)
	require.Len(t, n.sent, 1)
	assert.Equal(t, "emp", n.sent[0].UserID)
	assert.Equal(t, at(5).Format("2006-01-02"), n.sent[0].Data["dueAt"])
}
