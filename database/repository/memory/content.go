package memoryRepo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	appealRepo "cityportal/database/repository/appeal"
	catalogRepo "cityportal/database/repository/catalog"
	documentRepo "cityportal/database/repository/document"
	newsRepo "cityportal/database/repository/news"
	notificationRepo "cityportal/database/repository/notification"
	resourceRepo "cityportal/database/repository/resource"
	"cityportal/models"
)

type Appeals struct{ t *table[models.Appeal] }

func NewAppealRepo(s *Store) appealRepo.AppealRepository {
	return &Appeals{t: &table[models.Appeal]{s: s, rows: s.appeals, name: "appeal", id: func(a models.Appeal) string { return a.ID }}}
}

func (r *Appeals) Create(ctx context.Context, a *models.Appeal) error { return r.t.create(*a) }
func (r *Appeals) GetByID(ctx context.Context, id string) (*models.Appeal, error) {
	return r.t.get(id)
}
func (r *Appeals) Update(ctx context.Context, a *models.Appeal) error { return r.t.replace(*a) }
func (r *Appeals) Delete(ctx context.Context, id string) error        { return r.t.delete(id) }

func (r *Appeals) List(ctx context.Context, f models.AppealFilter) ([]models.Appeal, int64, error) {
	items := r.t.filter(func(a models.Appeal) bool {
		switch {
		case f.Status != "" && a.Status != f.Status,
			f.Category != "" && a.Category != f.Category,
			f.Priority != "" && a.Priority != f.Priority,
			f.AssignedTo != "" && a.AssignedTo != f.AssignedTo,
			f.SubmittedBy != "" && a.SubmittedBy != f.SubmittedBy:
			return false
		case f.Search != "":
			return containsFold(a.Number, f.Search) || containsFold(a.Title, f.Search) ||
				containsFold(a.Description, f.Search) || containsFold(a.Address, f.Search)
		}
		return true
	})
	newestFirst(items, func(a models.Appeal) time.Time { return a.CreatedAt })
	page, total := paginate(items, f.Page)
	return page, total, nil
}

type Services struct{ t *table[models.Service] }

func NewServiceRepo(s *Store) catalogRepo.ServiceRepository {
	return &Services{t: &table[models.Service]{s: s, rows: s.services, name: "service", id: func(v models.Service) string { return v.ID }}}
}

func (r *Services) Create(ctx context.Context, v *models.Service) error { return r.t.create(*v) }
func (r *Services) GetByID(ctx context.Context, id string) (*models.Service, error) {
	return r.t.get(id)
}
func (r *Services) Update(ctx context.Context, v *models.Service) error { return r.t.replace(*v) }
func (r *Services) Delete(ctx context.Context, id string) error         { return r.t.delete(id) }

func (r *Services) List(ctx context.Context, f models.ServiceFilter) ([]models.Service, int64, error) {
	items := r.t.filter(func(v models.Service) bool {
		switch {
		case f.Category != "" && v.Category != f.Category,
			f.Status != "" && v.Status != f.Status,
			f.Online != nil && v.Online != *f.Online:
			return false
		case f.Search != "":
			return v.Name.Contains(f.Search) || v.Description.Contains(f.Search)
		}
		return true
	})
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name.EN < items[j].Name.EN })
	page, total := paginate(items, f.Page)
	return page, total, nil
}

type Resources struct{ t *table[models.Resource] }

func NewResourceRepo(s *Store) resourceRepo.ResourceRepository {
	return &Resources{t: &table[models.Resource]{s: s, rows: s.resources, name: "resource", id: func(v models.Resource) string { return v.ID }}}
}

func (r *Resources) unique(v models.Resource) error {
	dup := r.t.filter(func(o models.Resource) bool {
		return o.InventoryNumber == v.InventoryNumber && o.ID != v.ID
	})
	if len(dup) > 0 {
		return fmt.Errorf("inventory number %s: %w", v.InventoryNumber, models.ErrAlreadyExists)
	}
	return nil
}

func (r *Resources) Create(ctx context.Context, v *models.Resource) error {
	if err := r.unique(*v); err != nil {
		return err
	}
	return r.t.create(*v)
}

func (r *Resources) GetByID(ctx context.Context, id string) (*models.Resource, error) {
	return r.t.get(id)
}

func (r *Resources) Update(ctx context.Context, v *models.Resource) error {
	if err := r.unique(*v); err != nil {
		return err
	}
	return r.t.replace(*v)
}

func (r *Resources) Delete(ctx context.Context, id string) error { return r.t.delete(id) }

func (r *Resources) List(ctx context.Context, f models.ResourceFilter) ([]models.Resource, int64, error) {
	items := r.t.filter(func(v models.Resource) bool {
		switch {
		case f.Type != "" && v.Type != f.Type,
			f.Status != "" && v.Status != f.Status,
			f.ResponsibleID != "" && v.ResponsibleID != f.ResponsibleID:
			return false
		case f.Search != "":
			return v.Name.Contains(f.Search) || containsFold(v.InventoryNumber, f.Search) || containsFold(v.Location, f.Search)
		}
		return true
	})
	sort.SliceStable(items, func(i, j int) bool { return items[i].InventoryNumber < items[j].InventoryNumber })
	page, total := paginate(items, f.Page)
	return page, total, nil
}

func (r *Resources) DueForMaintenance(ctx context.Context, before time.Time) ([]models.Resource, error) {
	items := r.t.filter(func(v models.Resource) bool {
		return v.NextMaintenanceAt != nil && !v.NextMaintenanceAt.After(before) && v.Status != models.ResourceDecommissioned
	})
	sort.SliceStable(items, func(i, j int) bool { return items[i].NextMaintenanceAt.Before(*items[j].NextMaintenanceAt) })
	return items, nil
}

func (r *Resources) MarkMaintenanceNotified(ctx context.Context, id string, due time.Time) error {
	v, err := r.t.get(id)
	if err != nil {
		return err
	}
	v.MaintenanceNotifiedFor = &due
	return r.t.replace(*v)
}

type Documents struct{ t *table[models.Document] }

func NewDocumentRepo(s *Store) documentRepo.DocumentRepository {
	return &Documents{t: &table[models.Document]{s: s, rows: s.documents, name: "document", id: func(v models.Document) string { return v.ID }}}
}

func (r *Documents) Create(ctx context.Context, v *models.Document) error { return r.t.create(*v) }
func (r *Documents) GetByID(ctx context.Context, id string) (*models.Document, error) {
	return r.t.get(id)
}
func (r *Documents) Update(ctx context.Context, v *models.Document) error { return r.t.replace(*v) }
func (r *Documents) Delete(ctx context.Context, id string) error          { return r.t.delete(id) }

// viewerOf rebuilds the viewer from the filter scoping fields.
func viewerOf(f models.DocumentFilter) models.Viewer {
	v := models.Viewer{UserID: f.ViewerID}
	if f.ViewerIsStaff {
		v.Roles = []models.Role{models.RoleEmployee}
	}
	return v
}

func (r *Documents) List(ctx context.Context, f models.DocumentFilter) ([]models.Document, int64, error) {
	items := r.t.filter(func(d models.Document) bool {
		switch {
		case !d.VisibleTo(viewerOf(f)),
			f.Category != "" && d.Category != f.Category,
			f.Visibility != "" && d.Visibility != f.Visibility,
			f.OwnerID != "" && d.OwnerID != f.OwnerID,
			f.AppealID != "" && d.AppealID != f.AppealID:
			return false
		}
		return true
	})
	newestFirst(items, func(d models.Document) time.Time { return d.CreatedAt })
	page, total := paginate(items, f.Page)
	return page, total, nil
}

type NewsItems struct{ t *table[models.News] }

func NewNewsRepo(s *Store) newsRepo.NewsRepository {
	return &NewsItems{t: &table[models.News]{s: s, rows: s.news, name: "news", id: func(v models.News) string { return v.ID }}}
}

func (r *NewsItems) Create(ctx context.Context, v *models.News) error { return r.t.create(*v) }
func (r *NewsItems) GetByID(ctx context.Context, id string) (*models.News, error) {
	return r.t.get(id)
}
func (r *NewsItems) Update(ctx context.Context, v *models.News) error { return r.t.replace(*v) }
func (r *NewsItems) Delete(ctx context.Context, id string) error      { return r.t.delete(id) }

func (r *NewsItems) List(ctx context.Context, f models.NewsFilter) ([]models.News, int64, error) {
	items := r.t.filter(func(v models.News) bool {
		return (f.Status == "" || v.Status == f.Status) && (f.Category == "" || v.Category == f.Category)
	})
	newestFirst(items, func(v models.News) time.Time {
		if v.PublishedAt != nil {
			return *v.PublishedAt
		}
		return v.CreatedAt
	})
	page, total := paginate(items, f.Page)
	return page, total, nil
}

type Notifications struct{ t *table[models.Notification] }

func NewNotificationRepo(s *Store) notificationRepo.NotificationRepository {
	return &Notifications{t: &table[models.Notification]{s: s, rows: s.notifications, name: "notification", id: func(v models.Notification) string { return v.ID }}}
}

func (r *Notifications) Create(ctx context.Context, n *models.Notification) error {
	return r.t.create(*n)
}

func (r *Notifications) CreateMany(ctx context.Context, ns []models.Notification) ([]models.Notification, error) {
	var created []models.Notification
	for _, n := range ns {
		err := r.t.create(n)
		switch {
		case errors.Is(err, models.ErrAlreadyExists):
			continue
		case err != nil:
			return created, err
		}
		created = append(created, n)
	}
	return created, nil
}

func (r *Notifications) List(ctx context.Context, f models.NotificationFilter) ([]models.Notification, int64, error) {
	items := r.t.filter(func(n models.Notification) bool {
		return n.UserID == f.UserID && (!f.UnreadOnly || !n.Read)
	})
	newestFirst(items, func(n models.Notification) time.Time { return n.CreatedAt })
	page, total := paginate(items, f.Page)
	return page, total, nil
}

func (r *Notifications) CountUnread(ctx context.Context, userID string) (int64, error) {
	return int64(len(r.t.filter(func(n models.Notification) bool { return n.UserID == userID && !n.Read }))), nil
}

func (r *Notifications) MarkRead(ctx context.Context, userID, id string, at time.Time) error {
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	n, ok := r.t.rows[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
	}
	n.Read = true
	n.ReadAt = &at
	r.t.rows[id] = n
	return nil
}

func (r *Notifications) MarkAllRead(ctx context.Context, userID string, at time.Time) (int64, error) {
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	var n int64
	for id, row := range r.t.rows {
		if row.UserID == userID && !row.Read {
			row.Read = true
			row.ReadAt = &at
			r.t.rows[id] = row
			n++
		}
	}
	return n, nil
}

func (r *Notifications) Delete(ctx context.Context, userID, id string) error {
	r.t.s.mu.Lock()
	defer r.t.s.mu.Unlock()
	n, ok := r.t.rows[id]
	if !ok || n.UserID != userID {
		return fmt.Errorf("notification %s: %w", id, models.ErrNotFound)
	}
	delete(r.t.rows, id)
	return nil
}
