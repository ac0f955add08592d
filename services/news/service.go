// Package news manages municipal news items.
package news

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	newsRepo "cityportal/database/repository/news"
	"cityportal/i18n"
	"cityportal/models"
	"cityportal/services/storage"
	"cityportal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

const (
	cachePrefix    = "news:"
	imagePrefix    = "news"
	MaxImageBytes  = 10 << 20
	publishedLimit = 50
)

// Broadcaster queues a notification for many users.
type Broadcaster interface {
	Broadcast(ctx context.Context, req models.BroadcastRequest) error
}

// ImageUpload is a news illustration received from a client.
type ImageUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type NewsService interface {
	ListPublished(ctx context.Context, f models.NewsFilter) (models.List[models.News], error)
	// List returns items in any status for staff.
	List(ctx context.Context, f models.NewsFilter) (models.List[models.News], error)
	Get(ctx context.Context, viewer models.Viewer, id string) (*models.News, error)
	Create(ctx context.Context, authorID string, req models.NewsRequest) (*models.News, error)
	Update(ctx context.Context, id string, req models.NewsRequest) (*models.News, error)
	Publish(ctx context.Context, id string) (*models.News, error)
	Archive(ctx context.Context, id string) (*models.News, error)
	Delete(ctx context.Context, id string) error
	UploadImage(ctx context.Context, id string, file ImageUpload) (*models.News, error)
}

type DefaultNewsService struct {
	repo        newsRepo.NewsRepository
	storage     storage.StorageService
	broadcaster Broadcaster
	cache       utils.JSONCache
	ttl         time.Duration
	now         func() time.Time
}

func NewDefaultNewsService(repo newsRepo.NewsRepository, store storage.StorageService, broadcaster Broadcaster, cache utils.JSONCache, ttl time.Duration) *DefaultNewsService {
	return &DefaultNewsService{repo: repo, storage: store, broadcaster: broadcaster, cache: cache, ttl: ttl, now: time.Now}
}

func (s *DefaultNewsService) list(ctx context.Context, f models.NewsFilter) (models.List[models.News], error) {
	f.Page = f.Page.Normalize()
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return models.List[models.News]{}, fmt.Errorf("ListNews: %w", err)
	}
	return models.NewList(items, total, f.Page), nil
}

func (s *DefaultNewsService) ListPublished(ctx context.Context, f models.NewsFilter) (models.List[models.News], error) {
	f.Status = models.NewsPublished
	f.Page = f.Page.Normalize()
	if f.Limit > publishedLimit {
		f.Limit = publishedLimit
	}
	key := fmt.Sprintf("%spublished:%s|%d|%d", cachePrefix, f.Category, f.Limit, f.Offset)
	return utils.Cached(ctx, s.cache, key, s.ttl, func() (models.List[models.News], error) {
		return s.list(ctx, f)
	})
}

func (s *DefaultNewsService) List(ctx context.Context, f models.NewsFilter) (models.List[models.News], error) {
	return s.list(ctx, f)
}

// Get hides unpublished items from everyone but staff.
func (s *DefaultNewsService) Get(ctx context.Context, viewer models.Viewer, id string) (*models.News, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetNews: %w", err)
	}
	if n.Status != models.NewsPublished && !viewer.IsStaff() {
		return nil, fmt.Errorf("news %s: %w", id, models.ErrNotFound)
	}
	return n, nil
}

func validate(req models.NewsRequest) error {
	if req.Title.IsEmpty() {
		return models.NewValidationError("title", "a title in at least one language is required")
	}
	if req.Body.IsEmpty() {
		return models.NewValidationError("body", "a body in at least one language is required")
	}
	return nil
}

func apply(n *models.News, req models.NewsRequest) {
	n.Title = req.Title
	n.Summary = req.Summary
	n.Body = req.Body
	n.Category = strings.TrimSpace(req.Category)
}

func (s *DefaultNewsService) Create(ctx context.Context, authorID string, req models.NewsRequest) (*models.News, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	n := &models.News{ID: uuid.NewString(), Status: models.NewsDraft, AuthorID: authorID}
	apply(n, req)
	n.Touch(s.now().UTC())
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("CreateNews: %w", err)
	}
	return n, nil
}

func (s *DefaultNewsService) save(ctx context.Context, op string, n *models.News) (*models.News, error) {
	n.Touch(s.now().UTC())
	if err := s.repo.Update(ctx, n); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	utils.Invalidate(ctx, s.cache, cachePrefix)
	return n, nil
}

func (s *DefaultNewsService) Update(ctx context.Context, id string, req models.NewsRequest) (*models.News, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UpdateNews: %w", err)
	}
	apply(n, req)
	return s.save(ctx, "UpdateNews", n)
}

// Publish makes the item public and announces it to residents.
func (s *DefaultNewsService) Publish(ctx context.Context, id string) (*models.News, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("PublishNews: %w", err)
	}
	if n.Status == models.NewsPublished {
		return nil, fmt.Errorf("news %s is already published: %w", id, models.ErrInvalidTransition)
	}
	now := s.now().UTC()
	n.Status = models.NewsPublished
	n.PublishedAt = &now
	if _, err := s.save(ctx, "PublishNews", n); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		title := n.Title
		err := s.broadcaster.Broadcast(ctx, models.BroadcastRequest{
			Audience: models.AudienceResidents,
			Type:     models.NotificationNews,
			Title: i18n.LocalizedFunc(i18n.NotifyNewsTitle, func(tag language.Tag) []any {
				return []any{title.Pick(i18n.Code(tag))}
			}),
			Body: n.Summary,
			Link: "/news/" + n.ID,
		})
		if err != nil {
			utils.GetLogger().Warn("Failed to queue news broadcast", zap.String("newsID", n.ID), zap.Error(err))
		}
	}
	return n, nil
}

func (s *DefaultNewsService) Archive(ctx context.Context, id string) (*models.News, error) {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ArchiveNews: %w", err)
	}
	if n.Status == models.NewsArchived {
		return nil, fmt.Errorf("news %s is already archived: %w", id, models.ErrInvalidTransition)
	}
	n.Status = models.NewsArchived
	return s.save(ctx, "ArchiveNews", n)
}

func (s *DefaultNewsService) Delete(ctx context.Context, id string) error {
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("DeleteNews: %w", err)
	}
	if !n.Image.IsZero() {
		if err := s.storage.Delete(ctx, n.Image); err != nil {
			return fmt.Errorf("DeleteNews: %w", err)
		}
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("DeleteNews: %w", err)
	}
	utils.Invalidate(ctx, s.cache, cachePrefix)
	return nil
}

// UploadImage stores the illustration under news/ in the documents bucket and replaces the old one.
func (s *DefaultNewsService) UploadImage(ctx context.Context, id string, file ImageUpload) (*models.News, error) {
	if file.Size > MaxImageBytes {
		return nil, fmt.Errorf("image of %d bytes: %w", file.Size, models.ErrTooLarge)
	}
	n, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("UploadNewsImage: %w", err)
	}

	in := storage.UploadInput{
		Bucket:      models.BucketDocuments,
		Prefix:      imagePrefix,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Size:        file.Size,
		Body:        file.Body,
		Public:      true,
	}
	if err := storage.DetectContentType(&in); err != nil {
		return nil, fmt.Errorf("UploadNewsImage: failed to read file: %w", err)
	}
	if !storage.IsImage(in.ContentType) {
		return nil, models.NewValidationError("file", "must be an image")
	}
	ref, err := s.storage.Upload(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("UploadNewsImage: %w", err)
	}

	old := n.Image
	n.Image = ref
	if _, err := s.save(ctx, "UploadNewsImage", n); err != nil {
		if delErr := s.storage.Delete(ctx, ref); delErr != nil {
			utils.GetLogger().Warn("Failed to clean up orphaned image", zap.String("key", ref.Key), zap.Error(delErr))
		}
		return nil, err
	}
	if !old.IsZero() {
		if err := s.storage.Delete(ctx, old); err != nil {
			utils.GetLogger().Warn("Failed to delete previous news image", zap.String("key", old.Key), zap.Error(err))
		}
	}
	return n, nil
}
