// Package document stores files with visibility scoped metadata.
package document

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	appealRepo "cityportal/database/repository/appeal"
	documentRepo "cityportal/database/repository/document"
	"cityportal/models"
	"cityportal/services/storage"
	"cityportal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SignedURLTTL is the lifetime of download links for non-public documents.
const SignedURLTTL = 15 * time.Minute

// FileUpload is a file received from a client.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type DocumentService interface {
	Upload(ctx context.Context, viewer models.Viewer, meta models.DocumentMeta, file FileUpload) (*models.Document, error)
	List(ctx context.Context, viewer models.Viewer, f models.DocumentFilter) (models.List[models.Document], error)
	Get(ctx context.Context, viewer models.Viewer, id string) (*models.Document, error)
	DownloadURL(ctx context.Context, viewer models.Viewer, id string) (*models.DownloadLink, error)
	UpdateMeta(ctx context.Context, viewer models.Viewer, id string, meta models.DocumentMeta) (*models.Document, error)
	Delete(ctx context.Context, viewer models.Viewer, id string) error
}

type DefaultDocumentService struct {
	repo     documentRepo.DocumentRepository
	appeals  appealRepo.AppealRepository
	storage  storage.StorageService
	maxBytes int64
	now      func() time.Time
}

func NewDefaultDocumentService(repo documentRepo.DocumentRepository, appeals appealRepo.AppealRepository, store storage.StorageService, maxBytes int64) *DefaultDocumentService {
	return &DefaultDocumentService{repo: repo, appeals: appeals, storage: store, maxBytes: maxBytes, now: time.Now}
}

// checkVisibility enforces who may use which visibility: residents keep their files private.
func checkVisibility(viewer models.Viewer, visibility string) error {
	if visibility != models.VisibilityPrivate && !viewer.IsStaff() {
		return fmt.Errorf("residents may only upload private documents: %w", models.ErrForbidden)
	}
	return nil
}

func (s *DefaultDocumentService) checkAppeal(ctx context.Context, viewer models.Viewer, appealID string) error {
	if appealID == "" {
		return nil
	}
	a, err := s.appeals.GetByID(ctx, appealID)
	if err != nil {
		return fmt.Errorf("linked appeal: %w", err)
	}
	if !viewer.IsStaff() && a.SubmittedBy != viewer.UserID {
		return fmt.Errorf("appeal %s: %w", appealID, models.ErrNotFound)
	}
	return nil
}

func (s *DefaultDocumentService) Upload(ctx context.Context, viewer models.Viewer, meta models.DocumentMeta, file FileUpload) (*models.Document, error) {
	logger := utils.GetLogger()
	if file.Size > s.maxBytes {
		return nil, fmt.Errorf("document of %d bytes exceeds %d: %w", file.Size, s.maxBytes, models.ErrTooLarge)
	}
	if file.Body == nil {
		return nil, models.NewValidationError("file", "required")
	}

	visibility := meta.Visibility
	if visibility == "" {
		visibility = models.VisibilityPrivate
		if viewer.IsStaff() {
			visibility = models.VisibilityInternal
		}
	}
	if err := checkVisibility(viewer, visibility); err != nil {
		return nil, err
	}
	if err := s.checkAppeal(ctx, viewer, meta.AppealID); err != nil {
		return nil, err
	}

	title := models.LocalizedText{EN: strings.TrimSpace(meta.TitleEN), RU: strings.TrimSpace(meta.TitleRU)}
	if title.IsEmpty() {
		title = models.Text(strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename)))
	}

	in := storage.UploadInput{
		Bucket:      models.BucketDocuments,
		Prefix:      viewer.UserID,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Size:        file.Size,
		// one extra byte detects bodies larger than the declared size
		Body:   io.LimitReader(file.Body, s.maxBytes+1),
		Public: visibility == models.VisibilityPublic,
	}
	if err := storage.DetectContentType(&in); err != nil {
		return nil, fmt.Errorf("UploadDocument: failed to read file: %w", err)
	}
	ref, err := s.storage.Upload(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("UploadDocument: %w", err)
	}
	if ref.Size > s.maxBytes {
		s.discard(ctx, ref)
		return nil, fmt.Errorf("document exceeds %d bytes: %w", s.maxBytes, models.ErrTooLarge)
	}

	doc := &models.Document{
		ID:         uuid.NewString(),
		Title:      title,
		Category:   strings.TrimSpace(meta.Category),
		Visibility: visibility,
		OwnerID:    viewer.UserID,
		AppealID:   meta.AppealID,
		File:       ref,
	}
	doc.Touch(s.now().UTC())
	if err := s.repo.Create(ctx, doc); err != nil {
		s.discard(ctx, ref)
		return nil, fmt.Errorf("UploadDocument: %w", err)
	}
	logger.Info("Document uploaded", zap.String("id", doc.ID), zap.String("owner", viewer.UserID), zap.Int64("size", ref.Size))
	return doc, nil
}

func (s *DefaultDocumentService) discard(ctx context.Context, ref models.FileRef) {
	if err := s.storage.Delete(ctx, ref); err != nil {
		utils.GetLogger().Warn("Failed to remove orphaned object", zap.String("key", ref.Key), zap.Error(err))
	}
}

func (s *DefaultDocumentService) List(ctx context.Context, viewer models.Viewer, f models.DocumentFilter) (models.List[models.Document], error) {
	f.Page = f.Page.Normalize()
	f.ViewerID = viewer.UserID
	f.ViewerIsStaff = viewer.IsStaff()
	items, total, err := s.repo.List(ctx, f)
	if err != nil {
		return models.List[models.Document]{}, fmt.Errorf("ListDocuments: %w", err)
	}
	return models.NewList(items, total, f.Page), nil
}

// Get returns the document when the viewer may see it. Hidden documents look missing.
func (s *DefaultDocumentService) Get(ctx context.Context, viewer models.Viewer, id string) (*models.Document, error) {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetDocument: %w", err)
	}
	if !doc.VisibleTo(viewer) {
		return nil, fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}
	return doc, nil
}

func (s *DefaultDocumentService) DownloadURL(ctx context.Context, viewer models.Viewer, id string) (*models.DownloadLink, error) {
	doc, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	url, err := s.storage.DownloadURL(ctx, doc.File, SignedURLTTL)
	if err != nil {
		return nil, fmt.Errorf("DownloadURL: %w", err)
	}
	link := &models.DownloadLink{URL: url}
	if !doc.File.Public {
		link.ExpiresIn = int64(SignedURLTTL.Seconds())
	}
	return link, nil
}

func canManage(viewer models.Viewer, doc *models.Document) bool {
	return doc.OwnerID == viewer.UserID || viewer.IsAdmin()
}

func (s *DefaultDocumentService) UpdateMeta(ctx context.Context, viewer models.Viewer, id string, meta models.DocumentMeta) (*models.Document, error) {
	doc, err := s.Get(ctx, viewer, id)
	if err != nil {
		return nil, err
	}
	if !canManage(viewer, doc) {
		return nil, fmt.Errorf("document %s: %w", id, models.ErrForbidden)
	}

	if meta.Visibility != "" && meta.Visibility != doc.Visibility {
		if err := checkVisibility(viewer, meta.Visibility); err != nil {
			return nil, err
		}
		// the stored object keeps its access mode
		if (meta.Visibility == models.VisibilityPublic) != doc.File.Public {
			return nil, models.NewValidationError("visibility", "re-upload the file to change public access")
		}
		doc.Visibility = meta.Visibility
	}
	if meta.AppealID != "" && meta.AppealID != doc.AppealID {
		if err := s.checkAppeal(ctx, viewer, meta.AppealID); err != nil {
			return nil, err
		}
		doc.AppealID = meta.AppealID
	}
	if t := strings.TrimSpace(meta.TitleEN); t != "" {
		doc.Title.EN = t
	}
	if t := strings.TrimSpace(meta.TitleRU); t != "" {
		doc.Title.RU = t
	}
	if c := strings.TrimSpace(meta.Category); c != "" {
		doc.Category = c
	}

	doc.Touch(s.now().UTC())
	if err := s.repo.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("UpdateDocument: %w", err)
	}
	return doc, nil
}

// Delete removes the stored object first, then the metadata row. Admins may delete any document.
func (s *DefaultDocumentService) Delete(ctx context.Context, viewer models.Viewer, id string) error {
	doc, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("DeleteDocument: %w", err)
	}
	if !doc.VisibleTo(viewer) && !viewer.IsAdmin() {
		return fmt.Errorf("document %s: %w", id, models.ErrNotFound)
	}
	if !canManage(viewer, doc) {
		return fmt.Errorf("document %s: %w", id, models.ErrForbidden)
	}
	if err := s.storage.Delete(ctx, doc.File); err != nil {
		return fmt.Errorf("DeleteDocument: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("DeleteDocument: %w", err)
	}
	return nil
}
