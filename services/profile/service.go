// Package profile manages portal profiles and avatars.
package profile

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	profileRepo "cityportal/database/repository/profile"
	roleRepo "cityportal/database/repository/role"
	"cityportal/models"
	"cityportal/services/storage"
	"cityportal/utils"

	"go.uber.org/zap"
)

// MaxAvatarBytes caps avatar uploads.
const MaxAvatarBytes = 5 << 20

// AvatarUpload is an avatar image received from a client.
type AvatarUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type ProfileService interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, userID string, req models.ProfileUpdateRequest) (*models.Profile, error)
	UploadAvatar(ctx context.Context, userID string, file AvatarUpload) (*models.Profile, error)
	// ListEmployees returns profiles of users holding the employee or admin role.
	ListEmployees(ctx context.Context) ([]models.Profile, error)
}

type DefaultProfileService struct {
	repo    profileRepo.ProfileRepository
	roles   roleRepo.RoleRepository
	storage storage.StorageService
	now     func() time.Time
}

func NewDefaultProfileService(repo profileRepo.ProfileRepository, roles roleRepo.RoleRepository, store storage.StorageService) *DefaultProfileService {
	return &DefaultProfileService{repo: repo, roles: roles, storage: store, now: time.Now}
}

func (s *DefaultProfileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetProfile: %w", err)
	}
	return p, nil
}

func (s *DefaultProfileService) Update(ctx context.Context, userID string, req models.ProfileUpdateRequest) (*models.Profile, error) {
	if req.IsEmpty() {
		return nil, models.NewValidationError("body", "nothing to update")
	}
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("UpdateProfile: %w", err)
	}

	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, models.NewValidationError("fullName", "must not be blank")
		}
		p.FullName = name
	}
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = strings.TrimSpace(*v)
		}
	}
	set(&p.Phone, req.Phone)
	set(&p.Address, req.Address)
	set(&p.District, req.District)
	set(&p.Position, req.Position)
	set(&p.Department, req.Department)
	set(&p.Language, req.Language)

	p.Touch(s.now().UTC())
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("UpdateProfile: %w", err)
	}
	return p, nil
}

// UploadAvatar stores the image in the avatars bucket, then deletes the previous avatar.
func (s *DefaultProfileService) UploadAvatar(ctx context.Context, userID string, file AvatarUpload) (*models.Profile, error) {
	logger := utils.GetLogger()
	if file.Size > MaxAvatarBytes {
		return nil, fmt.Errorf("avatar of %d bytes: %w", file.Size, models.ErrTooLarge)
	}
	p, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("UploadAvatar: %w", err)
	}

	in := storage.UploadInput{
		Bucket:      models.BucketAvatars,
		Prefix:      userID,
		Filename:    file.Filename,
		ContentType: file.ContentType,
		Size:        file.Size,
		Body:        file.Body,
		Public:      true,
	}
	if err := storage.DetectContentType(&in); err != nil {
		return nil, fmt.Errorf("UploadAvatar: failed to read file: %w", err)
	}
	if !storage.IsImage(in.ContentType) {
		return nil, models.NewValidationError("file", "avatar must be an image")
	}

	ref, err := s.storage.Upload(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("UploadAvatar: %w", err)
	}
	if err := s.repo.SetAvatar(ctx, userID, ref); err != nil {
		if delErr := s.storage.Delete(ctx, ref); delErr != nil {
			logger.Warn("Failed to clean up orphaned avatar", zap.String("key", ref.Key), zap.Error(delErr))
		}
		return nil, fmt.Errorf("UploadAvatar: %w", err)
	}

	if !p.Avatar.IsZero() {
		if err := s.storage.Delete(ctx, p.Avatar); err != nil {
			logger.Warn("Failed to delete previous avatar", zap.String("userID", userID), zap.String("key", p.Avatar.Key), zap.Error(err))
		}
	}
	p.Avatar = ref
	return p, nil
}

func (s *DefaultProfileService) ListEmployees(ctx context.Context) ([]models.Profile, error) {
	ids, err := s.roles.UserIDs(ctx, models.RoleEmployee, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("ListEmployees: %w", err)
	}
	if len(ids) == 0 {
		return []models.Profile{}, nil
	}
	profiles, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("ListEmployees: %w", err)
	}
	return profiles, nil
}
