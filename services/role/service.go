// Package role manages portal permission levels.
package role

import (
	"context"
	"errors"
	"fmt"
	"time"

	profileRepo "cityportal/database/repository/profile"
	roleRepo "cityportal/database/repository/role"
	"cityportal/i18n"
	"cityportal/models"
	"cityportal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier delivers a notification to one user.
type Notifier interface {
	Notify(ctx context.Context, in models.NotifyInput) (*models.Notification, error)
}

type RoleService interface {
	GetRoles(ctx context.Context, userID string) ([]models.Role, error)
	HasAnyRole(ctx context.Context, userID string, roles ...models.Role) (bool, error)
	Grant(ctx context.Context, userID string, role models.Role, grantedBy string) error
	Revoke(ctx context.Context, userID string, role models.Role) error
}

type DefaultRoleService struct {
	repo     roleRepo.RoleRepository
	profiles profileRepo.ProfileRepository
	notifier Notifier
	now      func() time.Time
}

func NewDefaultRoleService(repo roleRepo.RoleRepository, profiles profileRepo.ProfileRepository, notifier Notifier) *DefaultRoleService {
	return &DefaultRoleService{repo: repo, profiles: profiles, notifier: notifier, now: time.Now}
}

func (s *DefaultRoleService) GetRoles(ctx context.Context, userID string) ([]models.Role, error) {
	roles, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("GetRoles: %w", err)
	}
	return roles, nil
}

func (s *DefaultRoleService) HasAnyRole(ctx context.Context, userID string, roles ...models.Role) (bool, error) {
	have, err := s.GetRoles(ctx, userID)
	if err != nil {
		return false, err
	}
	return models.HasAny(have, roles...), nil
}

// Grant adds role to the user. Granting a role the user already holds is a no-op.
func (s *DefaultRoleService) Grant(ctx context.Context, userID string, role models.Role, grantedBy string) error {
	if !role.Valid() {
		return models.NewValidationError("role", "unknown role")
	}
	if _, err := s.profiles.GetByID(ctx, userID); err != nil {
		return fmt.Errorf("Grant: %w", err)
	}

	err := s.repo.Add(ctx, &models.UserRole{
		ID:        uuid.NewString(),
		UserID:    userID,
		Role:      role,
		GrantedBy: grantedBy,
		CreatedAt: s.now().UTC(),
	})
	if errors.Is(err, models.ErrAlreadyExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("Grant: %w", err)
	}

	if role == models.RoleEmployee || role == models.RoleAdmin {
		if err := s.profiles.SetUserType(ctx, userID, models.UserTypeEmployee); err != nil {
			return fmt.Errorf("Grant: failed to update user type: %w", err)
		}
	}
	utils.GetLogger().Info("Role granted", zap.String("userID", userID), zap.String("role", string(role)), zap.String("by", grantedBy))

	if s.notifier != nil {
		_, err := s.notifier.Notify(ctx, models.NotifyInput{
			UserID: userID,
			Type:   models.NotificationRoleChanged,
			Title:  i18n.Localized(i18n.NotifyRoleGrantedTitle),
			Body:   i18n.Localized(i18n.NotifyRoleGrantedBody, role),
			Data:   map[string]string{"role": string(role)},
		})
		if err != nil {
			utils.GetLogger().Warn("Failed to notify role grant", zap.String("userID", userID), zap.Error(err))
		}
	}
	return nil
}

// Revoke removes role from the user. The last admin cannot be revoked.
func (s *DefaultRoleService) Revoke(ctx context.Context, userID string, role models.Role) error {
	var err error
	if role == models.RoleAdmin {
		err = s.repo.RemoveKeepingOne(ctx, userID, role)
	} else {
		err = s.repo.Remove(ctx, userID, role)
	}
	if errors.Is(err, roleRepo.ErrLastHolder) {
		return models.NewValidationError("role", "the last admin cannot be revoked")
	}
	if err != nil {
		return fmt.Errorf("Revoke: %w", err)
	}

	roles, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("Revoke: %w", err)
	}
	if !models.IsStaff(roles) {
		if err := s.profiles.SetUserType(ctx, userID, models.UserTypeResident); err != nil {
			return fmt.Errorf("Revoke: failed to update user type: %w", err)
		}
	}
	utils.GetLogger().Info("Role revoked", zap.String("userID", userID), zap.String("role", string(role)))
	return nil
}
