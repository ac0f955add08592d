package user

import (
	"context"
	"fmt"

	"cityportal/models"
)

func (s *DefaultUserService) Session(ctx context.Context, userID string) (*models.Session, error) {
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("Session: %w", err)
	}
	return s.session(ctx, user)
}

func (s *DefaultUserService) session(ctx context.Context, user *models.User) (*models.Session, error) {
	profile, err := s.Profiles.GetByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("Session: failed to load profile: %w", err)
	}
	roles, err := s.Roles.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("Session: failed to load roles: %w", err)
	}
	return &models.Session{User: user, Profile: profile, Roles: roles}, nil
}
