package user

import (
	"context"
	"fmt"

	"cityportal/models"

	"golang.org/x/crypto/bcrypt"
)

func (s *DefaultUserService) ListDevices(ctx context.Context, userID string) ([]models.Device, error) {
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if user.Devices == nil {
		return []models.Device{}, nil
	}
	return user.Devices, nil
}

func keepDevice(devices []models.Device, deviceID string) (kept []models.Device, removed []string) {
	kept = []models.Device{}
	for _, d := range devices {
		if d.DeviceID == deviceID {
			kept = append(kept, d)
		} else {
			removed = append(removed, d.DeviceID)
		}
	}
	return kept, removed
}

func (s *DefaultUserService) SignOutOtherDevices(ctx context.Context, userID, currentDeviceID string) error {
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to retrieve user: %w", err)
	}

	kept, removed := keepDevice(user.Devices, currentDeviceID)
	if err := s.Repo.UpdateDevices(ctx, userID, kept); err != nil {
		return fmt.Errorf("failed to update user devices: %w", err)
	}
	s.forgetTokens(ctx, userID, removed...)
	return nil
}

func (s *DefaultUserService) ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest, currentDeviceID string) error {
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ChangePassword: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return models.ErrInvalidCredentials
	}
	if req.CurrentPassword == req.NewPassword {
		return models.NewValidationError("newPassword", "new password must differ from the current one")
	}
	if err := VerifyPasswordComplexity(req.NewPassword); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("ChangePassword: failed to hash password: %w", err)
	}
	kept, removed := keepDevice(user.Devices, currentDeviceID)
	if err := s.Repo.UpdatePassword(ctx, userID, string(hash), kept); err != nil {
		return fmt.Errorf("ChangePassword: %w", err)
	}
	s.forgetTokens(ctx, userID, removed...)
	return nil
}
