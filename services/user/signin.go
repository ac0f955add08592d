package user

import (
	"context"
	"errors"
	"fmt"

	"cityportal/models"
	"cityportal/utils"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (s *DefaultUserService) SignIn(ctx context.Context, req models.SignInRequest, device models.Device) (*models.AuthResponse, error) {
	if device.DeviceID == "" {
		return nil, models.NewValidationError("device", "device id is required")
	}

	user, err := s.Repo.GetByEmail(ctx, req.Email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("SignIn: failed to fetch user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, user.Email, device.DeviceID, s.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("SignIn: failed to issue token: %w", err)
	}
	device.TokenHash = utils.HashToken(token)

	now := s.now().UTC()
	devices, evicted := upsertDevice(user.Devices, device, now)
	if err := s.Repo.RecordSignIn(ctx, user.ID, devices, now); err != nil {
		return nil, fmt.Errorf("SignIn: failed to record sign-in: %w", err)
	}
	user.Devices = devices
	user.LastSignInAt = now

	s.forgetTokens(ctx, user.ID, evicted...)
	s.rememberToken(ctx, user.ID, device.DeviceID, device.TokenHash)

	session, err := s.session(ctx, user)
	if err != nil {
		return nil, err
	}
	utils.GetLogger().Info("User signed in", zap.String("userID", user.ID), zap.String("deviceID", device.DeviceID), zap.Int("evicted", len(evicted)))

	return &models.AuthResponse{
		Token:   token,
		User:    session.User,
		Profile: session.Profile,
		Roles:   session.Roles,
	}, nil
}

func (s *DefaultUserService) SignOut(ctx context.Context, userID, deviceID string) error {
	user, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("SignOut: %w", err)
	}
	devices := make([]models.Device, 0, len(user.Devices))
	for _, d := range user.Devices {
		if d.DeviceID != deviceID {
			devices = append(devices, d)
		}
	}
	if err := s.Repo.UpdateDevices(ctx, userID, devices); err != nil {
		return fmt.Errorf("SignOut: failed to update devices: %w", err)
	}
	s.forgetTokens(ctx, userID, deviceID)
	return nil
}

// VerifyToken checks the signature, then the cached hash, then the stored device hash.
func (s *DefaultUserService) VerifyToken(ctx context.Context, token string) (*utils.Claims, error) {
	claims, err := utils.ExtractClaims(token)
	if err != nil || claims.DeviceID == "" {
		return nil, models.ErrUnauthorized
	}
	hash := utils.HashToken(token)

	if s.TokenCache != nil {
		cached, err := s.TokenCache.Get(ctx, claims.Subject, claims.DeviceID)
		switch {
		case err == nil && cached == hash:
			return claims, nil
		case err == nil:
			return nil, models.ErrUnauthorized
		case !errors.Is(err, utils.ErrCacheMiss):
			utils.GetLogger().Warn("Auth cache lookup failed, falling back to DB", zap.Error(err))
		}
	}

	user, err := s.Repo.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, models.ErrUnauthorized
	}
	for _, d := range user.Devices {
		if d.DeviceID == claims.DeviceID && d.TokenHash != "" && d.TokenHash == hash {
			s.rememberToken(ctx, user.ID, d.DeviceID, hash)
			return claims, nil
		}
	}
	return nil, models.ErrUnauthorized
}
