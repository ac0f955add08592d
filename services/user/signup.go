package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cityportal/models"
	"cityportal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func (s *DefaultUserService) SignUp(ctx context.Context, req models.SignUpRequest, device models.Device) (*models.AuthResponse, error) {
	logger := utils.GetLogger()
	if device.DeviceID == "" {
		return nil, models.NewValidationError("device", "device id is required")
	}
	if err := VerifyPasswordComplexity(req.Password); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.Repo.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email %s is already registered: %w", email, models.ErrAlreadyExists)
	} else if !errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("SignUp: failed to check email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("SignUp: failed to hash password: %w", err)
	}

	now := s.now().UTC()
	userID := uuid.NewString()
	token, err := utils.GenerateToken(userID, email, device.DeviceID, s.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("SignUp: failed to issue token: %w", err)
	}
	device.TokenHash = utils.HashToken(token)
	device.LastLogin = now

	user := &models.User{
		ID:           userID,
		Email:        email,
		PasswordHash: string(hash),
		Devices:      []models.Device{device},
		LastSignInAt: now,
	}
	user.Touch(now)
	if err := s.Repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("SignUp: failed to create user: %w", err)
	}

	lang := req.Language
	if lang == "" {
		lang = s.DefaultLang
	}
	profile := &models.Profile{
		ID:       userID,
		Email:    email,
		FullName: strings.TrimSpace(req.FullName),
		Phone:    req.Phone,
		Language: lang,
		UserType: models.UserTypeResident,
	}
	profile.Touch(now)
	if err := s.Profiles.Create(ctx, profile); err != nil {
		return nil, fmt.Errorf("SignUp: failed to create profile: %w", err)
	}

	role := &models.UserRole{ID: uuid.NewString(), UserID: userID, Role: models.RoleResident, CreatedAt: now}
	if err := s.Roles.Add(ctx, role); err != nil {
		return nil, fmt.Errorf("SignUp: failed to assign role: %w", err)
	}

	s.rememberToken(ctx, userID, device.DeviceID, device.TokenHash)
	logger.Info("User registered", zap.String("userID", userID), zap.String("deviceID", device.DeviceID))

	return &models.AuthResponse{
		Token:   token,
		User:    user,
		Profile: profile,
		Roles:   []models.Role{models.RoleResident},
	}, nil
}
