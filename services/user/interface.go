package user

import (
	"context"
	"time"

	profileRepo "cityportal/database/repository/profile"
	roleRepo "cityportal/database/repository/role"
	userRepo "cityportal/database/repository/user"
	"cityportal/models"
	"cityportal/utils"
)

// UserService covers authentication, devices and session bootstrap.
type UserService interface {
	SignUp(ctx context.Context, req models.SignUpRequest, device models.Device) (*models.AuthResponse, error)
	SignIn(ctx context.Context, req models.SignInRequest, device models.Device) (*models.AuthResponse, error)
	SignOut(ctx context.Context, userID, deviceID string) error
	SignOutOtherDevices(ctx context.Context, userID, currentDeviceID string) error
	ListDevices(ctx context.Context, userID string) ([]models.Device, error)
	ChangePassword(ctx context.Context, userID string, req models.ChangePasswordRequest, currentDeviceID string) error
	// Session returns identity, profile and roles in one call.
	Session(ctx context.Context, userID string) (*models.Session, error)
	// VerifyToken checks the token signature and that it is still the active token of its device.
	VerifyToken(ctx context.Context, token string) (*utils.Claims, error)
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo        userRepo.UserRepository
	Profiles    profileRepo.ProfileRepository
	Roles       roleRepo.RoleRepository
	TokenCache  utils.TokenCache
	TokenTTL    time.Duration
	DefaultLang string
	now         func() time.Time
}

func NewDefaultUserService(
	repo userRepo.UserRepository,
	profiles profileRepo.ProfileRepository,
	roles roleRepo.RoleRepository,
	cache utils.TokenCache,
	tokenTTL time.Duration,
	defaultLang string,
) *DefaultUserService {
	return &DefaultUserService{
		Repo:        repo,
		Profiles:    profiles,
		Roles:       roles,
		TokenCache:  cache,
		TokenTTL:    tokenTTL,
		DefaultLang: defaultLang,
		now:         time.Now,
	}
}
