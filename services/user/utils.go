package user

import (
	"context"
	"regexp"
	"sort"
	"time"

	"cityportal/models"
	"cityportal/utils"

	"go.uber.org/zap"
)

var (
	upperRe  = regexp.MustCompile(`[A-Z\p{Lu}]`)
	lowerRe  = regexp.MustCompile(`[a-z\p{Ll}]`)
	numberRe = regexp.MustCompile(`[0-9]`)
	symbolRe = regexp.MustCompile(`[^\p{L}\p{N}]`)
)

// VerifyPasswordComplexity checks that the password meets complexity requirements.
func VerifyPasswordComplexity(pw string) error {
	switch {
	case len([]rune(pw)) < 8:
		return models.NewValidationError("password", "password must be at least 8 characters long")
	case !upperRe.MatchString(pw):
		return models.NewValidationError("password", "password must include at least one uppercase letter")
	case !lowerRe.MatchString(pw):
		return models.NewValidationError("password", "password must include at least one lowercase letter")
	case !numberRe.MatchString(pw):
		return models.NewValidationError("password", "password must include at least one number")
	case !symbolRe.MatchString(pw):
		return models.NewValidationError("password", "password must include at least one symbol")
	}
	return nil
}

// upsertDevice records a sign-in of device and returns the new list plus the device ids evicted
// to stay within utils.MaxDevices (least recently used first).
func upsertDevice(devices []models.Device, device models.Device, now time.Time) ([]models.Device, []string) {
	out := make([]models.Device, 0, len(devices)+1)
	found := false
	for _, d := range devices {
		if d.DeviceID == device.DeviceID {
			d.DeviceName = device.DeviceName
			d.IP = device.IP
			d.LastLogin = now
			d.TokenHash = device.TokenHash
			found = true
		}
		out = append(out, d)
	}
	if !found {
		device.LastLogin = now
		out = append(out, device)
	}

	var evicted []string
	if len(out) > utils.MaxDevices {
		sort.SliceStable(out, func(i, j int) bool { return out[i].LastLogin.After(out[j].LastLogin) })
		for _, d := range out[utils.MaxDevices:] {
			evicted = append(evicted, d.DeviceID)
		}
		out = out[:utils.MaxDevices]
	}
	return out, evicted
}

func (s *DefaultUserService) forgetTokens(ctx context.Context, userID string, deviceIDs ...string) {
	if s.TokenCache == nil || len(deviceIDs) == 0 {
		return
	}
	if err := s.TokenCache.Delete(ctx, userID, deviceIDs...); err != nil {
		utils.GetLogger().Warn("Failed to clear token cache", zap.String("userID", userID), zap.Error(err))
	}
}

func (s *DefaultUserService) rememberToken(ctx context.Context, userID, deviceID, hash string) {
	if s.TokenCache == nil {
		return
	}
	if err := s.TokenCache.Set(ctx, userID, deviceID, hash); err != nil {
		utils.GetLogger().Warn("Failed to cache token", zap.String("userID", userID), zap.Error(err))
	}
}
