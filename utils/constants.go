package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the time-to-live for authorization cache entries.
const AuthCacheTTL = time.Hour

// MaxDevices is the number of devices a user may keep signed in.
const MaxDevices = 5

// Gin context keys.
const (
	CtxUserID   = "userID"
	CtxEmail    = "email"
	CtxDeviceID = "deviceID"
	CtxRoles    = "roles"
	CtxLang     = "lang"
	CtxDevice   = "device"
	CtxLogger   = "logger"
)

// RealtimeChannelPrefix prefixes the pub/sub channel for a user's notifications.
const RealtimeChannelPrefix = "notifications:"
