package middleware

import (
	"strings"
	"unicode/utf8"

	"cityportal/models"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
)

const (
	HeaderDeviceID   = "X-Device-ID"
	HeaderDeviceName = "X-Device-Name"
	maxDeviceField   = 128
)

// truncate keeps at most n bytes of s without splitting a UTF-8 sequence.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// DeviceDetailsMiddleware reads the client device from request headers into the context.
// It never aborts; endpoints that need a device check for it themselves.
func DeviceDetailsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		deviceID := truncate(strings.TrimSpace(c.GetHeader(HeaderDeviceID)), maxDeviceField)
		name := strings.TrimSpace(c.GetHeader(HeaderDeviceName))
		if name == "" {
			name = c.Request.UserAgent()
		}

		device := models.Device{
			DeviceID:   deviceID,
			DeviceName: truncate(name, maxDeviceField),
			IP:         c.ClientIP(),
		}
		if deviceID != "" {
			c.Set(utils.CtxDeviceID, deviceID)
		}
		c.Set(utils.CtxDevice, device)
		c.Next()
	}
}
