package utils

import (
	"cityportal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CurrentUserID returns the authenticated user id, or "" for anonymous requests.
func CurrentUserID(c *gin.Context) string {
	return c.GetString(CtxUserID)
}

func CurrentDeviceID(c *gin.Context) string {
	return c.GetString(CtxDeviceID)
}

func CurrentRoles(c *gin.Context) []models.Role {
	if v, ok := c.Get(CtxRoles); ok {
		if roles, ok := v.([]models.Role); ok {
			return roles
		}
	}
	return nil
}

// CurrentViewer bundles the caller identity for services that scope by viewer.
func CurrentViewer(c *gin.Context) models.Viewer {
	return models.Viewer{UserID: CurrentUserID(c), Roles: CurrentRoles(c)}
}

// CurrentDevice returns the device described by the request headers.
func CurrentDevice(c *gin.Context) models.Device {
	if v, ok := c.Get(CtxDevice); ok {
		if d, ok := v.(models.Device); ok {
			return d
		}
	}
	return models.Device{DeviceID: CurrentDeviceID(c)}
}

// RequestLogger returns the request scoped logger, or the global one.
func RequestLogger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(CtxLogger); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return GetLogger()
}
