package middleware

import (
	"context"
	"net/http"
	"strings"

	"cityportal/i18n"
	"cityportal/models"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// TokenVerifier validates a bearer token against the active device sessions.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*utils.Claims, error)
}

// RoleLister loads the roles of a user.
type RoleLister interface {
	GetRoles(ctx context.Context, userID string) ([]models.Role, error)
}

// AccessTokenParam carries the token for clients that cannot set headers (websockets).
const AccessTokenParam = "access_token"

func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	return c.Query(AccessTokenParam)
}

// authenticate verifies the token and fills the identity keys of the context.
func authenticate(c *gin.Context, verifier TokenVerifier, roles RoleLister, token string) bool {
	claims, err := verifier.VerifyToken(c.Request.Context(), token)
	if err != nil {
		return false
	}
	// a header device must match the device the token was issued to
	if hdr := c.GetHeader(HeaderDeviceID); hdr != "" && hdr != claims.DeviceID {
		return false
	}

	userRoles, err := roles.GetRoles(c.Request.Context(), claims.Subject)
	if err != nil {
		utils.GetLogger().Error("Failed to load roles", zap.String("userID", claims.Subject), zap.Error(err))
		return false
	}

	c.Set(utils.CtxUserID, claims.Subject)
	c.Set(utils.CtxEmail, claims.Email)
	c.Set(utils.CtxDeviceID, claims.DeviceID)
	c.Set(utils.CtxRoles, userRoles)
	return true
}

// JWTAuthMiddleware requires a valid token for the request.
func JWTAuthMiddleware(verifier TokenVerifier, roles RoleLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" || !authenticate(c, verifier, roles, token) {
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized", i18n.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// OptionalAuthMiddleware identifies the caller when a valid token is present and
// lets anonymous requests through otherwise.
func OptionalAuthMiddleware(verifier TokenVerifier, roles RoleLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			authenticate(c, verifier, roles, token)
		}
		c.Next()
	}
}
