package middleware

import (
	"net/http"

	"cityportal/i18n"
	"cityportal/models"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
)

// RequireRole lets the request through when the caller holds any of roles.
// It must run after JWTAuthMiddleware.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !models.HasAny(utils.CurrentRoles(c), roles...) {
			utils.JSONError(c, http.StatusForbidden, "forbidden", i18n.ErrForbidden)
			return
		}
		c.Next()
	}
}

// RequireStaff is RequireRole for employees and admins.
func RequireStaff() gin.HandlerFunc {
	return RequireRole(models.RoleEmployee, models.RoleAdmin)
}
