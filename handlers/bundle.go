package handlers

import (
	"cityportal/middleware"
)

// HandlerBundle collects every handler and the auth dependencies routes need.
type HandlerBundle struct {
	Verifier middleware.TokenVerifier
	Roles    middleware.RoleLister

	Auth         *AuthHandler
	Profile      *ProfileHandler
	Role         *RoleHandler
	Appeal       *AppealHandler
	Catalog      *CatalogHandler
	Resource     *ResourceHandler
	Document     *DocumentHandler
	Notification *NotificationHandler
	News         *NewsHandler
	Dashboard    *DashboardHandler
}
