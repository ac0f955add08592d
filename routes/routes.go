package routes

import (
	"fmt"
	"time"

	"cityportal/handlers"
	"cityportal/middleware"
	"cityportal/models"
	"cityportal/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Options configures the global middleware chain.
type Options struct {
	AllowedOrigins    []string
	MaxRequestsPerMin int
	// TrustedProxies may set the client IP through X-Forwarded-For; nil trusts none.
	TrustedProxies []string
}

// NewRouter builds the engine with the global middleware and every route registered.
func NewRouter(hb *handlers.HandlerBundle, opts Options) (*gin.Engine, error) {
	if err := utils.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("failed to register validators: %w", err)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	r.Use(middleware.RequestLogger())
	r.Use(utils.ErrorHandler())
	r.Use(cors.New(corsConfig(opts.AllowedOrigins)))
	r.Use(middleware.RateLimitMiddleware(opts.MaxRequestsPerMin))
	r.Use(middleware.LocaleMiddleware())
	r.Use(middleware.DeviceDetailsMiddleware())

	RegisterRoutes(r, hb)
	return r, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language", middleware.HeaderDeviceID, middleware.HeaderDeviceName, middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Language", middleware.HeaderRequestID},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}

// RegisterRoutes registers all application routes.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	RegisterHealthRoute(r)
	RegisterAuthRoutes(r, hb)
	RegisterProfileRoutes(r, hb)
	RegisterRoleRoutes(r, hb)
	RegisterAppealRoutes(r, hb)
	RegisterCatalogRoutes(r, hb)
	RegisterResourceRoutes(r, hb)
	RegisterDocumentRoutes(r, hb)
	RegisterNotificationRoutes(r, hb)
	RegisterNewsRoutes(r, hb)
	RegisterDashboardRoutes(r, hb)
}

func auth(hb *handlers.HandlerBundle) gin.HandlerFunc {
	return middleware.JWTAuthMiddleware(hb.Verifier, hb.Roles)
}

func optionalAuth(hb *handlers.HandlerBundle) gin.HandlerFunc {
	return middleware.OptionalAuthMiddleware(hb.Verifier, hb.Roles)
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", handlers.HealthHandler)
}

func RegisterAuthRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/auth")
	{
		api.POST("/signup", hb.Auth.SignUpHandler)
		api.POST("/signin", hb.Auth.SignInHandler)

		// Protected routes (Require Authentication)
		protected := api.Group("", auth(hb))
		protected.GET("/session", hb.Auth.SessionHandler)
		protected.POST("/signout", hb.Auth.SignOutHandler)
		protected.POST("/signout-others", hb.Auth.SignOutOthersHandler)
		protected.GET("/devices", hb.Auth.ListDevicesHandler)
		protected.PUT("/password", hb.Auth.ChangePasswordHandler)
		protected.PUT("/push-token", hb.Auth.PushTokenHandler)
	}
}

func RegisterProfileRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/profile", auth(hb))
	{
		api.GET("", hb.Profile.GetProfileHandler)
		api.PATCH("", hb.Profile.UpdateProfileHandler)
		api.POST("/avatar", hb.Profile.UploadAvatarHandler)
		api.GET("/employees", middleware.RequireStaff(), hb.Profile.ListEmployeesHandler)
	}
}

func RegisterRoleRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/roles", auth(hb))
	{
		api.GET("/me", hb.Role.MyRolesHandler)

		admin := api.Group("", middleware.RequireRole(models.RoleAdmin))
		admin.GET("/:userId", hb.Role.UserRolesHandler)
		admin.POST("", hb.Role.GrantRoleHandler)
		admin.DELETE("/:userId/:role", hb.Role.RevokeRoleHandler)
	}
}

func RegisterAppealRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/appeals", auth(hb))
	{
		api.POST("", hb.Appeal.CreateAppealHandler)
		api.GET("/mine", hb.Appeal.MyAppealsHandler)
		api.GET("/:id", hb.Appeal.GetAppealHandler)
		api.POST("/:id/withdraw", hb.Appeal.WithdrawAppealHandler)

		staff := api.Group("", middleware.RequireStaff())
		staff.GET("", hb.Appeal.ListAppealsHandler)
		staff.PATCH("/:id/assign", hb.Appeal.AssignAppealHandler)
		staff.PATCH("/:id/status", hb.Appeal.UpdateAppealStatusHandler)
		staff.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), hb.Appeal.DeleteAppealHandler)
	}
}

func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/services")
	{
		// GET endpoints with optional authentication (staff may filter by any status)
		api.GET("", optionalAuth(hb), hb.Catalog.ListServicesHandler)
		api.GET("/:id", hb.Catalog.GetServiceHandler)

		staff := api.Group("", auth(hb), middleware.RequireStaff())
		staff.POST("", hb.Catalog.CreateServiceHandler)
		staff.PUT("/:id", hb.Catalog.UpdateServiceHandler)
		staff.DELETE("/:id", hb.Catalog.DeleteServiceHandler)
	}
}

func RegisterResourceRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/resources", auth(hb), middleware.RequireStaff())
	{
		api.GET("", hb.Resource.ListResourcesHandler)
		api.GET("/maintenance/due", hb.Resource.DueForMaintenanceHandler)
		api.GET("/:id", hb.Resource.GetResourceHandler)
		api.POST("", hb.Resource.CreateResourceHandler)
		api.PUT("/:id", hb.Resource.UpdateResourceHandler)
		api.POST("/:id/maintenance", hb.Resource.RecordMaintenanceHandler)
		api.DELETE("/:id", middleware.RequireRole(models.RoleAdmin), hb.Resource.DeleteResourceHandler)
	}
}

func RegisterDocumentRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/documents")
	{
		// anonymous callers only ever see public documents
		public := api.Group("", optionalAuth(hb))
		public.GET("", hb.Document.ListDocumentsHandler)
		public.GET("/:id", hb.Document.GetDocumentHandler)
		public.GET("/:id/download", hb.Document.DownloadDocumentHandler)

		protected := api.Group("", auth(hb))
		protected.POST("", hb.Document.UploadDocumentHandler)
		protected.PATCH("/:id", hb.Document.UpdateDocumentHandler)
		protected.DELETE("/:id", hb.Document.DeleteDocumentHandler)
	}
}

func RegisterNotificationRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/notifications", auth(hb))
	{
		api.GET("", hb.Notification.ListNotificationsHandler)
		api.GET("/ws", hb.Notification.StreamHandler)
		api.GET("/unread-count", hb.Notification.UnreadCountHandler)
		api.PATCH("/read-all", hb.Notification.MarkAllReadHandler)
		api.PATCH("/:id/read", hb.Notification.MarkReadHandler)
		api.DELETE("/:id", hb.Notification.DeleteNotificationHandler)
		api.POST("/broadcast", middleware.RequireStaff(), hb.Notification.BroadcastHandler)
	}
}

func RegisterNewsRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/news")
	{
		public := api.Group("", optionalAuth(hb))
		public.GET("", hb.News.ListNewsHandler)
		public.GET("/:id", hb.News.GetNewsHandler)

		staff := api.Group("", auth(hb), middleware.RequireStaff())
		staff.POST("", hb.News.CreateNewsHandler)
		staff.PUT("/:id", hb.News.UpdateNewsHandler)
		staff.POST("/:id/publish", hb.News.PublishNewsHandler)
		staff.POST("/:id/archive", hb.News.ArchiveNewsHandler)
		staff.POST("/:id/image", hb.News.UploadNewsImageHandler)
		staff.DELETE("/:id", hb.News.DeleteNewsHandler)
	}
}

func RegisterDashboardRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/dashboard", auth(hb))
	{
		api.GET("/resident", hb.Dashboard.ResidentDashboardHandler)
		api.GET("/employee", middleware.RequireStaff(), hb.Dashboard.EmployeeDashboardHandler)
	}
}
