package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"cityportal/config"
	"cityportal/cron"
	"cityportal/database"
	analyticsRepo "cityportal/database/repository/analytics"
	appealRepo "cityportal/database/repository/appeal"
	catalogRepo "cityportal/database/repository/catalog"
	documentRepo "cityportal/database/repository/document"
	newsRepo "cityportal/database/repository/news"
	notificationRepo "cityportal/database/repository/notification"
	profileRepo "cityportal/database/repository/profile"
	resourceRepo "cityportal/database/repository/resource"
	roleRepo "cityportal/database/repository/role"
	userRepoPkg "cityportal/database/repository/user"
	"cityportal/handlers"
	"cityportal/i18n"
	"cityportal/routes"
	"cityportal/services/analytics"
	"cityportal/services/appeal"
	"cityportal/services/catalog"
	"cityportal/services/document"
	"cityportal/services/news"
	"cityportal/services/notification"
	"cityportal/services/profile"
	"cityportal/services/realtime"
	"cityportal/services/resource"
	"cityportal/services/role"
	"cityportal/services/storage"
	"cityportal/services/tasks"
	"cityportal/services/user"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

const realtimeBufferSize = 32

func main() {
	config.LoadConfig()
	utils.InitializeLogger()
	logger := utils.GetLogger()
	defer logger.Sync()

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	i18n.SetDefault(config.AppConfig.DefaultLanguage)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database.InitDB()
	db := database.Database()
	cacheClient := utils.GetCacheClient()
	authClient := utils.GetAuthCacheClient()

	store, err := storage.NewFromConfig(ctx)
	if err != nil {
		logger.Fatal("main: failed to initialize file storage", zap.Error(err))
	}

	var push notification.PushSender
	if config.AppConfig.PushEnabled {
		app, err := utils.InitFirebase(ctx)
		if err != nil {
			logger.Fatal("main: failed to initialize firebase", zap.Error(err))
		}
		fcm, err := utils.NewFCMClient(ctx, app)
		if err != nil {
			logger.Fatal("main: failed to initialize FCM", zap.Error(err))
		}
		push = fcm
	}

	// repositories.
	userRepo := userRepoPkg.NewMongoUserRepo(db)
	profiles := profileRepo.NewMongoProfileRepo(db)
	roles := roleRepo.NewMongoRoleRepo(db)
	appeals := appealRepo.NewMongoAppealRepo(db)

	// realtime: every instance publishes through Redis and delivers to its own hub.
	hub := realtime.NewHub(realtimeBufferSize)
	bridge := realtime.NewRedisBridge(cacheClient, hub)
	go func() {
		if err := bridge.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("main: realtime bridge stopped", zap.Error(err))
		}
	}()

	queueClient := asynq.NewClient(utils.QueueRedisOpt())
	defer queueClient.Close()

	// services.
	jsonCache := utils.NewRedisJSONCache(cacheClient)
	notificationService := notification.NewDefaultNotificationService(
		notificationRepo.NewMongoNotificationRepo(db), userRepo, roles, bridge, push,
		tasks.NewQueue(queueClient), config.AppConfig.DefaultLanguage,
	)
	userService := user.NewDefaultUserService(userRepo, profiles, roles,
		utils.NewRedisTokenCache(authClient), config.AppConfig.JWTTTL, config.AppConfig.DefaultLanguage)
	roleService := role.NewDefaultRoleService(roles, profiles, notificationService)
	resourceService := resource.NewDefaultResourceService(resourceRepo.NewMongoResourceRepo(db), roles, notificationService)

	worker, err := cron.InitWorker(utils.QueueRedisOpt(), cron.Options{
		ScanCron:      config.AppConfig.MaintenanceScanCron,
		LookaheadDays: config.AppConfig.MaintenanceLookaheadDays,
	}, notificationService, resourceService)
	if err != nil {
		logger.Fatal("main: failed to start task worker", zap.Error(err))
	}

	hb := &handlers.HandlerBundle{
		Verifier: userService,
		Roles:    roleService,
		Auth:     handlers.NewAuthHandler(userService, notificationService),
		Profile:  handlers.NewProfileHandler(profile.NewDefaultProfileService(profiles, roles, store)),
		Role:     handlers.NewRoleHandler(roleService),
		Appeal:   handlers.NewAppealHandler(appeal.NewDefaultAppealService(appeals, roles, notificationService)),
		Catalog: handlers.NewCatalogHandler(catalog.NewDefaultCatalogService(
			catalogRepo.NewMongoServiceRepo(db), jsonCache, config.AppConfig.CacheTTL)),
		Resource: handlers.NewResourceHandler(resourceService),
		Document: handlers.NewDocumentHandler(document.NewDefaultDocumentService(
			documentRepo.NewMongoDocumentRepo(db), appeals, store, config.MaxUploadBytes()), config.MaxUploadBytes()),
		Notification: handlers.NewNotificationHandler(notificationService, hub, config.AllowedOrigins()),
		News: handlers.NewNewsHandler(news.NewDefaultNewsService(
			newsRepo.NewMongoNewsRepo(db), store, notificationService, jsonCache, config.AppConfig.CacheTTL)),
		Dashboard: handlers.NewDashboardHandler(analytics.NewDefaultAnalyticsService(analyticsRepo.NewMongoAnalyticsRepo(db))),
	}

	router, err := routes.NewRouter(hb, routes.Options{
		AllowedOrigins:    config.AllowedOrigins(),
		MaxRequestsPerMin: config.AppConfig.MaxRequestsPerMin,
		TrustedProxies:    config.TrustedProxies(),
	})
	if err != nil {
		logger.Fatal("main: failed to build router", zap.Error(err))
	}

	utils.StartHealthMonitor(ctx, time.Minute, map[string]utils.HealthCheck{
		"mongo": utils.MongoCheck(database.MongoClient),
		"redis": utils.RedisCheck(cacheClient),
	})

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Starting server", zap.String("addr", srv.Addr), zap.String("env", config.GetEnv()))
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("main: server failed to start", zap.Error(err))
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	<-ctx.Done()
	logger.Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	hub.Close()
	worker.Shutdown()
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Error("main: failed to disconnect from MongoDB", zap.Error(err))
	}
	_ = cacheClient.Close()
	_ = authClient.Close()

	logger.Info("main: server stopped gracefully")
}
