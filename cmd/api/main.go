package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/superabroad/lead-intake/internal/config"
	"github.com/superabroad/lead-intake/internal/handlers"
	"github.com/superabroad/lead-intake/internal/logging"
	"github.com/superabroad/lead-intake/internal/middleware"
	"github.com/superabroad/lead-intake/internal/notify"
	"github.com/superabroad/lead-intake/internal/observability"
	"github.com/superabroad/lead-intake/internal/redisclient"
	"github.com/superabroad/lead-intake/internal/services"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/superabroad/lead-intake/docs"
)

// @title           Super Abroad Lead Intake API
// @version         1.0
// @description     Stores leads captured by the Super Abroad landing page form and notifies the admissions team.

// @contact.name   Super Abroad
// @contact.email  sandeep@superabroad.in

// @host      localhost:8080
// @BasePath  /api

// @tag.name Leads
// @tag.description Lead intake operations

// @tag.name health
// @tag.description Health check operations

func main() {
	// Local development reads a .env file; deployments set the environment
	_ = godotenv.Load()

	if err := logging.InitLogger(logging.OptionsFromEnv("lead-intake-api")); err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer logging.Sync()

	if err := config.LoadConfig(); err != nil {
		logging.Logger.Fatal("failed to load config", zap.Error(err))
	}

	if err := observability.InitTracer(observability.TracingOptions{
		Enabled:     config.AppConfig.TracingEnabled,
		Endpoint:    config.AppConfig.TracingEndpoint,
		ServiceName: "lead-intake-api",
		Environment: config.AppConfig.Environment,
		SampleRatio: config.AppConfig.TracingSampleRatio,
	}); err != nil {
		logging.Logger.Warn("tracing unavailable", zap.Error(err))
	}

	if err := config.InitMongoDB(); err != nil {
		logging.Logger.Fatal("failed to connect to MongoDB", zap.Error(err))
	}
	config.InitRedis()

	leadCollection := config.MongoDB.Collection(config.AppConfig.LeadCollection)
	indexCtx, cancelIndexes := context.WithTimeout(context.Background(), 30*time.Second)
	if err := config.EnsureLeadIndexes(indexCtx, leadCollection); err != nil {
		logging.Logger.Warn("failed to ensure lead indexes", zap.Error(err))
	}
	cancelIndexes()

	mailer := notify.NewEmailSender(notify.SendGridConfig{
		APIKey:    config.AppConfig.SendGridAPIKey,
		FromEmail: config.AppConfig.NotificationFromEmail,
		FromName:  config.AppConfig.NotificationFromName,
	}, logging.Logger.Named("notify"))

	cache := redisclient.NewClient(config.Redis)
	if config.RedisCluster != nil {
		cache = redisclient.NewClusterClient(config.RedisCluster)
	}
	leadService := services.NewLeadService(
		logging.Logger.Named("leads"),
		services.NewMongoLeadStore(leadCollection),
		services.NewDuplicateGuard(cache, config.AppConfig.LeadDuplicateWindow, logging.Logger.Named("duplicate_guard")),
		mailer,
		config.DefaultCatalog(),
		config.AppConfig.NotificationEmail,
	)
	leadHandlers := handlers.NewLeadHandlers(logging.Logger, leadService)

	checks := map[string]handlers.HealthCheckFunc{
		"mongodb": func(ctx context.Context) error { return config.MongoDB.Client().Ping(ctx, nil) },
	}
	if cache != nil {
		checks["redis"] = func(ctx context.Context) error { return cache.Ping(ctx).Err() }
	}
	healthHandlers := handlers.NewHealthHandlers(logging.Logger, checks)

	if config.AppConfig.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = config.AppConfig.CORSAllowedOrigins
	if len(corsConfig.AllowOrigins) == 1 && corsConfig.AllowOrigins[0] == "*" {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-Request-ID")
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}

	router := gin.New()
	router.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.RequestTracing(),
		middleware.RequestLogger(),
		middleware.RequestTracker(),
		cors.New(corsConfig),
	)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api")
	{
		api.GET("/health", healthHandlers.HealthCheck)
		api.POST("/leads", leadHandlers.CreateLead)
		api.GET("/leads", leadHandlers.ListLeads)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", config.AppConfig.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logging.Logger.Info("starting server",
			zap.Int("port", config.AppConfig.Port),
			zap.String("environment", config.AppConfig.Environment),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Logger.Error("server forced to shutdown", zap.Error(err))
	}

	// Let in-flight notification emails finish before closing the database
	leadService.Close()
	config.CloseMongoDB(ctx)
	observability.ShutdownTracer(ctx)
	config.CloseRedis()

	logging.Logger.Info("server exited gracefully")
}
