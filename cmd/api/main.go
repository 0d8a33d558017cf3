package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/librarydesk/librarydesk-api/internal/handler"
	"github.com/librarydesk/librarydesk-api/internal/middleware"
	"github.com/librarydesk/librarydesk-api/internal/repository"
	"github.com/librarydesk/librarydesk-api/internal/seating"
	"github.com/librarydesk/librarydesk-api/internal/service"
	"github.com/librarydesk/librarydesk-api/pkg/cache"
	"github.com/librarydesk/librarydesk-api/pkg/config"
	"github.com/librarydesk/librarydesk-api/pkg/database"
	"github.com/librarydesk/librarydesk-api/pkg/logger"
	corsmiddleware "github.com/librarydesk/librarydesk-api/pkg/middleware/cors"
	reqidmiddleware "github.com/librarydesk/librarydesk-api/pkg/middleware/requestid"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsService := service.NewMetricsService()

	var cacheService *service.CacheService
	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
	} else {
		cacheRepo := repository.NewCacheRepository(redisClient, logr)
		cacheService = service.NewCacheService(cacheRepo, metricsService, cfg.Reports.CacheTTL, logr, true)
		defer cacheRepo.Close() //nolint:errcheck
	}

	validate := validator.New()
	universe := seating.NewUniverse(cfg.Seats.FirstFloor, cfg.Seats.SecondFloor, cfg.Seats.Cabin)

	studentRepo := repository.NewStudentRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	userRepo := repository.NewUserRepository(db)

	authService := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "librarydesk-api",
	})
	studentService := service.NewStudentService(studentRepo, paymentRepo, universe, cacheService, validate, logr)
	paymentService := service.NewPaymentService(paymentRepo, logr)
	seatService := service.NewSeatService(studentRepo, universe, logr)
	reportService := service.NewReportService(service.ReportServiceParams{
		Repo:     studentRepo,
		Cache:    cacheService,
		Logger:   logr,
		CacheTTL: cfg.Reports.CacheTTL,
		Title:    cfg.Reports.ExportTitle,
	})
	dashboardService := service.NewDashboardService(studentRepo, paymentRepo, cacheService, logr, cfg.Dashboard.CacheTTL)

	authHandler := handler.NewAuthHandler(authService)
	studentHandler := handler.NewStudentHandler(studentService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	seatHandler := handler.NewSeatHandler(seatService)
	reportHandler := handler.NewReportHandler(reportService)
	dashboardHandler := handler.NewDashboardHandler(dashboardService)
	metricsHandler := handler.NewMetricsHandler(metricsService)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsService))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)

	secured := api.Group("")
	secured.Use(middleware.JWT(authService))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.POST("/auth/change-password", authHandler.ChangePassword)
	secured.GET("/auth/me", authHandler.Me)

	secured.GET("/students", studentHandler.List)
	secured.POST("/students", studentHandler.Create)
	secured.GET("/students/:id", studentHandler.Get)
	secured.PUT("/students/:id", studentHandler.Update)
	secured.DELETE("/students/:id", studentHandler.Delete)
	secured.POST("/students/:id/mark-paid", studentHandler.MarkPaid)

	secured.GET("/payments", paymentHandler.List)
	secured.GET("/students/:id/payments", paymentHandler.ListForStudent)
	secured.GET("/seats", seatHandler.Layout)

	secured.GET("/reports/monthly", reportHandler.Monthly)
	secured.GET("/reports/monthly/export", reportHandler.Export)

	if cfg.Dashboard.Enabled {
		secured.GET("/dashboard/summary", dashboardHandler.Summary)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
