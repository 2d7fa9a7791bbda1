package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/sportedu/agenda-api/api/swagger"
	"github.com/sportedu/agenda-api/internal/handler"
	"github.com/sportedu/agenda-api/internal/middleware"
	"github.com/sportedu/agenda-api/internal/repository"
	"github.com/sportedu/agenda-api/internal/service"
	"github.com/sportedu/agenda-api/pkg/cache"
	"github.com/sportedu/agenda-api/pkg/config"
	"github.com/sportedu/agenda-api/pkg/database"
	"github.com/sportedu/agenda-api/pkg/logger"
	corsmiddleware "github.com/sportedu/agenda-api/pkg/middleware/cors"
	reqidmiddleware "github.com/sportedu/agenda-api/pkg/middleware/requestid"
)

// @title Agenda Esportiva API
// @version 1.0.0
// @description Lesson booking for a sports education school
// @BasePath /api/v1
// @schemes http

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

	var redisClient *redis.Client
	if cfg.Agenda.CacheEnabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, agenda cache disabled", "error", err)
			redisClient = nil
		}
	}

	validate := validator.New()

	sportRepo := repository.NewSportRepository(db)
	teacherRepo := repository.NewTeacherRepository(db)
	contentRepo := repository.NewContentRepository(db)
	lessonRepo := repository.NewLessonRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(cfg.Auth.Secret, cfg.Auth.Expiration)
	sportSvc := service.NewSportService(sportRepo, contentRepo, validate, logr)
	teacherSvc := service.NewTeacherService(teacherRepo, validate, logr)
	contentSvc := service.NewContentService(contentRepo, sportRepo, validate, logr)
	bookingSvc := service.NewBookingService(lessonRepo, teacherRepo, contentRepo, sportRepo, cacheRepo, cfg.Agenda.CacheTTL, metricsSvc, validate, logr)
	exportSvc := service.NewExportService(bookingSvc, teacherSvc, logr)

	sportHandler := handler.NewSportHandler(sportSvc)
	teacherHandler := handler.NewTeacherHandler(teacherSvc, bookingSvc, exportSvc)
	contentHandler := handler.NewContentHandler(contentSvc)
	lessonHandler := handler.NewLessonHandler(bookingSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	{
		api.GET("/sports", sportHandler.List)
		api.GET("/sports/:id", sportHandler.Get)

		api.GET("/teachers", teacherHandler.List)
		api.GET("/teachers/:id", teacherHandler.Get)
		api.GET("/teachers/:id/agenda", teacherHandler.Agenda)
		api.GET("/teachers/:id/agenda/export", teacherHandler.ExportAgenda)
		api.GET("/teachers/:id/lessons", teacherHandler.Lessons)

		api.GET("/contents", contentHandler.List)
		api.GET("/contents/:id", contentHandler.Get)

		api.GET("/lessons", lessonHandler.List)
		api.GET("/lessons/upcoming", lessonHandler.Upcoming)
		api.GET("/lessons/conflicts", lessonHandler.Conflicts)
		api.GET("/lessons/:id", lessonHandler.Get)
	}

	mutating := r.Group(cfg.APIPrefix)
	if cfg.Auth.Enabled {
		mutating.Use(middleware.JWT(authSvc))
	}
	{
		mutating.POST("/sports", sportHandler.Create)
		mutating.DELETE("/sports/:id", sportHandler.Delete)

		mutating.POST("/teachers", teacherHandler.Create)
		mutating.PUT("/teachers/:id", teacherHandler.Update)
		mutating.DELETE("/teachers/:id", teacherHandler.Delete)

		mutating.POST("/contents", contentHandler.Create)
		mutating.DELETE("/contents/:id", contentHandler.Delete)

		mutating.POST("/lessons", lessonHandler.Book)
		mutating.DELETE("/lessons/:id", lessonHandler.Cancel)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
