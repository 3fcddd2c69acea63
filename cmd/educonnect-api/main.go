package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/kotkala/EduConnectSystem-sub009/api/swagger"
	"github.com/kotkala/EduConnectSystem-sub009/internal/handler"
	"github.com/kotkala/EduConnectSystem-sub009/internal/middleware"
	"github.com/kotkala/EduConnectSystem-sub009/internal/repository"
	"github.com/kotkala/EduConnectSystem-sub009/internal/service"
	"github.com/kotkala/EduConnectSystem-sub009/migrations"
	"github.com/kotkala/EduConnectSystem-sub009/pkg/cache"
	"github.com/kotkala/EduConnectSystem-sub009/pkg/config"
	"github.com/kotkala/EduConnectSystem-sub009/pkg/database"
	"github.com/kotkala/EduConnectSystem-sub009/pkg/export"
	"github.com/kotkala/EduConnectSystem-sub009/pkg/jobs"
	"github.com/kotkala/EduConnectSystem-sub009/pkg/logger"
	corsmiddleware "github.com/kotkala/EduConnectSystem-sub009/pkg/middleware/cors"
	reqidmiddleware "github.com/kotkala/EduConnectSystem-sub009/pkg/middleware/requestid"
)

// @title EduConnect Timetable API
// @version 1.0.0
// @description Timetable events, conflict checks, semesters and classrooms.
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logr); err != nil {
		logr.Fatal("server failed", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migrations.Up(ctx, db, logr); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, timetable views will not be cached", zap.Error(err))
			redisClient = nil
		}
	}

	metricsSvc := service.NewMetricsService()
	validate := service.NewValidator()

	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	defer cacheRepo.Close() //nolint:errcheck
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Timetable.CacheTTL, logr, cfg.Timetable.CacheEnabled && cacheRepo.Enabled())

	notifier := service.NewTimetableCacheNotifier(cacheSvc, metricsSvc, logr, jobs.QueueConfig{
		Workers:    cfg.Timetable.NotifyWorkers,
		BufferSize: cfg.Timetable.NotifyBufferSize,
		MaxRetries: cfg.Timetable.NotifyRetries,
		RetryDelay: cfg.Timetable.NotifyRetryDelay,
	})
	// Workers outlive the signal context so requests drained by srv.Shutdown still
	// invalidate views; the deferred Stop runs after shutdown completes.
	notifier.Start(context.WithoutCancel(ctx))
	defer notifier.Stop()

	eventRepo := repository.NewTimetableEventRepository(db, metricsSvc)
	timetableSvc := service.NewTimetableService(eventRepo, validate, metricsSvc, logr, notifier)
	viewSvc := service.NewTimetableViewService(eventRepo, cacheSvc, service.TimetableViewConfig{
		CacheTTL:      cfg.Timetable.CacheTTL,
		ExportEnabled: cfg.Timetable.ExportEnabled,
		TitlePrefix:   cfg.Timetable.ExportTitlePrefix,
	}, logr, export.NewCSVExporter(), export.NewPDFExporter())
	semesterSvc := service.NewSemesterService(repository.NewSemesterRepository(db), validate, logr)
	classroomSvc := service.NewClassroomService(repository.NewClassroomRepository(db), validate, logr)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	handler.RegisterRoutes(r, cfg.APIPrefix, handler.Handlers{
		Timetable: handler.NewTimetableHandler(timetableSvc, viewSvc),
		Semester:  handler.NewSemesterHandler(semesterSvc),
		Classroom: handler.NewClassroomHandler(classroomSvc),
		Metrics: handler.NewMetricsHandler(metricsSvc, map[string]handler.ReadinessCheck{
			"postgres": db.PingContext,
			"redis":    cacheRepo.Ping,
		}),
		Verifier: service.NewTokenService(cfg.JWT),
		Logger:   logr,
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down", zap.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
