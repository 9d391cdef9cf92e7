package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/ra-lab-allocator/api/swagger"
	"github.com/noah-isme/ra-lab-allocator/internal/allocation"
	"github.com/noah-isme/ra-lab-allocator/internal/handler"
	"github.com/noah-isme/ra-lab-allocator/internal/ingest"
	"github.com/noah-isme/ra-lab-allocator/internal/middleware"
	"github.com/noah-isme/ra-lab-allocator/internal/models"
	"github.com/noah-isme/ra-lab-allocator/internal/repository"
	"github.com/noah-isme/ra-lab-allocator/internal/service"
	"github.com/noah-isme/ra-lab-allocator/pkg/cache"
	"github.com/noah-isme/ra-lab-allocator/pkg/config"
	"github.com/noah-isme/ra-lab-allocator/pkg/database"
	"github.com/noah-isme/ra-lab-allocator/pkg/export"
	"github.com/noah-isme/ra-lab-allocator/pkg/jobs"
	"github.com/noah-isme/ra-lab-allocator/pkg/logger"
	corsmiddleware "github.com/noah-isme/ra-lab-allocator/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ra-lab-allocator/pkg/middleware/requestid"
	"github.com/noah-isme/ra-lab-allocator/pkg/storage"
)

// @title RA Lab Allocator API
// @version 1.0.0
// @description Assigns research assistants to laboratory sessions
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey Bearer
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("database connection failed", zap.Error(err))
	}
	defer db.Close()
	if err := database.Migrate(ctx, db); err != nil {
		logr.Fatal("database migration failed", zap.Error(err))
	}

	var cacheClient redis.Cmdable
	if client, err := cache.NewRedis(cfg.Redis); err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
	} else {
		cacheClient = client
		defer client.Close()
	}

	slots, err := ingest.LoadSlotMap(cfg.Allocation.SlotMapFile)
	if err != nil {
		logr.Fatal("failed to load slot map", zap.String("path", cfg.Allocation.SlotMapFile), zap.Error(err))
	}

	validate := validator.New()
	metrics := service.NewMetricsService()

	engine := allocation.NewEngine(allocation.Config{
		Band:     allocation.Band{Min: cfg.Allocation.MinCourses, Max: cfg.Allocation.MaxCourses},
		LabTypes: cfg.Allocation.LabTypes,
		Workers:  cfg.Allocation.Workers,
		Seed:     cfg.Allocation.Seed,
		Logger:   logr.Named("allocation"),
	})
	allocationSvc := service.NewAllocationService(engine, slots, validate, metrics, logr, service.AllocationServiceConfig{
		MaxAssistants: cfg.Allocation.MaxAssistants,
		MaxCourses:    cfg.Allocation.MaxCourseRows,
	})

	draftRepo := repository.NewDraftRepository(db)
	cacheRepo := repository.NewCacheRepository(cacheClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Drafts.CacheTTL, logr, cacheClient != nil)
	draftSvc := service.NewDraftService(draftRepo, allocationSvc, cacheSvc, validate, logr, cfg.Drafts.CacheTTL)

	handlers := handler.Handlers{
		Allocations: handler.NewAllocationHandler(allocationSvc, cfg.Allocation.UploadMaxSize),
		Drafts:      handler.NewDraftHandler(draftSvc),
		Metrics:     handler.NewMetricsHandler(metrics, readinessChecks(db.PingContext, cacheClient)),
	}

	var queue *jobs.Queue
	if cfg.Exports.Enabled {
		queue, handlers.Exports, err = startExports(ctx, cfg, logr, db, draftRepo, validate, metrics)
		if err != nil {
			logr.Fatal("failed to start exports", zap.Error(err))
		}
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	var guards []gin.HandlerFunc
	if cfg.Auth.Enabled {
		auth := service.NewAuthService(service.AuthConfig{
			AccessTokenSecret: cfg.Auth.Secret,
			AccessTokenExpiry: cfg.Auth.TokenTTL,
			Issuer:            cfg.Auth.Issuer,
		})
		guards = append(guards, middleware.JWT(auth), middleware.RequireRoles(models.RoleAdmin, models.RoleCoordinator))
	}
	handler.Register(r, cfg.APIPrefix, handlers, guards...)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("graceful shutdown failed", zap.Error(err))
	}
	if queue != nil {
		queue.Stop()
	}
}

func startExports(ctx context.Context, cfg *config.Config, logr *zap.Logger, db *sqlx.DB, drafts *repository.DraftRepository, validate *validator.Validate, metrics *service.MetricsService) (*jobs.Queue, *handler.ExportHandler, error) {
	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		return nil, nil, fmt.Errorf("export storage: %w", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	exporter := service.NewExportService(drafts, store, signer, service.ExportConfig{
		APIPrefix: cfg.APIPrefix,
		ResultTTL: cfg.Exports.RetentionPeriod,
		Band:      allocation.Band{Min: cfg.Allocation.MinCourses, Max: cfg.Allocation.MaxCourses},
	}, logr, export.NewCSVExporter(), export.NewPDFExporter())

	jobRepo := repository.NewExportJobRepository(db)
	worker := service.NewExportWorker(jobRepo, exporter, metrics, logr)

	var jobSvc *service.ExportJobService
	queue := jobs.NewQueue(service.ExportJobType, worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.WorkerConcurrency,
		MaxRetries: cfg.Exports.WorkerRetries,
		Logger:     logr.Named("exports"),
		OnFailure: func(ctx context.Context, job jobs.Job, err error) {
			jobSvc.HandleFailure(ctx, job, err)
		},
	})
	jobSvc = service.NewExportJobService(jobRepo, drafts, queue, exporter, validate, metrics, logr, service.ExportJobServiceConfig{
		ResultTTL:       cfg.Exports.RetentionPeriod,
		CleanupInterval: cfg.Exports.CleanupInterval,
	})

	queue.Start(ctx)
	jobSvc.RecoverPendingJobs(ctx)
	jobSvc.StartCleanup(ctx)
	return queue, handler.NewExportHandler(jobSvc), nil
}

func readinessChecks(pingDB func(context.Context) error, client redis.Cmdable) map[string]handler.ReadinessCheck {
	checks := map[string]handler.ReadinessCheck{"database": pingDB}
	if client != nil {
		checks["cache"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
	}
	return checks
}
