// Package app wires the shared backbone every agent process starts from:
// logger, database, repos, mailbox router, services, and the per-agent
// gin engines.
package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finbridge/finlit-backend/internal/clients/redis"
	"github.com/finbridge/finlit-backend/internal/db"
	"github.com/finbridge/finlit-backend/internal/handlers"
	"github.com/finbridge/finlit-backend/internal/logger"
	"github.com/finbridge/finlit-backend/internal/observability"
	"github.com/finbridge/finlit-backend/internal/repos"
	"github.com/finbridge/finlit-backend/internal/server"
	"github.com/finbridge/finlit-backend/internal/services"
	"github.com/finbridge/finlit-backend/internal/utils"
)

// App holds everything a main needs: the four agent routers, their ports,
// and the resources to close on shutdown.
type App struct {
	Log *logger.Logger

	AssessmentRouter *gin.Engine
	PlanningRouter   *gin.Engine
	ContentRouter    *gin.Engine
	ProgressRouter   *gin.Engine

	AssessmentPort int
	PlanningPort   int
	ContentPort    int
	ProgressPort   int

	cache        redis.HandoffCache
	otelShutdown func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	// Tracing
	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "finlit-backend",
		Environment: utils.GetEnv("ENVIRONMENT", "development", log),
		Version:     utils.GetEnv("SERVICE_VERSION", "dev", log),
	})

	// Database
	dbService, err := db.New(log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := dbService.AutoMigrateAll(); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	gdb := dbService.DB()

	// Repos
	log.Info("Setting up Repos...")
	userRepo := repos.NewUserRepo(gdb, log)
	assessmentRepo := repos.NewAssessmentRepo(gdb, log)
	pathRepo := repos.NewLearningPathRepo(gdb, log)
	progressRepo := repos.NewProgressRepo(gdb, log)
	handoffRepo := repos.NewHandoffRepo(gdb, log)
	statsRepo := repos.NewStatsRepo(gdb, log)

	// Mailbox cache (optional)
	cache, err := redis.NewHandoffCache(log)
	if err != nil {
		log.Warn("Redis handoff cache unavailable, running without it", "error", err)
		cache = nil
	}

	// Services
	log.Info("Setting up Services...")
	router := services.NewHandoffRouter(gdb, log, userRepo, assessmentRepo, handoffRepo, cache)
	assessmentSvc := services.NewAssessmentService(gdb, log, userRepo, assessmentRepo, statsRepo, router)
	planningSvc := services.NewPlanningService(gdb, log, userRepo, assessmentRepo, pathRepo, router)
	progressSvc := services.NewProgressService(gdb, log, userRepo, pathRepo, progressRepo, router)
	contentSvc := services.NewContentService(gdb, log, assessmentRepo, pathRepo, progressRepo, router)

	// Handlers + routers
	assessmentHandler := handlers.NewAssessmentHandler(log, assessmentSvc)
	planningHandler := handlers.NewPlanningHandler(log, planningSvc)
	progressHandler := handlers.NewProgressHandler(log, progressSvc)
	contentHandler := handlers.NewContentHandler(log, contentSvc)

	return &App{
		Log:              log,
		AssessmentRouter: server.NewAssessmentRouter(assessmentHandler),
		PlanningRouter:   server.NewPlanningRouter(planningHandler),
		ContentRouter:    server.NewContentRouter(contentHandler),
		ProgressRouter:   server.NewProgressRouter(progressHandler),
		AssessmentPort:   utils.GetEnvAsInt("ASSESSMENT_PORT", 8001, log),
		PlanningPort:     utils.GetEnvAsInt("PLANNING_PORT", 8002, log),
		ContentPort:      utils.GetEnvAsInt("CONTENT_PORT", 8003, log),
		ProgressPort:     utils.GetEnvAsInt("PROGRESS_PORT", 8004, log),
		cache:            cache,
		otelShutdown:     otelShutdown,
	}, nil
}

// Close releases shared resources. Safe to call once at process exit.
func (a *App) Close(ctx context.Context) {
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.Log.Warn("closing handoff cache", "error", err)
		}
	}
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("shutting down tracing", "error", err)
		}
	}
	a.Log.Sync()
}

// Serve runs one agent router as an http.Server and shuts it down when
// ctx is canceled.
func Serve(ctx context.Context, log *logger.Logger, name string, port int, handler http.Handler) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("agent listening", "agent", name, "port", port)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("%s server: %w", name, err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("%s shutdown: %w", name, err)
		}
		return nil
	}
}
