package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/pflag"

	"github.com/yukikurage/project-management-api/internal/app"
	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/logger"
	"github.com/yukikurage/project-management-api/internal/mail"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/services"
)

const (
	rateLimiterPruneInterval = time.Minute
	rateLimiterIdle          = 10 * time.Minute
)

func main() {
	flagSet := pflag.NewFlagSet("server", pflag.ContinueOnError)
	configPath := flagSet.String("config", os.Getenv("CONFIG_FILE"), "path to a YAML config file overlaid on the environment")
	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		os.Exit(2)
	}

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}

	logger.Init(cfg.Server.Env)
	gin.SetMode(cfg.Server.GinMode)

	// Connect to database
	db, err := database.Connect(cfg.Database, cfg.Server.GinMode)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	// Run migrations
	if err := database.Migrate(db); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	// Initialize AI service
	var generator services.TaskGenerator
	if cfg.OpenAIAPIKey != "" {
		generator = services.NewAIService(cfg.OpenAIAPIKey)
	} else {
		logger.Warn("OPENAI_API_KEY not set, task generation is disabled")
	}

	limiter := middleware.NewRateLimiter(cfg.Server.RateLimitPerMin)
	router := app.NewRouter(app.Dependencies{
		Config:      cfg,
		DB:          db,
		Mailer:      mail.NewMailer(cfg.Mail),
		Generator:   generator,
		RateLimiter: limiter,
	})

	scheduler := services.NewSchedulerService(repository.NewUserRepository(db))
	if _, err := scheduler.ScheduleTokenSweep(cfg.TokenSweepInterval); err != nil {
		logger.Fatal("Failed to schedule token sweep", "error", err)
	}
	if _, err := scheduler.ScheduleInterval(rateLimiterPruneInterval, func() {
		if pruned := limiter.Prune(rateLimiterIdle); pruned > 0 {
			logger.Debug("Pruned idle rate limiters", "count", pruned)
		}
	}); err != nil {
		logger.Fatal("Failed to schedule rate limiter pruning", "error", err)
	}
	scheduler.Start()

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", "addr", cfg.Server.Addr, "env", cfg.Server.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("Shutting down server")
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.Close()
	}
}
