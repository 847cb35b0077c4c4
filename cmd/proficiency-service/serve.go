package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/proficiency-service/internal/cache"
	"github.com/SAP-F-2025/proficiency-service/internal/catalog"
	"github.com/SAP-F-2025/proficiency-service/internal/config"
	"github.com/SAP-F-2025/proficiency-service/internal/handlers"
	"github.com/SAP-F-2025/proficiency-service/internal/monitor"
	"github.com/SAP-F-2025/proficiency-service/internal/questiongen"
	"github.com/SAP-F-2025/proficiency-service/internal/repositories/postgres"
	"github.com/SAP-F-2025/proficiency-service/internal/scoring"
	"github.com/SAP-F-2025/proficiency-service/internal/services"
	"github.com/SAP-F-2025/proficiency-service/internal/session"
	"github.com/SAP-F-2025/proficiency-service/internal/utils"
	"github.com/SAP-F-2025/proficiency-service/internal/validator"
	"github.com/SAP-F-2025/proficiency-service/pkg"
)

const (
	shutdownTimeout = 15 * time.Second
	sweepInterval   = time.Minute
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig()
		if err != nil {
			return err
		}
		cfg.CatalogFile = catalogPath(cmd, cfg.CatalogFile)
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg)
	},
}

func init() {
	serveCmd.Flags().String("port", "", "Listen port (overrides PORT)")
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := utils.NewLogger(cfg.Environment, os.Stdout)
	slogger := utils.ToSlogLogger(logger)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("Starting proficiency service", "environment", cfg.Environment, "port", cfg.Port)

	// Content
	cat, err := catalog.Load(cfg.CatalogFile)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}
	bank, err := questiongen.LoadBank(cfg.QuestionBankFile)
	if err != nil {
		return fmt.Errorf("failed to load question bank: %w", err)
	}

	// Storage
	db, err := pkg.InitDatabase(cfg)
	if err != nil {
		return err
	}
	if err := pkg.Migrate(db); err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database handle: %w", err)
	}
	defer sqlDB.Close()
	repos := postgres.NewRepositories(db)

	health := map[string]handlers.HealthCheck{
		"database": sqlDB.PingContext,
	}

	var cacheService cache.CacheService
	redisClient, err := pkg.NewRedisClient(ctx, cfg)
	switch {
	case err == nil:
		defer redisClient.Close()
		cacheService = cache.NewRedisCache(redisClient, slogger)
		health["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	case cfg.IsProduction():
		return err
	default:
		logger.Warn("Redis unavailable, using in-memory cache", "error", err)
		cacheService = cache.NewMemoryCache()
	}

	publisher, err := cfg.Events.CreateEventPublisher(slogger)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	defer publisher.Close()

	// Sessions
	clock := session.SystemClock{}
	registry := session.NewRegistry()
	monitors := monitor.NewManager(clock, cfg.TickInterval, slogger)
	v := validator.New()

	sessionService := services.NewSessionService(services.SessionDependencies{
		Catalog:    cat,
		Generator:  questiongen.New(bank),
		Scorer:     scoring.NewEngine(scoring.NewPercentileSource(cfg.PercentileMode, cfg.PercentileSeed), scoring.NewRecommender(cfg.AdaptiveRecommendations)),
		Registry:   registry,
		Monitors:   monitors,
		Templates:  repos.Templates,
		Invites:    repos.Invites,
		Reports:    repos.Reports,
		Proctoring: repos.Proctoring,
		Cache:      cacheService,
		Publisher:  publisher,
		Clock:      clock,
		Logger:     slogger,
	}, services.SessionOptions{
		GradingDelay:   cfg.GradingDelay,
		ResultCacheTTL: cfg.ResultCacheTTL,
	})
	defer sessionService.Close()

	sweeper := session.NewSweeper(registry, clock, cfg.SessionIdleTTL, sweepInterval, slogger)
	sweeper.OnEvict(monitors.Forget)
	sweeper.Start(ctx)

	templateService := services.NewTemplateService(repos.Templates, repos.Invites, cat, slogger, v)
	inviteService := services.NewInviteService(repos.Templates, repos.Invites, repos.Reports, cacheService, publisher, slogger, v)
	exportService := services.NewExportService(templateService, repos.Reports, slogger)

	// HTTP
	auth, err := handlers.NewAuthenticator(cfg)
	if err != nil {
		return err
	}
	hm := handlers.NewHandlerManager(handlers.Services{
		Catalog:   cat,
		Sessions:  sessionService,
		Templates: templateService,
		Invites:   inviteService,
		Export:    exportService,
	}, auth, health, v, logger)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handlers.NewRouter(hm, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down proficiency service")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.LogError(err, "Graceful shutdown failed")
	}
	logger.Info("Proficiency service stopped")
	return nil
}
