package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/fixora/tasklist/application/port/inbound"
	"github.com/fixora/tasklist/application/usecase"
	"github.com/fixora/tasklist/infrastructure/adapter/postgres"
	"github.com/fixora/tasklist/infrastructure/config"
	"github.com/fixora/tasklist/infrastructure/http/handler"
	"github.com/fixora/tasklist/infrastructure/http/middleware"
	"github.com/fixora/tasklist/infrastructure/http/router"
	"github.com/fixora/tasklist/infrastructure/service/jwt"
	"github.com/fixora/tasklist/infrastructure/service/logger"
	"github.com/fixora/tasklist/infrastructure/service/metrics"
	"github.com/fixora/tasklist/infrastructure/service/ratelimit"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	structuredLogger := logger.NewStructuredLogger(logger.LoggerConfig{
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		ServiceName: "tasklist",
	})
	structuredLogger.Info(ctx, "Application starting", map[string]interface{}{
		"env": cfg.Environment,
	})

	if cfg.UsingFallbackSecrets() {
		logger.LogSecurityEvent(ctx, structuredLogger, "fallback_signing_secrets", "HIGH", map[string]interface{}{
			"hint": "set ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET",
		})
	}

	// Connect to database
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to open database", err, nil)
		os.Exit(1)
	}
	defer db.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		structuredLogger.Error(ctx, "Failed to ping database", err, nil)
		os.Exit(1)
	}
	structuredLogger.Info(ctx, "Database connection established", nil)

	// Redis backed rate limiting, or a no-op service when disabled or unreachable
	var rateLimitService inbound.RateLimitService
	{
		rlLogger := logrus.New()
		if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
			rlLogger.SetLevel(lvl)
		}
		if cfg.LogFormat == "json" {
			rlLogger.SetFormatter(&logrus.JSONFormatter{})
		}

		rateLimitService, err = ratelimit.NewRateLimitService(ratelimit.RateLimitConfig{
			Enabled:  cfg.RateLimitEnabled,
			RedisURL: cfg.RedisURL,
		}, rlLogger)
		if err != nil {
			structuredLogger.Error(ctx, "Failed to initialize rate limit service, continuing without it", err, nil)
			rateLimitService = ratelimit.NewNoopRateLimitService()
		} else {
			structuredLogger.Info(ctx, "Rate limiting service initialized", map[string]interface{}{
				"enabled": cfg.RateLimitEnabled,
			})
		}
	}

	// Repositories
	userRepo := postgres.NewUserRepositoryAdapter(db)
	taskRepo := postgres.NewTaskRepositoryAdapter(db)

	// Token service, one per process, handed to everything that needs it
	tokenService, err := jwt.NewJWTService(cfg, structuredLogger)
	if err != nil {
		structuredLogger.Error(ctx, "Failed to initialize JWT service", err, nil)
		os.Exit(1)
	}

	// Use cases
	userUseCase := usecase.NewUserUseCase(userRepo, tokenService, structuredLogger)
	authUseCase := usecase.NewAuthUseCase(tokenService, structuredLogger)
	taskUseCase := usecase.NewTaskUseCase(taskRepo, structuredLogger)

	appMetrics := metrics.New()

	handlerChain := router.NewRouter(router.Dependencies{
		AuthHandler:         handler.NewAuthHandler(authUseCase, structuredLogger),
		UserHandler:         handler.NewUserHandler(userUseCase, structuredLogger),
		TaskHandler:         handler.NewTaskHandler(taskUseCase, structuredLogger),
		AuthMiddleware: middleware.NewAuthMiddleware(tokenService, structuredLogger,
			middleware.WithOutcomeRecorder(appMetrics)),
		RateLimitMiddleware: middleware.NewRateLimitMiddleware(rateLimitService, structuredLogger,
			middleware.WithTrustedProxies(cfg.RateLimitTrustedProxies)),
		RefreshLimit: middleware.RateLimitRule{
			Name:          "token_refresh",
			Limit:         cfg.RateLimitRefreshAttempts,
			Window:        cfg.RateLimitRefreshWindow,
			BlockDuration: cfg.RateLimitBlockDuration,
		},
		LookupLimit: middleware.RateLimitRule{
			Name:          "user_lookup",
			Limit:         cfg.RateLimitLookupAttempts,
			Window:        cfg.RateLimitLookupWindow,
			BlockDuration: cfg.RateLimitBlockDuration,
		},
		CORSEnabled:          cfg.CORSEnabled,
		CORSAllowedOrigins:   cfg.CORSAllowedOrigins,
		CORSAllowCredentials: cfg.CORSAllowCredentials,
		Metrics:              appMetrics,
		Logger:               structuredLogger,
	})

	server := router.NewServer(router.ServerConfig{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}, handlerChain, structuredLogger)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(ctx)
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			structuredLogger.Error(ctx, "Server failed", err, nil)
			os.Exit(1)
		}
		return
	case sig := <-quit:
		structuredLogger.Info(ctx, "Shutdown signal received", map[string]interface{}{
			"signal": sig.String(),
		})
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		structuredLogger.Error(ctx, "Server forced to shutdown", err, nil)
	}
	structuredLogger.Info(ctx, "Server exited", nil)
}
