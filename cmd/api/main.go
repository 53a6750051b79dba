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

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"

	"cashtrackr/internal/auth"
	"cashtrackr/internal/config"
	"cashtrackr/internal/database"
	"cashtrackr/internal/email"
	"cashtrackr/internal/logger"
	"cashtrackr/internal/metrics"
	"cashtrackr/internal/ratelimit"
	"cashtrackr/internal/server"
	"cashtrackr/internal/services"
	"cashtrackr/internal/validator"
)

// @title           CashTrackr API
// @version         1.0
// @description     CashTrackr is a personal budgeting service: accounts with email confirmation, budgets and the expenses recorded against them.

// @host      localhost:4000
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

const shutdownTimeout = 15 * time.Second

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	validator.Register()

	// Create database manager
	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnw("database close error", "error", err)
		}
	}()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	db := dbManager.DB()
	m := metrics.New()

	// Email delivery
	var sender email.Sender = email.LogSender{}
	if appConfig.SendGridAPIKey != "" {
		sender = email.NewSendGridSender(appConfig.SendGridAPIKey, appConfig.MailFromAddress, appConfig.MailFromName)
	} else {
		log.Warn("SENDGRID_API_KEY not set, emails are only logged; read codes from the email_outbox table")
	}
	outbox := email.NewOutbox(db, sender, m, email.OutboxConfig{
		MaxAttempts: appConfig.OutboxMaxAttempts,
		BatchSize:   appConfig.OutboxBatchSize,
		Backoff:     appConfig.OutboxBackoff,
	})

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(appConfig.OutboxFlushSchedule, func() {
		flushCtx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		sent, err := outbox.Flush(flushCtx)
		if err != nil {
			log.Errorw("email outbox flush failed", "error", err)
			return
		}
		if sent > 0 {
			log.Infow("email outbox flushed", "sent", sent)
		}
	}); err != nil {
		return fmt.Errorf("invalid OUTBOX_FLUSH_SCHEDULE %q: %w", appConfig.OutboxFlushSchedule, err)
	}
	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	// Rate limiting
	limiter, closeLimiter, err := newLimiter(ctx, appConfig)
	if err != nil {
		return err
	}
	defer closeLimiter()

	// Initialize services
	sessions := auth.NewSessionManager(appConfig.JWTSecret, appConfig.JWTExpirationDur)
	userService := services.NewUserService(db)
	authService := services.NewAuthService(db, userService, sessions, outbox, email.NewTemplates(appConfig.FrontendURL))

	router := server.NewRouter(server.Deps{
		FrontendURL:   appConfig.FrontendURL,
		MetricsAPIKey: appConfig.MetricsAPIKey,
		Sessions:      sessions,
		Users:         userService,
		Auth:          authService,
		Budgets:       services.NewBudgetService(db),
		Expenses:      services.NewExpenseService(db),
		Audit:         services.NewAuditService(db),
		Limiter:       limiter,
		Metrics:       m,
		DB:            dbManager,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting CashTrackr API on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}

// newLimiter returns the Redis limiter when REDIS_URL is set so that every
// instance shares one budget, and the in-process limiter otherwise.
func newLimiter(ctx context.Context, cfg *config.Config) (ratelimit.Limiter, func(), error) {
	if cfg.RedisURL == "" {
		mem := ratelimit.NewMemory(cfg.RateLimitMax, cfg.RateLimitWindow)
		mem.StartCleanup(ctx, cfg.RateLimitWindow)
		return mem, func() {}, nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Get().Warnw("redis unreachable at startup, rate limiting fails open until it recovers", "error", err)
	}
	closeFn := func() {
		if err := client.Close(); err != nil {
			logger.Get().Warnw("redis close error", "error", err)
		}
	}
	return ratelimit.NewRedis(client, cfg.RateLimitMax, cfg.RateLimitWindow, "cashtrackr:ratelimit"), closeFn, nil
}
