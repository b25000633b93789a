package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/reserva-app/reserva/internal/app"
	"github.com/reserva-app/reserva/internal/audit"
	"github.com/reserva-app/reserva/internal/auth"
	"github.com/reserva-app/reserva/internal/booking"
	"github.com/reserva-app/reserva/internal/directory"
	"github.com/reserva-app/reserva/internal/observability"
	"github.com/reserva-app/reserva/internal/platform/cache"
	"github.com/reserva-app/reserva/internal/platform/db"
	"github.com/reserva-app/reserva/internal/rbac"
	"github.com/reserva-app/reserva/internal/token"
	"github.com/reserva-app/reserva/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	codec, err := token.NewCodec(cfg.TokenSecret, cfg.TokenIssuer)
	if err != nil {
		logger.Error("init token codec", slog.Any("error", err))
		os.Exit(1)
	}

	store := directory.NewStore(pool)
	subjectCache := rbac.NewCache(redisClient, cfg.SubjectCacheTTL)
	rbacService := rbac.NewService(store, subjectCache)

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Warn("asynq close", slog.Any("error", err))
		}
	}()
	dispatcher := audit.NewDispatcher(jobs.NewQueueSink(asynqClient), cfg.AuditBuffer, logger)
	defer dispatcher.Close()

	registry := rbac.NewRegistry()
	tagger := audit.NewTagger()
	metrics := observability.NewMetrics()

	guard := rbac.NewGuard(rbac.GuardConfig{
		Codec:    codec,
		Service:  rbacService,
		Registry: registry,
		Tagger:   tagger,
		Emitter:  dispatcher,
		Policy:   rbac.ParsePolicy(cfg.AuthzUndeclared),
		Logger:   logger,
		Metrics:  metrics,
	})

	authService := auth.NewService(store, codec, cfg.TokenTTL)
	authHandler := auth.NewHandler(logger, authService)
	permissionsHandler := rbac.NewPermissionsHandler(logger, rbacService)
	bookingHandler := booking.NewHandler(logger, booking.NewRepository(pool))

	authHandler.RegisterOperations(registry)
	permissionsHandler.RegisterOperations(registry)
	bookingHandler.RegisterOperations(registry, tagger)

	router := app.NewRouter(app.RouterParams{
		Logger:             logger,
		Config:             cfg,
		Guard:              guard,
		AuthHandler:        authHandler,
		PermissionsHandler: permissionsHandler,
		BookingHandler:     bookingHandler,
		Metrics:            metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", slog.Any("error", err))
	}
}
