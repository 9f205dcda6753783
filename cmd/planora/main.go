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

	"golang.org/x/sync/errgroup"

	"github.com/planora/planora/internal/app"
	"github.com/planora/planora/internal/authz"
	"github.com/planora/planora/internal/identity"
	"github.com/planora/planora/internal/observability"
	"github.com/planora/planora/internal/platform/cache"
	"github.com/planora/planora/internal/platform/db"
	"github.com/planora/planora/internal/projects"
	"github.com/planora/planora/internal/shared"
	"github.com/planora/planora/internal/users"
)

func main() {
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
		logger.Error("connect database", slog.Any("error", err))
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

	metrics := observability.NewMetrics()
	audit := shared.NewAuditLogger(pool)

	principalStore := identity.NewPGStore(pool)
	resolver := identity.NewResolver(
		identity.CookieExtractor{Name: cfg.SessionCookie},
		identity.HeaderExtractor{Name: cfg.IdentityHeader},
	)
	verifier := identity.NewVerifier(principalStore)
	registry := identity.NewSessionRegistry(redisClient, cfg.SessionTTL)
	issuer := identity.NewIssuer(principalStore, cfg.SessionCookie, cfg.SessionTTL, cfg.CookieSecure())
	identityService := identity.NewService(principalStore, registry, audit, logger)
	authHandler := identity.NewHandler(logger, identityService, issuer)

	grants := authz.NewRepository(pool)
	engine := authz.NewEngine(grants, grants, cfg.MasterAdminID, logger, metrics.Auth())
	guard := authz.Middleware{Engine: engine, Logger: logger}

	usersRepo := users.NewRepository(pool)
	usersHandler := users.NewHandler(logger, users.NewService(usersRepo), grants, audit, guard)

	projectsRepo := projects.NewRepository(pool)
	projectsHandler := projects.NewHandler(logger, projectsRepo, grants, guard)

	router := app.NewRouter(app.RouterParams{
		Logger:          logger,
		Config:          cfg,
		Resolver:        resolver,
		Verifier:        verifier,
		AuthHandler:     authHandler,
		UsersHandler:    usersHandler,
		ProjectsHandler: projectsHandler,
		Guard:           guard,
		Metrics:         metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server stopped", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}
