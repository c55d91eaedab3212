package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"school-portal/internal/config"
	"school-portal/internal/database"
	"school-portal/internal/event"
	"school-portal/internal/handler"
	"school-portal/internal/middleware"
	"school-portal/internal/portalapi"
	"school-portal/internal/router"
	"school-portal/internal/service"
	"school-portal/internal/session"
	"school-portal/internal/tokenstore"
)

type App struct {
	server       *http.Server
	cleanupFuncs []func()
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	var cleanupFuncs []func()
	cleanup := func() {
		for i := len(cleanupFuncs) - 1; i >= 0; i-- {
			cleanupFuncs[i]()
		}
	}

	backgroundCtx, backgroundCancel := context.WithCancel(context.Background())
	cleanupFuncs = append(cleanupFuncs, backgroundCancel)

	tokens, closeStore, err := openTokenStore(backgroundCtx, cfg)
	if err != nil {
		cleanup()
		return nil, err
	}
	cleanupFuncs = append(cleanupFuncs, closeStore)

	bus := event.NewBus()
	go event.RunAuditLog(backgroundCtx, bus, slog.Default().With("component", "audit"))

	api := portalapi.New(cfg.APIBaseURL, cfg.APITimeout)
	slog.Info("school API configured", "base_url", api.BaseURL())

	registry := session.NewRegistry()
	resolver := session.NewResolver(registry, tokens, bus, cfg.SessionRestore)
	sessionMiddleware := middleware.NewSessionMiddleware(resolver, cfg.SessionCookieSecure)

	authService := service.NewAuthService(api, tokens, registry, bus)
	dashboardService := service.NewDashboardService(api, tokens, authService)
	registrationService := service.NewRegistrationService(api, bus)

	renderer, err := handler.NewRenderer()
	if err != nil {
		cleanup()
		return nil, fmt.Errorf("failed to load templates: %w", err)
	}

	appRouter := router.New(cfg, sessionMiddleware, router.Handlers{
		Auth:      handler.NewAuthHandler(authService, renderer, cfg.UnauthorizedBannerTTL),
		Register:  handler.NewRegisterHandler(registrationService, renderer),
		Dashboard: handler.NewDashboardHandler(dashboardService, renderer),
		Session:   handler.NewSessionHandler(authService, dashboardService),
		Docs:      handler.NewDocsHandler(),
	})

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server:       server,
		cleanupFuncs: []func(){cleanup},
	}, nil
}

// openTokenStore builds the configured Token Store backend and returns the
// function that releases it.
func openTokenStore(ctx context.Context, cfg *config.Config) (tokenstore.Store, func(), error) {
	switch cfg.TokenStore {
	case config.TokenStoreRedis:
		slog.Info("connecting to Redis", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		client, err := tokenstore.DialRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		return tokenstore.NewRedis(client), func() { _ = client.Close() }, nil

	case config.TokenStorePostgres:
		slog.Info("connecting to PostgreSQL")
		db, err := database.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to ensure database schema: %w", err)
		}

		store := tokenstore.NewPostgres(db.Pool)
		go store.StartCleanupTicker(ctx, cfg.TokenIdleTTL)
		return store, db.Close, nil

	default:
		slog.Info("using in-memory token store")
		return tokenstore.NewMemory(), func() {}, nil
	}
}

func (a *App) Run() error {
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if serveErr := a.server.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			slog.Error("server failed", "error", serveErr)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}

	slog.Info("server stopped")
	return nil
}
