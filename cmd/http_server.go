package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	"github.com/spf13/cobra"

	"github.com/gestaolite/backoffice/internal"
	"github.com/gestaolite/backoffice/internal/bootstrap"
	"github.com/gestaolite/backoffice/internal/cache"
	"github.com/gestaolite/backoffice/internal/company"
	"github.com/gestaolite/backoffice/internal/core/events"
	"github.com/gestaolite/backoffice/internal/gateway"
	"github.com/gestaolite/backoffice/internal/modules"
	"github.com/gestaolite/backoffice/internal/navigation"
	"github.com/gestaolite/backoffice/internal/permission"
	"github.com/gestaolite/backoffice/internal/session"
	"github.com/gestaolite/backoffice/internal/transport/rest"
	"github.com/gestaolite/backoffice/pkg/logger"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP gateway in front of the business API`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config   *internal.Config
	Router   *chi.Mux
	Store    *session.Store
	Cache    *cache.Client
	Manager  *bootstrap.Manager
	Handlers rest.Handlers
	Logger   *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	rest.RegisterAllRoutes(
		deps.Router,
		deps.Handlers,
		deps.Manager,
		deps.Store,
		deps.Cache,
		deps.Config.Backend.BaseURL,
		deps.Config.Server.AllowedOrigins,
		deps.Logger,
	)

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if deps.Cache != nil {
			if err := deps.Cache.Close(); err != nil {
				slog.Error("Cache close error", "error", err)
			}
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	env := "development"
	if config.Observability.Logging.Format == "json" {
		env = "production"
	}
	logger.Init(env)
	lg := logger.LoggerWrapper()

	store, err := session.NewStore(config.Storage.Path, lg)
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	var cacheClient *cache.Client
	if config.Cache.Enabled {
		cacheClient, err = cache.NewClient(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to cache: %w", err)
		}
	}

	eventBus := events.NewEventBus(lg)

	tokens := session.NewTokenGenerator(config.Security.SessionSecret, config.Security.AccessTokenDuration)
	sessionService := session.NewService(store, tokens, eventBus, lg)

	errorFlag := gateway.NewErrorFlag()
	apiClient := gateway.NewClient(gateway.Config{
		BaseURL:        config.Backend.BaseURL,
		RequestTimeout: config.Backend.RequestTimeout,
	}, sessionService, errorFlag, lg)

	var permCache permission.Cache
	if cacheClient != nil {
		permCache = cacheClient
	}
	permissionResolver := permission.NewResolver(apiClient, permCache, lg)
	companyResolver := company.NewResolver(apiClient, lg)

	navController := navigation.NewController()
	manager := bootstrap.NewManager(sessionService, permissionResolver, companyResolver, navController, errorFlag, lg)

	// A finished session tears everything down: app state, navigation and
	// whatever permissions were cached for the phone that just left.
	eventBus.Subscribe(events.EventTypeSessionEnded, func(ctx context.Context, event events.Event) error {
		manager.Reset()
		if ended, ok := event.(*events.SessionEndedEvent); ok {
			permissionResolver.Invalidate(ctx, ended.Phone)
		}
		return nil
	})

	proxy, err := modules.NewProxy(config.Backend.BaseURL, manager)
	if err != nil {
		return nil, fmt.Errorf("failed to build module proxy: %w", err)
	}

	handlers := rest.Handlers{
		Session:    session.NewHandler(sessionService),
		Permission: permission.NewHandler(permissionResolver),
		Company:    company.NewHandler(companyResolver, permissionResolver, sessionService),
		Navigation: navigation.NewHandler(navController),
		Bootstrap:  bootstrap.NewHandler(manager),
		Modules:    proxy,
	}

	return &Dependencies{
		Config:   config,
		Router:   chi.NewRouter(),
		Store:    store,
		Cache:    cacheClient,
		Manager:  manager,
		Handlers: handlers,
		Logger:   lg,
	}, nil
}
