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

	"github.com/google/uuid"
	"github.com/kiwari-pos/cafeteria/internal/auth"
	"github.com/kiwari-pos/cafeteria/internal/cafeapi"
	"github.com/kiwari-pos/cafeteria/internal/catalog"
	"github.com/kiwari-pos/cafeteria/internal/config"
	"github.com/kiwari-pos/cafeteria/internal/enum"
	"github.com/kiwari-pos/cafeteria/internal/metrics"
	"github.com/kiwari-pos/cafeteria/internal/order"
	"github.com/kiwari-pos/cafeteria/internal/router"
	"github.com/kiwari-pos/cafeteria/internal/service"
	"github.com/kiwari-pos/cafeteria/internal/storage"
	"github.com/kiwari-pos/cafeteria/internal/view"
	"github.com/kiwari-pos/cafeteria/internal/ws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

func main() {
	cfg := config.Load()

	zerolog.TimeFieldFormat = time.RFC3339
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "cafeteria").Logger()
	zlog.Logger = logger

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger) error {
	backend, closeStorage, err := storage.Open(ctx, cfg.StorageDriver, storage.Options{
		DataDir:     cfg.DataDir,
		RedisURL:    cfg.RedisURL,
		DatabaseURL: cfg.DatabaseURL,
	})
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer closeStorage()
	logger.Info().Str("driver", cfg.StorageDriver).Msg("storage ready")

	opts := service.Options{Mode: cfg.OrderMode}
	switch cfg.OrderMode {
	case enum.OrderModeRemote:
		api := cafeapi.NewClient(cfg.APIBase, nil)
		opts.Menu = api
		opts.API = api
	default:
		menu, err := catalog.LoadStatic(cfg.MenuFile)
		if err != nil {
			return fmt.Errorf("load menu: %w", err)
		}
		opts.Menu = menu
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hub := ws.NewHub()
	go hub.Run(ctx)

	stores := order.NewStores(backend)
	opts.NewStore = func(id uuid.UUID) service.OrderStore { return stores.ForProfile(id) }
	opts.Notifier = hub
	opts.Metrics = metrics.New(reg)

	svc, err := service.NewOrderService(opts)
	if err != nil {
		return err
	}

	views, err := view.New()
	if err != nil {
		return err
	}

	bridge := auth.NewBridge(auth.Provider{
		Domain:       cfg.CognitoDomain,
		ClientID:     cfg.CognitoClientID,
		RedirectURI:  cfg.CognitoRedirectURI,
		LogoutURI:    cfg.CognitoLogoutURI,
		Scopes:       cfg.CognitoScopes,
		ResponseType: cfg.CognitoResponseType,
	}, backend, auth.NewSealer(cfg.SessionSecret))

	r := router.New(cfg, router.Deps{
		Orders:   svc,
		Bridge:   bridge,
		Hub:      hub,
		Views:    views,
		Gatherer: reg,
		Logger:   logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("port", cfg.Port).
			Str("mode", cfg.OrderMode).
			Bool("auth", bridge.Enabled()).
			Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
