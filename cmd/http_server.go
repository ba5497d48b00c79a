package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Siddharth-Keer/Koe-Dashboard/api"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/auth"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/core/events"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/kvstore"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/monitor"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/payout"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/payout/kvrepo"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/transport"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/transport/rest"
	"github.com/Siddharth-Keer/Koe-Dashboard/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return startHTTPServer(cmd.Context())
	},
}

type Dependencies struct {
	Config        *internal.Config
	Store         kvstore.Store
	EventBus      *events.EventBus
	PayoutService *payout.Service
	AuthService   *auth.Service
	Registry      *prometheus.Registry
	Sampler       *monitor.PendingSampler
	Router        *chi.Mux
	Logger        *slog.Logger
}

func startHTTPServer(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := bootstrap()
	if err != nil {
		return err
	}

	deps, err := initializeDependencies(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	defer deps.close()

	if err := setupRoutes(deps); err != nil {
		return err
	}

	if deps.Sampler != nil {
		if err := deps.Sampler.Start(ctx, cfg.Observability.Metrics.RefreshSchedule); err != nil {
			return err
		}
		defer deps.Sampler.Stop()
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "storage", deps.Store.Name())

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		shutdownCtx, cancel := internal.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	}

	deps.Logger.Info("Server stopped")
	return nil
}

func setupRoutes(deps *Dependencies) error {
	lg := deps.Logger
	cfg := deps.Config

	opts := rest.Options{
		AllowedOrigins: cfg.Server.AllowedOriginList(),
		OpenAPI:        api.OpenAPI,
	}
	if cfg.Observability.Metrics.Enabled {
		opts.MetricsPath = cfg.Observability.Metrics.Path
		opts.Metrics = monitor.Handler(deps.Registry)
		opts.HTTPMetrics = monitor.NewHTTPMetrics(deps.Registry)
	}

	return rest.RegisterAllRoutes(deps.Router, rest.Handlers{
		Auth:   auth.NewHandler(deps.AuthService, lg),
		Payout: payout.NewHandler(deps.PayoutService, lg),
		Health: rest.NewHealthHandler(deps.Store, transport.NewBaseHandler(lg)),
	}, opts, lg)
}

func initializeDependencies(ctx context.Context, cfg *internal.Config) (*Dependencies, error) {
	lg := logger.L()

	store, err := openStore(ctx, cfg.Storage, lg)
	if err != nil {
		return nil, err
	}

	bus := events.NewEventBus(lg)
	payoutService := newPayoutService(cfg, store, bus, lg)

	if cfg.Payout.SeedOnStart {
		if _, err := payoutService.Initialize(ctx, payout.DefaultSeed()); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to seed payouts: %w", err)
		}
	}

	tokens := auth.NewJWTTokenGenerator(cfg.Security.SessionSecret, cfg.Security.SessionDuration, cfg.Security.Issuer)

	deps := &Dependencies{
		Config:        cfg,
		Store:         store,
		EventBus:      bus,
		PayoutService: payoutService,
		AuthService:   auth.NewService(tokens, lg),
		Router:        chi.NewRouter(),
		Logger:        lg,
	}

	if cfg.Observability.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		metrics := monitor.NewPayoutMetrics(reg)
		metrics.Subscribe(bus)

		deps.Registry = reg
		if cfg.Observability.Metrics.RefreshSchedule != "" {
			deps.Sampler = monitor.NewPendingSampler(payoutService, metrics, lg)
		}
	}

	bus.Subscribe(events.Wildcard, func(ctx context.Context, event events.Event) error {
		logger.From(ctx).Debug("event delivered", "event_type", event.EventType(), "event_id", event.EventID())
		return nil
	})

	return deps, nil
}

func (d *Dependencies) close() {
	d.EventBus.Wait()
	if err := d.Store.Close(); err != nil {
		d.Logger.Error("storage close error", "error", err)
	}
}

// newPayoutService builds the payout service over store with the configured policy.
func newPayoutService(cfg *internal.Config, store kvstore.Store, bus *events.EventBus, lg *slog.Logger) *payout.Service {
	minimum := decimal.NewFromFloat(cfg.Payout.MinimumWithdrawal)
	policy := payout.Policy{
		MinimumWithdrawal: minimum,
		Overview: payout.Overview{
			HoursRecorded:     decimal.NewFromFloat(cfg.Payout.Overview.HoursRecorded),
			TotalEarnings:     decimal.NewFromFloat(cfg.Payout.Overview.TotalEarnings),
			AvailableToPayout: decimal.NewFromFloat(cfg.Payout.Overview.AvailableToPayout),
			MinimumWithdrawal: minimum,
		},
	}

	var publisher payout.EventPublisher
	if bus != nil {
		publisher = bus
	}
	return payout.NewService(kvrepo.New(store, cfg.Storage.Namespace), publisher, policy, lg)
}
