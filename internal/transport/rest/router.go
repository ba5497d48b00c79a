package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/Siddharth-Keer/Koe-Dashboard/internal"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/auth"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/monitor"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/payout"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/transport"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/transport/middleware"
	"github.com/Siddharth-Keer/Koe-Dashboard/internal/transport/swagger"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
)

type Handlers struct {
	Auth   *auth.Handler
	Payout *payout.Handler
	Health *HealthHandler
}

// Options carries the optional surfaces around the API.
type Options struct {
	AllowedOrigins []string
	// OpenAPI, when set, is served at /openapi.yml and enforced on /api/v1.
	OpenAPI     []byte
	MetricsPath string
	Metrics     http.Handler
	HTTPMetrics *monitor.HTTPMetrics
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options, logger *slog.Logger) error {
	var contract func(http.Handler) http.Handler
	if len(opts.OpenAPI) > 0 {
		doc, err := middleware.LoadOpenAPI(context.Background(), opts.OpenAPI)
		if err != nil {
			return err
		}
		contract, err = middleware.OpenAPIValidator(doc)
		if err != nil {
			return err
		}
	}

	// Registered before Use so the global middleware is not chained into it twice.
	base := transport.NewBaseHandler(logger)
	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		base.WriteAppError(w, internal.ErrRouteNotFound)
	})

	// Apply global middleware
	router.Use(middleware.CORS(opts.AllowedOrigins))
	router.Use(chiMiddleware.RequestID)
	router.Use(middleware.RequestID)
	router.Use(middleware.RecoveryMiddleware(logger))
	router.Use(middleware.LoggingMiddleware(logger))
	if opts.HTTPMetrics != nil {
		router.Use(opts.HTTPMetrics.Middleware)
	}

	if len(opts.OpenAPI) > 0 {
		router.Get(swagger.SpecPath, swagger.SpecHandler(opts.OpenAPI))
		router.Handle("/swagger/*", swagger.Handler())
	}
	if opts.Metrics != nil && opts.MetricsPath != "" {
		router.Handle(opts.MetricsPath, opts.Metrics)
	}

	// Mount API under /api/v1 to match the OpenAPI paths
	router.Route("/api/v1", func(r chi.Router) {
		if contract != nil {
			r.Use(contract)
		}

		r.Get("/health", h.Health.healthCheckHandler)
		r.Get("/ping", h.Health.pingHandler)

		r.Route("/auth", func(sr chi.Router) {
			sr.Post("/login", h.Auth.Login)
			sr.Post("/admin/login", h.Auth.AdminLogin)
			sr.With(h.Auth.AuthMiddleware).Post("/logout", h.Auth.Logout)
		})

		r.Get("/payment-methods", h.Payout.PaymentMethods)

		// User dashboard
		r.Group(func(ur chi.Router) {
			ur.Use(h.Auth.AuthMiddleware)
			ur.Use(middleware.RequireRole(string(auth.RoleUser)))

			ur.Get("/me/overview", h.Payout.Overview)
			ur.Post("/payouts", h.Payout.Submit)
		})

		// Admin dashboard
		r.Route("/admin", func(ar chi.Router) {
			ar.Use(h.Auth.AuthMiddleware)
			ar.Use(middleware.RequireRole(string(auth.RoleAdmin)))

			ar.Get("/payouts", h.Payout.ListPending)
			ar.Post("/payouts/{id}/approve", h.Payout.Approve)
			ar.Post("/payouts/{id}/reject", h.Payout.Reject)
			ar.Get("/history", h.Payout.History)
			ar.Get("/stats", h.Payout.Stats)
			ar.Get("/profile", h.Auth.Profile)
			ar.Post("/profile/password", h.Auth.ChangePassword)
		})
	})

	return nil
}
