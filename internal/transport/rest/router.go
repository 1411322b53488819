package rest

import (
	"log/slog"
	"net/http"

	"github.com/frahmantamala/couture-bookkeeping/internal/auth"
	"github.com/frahmantamala/couture-bookkeeping/internal/core/metrics"
	"github.com/frahmantamala/couture-bookkeeping/internal/expense"
	"github.com/frahmantamala/couture-bookkeeping/internal/procurement"
	"github.com/frahmantamala/couture-bookkeeping/internal/saree"
	"github.com/frahmantamala/couture-bookkeeping/internal/transport/middleware"
	"github.com/frahmantamala/couture-bookkeeping/internal/transport/swagger"
	"github.com/frahmantamala/couture-bookkeeping/internal/user"
	"github.com/go-chi/chi"
	chiMiddleware "github.com/go-chi/chi/middleware"
	"github.com/jmoiron/sqlx"
)

type Handlers struct {
	Auth        *auth.Handler
	RBAC        *auth.RBACAuthorization
	User        *user.Handler
	Saree       *saree.Handler
	Procurement *procurement.Handler
	Expense     *expense.Handler
}

type Options struct {
	DB             *sqlx.DB
	Logger         *slog.Logger
	AllowedOrigins []string
	// LoginLimiter throttles POST /token. Nil disables throttling.
	LoginLimiter   *middleware.RateLimiter
	MetricsEnabled bool
	MetricsPath    string
}

func RegisterAllRoutes(router *chi.Mux, h Handlers, opts Options) {
	healthHandler := NewHealthHandler(opts.DB)

	metricsPath := opts.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	router.Use(chiMiddleware.RealIP)
	router.Use(middleware.RequestID)
	router.Use(middleware.NewCORS(opts.AllowedOrigins).Handler)
	router.Use(middleware.LoggingMiddleware(opts.Logger))
	router.Use(middleware.RecoveryMiddleware(opts.Logger))
	if opts.MetricsEnabled {
		router.Use(metrics.InstrumentHandler(metricsPath))
		router.Method(http.MethodGet, metricsPath, metrics.Handler())
	}

	router.Get("/", healthHandler.welcomeHandler)
	router.Get("/ping", healthHandler.pingHandler)
	router.Get("/health", healthHandler.healthCheckHandler)

	router.Get(swagger.SpecPath, swagger.SpecHandler)
	router.Handle("/swagger/*", swagger.Handler())

	router.Group(func(r chi.Router) {
		if opts.LoginLimiter != nil {
			r.Use(opts.LoginLimiter.Handler)
		}
		r.Post("/token", h.Auth.Login)
	})
	router.Post("/users/register", h.User.Register)

	router.Get("/sarees", h.Saree.ListSarees)
	router.Get("/sarees/{id}", h.Saree.GetSaree)

	// Protected routes that require a bearer token
	router.Group(func(pr chi.Router) {
		pr.Use(h.Auth.AuthMiddleware)

		pr.Get("/users/users/me", h.User.GetCurrentUser)
		pr.Get("/users/me", h.User.GetCurrentUser)

		pr.Post("/procurements", h.Procurement.SubmitProcurement)
		pr.Get("/procurements", h.Procurement.ListProcurements)
		pr.Post("/procurements/legacy", h.Procurement.SubmitLegacyProcurement)

		pr.Post("/expenses", h.Expense.SubmitExpense)

		// Reviewer routes: manager, partner or admin
		pr.Group(func(mr chi.Router) {
			mr.Use(h.RBAC.RequireManager())

			mr.Get("/procurements/pending", h.Procurement.ListPending)
			mr.Post("/procurements/{id}/approve", h.Procurement.ApproveProcurement)
			mr.Post("/procurements/{id}/reject", h.Procurement.RejectProcurement)

			mr.Get("/expenses", h.Expense.ListExpenses)
			mr.Patch("/expenses/{id}/status", h.Expense.UpdateExpenseStatus)
		})
	})
}
