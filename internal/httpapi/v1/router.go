// Package v1 wires the HTTP surface of the finance ledger.
// It keeps handlers thin, delegating business rules to the service layer.
package v1

import (
	"log/slog"
	"net/http"
	"time"

	chi "github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tinoosan/finledger/internal/cache"
	"github.com/tinoosan/finledger/internal/service/account"
	"github.com/tinoosan/finledger/internal/service/analytics"
	"github.com/tinoosan/finledger/internal/service/budget"
	"github.com/tinoosan/finledger/internal/service/category"
	"github.com/tinoosan/finledger/internal/service/currency"
	"github.com/tinoosan/finledger/internal/service/tag"
	"github.com/tinoosan/finledger/internal/service/transaction"
	"github.com/tinoosan/finledger/internal/service/user"
)

// Options carries the optional collaborators of a Server.
type Options struct {
	Logger *slog.Logger
	// Cache holds analytics results; nil disables caching.
	Cache    cache.Store
	CacheTTL time.Duration
	// Auth enables HS256 bearer tokens when Secret is set.
	Auth AuthConfig
}

// Server wires handlers and middleware using Chi.
// It composes the store through one service per entity.
type Server struct {
	store        Store
	users        user.Service
	accounts     account.Service
	categories   category.Service
	tags         tag.Service
	transactions transaction.Service
	currencies   currency.Service
	budgets      budget.Service
	analytics    analytics.Service
	cache        cache.Store
	cacheTTL     time.Duration
	auth         AuthConfig
	idem         *idemStore
	log          *slog.Logger
	rt           *chi.Mux
}

// New constructs the HTTP server with routes and middleware.
func New(store Store, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(requestLogger(logger))
	r.Use(recoverer(logger))
	r.Use(metricsMiddleware)
	if mw := authJWT(opts.Auth); mw != nil {
		r.Use(mw)
	}

	s := &Server{
		store:        store,
		users:        user.New(store, store),
		accounts:     account.New(store, store),
		categories:   category.New(store, store),
		tags:         tag.New(store, store),
		transactions: transaction.New(store, store),
		currencies:   currency.New(store, store),
		budgets:      budget.New(store, store),
		analytics:    analytics.New(store),
		cache:        opts.Cache,
		cacheTTL:     opts.CacheTTL,
		auth:         opts.Auth,
		idem:         newIdemStore(),
		log:          logger,
		rt:           r,
	}
	s.routes()
	return s
}

// Handler exposes the configured http.Handler.
func (s *Server) Handler() http.Handler { return s.rt }

// routes declares the public HTTP API endpoints.
func (s *Server) routes() {
	s.rt.Get("/healthz", s.healthz)
	s.rt.Get("/readyz", s.readyz)
	s.rt.Method(http.MethodGet, "/metrics", metricsHandler())

	s.rt.Route("/v1", func(r chi.Router) {
		r.Post("/users", s.postUser)
		r.Get("/users/{id}", s.getUser)
		r.Delete("/users/{id}", s.deleteUser)
		r.Post("/sessions", s.postSession)

		r.Get("/accounts", s.listAccounts)
		r.Post("/accounts", s.postAccount)
		r.Get("/accounts/{id}", s.getAccount)
		r.Patch("/accounts/{id}", s.patchAccount)
		r.Delete("/accounts/{id}", s.deleteAccount)

		r.Get("/categories", s.listCategories)
		r.Post("/categories", s.postCategory)
		r.Get("/categories/{id}", s.getCategory)
		r.Patch("/categories/{id}", s.patchCategory)
		r.Delete("/categories/{id}", s.deleteCategory)

		r.Get("/tags", s.listTags)
		r.Post("/tags", s.postTag)
		r.Get("/tags/{id}", s.getTag)
		r.Patch("/tags/{id}", s.patchTag)
		r.Delete("/tags/{id}", s.deleteTag)

		r.Get("/transactions", s.listTransactions)
		r.Post("/transactions", s.postTransaction)
		r.Get("/transactions/{id}", s.getTransaction)
		r.Patch("/transactions/{id}", s.patchTransaction)
		r.Delete("/transactions/{id}", s.deleteTransaction)

		r.Get("/currencies", s.listCurrencies)
		r.Post("/currencies", s.postCurrency)
		r.Get("/currencies/{id}", s.getCurrency)
		r.Patch("/currencies/{id}", s.patchCurrency)
		r.Delete("/currencies/{id}", s.deleteCurrency)

		r.Get("/exchange-rates", s.listRates)
		r.Post("/exchange-rates", s.postRate)
		r.Get("/exchange-rates/convert", s.convert)
		r.Get("/exchange-rates/{id}", s.getRate)
		r.Patch("/exchange-rates/{id}", s.patchRate)
		r.Delete("/exchange-rates/{id}", s.deleteRate)

		r.Get("/budgets", s.listBudgets)
		r.Post("/budgets", s.postBudget)
		r.Get("/budgets/{id}", s.getBudget)
		r.Patch("/budgets/{id}", s.patchBudget)
		r.Delete("/budgets/{id}", s.deleteBudget)
		r.Get("/budgets/{id}/usage", s.budgetUsage)

		r.Get("/analytics/daily-series", s.dailySeries)
		r.Get("/analytics/weekly-summary", s.weeklySummary)
		r.Get("/analytics/monthly-summary", s.monthlySummary)
	})
}
