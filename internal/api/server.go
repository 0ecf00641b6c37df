// Package api provides the HTTP server for the CashMind engine.
// Every operation is a request-scoped, synchronous handler returning plain
// JSON; failures surface as a display string the UI renders directly.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cashmind/engine/internal/app/challenge"
	"github.com/cashmind/engine/internal/app/engagement"
	"github.com/cashmind/engine/internal/app/spending"
	"github.com/cashmind/engine/internal/domain"
	"github.com/cashmind/engine/internal/health"
	"github.com/cashmind/engine/internal/infra/sqlite"
)

// Server is the CashMind HTTP API server.
type Server struct {
	db             *sqlite.DB
	challenges     *challenge.Manager
	badges         *engagement.BadgeService
	levels         *engagement.LevelService
	spender        *spending.Aggregator
	verifier       Verifier
	checker        *health.Checker
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(db *sqlite.DB, challenges *challenge.Manager, badges *engagement.BadgeService,
	levels *engagement.LevelService, spender *spending.Aggregator, verifier Verifier) *Server {
	return &Server{
		db:         db,
		challenges: challenges,
		badges:     badges,
		levels:     levels,
		spender:    spender,
		verifier:   verifier,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// SetHealth attaches a health checker; /health then reports its statuses.
func (s *Server) SetHealth(c *health.Checker) { s.checker = c }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsMiddleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if s.checker == nil {
			writeJSON(w, http.StatusOK, map[string]string{
				"status": "ok",
			})
			return
		}
		status := "ok"
		code := http.StatusOK
		if !s.checker.IsHealthy() {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, map[string]interface{}{
			"status": status,
			"checks": s.checker.Statuses(),
		})
	})

	r.Get("/api/version", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"version": "0.1.0",
		})
	})

	// Authenticated application API
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(s.authenticate)

		// Challenge engine
		r.Get("/templates", s.handleListTemplates)
		r.Get("/challenges", s.handleListChallenges)
		r.Post("/challenges/accept", s.handleAcceptChallenge)
		r.Post("/challenges/{id}/complete", s.handleCompleteChallenge)
		r.Post("/challenges/{id}/cancel", s.handleCancelChallenge)
		r.Get("/badges", s.handleListBadges)
		r.Get("/level", s.handleLevel)

		// Transactions & spending
		r.Get("/transactions", s.handleListTransactions)
		r.Post("/transactions", s.handleRecordTransaction)
		r.Delete("/transactions/{id}", s.handleDeleteTransaction)
		r.Get("/spending/categories", s.handleCategoryTotals)

		// Budgets
		r.Get("/budgets", s.handleBudgetSummaries)
		r.Put("/budgets", s.handleUpsertBudget)
		r.Delete("/budgets/{id}", s.handleDeleteBudget)

		// Savings goals
		r.Get("/goals", s.handleListGoals)
		r.Post("/goals", s.handleCreateGoal)
		r.Post("/goals/{id}/contribute", s.handleContributeGoal)
		r.Delete("/goals/{id}", s.handleDeleteGoal)

		// Simulation & bill splitting
		r.Post("/simulate/projection", s.handleProjection)
		r.Post("/simulate/tradeoff", s.handleTradeOff)
		r.Post("/simulate/timeline", s.handleTimeline)
		r.Post("/split", s.handleSplit)
	})

	// Prometheus metrics endpoint
	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error envelope: {"error": "<display string>"}.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": msg,
	})
}

// writeFault maps a domain error to its HTTP status and renders the display
// string. The taxonomy stays typed internally; only the string leaves.
func writeFault(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), err.Error())
}

// statusFor maps the error taxonomy to HTTP statuses:
// not-authenticated 401, not-found 404, precondition 409, storage 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrTemplateNotFound),
		errors.Is(err, domain.ErrChallengeNotFound),
		errors.Is(err, domain.ErrGoalNotFound),
		errors.Is(err, domain.ErrTransactionNotFound),
		errors.Is(err, domain.ErrBudgetNotFound):
		return http.StatusNotFound
	case domain.IsPrecondition(err):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// corsMiddleware adds CORS headers for the web client.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-User-ID")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
