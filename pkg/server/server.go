// Package server exposes the coin economy over HTTP. Authentication is the
// upstream gateway's job: requests arrive with a verified X-Account-ID
// header for player routes and an X-Operator-ID header for host routes.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fadedpez/zeuscoins/internal/logging"
	"github.com/fadedpez/zeuscoins/internal/types"
	"github.com/fadedpez/zeuscoins/pkg/services/coins"
	"github.com/fadedpez/zeuscoins/pkg/services/redeem"
	"github.com/fadedpez/zeuscoins/pkg/services/spin"
	"github.com/fadedpez/zeuscoins/pkg/services/staff"
	"github.com/fadedpez/zeuscoins/pkg/services/tiers"
)

const (
	accountHeader  = "X-Account-ID"
	operatorHeader = "X-Operator-ID"
)

// Server is the Zeus Coins HTTP API server.
type Server struct {
	coins          *coins.Service
	spin           *spin.Service
	redeem         *redeem.Service
	staff          *staff.Service
	tiers          *tiers.Classifier
	logger         *logging.Logger
	metricsEnabled bool
}

// NewServer creates a new API server.
func NewServer(coinService *coins.Service, spinService *spin.Service, redeemService *redeem.Service, staffService *staff.Service, classifier *tiers.Classifier, logger *logging.Logger) *Server {
	if logger == nil {
		logger = logging.Default
	}
	return &Server{
		coins:  coinService,
		spin:   spinService,
		redeem: redeemService,
		staff:  staffService,
		tiers:  classifier,
		logger: logger,
	}
}

// EnableMetrics enables the /metrics Prometheus endpoint.
func (s *Server) EnableMetrics() { s.metricsEnabled = true }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(s.requireAccount)

			r.Get("/profile", s.handleProfile)
			r.Get("/ledger", s.handleLedger)
			r.Get("/tiers", s.handleTiers)

			r.Get("/bonus/daily", s.handleSpinEligibility)
			r.Post("/bonus/daily", s.handleSpin)
			r.Get("/bonus/history", s.handleSpinHistory)

			r.Get("/rewards", s.handleCatalog)
			r.Post("/rewards/redeem", s.handleRedeem)
			r.Get("/rewards/history", s.handleRedemptionHistory)
		})

		r.Route("/host", func(r chi.Router) {
			r.Use(s.requireOperator)

			r.Post("/adjust", s.handleAdjust)
			r.Get("/users/{accountID}", s.handleHostGetUser)
			r.Get("/users/{accountID}/ledger", s.handleHostLedger)
			r.Get("/users/{accountID}/spins", s.handleHostSpins)
			r.Get("/users/{accountID}/redemptions", s.handleHostRedemptions)
		})
	})

	if s.metricsEnabled {
		r.Handle("/metrics", promhttp.Handler())
	}

	return r
}

// requireAccount rejects player requests that carry no account identity.
func (s *Server) requireAccount(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(accountHeader) == "" {
			writeError(w, http.StatusUnauthorized, "missing "+accountHeader+" header")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requireOperator rejects host requests that carry no operator identity.
// Whether the operator actually holds host privilege is the staff
// service's call, re-checked on every request.
func (s *Server) requireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(operatorHeader) == "" {
			writeError(w, http.StatusUnauthorized, "missing "+operatorHeader+" header")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func accountID(r *http.Request) string  { return r.Header.Get(accountHeader) }
func operatorID(r *http.Request) string { return r.Header.Get(operatorHeader) }

// writeServiceError maps a service error onto an HTTP status. Business
// failures carry their code so clients can branch without parsing text.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var coinErr *types.CoinError
	if !errors.As(err, &coinErr) {
		s.logger.Error("unclassified error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	status := http.StatusInternalServerError
	switch coinErr.Code {
	case types.ErrCooldownActive:
		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error": map[string]interface{}{
				"code":             string(coinErr.Code),
				"message":          coinErr.Message,
				"cooldown_ends_at": coinErr.NextEligibleAt.UTC().Format(time.RFC3339),
			},
		})
		return
	case types.ErrInsufficientFunds, types.ErrInvalidArgument:
		status = http.StatusBadRequest
	case types.ErrUnknownReward, types.ErrAccountNotFound:
		status = http.StatusNotFound
	case types.ErrPermissionDenied:
		status = http.StatusForbidden
	case types.ErrConcurrentModification, types.ErrStoreUnavailable:
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    string(coinErr.Code),
			"message": coinErr.Message,
		},
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"message": msg,
		},
	})
}
