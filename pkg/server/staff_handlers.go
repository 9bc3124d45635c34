package server

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fadedpez/zeuscoins/pkg/entities"
)

type adjustRequest struct {
	AccountID string `json:"account_id"`
	Delta     int64  `json:"delta"`
	Reason    string `json:"reason"`
	Note      string `json:"note"`
}

// handleAdjust applies a staff balance adjustment
func (s *Server) handleAdjust(w http.ResponseWriter, r *http.Request) {
	var req adjustRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.staff.Adjust(r.Context(), operatorID(r), req.AccountID, req.Delta, entities.LedgerReason(req.Reason), req.Note)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	AdjustmentsTotal.WithLabelValues(req.Reason).Inc()
	direction := "credit"
	if req.Delta < 0 {
		direction = "debit"
	}
	CoinsMoved.WithLabelValues(direction).Add(math.Abs(float64(req.Delta)))
	writeJSON(w, http.StatusOK, result)
}

// handleHostGetUser returns the host view of an account
func (s *Server) handleHostGetUser(w http.ResponseWriter, r *http.Request) {
	view, err := s.staff.GetUser(r.Context(), operatorID(r), chi.URLParam(r, "accountID"))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleHostLedger returns an account's ledger for host review
func (s *Server) handleHostLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := s.staff.LedgerHistory(r.Context(), operatorID(r), chi.URLParam(r, "accountID"), limitParam(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// handleHostSpins returns an account's spin grants for host review
func (s *Server) handleHostSpins(w http.ResponseWriter, r *http.Request) {
	spins, err := s.staff.SpinHistory(r.Context(), operatorID(r), chi.URLParam(r, "accountID"), limitParam(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"spins": spins})
}

// handleHostRedemptions returns an account's redemptions for host review
func (s *Server) handleHostRedemptions(w http.ResponseWriter, r *http.Request) {
	redemptions, err := s.staff.RedemptionHistory(r.Context(), operatorID(r), chi.URLParam(r, "accountID"), limitParam(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"redemptions": redemptions})
}
