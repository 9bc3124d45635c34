package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fadedpez/zeuscoins/internal/types"
)

func limitParam(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return limit
}

// handleProfile returns the caller's balance, tier and spin eligibility
func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	view, err := s.coins.GetBalanceAndTier(r.Context(), accountID(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	eligibility, err := s.spin.CheckEligibility(r.Context(), accountID(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"profile":    view,
		"daily_spin": eligibility,
	})
}

// handleLedger returns the caller's recent ledger entries
func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := s.coins.GetLedger(r.Context(), accountID(r), limitParam(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}

// handleTiers returns the tier ladder
func (s *Server) handleTiers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"tiers": s.tiers.Table()})
}

// handleSpin runs the caller's daily spin
func (s *Server) handleSpin(w http.ResponseWriter, r *http.Request) {
	result, err := s.spin.Spin(r.Context(), accountID(r))
	if err != nil {
		if types.IsCoinError(err, types.ErrCooldownActive) {
			SpinsRejectedTotal.Inc()
		}
		s.writeServiceError(w, err)
		return
	}

	SpinsTotal.WithLabelValues(result.Label).Inc()
	if result.Value > 0 {
		CoinsMoved.WithLabelValues("credit").Add(float64(result.Value))
	}
	writeJSON(w, http.StatusOK, result)
}

// handleSpinEligibility reports whether the caller may spin right now
func (s *Server) handleSpinEligibility(w http.ResponseWriter, r *http.Request) {
	eligibility, err := s.spin.CheckEligibility(r.Context(), accountID(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eligibility)
}

// handleSpinHistory returns the caller's recent spins
func (s *Server) handleSpinHistory(w http.ResponseWriter, r *http.Request) {
	spins, err := s.spin.History(r.Context(), accountID(r), limitParam(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"spins": spins})
}

// handleCatalog returns the redemption catalog
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"rewards": s.redeem.Catalog()})
}

type redeemRequest struct {
	Reward string `json:"reward"`
}

// handleRedeem purchases a catalog reward for the caller
func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.redeem.Redeem(r.Context(), accountID(r), req.Reward)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	RedemptionsTotal.WithLabelValues(req.Reward).Inc()
	CoinsMoved.WithLabelValues("debit").Add(float64(result.Redemption.CoinsSpent))
	writeJSON(w, http.StatusOK, result)
}

// handleRedemptionHistory returns the caller's recent redemptions
func (s *Server) handleRedemptionHistory(w http.ResponseWriter, r *http.Request) {
	redemptions, err := s.redeem.History(r.Context(), accountID(r), limitParam(r))
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"redemptions": redemptions})
}
