package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

type PairHandler struct {
	pairRepo  domain.PairRepository
	setupRepo domain.SetupRepository
}

func NewPairHandler(pairRepo domain.PairRepository, setupRepo domain.SetupRepository) *PairHandler {
	return &PairHandler{pairRepo: pairRepo, setupRepo: setupRepo}
}

// HandleGetPairs serves GET /api/pairs: every enabled pair with its best
// current setup folded in, for the watchlist screen.
func (h *PairHandler) HandleGetPairs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pairs, err := h.pairRepo.GetEnabledPairs(r.Context())
	if err != nil {
		http.Error(w, "Failed to load pairs", http.StatusInternalServerError)
		return
	}

	now := time.Now().UnixMilli()
	summaries := make([]domain.PairSummary, 0, len(pairs))
	for _, pair := range pairs {
		summary := domain.PairSummary{
			Symbol:        pair.Symbol,
			DisplaySymbol: pair.DisplaySymbol,
			Direction:     domain.Neutral,
			Status:        domain.StatusWaiting,
		}

		setups, err := h.setupRepo.GetSetups(r.Context(), pair.Symbol, 1)
		if err == nil && len(setups) > 0 {
			best := setups[0]
			summary.Timeframe = best.Timeframe
			summary.Direction = best.Direction
			summary.Status = best.Status
			summary.Score = best.Score
			summary.Entry = &best.EntryPrice
			summary.SL = &best.StopLoss
			summary.TP1 = &best.TP1
			summary.TP2 = best.TP2
			summary.AgeMinutes = int((now - best.CreatedAt) / 60_000)
		}

		summaries = append(summaries, summary)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(summaries)
}
