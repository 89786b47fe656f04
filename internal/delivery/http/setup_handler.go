package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/coronasco/cryptoscalpingfvg/internal/domain"
)

const defaultSetupLimit = 50

type SetupHandler struct {
	setupRepo domain.SetupRepository
}

func NewSetupHandler(setupRepo domain.SetupRepository) *SetupHandler {
	return &SetupHandler{setupRepo: setupRepo}
}

// HandleGetSetups serves GET /api/setups. With ?symbol= it returns that
// symbol's setups, otherwise the highest-scored setups across all symbols.
func (h *SetupHandler) HandleGetSetups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	limit := defaultSetupLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "Invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}

	var (
		setups []domain.Setup
		err    error
	)
	if symbol := r.URL.Query().Get("symbol"); symbol != "" {
		setups, err = h.setupRepo.GetSetups(r.Context(), symbol, limit)
	} else {
		setups, err = h.setupRepo.GetTopSetups(r.Context(), limit)
	}
	if err != nil {
		http.Error(w, "Failed to load setups", http.StatusInternalServerError)
		return
	}
	if setups == nil {
		setups = []domain.Setup{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(setups)
}
