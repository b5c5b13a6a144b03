package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pledges/backend/internal/service"
)

// UnitsCounter is the slim repository interface the progress endpoint needs.
type UnitsCounter interface {
	PledgedUnits(ctx context.Context) (int, error)
}

// ProgressHandler reports campaign progress against the fixed unit total.
type ProgressHandler struct {
	counter UnitsCounter // nil = stateless deployment, always 0
}

// NewProgressHandler creates a ProgressHandler. counter can be nil.
func NewProgressHandler(counter UnitsCounter) *ProgressHandler {
	return &ProgressHandler{counter: counter}
}

type progressResponse struct {
	TotalUnits   int `json:"total_units"`
	PledgedUnits int `json:"pledged_units"`
}

// Progress handles GET /api/progress.
func (h *ProgressHandler) Progress(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	pledged := 0
	if h.counter != nil {
		n, err := h.counter.PledgedUnits(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "failed to load progress"})
			return
		}
		pledged = n
	}

	_ = json.NewEncoder(w).Encode(progressResponse{
		TotalUnits:   service.TotalUnits,
		PledgedUnits: pledged,
	})
}
