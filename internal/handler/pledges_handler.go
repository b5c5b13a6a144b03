package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/pledges/backend/internal/model"
)

// recentPledgeLimit caps the public listing.
const recentPledgeLimit = 50

// PledgeLister is the slim repository interface the listing endpoint needs.
type PledgeLister interface {
	ListRecent(ctx context.Context, limit int) ([]*model.Pledge, error)
}

// PledgesHandler serves the public recent-pledges listing.
type PledgesHandler struct {
	lister PledgeLister // nil = stateless deployment, always empty
}

// NewPledgesHandler creates a PledgesHandler. lister can be nil.
func NewPledgesHandler(lister PledgeLister) *PledgesHandler {
	return &PledgesHandler{lister: lister}
}

// List handles GET /api/pledges.
func (h *PledgesHandler) List(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var pledges []*model.Pledge
	if h.lister != nil {
		list, err := h.lister.ListRecent(r.Context(), recentPledgeLimit)
		if err != nil {
			slog.Error("pledge list failed", "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "failed to load pledges"})
			return
		}
		pledges = list
	}
	if pledges == nil {
		pledges = []*model.Pledge{}
	}

	_ = json.NewEncoder(w).Encode(map[string]any{"pledges": pledges})
}
