package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/pledges/backend/internal/model"
	"github.com/pledges/backend/internal/service"
	pkgstripe "github.com/pledges/backend/pkg/stripe"
)

// CheckoutHandler serves the checkout-session and webhook endpoints.
type CheckoutHandler struct {
	svc service.CheckoutService
}

// NewCheckoutHandler creates a CheckoutHandler.
func NewCheckoutHandler(svc service.CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{svc: svc}
}

// CreateSession handles POST /create-checkout-session.
// Any validation, computation, or processor failure is a 400 with the
// error message; success is a 200 with the hosted checkout URL.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var req model.PledgeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "Invalid request body."})
		return
	}

	url, err := h.svc.CreateCheckout(r.Context(), req)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]string{"url": url})
}

// Webhook handles POST /webhook. The raw body is required for signature
// verification. An unset webhook secret is inert: 200, nothing processed.
func (h *CheckoutHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("Failed to read request body."))
		return
	}

	sigHeader := r.Header.Get("Stripe-Signature")
	if err := h.svc.ProcessWebhook(r.Context(), payload, sigHeader); err != nil {
		if errors.Is(err, pkgstripe.ErrNotConfigured) {
			_, _ = w.Write([]byte("Webhook endpoint not yet configured."))
			return
		}
		slog.Warn("webhook rejected", "error", err)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("Invalid signature or payload: " + err.Error()))
		return
	}

	w.WriteHeader(http.StatusOK)
}
