package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pledges/backend/internal/model"
	"github.com/pledges/backend/internal/repository"
	pkgstripe "github.com/pledges/backend/pkg/stripe"
)

// PledgeRecorder is the slim repository interface CheckoutService needs to
// record completed pledges from webhook events.
type PledgeRecorder interface {
	Create(ctx context.Context, p *model.Pledge) error
}

// CheckoutService turns pledge requests into Stripe Checkout Sessions and
// processes the webhook events that report their completion.
type CheckoutService interface {
	// CreateCheckout validates the request and returns the hosted checkout URL.
	CreateCheckout(ctx context.Context, req model.PledgeRequest) (string, error)
	// ProcessWebhook verifies the signature and handles the event.
	// Returns stripe.ErrNotConfigured when no webhook secret is set.
	ProcessWebhook(ctx context.Context, payload []byte, sigHeader string) error
}

// CheckoutServiceImpl implements CheckoutService.
type CheckoutServiceImpl struct {
	client     pkgstripe.Client
	recorder   PledgeRecorder // optional, nil = log only
	successURL string
	cancelURL  string
}

// NewCheckoutService creates a CheckoutServiceImpl. recorder can be nil to
// run stateless.
func NewCheckoutService(client pkgstripe.Client, recorder PledgeRecorder, successURL, cancelURL string) *CheckoutServiceImpl {
	return &CheckoutServiceImpl{
		client:     client,
		recorder:   recorder,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// CreateCheckout computes the session parameters and creates the session.
func (s *CheckoutServiceImpl) CreateCheckout(ctx context.Context, req model.PledgeRequest) (string, error) {
	params, err := BuildSessionParams(req)
	if err != nil {
		return "", err
	}

	return s.client.CreateCheckoutSession(ctx, pkgstripe.CheckoutParams{
		Mode:          params.Mode,
		Currency:      params.Currency,
		UnitAmount:    params.UnitAmount,
		Interval:      params.Interval,
		ProductName:   params.ProductName,
		CustomerEmail: params.DonorEmail,
		SuccessURL:    s.successURL,
		CancelURL:     s.cancelURL,
		Metadata:      params.Metadata.ToMap(),
	})
}

// ProcessWebhook verifies the signature and dispatches by event type.
func (s *CheckoutServiceImpl) ProcessWebhook(ctx context.Context, payload []byte, sigHeader string) error {
	if err := s.client.VerifyWebhookSignature(payload, sigHeader); err != nil {
		if errors.Is(err, pkgstripe.ErrNotConfigured) {
			return err
		}
		return fmt.Errorf("webhook signature: %w", err)
	}
	event, err := s.client.ParseWebhookEvent(payload)
	if err != nil {
		return fmt.Errorf("webhook payload: %w", err)
	}
	switch event.Type {
	case "checkout.session.completed":
		return s.handleSessionCompleted(ctx, event)
	case "invoice.paid":
		return s.handleInvoicePaid(event)
	}
	return nil
}

// handleSessionCompleted records the pledge attached to a completed session.
// Covers both one-time payments and subscription initiations.
func (s *CheckoutServiceImpl) handleSessionCompleted(ctx context.Context, event pkgstripe.WebhookEvent) error {
	obj := event.Data.Object
	meta := model.PledgeMetadataFromMap(obj.Metadata)

	slog.Info("pledge completed",
		"donor_name", meta.DonorName,
		"units", meta.Units,
		"frequency", meta.Frequency,
		"amount", obj.AmountTotal,
		"currency", obj.Currency,
	)

	if s.recorder == nil {
		return nil
	}

	p := &model.Pledge{
		DonorName:            meta.DonorName,
		Units:                meta.Units,
		Frequency:            meta.Frequency,
		Duration:             meta.Duration,
		Amount:               obj.AmountTotal,
		Currency:             obj.Currency,
		IncludesZakat:        meta.IncludesZakat,
		ZakatPercentage:      meta.ZakatPercentage,
		ZakatAmount:          meta.ZakatAmount,
		StripePaymentID:      obj.PaymentIntent,
		StripeSubscriptionID: obj.Subscription,
	}
	if err := s.recorder.Create(ctx, p); err != nil && !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	return nil
}

// handleInvoicePaid logs a recurring pledge payment. The invoice carries no
// session metadata, so nothing is recorded beyond the log line.
func (s *CheckoutServiceImpl) handleInvoicePaid(event pkgstripe.WebhookEvent) error {
	obj := event.Data.Object
	slog.Info("recurring pledge payment received",
		"subscription", obj.Subscription,
		"amount", obj.AmountTotal,
		"currency", obj.Currency,
	)
	return nil
}
