package service

import (
	"context"
	"errors"
	"testing"

	"github.com/pledges/backend/internal/model"
	"github.com/pledges/backend/internal/repository"
	pkgstripe "github.com/pledges/backend/pkg/stripe"
)

// ---------------------------------------------------------------------------
// Mock StripeClient
// ---------------------------------------------------------------------------

type mockStripeClient struct {
	createCheckoutSessionFunc  func(ctx context.Context, params pkgstripe.CheckoutParams) (string, error)
	verifyWebhookSignatureFunc func(payload []byte, sigHeader string) error
	parseWebhookEventFunc      func(payload []byte) (pkgstripe.WebhookEvent, error)
}

func (m *mockStripeClient) CreateCheckoutSession(ctx context.Context, params pkgstripe.CheckoutParams) (string, error) {
	if m.createCheckoutSessionFunc != nil {
		return m.createCheckoutSessionFunc(ctx, params)
	}
	return "https://checkout.stripe.com/test", nil
}
func (m *mockStripeClient) VerifyWebhookSignature(payload []byte, sigHeader string) error {
	if m.verifyWebhookSignatureFunc != nil {
		return m.verifyWebhookSignatureFunc(payload, sigHeader)
	}
	return nil
}
func (m *mockStripeClient) ParseWebhookEvent(payload []byte) (pkgstripe.WebhookEvent, error) {
	if m.parseWebhookEventFunc != nil {
		return m.parseWebhookEventFunc(payload)
	}
	return pkgstripe.WebhookEvent{}, nil
}

// ---------------------------------------------------------------------------
// Mock PledgeRecorder
// ---------------------------------------------------------------------------

type mockPledgeRecorder struct {
	createFunc func(ctx context.Context, p *model.Pledge) error
}

func (m *mockPledgeRecorder) Create(ctx context.Context, p *model.Pledge) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, p)
	}
	return nil
}

// ---------------------------------------------------------------------------
// CreateCheckout
// ---------------------------------------------------------------------------

func TestCheckoutService_CreateCheckout_PassesComputedParams(t *testing.T) {
	var captured pkgstripe.CheckoutParams
	client := &mockStripeClient{
		createCheckoutSessionFunc: func(_ context.Context, params pkgstripe.CheckoutParams) (string, error) {
			captured = params
			return "https://checkout.stripe.com/c/sess_123", nil
		},
	}
	svc := NewCheckoutService(client, nil, "http://localhost:4242/thank-you", "http://localhost:4242/error")

	url, err := svc.CreateCheckout(context.Background(), model.PledgeRequest{
		Units: 2, Currency: "usd", Frequency: "once", Duration: 3,
		DonorName: "Bilal", DonorEmail: "bilal@example.com",
		IncludesZakat: true, ZakatPercentage: 10,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if url != "https://checkout.stripe.com/c/sess_123" {
		t.Errorf("unexpected url: %q", url)
	}
	if captured.Mode != "payment" {
		t.Errorf("expected mode=payment, got %q", captured.Mode)
	}
	if captured.UnitAmount != 600000 {
		t.Errorf("expected unit_amount=600000, got %d", captured.UnitAmount)
	}
	if captured.CustomerEmail != "bilal@example.com" {
		t.Errorf("expected customer email, got %q", captured.CustomerEmail)
	}
	if captured.SuccessURL != "http://localhost:4242/thank-you" {
		t.Errorf("unexpected success url: %q", captured.SuccessURL)
	}
	if captured.Metadata["donor_name"] != "Bilal" {
		t.Errorf("expected metadata donor_name=Bilal, got %q", captured.Metadata["donor_name"])
	}
	if captured.Metadata["zakat_amount"] != "600" {
		t.Errorf("expected metadata zakat_amount=600, got %q", captured.Metadata["zakat_amount"])
	}
}

func TestCheckoutService_CreateCheckout_RecurringParams(t *testing.T) {
	var captured pkgstripe.CheckoutParams
	client := &mockStripeClient{
		createCheckoutSessionFunc: func(_ context.Context, params pkgstripe.CheckoutParams) (string, error) {
			captured = params
			return "https://checkout.stripe.com/c/sess_456", nil
		},
	}
	svc := NewCheckoutService(client, nil, "s", "c")

	if _, err := svc.CreateCheckout(context.Background(), model.PledgeRequest{
		Units: 1, Frequency: "weekly", Duration: 10,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if captured.Mode != "subscription" || captured.Interval != "week" {
		t.Errorf("expected subscription/week, got %s/%s", captured.Mode, captured.Interval)
	}
	if captured.CustomerEmail != "" {
		t.Errorf("expected no customer email, got %q", captured.CustomerEmail)
	}
}

func TestCheckoutService_CreateCheckout_ValidationStopsBeforeStripe(t *testing.T) {
	called := false
	client := &mockStripeClient{
		createCheckoutSessionFunc: func(_ context.Context, _ pkgstripe.CheckoutParams) (string, error) {
			called = true
			return "", nil
		},
	}
	svc := NewCheckoutService(client, nil, "s", "c")

	_, err := svc.CreateCheckout(context.Background(), model.PledgeRequest{Units: 81})
	if !errors.Is(err, ErrUnitsOutOfRange) {
		t.Errorf("expected ErrUnitsOutOfRange, got %v", err)
	}
	if called {
		t.Error("stripe client should not be called on validation failure")
	}
}

func TestCheckoutService_CreateCheckout_StripeErrorSurfaces(t *testing.T) {
	client := &mockStripeClient{
		createCheckoutSessionFunc: func(_ context.Context, _ pkgstripe.CheckoutParams) (string, error) {
			return "", errors.New("stripe checkout error: rate limited")
		},
	}
	svc := NewCheckoutService(client, nil, "s", "c")

	_, err := svc.CreateCheckout(context.Background(), model.PledgeRequest{Units: 1})
	if err == nil {
		t.Fatal("expected error from stripe client")
	}
}

// ---------------------------------------------------------------------------
// ProcessWebhook
// ---------------------------------------------------------------------------

func TestCheckoutService_ProcessWebhook_NotConfiguredPassthrough(t *testing.T) {
	client := &mockStripeClient{
		verifyWebhookSignatureFunc: func(_ []byte, _ string) error {
			return pkgstripe.ErrNotConfigured
		},
	}
	svc := NewCheckoutService(client, nil, "s", "c")

	err := svc.ProcessWebhook(context.Background(), []byte("{}"), "t=1,v1=x")
	if !errors.Is(err, pkgstripe.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestCheckoutService_ProcessWebhook_InvalidSignature(t *testing.T) {
	client := &mockStripeClient{
		verifyWebhookSignatureFunc: func(_ []byte, _ string) error {
			return errors.New("stripe: signature verification failed")
		},
	}
	svc := NewCheckoutService(client, nil, "s", "c")

	if err := svc.ProcessWebhook(context.Background(), []byte("{}"), "bad"); err == nil {
		t.Error("expected error for invalid signature")
	}
}

func sessionCompletedEvent() pkgstripe.WebhookEvent {
	e := pkgstripe.WebhookEvent{Type: "checkout.session.completed", ID: "evt_1"}
	e.Data.Object = pkgstripe.WebhookEventObject{
		ID:            "cs_test_1",
		AmountTotal:   600000,
		Currency:      "usd",
		PaymentIntent: "pi_123",
		Metadata: map[string]string{
			"units":            "2",
			"donor_name":       "Bilal",
			"frequency":        "once",
			"duration":         "3",
			"includes_zakat":   "true",
			"zakat_percentage": "10",
			"zakat_amount":     "600",
		},
	}
	return e
}

func TestCheckoutService_ProcessWebhook_SessionCompletedRecordsPledge(t *testing.T) {
	client := &mockStripeClient{
		parseWebhookEventFunc: func(_ []byte) (pkgstripe.WebhookEvent, error) {
			return sessionCompletedEvent(), nil
		},
	}
	var recorded *model.Pledge
	recorder := &mockPledgeRecorder{
		createFunc: func(_ context.Context, p *model.Pledge) error {
			recorded = p
			return nil
		},
	}
	svc := NewCheckoutService(client, recorder, "s", "c")

	if err := svc.ProcessWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if recorded == nil {
		t.Fatal("expected a pledge to be recorded")
	}
	if recorded.DonorName != "Bilal" || recorded.Units != 2 {
		t.Errorf("unexpected pledge: %+v", recorded)
	}
	if recorded.Amount != 600000 || recorded.Currency != "usd" {
		t.Errorf("unexpected amount/currency: %d %s", recorded.Amount, recorded.Currency)
	}
	if recorded.StripePaymentID != "pi_123" {
		t.Errorf("expected payment id pi_123, got %q", recorded.StripePaymentID)
	}
	if !recorded.IncludesZakat || recorded.ZakatAmount != 600 {
		t.Errorf("unexpected zakat fields: %+v", recorded)
	}
}

func TestCheckoutService_ProcessWebhook_DuplicateDeliveryIgnored(t *testing.T) {
	client := &mockStripeClient{
		parseWebhookEventFunc: func(_ []byte) (pkgstripe.WebhookEvent, error) {
			return sessionCompletedEvent(), nil
		},
	}
	recorder := &mockPledgeRecorder{
		createFunc: func(_ context.Context, _ *model.Pledge) error {
			return repository.ErrDuplicate
		},
	}
	svc := NewCheckoutService(client, recorder, "s", "c")

	if err := svc.ProcessWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Errorf("expected duplicate delivery to be ignored, got %v", err)
	}
}

func TestCheckoutService_ProcessWebhook_SessionCompletedWithoutRecorder(t *testing.T) {
	client := &mockStripeClient{
		parseWebhookEventFunc: func(_ []byte) (pkgstripe.WebhookEvent, error) {
			return sessionCompletedEvent(), nil
		},
	}
	svc := NewCheckoutService(client, nil, "s", "c")

	if err := svc.ProcessWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Errorf("expected stateless processing to succeed, got %v", err)
	}
}

func TestCheckoutService_ProcessWebhook_InvoicePaidDoesNotRecord(t *testing.T) {
	client := &mockStripeClient{
		parseWebhookEventFunc: func(_ []byte) (pkgstripe.WebhookEvent, error) {
			e := pkgstripe.WebhookEvent{Type: "invoice.paid", ID: "evt_2"}
			e.Data.Object = pkgstripe.WebhookEventObject{
				ID: "in_1", Subscription: "sub_9", AmountTotal: 100000, Currency: "usd",
			}
			return e, nil
		},
	}
	called := false
	recorder := &mockPledgeRecorder{
		createFunc: func(_ context.Context, _ *model.Pledge) error {
			called = true
			return nil
		},
	}
	svc := NewCheckoutService(client, recorder, "s", "c")

	if err := svc.ProcessWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called {
		t.Error("invoice.paid should not record a pledge row")
	}
}

func TestCheckoutService_ProcessWebhook_UnknownEventIgnored(t *testing.T) {
	client := &mockStripeClient{
		parseWebhookEventFunc: func(_ []byte) (pkgstripe.WebhookEvent, error) {
			return pkgstripe.WebhookEvent{Type: "customer.created"}, nil
		},
	}
	svc := NewCheckoutService(client, nil, "s", "c")

	if err := svc.ProcessWebhook(context.Background(), []byte("{}"), "sig"); err != nil {
		t.Errorf("unexpected error for unhandled event: %v", err)
	}
}

func TestCheckoutService_ProcessWebhook_ParseErrorSurfaces(t *testing.T) {
	client := &mockStripeClient{
		parseWebhookEventFunc: func(_ []byte) (pkgstripe.WebhookEvent, error) {
			return pkgstripe.WebhookEvent{}, errors.New("unexpected end of JSON input")
		},
	}
	svc := NewCheckoutService(client, nil, "s", "c")

	if err := svc.ProcessWebhook(context.Background(), []byte("{"), "sig"); err == nil {
		t.Error("expected error for malformed payload")
	}
}
