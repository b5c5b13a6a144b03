// Package stripe provides a lightweight Stripe API client for the pledges
// backend. Uses raw HTTP calls (no SDK) to minimize external dependencies.
package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// CheckoutParams carries everything needed to create a Checkout Session.
type CheckoutParams struct {
	Mode          string // "payment" or "subscription"
	Currency      string
	UnitAmount    int64  // minor units
	Interval      string // "week" | "month"; empty for one-time
	ProductName   string
	CustomerEmail string // empty = omit
	SuccessURL    string
	CancelURL     string
	Metadata      map[string]string
}

// WebhookEventObject is the data.object of the events this backend consumes:
// checkout sessions and invoices.
type WebhookEventObject struct {
	ID            string            `json:"id"`
	AmountTotal   int64             `json:"amount_total"`
	Currency      string            `json:"currency"`
	Metadata      map[string]string `json:"metadata"`
	PaymentIntent string            `json:"payment_intent"`
	Subscription  string            `json:"subscription"`
}

// WebhookEvent is a Stripe webhook event envelope.
type WebhookEvent struct {
	Type string `json:"type"`
	ID   string `json:"id"`
	Data struct {
		Object WebhookEventObject `json:"object"`
	} `json:"data"`
}

// Client is the Stripe API client interface.
type Client interface {
	// CreateCheckoutSession creates a Checkout Session and returns its URL.
	CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error)
	// VerifyWebhookSignature validates the Stripe-Signature header.
	// Returns ErrNotConfigured when no webhook secret is set.
	VerifyWebhookSignature(payload []byte, sigHeader string) error
	// ParseWebhookEvent parses a webhook payload.
	ParseWebhookEvent(payload []byte) (WebhookEvent, error)
}

// RealClient is the raw-HTTP implementation of Client.
type RealClient struct {
	SecretKey     string
	WebhookSecret string // whsec_...
	baseURL       string
	httpClient    *http.Client
}

// NewClient creates a RealClient.
func NewClient(secretKey, webhookSecret string) *RealClient {
	return &RealClient{
		SecretKey:     secretKey,
		WebhookSecret: webhookSecret,
		baseURL:       "https://api.stripe.com",
		httpClient:    &http.Client{Timeout: 30 * time.Second},
	}
}

// ErrNotConfigured is returned when the relevant Stripe secret is unset.
var ErrNotConfigured = errors.New("stripe: not configured")

// CreateCheckoutSession POSTs to /v1/checkout/sessions and returns the
// hosted checkout URL.
func (c *RealClient) CreateCheckoutSession(ctx context.Context, params CheckoutParams) (string, error) {
	if c.SecretKey == "" {
		return "", ErrNotConfigured
	}

	data := url.Values{}
	data.Set("mode", params.Mode)
	data.Set("line_items[0][price_data][currency]", params.Currency)
	data.Set("line_items[0][price_data][unit_amount]", strconv.FormatInt(params.UnitAmount, 10))
	data.Set("line_items[0][price_data][product_data][name]", params.ProductName)
	if params.Interval != "" {
		data.Set("line_items[0][price_data][recurring][interval]", params.Interval)
	}
	data.Set("line_items[0][quantity]", "1")
	data.Set("success_url", params.SuccessURL)
	data.Set("cancel_url", params.CancelURL)
	if params.CustomerEmail != "" {
		data.Set("customer_email", params.CustomerEmail)
	}
	for k, v := range params.Metadata {
		data.Set("metadata["+k+"]", v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/checkout/sessions",
		strings.NewReader(data.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(c.SecretKey, "")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var session struct {
		URL   string `json:"url"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", err
	}
	if session.Error != nil {
		return "", fmt.Errorf("stripe checkout error: %s", session.Error.Message)
	}
	if session.URL == "" {
		return "", errors.New("stripe checkout: empty session URL in response")
	}
	return session.URL, nil
}

// VerifyWebhookSignature validates the Stripe-Signature header with
// HMAC-SHA256 over "<timestamp>.<payload>".
func (c *RealClient) VerifyWebhookSignature(payload []byte, sigHeader string) error {
	if c.WebhookSecret == "" {
		return ErrNotConfigured
	}

	var timestamp string
	var signatures []string
	for _, part := range strings.Split(sigHeader, ",") {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		switch kv[0] {
		case "t":
			timestamp = kv[1]
		case "v1":
			signatures = append(signatures, kv[1])
		}
	}
	if timestamp == "" || len(signatures) == 0 {
		return errors.New("stripe: invalid signature header format")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return errors.New("stripe: invalid timestamp in signature header")
	}
	if time.Since(time.Unix(ts, 0)) > 5*time.Minute {
		return errors.New("stripe: webhook timestamp too old (replay attack protection)")
	}

	mac := hmac.New(sha256.New, []byte(c.WebhookSecret))
	mac.Write([]byte(timestamp + "." + string(payload)))
	expected := hex.EncodeToString(mac.Sum(nil))

	for _, sig := range signatures {
		if hmac.Equal([]byte(sig), []byte(expected)) {
			return nil
		}
	}
	return errors.New("stripe: signature verification failed")
}

// ParseWebhookEvent parses the webhook payload envelope.
func (c *RealClient) ParseWebhookEvent(payload []byte) (WebhookEvent, error) {
	var event WebhookEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return WebhookEvent{}, err
	}
	if event.Type == "" {
		return WebhookEvent{}, errors.New("stripe: webhook payload missing event type")
	}
	return event, nil
}
