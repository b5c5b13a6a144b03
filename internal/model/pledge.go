package model

import (
	"strconv"
	"time"
)

// Pledge frequencies accepted from donors.
const (
	FrequencyOnce    = "once"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
)

// PledgeRequest is the raw donor-submitted body of POST /create-checkout-session.
type PledgeRequest struct {
	Units           int    `json:"units"`
	Currency        string `json:"currency"`
	Frequency       string `json:"frequency"` // once | weekly | monthly
	Duration        int    `json:"duration"`  // weeks or months; multiplier for one-time pledges
	DonorName       string `json:"donor_name"`
	DonorEmail      string `json:"donor_email"`
	IncludesZakat   bool   `json:"includes_zakat"`
	ZakatPercentage int    `json:"zakat_percentage"`
}

// PledgeMetadata is the typed record attached to a checkout session and read
// back when the corresponding webhook event arrives. All values travel as
// strings in the Stripe metadata map.
type PledgeMetadata struct {
	Units           int
	DonorName       string
	Frequency       string
	Duration        int
	IncludesZakat   bool
	ZakatPercentage int
	ZakatAmount     int // major currency units, informational only
}

// ToMap renders the metadata as the string map Stripe expects.
func (m PledgeMetadata) ToMap() map[string]string {
	return map[string]string{
		"units":            strconv.Itoa(m.Units),
		"donor_name":       m.DonorName,
		"frequency":        m.Frequency,
		"duration":         strconv.Itoa(m.Duration),
		"includes_zakat":   strconv.FormatBool(m.IncludesZakat),
		"zakat_percentage": strconv.Itoa(m.ZakatPercentage),
		"zakat_amount":     strconv.Itoa(m.ZakatAmount),
	}
}

// PledgeMetadataFromMap parses a Stripe metadata map back into the typed
// record. Missing or malformed numeric fields parse as zero values.
func PledgeMetadataFromMap(raw map[string]string) PledgeMetadata {
	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}
	return PledgeMetadata{
		Units:           atoi(raw["units"]),
		DonorName:       raw["donor_name"],
		Frequency:       raw["frequency"],
		Duration:        atoi(raw["duration"]),
		IncludesZakat:   raw["includes_zakat"] == "true",
		ZakatPercentage: atoi(raw["zakat_percentage"]),
		ZakatAmount:     atoi(raw["zakat_amount"]),
	}
}

// PledgeSessionParams is the validated, currency-correct parameter set handed
// to the checkout-session creator. Immutable once computed.
type PledgeSessionParams struct {
	Mode        string // "payment" or "subscription"
	Currency    string
	UnitAmount  int64  // processor minor units
	Interval    string // "week", "month", or "" for one-time
	ProductName string
	DonorEmail  string // empty = omit customer_email
	Metadata    PledgeMetadata
}

// Pledge is a completed pledge payment recorded from a webhook event.
type Pledge struct {
	ID                   string    `json:"id"`
	DonorName            string    `json:"donor_name"`
	Units                int       `json:"units"`
	Frequency            string    `json:"frequency"`
	Duration             int       `json:"duration"`
	Amount               int64     `json:"amount"` // minor units as charged
	Currency             string    `json:"currency"`
	IncludesZakat        bool      `json:"includes_zakat"`
	ZakatPercentage      int       `json:"zakat_percentage"`
	ZakatAmount          int       `json:"zakat_amount"`
	StripePaymentID      string    `json:"-"`
	StripeSubscriptionID string    `json:"-"`
	CreatedAt            time.Time `json:"created_at"`
}
