package service

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/pledges/backend/internal/model"
)

// Campaign configuration: 80 units at 1,000 major currency units each.
const (
	TotalUnits = 80
	UnitPrice  = 1000
	MinUnits   = 1
	MaxUnits   = TotalUnits
)

// Duration bounds per recurring frequency.
const (
	MaxWeeks  = 26
	MaxMonths = 6
)

// Guardrails on the minor-unit integer handed to Stripe.
const (
	minChargeDecimal     = 100 // non-zero-decimal currencies (e.g. 1.00 USD)
	minChargeZeroDecimal = 1
	maxCharge            = 100_000_000
)

// zeroDecimalCurrencies are encoded by Stripe as whole integers without the
// usual ×100 scaling.
var zeroDecimalCurrencies = map[string]bool{
	"bif": true, "clp": true, "djf": true, "gnf": true,
	"jpy": true, "kmf": true, "krw": true, "mga": true,
	"pyg": true, "rwf": true, "ugx": true, "vnd": true,
	"vuv": true, "xaf": true, "xof": true, "xpf": true,
}

// ErrInvalidAmount is returned by ToUnitAmount for non-finite or non-positive amounts.
var ErrInvalidAmount = errors.New("Invalid amount")

// Client-facing validation errors. The messages are returned verbatim in
// 400 responses.
var (
	ErrUnitsOutOfRange  = fmt.Errorf("Units must be between %d and %d.", MinUnits, MaxUnits)
	ErrWeeksOutOfRange  = fmt.Errorf("Duration must be between 1 and %d weeks.", MaxWeeks)
	ErrMonthsOutOfRange = fmt.Errorf("Duration must be between 1 and %d months.", MaxMonths)
	ErrZakatOutOfRange  = errors.New("Zakat percentage must be between 0 and 100.")
	ErrAmountOutOfRange = errors.New("Amount out of allowed range.")
)

// IsZeroDecimal reports whether the currency has no fractional subunit.
func IsZeroDecimal(currency string) bool {
	return zeroDecimalCurrencies[strings.ToLower(currency)]
}

// ToUnitAmount converts a major-unit amount to the processor's minor-unit
// integer. Zero-decimal currencies map 1:1 (rounded); all others are
// multiplied by 100 before rounding.
func ToUnitAmount(amount float64, currency string) (int64, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return 0, ErrInvalidAmount
	}
	if IsZeroDecimal(currency) {
		return int64(math.Round(amount)), nil
	}
	return int64(math.Round(amount * 100)), nil
}

// CheckChargeBounds enforces the processor guardrails on a minor-unit
// amount: at least one whole subunit (one whole unit for zero-decimal
// currencies) and at most maxCharge.
func CheckChargeBounds(unitAmount int64, currency string) error {
	minCharge := int64(minChargeDecimal)
	if IsZeroDecimal(currency) {
		minCharge = minChargeZeroDecimal
	}
	if unitAmount < minCharge || unitAmount > maxCharge {
		return ErrAmountOutOfRange
	}
	return nil
}

// BuildSessionParams validates a PledgeRequest and computes the full
// checkout-session parameter set. Any returned error is client-facing.
func BuildSessionParams(req model.PledgeRequest) (model.PledgeSessionParams, error) {
	var empty model.PledgeSessionParams

	if req.Units < MinUnits || req.Units > MaxUnits {
		return empty, ErrUnitsOutOfRange
	}

	currency := strings.ToLower(req.Currency)
	if currency == "" {
		currency = "usd"
	}
	frequency := strings.ToLower(req.Frequency)
	if frequency == "" {
		frequency = model.FrequencyOnce
	}

	duration := req.Duration
	switch frequency {
	case model.FrequencyWeekly:
		if duration < 1 || duration > MaxWeeks {
			return empty, ErrWeeksOutOfRange
		}
	case model.FrequencyMonthly:
		if duration < 1 || duration > MaxMonths {
			return empty, ErrMonthsOutOfRange
		}
	default:
		// One-time: duration is a lump-sum multiplier, defaulting to a
		// single period.
		if duration < 1 {
			duration = 1
		}
	}

	if req.ZakatPercentage < 0 || req.ZakatPercentage > 100 {
		return empty, ErrZakatOutOfRange
	}

	// Base pledge value, in major currency units. Recurring pledges are
	// charged per period by Stripe, so the total is not multiplied by
	// duration; one-time pledges pay the whole span up front.
	totalAmount := req.Units * UnitPrice
	isRecurring := frequency == model.FrequencyWeekly || frequency == model.FrequencyMonthly
	if !isRecurring {
		totalAmount *= duration
	}

	unitAmount, err := ToUnitAmount(float64(totalAmount), currency)
	if err != nil {
		return empty, err
	}

	if err := CheckChargeBounds(unitAmount, currency); err != nil {
		return empty, err
	}

	// Zakat is informational: same unit as totalAmount, never added to the
	// charge. totalAmount is a multiple of UnitPrice, so integer division
	// by 100 is exact.
	zakatAmount := 0
	if req.IncludesZakat && req.ZakatPercentage > 0 {
		zakatAmount = totalAmount * req.ZakatPercentage / 100
	}

	donorName := req.DonorName
	if donorName == "" {
		donorName = "Anonymous"
	}

	interval := ""
	mode := "payment"
	if isRecurring {
		mode = "subscription"
		interval = "month"
		if frequency == model.FrequencyWeekly {
			interval = "week"
		}
	}

	return model.PledgeSessionParams{
		Mode:        mode,
		Currency:    currency,
		UnitAmount:  unitAmount,
		Interval:    interval,
		ProductName: fmt.Sprintf("Ramadan Pledge - %d Unit(s)", req.Units),
		DonorEmail:  req.DonorEmail,
		Metadata: model.PledgeMetadata{
			Units:           req.Units,
			DonorName:       donorName,
			Frequency:       frequency,
			Duration:        duration,
			IncludesZakat:   req.IncludesZakat,
			ZakatPercentage: req.ZakatPercentage,
			ZakatAmount:     zakatAmount,
		},
	}, nil
}
