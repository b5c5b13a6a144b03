package config

import (
	"errors"
	"os"
	"strconv"
)

// Config is the immutable process configuration, built once at startup and
// passed down explicitly.
type Config struct {
	Port            string
	BaseURL         string
	SuccessURL      string
	CancelURL       string
	StaticDir       string
	StripeSecretKey string
	WebhookSecret   string // empty disables webhook signature verification
	DatabaseURL     string // empty runs the server stateless
	RateLimitPerMin int
}

// ErrMissingStripeKey is returned by Load when STRIPE_SECRET_KEY is unset.
var ErrMissingStripeKey = errors.New("config: STRIPE_SECRET_KEY is required")

// Load reads configuration from the environment.
func Load() (*Config, error) {
	secretKey := os.Getenv("STRIPE_SECRET_KEY")
	if secretKey == "" {
		return nil, ErrMissingStripeKey
	}

	baseURL := getEnv("BASE_URL", "http://localhost:4242")
	return &Config{
		Port:            getEnv("PORT", "4242"),
		BaseURL:         baseURL,
		SuccessURL:      getEnv("SUCCESS_URL", baseURL+"/thank-you"),
		CancelURL:       getEnv("CANCEL_URL", baseURL+"/error"),
		StaticDir:       getEnv("STATIC_DIR", "./static"),
		StripeSecretKey: secretKey,
		WebhookSecret:   os.Getenv("STRIPE_WEBHOOK_SECRET"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RateLimitPerMin: getEnvInt("RATE_LIMIT_PER_MIN", 60),
	}, nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
