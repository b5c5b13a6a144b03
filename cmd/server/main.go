package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/pledges/backend/internal/config"
	"github.com/pledges/backend/internal/handler"
	"github.com/pledges/backend/internal/logging"
	"github.com/pledges/backend/internal/repository"
	"github.com/pledges/backend/internal/service"
	pkgstripe "github.com/pledges/backend/pkg/stripe"
)

func main() {
	_ = godotenv.Load()
	logging.Setup()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("config load failed", "error", err)
	}

	// Persistence is optional: without DATABASE_URL the server runs
	// stateless and webhook events are only logged.
	var pledgeRepo repository.PledgeRepository
	var healthPinger handler.Pinger
	var unitsCounter handler.UnitsCounter
	var pledgeLister handler.PledgeLister
	if cfg.DatabaseURL != "" {
		pool, err := repository.NewPool(context.Background(), cfg.DatabaseURL)
		if err != nil {
			logging.Fatal("failed to connect to database", "error", err)
		}
		defer pool.Close()
		pledgeRepo = repository.NewPgPledgeRepository(pool)
		healthPinger = pool
		unitsCounter = pledgeRepo
		pledgeLister = pledgeRepo
	}

	stripeClient := pkgstripe.NewClient(cfg.StripeSecretKey, cfg.WebhookSecret)
	checkoutService := service.NewCheckoutService(stripeClient, recorderOrNil(pledgeRepo), cfg.SuccessURL, cfg.CancelURL)

	checkoutHandler := handler.NewCheckoutHandler(checkoutService)
	pagesHandler := handler.NewPagesHandler(cfg.StaticDir)
	progressHandler := handler.NewProgressHandler(unitsCounter)
	pledgesHandler := handler.NewPledgesHandler(pledgeLister)
	healthHandler := handler.NewHealthHandler(healthPinger)
	rateLimiter := handler.NewRateLimiter(cfg.RateLimitPerMin)

	mux := http.NewServeMux()
	mux.Handle("POST /create-checkout-session",
		rateLimiter.Middleware(http.HandlerFunc(checkoutHandler.CreateSession)))
	mux.HandleFunc("POST /webhook", checkoutHandler.Webhook)
	mux.HandleFunc("GET /api/progress", progressHandler.Progress)
	mux.HandleFunc("GET /api/pledges", pledgesHandler.List)
	mux.HandleFunc("GET /api/health", healthHandler.Health)
	mux.HandleFunc("GET /{$}", pagesHandler.Index)
	mux.HandleFunc("GET /thank-you", pagesHandler.ThankYou)
	mux.HandleFunc("GET /error", pagesHandler.Error)
	mux.Handle("GET /static/", pagesHandler.Static())

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      handler.SecurityHeaders(handler.RequestLogger(mux)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		slog.Info("server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// recorderOrNil avoids handing the service a non-nil interface holding a
// nil repository.
func recorderOrNil(repo repository.PledgeRepository) service.PledgeRecorder {
	if repo == nil {
		return nil
	}
	return repo
}
