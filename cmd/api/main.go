package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/luckguide/luckguide-golang/internal/ai"
	"github.com/luckguide/luckguide-golang/internal/cache"
	"github.com/luckguide/luckguide-golang/internal/credits"
	"github.com/luckguide/luckguide-golang/internal/database"
	"github.com/luckguide/luckguide-golang/internal/events"
	"github.com/luckguide/luckguide-golang/internal/handlers"
	"github.com/luckguide/luckguide-golang/internal/payments"
	"github.com/luckguide/luckguide-golang/internal/reconcile"
	"github.com/luckguide/luckguide-golang/internal/routes"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("WARNING: Could not find or load .env file. Relying on system environment variables.")
	}

	// --- Database ---
	db, err := database.OpenDB()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// --- Credit Cache (best-effort: the API runs without it) ---
	var creditCache *cache.Client
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		creditCache, err = cache.NewClient(addr, os.Getenv("REDIS_PASSWORD"), 0, "luckguide")
		if err != nil {
			log.Printf("WARNING: Redis unavailable, running without credit cache: %v", err)
			creditCache = nil
		} else {
			defer creditCache.Close()
		}
	}

	// --- Payment Providers ---
	stripeKey := os.Getenv("STRIPE_SECRET_KEY")
	if stripeKey == "" {
		log.Fatal("CRITICAL ERROR: STRIPE_SECRET_KEY environment variable is not set.")
	}
	returnURL := os.Getenv("CHECKOUT_RETURN_URL")
	if returnURL == "" {
		returnURL = "http://localhost:3000/checkout/return"
	}
	stripeClient := payments.NewStripe(stripeKey, returnURL)

	airwallexClient := payments.NewAirwallex(
		os.Getenv("AIRWALLEX_BASE_URL"),
		os.Getenv("AIRWALLEX_CLIENT_ID"),
		os.Getenv("AIRWALLEX_API_KEY"),
	)

	// --- AI Service (reading generation) ---
	geminiKey := os.Getenv("GEMINI_API_KEY")
	if geminiKey == "" {
		log.Fatal("CRITICAL ERROR: GEMINI_API_KEY environment variable is not set.")
	}
	aiService, err := ai.NewService(geminiKey)
	if err != nil {
		log.Fatalf("Failed to initialize AI service: %v", err)
	}

	// --- Core Services ---
	creditService := credits.NewService(credits.NewSQLStore(db), creditCache)
	bus := events.NewBus()
	reconciler := reconcile.NewRunner(creditService, bus)
	checkout := payments.NewInitiator(payments.NewSQLStore(db), stripeClient, airwallexClient)

	readingCost := 10
	if v := os.Getenv("READING_CREDIT_COST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			readingCost = n
		}
	}

	app := &handlers.Handlers{
		DB:                     db,
		Credits:                creditService,
		Checkout:               checkout,
		Reconciler:             reconciler,
		Bus:                    bus,
		AIService:              aiService,
		StripeWebhookSecret:    os.Getenv("STRIPE_WEBHOOK_SECRET"),
		AirwallexWebhookSecret: os.Getenv("AIRWALLEX_WEBHOOK_SECRET"),
		ReadingCost:            readingCost,
	}

	// --- Background Worker ---
	// Sweeps orders that never got a completion webhook.
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()

		log.Println("Background worker started: monitoring for stale pending orders...")

		for range ticker.C {
			app.ExpireStaleOrders()
		}
	}()

	// --- Router Setup ---
	router := routes.SetupRouter(app)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting Luck Guide API server on port %s...", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
