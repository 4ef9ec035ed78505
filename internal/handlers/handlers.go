package handlers

import (
	"database/sql"

	"github.com/luckguide/luckguide-golang/internal/ai"
	"github.com/luckguide/luckguide-golang/internal/credits"
	"github.com/luckguide/luckguide-golang/internal/events"
	"github.com/luckguide/luckguide-golang/internal/payments"
	"github.com/luckguide/luckguide-golang/internal/reconcile"
)

// Handlers holds all dependencies for the HTTP handlers.
type Handlers struct {
	DB         *sql.DB
	Credits    *credits.Service
	Checkout   *payments.Initiator
	Reconciler *reconcile.Runner
	Bus        *events.Bus
	AIService  *ai.Service

	StripeWebhookSecret    string
	AirwallexWebhookSecret string

	// ReadingCost is the credit price of one generated reading.
	ReadingCost int
}
