package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/webhook"

	"github.com/luckguide/luckguide-golang/internal/models"
	"github.com/luckguide/luckguide-golang/internal/payments"
)

const maxWebhookBody = 65536

// StripeWebhook is the handler for POST /v1/webhooks/stripe. This is the
// payment completion notifier: it is the only path that turns a finished
// checkout into a credit grant. Replayed events are no-ops because the grant
// is keyed on the event id.
func (h *Handlers) StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
		return
	}

	event, err := webhook.ConstructEvent(payload, c.GetHeader("Stripe-Signature"), h.StripeWebhookSecret)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid signature"})
		return
	}

	ctx := c.Request.Context()

	switch string(event.Type) {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed event payload"})
			return
		}
		if err := h.handleStripeCheckoutCompleted(ctx, event.ID, &sess); err != nil {
			log.Printf("stripe webhook: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
			return
		}

	case "invoice.payment_succeeded":
		var inv stripe.Invoice
		if err := json.Unmarshal(event.Data.Raw, &inv); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed event payload"})
			return
		}
		if err := h.handleStripeInvoicePaid(ctx, event.ID, &inv); err != nil {
			log.Printf("stripe webhook: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
			return
		}

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed event payload"})
			return
		}
		if userID, _, ok := correlate(sub.Metadata); ok {
			_, err := h.DB.ExecContext(ctx, `
UPDATE subscriptions SET status = $2, updated_at = NOW() WHERE user_id = $1
`, userID, models.SubscriptionStatusCanceled)
			if err != nil {
				log.Printf("stripe webhook: failed to cancel subscription for user %d: %v", userID, err)
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func (h *Handlers) handleStripeCheckoutCompleted(ctx context.Context, eventID string, sess *stripe.CheckoutSession) error {
	// One-time sessions must actually be paid; subscription sessions with a
	// free trial report no_payment_required, which is fine.
	if sess.Mode == stripe.CheckoutSessionModePayment &&
		sess.PaymentStatus != stripe.CheckoutSessionPaymentStatusPaid {
		return nil
	}

	userID, productSlug, ok := correlate(sess.Metadata)
	if !ok {
		log.Printf("stripe webhook: session %s has no correlation metadata, skipping", sess.ID)
		return nil
	}

	product, err := h.productBySlug(ctx, productSlug)
	if err != nil {
		return err
	}

	if err := h.markOrderPaid(ctx, sess.ID); err != nil {
		return err
	}

	if _, err := h.Credits.Grant(ctx, userID, product.Credits, payments.ProviderStripe, eventID); err != nil {
		return err
	}

	if product.Mode == models.ProductModeSubscription {
		status := models.SubscriptionStatusActive
		periodEnd := time.Now().AddDate(0, 1, 0)
		if product.TrialDays > 0 {
			status = models.SubscriptionStatusTrialing
			periodEnd = time.Now().AddDate(0, 0, product.TrialDays)
		}
		providerSubID := ""
		if sess.Subscription != nil {
			providerSubID = sess.Subscription.ID
		}
		return h.upsertSubscription(ctx, userID, product.Slug, providerSubID, status, time.Now(), periodEnd)
	}
	return nil
}

func (h *Handlers) handleStripeInvoicePaid(ctx context.Context, eventID string, inv *stripe.Invoice) error {
	// The first invoice of a subscription is covered by
	// checkout.session.completed; only renewals grant here.
	if inv.BillingReason != stripe.InvoiceBillingReasonSubscriptionCycle {
		return nil
	}
	if inv.SubscriptionDetails == nil {
		return nil
	}

	userID, productSlug, ok := correlate(inv.SubscriptionDetails.Metadata)
	if !ok {
		log.Printf("stripe webhook: invoice %s has no correlation metadata, skipping", inv.ID)
		return nil
	}

	product, err := h.productBySlug(ctx, productSlug)
	if err != nil {
		return err
	}

	if _, err := h.Credits.Grant(ctx, userID, product.Credits, payments.ProviderStripe, eventID); err != nil {
		return err
	}

	providerSubID := ""
	if inv.Subscription != nil {
		providerSubID = inv.Subscription.ID
	}
	return h.upsertSubscription(ctx, userID, product.Slug, providerSubID,
		models.SubscriptionStatusActive,
		time.Unix(inv.PeriodStart, 0), time.Unix(inv.PeriodEnd, 0))
}

type airwallexEvent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// AirwallexWebhook is the handler for POST /v1/webhooks/airwallex.
func (h *Handlers) AirwallexWebhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read payload"})
		return
	}

	if !payments.VerifyAirwallexSignature(h.AirwallexWebhookSecret,
		c.GetHeader("x-timestamp"), payload, c.GetHeader("x-signature")) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var event airwallexEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed event payload"})
		return
	}

	if event.Name != "payment_intent.succeeded" {
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	ctx := c.Request.Context()
	userID, productSlug, ok := correlate(event.Data.Object.Metadata)
	if !ok {
		log.Printf("airwallex webhook: intent %s has no correlation metadata, skipping", event.Data.Object.ID)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	product, err := h.productBySlug(ctx, productSlug)
	if err != nil {
		log.Printf("airwallex webhook: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	if err := h.markOrderPaid(ctx, event.Data.Object.ID); err != nil {
		log.Printf("airwallex webhook: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	if _, err := h.Credits.Grant(ctx, userID, product.Credits, payments.ProviderAirwallex, event.ID); err != nil {
		log.Printf("airwallex webhook: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// correlate pulls the local user and product out of provider metadata placed
// there by the checkout initiator.
func correlate(metadata map[string]string) (int64, string, bool) {
	if metadata == nil {
		return 0, "", false
	}
	userID, err := strconv.ParseInt(metadata["user_id"], 10, 64)
	if err != nil || userID == 0 {
		return 0, "", false
	}
	slug := metadata["product_slug"]
	if slug == "" {
		return 0, "", false
	}
	return userID, slug, true
}

func (h *Handlers) productBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var p models.Product
	err := h.DB.QueryRowContext(ctx, `
SELECT id, slug, name, price_cents, currency, credits, mode, trial_days
FROM products WHERE slug = $1
`, slug).Scan(&p.ID, &p.Slug, &p.Name, &p.PriceCents, &p.Currency, &p.Credits, &p.Mode, &p.TrialDays)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.New("unknown product slug in webhook metadata: " + slug)
		}
		return nil, err
	}
	return &p, nil
}

func (h *Handlers) markOrderPaid(ctx context.Context, providerSessionID string) error {
	_, err := h.DB.ExecContext(ctx, `
UPDATE orders SET status = $2, paid_at = NOW()
WHERE provider_session_id = $1 AND status = $3
`, providerSessionID, models.OrderStatusPaid, models.OrderStatusPending)
	return err
}

func (h *Handlers) upsertSubscription(ctx context.Context, userID int64, productSlug, providerSubID, status string, periodStart, periodEnd time.Time) error {
	_, err := h.DB.ExecContext(ctx, `
INSERT INTO subscriptions (user_id, product_slug, provider_subscription_id, status, period_start, period_end)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE SET
  product_slug = EXCLUDED.product_slug,
  provider_subscription_id = EXCLUDED.provider_subscription_id,
  status = EXCLUDED.status,
  period_start = EXCLUDED.period_start,
  period_end = EXCLUDED.period_end,
  updated_at = NOW()
`, userID, productSlug, providerSubID, status, periodStart, periodEnd)
	return err
}
