package payments

import (
	"context"
	"fmt"
	"strconv"

	stripe "github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/checkout/session"

	"github.com/luckguide/luckguide-golang/internal/models"
)

// Stripe creates embedded checkout sessions (one-time packs and recurring
// plans, including free trials).
type Stripe struct {
	ReturnURL string
}

func NewStripe(apiKey, returnURL string) *Stripe {
	stripe.Key = apiKey
	return &Stripe{ReturnURL: returnURL}
}

func (s *Stripe) CreateSession(ctx context.Context, req SessionRequest) (*CheckoutSession, error) {
	priceData := &stripe.CheckoutSessionLineItemPriceDataParams{
		Currency:   stripe.String(req.Currency),
		UnitAmount: stripe.Int64(req.Product.PriceCents),
		ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
			Name: stripe.String(req.Product.Name),
		},
	}

	mode := stripe.CheckoutSessionModePayment
	if req.Product.Mode == models.ProductModeSubscription {
		mode = stripe.CheckoutSessionModeSubscription
		priceData.Recurring = &stripe.CheckoutSessionLineItemPriceDataRecurringParams{
			Interval: stripe.String("month"),
		}
	}

	metadata := map[string]string{
		"user_id":      strconv.FormatInt(req.UserID, 10),
		"product_slug": req.Product.Slug,
		"order_ref":    req.OrderRef,
	}

	params := &stripe.CheckoutSessionParams{
		Mode:          stripe.String(string(mode)),
		UIMode:        stripe.String(string(stripe.CheckoutSessionUIModeEmbedded)),
		ReturnURL:     stripe.String(s.ReturnURL),
		CustomerEmail: stripe.String(req.Email),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{PriceData: priceData, Quantity: stripe.Int64(1)},
		},
	}
	params.Context = ctx
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	if req.Product.Mode == models.ProductModeSubscription {
		// Renewal invoices only carry subscription metadata, so the
		// correlation keys go on the subscription as well.
		params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		}
		if req.Product.TrialDays > 0 {
			params.SubscriptionData.TrialPeriodDays = stripe.Int64(int64(req.Product.TrialDays))
		}
	}

	sess, err := session.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create Stripe checkout session: %w", err)
	}

	return &CheckoutSession{
		SessionID:    sess.ID,
		ClientSecret: sess.ClientSecret,
		Provider:     ProviderStripe,
	}, nil
}
