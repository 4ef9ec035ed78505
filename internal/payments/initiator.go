package payments

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/luckguide/luckguide-golang/internal/models"
)

// Initiator creates provider checkout sessions bound to a user and product.
type Initiator struct {
	Store     Store
	Stripe    SessionCreator
	Airwallex SessionCreator
}

func NewInitiator(store Store, stripe, airwallex SessionCreator) *Initiator {
	return &Initiator{Store: store, Stripe: stripe, Airwallex: airwallex}
}

// CreateCheckout builds a payment-provider session for the given user and
// product and records the pending order locally.
//
// Preconditions checked here, before any provider call:
//   - the user must have an email address (providers correlate by email);
//   - a free-trial subscription may be started at most once per user, ever.
//     A second attempt is rejected, not silently converted to a paid session.
func (i *Initiator) CreateCheckout(ctx context.Context, user models.User, product models.Product, currency, provider string) (*CheckoutSession, error) {
	if strings.TrimSpace(user.Email) == "" {
		return nil, ErrMissingEmail
	}

	currency = strings.ToLower(strings.TrimSpace(currency))
	if currency == "" {
		currency = product.Currency
	}

	var creator SessionCreator
	switch provider {
	case ProviderAirwallex:
		if product.Mode != models.ProductModePayment {
			return nil, ErrUnsupportedMode
		}
		creator = i.Airwallex
	default:
		provider = ProviderStripe
		creator = i.Stripe
	}

	claimedTrial := false
	if product.IsTrial() {
		claimed, err := i.Store.ClaimTrial(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		if !claimed {
			return nil, ErrTrialAlreadyUsed
		}
		claimedTrial = true
	}

	ref := uuid.New().String()
	sess, err := creator.CreateSession(ctx, SessionRequest{
		UserID:   user.ID,
		Email:    user.Email,
		Product:  product,
		Currency: currency,
		OrderRef: ref,
	})
	if err != nil {
		i.releaseTrial(ctx, user.ID, claimedTrial)
		return nil, err
	}
	sess.Provider = provider

	err = i.Store.CreateOrder(ctx, models.Order{
		Ref:               ref,
		UserID:            user.ID,
		ProductSlug:       product.Slug,
		Provider:          provider,
		ProviderSessionID: sess.SessionID,
		AmountCents:       product.PriceCents,
		Currency:          currency,
		Status:            models.OrderStatusPending,
	})
	if err != nil {
		i.releaseTrial(ctx, user.ID, claimedTrial)
		return nil, err
	}

	return sess, nil
}

// releaseTrial gives back a trial claim when the checkout it was claimed for
// failed before a session existed. The user may retry once the outage passes.
func (i *Initiator) releaseTrial(ctx context.Context, userID int64, claimed bool) {
	if !claimed {
		return
	}
	if err := i.Store.ReleaseTrial(ctx, userID); err != nil {
		log.Printf("payments: failed to release trial claim for user %d: %v", userID, err)
	}
}
