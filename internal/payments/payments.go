package payments

import (
	"context"
	"errors"

	"github.com/luckguide/luckguide-golang/internal/models"
)

// Provider names as stored on orders and webhook events.
const (
	ProviderStripe    = "stripe"
	ProviderAirwallex = "airwallex"
)

// Precondition failures. These are surfaced to the caller synchronously and
// never retried.
var (
	ErrMissingEmail     = errors.New("payments: user has no email address")
	ErrTrialAlreadyUsed = errors.New("payments: free trial already used")
	ErrUnsupportedMode  = errors.New("payments: provider does not support this product mode")
)

// CheckoutSession is what the page embeds into the hosted payment widget.
// The clientSecret is provider-opaque; the local system never finalizes
// payment itself.
type CheckoutSession struct {
	SessionID    string `json:"sessionId"`
	ClientSecret string `json:"clientSecret"`
	Provider     string `json:"provider"`
}

// SessionRequest carries everything a provider needs to create a session.
// UserID and the product slug travel as session metadata so the webhook can
// correlate the completion back to a local user without re-deriving it from
// the provider's customer object.
type SessionRequest struct {
	UserID   int64
	Email    string
	Product  models.Product
	Currency string
	OrderRef string
}

// SessionCreator is one payment provider's session API.
type SessionCreator interface {
	CreateSession(ctx context.Context, req SessionRequest) (*CheckoutSession, error)
}

// Store is the local persistence the initiator needs: the once-ever trial
// ledger and the pending order row that mirrors the provider session.
type Store interface {
	// ClaimTrial records that the user consumed their free trial. claimed
	// is false when a previous claim exists.
	ClaimTrial(ctx context.Context, userID int64) (claimed bool, err error)

	// ReleaseTrial undoes a claim whose checkout never materialized, so a
	// provider outage does not burn the once-ever trial.
	ReleaseTrial(ctx context.Context, userID int64) error

	// CreateOrder writes the pending order referencing the provider session.
	CreateOrder(ctx context.Context, order models.Order) error
}
