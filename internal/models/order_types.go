package models

import "time"

// Order statuses. An order is 'pending' from checkout creation until the
// provider webhook confirms payment; stale pending orders are expired by the
// background sweeper.
const (
	OrderStatusPending = "pending"
	OrderStatusPaid    = "paid"
	OrderStatusExpired = "expired"
)

// Order is the model for the 'orders' table. The provider owns the checkout
// session itself; this row only correlates it back to a local user.
type Order struct {
	ID                int64          `json:"id" db:"id"`
	Ref               string         `json:"ref" db:"ref"`
	UserID            int64          `json:"userId" db:"user_id"`
	ProductSlug       string         `json:"productSlug" db:"product_slug"`
	Provider          string         `json:"provider" db:"provider"` // stripe, airwallex
	ProviderSessionID string         `json:"providerSessionId" db:"provider_session_id"`
	AmountCents       int64          `json:"amountCents" db:"amount_cents"`
	Currency          string         `json:"currency" db:"currency"`
	Status            string         `json:"status" db:"status"`
	CreatedAt         time.Time  `json:"createdAt" db:"created_at"`
	PaidAt            *time.Time `json:"paidAt,omitempty" db:"paid_at"`  // Pointers = Clean JSON
	UserEmail         *string    `json:"userEmail,omitempty" db:"-"`     // joined in for the admin view
}
