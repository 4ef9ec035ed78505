package models

import (
	"time"

	"github.com/gosimple/slug"
)

// Purchase modes. A 'payment' product is a one-time credit pack, a
// 'subscription' product is a recurring plan that grants credits each cycle.
const (
	ProductModePayment      = "payment"
	ProductModeSubscription = "subscription"
)

// Product is the model for the 'products' table (credit packs and plans).
type Product struct {
	ID          int64     `json:"id" db:"id"`
	Slug        string    `json:"slug" db:"slug"`
	Name        string    `json:"name" db:"name"`
	Description string    `json:"description" db:"description"`
	PriceCents  int64     `json:"priceCents" db:"price_cents"`
	Currency    string    `json:"currency" db:"currency"`
	Credits     int       `json:"credits" db:"credits"`
	Mode        string    `json:"mode" db:"mode"`
	TrialDays   int       `json:"trialDays" db:"trial_days"`
	Active      bool      `json:"active" db:"active"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt" db:"updated_at"`
}

// IsTrial reports whether a subscription product starts with a free trial.
func (p *Product) IsTrial() bool {
	return p.Mode == ProductModeSubscription && p.TrialDays > 0
}

// MakeSlug builds the stable product identifier that gets embedded in
// payment-provider metadata, so webhooks can map a session back to a product.
func MakeSlug(name string) string {
	return slug.Make(name)
}
