package models

import "time"

// Subscription statuses mirror the provider-side lifecycle. The row may be
// absent or lag behind a just-completed checkout, since it is only written
// by the webhook; readers must tolerate that.
const (
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusActive   = "active"
	SubscriptionStatusCanceled = "canceled"
	SubscriptionStatusPastDue  = "past_due"
)

// UserSubscription is the model for the 'subscriptions' table.
type UserSubscription struct {
	UserID                 int64     `json:"userId" db:"user_id"`
	ProductSlug            string    `json:"productSlug" db:"product_slug"`
	ProviderSubscriptionID string    `json:"providerSubscriptionId" db:"provider_subscription_id"`
	Status                 string    `json:"status" db:"status"`
	PeriodStart            time.Time `json:"periodStart" db:"period_start"`
	PeriodEnd              time.Time `json:"periodEnd" db:"period_end"`
	UpdatedAt              time.Time `json:"updatedAt" db:"updated_at"`
}
