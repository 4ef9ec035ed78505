package models

import "time"

// UserCredit is the model for the 'user_credits' table, the durable record
// of how many reading credits a user has left. The balance is only ever
// changed by webhook-driven grants and reading debits, never by reads.
type UserCredit struct {
	UserID    int64     `json:"userId" db:"user_id"`
	Balance   int       `json:"balance" db:"balance"`
	Status    string    `json:"status" db:"status"` // active, disabled
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

const (
	CreditStatusActive   = "active"
	CreditStatusDisabled = "disabled"
)
