package payments

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/luckguide/luckguide-golang/internal/models"
)

// SQLStore is the Postgres-backed checkout store.
type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) ClaimTrial(ctx context.Context, userID int64) (bool, error) {
	// The primary key on user_id makes this a once-ever claim: the insert
	// is a no-op for a user who already burned their trial.
	res, err := s.DB.ExecContext(ctx, `
INSERT INTO trial_grants (user_id)
VALUES ($1)
ON CONFLICT (user_id) DO NOTHING
`, userID)
	if err != nil {
		return false, fmt.Errorf("failed to claim trial: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SQLStore) ReleaseTrial(ctx context.Context, userID int64) error {
	_, err := s.DB.ExecContext(ctx, `
DELETE FROM trial_grants WHERE user_id = $1
`, userID)
	if err != nil {
		return fmt.Errorf("failed to release trial claim: %w", err)
	}
	return nil
}

func (s *SQLStore) CreateOrder(ctx context.Context, order models.Order) error {
	_, err := s.DB.ExecContext(ctx, `
INSERT INTO orders (ref, user_id, product_slug, provider, provider_session_id, amount_cents, currency, status)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
`, order.Ref, order.UserID, order.ProductSlug, order.Provider, order.ProviderSessionID,
		order.AmountCents, order.Currency, order.Status)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}
