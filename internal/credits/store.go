package credits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/luckguide/luckguide-golang/internal/models"
)

// SQLStore is the Postgres-backed credit store.
type SQLStore struct {
	DB *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{DB: db}
}

func (s *SQLStore) ActiveBalance(ctx context.Context, userID int64) (int, bool, error) {
	var balance int
	err := s.DB.QueryRowContext(ctx, `
SELECT balance FROM user_credits
WHERE user_id = $1 AND status = $2
`, userID, models.CreditStatusActive).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read credit balance: %w", err)
	}
	return balance, true, nil
}

func (s *SQLStore) Grant(ctx context.Context, userID int64, credits int, provider, eventID string) (bool, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	// The event ledger doubles as the idempotence key: a replayed webhook
	// conflicts here and grants nothing.
	res, err := tx.ExecContext(ctx, `
INSERT INTO webhook_events (provider, event_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, provider, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to record webhook event: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx, `
INSERT INTO user_credits (user_id, balance)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE SET
  balance = user_credits.balance + EXCLUDED.balance,
  updated_at = NOW()
`, userID, credits)
	if err != nil {
		return false, fmt.Errorf("failed to grant credits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLStore) Debit(ctx context.Context, userID int64, credits int) (int, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var balance int
	err = tx.QueryRowContext(ctx, `
SELECT balance FROM user_credits
WHERE user_id = $1 AND status = $2
FOR UPDATE
`, userID, models.CreditStatusActive).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrInsufficientCredits
	}
	if err != nil {
		return 0, fmt.Errorf("failed to lock credit balance: %w", err)
	}

	if balance < credits {
		return balance, ErrInsufficientCredits
	}
	balance -= credits

	_, err = tx.ExecContext(ctx, `
UPDATE user_credits SET balance = $2, updated_at = NOW()
WHERE user_id = $1
`, userID, balance)
	if err != nil {
		return 0, fmt.Errorf("failed to debit credits: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return balance, nil
}

func (s *SQLStore) Refund(ctx context.Context, userID int64, credits int) error {
	_, err := s.DB.ExecContext(ctx, `
UPDATE user_credits SET balance = balance + $2, updated_at = NOW()
WHERE user_id = $1
`, userID, credits)
	if err != nil {
		return fmt.Errorf("failed to refund credits: %w", err)
	}
	return nil
}
