package credits

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/luckguide/luckguide-golang/internal/cache"
)

// ErrInsufficientCredits is returned by Debit when the balance cannot cover
// the requested amount.
var ErrInsufficientCredits = errors.New("credits: insufficient balance")

// Store is the durable credit record, the single source of truth. The read
// path never writes to it; only Grant/Debit/Refund mutate balances.
type Store interface {
	// ActiveBalance returns the balance for an active credit record.
	// ok is false when no active record exists (not an error).
	ActiveBalance(ctx context.Context, userID int64) (balance int, ok bool, err error)

	// Grant credits a completed purchase, keyed by the provider event so
	// webhook replays apply at most once. applied is false on a replay.
	Grant(ctx context.Context, userID int64, credits int, provider, eventID string) (applied bool, err error)

	// Debit subtracts usage credits, failing with ErrInsufficientCredits
	// rather than going negative.
	Debit(ctx context.Context, userID int64, credits int) (remaining int, err error)

	// Refund returns credits taken by a Debit whose work later failed.
	Refund(ctx context.Context, userID int64, credits int) error
}

// Cache is the short-TTL read accelerator in front of the Store. It is
// best-effort: every error here degrades to a store read.
type Cache interface {
	Get(ctx context.Context, parts ...string) (string, error)
	Set(ctx context.Context, value string, ttl time.Duration, parts ...string) error
	Del(ctx context.Context, parts ...string) error
}

const (
	cacheKeyspace = "credits"
	defaultTTL    = time.Hour
)

// Service combines Store and Cache into the one credit-balance read path
// the rest of the application uses.
type Service struct {
	Store Store
	Cache Cache // nil disables caching entirely
	TTL   time.Duration
}

func NewService(store Store, c Cache) *Service {
	return &Service{Store: store, Cache: c, TTL: defaultTTL}
}

func (s *Service) ttl() time.Duration {
	if s.TTL > 0 {
		return s.TTL
	}
	return defaultTTL
}

// GetCredits returns the user's credit balance. userID 0 means "no session"
// and yields 0 without touching anything.
//
// A cached value is trusted only when it is strictly positive: a cached zero
// might be a stale or uninitialized entry, so it always falls through to the
// store rather than being returned as real. Store errors propagate; they are
// never masked as a zero balance.
func (s *Service) GetCredits(ctx context.Context, userID int64, forceRefresh bool) (int, error) {
	if userID == 0 {
		return 0, nil
	}

	key := strconv.FormatInt(userID, 10)

	if !forceRefresh && s.Cache != nil {
		raw, err := s.Cache.Get(ctx, cacheKeyspace, key)
		if err == nil {
			if v, convErr := strconv.Atoi(raw); convErr == nil && v > 0 {
				return v, nil
			}
			// zero or garbage: re-verify against the store
		} else if !errors.Is(err, cache.ErrMiss) {
			log.Printf("credits: cache read failed for user %d: %v", userID, err)
		}
	}

	balance, ok, err := s.Store.ActiveBalance(ctx, userID)
	if err != nil {
		return 0, err
	}
	if !ok {
		// no active record; leave the cache alone
		return 0, nil
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, strconv.Itoa(balance), s.ttl(), cacheKeyspace, key); err != nil {
			log.Printf("credits: cache write failed for user %d: %v", userID, err)
		}
	}

	return balance, nil
}

// Grant applies a webhook-driven credit purchase and drops the cached entry
// so the next read sees the new balance.
func (s *Service) Grant(ctx context.Context, userID int64, credits int, provider, eventID string) (bool, error) {
	applied, err := s.Store.Grant(ctx, userID, credits, provider, eventID)
	if err != nil {
		return false, err
	}
	if applied {
		s.invalidate(ctx, userID)
	}
	return applied, nil
}

// Debit charges usage credits and drops the cached entry.
func (s *Service) Debit(ctx context.Context, userID int64, credits int) (int, error) {
	remaining, err := s.Store.Debit(ctx, userID, credits)
	if err != nil {
		return 0, err
	}
	s.invalidate(ctx, userID)
	return remaining, nil
}

// Refund compensates a failed debit and drops the cached entry.
func (s *Service) Refund(ctx context.Context, userID int64, credits int) error {
	if err := s.Store.Refund(ctx, userID, credits); err != nil {
		return err
	}
	s.invalidate(ctx, userID)
	return nil
}

func (s *Service) invalidate(ctx context.Context, userID int64) {
	if s.Cache == nil {
		return
	}
	if err := s.Cache.Del(ctx, cacheKeyspace, strconv.FormatInt(userID, 10)); err != nil {
		log.Printf("credits: cache invalidation failed for user %d: %v", userID, err)
	}
}
