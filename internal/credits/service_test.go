package credits

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luckguide/luckguide-golang/internal/cache"
)

type fakeStore struct {
	balances map[int64]int
	err      error
	reads    int

	grantedTo      int64
	grantedCredits int
	grantApplied   bool

	debitRemaining int
	debitErr       error
}

func (f *fakeStore) ActiveBalance(ctx context.Context, userID int64) (int, bool, error) {
	f.reads++
	if f.err != nil {
		return 0, false, f.err
	}
	balance, ok := f.balances[userID]
	return balance, ok, nil
}

func (f *fakeStore) Grant(ctx context.Context, userID int64, credits int, provider, eventID string) (bool, error) {
	f.grantedTo = userID
	f.grantedCredits = credits
	return f.grantApplied, nil
}

func (f *fakeStore) Debit(ctx context.Context, userID int64, credits int) (int, error) {
	if f.debitErr != nil {
		return 0, f.debitErr
	}
	return f.debitRemaining, nil
}

func (f *fakeStore) Refund(ctx context.Context, userID int64, credits int) error {
	return nil
}

type fakeCache struct {
	m      map[string]string
	sets   int
	dels   int
	getErr error
	setErr error
}

func newFakeCache() *fakeCache {
	return &fakeCache{m: make(map[string]string)}
}

func (f *fakeCache) Get(ctx context.Context, parts ...string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.m[strings.Join(parts, ":")]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (f *fakeCache) Set(ctx context.Context, value string, ttl time.Duration, parts ...string) error {
	if f.setErr != nil {
		return f.setErr
	}
	f.sets++
	f.m[strings.Join(parts, ":")] = value
	return nil
}

func (f *fakeCache) Del(ctx context.Context, parts ...string) error {
	f.dels++
	delete(f.m, strings.Join(parts, ":"))
	return nil
}

func TestGetCreditsNoSession(t *testing.T) {
	store := &fakeStore{balances: map[int64]int{}}
	svc := &Service{Store: store, Cache: newFakeCache()}

	credits, err := svc.GetCredits(context.Background(), 0, false)
	assert.NoError(t, err)
	assert.Equal(t, 0, credits)
	assert.Equal(t, 0, store.reads, "anonymous callers must not hit the store")
}

func TestGetCreditsTrustsPositiveCachedValue(t *testing.T) {
	store := &fakeStore{balances: map[int64]int{7: 100}}
	c := newFakeCache()
	c.m["credits:7"] = "42"
	svc := &Service{Store: store, Cache: c}

	credits, err := svc.GetCredits(context.Background(), 7, false)
	assert.NoError(t, err)
	assert.Equal(t, 42, credits)
	assert.Equal(t, 0, store.reads)
}

func TestGetCreditsDistrustsCachedZero(t *testing.T) {
	store := &fakeStore{balances: map[int64]int{7: 5}}
	c := newFakeCache()
	c.m["credits:7"] = "0"
	svc := &Service{Store: store, Cache: c}

	credits, err := svc.GetCredits(context.Background(), 7, false)
	assert.NoError(t, err)
	assert.Equal(t, 5, credits, "a cached zero must be re-verified against the store")
	assert.Equal(t, 1, store.reads)
	assert.Equal(t, "5", c.m["credits:7"])
}

func TestGetCreditsForceRefreshBypassesCache(t *testing.T) {
	store := &fakeStore{balances: map[int64]int{7: 150}}
	c := newFakeCache()
	c.m["credits:7"] = "42"
	svc := &Service{Store: store, Cache: c}

	credits, err := svc.GetCredits(context.Background(), 7, true)
	assert.NoError(t, err)
	assert.Equal(t, 150, credits)
	assert.Equal(t, 1, store.reads)
	assert.Equal(t, "150", c.m["credits:7"], "forced refresh must overwrite the cache")
}

func TestGetCreditsCacheMissReadsStoreAndCaches(t *testing.T) {
	store := &fakeStore{balances: map[int64]int{7: 30}}
	c := newFakeCache()
	svc := &Service{Store: store, Cache: c}

	credits, err := svc.GetCredits(context.Background(), 7, false)
	assert.NoError(t, err)
	assert.Equal(t, 30, credits)
	assert.Equal(t, 1, c.sets)
	assert.Equal(t, "30", c.m["credits:7"])
}

func TestGetCreditsNoActiveRecord(t *testing.T) {
	store := &fakeStore{balances: map[int64]int{}}
	c := newFakeCache()
	svc := &Service{Store: store, Cache: c}

	credits, err := svc.GetCredits(context.Background(), 7, false)
	assert.NoError(t, err)
	assert.Equal(t, 0, credits)
	assert.Equal(t, 0, c.sets, "missing records must not be cached")
}

func TestGetCreditsStoreErrorPropagates(t *testing.T) {
	store := &fakeStore{err: errors.New("connection refused")}
	svc := &Service{Store: store, Cache: newFakeCache()}

	_, err := svc.GetCredits(context.Background(), 7, false)
	require.Error(t, err, "store failures must not be masked as a zero balance")
}

func TestGetCreditsCacheFailureDegradesToStore(t *testing.T) {
	store := &fakeStore{balances: map[int64]int{7: 12}}
	c := newFakeCache()
	c.getErr = errors.New("redis down")
	c.setErr = errors.New("redis down")
	svc := &Service{Store: store, Cache: c}

	credits, err := svc.GetCredits(context.Background(), 7, false)
	assert.NoError(t, err)
	assert.Equal(t, 12, credits)
}

func TestGetCreditsNilCache(t *testing.T) {
	store := &fakeStore{balances: map[int64]int{7: 9}}
	svc := &Service{Store: store}

	credits, err := svc.GetCredits(context.Background(), 7, false)
	assert.NoError(t, err)
	assert.Equal(t, 9, credits)
}

func TestGrantInvalidatesCacheWhenApplied(t *testing.T) {
	store := &fakeStore{grantApplied: true}
	c := newFakeCache()
	c.m["credits:7"] = "42"
	svc := &Service{Store: store, Cache: c}

	applied, err := svc.Grant(context.Background(), 7, 80, "stripe", "evt_1")
	assert.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(7), store.grantedTo)
	assert.Equal(t, 80, store.grantedCredits)
	assert.Equal(t, 1, c.dels)
	_, ok := c.m["credits:7"]
	assert.False(t, ok)
}

func TestGrantReplayLeavesCacheAlone(t *testing.T) {
	store := &fakeStore{grantApplied: false}
	c := newFakeCache()
	c.m["credits:7"] = "42"
	svc := &Service{Store: store, Cache: c}

	applied, err := svc.Grant(context.Background(), 7, 80, "stripe", "evt_1")
	assert.NoError(t, err)
	assert.False(t, applied)
	assert.Equal(t, 0, c.dels)
}

func TestDebitInvalidatesCache(t *testing.T) {
	store := &fakeStore{debitRemaining: 15}
	c := newFakeCache()
	c.m["credits:7"] = "25"
	svc := &Service{Store: store, Cache: c}

	remaining, err := svc.Debit(context.Background(), 7, 10)
	assert.NoError(t, err)
	assert.Equal(t, 15, remaining)
	assert.Equal(t, 1, c.dels)
}

func TestDebitInsufficientPropagates(t *testing.T) {
	store := &fakeStore{debitErr: ErrInsufficientCredits}
	svc := &Service{Store: store, Cache: newFakeCache()}

	_, err := svc.Debit(context.Background(), 7, 10)
	assert.ErrorIs(t, err, ErrInsufficientCredits)
}
