package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luckguide/luckguide-golang/internal/models"
)

type fakePaymentStore struct {
	trialClaimed bool
	claimCalls   int
	claimErr     error
	releaseCalls int

	orders   []models.Order
	orderErr error
}

func (f *fakePaymentStore) ClaimTrial(ctx context.Context, userID int64) (bool, error) {
	f.claimCalls++
	if f.claimErr != nil {
		return false, f.claimErr
	}
	if f.trialClaimed {
		return false, nil
	}
	f.trialClaimed = true
	return true, nil
}

func (f *fakePaymentStore) ReleaseTrial(ctx context.Context, userID int64) error {
	f.releaseCalls++
	f.trialClaimed = false
	return nil
}

func (f *fakePaymentStore) CreateOrder(ctx context.Context, order models.Order) error {
	if f.orderErr != nil {
		return f.orderErr
	}
	f.orders = append(f.orders, order)
	return nil
}

type fakeProvider struct {
	calls   int
	err     error
	session CheckoutSession
}

func (f *fakeProvider) CreateSession(ctx context.Context, req SessionRequest) (*CheckoutSession, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	s := f.session
	return &s, nil
}

func paidProduct() models.Product {
	return models.Product{
		ID:         2,
		Slug:       "deep-insight-pack",
		Name:       "Deep Insight Pack",
		PriceCents: 7900,
		Currency:   "usd",
		Credits:    80,
		Mode:       models.ProductModePayment,
	}
}

func trialProduct() models.Product {
	return models.Product{
		ID:         3,
		Slug:       "luck-guide-monthly",
		Name:       "Luck Guide Monthly",
		PriceCents: 1990,
		Currency:   "usd",
		Credits:    200,
		Mode:       models.ProductModeSubscription,
		TrialDays:  7,
	}
}

func TestCreateCheckoutRequiresEmail(t *testing.T) {
	store := &fakePaymentStore{}
	stripe := &fakeProvider{}
	i := NewInitiator(store, stripe, &fakeProvider{})

	_, err := i.CreateCheckout(context.Background(), models.User{ID: 7}, paidProduct(), "usd", ProviderStripe)
	assert.ErrorIs(t, err, ErrMissingEmail)
	assert.Equal(t, 0, stripe.calls, "the provider must not be called without an email")
	assert.Empty(t, store.orders)
}

func TestCreateCheckoutRecordsPendingOrder(t *testing.T) {
	store := &fakePaymentStore{}
	stripe := &fakeProvider{session: CheckoutSession{SessionID: "cs_test_1", ClientSecret: "secret_1"}}
	i := NewInitiator(store, stripe, &fakeProvider{})

	user := models.User{ID: 7, Email: "reader@example.com"}
	sess, err := i.CreateCheckout(context.Background(), user, paidProduct(), "", ProviderStripe)
	require.NoError(t, err)

	assert.Equal(t, "cs_test_1", sess.SessionID)
	assert.Equal(t, "secret_1", sess.ClientSecret)
	assert.Equal(t, ProviderStripe, sess.Provider)

	require.Len(t, store.orders, 1)
	order := store.orders[0]
	assert.NotEmpty(t, order.Ref)
	assert.Equal(t, int64(7), order.UserID)
	assert.Equal(t, "deep-insight-pack", order.ProductSlug)
	assert.Equal(t, ProviderStripe, order.Provider)
	assert.Equal(t, "cs_test_1", order.ProviderSessionID)
	assert.Equal(t, int64(7900), order.AmountCents)
	assert.Equal(t, "usd", order.Currency, "currency falls back to the product's")
	assert.Equal(t, models.OrderStatusPending, order.Status)
}

func TestCreateCheckoutTrialOnlyOnce(t *testing.T) {
	store := &fakePaymentStore{}
	stripe := &fakeProvider{session: CheckoutSession{SessionID: "cs_trial", ClientSecret: "s"}}
	i := NewInitiator(store, stripe, &fakeProvider{})

	user := models.User{ID: 7, Email: "reader@example.com"}

	_, err := i.CreateCheckout(context.Background(), user, trialProduct(), "usd", ProviderStripe)
	require.NoError(t, err)

	_, err = i.CreateCheckout(context.Background(), user, trialProduct(), "usd", ProviderStripe)
	assert.ErrorIs(t, err, ErrTrialAlreadyUsed)

	assert.Equal(t, 2, store.claimCalls)
	assert.Equal(t, 1, stripe.calls, "the rejected retry must never reach the provider")
	assert.Len(t, store.orders, 1)
}

func TestCreateCheckoutAirwallexRejectsSubscriptions(t *testing.T) {
	store := &fakePaymentStore{}
	awx := &fakeProvider{}
	i := NewInitiator(store, &fakeProvider{}, awx)

	user := models.User{ID: 7, Email: "reader@example.com"}
	_, err := i.CreateCheckout(context.Background(), user, trialProduct(), "usd", ProviderAirwallex)
	assert.ErrorIs(t, err, ErrUnsupportedMode)
	assert.Equal(t, 0, awx.calls)
	assert.Equal(t, 0, store.claimCalls, "no trial is burned on a rejected provider")
}

func TestCreateCheckoutProviderErrorLeavesNoOrder(t *testing.T) {
	store := &fakePaymentStore{}
	stripe := &fakeProvider{err: errors.New("stripe: api unavailable")}
	i := NewInitiator(store, stripe, &fakeProvider{})

	user := models.User{ID: 7, Email: "reader@example.com"}
	_, err := i.CreateCheckout(context.Background(), user, paidProduct(), "usd", ProviderStripe)
	assert.Error(t, err)
	assert.Empty(t, store.orders)
}

func TestCreateCheckoutTrialSurvivesProviderOutage(t *testing.T) {
	store := &fakePaymentStore{}
	stripe := &fakeProvider{err: errors.New("stripe: api unavailable")}
	i := NewInitiator(store, stripe, &fakeProvider{})

	user := models.User{ID: 7, Email: "reader@example.com"}
	_, err := i.CreateCheckout(context.Background(), user, trialProduct(), "usd", ProviderStripe)
	require.Error(t, err)
	assert.Equal(t, 1, store.releaseCalls, "a failed session must give the trial claim back")

	// The outage passes; the same user retries and still gets their trial.
	stripe.err = nil
	stripe.session = CheckoutSession{SessionID: "cs_trial_retry", ClientSecret: "s"}
	sess, err := i.CreateCheckout(context.Background(), user, trialProduct(), "usd", ProviderStripe)
	require.NoError(t, err)
	assert.Equal(t, "cs_trial_retry", sess.SessionID)
	assert.Len(t, store.orders, 1)
}

func TestCreateCheckoutTrialReleasedOnOrderFailure(t *testing.T) {
	store := &fakePaymentStore{orderErr: errors.New("db down")}
	stripe := &fakeProvider{session: CheckoutSession{SessionID: "cs_t", ClientSecret: "s"}}
	i := NewInitiator(store, stripe, &fakeProvider{})

	user := models.User{ID: 7, Email: "reader@example.com"}
	_, err := i.CreateCheckout(context.Background(), user, trialProduct(), "usd", ProviderStripe)
	require.Error(t, err)
	assert.Equal(t, 1, store.releaseCalls)
	assert.False(t, store.trialClaimed)
}

func TestCreateCheckoutUnknownProviderDefaultsToStripe(t *testing.T) {
	store := &fakePaymentStore{}
	stripe := &fakeProvider{session: CheckoutSession{SessionID: "cs_d", ClientSecret: "s"}}
	awx := &fakeProvider{}
	i := NewInitiator(store, stripe, awx)

	user := models.User{ID: 7, Email: "reader@example.com"}
	sess, err := i.CreateCheckout(context.Background(), user, paidProduct(), "usd", "")
	require.NoError(t, err)

	assert.Equal(t, ProviderStripe, sess.Provider)
	assert.Equal(t, 1, stripe.calls)
	assert.Equal(t, 0, awx.calls)
}
