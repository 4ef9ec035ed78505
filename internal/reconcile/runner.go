package reconcile

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/luckguide/luckguide-golang/internal/events"
)

// DefaultDelays is the observed polling schedule: the webhook usually lands
// within a few seconds of checkout completion.
var DefaultDelays = []time.Duration{3 * time.Second, 5 * time.Second, 7 * time.Second}

// CreditReader is the one read path for balances (implemented by
// credits.Service).
type CreditReader interface {
	GetCredits(ctx context.Context, userID int64, forceRefresh bool) (int, error)
}

// Publisher broadcasts the UI refresh notification (implemented by
// events.Bus).
type Publisher interface {
	Publish(ev events.CreditRefresh)
}

// Runner reconciles a user's displayed balance with the store after a
// checkout completes. The provider webhook lands asynchronously, so the
// runner polls with forced refreshes until the balance grows past its
// pre-checkout value, then broadcasts exactly one refresh event. If the
// webhook never shows up inside the schedule, it broadcasts whatever the
// final forced refresh produced: the user is never left unresolved.
type Runner struct {
	Credits CreditReader
	Bus     Publisher
	Delays  []time.Duration
	Sleep   Sleeper

	mu       sync.Mutex
	inflight map[int64]bool
}

func NewRunner(credits CreditReader, bus Publisher) *Runner {
	return &Runner{
		Credits:  credits,
		Bus:      bus,
		Delays:   DefaultDelays,
		inflight: make(map[int64]bool),
	}
}

// Reconcile polls until the balance exceeds before, then publishes the new
// balance. It always publishes exactly once, unless the context is canceled
// first (navigation away abandons the loop).
func (r *Runner) Reconcile(ctx context.Context, userID int64, before int) (int, error) {
	final := before

	done, err := Retry(ctx, r.Delays, r.Sleep, func(ctx context.Context, attempt int) (bool, error) {
		balance, err := r.Credits.GetCredits(ctx, userID, true)
		if err != nil {
			return false, err
		}
		if balance > before {
			final = balance
			return true, nil
		}
		return false, nil
	})
	if err != nil && ctx.Err() != nil {
		return before, err
	}

	if !done {
		// Exhausted without seeing the credit land. One last forced
		// refresh so the UI at least shows the store's current truth.
		if balance, ferr := r.Credits.GetCredits(ctx, userID, true); ferr == nil {
			final = balance
		} else {
			log.Printf("reconcile: final refresh failed for user %d: %v", userID, ferr)
		}
		if err != nil {
			log.Printf("reconcile: polling gave up for user %d: %v", userID, err)
		}
	}

	r.Bus.Publish(events.CreditRefresh{UserID: userID, Credits: final})
	return final, nil
}

// Start launches Reconcile in the background, at most once per user at a
// time: a duplicated completion signal must not spawn a second loop.
// It reports whether a new loop was started.
func (r *Runner) Start(userID int64, before int) bool {
	r.mu.Lock()
	if r.inflight[userID] {
		r.mu.Unlock()
		return false
	}
	r.inflight[userID] = true
	r.mu.Unlock()

	go func() {
		defer func() {
			r.mu.Lock()
			delete(r.inflight, userID)
			r.mu.Unlock()
		}()
		if _, err := r.Reconcile(context.Background(), userID, before); err != nil {
			log.Printf("reconcile: loop for user %d aborted: %v", userID, err)
		}
	}()
	return true
}
