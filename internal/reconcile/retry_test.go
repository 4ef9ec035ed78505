package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// recordingSleeper records requested delays without actually sleeping.
type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.delays = append(r.delays, d)
	return nil
}

func TestRetryStopsWhenDone(t *testing.T) {
	sleeper := &recordingSleeper{}
	attempts := 0

	done, err := Retry(context.Background(),
		[]time.Duration{time.Second, 2 * time.Second, 3 * time.Second}, sleeper.sleep,
		func(ctx context.Context, attempt int) (bool, error) {
			attempts++
			return attempt == 2, nil
		})

	assert.NoError(t, err)
	assert.True(t, done)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeper.delays,
		"the third delay must never be waited")
}

func TestRetryExhaustsSchedule(t *testing.T) {
	sleeper := &recordingSleeper{}
	attempts := 0

	done, err := Retry(context.Background(),
		[]time.Duration{time.Second, time.Second, time.Second}, sleeper.sleep,
		func(ctx context.Context, attempt int) (bool, error) {
			attempts++
			return false, nil
		})

	assert.NoError(t, err)
	assert.False(t, done)
	assert.Equal(t, 3, attempts)
}

func TestRetryContinuesPastErrors(t *testing.T) {
	sleeper := &recordingSleeper{}

	done, err := Retry(context.Background(),
		[]time.Duration{time.Second, time.Second}, sleeper.sleep,
		func(ctx context.Context, attempt int) (bool, error) {
			if attempt == 1 {
				return false, errors.New("transient")
			}
			return true, nil
		})

	assert.NoError(t, err)
	assert.True(t, done)
}

func TestRetryReportsLastErrorOnExhaustion(t *testing.T) {
	sleeper := &recordingSleeper{}
	boom := errors.New("store down")

	done, err := Retry(context.Background(),
		[]time.Duration{time.Second, time.Second}, sleeper.sleep,
		func(ctx context.Context, attempt int) (bool, error) {
			return false, boom
		})

	assert.False(t, done)
	assert.ErrorIs(t, err, boom)
}

func TestRetryAbortsOnCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	done, err := Retry(ctx, []time.Duration{time.Second}, Sleep,
		func(ctx context.Context, attempt int) (bool, error) {
			attempts++
			return false, nil
		})

	assert.False(t, done)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, attempts)
}
