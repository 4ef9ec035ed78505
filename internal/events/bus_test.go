package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusDeliversToSubscribers(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(CreditRefresh{UserID: 7, Credits: 80})

	select {
	case ev := <-ch:
		assert.Equal(t, CreditRefresh{UserID: 7, Credits: 80}, ev)
	case <-time.After(time.Second):
		t.Fatal("event never delivered")
	}
}

func TestBusCancelStopsDelivery(t *testing.T) {
	bus := NewBus()
	ch, cancel := bus.Subscribe()
	cancel()

	bus.Publish(CreditRefresh{UserID: 7, Credits: 80})

	_, open := <-ch
	assert.False(t, open, "canceled subscription channel must be closed")
}

func TestBusPublishNeverBlocks(t *testing.T) {
	bus := NewBus()
	_, cancel := bus.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		// Far more events than the subscriber buffer holds; nobody reads.
		for i := 0; i < 100; i++ {
			bus.Publish(CreditRefresh{UserID: 7, Credits: i})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestBusMultipleSubscribers(t *testing.T) {
	bus := NewBus()
	ch1, cancel1 := bus.Subscribe()
	defer cancel1()
	ch2, cancel2 := bus.Subscribe()
	defer cancel2()

	bus.Publish(CreditRefresh{UserID: 9, Credits: 30})

	for _, ch := range []<-chan CreditRefresh{ch1, ch2} {
		select {
		case ev := <-ch:
			require.Equal(t, int64(9), ev.UserID)
		case <-time.After(time.Second):
			t.Fatal("subscriber missed the event")
		}
	}
}
