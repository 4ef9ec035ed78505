package events

import "sync"

// CreditRefresh tells display components to repaint the credit badge.
type CreditRefresh struct {
	UserID  int64 `json:"userId"`
	Credits int   `json:"credits"`
}

// Bus is a process-wide broadcast of credit refresh events. Delivery is
// best-effort: a subscriber that is not draining its channel misses events
// rather than blocking the publisher.
type Bus struct {
	mu   sync.Mutex
	subs map[int]chan CreditRefresh
	next int
}

func NewBus() *Bus {
	return &Bus{subs: make(map[int]chan CreditRefresh)}
}

// Subscribe returns a receive channel and a cancel function. Cancel must be
// called when the subscriber goes away (e.g. the SSE connection closes).
func (b *Bus) Subscribe() (<-chan CreditRefresh, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.next
	b.next++
	ch := make(chan CreditRefresh, 8)
	b.subs[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (b *Bus) Publish(ev CreditRefresh) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
