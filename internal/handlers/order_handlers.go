package handlers

import (
	"context"
	"log"
	"time"

	"github.com/luckguide/luckguide-golang/internal/models"
)

// ExpireStaleOrders marks pending orders older than a day as expired. The
// provider session itself has long since timed out by then; this just keeps
// the admin order list honest. Called from the background worker.
func (h *Handlers) ExpireStaleOrders() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	res, err := h.DB.ExecContext(ctx, `
UPDATE orders SET status = $1
WHERE status = $2 AND created_at < NOW() - INTERVAL '24 hours'
`, models.OrderStatusExpired, models.OrderStatusPending)
	if err != nil {
		log.Printf("order sweeper: failed to expire stale orders: %v", err)
		return
	}

	if n, _ := res.RowsAffected(); n > 0 {
		log.Printf("order sweeper: expired %d stale pending orders", n)
	}
}
