package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luckguide/luckguide-golang/internal/middleware"
)

// GetMyCredits is the handler for GET /v1/credits. ?refresh=1 bypasses the
// cache and re-reads the store (used by the post-checkout reconciliation).
func (h *Handlers) GetMyCredits(c *gin.Context) {
	userID := middleware.UserID(c)

	refresh := c.Query("refresh")
	force := refresh == "1" || refresh == "true"

	balance, err := h.Credits.GetCredits(c.Request.Context(), userID, force)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read credit balance"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"credits": balance})
}

// StreamCredits is the handler for GET /v1/credits/stream. It relays credit
// refresh events for the authenticated user as server-sent events, so every
// open tab repaints its credit badge when a reconciliation finishes.
func (h *Handlers) StreamCredits(c *gin.Context) {
	userID := middleware.UserID(c)

	ch, cancel := h.Bus.Subscribe()
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			if ev.UserID != userID {
				return true
			}
			c.SSEvent("credits", gin.H{"credits": ev.Credits})
			return true
		case <-ctx.Done():
			return false
		}
	})
}
