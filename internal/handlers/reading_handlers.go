package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luckguide/luckguide-golang/internal/ai"
	"github.com/luckguide/luckguide-golang/internal/credits"
	"github.com/luckguide/luckguide-golang/internal/events"
	"github.com/luckguide/luckguide-golang/internal/i18n"
	"github.com/luckguide/luckguide-golang/internal/middleware"
)

type CreateReadingInput struct {
	Name      string `json:"name" binding:"required"`
	BirthDate string `json:"birthDate" binding:"required"`
	Question  string `json:"question"`
}

// CreateReading is the handler for POST /v1/readings. Generating a reading
// is the product usage that debits credits.
func (h *Handlers) CreateReading(c *gin.Context) {
	userID := middleware.UserID(c)

	var input CreateReadingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	cost := h.ReadingCost
	if cost <= 0 {
		cost = 10
	}

	// Debit up front; the balance check and subtraction are one locked
	// store transaction, so two tabs cannot both spend the last credits.
	remaining, err := h.Credits.Debit(ctx, userID, cost)
	if err != nil {
		if errors.Is(err, credits.ErrInsufficientCredits) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": "Not enough credits for a reading"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to charge credits"})
		return
	}

	lang := i18n.LangFrom(ctx)
	reading, tokens, err := h.AIService.GenerateReading(ctx, lang, ai.ReadingRequest{
		Name:      input.Name,
		BirthDate: input.BirthDate,
		Question:  input.Question,
	})
	if err != nil {
		// Give the credits back; the user got nothing for them.
		if rerr := h.Credits.Refund(ctx, userID, cost); rerr != nil {
			log.Printf("readings: refund after failed generation for user %d: %v", userID, rerr)
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to generate reading"})
		return
	}

	h.Bus.Publish(events.CreditRefresh{UserID: userID, Credits: remaining})

	c.JSON(http.StatusOK, gin.H{
		"reading":          reading,
		"tokensUsed":       tokens,
		"creditsRemaining": remaining,
	})
}
