package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luckguide/luckguide-golang/internal/i18n"
)

type ContactInput struct {
	Name    string `json:"name" binding:"required"`
	Email   string `json:"email" binding:"required,email"`
	Message string `json:"message" binding:"required"`
}

// SubmitContact is the handler for POST /v1/contact.
func (h *Handlers) SubmitContact(c *gin.Context) {
	var input ContactInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	locale := string(i18n.LangFrom(ctx))

	_, err := h.DB.ExecContext(ctx, `
INSERT INTO contacts (name, email, message, locale)
VALUES ($1, $2, $3, $4)
`, input.Name, input.Email, input.Message, locale)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save message"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Thanks! We'll get back to you soon."})
}
