package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/luckguide/luckguide-golang/internal/middleware"
	"github.com/luckguide/luckguide-golang/internal/models"
	"github.com/luckguide/luckguide-golang/internal/payments"
)

// ListProducts is the handler for GET /v1/products (public pricing page).
func (h *Handlers) ListProducts(c *gin.Context) {
	rows, err := h.DB.QueryContext(c.Request.Context(), `
SELECT id, slug, name, description, price_cents, currency, credits, mode, trial_days
FROM products WHERE active = TRUE
ORDER BY price_cents
`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(&p.ID, &p.Slug, &p.Name, &p.Description, &p.PriceCents,
			&p.Currency, &p.Credits, &p.Mode, &p.TrialDays); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan product"})
			return
		}
		p.Active = true
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

type CreateCheckoutInput struct {
	Product  string `json:"product" binding:"required"`
	Currency string `json:"currency"`
	Provider string `json:"provider"`
}

// CreateCheckout is the handler for POST /v1/checkout. It returns the
// provider session id and client secret for the hosted payment widget.
func (h *Handlers) CreateCheckout(c *gin.Context) {
	userID := middleware.UserID(c)

	var input CreateCheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	var user models.User
	err := h.DB.QueryRowContext(ctx, `
SELECT id, email, full_name FROM users WHERE id = $1 AND status = 'active'
`, userID).Scan(&user.ID, &user.Email, &user.FullName)
	if err != nil {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is not active"})
		return
	}

	// Clients may send the display name or a differently-cased slug; collapse
	// it to the canonical form before the lookup.
	productSlug := models.MakeSlug(input.Product)

	var product models.Product
	err = h.DB.QueryRowContext(ctx, `
SELECT id, slug, name, price_cents, currency, credits, mode, trial_days
FROM products WHERE slug = $1 AND active = TRUE
`, productSlug).Scan(&product.ID, &product.Slug, &product.Name, &product.PriceCents,
		&product.Currency, &product.Credits, &product.Mode, &product.TrialDays)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown product"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load product"})
		return
	}

	sess, err := h.Checkout.CreateCheckout(ctx, user, product, input.Currency, input.Provider)
	if err != nil {
		switch {
		case errors.Is(err, payments.ErrMissingEmail):
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "An email address is required before purchasing"})
		case errors.Is(err, payments.ErrTrialAlreadyUsed):
			c.JSON(http.StatusConflict, gin.H{"error": "Free trial has already been used on this account"})
		case errors.Is(err, payments.ErrUnsupportedMode):
			c.JSON(http.StatusBadRequest, gin.H{"error": "This provider does not support subscriptions"})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to create checkout session"})
		}
		return
	}

	c.JSON(http.StatusOK, sess)
}

type CompleteCheckoutInput struct {
	// Before is the balance the client saw before starting checkout; the
	// reconciliation loop polls until the store moves past it.
	Before int `json:"before"`
}

// CompleteCheckout is the handler for POST /v1/checkout/complete. The hosted
// widget calls it when the user finishes paying. The webhook that actually
// lands the credits is asynchronous, so this kicks off the bounded polling
// loop; the refreshed balance arrives on the credit event stream.
func (h *Handlers) CompleteCheckout(c *gin.Context) {
	userID := middleware.UserID(c)

	var input CompleteCheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Before < 0 {
		input.Before = 0
	}

	started := h.Reconciler.Start(userID, input.Before)
	c.JSON(http.StatusAccepted, gin.H{"reconciling": started})
}
