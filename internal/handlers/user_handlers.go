package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/luckguide/luckguide-golang/internal/auth"
	"github.com/luckguide/luckguide-golang/internal/i18n"
	"github.com/luckguide/luckguide-golang/internal/middleware"
	"github.com/luckguide/luckguide-golang/internal/models"
)

type RegisterUserInput struct {
	FullName string `json:"fullName" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Locale   string `json:"locale"`
}

// Register is the handler for POST /v1/register. It creates the user and
// their credit record (balance 0) in one transaction.
func (h *Handlers) Register(c *gin.Context) {
	var input RegisterUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var password models.Password
	if err := password.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	locale := string(i18n.Parse(input.Locale))
	if input.Locale == "" {
		locale = string(i18n.LangFrom(c.Request.Context()))
	}

	ctx := c.Request.Context()
	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	var userID int64
	err = tx.QueryRowContext(ctx, `
INSERT INTO users (role, status, email, password_hash, full_name, locale)
VALUES ('user', 'active', $1, $2, $3, $4)
RETURNING id
`, strings.ToLower(strings.TrimSpace(input.Email)), password.Hash, input.FullName, locale).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			c.JSON(http.StatusConflict, gin.H{"error": "An account with this email already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	// Every user starts with an empty, active credit record.
	_, err = tx.ExecContext(ctx, `
INSERT INTO user_credits (user_id, balance, status)
VALUES ($1, 0, 'active')
`, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create credit record"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit registration"})
		return
	}

	token, err := auth.GenerateToken(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"token": token,
		"user": gin.H{
			"id":       userID,
			"email":    input.Email,
			"fullName": input.FullName,
			"locale":   locale,
		},
	})
}

type LoginInput struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/login.
func (h *Handlers) Login(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	err := h.DB.QueryRowContext(c.Request.Context(), `
SELECT id, status, password_hash FROM users WHERE email = $1
`, strings.ToLower(strings.TrimSpace(input.Email))).Scan(&user.ID, &user.Status, &user.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to look up user"})
		return
	}

	password := models.Password{Hash: user.PasswordHash}
	match, err := password.Matches(input.Password)
	if err != nil || !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if user.Status != "active" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account is disabled"})
		return
	}

	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// GetProfile is the handler for GET /v1/profile/me. The subscription block
// is optional: the row may not exist yet, or may lag behind a checkout the
// user just finished.
func (h *Handlers) GetProfile(c *gin.Context) {
	userID := middleware.UserID(c)
	ctx := c.Request.Context()

	var user models.User
	err := h.DB.QueryRowContext(ctx, `
SELECT id, role, status, email, full_name, locale, created_at
FROM users WHERE id = $1
`, userID).Scan(&user.ID, &user.Role, &user.Status, &user.Email, &user.FullName, &user.Locale, &user.CreatedAt)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}

	balance, err := h.Credits.GetCredits(ctx, userID, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load credits"})
		return
	}

	resp := gin.H{"user": user, "credits": balance}

	var sub models.UserSubscription
	err = h.DB.QueryRowContext(ctx, `
SELECT user_id, product_slug, provider_subscription_id, status, period_start, period_end
FROM subscriptions WHERE user_id = $1
`, userID).Scan(&sub.UserID, &sub.ProductSlug, &sub.ProviderSubscriptionID, &sub.Status, &sub.PeriodStart, &sub.PeriodEnd)
	if err == nil {
		resp["subscription"] = sub
	} else if !errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load subscription"})
		return
	}

	c.JSON(http.StatusOK, resp)
}
