package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/luckguide/luckguide-golang/internal/models"
)

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// ListOrders is the handler for GET /v1/admin/orders.
func (h *Handlers) ListOrders(c *gin.Context) {
	limit, offset := pagination(c)

	rows, err := h.DB.QueryContext(c.Request.Context(), `
SELECT o.id, o.ref, o.user_id, u.email, o.product_slug, o.provider,
       o.provider_session_id, o.amount_cents, o.currency, o.status, o.created_at, o.paid_at
FROM orders o
JOIN users u ON u.id = o.user_id
ORDER BY o.created_at DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var o models.Order
		var email sql.NullString
		var paidAt sql.NullTime
		if err := rows.Scan(&o.ID, &o.Ref, &o.UserID, &email, &o.ProductSlug, &o.Provider,
			&o.ProviderSessionID, &o.AmountCents, &o.Currency, &o.Status, &o.CreatedAt, &paidAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan order"})
			return
		}
		if email.Valid {
			o.UserEmail = &email.String
		}
		if paidAt.Valid {
			t := paidAt.Time
			o.PaidAt = &t
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

// ListUsers is the handler for GET /v1/admin/users.
func (h *Handlers) ListUsers(c *gin.Context) {
	limit, offset := pagination(c)

	rows, err := h.DB.QueryContext(c.Request.Context(), `
SELECT u.id, u.role, u.status, u.email, u.full_name, u.locale, u.created_at,
       COALESCE(uc.balance, 0)
FROM users u
LEFT JOIN user_credits uc ON uc.user_id = u.id
ORDER BY u.created_at DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}
	defer rows.Close()

	type userRow struct {
		models.User
		Credits int `json:"credits"`
	}

	users := []userRow{}
	for rows.Next() {
		var u userRow
		if err := rows.Scan(&u.ID, &u.Role, &u.Status, &u.Email, &u.FullName, &u.Locale,
			&u.CreatedAt, &u.Credits); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan user"})
			return
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

type UpdateUserStatusInput struct {
	Status string `json:"status" binding:"required,oneof=active disabled"`
}

// UpdateUserStatus is the handler for PATCH /v1/admin/users/:id/status.
// Disabling a user also disables their credit record, so the read path stops
// serving a balance for them.
func (h *Handlers) UpdateUserStatus(c *gin.Context) {
	targetID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}

	var input UpdateUserStatusInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
UPDATE users SET status = $2, updated_at = NOW() WHERE id = $1
`, targetID, input.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	if n, _ := res.RowsAffected(); n == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	_, err = tx.ExecContext(ctx, `
UPDATE user_credits SET status = $2, updated_at = NOW() WHERE user_id = $1
`, targetID, input.Status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update credit record"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit status change"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": targetID, "status": input.Status})
}

// ListContacts is the handler for GET /v1/admin/contacts.
func (h *Handlers) ListContacts(c *gin.Context) {
	limit, offset := pagination(c)

	rows, err := h.DB.QueryContext(c.Request.Context(), `
SELECT id, name, email, message, locale, created_at
FROM contacts
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load contacts"})
		return
	}
	defer rows.Close()

	contacts := []models.Contact{}
	for rows.Next() {
		var m models.Contact
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Message, &m.Locale, &m.CreatedAt); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan contact"})
			return
		}
		contacts = append(contacts, m)
	}
	if err := rows.Err(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load contacts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"contacts": contacts})
}
