package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderJSONOmitsUnsetOptionalFields(t *testing.T) {
	b, err := json.Marshal(Order{Ref: "ord_1", Status: OrderStatusPending})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "paidAt")
	assert.NotContains(t, string(b), "userEmail")
}

func TestOrderJSONRendersOptionalFieldsFlat(t *testing.T) {
	paid := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	email := "reader@example.com"

	b, err := json.Marshal(Order{Ref: "ord_1", PaidAt: &paid, UserEmail: &email})
	require.NoError(t, err)
	assert.Contains(t, string(b), `"paidAt":"2026-08-01T12:00:00Z"`)
	assert.Contains(t, string(b), `"userEmail":"reader@example.com"`)
}
