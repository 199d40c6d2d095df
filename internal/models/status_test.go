package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vandonov/storefront/internal/models"
)

func TestOrderStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		name    string
		from    models.OrderStatus
		to      models.OrderStatus
		allowed bool
	}{
		{"PendingToProcessing", models.OrderStatusPending, models.OrderStatusProcessing, true},
		{"PendingToCancelled", models.OrderStatusPending, models.OrderStatusCancelled, true},
		{"PendingToCompleted", models.OrderStatusPending, models.OrderStatusCompleted, false},
		{"PendingToPending", models.OrderStatusPending, models.OrderStatusPending, false},
		{"ProcessingToCompleted", models.OrderStatusProcessing, models.OrderStatusCompleted, true},
		{"ProcessingToCancelled", models.OrderStatusProcessing, models.OrderStatusCancelled, true},
		{"ProcessingToPending", models.OrderStatusProcessing, models.OrderStatusPending, false},
		{"ProcessingToProcessing", models.OrderStatusProcessing, models.OrderStatusProcessing, false},
		{"CompletedToPending", models.OrderStatusCompleted, models.OrderStatusPending, false},
		{"CompletedToProcessing", models.OrderStatusCompleted, models.OrderStatusProcessing, false},
		{"CompletedToCancelled", models.OrderStatusCompleted, models.OrderStatusCancelled, false},
		{"CancelledToPending", models.OrderStatusCancelled, models.OrderStatusPending, false},
		{"CancelledToProcessing", models.OrderStatusCancelled, models.OrderStatusProcessing, false},
		{"CancelledToCompleted", models.OrderStatusCancelled, models.OrderStatusCompleted, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to))
		})
	}
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.False(t, models.OrderStatusPending.IsTerminal())
	assert.False(t, models.OrderStatusProcessing.IsTerminal())
	assert.True(t, models.OrderStatusCompleted.IsTerminal())
	assert.True(t, models.OrderStatusCancelled.IsTerminal())
}

func TestOrderStatusValid(t *testing.T) {
	assert.True(t, models.OrderStatusPending.Valid())
	assert.True(t, models.OrderStatusProcessing.Valid())
	assert.True(t, models.OrderStatusCompleted.Valid())
	assert.True(t, models.OrderStatusCancelled.Valid())
	assert.False(t, models.OrderStatus("shipped").Valid())
	assert.False(t, models.OrderStatus("").Valid())
}
