package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidOrderStatus(t *testing.T) {
	valid := []OrderStatus{
		OrderStatusPending,
		OrderStatusConfirmed,
		OrderStatusInPreparation,
		OrderStatusOutForDelivery,
		OrderStatusDelivered,
		OrderStatusCancelled,
	}
	for _, s := range valid {
		assert.True(t, ValidOrderStatus(s), "expected %q to be valid", s)
	}

	assert.False(t, ValidOrderStatus("shipped"))
	assert.False(t, ValidOrderStatus(""))
	assert.False(t, ValidOrderStatus("Pending"))
}

func TestCanTransition(t *testing.T) {
	// forward steps
	assert.True(t, CanTransition(OrderStatusPending, OrderStatusConfirmed))
	assert.True(t, CanTransition(OrderStatusConfirmed, OrderStatusInPreparation))
	assert.True(t, CanTransition(OrderStatusInPreparation, OrderStatusOutForDelivery))
	assert.True(t, CanTransition(OrderStatusOutForDelivery, OrderStatusDelivered))

	// cancellation from any non-terminal state
	assert.True(t, CanTransition(OrderStatusPending, OrderStatusCancelled))
	assert.True(t, CanTransition(OrderStatusOutForDelivery, OrderStatusCancelled))

	// no skipping, no going back
	assert.False(t, CanTransition(OrderStatusPending, OrderStatusInPreparation))
	assert.False(t, CanTransition(OrderStatusPending, OrderStatusDelivered))
	assert.False(t, CanTransition(OrderStatusConfirmed, OrderStatusPending))

	// terminal states admit nothing
	assert.False(t, CanTransition(OrderStatusDelivered, OrderStatusCancelled))
	assert.False(t, CanTransition(OrderStatusCancelled, OrderStatusPending))

	// unknown values never transition
	assert.False(t, CanTransition("shipped", OrderStatusConfirmed))
	assert.False(t, CanTransition(OrderStatusPending, "shipped"))
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(4900), Cents(49.00))
	assert.Equal(t, int64(2450), Cents(24.50))
	assert.Equal(t, int64(0), Cents(0))

	// rounding, never truncation: 19.99 is not representable exactly and
	// must not collapse to 1998
	assert.Equal(t, int64(1999), Cents(19.99))
	assert.Equal(t, int64(1), Cents(0.005))
}
