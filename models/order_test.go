package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderSnapshotsItems(t *testing.T) {
	items := []CartItem{item("p1", "10.00", 2)}
	order := NewOrder("u1", "u1@example.com", "User One", items, decimal.RequireFromString("20.00"))

	// Mutating the source slice must not leak into the order snapshot.
	items[0].Quantity = 99

	require.Len(t, order.Items, 1)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, OrderPending, order.Status)
}

func TestSetStatusStampsShippedOnce(t *testing.T) {
	order := NewOrder("u1", "u1@example.com", "User One", []CartItem{item("p1", "10.00", 1)}, decimal.RequireFromString("10.00"))

	order.SetStatus(OrderShipped)
	require.NotNil(t, order.ShippedAt)
	first := *order.ShippedAt

	order.SetStatus(OrderShipped)
	assert.Equal(t, first, *order.ShippedAt, "shippedAt must not re-stamp")
}

func TestSetStatusStampsDeliveredOnce(t *testing.T) {
	order := NewOrder("u1", "u1@example.com", "User One", []CartItem{item("p1", "10.00", 1)}, decimal.RequireFromString("10.00"))

	order.SetStatus(OrderDelivered)
	require.NotNil(t, order.DeliveredAt)
	first := *order.DeliveredAt

	order.SetStatus(OrderDelivered)
	assert.Equal(t, first, *order.DeliveredAt)
}

func TestSetStatusAlwaysBumpsUpdatedAt(t *testing.T) {
	order := NewOrder("u1", "u1@example.com", "User One", []CartItem{item("p1", "10.00", 1)}, decimal.RequireFromString("10.00"))
	before := order.UpdatedAt

	order.SetStatus(OrderConfirmed)

	assert.False(t, order.UpdatedAt.Before(before))
	assert.Nil(t, order.ShippedAt)
	assert.Nil(t, order.DeliveredAt)
}

func TestParseOrderStatus(t *testing.T) {
	status, err := ParseOrderStatus("shipped")
	require.NoError(t, err)
	assert.Equal(t, OrderShipped, status)

	_, err = ParseOrderStatus("bogus")
	assert.Error(t, err)
}
