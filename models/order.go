package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus enumerates the order lifecycle states
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// ParseOrderStatus validates a status value from the wire.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch OrderStatus(strings.ToUpper(s)) {
	case OrderPending:
		return OrderPending, nil
	case OrderConfirmed:
		return OrderConfirmed, nil
	case OrderShipped:
		return OrderShipped, nil
	case OrderDelivered:
		return OrderDelivered, nil
	case OrderCancelled:
		return OrderCancelled, nil
	default:
		return "", fmt.Errorf("invalid order status %q", s)
	}
}

// Order represents a placed order. Items and TotalAmount are an
// immutable snapshot of the cart at creation time.
type Order struct {
	ID                  string          `json:"id,omitempty"`
	UserID              string          `json:"user_id"`
	UserEmail           string          `json:"user_email"`
	CustomerName        string          `json:"customer_name"`
	ShippingAddress     string          `json:"shipping_address"`
	PhoneNumber         string          `json:"phone_number"`
	Items               []CartItem      `json:"items"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	Status              OrderStatus     `json:"status"`
	PaypalTransactionID string          `json:"paypal_transaction_id,omitempty"`
	PaypalPaymentID     string          `json:"paypal_payment_id,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
	ShippedAt           *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt         *time.Time      `json:"delivered_at,omitempty"`
	Notes               string          `json:"notes,omitempty"`
}

// NewOrder snapshots the given items and total into a PENDING order.
func NewOrder(userID, userEmail, customerName string, items []CartItem, totalAmount decimal.Decimal) *Order {
	now := time.Now()
	snapshot := make([]CartItem, len(items))
	copy(snapshot, items)
	return &Order{
		UserID:       userID,
		UserEmail:    userEmail,
		CustomerName: customerName,
		Items:        snapshot,
		TotalAmount:  totalAmount,
		Status:       OrderPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SetStatus applies a status transition. ShippedAt and DeliveredAt are
// stamped exactly once, on the first transition into the matching state;
// repeated transitions do not re-stamp them.
func (o *Order) SetStatus(status OrderStatus) {
	now := time.Now()
	o.Status = status
	o.UpdatedAt = now

	if status == OrderShipped && o.ShippedAt == nil {
		o.ShippedAt = &now
	} else if status == OrderDelivered && o.DeliveredAt == nil {
		o.DeliveredAt = &now
	}
}

// TotalItems is the sum of snapshot quantities.
func (o *Order) TotalItems() int {
	count := 0
	for _, item := range o.Items {
		count += item.Quantity
	}
	return count
}
