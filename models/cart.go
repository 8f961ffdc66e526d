package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem represents an item in the cart. Name, price and image are
// snapshots taken when the item was added; they do not track later
// catalog changes.
type CartItem struct {
	ProductID       string          `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ProductPrice    decimal.Decimal `json:"product_price"`
	ProductImageURL string          `json:"product_image_url"`
	Quantity        int             `json:"quantity"`
}

// Subtotal is unit price times quantity, computed, never stored.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.ProductPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart represents a user's shopping cart
type Cart struct {
	ID        string     `json:"id,omitempty"`
	UserID    string     `json:"user_id"`
	Items     []CartItem `json:"items"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// NewCart returns a fresh, unpersisted cart bound to userID.
func NewCart(userID string) *Cart {
	now := time.Now()
	return &Cart{
		UserID:    userID,
		Items:     []CartItem{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// AddItem merges the item into the cart. If an item with the same
// product id already exists its quantity is increased, never duplicated.
func (c *Cart) AddItem(item CartItem) {
	if existing := c.FindItem(item.ProductID); existing != nil {
		existing.Quantity += item.Quantity
	} else {
		c.Items = append(c.Items, item)
	}
	c.UpdatedAt = time.Now()
}

// RemoveItem drops any item matching productID; no-op if absent.
func (c *Cart) RemoveItem(productID string) {
	items := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	c.Items = items
	c.UpdatedAt = time.Now()
}

// UpdateItemQuantity sets the quantity of the matching item. A quantity
// of zero or less removes the item. Missing items are ignored.
func (c *Cart) UpdateItemQuantity(productID string, quantity int) {
	item := c.FindItem(productID)
	if item == nil {
		return
	}
	if quantity <= 0 {
		c.RemoveItem(productID)
		return
	}
	item.Quantity = quantity
	c.UpdatedAt = time.Now()
}

// FindItem returns a pointer to the item with the given product id, or nil.
func (c *Cart) FindItem(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// Total is the sum of item subtotals.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// TotalItems is the sum of item quantities.
func (c *Cart) TotalItems() int {
	count := 0
	for _, item := range c.Items {
		count += item.Quantity
	}
	return count
}

// Clear empties the cart in memory.
func (c *Cart) Clear() {
	c.Items = []CartItem{}
	c.UpdatedAt = time.Now()
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
