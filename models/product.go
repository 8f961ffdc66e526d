package models

import (
	"github.com/shopspring/decimal"
)

// Product represents a sellable item in the catalog
type Product struct {
	ID             string          `json:"id,omitempty"`
	Name           string          `json:"name"`
	Price          decimal.Decimal `json:"price"`
	Description    string          `json:"description"`
	ImageURL       string          `json:"image_url"`
	PaypalButtonID string          `json:"paypal_button_id,omitempty"`
}
