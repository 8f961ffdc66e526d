// Package services holds the marketplace business logic. Every operation
// takes an explicit context and user identity; nothing reads ambient state.
package services

import (
	"context"

	"marketplace/apperr"
	"marketplace/models"
	"marketplace/repository"
)

// CartService owns the per-user cart aggregate.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

// GetOrCreateCart returns the user's persisted cart, or a fresh empty
// cart bound to the user when none exists. Absence is not an error.
func (s *CartService) GetOrCreateCart(ctx context.Context, userID string) (*models.Cart, error) {
	if userID == "" {
		return nil, apperr.E(apperr.Unauthenticated, "You must be logged in")
	}
	cart, err := s.carts.FindByUserID(ctx, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to load cart", err)
	}
	if cart == nil {
		return models.NewCart(userID), nil
	}
	return cart, nil
}

// AddToCart resolves the product, snapshots its name, price and image
// into a cart item and merges it into the cart. Adding a product already
// in the cart increases its quantity instead of inserting a second row.
func (s *CartService) AddToCart(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	if userID == "" {
		return nil, apperr.E(apperr.Unauthenticated, "You must be logged in to add items to cart")
	}
	if quantity < 1 {
		return nil, apperr.E(apperr.InvalidState, "Quantity must be at least 1")
	}

	product, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to load product", err)
	}
	if product == nil {
		return nil, apperr.E(apperr.NotFound, "Product not found")
	}

	cart, err := s.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	cart.AddItem(models.CartItem{
		ProductID:       product.ID,
		ProductName:     product.Name,
		ProductPrice:    product.Price,
		ProductImageURL: product.ImageURL,
		Quantity:        quantity,
	})

	saved, err := s.carts.Save(ctx, cart)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to save cart", err)
	}
	return saved, nil
}

// UpdateItemQuantity sets the item's quantity to an absolute value; zero
// or less removes the item. A missing item is a no-op, not an error.
func (s *CartService) UpdateItemQuantity(ctx context.Context, userID, productID string, quantity int) (*models.Cart, error) {
	if userID == "" {
		return nil, apperr.E(apperr.Unauthenticated, "You must be logged in")
	}

	cart, err := s.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.UpdateItemQuantity(productID, quantity)
	return s.saveOrDrop(ctx, userID, cart)
}

// RemoveFromCart removes the item matching productID; no-op if absent.
func (s *CartService) RemoveFromCart(ctx context.Context, userID, productID string) (*models.Cart, error) {
	if userID == "" {
		return nil, apperr.E(apperr.Unauthenticated, "You must be logged in")
	}

	cart, err := s.GetOrCreateCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	cart.RemoveItem(productID)
	return s.saveOrDrop(ctx, userID, cart)
}

// saveOrDrop persists a non-empty cart. A cart that became empty is
// deleted instead; carts are never persisted in an empty state.
func (s *CartService) saveOrDrop(ctx context.Context, userID string, cart *models.Cart) (*models.Cart, error) {
	if cart.IsEmpty() {
		if err := s.carts.DeleteByUserID(ctx, userID); err != nil {
			return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to delete cart", err)
		}
		return models.NewCart(userID), nil
	}

	saved, err := s.carts.Save(ctx, cart)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to save cart", err)
	}
	return saved, nil
}

// ClearCart deletes the user's persisted cart outright. Idempotent.
func (s *CartService) ClearCart(ctx context.Context, userID string) error {
	if userID == "" {
		return apperr.E(apperr.Unauthenticated, "You must be logged in")
	}
	if err := s.carts.DeleteByUserID(ctx, userID); err != nil {
		return apperr.Wrap(apperr.BackendUnavailable, "Failed to clear cart", err)
	}
	return nil
}
