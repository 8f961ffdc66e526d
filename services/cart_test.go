package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marketplace/apperr"
	"marketplace/models"
)

func newCartFixture(t *testing.T) (*CartService, *memCartRepo, *memProductRepo) {
	t.Helper()
	carts := newMemCartRepo()
	products := newMemProductRepo()
	return NewCartService(carts, products), carts, products
}

func seedProduct(t *testing.T, products *memProductRepo, name, price string) *models.Product {
	t.Helper()
	p, err := products.Save(context.Background(), &models.Product{
		Name:  name,
		Price: decimal.RequireFromString(price),
	})
	require.NoError(t, err)
	return p
}

func TestGetOrCreateCartReturnsFreshCartWhenNonePersisted(t *testing.T) {
	svc, _, _ := newCartFixture(t)

	cart, err := svc.GetOrCreateCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", cart.UserID)
	assert.True(t, cart.IsEmpty())
	assert.Empty(t, cart.ID, "fresh cart must not be persisted")
}

func TestGetOrCreateCartRequiresUser(t *testing.T) {
	svc, _, _ := newCartFixture(t)

	_, err := svc.GetOrCreateCart(context.Background(), "")
	assert.True(t, apperr.IsKind(err, apperr.Unauthenticated))
}

func TestAddToCartSnapshotsProduct(t *testing.T) {
	svc, carts, products := newCartFixture(t)
	p := seedProduct(t, products, "Widget", "19.99")

	cart, err := svc.AddToCart(context.Background(), "u1", p.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "Widget", cart.Items[0].ProductName)
	assert.True(t, cart.Items[0].ProductPrice.Equal(decimal.RequireFromString("19.99")))
	assert.Equal(t, 2, cart.Items[0].Quantity)

	// The cart was persisted.
	stored, err := carts.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Items, 1)
}

func TestAddToCartMergesExistingLine(t *testing.T) {
	svc, _, products := newCartFixture(t)
	p := seedProduct(t, products, "Widget", "10.00")

	_, err := svc.AddToCart(context.Background(), "u1", p.ID, 1)
	require.NoError(t, err)
	cart, err := svc.AddToCart(context.Background(), "u1", p.ID, 3)
	require.NoError(t, err)

	require.Len(t, cart.Items, 1)
	assert.Equal(t, 4, cart.Items[0].Quantity)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	svc, _, _ := newCartFixture(t)

	_, err := svc.AddToCart(context.Background(), "u1", "missing", 1)
	assert.True(t, apperr.IsKind(err, apperr.NotFound))
}

func TestAddToCartRejectsNonPositiveQuantity(t *testing.T) {
	svc, _, products := newCartFixture(t)
	p := seedProduct(t, products, "Widget", "10.00")

	_, err := svc.AddToCart(context.Background(), "u1", p.ID, 0)
	assert.True(t, apperr.IsKind(err, apperr.InvalidState))
}

func TestUpdateItemQuantitySetsAbsoluteValue(t *testing.T) {
	svc, _, products := newCartFixture(t)
	p := seedProduct(t, products, "Widget", "10.00")

	_, err := svc.AddToCart(context.Background(), "u1", p.ID, 5)
	require.NoError(t, err)

	cart, err := svc.UpdateItemQuantity(context.Background(), "u1", p.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestUpdateToZeroRemovesItemAndDropsEmptyCart(t *testing.T) {
	svc, carts, products := newCartFixture(t)
	p := seedProduct(t, products, "Widget", "10.00")

	_, err := svc.AddToCart(context.Background(), "u1", p.ID, 2)
	require.NoError(t, err)

	cart, err := svc.UpdateItemQuantity(context.Background(), "u1", p.ID, 0)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
	assert.Empty(t, cart.ID, "caller gets a fresh unpersisted cart")

	// The empty cart was deleted, not persisted.
	stored, err := carts.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRemoveLastItemDeletesPersistedCart(t *testing.T) {
	svc, carts, products := newCartFixture(t)
	p := seedProduct(t, products, "Widget", "10.00")

	_, err := svc.AddToCart(context.Background(), "u1", p.ID, 1)
	require.NoError(t, err)

	cart, err := svc.RemoveFromCart(context.Background(), "u1", p.ID)
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	stored, err := carts.FindByUserID(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, stored)
}

func TestRemoveAbsentItemKeepsCartIntact(t *testing.T) {
	svc, _, products := newCartFixture(t)
	p := seedProduct(t, products, "Widget", "10.00")

	_, err := svc.AddToCart(context.Background(), "u1", p.ID, 2)
	require.NoError(t, err)

	cart, err := svc.RemoveFromCart(context.Background(), "u1", "other")
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
}

func TestClearCartIsIdempotent(t *testing.T) {
	svc, _, products := newCartFixture(t)
	p := seedProduct(t, products, "Widget", "10.00")

	_, err := svc.AddToCart(context.Background(), "u1", p.ID, 1)
	require.NoError(t, err)

	require.NoError(t, svc.ClearCart(context.Background(), "u1"))
	require.NoError(t, svc.ClearCart(context.Background(), "u1"))

	cart, err := svc.GetOrCreateCart(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc, _, products := newCartFixture(t)
	p := seedProduct(t, products, "Widget", "10.00")

	_, err := svc.AddToCart(context.Background(), "u1", p.ID, 1)
	require.NoError(t, err)
	_, err = svc.AddToCart(context.Background(), "u2", p.ID, 3)
	require.NoError(t, err)

	cart1, err := svc.GetOrCreateCart(context.Background(), "u1")
	require.NoError(t, err)
	cart2, err := svc.GetOrCreateCart(context.Background(), "u2")
	require.NoError(t, err)
	assert.Equal(t, 1, cart1.TotalItems())
	assert.Equal(t, 3, cart2.TotalItems())
}

func TestAddToCartSurfacesBackendFailure(t *testing.T) {
	svc, carts, products := newCartFixture(t)
	p := seedProduct(t, products, "Widget", "10.00")
	carts.failSave = true

	_, err := svc.AddToCart(context.Background(), "u1", p.ID, 1)
	assert.True(t, apperr.IsKind(err, apperr.BackendUnavailable))
}
