// Package repository defines the persistence boundary for the marketplace
// aggregates. One interface per aggregate; the Mongo implementations are
// selected at startup, never by runtime branching in business logic.
package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"marketplace/models"
)

// queryTimeout bounds every Mongo call so no operation blocks indefinitely.
const queryTimeout = 5 * time.Second

// ProductRepository is the catalog store.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*models.Product, error)
	FindAll(ctx context.Context) ([]models.Product, error)
	SearchByName(ctx context.Context, name string) ([]models.Product, error)
	FindByMaxPrice(ctx context.Context, price decimal.Decimal) ([]models.Product, error)
	Save(ctx context.Context, product *models.Product) (*models.Product, error)
	DeleteByID(ctx context.Context, id string) error
	ExistsByID(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// CartRepository stores at most one cart per user. FindByUserID returns
// (nil, nil) when the user has no persisted cart; absence is not an error.
type CartRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Cart, error)
	Save(ctx context.Context, cart *models.Cart) (*models.Cart, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// OrderRepository stores placed orders. All listings are newest first.
type OrderRepository interface {
	FindByID(ctx context.Context, id string) (*models.Order, error)
	Insert(ctx context.Context, order *models.Order) (*models.Order, error)
	Update(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByUserID(ctx context.Context, userID string) ([]models.Order, error)
	FindByUserIDPage(ctx context.Context, userID string, page, size int) ([]models.Order, error)
	FindAllPage(ctx context.Context, page, size int) ([]models.Order, error)
	FindByStatus(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	CountByStatus(ctx context.Context, status models.OrderStatus) (int64, error)
}

// UserRepository stores accounts.
type UserRepository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	Count(ctx context.Context) (int64, error)
}
