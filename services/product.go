package services

import (
	"context"

	"github.com/shopspring/decimal"

	"marketplace/apperr"
	"marketplace/models"
	"marketplace/repository"
)

// ProductService fronts the catalog store.
type ProductService struct {
	products repository.ProductRepository
}

func NewProductService(products repository.ProductRepository) *ProductService {
	return &ProductService{products: products}
}

func (s *ProductService) GetByID(ctx context.Context, id string) (*models.Product, error) {
	product, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to load product", err)
	}
	if product == nil {
		return nil, apperr.E(apperr.NotFound, "Product not found")
	}
	return product, nil
}

func (s *ProductService) ListAll(ctx context.Context) ([]models.Product, error) {
	products, err := s.products.FindAll(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to load products", err)
	}
	return products, nil
}

// SearchByName matches products whose name contains the given fragment,
// case-insensitively.
func (s *ProductService) SearchByName(ctx context.Context, name string) ([]models.Product, error) {
	products, err := s.products.SearchByName(ctx, name)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to search products", err)
	}
	return products, nil
}

// ListByMaxPrice returns products priced at or below the given amount.
func (s *ProductService) ListByMaxPrice(ctx context.Context, price decimal.Decimal) ([]models.Product, error) {
	products, err := s.products.FindByMaxPrice(ctx, price)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to load products", err)
	}
	return products, nil
}

// Save creates or updates a catalog entry. Prices must be non-negative.
func (s *ProductService) Save(ctx context.Context, product *models.Product) (*models.Product, error) {
	if product.Name == "" {
		return nil, apperr.E(apperr.InvalidState, "Product name is required")
	}
	if product.Price.IsNegative() {
		return nil, apperr.E(apperr.InvalidState, "Product price must not be negative")
	}

	saved, err := s.products.Save(ctx, product)
	if err != nil {
		return nil, apperr.Wrap(apperr.BackendUnavailable, "Failed to save product", err)
	}
	return saved, nil
}

func (s *ProductService) Delete(ctx context.Context, id string) error {
	exists, err := s.products.ExistsByID(ctx, id)
	if err != nil {
		return apperr.Wrap(apperr.BackendUnavailable, "Failed to load product", err)
	}
	if !exists {
		return apperr.E(apperr.NotFound, "Product not found")
	}
	if err := s.products.DeleteByID(ctx, id); err != nil {
		return apperr.Wrap(apperr.BackendUnavailable, "Failed to delete product", err)
	}
	return nil
}
