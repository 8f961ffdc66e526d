package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"marketplace/apperr"
	"marketplace/models"
	"marketplace/services"
	"marketplace/utils"
)

// ProductController handles catalog requests
type ProductController struct {
	Products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{Products: products}
}

func routeVar(r *http.Request, name string) string {
	return mux.Vars(r)[name]
}

// GetProducts lists the catalog. Supports ?search= and ?max_price=.
func (pc *ProductController) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if search := r.URL.Query().Get("search"); search != "" {
		products, err := pc.Products.SearchByName(ctx, search)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		utils.WriteSuccess(w, "Products fetched successfully", map[string]any{"products": products})
		return
	}

	if maxPrice := r.URL.Query().Get("max_price"); maxPrice != "" {
		price, err := decimal.NewFromString(maxPrice)
		if err != nil {
			utils.WriteError(w, apperr.E(apperr.InvalidState, "Invalid max_price"))
			return
		}
		products, err := pc.Products.ListByMaxPrice(ctx, price)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		utils.WriteSuccess(w, "Products fetched successfully", map[string]any{"products": products})
		return
	}

	products, err := pc.Products.ListAll(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, "Products fetched successfully", map[string]any{"products": products})
}

// GetProductByID retrieves a single product
func (pc *ProductController) GetProductByID(w http.ResponseWriter, r *http.Request) {
	product, err := pc.Products.GetByID(r.Context(), routeVar(r, "id"))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, "Product fetched successfully", map[string]any{"product": product})
}

// CreateProduct adds a catalog entry (admin only)
func (pc *ProductController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.WriteError(w, apperr.E(apperr.InvalidState, "Invalid input"))
		return
	}
	product.ID = ""

	saved, err := pc.Products.Save(r.Context(), &product)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusCreated, map[string]any{
		"status":  "success",
		"message": "Product created successfully",
		"product": saved,
	})
}

// UpdateProduct replaces a catalog entry (admin only)
func (pc *ProductController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id := routeVar(r, "id")
	if _, err := pc.Products.GetByID(r.Context(), id); err != nil {
		utils.WriteError(w, err)
		return
	}

	var product models.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		utils.WriteError(w, apperr.E(apperr.InvalidState, "Invalid input"))
		return
	}
	product.ID = id

	saved, err := pc.Products.Save(r.Context(), &product)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, "Product updated successfully", map[string]any{"product": saved})
}

// DeleteProduct removes a catalog entry (admin only)
func (pc *ProductController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := pc.Products.Delete(r.Context(), routeVar(r, "id")); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, "Product deleted successfully", nil)
}
