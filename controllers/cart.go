package controllers

import (
	"net/http"
	"strconv"

	"marketplace/apperr"
	"marketplace/middleware"
	"marketplace/models"
	"marketplace/services"
	"marketplace/utils"
)

// CartController handles cart-related requests
type CartController struct {
	Cart  *services.CartService
	Users *services.UserService
}

func NewCartController(cart *services.CartService, users *services.UserService) *CartController {
	return &CartController{Cart: cart, Users: users}
}

// currentUser resolves the authenticated account behind the request.
func currentUser(r *http.Request, users *services.UserService) (*models.User, error) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		return nil, apperr.E(apperr.Unauthenticated, "You must be logged in")
	}
	return users.GetByUsername(r.Context(), claims.Username)
}

func cartPayload(cart *models.Cart) map[string]any {
	return map[string]any{
		"cart":        cart,
		"total":       cart.Total().StringFixed(2),
		"total_items": cart.TotalItems(),
	}
}

// GetCart retrieves the user's cart
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, cc.Users)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	cart, err := cc.Cart.GetOrCreateCart(r.Context(), user.ID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, "Cart fetched successfully", cartPayload(cart))
}

// AddToCart adds a product to the user's cart. Quantity defaults to 1.
func (cc *CartController) AddToCart(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, cc.Users)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	productID := r.FormValue("productId")
	if productID == "" {
		utils.WriteError(w, apperr.E(apperr.InvalidState, "productId is required"))
		return
	}
	quantity := 1
	if q := r.FormValue("quantity"); q != "" {
		quantity, err = strconv.Atoi(q)
		if err != nil {
			utils.WriteError(w, apperr.E(apperr.InvalidState, "Invalid quantity"))
			return
		}
	}

	cart, err := cc.Cart.AddToCart(r.Context(), user.ID, productID, quantity)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, "Item added to cart successfully", cartPayload(cart))
}

// UpdateCartItem sets an item's quantity to an absolute value
func (cc *CartController) UpdateCartItem(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, cc.Users)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	productID := r.FormValue("productId")
	if productID == "" {
		utils.WriteError(w, apperr.E(apperr.InvalidState, "productId is required"))
		return
	}
	quantity, err := strconv.Atoi(r.FormValue("quantity"))
	if err != nil {
		utils.WriteError(w, apperr.E(apperr.InvalidState, "Invalid quantity"))
		return
	}

	cart, err := cc.Cart.UpdateItemQuantity(r.Context(), user.ID, productID, quantity)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, "Cart item updated successfully", cartPayload(cart))
}

// RemoveFromCart removes a product from the user's cart
func (cc *CartController) RemoveFromCart(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, cc.Users)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	productID := r.FormValue("productId")
	if productID == "" {
		utils.WriteError(w, apperr.E(apperr.InvalidState, "productId is required"))
		return
	}

	cart, err := cc.Cart.RemoveFromCart(r.Context(), user.ID, productID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, "Item removed from cart successfully", cartPayload(cart))
}

// ClearCart deletes the user's cart outright
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, cc.Users)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	if err := cc.Cart.ClearCart(r.Context(), user.ID); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, "Cart cleared successfully", nil)
}
