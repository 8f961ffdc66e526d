package controllers

import (
	"log"
	"net/http"
	"strconv"

	"marketplace/apperr"
	"marketplace/models"
	"marketplace/services"
	"marketplace/utils"
)

// OrderController handles order-related requests
type OrderController struct {
	Orders *services.OrderService
	Users  *services.UserService
	Email  *utils.EmailService
}

func NewOrderController(orders *services.OrderService, users *services.UserService, email *utils.EmailService) *OrderController {
	return &OrderController{Orders: orders, Users: users, Email: email}
}

func pageParams(r *http.Request, defaultSize int) (int, int) {
	page := 0
	size := defaultSize
	if p := r.URL.Query().Get("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v >= 0 {
			page = v
		}
	}
	if s := r.URL.Query().Get("size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			size = v
		}
	}
	return page, size
}

// CreateOrder places an order from the user's current cart
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, oc.Users)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	order, err := oc.Orders.CreateFromCart(r.Context(), user)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	// Confirmation email must not delay or fail the order response.
	go func(email string, order *models.Order) {
		if err := oc.Email.SendOrderConfirmationEmail(email, order); err != nil {
			log.Printf("Failed to send order confirmation to %s: %v", email, err)
		}
	}(user.Email, order)

	utils.WriteSuccess(w, "Order created successfully", map[string]any{"order": order})
}

// GetOrders retrieves the authenticated user's orders, newest first
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, oc.Users)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	page, size := pageParams(r, services.DefaultPageSize)
	orders, err := oc.Orders.ListUserOrdersPage(r.Context(), user.ID, page, size)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, "Orders fetched successfully", map[string]any{
		"orders": orders,
		"page":   page,
		"size":   size,
	})
}

// GetOrder retrieves a single order by id
func (oc *OrderController) GetOrder(w http.ResponseWriter, r *http.Request) {
	orderID := routeVar(r, "id")

	order, err := oc.Orders.GetByID(r.Context(), orderID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, "Order fetched successfully", map[string]any{"order": order})
}

// AdminListOrders lists every order with status statistics (admin only)
func (oc *OrderController) AdminListOrders(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	page, size := pageParams(r, services.AdminDefaultPageSize)

	if status := r.URL.Query().Get("status"); status != "" {
		parsed, err := models.ParseOrderStatus(status)
		if err != nil {
			utils.WriteError(w, apperr.E(apperr.InvalidState, "Invalid order status"))
			return
		}
		orders, err := oc.Orders.ListByStatus(ctx, parsed)
		if err != nil {
			utils.WriteError(w, err)
			return
		}
		utils.WriteSuccess(w, "Orders fetched successfully", map[string]any{"orders": orders})
		return
	}

	orders, err := oc.Orders.ListAllPage(ctx, page, size)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	pending, err := oc.Orders.CountByStatus(ctx, models.OrderPending)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	confirmed, err := oc.Orders.CountByStatus(ctx, models.OrderConfirmed)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	shipped, err := oc.Orders.CountByStatus(ctx, models.OrderShipped)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteSuccess(w, "Orders fetched successfully", map[string]any{
		"orders":          orders,
		"page":            page,
		"size":            size,
		"pending_count":   pending,
		"confirmed_count": confirmed,
		"shipped_count":   shipped,
	})
}

// UpdateOrderStatus applies a status transition (admin only)
func (oc *OrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	orderID := routeVar(r, "id")

	status, err := models.ParseOrderStatus(r.FormValue("status"))
	if err != nil {
		utils.WriteError(w, apperr.E(apperr.InvalidState, "Invalid order status"))
		return
	}

	order, err := oc.Orders.UpdateStatus(r.Context(), orderID, status)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteSuccess(w, "Order status updated successfully", map[string]any{"order": order})
}
