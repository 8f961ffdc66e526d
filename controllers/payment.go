package controllers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"marketplace/apperr"
	"marketplace/services"
	"marketplace/utils"
)

// PaymentController initiates and captures PayPal payments. Amounts are
// always computed server-side from the catalog or the cart; a client can
// never supply its own total.
type PaymentController struct {
	Products *services.ProductService
	Cart     *services.CartService
	Orders   *services.OrderService
	Users    *services.UserService
	PayPal   *services.PayPalService
}

func NewPaymentController(products *services.ProductService, cart *services.CartService, orders *services.OrderService, users *services.UserService, paypal *services.PayPalService) *PaymentController {
	return &PaymentController{Products: products, Cart: cart, Orders: orders, Users: users, PayPal: paypal}
}

// PayProduct creates a provider order for a single product
func (pc *PaymentController) PayProduct(w http.ResponseWriter, r *http.Request) {
	productID := r.FormValue("productId")
	if productID == "" {
		utils.WriteError(w, apperr.E(apperr.InvalidState, "Missing required field: productId"))
		return
	}

	product, err := pc.Products.GetByID(r.Context(), productID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	payment, err := pc.PayPal.CreateOrder(r.Context(), product.Price, product.Description, uuid.New().String())
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteSuccess(w, "Payment order created", map[string]any{
		"approval_url":      payment.ApprovalURL,
		"provider_order_id": payment.ProviderOrderID,
		"amount":            product.Price.StringFixed(2),
	})
}

// PayCart creates a provider order covering the user's whole cart
func (pc *PaymentController) PayCart(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, pc.Users)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	cart, err := pc.Cart.GetOrCreateCart(r.Context(), user.ID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if cart.IsEmpty() {
		utils.WriteError(w, apperr.E(apperr.InvalidState, "Cart is empty"))
		return
	}

	names := make([]string, len(cart.Items))
	for i, item := range cart.Items {
		names[i] = fmt.Sprintf("%s x%d", item.ProductName, item.Quantity)
	}
	description := "TechMarket Pro Cart: " + strings.Join(names, ", ")

	payment, err := pc.PayPal.CreateOrder(r.Context(), cart.Total(), description, uuid.New().String())
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteSuccess(w, "Payment order created", map[string]any{
		"approval_url":      payment.ApprovalURL,
		"provider_order_id": payment.ProviderOrderID,
		"amount":            cart.Total().StringFixed(2),
	})
}

// Capture captures an approved provider order and attaches the payment
// info to the marketplace order, confirming it.
func (pc *PaymentController) Capture(w http.ResponseWriter, r *http.Request) {
	providerOrderID := r.FormValue("providerOrderId")
	orderID := r.FormValue("orderId")
	if providerOrderID == "" || orderID == "" {
		utils.WriteError(w, apperr.E(apperr.InvalidState, "providerOrderId and orderId are required"))
		return
	}

	status, err := pc.PayPal.CaptureOrder(r.Context(), providerOrderID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	order, err := pc.Orders.AttachPaymentInfo(r.Context(), orderID, providerOrderID, providerOrderID)
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	utils.WriteSuccess(w, "Payment captured successfully", map[string]any{
		"capture_status": status,
		"order":          order,
	})
}
