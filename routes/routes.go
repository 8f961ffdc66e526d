package routes

import (
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"marketplace/controllers"
	"marketplace/gateway"
	"marketplace/middleware"
	"marketplace/models"
)

// RegisterRoutes sets up all the routes for the application
func RegisterRoutes(
	router *mux.Router,
	logger zerolog.Logger,
	userController *controllers.UserController,
	productController *controllers.ProductController,
	cartController *controllers.CartController,
	orderController *controllers.OrderController,
	paymentController *controllers.PaymentController,
	webhookController *controllers.WebhookController,
	gw *gateway.Gateway,
) {
	router.Use(middleware.LoggerMiddleware(logger))

	// Public routes
	router.HandleFunc("/register", userController.Register).Methods("POST")
	router.HandleFunc("/login", userController.Login).Methods("POST")
	router.HandleFunc("/api/products", productController.GetProducts).Methods("GET")
	router.HandleFunc("/api/products/{id}", productController.GetProductByID).Methods("GET")
	router.HandleFunc("/api/webhooks/paypal", webhookController.HandlePayPal).Methods("POST")

	// Gateway routes: same application, rate-limited surface
	router.HandleFunc("/gateway/info", gw.Info).Methods("GET")
	router.HandleFunc("/gateway/health", gw.Health).Methods("GET")
	router.PathPrefix("/gateway/api/").HandlerFunc(gw.HandleAPI)
	router.PathPrefix("/gateway/admin/").HandlerFunc(gw.HandleAdmin)

	// Authenticated routes
	protected := router.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.Use(middleware.PolicyMiddleware)

	protected.HandleFunc("/profile", userController.GetProfile).Methods("GET")

	// Cart routes
	protected.HandleFunc("/api/cart", cartController.GetCart).Methods("GET")
	protected.HandleFunc("/api/cart/add", cartController.AddToCart).Methods("POST")
	protected.HandleFunc("/api/cart/update", cartController.UpdateCartItem).Methods("PUT")
	protected.HandleFunc("/api/cart/remove", cartController.RemoveFromCart).Methods("DELETE")
	protected.HandleFunc("/api/cart/clear", cartController.ClearCart).Methods("DELETE")

	// Order routes; the admin listing is registered before the {id} route
	protected.HandleFunc("/api/orders/admin", orderController.AdminListOrders).Methods("GET")
	protected.HandleFunc("/api/orders/admin/{id}/status", orderController.UpdateOrderStatus).Methods("PUT")
	protected.HandleFunc("/api/orders", orderController.GetOrders).Methods("GET")
	protected.HandleFunc("/api/orders", orderController.CreateOrder).Methods("POST")
	protected.HandleFunc("/api/orders/{id}", orderController.GetOrder).Methods("GET")

	// Payment routes
	protected.HandleFunc("/api/payments/paypal", paymentController.PayProduct).Methods("POST")
	protected.HandleFunc("/api/payments/cart", paymentController.PayCart).Methods("POST")
	protected.HandleFunc("/api/payments/capture", paymentController.Capture).Methods("POST")

	// Admin catalog and account management
	admin := router.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.RequireRole(models.RoleAdmin))
	admin.HandleFunc("/products", productController.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", productController.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id}", productController.DeleteProduct).Methods("DELETE")
	admin.HandleFunc("/users/{id}/promote", userController.PromoteToAdmin).Methods("POST")
}
