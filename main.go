package main

import (
	"context"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"marketplace/controllers"
	"marketplace/gateway"
	"marketplace/repository"
	"marketplace/routes"
	"marketplace/services"
	"marketplace/utils"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Proceeding with environment variables.")
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Set the JWT secret key
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		utils.JwtKey = []byte(secret)
	}

	// Connect to MongoDB
	client := utils.ConnectDB()
	defer func() {
		if err := client.Disconnect(context.TODO()); err != nil {
			log.Fatal(err)
		}
	}()

	dbName := os.Getenv("MONGO_DB")
	if dbName == "" {
		dbName = "marketplace"
	}
	db := client.Database(dbName)

	// Repositories
	productRepo := repository.NewMongoProductRepository(db)
	cartRepo := repository.NewMongoCartRepository(db)
	orderRepo := repository.NewMongoOrderRepository(db)
	userRepo := repository.NewMongoUserRepository(db)

	// Services
	productService := services.NewProductService(productRepo)
	cartService := services.NewCartService(cartRepo, productRepo)
	orderService := services.NewOrderService(orderRepo, cartService)
	userService := services.NewUserService(userRepo)
	paypalService := services.NewPayPalService(services.PayPalConfig{
		ClientID:   os.Getenv("PAYPAL_CLIENT_ID"),
		Secret:     os.Getenv("PAYPAL_CLIENT_SECRET"),
		Mode:       os.Getenv("PAYPAL_MODE"),
		SuccessURL: os.Getenv("PAYPAL_SUCCESS_URL"),
		CancelURL:  os.Getenv("PAYPAL_CANCEL_URL"),
	})
	emailService := utils.NewEmailService()

	// Rate limiter: Redis when configured, in-memory fallback otherwise
	var counterStore gateway.CounterStore
	if redisClient := utils.ConnectRedis(); redisClient != nil {
		counterStore = gateway.NewRedisCounterStore(redisClient)
	}
	rateLimiter := gateway.NewRateLimitService(counterStore, logger)

	// Controllers
	userController := controllers.NewUserController(userService, emailService)
	productController := controllers.NewProductController(productService)
	cartController := controllers.NewCartController(cartService, userService)
	orderController := controllers.NewOrderController(orderService, userService, emailService)
	paymentController := controllers.NewPaymentController(productService, cartService, orderService, userService, paypalService)
	webhookController := controllers.NewWebhookController(logger)

	// Set up the router; the gateway forwards into the same router
	router := mux.NewRouter()
	gw := gateway.New(rateLimiter, router, logger)
	routes.RegisterRoutes(router, logger, userController, productController, cartController, orderController, paymentController, webhookController, gw)

	// Optional demo data
	if os.Getenv("SEED_DEMO_DATA") == "true" {
		seedDemoData(context.Background(), logger, productRepo, userRepo, userService)
	}

	// Start the server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	logger.Info().Str("port", port).Msg("server starting")
	log.Fatal(http.ListenAndServe(":"+port, router))
}
