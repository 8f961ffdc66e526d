package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"marketplace/models"
	"marketplace/repository"
	"marketplace/services"
)

// seedDemoData inserts demo products and an admin account when their
// collections are empty. Existing data is never touched.
func seedDemoData(ctx context.Context, logger zerolog.Logger, products repository.ProductRepository, users repository.UserRepository, userService *services.UserService) {
	count, err := products.Count(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("seed: failed to count products")
		return
	}
	if count == 0 {
		demo := []models.Product{
			{Name: "Wireless Headphones", Price: decimal.NewFromFloat(79.99), Description: "Over-ear wireless headphones with noise cancelling", ImageURL: "/images/headphones.jpg"},
			{Name: "Mechanical Keyboard", Price: decimal.NewFromFloat(129.00), Description: "Tenkeyless mechanical keyboard, brown switches", ImageURL: "/images/keyboard.jpg"},
			{Name: "USB-C Hub", Price: decimal.NewFromFloat(39.50), Description: "7-in-1 USB-C hub with HDMI and card reader", ImageURL: "/images/hub.jpg"},
			{Name: "4K Monitor", Price: decimal.NewFromFloat(349.99), Description: "27-inch 4K IPS monitor", ImageURL: "/images/monitor.jpg"},
		}
		for i := range demo {
			if _, err := products.Save(ctx, &demo[i]); err != nil {
				logger.Warn().Err(err).Str("product", demo[i].Name).Msg("seed: failed to insert product")
			}
		}
		logger.Info().Int("count", len(demo)).Msg("seed: demo products inserted")
	}

	userCount, err := users.Count(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("seed: failed to count users")
		return
	}
	if userCount == 0 {
		password := os.Getenv("ADMIN_PASSWORD")
		if password == "" {
			password = "admin123"
		}
		admin := &models.User{
			Username: "admin",
			Email:    "admin@techmarket.local",
			FullName: "Administrator",
		}
		saved, err := userService.Register(ctx, admin, password)
		if err != nil {
			logger.Warn().Err(err).Msg("seed: failed to create admin user")
			return
		}
		if _, err := userService.PromoteToAdmin(ctx, saved.ID); err != nil {
			logger.Warn().Err(err).Msg("seed: failed to promote admin user")
			return
		}
		logger.Info().Msg("seed: admin account created")
	}
}
