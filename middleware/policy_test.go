package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"marketplace/models"
)

func TestRequiredRoleFirstMatchWins(t *testing.T) {
	// /api/orders/admin is listed before /api/orders, so admins-only wins.
	assert.Equal(t, models.RoleAdmin, RequiredRole("/api/orders/admin", AccessPolicy))
	assert.Equal(t, models.RoleAdmin, RequiredRole("/api/orders/admin/123/status", AccessPolicy))
	assert.Equal(t, models.RoleUser, RequiredRole("/api/orders", AccessPolicy))
	assert.Equal(t, models.RoleUser, RequiredRole("/api/orders/123", AccessPolicy))
	assert.Equal(t, models.RoleAdmin, RequiredRole("/admin/products", AccessPolicy))
	assert.Equal(t, models.RoleUser, RequiredRole("/api/cart/items", AccessPolicy))
	assert.Equal(t, models.RoleUser, RequiredRole("/api/payments/capture", AccessPolicy))
}

func TestRequiredRoleUnlistedPathIsOpen(t *testing.T) {
	assert.Equal(t, models.Role(""), RequiredRole("/api/products", AccessPolicy))
	assert.Equal(t, models.Role(""), RequiredRole("/api/profile", AccessPolicy))
}

func TestAuthorized(t *testing.T) {
	user := []string{"USER"}
	admin := []string{"USER", "ADMIN"}

	assert.True(t, Authorized("/api/cart", user, AccessPolicy))
	assert.True(t, Authorized("/api/orders/123", user, AccessPolicy))
	assert.False(t, Authorized("/admin/products", user, AccessPolicy))
	assert.False(t, Authorized("/api/orders/admin", user, AccessPolicy))

	assert.True(t, Authorized("/admin/products", admin, AccessPolicy))
	assert.True(t, Authorized("/api/orders/admin", admin, AccessPolicy))

	// Open paths need no role at all.
	assert.True(t, Authorized("/api/products", nil, AccessPolicy))

	// A protected path with no roles is denied.
	assert.False(t, Authorized("/api/cart", nil, AccessPolicy))
}

func TestAuthorizedAdminAloneCannotUseUserRoutes(t *testing.T) {
	adminOnly := []string{"ADMIN"}
	assert.False(t, Authorized("/api/cart", adminOnly, AccessPolicy),
		"roles are additive, ADMIN does not imply USER")
	assert.True(t, Authorized("/admin/products", adminOnly, AccessPolicy))
}
