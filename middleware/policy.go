package middleware

import (
	"net/http"
	"strings"

	"marketplace/models"
	"marketplace/utils"
)

// PolicyRule maps a route prefix to the role it requires.
type PolicyRule struct {
	Prefix string
	Role   models.Role
}

// AccessPolicy is the route authorization table, checked first-match.
// Keeping it in one place avoids string-based role checks scattered
// through handlers.
var AccessPolicy = []PolicyRule{
	{Prefix: "/api/orders/admin", Role: models.RoleAdmin},
	{Prefix: "/admin", Role: models.RoleAdmin},
	{Prefix: "/api/payments", Role: models.RoleUser},
	{Prefix: "/api/cart", Role: models.RoleUser},
	{Prefix: "/api/orders", Role: models.RoleUser},
}

// RequiredRole returns the role a path demands, or "" when the path is
// open to any authenticated caller.
func RequiredRole(path string, policy []PolicyRule) models.Role {
	for _, rule := range policy {
		if strings.HasPrefix(path, rule.Prefix) {
			return rule.Role
		}
	}
	return ""
}

// Authorized is the pure policy check: does any of the caller's roles
// satisfy the path's requirement?
func Authorized(path string, roles []string, policy []PolicyRule) bool {
	required := RequiredRole(path, policy)
	if required == "" {
		return true
	}
	for _, r := range roles {
		if models.Role(r) == required {
			return true
		}
	}
	return false
}

// RequireRole gates a subtree behind a single role.
func RequireRole(role models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok || !hasRole(claims.Roles, role) {
				utils.WriteJSON(w, http.StatusForbidden, map[string]any{
					"status":  "error",
					"message": "Forbidden",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PolicyMiddleware enforces the access policy table for every request
// that passed authentication.
func PolicyMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := ClaimsFromContext(r.Context())
		roles := []string{}
		if ok {
			roles = claims.Roles
		}
		if !Authorized(r.URL.Path, roles, AccessPolicy) {
			utils.WriteJSON(w, http.StatusForbidden, map[string]any{
				"status":  "error",
				"message": "Forbidden",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func hasRole(roles []string, want models.Role) bool {
	for _, r := range roles {
		if models.Role(r) == want {
			return true
		}
	}
	return false
}
