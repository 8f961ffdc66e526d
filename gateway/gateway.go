package gateway

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	gatewayVersion = "1.0"
	gatewayPrefix  = "/gateway"
)

// Gateway routes requests received under /gateway to the application's
// own endpoints, applying rate limiting and diagnostic headers on the
// way through. The forwarded handler owns the response body.
type Gateway struct {
	limiter *RateLimitService
	target  http.Handler
	logger  zerolog.Logger
}

func New(limiter *RateLimitService, target http.Handler, logger zerolog.Logger) *Gateway {
	return &Gateway{limiter: limiter, target: target, logger: logger}
}

// HandleAPI serves /gateway/api/** with the standard api limit.
func (g *Gateway) HandleAPI(w http.ResponseWriter, r *http.Request) {
	g.serve(w, r, "api", "RATE_LIMIT_EXCEEDED", "Rate limit exceeded. Please try again later.")
}

// HandleAdmin serves /gateway/admin/** with the stricter admin limit.
func (g *Gateway) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	g.serve(w, r, "admin", "ADMIN_RATE_LIMIT_EXCEEDED", "Admin rate limit exceeded. Please try again later.")
}

func (g *Gateway) serve(w http.ResponseWriter, r *http.Request, route, limitCode, limitMsg string) {
	clientIP := ClientIP(r)
	g.logger.Info().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("client_ip", clientIP).
		Str("route", route).
		Msg("gateway request")

	if !g.limiter.Allow(r.Context(), clientIP, route) {
		g.logger.Warn().Str("client_ip", clientIP).Str("route", route).Msg("rate limit exceeded")
		w.Header().Set("X-Rate-Limit-Status", "exceeded")
		w.Header().Set("X-Rate-Limit-Service", route)
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"status":  "error",
			"message": limitMsg,
			"code":    limitCode,
		})
		return
	}

	w.Header().Set("X-Gateway-Route", route)
	w.Header().Set("X-Gateway-Response", route+"-service")
	w.Header().Set("X-Gateway-Version", gatewayVersion)
	w.Header().Set("X-Client-IP", clientIP)

	g.forward(w, r)
}

// forward strips the /gateway prefix and re-dispatches the request to
// the inner router. The forwarded handler writes the response; on panic
// the gateway answers with a structured 500.
func (g *Gateway) forward(w http.ResponseWriter, r *http.Request) {
	defer func() {
		if rec := recover(); rec != nil {
			g.logger.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("gateway forward failed")
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"status":  "error",
				"message": "Gateway error",
				"code":    "GATEWAY_ERROR",
			})
		}
	}()

	inner := r.Clone(r.Context())
	inner.URL.Path = strings.TrimPrefix(r.URL.Path, gatewayPrefix)
	inner.RequestURI = inner.URL.Path

	g.logger.Info().Str("forward_path", inner.URL.Path).Msg("gateway forwarding")
	g.target.ServeHTTP(w, inner)
}

// Info describes the gateway surface.
func (g *Gateway) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "active",
		"version":      gatewayVersion,
		"type":         "In-process API gateway",
		"architecture": "Monolithic with internal forwarding",
		"features": []string{
			"Rate Limiting",
			"Request Logging",
			"Internal Request Forwarding",
		},
		"endpoints": []string{
			"/gateway/api/** - API endpoints with rate limiting",
			"/gateway/admin/** - Admin endpoints with strict rate limiting",
			"/gateway/info - Gateway information",
			"/gateway/health - Gateway health status",
		},
		"rate_limiting": map[string]string{
			"api_limit":     "100 requests/minute",
			"admin_limit":   "20 requests/minute",
			"payment_limit": "10 requests/minute",
		},
	})
}

// Health reports gateway and limiter health.
func (g *Gateway) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":               "UP",
		"gateway":              "HEALTHY",
		"timestamp":            time.Now().UnixMilli(),
		"rate_limiting":        g.limiter.Healthy(),
		"rate_limiting_status": g.limiter.Status(),
	})
}

// ClientIP resolves the caller's address: the first X-Forwarded-For
// entry, then X-Real-IP, then the transport peer address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
