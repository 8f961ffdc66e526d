package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"marketplace/apperr"
)

// PayPalConfig carries the provider credentials and return URLs.
type PayPalConfig struct {
	ClientID   string
	Secret     string
	Mode       string // "sandbox" or "live"
	SuccessURL string
	CancelURL  string
}

// PaymentOrder is the provider's view of a created order.
type PaymentOrder struct {
	ProviderOrderID string `json:"provider_order_id"`
	ApprovalURL     string `json:"approval_url"`
}

// PayPalService is a thin client for the PayPal Orders v2 REST API. The
// core's responsibility ends at producing the amount and description and
// consuming the approval URL.
type PayPalService struct {
	config  PayPalConfig
	baseURL string
	client  *http.Client

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

func NewPayPalService(config PayPalConfig) *PayPalService {
	baseURL := "https://api-m.sandbox.paypal.com"
	if config.Mode == "live" {
		baseURL = "https://api-m.paypal.com"
	}
	return &PayPalService{
		config:  config,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

func (s *PayPalService) token(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != "" && time.Now().Before(s.tokenExpiry) {
		return s.accessToken, nil
	}

	form := url.Values{"grant_type": {"client_credentials"}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(s.config.ClientID, s.config.Secret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal token request returned %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}

	s.accessToken = body.AccessToken
	s.tokenExpiry = time.Now().Add(time.Duration(body.ExpiresIn-60) * time.Second)
	return s.accessToken, nil
}

// CreateOrder creates a provider order for the given amount and returns
// its id plus the buyer approval URL.
func (s *PayPalService) CreateOrder(ctx context.Context, amount decimal.Decimal, description, referenceID string) (*PaymentOrder, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.ProviderError, "Payment provider unavailable", err)
	}

	payload := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"reference_id": referenceID,
			"description":  description,
			"amount": map[string]string{
				"currency_code": "USD",
				"value":         amount.StringFixed(2),
			},
		}},
		"application_context": map[string]string{
			"return_url": s.config.SuccessURL,
			"cancel_url": s.config.CancelURL,
		},
	}

	var result struct {
		ID    string `json:"id"`
		Links []struct {
			Href string `json:"href"`
			Rel  string `json:"rel"`
		} `json:"links"`
	}
	if err := s.post(ctx, token, "/v2/checkout/orders", payload, &result); err != nil {
		return nil, apperr.Wrap(apperr.ProviderError, "Failed to create payment order", err)
	}

	order := &PaymentOrder{ProviderOrderID: result.ID}
	for _, link := range result.Links {
		if link.Rel == "approve" {
			order.ApprovalURL = link.Href
			break
		}
	}
	if order.ApprovalURL == "" {
		return nil, apperr.E(apperr.ProviderError, "No approval URL in provider response")
	}
	return order, nil
}

// CaptureOrder captures an approved provider order and returns its status.
func (s *PayPalService) CaptureOrder(ctx context.Context, providerOrderID string) (string, error) {
	token, err := s.token(ctx)
	if err != nil {
		return "", apperr.Wrap(apperr.ProviderError, "Payment provider unavailable", err)
	}

	var result struct {
		Status string `json:"status"`
	}
	path := fmt.Sprintf("/v2/checkout/orders/%s/capture", providerOrderID)
	if err := s.post(ctx, token, path, map[string]any{}, &result); err != nil {
		return "", apperr.Wrap(apperr.ProviderError, "Failed to capture payment", err)
	}
	return result.Status, nil
}

func (s *PayPalService) post(ctx context.Context, token, path string, payload, result any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=representation")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("paypal %s returned %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(result)
}
