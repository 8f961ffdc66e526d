package controllers

import (
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"marketplace/utils"
)

// WebhookController acknowledges PayPal webhook deliveries. Events are
// logged but not processed; order state only changes through the capture
// flow.
type WebhookController struct {
	Logger zerolog.Logger
}

func NewWebhookController(logger zerolog.Logger) *WebhookController {
	return &WebhookController{Logger: logger}
}

// HandlePayPal accepts a webhook event and acknowledges it
func (wc *WebhookController) HandlePayPal(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		wc.Logger.Warn().Err(err).Msg("failed to read webhook body")
	} else {
		wc.Logger.Info().Int("bytes", len(body)).Msg("paypal webhook received")
	}

	utils.WriteSuccess(w, "Webhook received", nil)
}
