package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"kart-checkout/internal/config"
	"kart-checkout/internal/model"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// SessionRequest is sent to the gateway to open a payment session. The order
// ID doubles as the idempotency/reference key, so retrying the same order
// never mints a second session charge.
type SessionRequest struct {
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
}

// Session is the gateway's answer: a URL the customer is redirected to.
type Session struct {
	Reference   string `json:"reference"`
	RedirectURL string `json:"redirect_url"`
}

// Gateway opens payment sessions with the external payment provider.
type Gateway interface {
	// CreateSession requests a redirect URL for the given amount and order
	// reference. Returns model.ErrPaymentGatewayUnavailable when the provider
	// cannot be reached after bounded retries.
	CreateSession(ctx context.Context, req SessionRequest) (*Session, error)
}

// httpGateway implements Gateway over the provider's HTTP API.
type httpGateway struct {
	cfg    config.PaymentConfig
	client *http.Client
	logger zerolog.Logger
}

// NewHTTPGateway creates a gateway client from configuration.
func NewHTTPGateway(cfg config.PaymentConfig, logger zerolog.Logger) Gateway {
	return &httpGateway{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		logger: logger.With().Str("component", "payment-gateway").Logger(),
	}
}

// CreateSession posts the session request, retrying transient failures with
// capped exponential backoff. 4xx responses are not retried: they indicate a
// malformed request, not provider unavailability.
func (g *httpGateway) CreateSession(ctx context.Context, req SessionRequest) (*Session, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session request: %w", err)
	}

	var session *Session

	operation := func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.cfg.BaseURL+"/v1/sessions", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to build session request: %w", err))
		}
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Authorization", "Bearer "+g.cfg.ServerKey)

		resp, err := g.client.Do(httpReq)
		if err != nil {
			g.logger.Warn().Err(err).Str("reference", req.Reference).Msg("gateway request failed, will retry")
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			g.logger.Warn().
				Int("status", resp.StatusCode).
				Str("reference", req.Reference).
				Msg("gateway returned server error, will retry")
			return fmt.Errorf("gateway returned status %d", resp.StatusCode)
		}

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			return backoff.Permanent(fmt.Errorf("gateway rejected session request with status %d", resp.StatusCode))
		}

		var s Session
		if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode session response: %w", err))
		}

		session = &s
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = g.cfg.MaxRetryWait

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		g.logger.Error().Err(err).Str("reference", req.Reference).Msg("payment session request exhausted retries")
		return nil, model.ErrPaymentGatewayUnavailable
	}

	g.logger.Info().
		Str("reference", req.Reference).
		Str("amount", req.Amount.String()).
		Msg("payment session created")
	return session, nil
}
