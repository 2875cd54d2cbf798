package wallet

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/Digital-Creators-Team/velvet-slots/httpclient"
)

// HTTPLedger talks to the external wallet service.
type HTTPLedger struct {
	client *httpclient.Client
	logger zerolog.Logger
}

// NewHTTPLedger creates a ledger backed by the wallet service at baseURL.
func NewHTTPLedger(baseURL string, timeout time.Duration, logger zerolog.Logger) *HTTPLedger {
	return &HTTPLedger{
		client: httpclient.New(httpclient.Config{
			BaseURL: baseURL,
			Timeout: timeout,
			Logger:  logger,
		}),
		logger: logger.With().Str("component", "wallet").Logger(),
	}
}

type balanceResponse struct {
	Data struct {
		Balance float64 `json:"balance"` // External service returns float64
	} `json:"data"`
}

// Balance retrieves the player balance from the wallet service.
func (l *HTTPLedger) Balance(ctx context.Context, userID, currency string) (decimal.Decimal, error) {
	path := fmt.Sprintf("/wallet/balance?user_id=%s&currency_id=%s",
		url.QueryEscape(userID), url.QueryEscape(currency))

	var result balanceResponse
	if err := l.client.GetJSON(ctx, path, nil, &result); err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance: %w", err)
	}
	return decimal.NewFromFloat(result.Data.Balance), nil
}

// Debit deducts the bet from the player balance.
func (l *HTTPLedger) Debit(ctx context.Context, userID, currency string, amount decimal.Decimal) error {
	body := map[string]interface{}{
		"user_id":     userID,
		"currency_id": currency,
		"amount":      amount.InexactFloat64(), // Convert to float64 for external service
	}

	resp, err := l.client.Post(ctx, "/wallet/withdraw", body, nil)
	if err != nil {
		return fmt.Errorf("failed to withdraw: %w", err)
	}
	if resp.StatusCode == http.StatusPaymentRequired || resp.StatusCode == http.StatusUnprocessableEntity {
		return ErrInsufficientFunds
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("withdraw failed with status %d", resp.StatusCode)
	}
	return nil
}

// Credit adds a win to the player balance.
func (l *HTTPLedger) Credit(ctx context.Context, userID, currency string, amount decimal.Decimal) error {
	body := map[string]interface{}{
		"user_id":     userID,
		"currency_id": currency,
		"amount":      amount.InexactFloat64(), // Convert to float64 for external service
	}

	resp, err := l.client.Post(ctx, "/wallet/deposit", body, nil)
	if err != nil {
		return fmt.Errorf("failed to deposit: %w", err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("deposit failed with status %d", resp.StatusCode)
	}
	return nil
}
