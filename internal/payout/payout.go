// Package payout wraps the external payout provider used to move funds
// to account holders once the ledger mutation has committed. The
// provider is optional: without one configured the service runs with
// internal settlement only.
package payout

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Client is the interface the settlement service talks to. It is
// satisfied by ProviderClient in production and by a mock in tests.
type Client interface {
	// SendPayout instructs the provider to transfer the amount (in the
	// smallest currency unit) to the account. The reference must be
	// unique per leg so the provider can deduplicate retries.
	SendPayout(ctx context.Context, accountID string, amount int64, reference string) error
}

// ProviderClient talks HTTP to the configured payout provider.
type ProviderClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewProviderClient creates a payout client for the given provider URL.
// The token authenticates the platform with the provider.
func NewProviderClient(baseURL, token string) *ProviderClient {
	return &ProviderClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type payoutRequest struct {
	AccountID string `json:"accountId"`
	Amount    int64  `json:"amount"`
	Reference string `json:"reference"`
}

type payoutResponse struct {
	Status string  `json:"status"`
	Error  *string `json:"error"`
}

// SendPayout posts a payout instruction to the provider.
func (c *ProviderClient) SendPayout(ctx context.Context, accountID string, amount int64, reference string) error {
	body, err := json.Marshal(payoutRequest{
		AccountID: accountID,
		Amount:    amount,
		Reference: reference,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/v1/payouts", c.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("payout provider returned status %d", resp.StatusCode)
	}

	var response payoutResponse
	if err := json.Unmarshal(data, &response); err != nil {
		return err
	}

	if response.Error != nil {
		return fmt.Errorf("payout provider error: %s", *response.Error)
	}

	return nil
}

// NoopClient is used when no payout provider is configured. Every
// payout succeeds immediately; funds stay on the internal accounts.
type NoopClient struct{}

// NewNoopClient creates a payout client that accepts every payout.
func NewNoopClient() *NoopClient {
	return &NoopClient{}
}

// SendPayout always succeeds.
func (c *NoopClient) SendPayout(_ context.Context, _ string, _ int64, _ string) error {
	return nil
}
