package testutil

import (
	"context"
	"sync"
)

// MockPayoutClient is a mock implementation of payout.Client for testing.
// It records every payout instruction instead of calling a provider.
type MockPayoutClient struct {
	mu sync.Mutex
	// MockError is the error to return from SendPayout
	MockError error
	// Sent holds every recorded payout instruction
	Sent []MockPayout
}

// MockPayout is one recorded payout instruction.
type MockPayout struct {
	AccountID string
	Amount    int64
	Reference string
}

// NewMockPayoutClient creates a new mock payout client that accepts
// every payout.
func NewMockPayoutClient() *MockPayoutClient {
	return &MockPayoutClient{}
}

// SendPayout records the instruction and returns the configured error.
func (m *MockPayoutClient) SendPayout(_ context.Context, accountID string, amount int64, reference string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.MockError != nil {
		return m.MockError
	}

	m.Sent = append(m.Sent, MockPayout{
		AccountID: accountID,
		Amount:    amount,
		Reference: reference,
	})
	return nil
}

// WithError configures the mock to fail every payout with the given error.
func (m *MockPayoutClient) WithError(err error) *MockPayoutClient {
	m.MockError = err
	return m
}

// SentCount returns how many payouts were recorded.
func (m *MockPayoutClient) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}
