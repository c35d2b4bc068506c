package model

import "time"

// Account is an internal cash ledger entry. Balances are credited by
// settlement legs (owner proceeds, platform fees, refunds, rent payouts).
type Account struct {
	ID        string    `json:"id"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
