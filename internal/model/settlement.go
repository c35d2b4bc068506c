package model

import "time"

// Settlement leg reasons.
const (
	SettlementReasonOwnerProceeds = "owner_proceeds"
	SettlementReasonPlatformFee   = "platform_fee"
	SettlementReasonRefund        = "refund"
	SettlementReasonRentPayout    = "rent_payout"
)

// Settlement leg / queue statuses.
const (
	SettlementStatusSettled = "settled"
	SettlementStatusQueued  = "queued"
	SettlementStatusPending = "pending"
	SettlementStatusFailed  = "failed"
)

// SettlementLeg reports the outcome of a single payout attempt made
// after a ledger mutation committed.
type SettlementLeg struct {
	AccountID string `json:"accountId"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`
	Status    string `json:"status"`
}

// PendingSettlement is a payout whose external transfer failed and is
// awaiting retry. The internal account credit has already been applied.
type PendingSettlement struct {
	ID        string     `json:"id"`
	AccountID string     `json:"accountId"`
	Amount    int64      `json:"amount"`
	Reason    string     `json:"reason"`
	Reference string     `json:"reference"`
	Status    string     `json:"status"`
	Attempts  int        `json:"attempts"`
	LastError string     `json:"lastError,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	SettledAt *time.Time `json:"settledAt,omitempty"`
}
