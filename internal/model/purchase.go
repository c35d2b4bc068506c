package model

import "time"

// PurchaseRecord is an immutable log entry for a completed share purchase.
type PurchaseRecord struct {
	ID            string    `json:"id"`
	AssetID       int64     `json:"assetId"`
	BuyerID       string    `json:"buyerId"`
	Shares        int64     `json:"shares"`
	PricePerShare int64     `json:"pricePerShare"`
	TotalCost     int64     `json:"totalCost"`
	Fee           int64     `json:"fee"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PurchaseReceipt is returned to the buyer after a purchase completes.
// Settlements reports the outcome of each payout leg; a queued leg means
// the ledger mutation committed but the external payout is pending retry.
type PurchaseReceipt struct {
	Purchase     PurchaseRecord  `json:"purchase"`
	OwnerPayment int64           `json:"ownerPayment"`
	Refund       int64           `json:"refund"`
	Settlements  []SettlementLeg `json:"settlements"`
}

// BulkPurchaseReceipt is returned after an atomic batch purchase.
type BulkPurchaseReceipt struct {
	Purchases   []PurchaseRecord `json:"purchases"`
	TotalCost   int64            `json:"totalCost"`
	TotalFees   int64            `json:"totalFees"`
	Refund      int64            `json:"refund"`
	Settlements []SettlementLeg  `json:"settlements"`
}
