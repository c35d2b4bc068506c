package model

import "time"

// Distribution is one entry in an asset's append-only income distribution
// sequence. SoldShares is the pro-rata denominator captured when the
// distribution was recorded; it is never recomputed afterwards.
type Distribution struct {
	ID         string    `json:"id"`
	AssetID    int64     `json:"assetId"`
	Index      int64     `json:"index"`
	Amount     int64     `json:"amount"`
	SoldShares int64     `json:"soldShares"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ClaimRecord marks that a holder has withdrawn their share of a
// specific distribution. One record per (asset, distribution, holder).
type ClaimRecord struct {
	ID                string    `json:"id"`
	AssetID           int64     `json:"assetId"`
	DistributionIndex int64     `json:"distributionIndex"`
	HolderID          string    `json:"holderId"`
	Amount            int64     `json:"amount"`
	CreatedAt         time.Time `json:"createdAt"`
}

// ClaimableDistribution is a distribution the holder has not yet claimed,
// with the payout their current balance would entitle them to.
type ClaimableDistribution struct {
	Index  int64 `json:"index"`
	Amount int64 `json:"amount"`
	Payout int64 `json:"payout"`
}

// ClaimResult reports the outcome of a claim or claim-all operation.
type ClaimResult struct {
	AssetID     int64           `json:"assetId"`
	AmountPaid  int64           `json:"amountPaid"`
	Claimed     []int64         `json:"claimedIndexes"`
	Settlements []SettlementLeg `json:"settlements"`
}
