package model

import "time"

// AssetSummary is a pre-calculated per-asset aggregate stored in the
// asset_summary_materialized table for fast retrieval.
type AssetSummary struct {
	AssetID          int64     `json:"assetId"`
	Holders          int64     `json:"holders"`
	SoldShares       int64     `json:"soldShares"`
	TotalRaised      int64     `json:"totalRaised"`
	TotalFees        int64     `json:"totalFees"`
	TotalDistributed int64     `json:"totalDistributed"`
	TotalClaimed     int64     `json:"totalClaimed"`
	CalculatedAt     time.Time `json:"calculatedAt"`
}
