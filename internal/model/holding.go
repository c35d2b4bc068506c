package model

import "time"

// Holding is a holder's current share balance for a single asset.
// Investment is the holder's cost basis in smallest currency units;
// it moves proportionally when shares are transferred.
type Holding struct {
	ID         string    `json:"id"`
	AssetID    int64     `json:"assetId"`
	HolderID   string    `json:"holderId"`
	Shares     int64     `json:"shares"`
	Investment int64     `json:"investment"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// HolderPosition is a holding enriched with asset details for portfolio views.
type HolderPosition struct {
	AssetID       int64  `json:"assetId"`
	Address       string `json:"address"`
	Shares        int64  `json:"shares"`
	Investment    int64  `json:"investment"`
	PricePerShare int64  `json:"pricePerShare"`
	IsActive      bool   `json:"isActive"`
}
