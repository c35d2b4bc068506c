package model

import "time"

// Asset represents a registered property divided into a fixed number of shares.
// All monetary values are held in the smallest currency unit.
type Asset struct {
	ID              int64     `json:"id"`
	Address         string    `json:"address"`
	MetadataURI     string    `json:"metadataUri"`
	Valuation       int64     `json:"valuation"`
	TotalShares     int64     `json:"totalShares"`
	AvailableShares int64     `json:"availableShares"`
	PricePerShare   int64     `json:"pricePerShare"`
	OwnerID         string    `json:"ownerId"`
	IsActive        bool      `json:"isActive"`
	IsPaused        bool      `json:"isPaused"`
	CreatedAt       time.Time `json:"createdAt"`
}

// SoldShares returns the number of shares currently held by investors.
func (a Asset) SoldShares() int64 {
	return a.TotalShares - a.AvailableShares
}

// AssetFilter for querying assets
type AssetFilter struct {
	IncludeInactive bool
	OwnerID         string
}
