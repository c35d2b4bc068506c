package request

// RegisterAssetRequest is the body for registering a new asset.
// Valuation is in the smallest currency unit.
type RegisterAssetRequest struct {
	Address     string `json:"address"`
	MetadataURI string `json:"metadataUri"`
	Valuation   int64  `json:"valuation"`
	TotalShares int64  `json:"totalShares"`
}

// UpdateValuationRequest is the body for revaluing an asset.
type UpdateValuationRequest struct {
	Valuation int64 `json:"valuation"`
}

// SetPausedRequest is the body for pausing or resuming trading.
// Paused is a pointer so an absent field can be told apart from false.
type SetPausedRequest struct {
	Paused *bool `json:"paused"`
}
