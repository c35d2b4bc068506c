package request

// PurchaseRequest is the body for buying shares of a single asset.
// Payment is the amount tendered in the smallest currency unit; any
// excess over the total cost is refunded.
type PurchaseRequest struct {
	Shares  int64 `json:"shares"`
	Payment int64 `json:"payment"`
}

// TransferRequest is the body for moving shares to another holder.
type TransferRequest struct {
	ToAccountID string `json:"toAccountId"`
	Shares      int64  `json:"shares"`
}

// BulkPurchaseItem is one line of a bulk purchase order.
type BulkPurchaseItem struct {
	AssetID int64 `json:"assetId"`
	Shares  int64 `json:"shares"`
}

// BulkPurchaseRequest is the body for buying shares across several
// assets atomically.
type BulkPurchaseRequest struct {
	Items   []BulkPurchaseItem `json:"items"`
	Payment int64              `json:"payment"`
}
