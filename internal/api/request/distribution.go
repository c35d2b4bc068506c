package request

// DistributeRequest is the body for recording an income distribution.
// Amount is in the smallest currency unit.
type DistributeRequest struct {
	Amount int64 `json:"amount"`
}
