package request

// SetFeeRequest is the body for updating the platform fee rate.
// FeeBps is a pointer so an absent field can be told apart from zero.
type SetFeeRequest struct {
	FeeBps *int64 `json:"feeBps"`
}

// SetFeeRecipientRequest is the body for updating the fee recipient account.
type SetFeeRecipientRequest struct {
	AccountID string `json:"accountId"`
}

// SetEmergencyStopRequest is the body for engaging or releasing the
// platform-wide emergency stop.
type SetEmergencyStopRequest struct {
	Enabled *bool `json:"enabled"`
}

// SetPayoutTokenRequest is the body for storing the payout provider credential.
type SetPayoutTokenRequest struct {
	Token string `json:"token"`
}
