package validation

import (
	"fmt"
	"strings"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/request"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/config"
)

func ValidateRegisterAsset(req request.RegisterAssetRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Address) == "" {
		errors["address"] = "address is required"
	}

	if req.Valuation <= 0 {
		errors["valuation"] = "valuation must be positive"
	}

	if req.TotalShares <= 0 {
		errors["totalShares"] = "total shares must be positive"
	} else if req.Valuation > 0 && req.Valuation < req.TotalShares {
		errors["valuation"] = "valuation must be at least one currency unit per share"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateUpdateValuation(req request.UpdateValuationRequest) error {
	errors := make(map[string]string)

	if req.Valuation <= 0 {
		errors["valuation"] = "valuation must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateSetPaused(req request.SetPausedRequest) error {
	errors := make(map[string]string)

	if req.Paused == nil {
		errors["paused"] = "paused is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidatePurchase(req request.PurchaseRequest) error {
	errors := make(map[string]string)

	if req.Shares <= 0 {
		errors["shares"] = "shares must be positive"
	}

	if req.Payment < 0 {
		errors["payment"] = "payment must not be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateTransfer(req request.TransferRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.ToAccountID) == "" {
		errors["toAccountId"] = "recipient account is required"
	} else if err := ValidateUUID(req.ToAccountID); err != nil {
		errors["toAccountId"] = err.Error()
	}

	if req.Shares <= 0 {
		errors["shares"] = "shares must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateBulkPurchase(req request.BulkPurchaseRequest) error {
	errors := make(map[string]string)

	if len(req.Items) == 0 {
		errors["items"] = "at least one item is required"
	}
	for i, item := range req.Items {
		if item.AssetID <= 0 {
			errors[fmt.Sprintf("items[%d].assetId", i)] = "asset id must be positive"
		}
		if item.Shares <= 0 {
			errors[fmt.Sprintf("items[%d].shares", i)] = "shares must be positive"
		}
	}

	if req.Payment < 0 {
		errors["payment"] = "payment must not be negative"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateDistribute(req request.DistributeRequest) error {
	errors := make(map[string]string)

	if req.Amount <= 0 {
		errors["amount"] = "amount must be positive"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateSetFee(req request.SetFeeRequest) error {
	errors := make(map[string]string)

	if req.FeeBps == nil {
		errors["feeBps"] = "feeBps is required"
	} else if *req.FeeBps < 0 || *req.FeeBps > config.MaxFeeBps {
		errors["feeBps"] = fmt.Sprintf("feeBps must be between 0 and %d", config.MaxFeeBps)
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateSetFeeRecipient(req request.SetFeeRecipientRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.AccountID) == "" {
		errors["accountId"] = "account id is required"
	} else if err := ValidateUUID(req.AccountID); err != nil {
		errors["accountId"] = err.Error()
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateSetEmergencyStop(req request.SetEmergencyStopRequest) error {
	errors := make(map[string]string)

	if req.Enabled == nil {
		errors["enabled"] = "enabled is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}

func ValidateSetPayoutToken(req request.SetPayoutTokenRequest) error {
	errors := make(map[string]string)

	if strings.TrimSpace(req.Token) == "" {
		errors["token"] = "token is required"
	}

	if len(errors) > 0 {
		return &Error{Fields: errors}
	}

	return nil
}
