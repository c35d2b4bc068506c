package validation

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/request"
)

func fieldError(t *testing.T, err error, field string) {
	t.Helper()

	if err == nil {
		t.Fatalf("Expected a validation error on %q, got nil", field)
	}
	verr, ok := err.(*Error)
	if !ok {
		t.Fatalf("Expected *validation.Error, got %T", err)
	}
	if _, present := verr.Fields[field]; !present {
		t.Errorf("Expected an error on field %q, got %v", field, verr.Fields)
	}
}

// TestValidateRegisterAsset tests the asset registration body checks.
func TestValidateRegisterAsset(t *testing.T) {
	t.Run("accepts a valid request", func(t *testing.T) {
		err := ValidateRegisterAsset(request.RegisterAssetRequest{
			Address:     "5 Canal Street",
			Valuation:   1_000_000,
			TotalShares: 1000,
		})
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("flags each invalid field", func(t *testing.T) {
		err := ValidateRegisterAsset(request.RegisterAssetRequest{})
		fieldError(t, err, "address")
		fieldError(t, err, "valuation")
		fieldError(t, err, "totalShares")
	})

	t.Run("flags a valuation below one unit per share", func(t *testing.T) {
		err := ValidateRegisterAsset(request.RegisterAssetRequest{
			Address:     "5 Canal Street",
			Valuation:   999,
			TotalShares: 1000,
		})
		fieldError(t, err, "valuation")
	})
}

// TestValidateTransfer tests the transfer body checks.
func TestValidateTransfer(t *testing.T) {
	t.Run("accepts a valid request", func(t *testing.T) {
		err := ValidateTransfer(request.TransferRequest{
			ToAccountID: uuid.New().String(),
			Shares:      10,
		})
		if err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})

	t.Run("flags a malformed recipient", func(t *testing.T) {
		err := ValidateTransfer(request.TransferRequest{ToAccountID: "not-a-uuid", Shares: 10})
		fieldError(t, err, "toAccountId")
	})

	t.Run("flags non-positive shares", func(t *testing.T) {
		err := ValidateTransfer(request.TransferRequest{ToAccountID: uuid.New().String(), Shares: 0})
		fieldError(t, err, "shares")
	})
}

// TestValidateBulkPurchase tests the bulk order body checks.
func TestValidateBulkPurchase(t *testing.T) {
	t.Run("flags an empty order", func(t *testing.T) {
		err := ValidateBulkPurchase(request.BulkPurchaseRequest{})
		fieldError(t, err, "items")
	})

	t.Run("flags the offending line", func(t *testing.T) {
		err := ValidateBulkPurchase(request.BulkPurchaseRequest{
			Items: []request.BulkPurchaseItem{
				{AssetID: 1, Shares: 10},
				{AssetID: 0, Shares: 0},
			},
			Payment: 1000,
		})
		fieldError(t, err, "items[1].assetId")
		fieldError(t, err, "items[1].shares")
	})

	t.Run("flags a negative payment", func(t *testing.T) {
		err := ValidateBulkPurchase(request.BulkPurchaseRequest{
			Items:   []request.BulkPurchaseItem{{AssetID: 1, Shares: 10}},
			Payment: -1,
		})
		fieldError(t, err, "payment")
	})
}

// TestValidateSetFee tests the fee setting body checks.
func TestValidateSetFee(t *testing.T) {
	t.Run("requires the rate", func(t *testing.T) {
		err := ValidateSetFee(request.SetFeeRequest{})
		fieldError(t, err, "feeBps")
	})

	t.Run("caps the rate", func(t *testing.T) {
		feeBps := int64(5000)
		err := ValidateSetFee(request.SetFeeRequest{FeeBps: &feeBps})
		fieldError(t, err, "feeBps")
	})

	t.Run("accepts zero", func(t *testing.T) {
		feeBps := int64(0)
		if err := ValidateSetFee(request.SetFeeRequest{FeeBps: &feeBps}); err != nil {
			t.Errorf("Expected no error, got %v", err)
		}
	})
}

// TestValidateUUID tests the identifier format check.
func TestValidateUUID(t *testing.T) {
	if err := ValidateUUID(uuid.New().String()); err != nil {
		t.Errorf("Expected a valid UUID to pass, got %v", err)
	}
	if err := ValidateUUID("not-a-uuid"); err == nil {
		t.Error("Expected a malformed UUID to fail")
	}
}
