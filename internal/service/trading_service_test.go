package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/service"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/testutil"
)

// TestTradingService_PurchaseShares tests the purchase flow.
//
// WHY: Purchases move money and shares at the same time. These tests pin
// down the exact fee split, the refund of overpayment, and the failure
// modes that must leave the ledger untouched.
func TestTradingService_PurchaseShares(t *testing.T) {
	ctx := context.Background()

	t.Run("purchase splits payment into owner proceeds and fee", func(t *testing.T) {
		// Setup: 1,000,000 valuation over 1000 shares gives a price of
		// 1000 per share. The platform fee is 2.5% (250 bps).
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)
		systemSvc := testutil.NewTestSystemService(t, db)

		feeAccount := testutil.MakeID()
		if err := systemSvc.SetFeeRecipient(ctx, feeAccount); err != nil {
			t.Fatalf("SetFeeRecipient() returned unexpected error: %v", err)
		}

		asset := testutil.NewAsset().Build(t, db)
		buyer := testutil.MakeID()

		// Execute: buy 100 shares for exactly 100 * 1000 = 100,000.
		receipt, err := svc.PurchaseShares(ctx, buyer, asset.ID, 100, 100_000)
		if err != nil {
			t.Fatalf("PurchaseShares() returned unexpected error: %v", err)
		}

		// Assert: 2.5% of 100,000 goes to the platform, the rest to the owner.
		if receipt.Purchase.TotalCost != 100_000 {
			t.Errorf("Expected total cost 100000, got %d", receipt.Purchase.TotalCost)
		}
		if receipt.Purchase.Fee != 2_500 {
			t.Errorf("Expected fee 2500, got %d", receipt.Purchase.Fee)
		}
		if receipt.OwnerPayment != 97_500 {
			t.Errorf("Expected owner payment 97500, got %d", receipt.OwnerPayment)
		}
		if receipt.Refund != 0 {
			t.Errorf("Expected no refund, got %d", receipt.Refund)
		}

		ledger := testutil.NewTestLedgerService(t, db)
		balance, err := ledger.BalanceOf(asset.ID, buyer)
		if err != nil {
			t.Fatalf("BalanceOf() returned unexpected error: %v", err)
		}
		if balance != 100 {
			t.Errorf("Expected buyer balance 100, got %d", balance)
		}

		testutil.AssertRowCount(t, db, "purchase", 1)
	})

	t.Run("excess payment is refunded to the buyer", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)

		asset := testutil.NewAsset().Build(t, db)
		buyer := testutil.MakeID()

		receipt, err := svc.PurchaseShares(ctx, buyer, asset.ID, 100, 150_000)
		if err != nil {
			t.Fatalf("PurchaseShares() returned unexpected error: %v", err)
		}

		if receipt.Refund != 50_000 {
			t.Errorf("Expected refund 50000, got %d", receipt.Refund)
		}

		// Without a fee recipient configured no fee is charged and the
		// whole cost settles to the owner.
		if receipt.Purchase.Fee != 0 {
			t.Errorf("Expected no fee without a recipient, got %d", receipt.Purchase.Fee)
		}
		if receipt.OwnerPayment != 100_000 {
			t.Errorf("Expected owner payment 100000, got %d", receipt.OwnerPayment)
		}
	})

	t.Run("settlement legs credit the internal accounts", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)
		systemSvc := testutil.NewTestSystemService(t, db)
		settlementSvc := testutil.NewTestSettlementService(t, db, testutil.NewMockPayoutClient())

		feeAccount := testutil.MakeID()
		if err := systemSvc.SetFeeRecipient(ctx, feeAccount); err != nil {
			t.Fatalf("SetFeeRecipient() returned unexpected error: %v", err)
		}

		owner := testutil.MakeID()
		asset := testutil.NewAsset().WithOwner(owner).Build(t, db)
		buyer := testutil.MakeID()

		if _, err := svc.PurchaseShares(ctx, buyer, asset.ID, 100, 150_000); err != nil {
			t.Fatalf("PurchaseShares() returned unexpected error: %v", err)
		}

		ownerAccount, err := settlementSvc.AccountOf(owner)
		if err != nil {
			t.Fatalf("AccountOf(owner) returned unexpected error: %v", err)
		}
		if ownerAccount.Balance != 97_500 {
			t.Errorf("Expected owner balance 97500, got %d", ownerAccount.Balance)
		}

		feeAcct, err := settlementSvc.AccountOf(feeAccount)
		if err != nil {
			t.Fatalf("AccountOf(fee) returned unexpected error: %v", err)
		}
		if feeAcct.Balance != 2_500 {
			t.Errorf("Expected fee balance 2500, got %d", feeAcct.Balance)
		}

		buyerAccount, err := settlementSvc.AccountOf(buyer)
		if err != nil {
			t.Fatalf("AccountOf(buyer) returned unexpected error: %v", err)
		}
		if buyerAccount.Balance != 50_000 {
			t.Errorf("Expected buyer refund balance 50000, got %d", buyerAccount.Balance)
		}
	})

	t.Run("rejects payment below total cost", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)

		asset := testutil.NewAsset().Build(t, db)

		_, err := svc.PurchaseShares(ctx, testutil.MakeID(), asset.ID, 100, 99_999)
		if !errors.Is(err, apperrors.ErrInsufficientPayment) {
			t.Errorf("Expected ErrInsufficientPayment, got %v", err)
		}

		testutil.AssertRowCount(t, db, "purchase", 0)
		testutil.AssertRowCount(t, db, "holding", 0)
	})

	t.Run("rejects purchase beyond the available pool", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)

		asset := testutil.NewAsset().Build(t, db)

		_, err := svc.PurchaseShares(ctx, testutil.MakeID(), asset.ID, 1001, 2_000_000)
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Errorf("Expected ErrInsufficientShares, got %v", err)
		}
	})

	t.Run("concurrent purchases cannot oversell the pool", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)

		asset := testutil.NewAsset().Build(t, db)

		// Two buyers race for 600 of the 1000 available shares each.
		// Exactly one purchase can succeed.
		var wg sync.WaitGroup
		results := make(chan error, 2)

		for i := 0; i < 2; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := svc.PurchaseShares(ctx, testutil.MakeID(), asset.ID, 600, 600_000)
				results <- err
			}()
		}
		wg.Wait()
		close(results)

		succeeded := 0
		for err := range results {
			if err == nil {
				succeeded++
			} else if !errors.Is(err, apperrors.ErrInsufficientShares) {
				t.Errorf("Expected ErrInsufficientShares for the loser, got %v", err)
			}
		}
		if succeeded != 1 {
			t.Errorf("Expected exactly 1 successful purchase, got %d", succeeded)
		}

		var available int64
		if err := db.QueryRow("SELECT available_shares FROM asset WHERE id = ?", asset.ID).Scan(&available); err != nil {
			t.Fatalf("Failed to read available shares: %v", err)
		}
		if available != 400 {
			t.Errorf("Expected 400 shares remaining, got %d", available)
		}
	})

	t.Run("rejects trading on paused and inactive assets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)

		paused := testutil.NewAsset().Paused().Build(t, db)
		if _, err := svc.PurchaseShares(ctx, testutil.MakeID(), paused.ID, 1, 1_000); !errors.Is(err, apperrors.ErrAssetPaused) {
			t.Errorf("Expected ErrAssetPaused, got %v", err)
		}

		inactive := testutil.NewAsset().Deactivated().Build(t, db)
		if _, err := svc.PurchaseShares(ctx, testutil.MakeID(), inactive.ID, 1, 1_000); !errors.Is(err, apperrors.ErrAssetNotActive) {
			t.Errorf("Expected ErrAssetNotActive, got %v", err)
		}
	})

	t.Run("rejects every trade while the emergency stop is engaged", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)
		systemSvc := testutil.NewTestSystemService(t, db)

		asset := testutil.NewAsset().Build(t, db)

		if err := systemSvc.SetEmergencyStop(ctx, true); err != nil {
			t.Fatalf("SetEmergencyStop() returned unexpected error: %v", err)
		}

		if _, err := svc.PurchaseShares(ctx, testutil.MakeID(), asset.ID, 1, 1_000); !errors.Is(err, apperrors.ErrEmergencyStop) {
			t.Errorf("Expected ErrEmergencyStop, got %v", err)
		}

		if err := systemSvc.SetEmergencyStop(ctx, false); err != nil {
			t.Fatalf("SetEmergencyStop() returned unexpected error: %v", err)
		}

		if _, err := svc.PurchaseShares(ctx, testutil.MakeID(), asset.ID, 1, 1_000); err != nil {
			t.Errorf("Expected purchase to succeed after release, got %v", err)
		}
	})

	t.Run("rejects unknown assets", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)

		_, err := svc.PurchaseShares(ctx, testutil.MakeID(), 999, 1, 1_000)
		if !errors.Is(err, apperrors.ErrAssetNotFound) {
			t.Errorf("Expected ErrAssetNotFound, got %v", err)
		}
	})
}

// TestTradingService_TransferShares tests holder-to-holder transfers.
//
// WHY: Transfers must move cost basis proportionally and must never
// create or destroy shares, no matter how the transfer is sliced.
func TestTradingService_TransferShares(t *testing.T) {
	ctx := context.Background()

	t.Run("transfer moves a proportional share of the investment", func(t *testing.T) {
		// Setup: sender holds 100 shares with a 100,000 cost basis.
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)

		asset := testutil.NewAsset().WithAvailableShares(900).Build(t, db)
		sender := testutil.MakeID()
		recipient := testutil.MakeID()
		testutil.NewHolding(asset.ID).WithHolder(sender).WithShares(100).WithInvestment(100_000).Build(t, db)

		// Execute: transfer 40 of the 100 shares.
		if err := svc.TransferShares(ctx, sender, asset.ID, recipient, 40); err != nil {
			t.Fatalf("TransferShares() returned unexpected error: %v", err)
		}

		// Assert: 40% of the cost basis moved with the shares.
		ledger := testutil.NewTestLedgerService(t, db)

		senderPos, err := ledger.PositionOf(asset.ID, sender)
		if err != nil {
			t.Fatalf("PositionOf(sender) returned unexpected error: %v", err)
		}
		if senderPos.Shares != 60 || senderPos.Investment != 60_000 {
			t.Errorf("Expected sender position 60/60000, got %d/%d", senderPos.Shares, senderPos.Investment)
		}

		recipientPos, err := ledger.PositionOf(asset.ID, recipient)
		if err != nil {
			t.Fatalf("PositionOf(recipient) returned unexpected error: %v", err)
		}
		if recipientPos.Shares != 40 || recipientPos.Investment != 40_000 {
			t.Errorf("Expected recipient position 40/40000, got %d/%d", recipientPos.Shares, recipientPos.Investment)
		}
	})

	t.Run("rejects transfer to self or to nobody", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)

		asset := testutil.NewAsset().WithAvailableShares(900).Build(t, db)
		sender := testutil.MakeID()
		testutil.NewHolding(asset.ID).WithHolder(sender).WithShares(100).Build(t, db)

		if err := svc.TransferShares(ctx, sender, asset.ID, sender, 10); !errors.Is(err, apperrors.ErrInvalidRecipient) {
			t.Errorf("Expected ErrInvalidRecipient for self-transfer, got %v", err)
		}
		if err := svc.TransferShares(ctx, sender, asset.ID, "", 10); !errors.Is(err, apperrors.ErrInvalidRecipient) {
			t.Errorf("Expected ErrInvalidRecipient for empty recipient, got %v", err)
		}
	})

	t.Run("rejects transfer beyond the sender balance", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)

		asset := testutil.NewAsset().WithAvailableShares(900).Build(t, db)
		sender := testutil.MakeID()
		testutil.NewHolding(asset.ID).WithHolder(sender).WithShares(100).Build(t, db)

		err := svc.TransferShares(ctx, sender, asset.ID, testutil.MakeID(), 101)
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Errorf("Expected ErrInsufficientShares, got %v", err)
		}

		// A sender with no holding at all fails the same way.
		err = svc.TransferShares(ctx, testutil.MakeID(), asset.ID, testutil.MakeID(), 1)
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Errorf("Expected ErrInsufficientShares for missing holding, got %v", err)
		}
	})
}

// TestTradingService_BulkPurchase tests the atomic multi-asset order.
//
// WHY: A bulk order is all-or-nothing. A failure on any line must leave
// every touched asset exactly as it was.
func TestTradingService_BulkPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("fills every line and refunds the excess", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)

		first := testutil.NewAsset().Build(t, db)
		second := testutil.NewAsset().WithValuation(2_000_000).Build(t, db)
		buyer := testutil.MakeID()

		items := []service.PurchaseItem{
			{AssetID: first.ID, Shares: 100}, // 100 * 1000 = 100,000
			{AssetID: second.ID, Shares: 50}, // 50 * 2000 = 100,000
		}

		receipt, err := svc.BulkPurchase(ctx, buyer, items, 250_000)
		if err != nil {
			t.Fatalf("BulkPurchase() returned unexpected error: %v", err)
		}

		if receipt.TotalCost != 200_000 {
			t.Errorf("Expected total cost 200000, got %d", receipt.TotalCost)
		}
		if receipt.Refund != 50_000 {
			t.Errorf("Expected refund 50000, got %d", receipt.Refund)
		}
		if len(receipt.Purchases) != 2 {
			t.Errorf("Expected 2 purchase records, got %d", len(receipt.Purchases))
		}

		ledger := testutil.NewTestLedgerService(t, db)
		for _, item := range items {
			balance, err := ledger.BalanceOf(item.AssetID, buyer)
			if err != nil {
				t.Fatalf("BalanceOf() returned unexpected error: %v", err)
			}
			if balance != item.Shares {
				t.Errorf("Expected balance %d on asset %d, got %d", item.Shares, item.AssetID, balance)
			}
		}
	})

	t.Run("one failing line rolls back the whole order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)

		first := testutil.NewAsset().Build(t, db)
		second := testutil.NewAsset().WithTotalShares(10).Build(t, db)
		buyer := testutil.MakeID()

		items := []service.PurchaseItem{
			{AssetID: first.ID, Shares: 100},
			{AssetID: second.ID, Shares: 11}, // only 10 exist
		}

		_, err := svc.BulkPurchase(ctx, buyer, items, 10_000_000)
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Fatalf("Expected ErrInsufficientShares, got %v", err)
		}

		// Nothing moved on either asset.
		testutil.AssertRowCount(t, db, "purchase", 0)
		testutil.AssertRowCount(t, db, "holding", 0)

		var available int64
		if err := db.QueryRow("SELECT available_shares FROM asset WHERE id = ?", first.ID).Scan(&available); err != nil {
			t.Fatalf("Failed to read available shares: %v", err)
		}
		if available != first.TotalShares {
			t.Errorf("Expected untouched pool of %d, got %d", first.TotalShares, available)
		}
	})

	t.Run("rejects an empty order", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)

		_, err := svc.BulkPurchase(ctx, testutil.MakeID(), []service.PurchaseItem{}, 0)
		if !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})

	t.Run("duplicate lines for one asset are checked against the pool together", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestTradingService(t, db)

		asset := testutil.NewAsset().WithTotalShares(100).Build(t, db)
		buyer := testutil.MakeID()

		items := []service.PurchaseItem{
			{AssetID: asset.ID, Shares: 60},
			{AssetID: asset.ID, Shares: 60},
		}

		_, err := svc.BulkPurchase(ctx, buyer, items, 10_000_000)
		if !errors.Is(err, apperrors.ErrInsufficientShares) {
			t.Errorf("Expected ErrInsufficientShares for aggregated lines, got %v", err)
		}
	})
}

// TestTradingService_Conservation verifies the supply invariant across
// a mixed sequence of operations.
func TestTradingService_Conservation(t *testing.T) {
	ctx := context.Background()

	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestTradingService(t, db)

	asset := testutil.NewAsset().Build(t, db)
	alice := testutil.MakeID()
	bob := testutil.MakeID()

	if _, err := svc.PurchaseShares(ctx, alice, asset.ID, 300, 300_000); err != nil {
		t.Fatalf("PurchaseShares() returned unexpected error: %v", err)
	}
	if _, err := svc.PurchaseShares(ctx, bob, asset.ID, 200, 200_000); err != nil {
		t.Fatalf("PurchaseShares() returned unexpected error: %v", err)
	}
	if err := svc.TransferShares(ctx, alice, asset.ID, bob, 150); err != nil {
		t.Fatalf("TransferShares() returned unexpected error: %v", err)
	}

	var available, held int64
	if err := db.QueryRow("SELECT available_shares FROM asset WHERE id = ?", asset.ID).Scan(&available); err != nil {
		t.Fatalf("Failed to read available shares: %v", err)
	}
	if err := db.QueryRow("SELECT COALESCE(SUM(shares), 0) FROM holding WHERE asset_id = ?", asset.ID).Scan(&held); err != nil {
		t.Fatalf("Failed to sum holdings: %v", err)
	}

	if available+held != asset.TotalShares {
		t.Errorf("Conservation violated: %d available + %d held != %d total", available, held, asset.TotalShares)
	}
}
