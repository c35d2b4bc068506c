package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/testutil"
)

// TestSettlementService_QueueAndRetry tests the payout retry queue.
//
// WHY: The ledger commits before money moves externally. When the
// provider is down the committed purchase must not be lost; its payout
// legs wait in the queue until the provider recovers or the retry
// budget runs out.
func TestSettlementService_QueueAndRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("failed payouts are queued and the ledger keeps its state", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockPayoutClient().WithError(errors.New("provider unavailable"))
		tradingSvc := testutil.NewTestTradingServiceWithPayout(t, db, mock)
		settlementSvc := testutil.NewTestSettlementService(t, db, mock)

		owner := testutil.MakeID()
		asset := testutil.NewAsset().WithOwner(owner).Build(t, db)

		receipt, err := tradingSvc.PurchaseShares(ctx, testutil.MakeID(), asset.ID, 100, 100_000)
		require.NoError(t, err, "the purchase itself must survive a provider outage")

		for _, leg := range receipt.Settlements {
			assert.Equal(t, model.SettlementStatusQueued, leg.Status)
		}

		// The internal account was credited even though the external
		// transfer is still outstanding.
		account, err := settlementSvc.AccountOf(owner)
		require.NoError(t, err)
		assert.Equal(t, int64(100_000), account.Balance)

		pending, err := settlementSvc.PendingSettlements(0)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, owner, pending[0].AccountID)
		assert.Equal(t, int64(100_000), pending[0].Amount)
		assert.Equal(t, model.SettlementReasonOwnerProceeds, pending[0].Reason)
		assert.Equal(t, 1, pending[0].Attempts)
	})

	t.Run("retry drains the queue once the provider recovers", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockPayoutClient().WithError(errors.New("provider unavailable"))
		tradingSvc := testutil.NewTestTradingServiceWithPayout(t, db, mock)
		settlementSvc := testutil.NewTestSettlementService(t, db, mock)

		asset := testutil.NewAsset().Build(t, db)
		_, err := tradingSvc.PurchaseShares(ctx, testutil.MakeID(), asset.ID, 100, 100_000)
		require.NoError(t, err)

		mock.MockError = nil

		attempted, settled, err := settlementSvc.RetryPending(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, attempted)
		assert.Equal(t, 1, settled)
		assert.Equal(t, 1, mock.SentCount())

		pending, err := settlementSvc.PendingSettlements(0)
		require.NoError(t, err)
		assert.Empty(t, pending)
	})

	t.Run("a leg exhausting its retry budget is marked failed", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		mock := testutil.NewMockPayoutClient().WithError(errors.New("provider unavailable"))
		tradingSvc := testutil.NewTestTradingServiceWithPayout(t, db, mock)
		settlementSvc := testutil.NewTestSettlementService(t, db, mock)

		asset := testutil.NewAsset().Build(t, db)
		_, err := tradingSvc.PurchaseShares(ctx, testutil.MakeID(), asset.ID, 100, 100_000)
		require.NoError(t, err)

		// The enqueue counted as the first attempt; two more retries
		// exhaust the budget of three.
		for i := 0; i < 2; i++ {
			attempted, settled, err := settlementSvc.RetryPending(ctx)
			require.NoError(t, err)
			assert.Equal(t, 1, attempted)
			assert.Equal(t, 0, settled)
		}

		pending, err := settlementSvc.PendingSettlements(0)
		require.NoError(t, err)
		assert.Empty(t, pending, "an exhausted leg must leave the retry rotation")

		var status string
		require.NoError(t, db.QueryRow("SELECT status FROM settlement_queue").Scan(&status))
		assert.Equal(t, model.SettlementStatusFailed, status)
	})

	t.Run("retry with an empty queue is a no-op", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		settlementSvc := testutil.NewTestSettlementService(t, db, testutil.NewMockPayoutClient())

		attempted, settled, err := settlementSvc.RetryPending(ctx)
		require.NoError(t, err)
		assert.Zero(t, attempted)
		assert.Zero(t, settled)
	})
}

// TestSettlementService_AccountOf tests internal account lookups.
func TestSettlementService_AccountOf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	settlementSvc := testutil.NewTestSettlementService(t, db, testutil.NewMockPayoutClient())

	account := testutil.NewAccount().WithBalance(12_345).Build(t, db)

	found, err := settlementSvc.AccountOf(account.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(12_345), found.Balance)

	_, err = settlementSvc.AccountOf(testutil.MakeID())
	assert.ErrorIs(t, err, apperrors.ErrAccountNotFound)
}
