package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/config"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/payout"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/repository"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/service"
)

// TestPlatformConfig returns the platform defaults used across service
// tests: a 2.5% fee and a minimum purchase of one share. The fee
// recipient starts empty; tests that exercise fees set one explicitly.
func TestPlatformConfig() config.PlatformConfig {
	return config.PlatformConfig{
		FeeBps:            250,
		FeeRecipient:      "",
		MinPurchaseShares: 1,
		AdminAccountID:    "",
	}
}

func NewTestSystemService(t *testing.T, db *sql.DB) *service.SystemService {
	t.Helper()

	settingRepo := repository.NewSettingRepository(db)

	systemService, err := service.NewSystemService(db, settingRepo, TestPlatformConfig(), "", false, false)
	if err != nil {
		t.Fatalf("Failed to create system service: %v", err)
	}
	return systemService
}

func NewTestLedgerService(t *testing.T, db *sql.DB) *service.LedgerService {
	t.Helper()

	assetRepo := repository.NewAssetRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)

	return service.NewLedgerService(
		assetRepo,
		holdingRepo,
	)
}

func NewTestSettlementService(t *testing.T, db *sql.DB, payoutClient payout.Client) *service.SettlementService {
	t.Helper()

	accountRepo := repository.NewAccountRepository(db)
	settlementRepo := repository.NewSettlementRepository(db)

	return service.NewSettlementService(
		accountRepo,
		settlementRepo,
		payoutClient,
		3,
	)
}

func NewTestRegistryService(t *testing.T, db *sql.DB) *service.RegistryService {
	t.Helper()

	assetRepo := repository.NewAssetRepository(db)

	return service.NewRegistryService(
		assetRepo,
		NewTestLedgerService(t, db),
		service.NewAssetLocker(),
		"",
	)
}

// NewTestRegistryServiceWithAdmin wires a registry service with the
// given platform admin account.
func NewTestRegistryServiceWithAdmin(t *testing.T, db *sql.DB, adminID string) *service.RegistryService {
	t.Helper()

	assetRepo := repository.NewAssetRepository(db)

	return service.NewRegistryService(
		assetRepo,
		NewTestLedgerService(t, db),
		service.NewAssetLocker(),
		adminID,
	)
}

func NewTestTradingService(t *testing.T, db *sql.DB) *service.TradingService {
	t.Helper()

	return NewTestTradingServiceWithPayout(t, db, payout.NewNoopClient())
}

// NewTestTradingServiceWithPayout wires a trading service around the
// given payout client, for tests that exercise settlement failures.
func NewTestTradingServiceWithPayout(t *testing.T, db *sql.DB, payoutClient payout.Client) *service.TradingService {
	t.Helper()

	assetRepo := repository.NewAssetRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)

	return service.NewTradingService(
		db,
		assetRepo,
		purchaseRepo,
		NewTestLedgerService(t, db),
		NewTestSettlementService(t, db, payoutClient),
		NewTestSystemService(t, db),
		service.NewAssetLocker(),
		1,
	)
}

func NewTestDistributionService(t *testing.T, db *sql.DB) *service.DistributionService {
	t.Helper()

	return NewTestDistributionServiceWithPayout(t, db, payout.NewNoopClient())
}

// NewTestDistributionServiceWithPayout wires a distribution service
// around the given payout client.
func NewTestDistributionServiceWithPayout(t *testing.T, db *sql.DB, payoutClient payout.Client) *service.DistributionService {
	t.Helper()

	assetRepo := repository.NewAssetRepository(db)
	distributionRepo := repository.NewDistributionRepository(db)
	claimRepo := repository.NewClaimRepository(db)

	return service.NewDistributionService(
		db,
		assetRepo,
		distributionRepo,
		claimRepo,
		NewTestLedgerService(t, db),
		NewTestSettlementService(t, db, payoutClient),
		NewTestSystemService(t, db),
		service.NewAssetLocker(),
	)
}

func NewTestSnapshotService(t *testing.T, db *sql.DB) *service.SnapshotService {
	t.Helper()

	assetRepo := repository.NewAssetRepository(db)
	holdingRepo := repository.NewHoldingRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	distributionRepo := repository.NewDistributionRepository(db)
	claimRepo := repository.NewClaimRepository(db)
	summaryRepo := repository.NewSummaryRepository(db)

	return service.NewSnapshotService(
		assetRepo,
		holdingRepo,
		purchaseRepo,
		distributionRepo,
		claimRepo,
		summaryRepo,
	)
}

// MakeID generates a unique identifier for test entities.
func MakeID() string {
	return uuid.New().String()
}
