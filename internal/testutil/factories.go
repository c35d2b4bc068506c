package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
)

// AssetBuilder provides a fluent interface for creating test assets.
//
// Example usage:
//
//	// Simple creation with defaults
//	asset := testutil.NewAsset().Build(t, db)
//
//	// Customized asset
//	asset := testutil.NewAsset().
//	    WithValuation(2_000_000).
//	    WithTotalShares(2000).
//	    WithOwner(ownerID).
//	    Paused().
//	    Build(t, db)
type AssetBuilder struct {
	Address         string
	MetadataURI     string
	Valuation       int64
	TotalShares     int64
	AvailableShares int64
	OwnerID         string
	IsActive        bool
	IsPaused        bool
}

// NewAsset creates an AssetBuilder with sensible defaults:
// a 1,000,000 valuation split into 1000 shares, all available.
func NewAsset() *AssetBuilder {
	return &AssetBuilder{
		Address:         "12 Test Street",
		MetadataURI:     "ipfs://test-metadata",
		Valuation:       1_000_000,
		TotalShares:     1000,
		AvailableShares: 1000,
		OwnerID:         MakeID(),
		IsActive:        true,
		IsPaused:        false,
	}
}

// WithAddress sets a custom address.
func (b *AssetBuilder) WithAddress(address string) *AssetBuilder {
	b.Address = address
	return b
}

// WithValuation sets a custom valuation.
func (b *AssetBuilder) WithValuation(valuation int64) *AssetBuilder {
	b.Valuation = valuation
	return b
}

// WithTotalShares sets the total supply and resets the available pool to match.
func (b *AssetBuilder) WithTotalShares(shares int64) *AssetBuilder {
	b.TotalShares = shares
	b.AvailableShares = shares
	return b
}

// WithAvailableShares sets a custom available pool.
func (b *AssetBuilder) WithAvailableShares(shares int64) *AssetBuilder {
	b.AvailableShares = shares
	return b
}

// WithOwner sets a custom owner.
func (b *AssetBuilder) WithOwner(ownerID string) *AssetBuilder {
	b.OwnerID = ownerID
	return b
}

// Paused marks the asset as paused.
func (b *AssetBuilder) Paused() *AssetBuilder {
	b.IsPaused = true
	return b
}

// Deactivated marks the asset as deactivated.
func (b *AssetBuilder) Deactivated() *AssetBuilder {
	b.IsActive = false
	return b
}

// Build inserts the asset and returns it with its allocated id.
func (b *AssetBuilder) Build(t *testing.T, db *sql.DB) model.Asset {
	t.Helper()

	result, err := db.Exec(`
		INSERT INTO asset (address, metadata_uri, valuation, total_shares, available_shares,
			price_per_share, owner_id, is_active, is_paused, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Address, b.MetadataURI, b.Valuation, b.TotalShares, b.AvailableShares,
		b.Valuation/b.TotalShares, b.OwnerID, b.IsActive, b.IsPaused,
		time.Now().Format("2006-01-02 15:04:05"))
	if err != nil {
		t.Fatalf("Failed to insert test asset: %v", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("Failed to read test asset id: %v", err)
	}

	return model.Asset{
		ID:              id,
		Address:         b.Address,
		MetadataURI:     b.MetadataURI,
		Valuation:       b.Valuation,
		TotalShares:     b.TotalShares,
		AvailableShares: b.AvailableShares,
		PricePerShare:   b.Valuation / b.TotalShares,
		OwnerID:         b.OwnerID,
		IsActive:        b.IsActive,
		IsPaused:        b.IsPaused,
	}
}

// HoldingBuilder provides a fluent interface for creating test holdings.
// Building a holding does not touch the asset's available pool; use
// WithAvailableShares on the asset builder to keep conservation intact.
type HoldingBuilder struct {
	ID         string
	AssetID    int64
	HolderID   string
	Shares     int64
	Investment int64
}

// NewHolding creates a HoldingBuilder with sensible defaults.
func NewHolding(assetID int64) *HoldingBuilder {
	return &HoldingBuilder{
		ID:         MakeID(),
		AssetID:    assetID,
		HolderID:   MakeID(),
		Shares:     100,
		Investment: 100_000,
	}
}

// WithHolder sets a custom holder.
func (b *HoldingBuilder) WithHolder(holderID string) *HoldingBuilder {
	b.HolderID = holderID
	return b
}

// WithShares sets a custom share balance.
func (b *HoldingBuilder) WithShares(shares int64) *HoldingBuilder {
	b.Shares = shares
	return b
}

// WithInvestment sets a custom cost basis.
func (b *HoldingBuilder) WithInvestment(investment int64) *HoldingBuilder {
	b.Investment = investment
	return b
}

// Build inserts the holding and returns it.
func (b *HoldingBuilder) Build(t *testing.T, db *sql.DB) model.Holding {
	t.Helper()

	now := time.Now().Format("2006-01-02 15:04:05")
	_, err := db.Exec(`
		INSERT INTO holding (id, asset_id, holder_id, shares, investment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.AssetID, b.HolderID, b.Shares, b.Investment, now, now)
	if err != nil {
		t.Fatalf("Failed to insert test holding: %v", err)
	}

	return model.Holding{
		ID:         b.ID,
		AssetID:    b.AssetID,
		HolderID:   b.HolderID,
		Shares:     b.Shares,
		Investment: b.Investment,
	}
}

// DistributionBuilder provides a fluent interface for creating test distributions.
type DistributionBuilder struct {
	ID         string
	AssetID    int64
	Index      int64
	Amount     int64
	SoldShares int64
}

// NewDistribution creates a DistributionBuilder with sensible defaults.
func NewDistribution(assetID int64) *DistributionBuilder {
	return &DistributionBuilder{
		ID:         MakeID(),
		AssetID:    assetID,
		Index:      0,
		Amount:     50_000,
		SoldShares: 100,
	}
}

// WithIndex sets a custom distribution index.
func (b *DistributionBuilder) WithIndex(idx int64) *DistributionBuilder {
	b.Index = idx
	return b
}

// WithAmount sets a custom amount.
func (b *DistributionBuilder) WithAmount(amount int64) *DistributionBuilder {
	b.Amount = amount
	return b
}

// WithSoldShares sets a custom pro-rata denominator.
func (b *DistributionBuilder) WithSoldShares(shares int64) *DistributionBuilder {
	b.SoldShares = shares
	return b
}

// Build inserts the distribution and returns it.
func (b *DistributionBuilder) Build(t *testing.T, db *sql.DB) model.Distribution {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO distribution (id, asset_id, idx, amount, sold_shares, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.ID, b.AssetID, b.Index, b.Amount, b.SoldShares,
		time.Now().Format("2006-01-02 15:04:05"))
	if err != nil {
		t.Fatalf("Failed to insert test distribution: %v", err)
	}

	return model.Distribution{
		ID:         b.ID,
		AssetID:    b.AssetID,
		Index:      b.Index,
		Amount:     b.Amount,
		SoldShares: b.SoldShares,
	}
}

// AccountBuilder provides a fluent interface for creating test cash accounts.
type AccountBuilder struct {
	ID      string
	Balance int64
}

// NewAccount creates an AccountBuilder with a zero balance.
func NewAccount() *AccountBuilder {
	return &AccountBuilder{
		ID:      MakeID(),
		Balance: 0,
	}
}

// WithID sets a custom ID.
func (b *AccountBuilder) WithID(id string) *AccountBuilder {
	b.ID = id
	return b
}

// WithBalance sets a custom balance.
func (b *AccountBuilder) WithBalance(balance int64) *AccountBuilder {
	b.Balance = balance
	return b
}

// Build inserts the account and returns it.
func (b *AccountBuilder) Build(t *testing.T, db *sql.DB) model.Account {
	t.Helper()

	now := time.Now().Format("2006-01-02 15:04:05")
	_, err := db.Exec(`
		INSERT INTO account (id, balance, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		b.ID, b.Balance, now, now)
	if err != nil {
		t.Fatalf("Failed to insert test account: %v", err)
	}

	return model.Account{
		ID:      b.ID,
		Balance: b.Balance,
	}
}
