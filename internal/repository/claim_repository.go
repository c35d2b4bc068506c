package repository

import (
	"database/sql"
	"fmt"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
)

// ClaimRepository provides data access methods for the claim table.
// A claim row, once written, is never updated or deleted: that is what
// makes claims exactly-once.
type ClaimRepository struct {
	db *sql.DB
}

// NewClaimRepository creates a new ClaimRepository with the provided database connection.
func NewClaimRepository(db *sql.DB) *ClaimRepository {
	return &ClaimRepository{db: db}
}

// ExistsTx reports whether the holder has already claimed the
// distribution, inside an open transaction.
func (r *ClaimRepository) ExistsTx(tx *sql.Tx, assetID, idx int64, holderID string) (bool, error) {
	var count int
	query := `SELECT COUNT(*) FROM claim WHERE asset_id = ? AND distribution_idx = ? AND holder_id = ?`
	if err := tx.QueryRow(query, assetID, idx, holderID).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check claim existence: %w", err)
	}
	return count > 0, nil
}

// InsertTx records a claim inside an open transaction. The unique
// constraint on (asset, distribution, holder) backs the exactly-once
// guarantee even if two claims race.
func (r *ClaimRepository) InsertTx(tx *sql.Tx, c *model.ClaimRecord) error {
	query := `
		INSERT INTO claim (id, asset_id, distribution_idx, holder_id, amount, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := tx.Exec(query, c.ID, c.AssetID, c.DistributionIndex, c.HolderID, c.Amount, FormatTime(c.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert claim: %w", err)
	}
	return nil
}

// ClaimedIndexesTx returns the set of distribution indexes the holder
// has already claimed for an asset, inside an open transaction.
func (r *ClaimRepository) ClaimedIndexesTx(tx *sql.Tx, assetID int64, holderID string) (map[int64]bool, error) {
	query := `SELECT distribution_idx FROM claim WHERE asset_id = ? AND holder_id = ?`

	rows, err := tx.Query(query, assetID, holderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query claimed indexes: %w", err)
	}
	defer rows.Close()

	claimed := make(map[int64]bool)
	for rows.Next() {
		var idx int64
		if err := rows.Scan(&idx); err != nil {
			return nil, fmt.Errorf("failed to scan claimed index: %w", err)
		}
		claimed[idx] = true
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claimed indexes: %w", err)
	}

	return claimed, nil
}

// ClaimedIndexes returns the set of distribution indexes the holder has
// already claimed for an asset.
func (r *ClaimRepository) ClaimedIndexes(assetID int64, holderID string) (map[int64]bool, error) {
	query := `SELECT distribution_idx FROM claim WHERE asset_id = ? AND holder_id = ?`

	rows, err := r.db.Query(query, assetID, holderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query claimed indexes: %w", err)
	}
	defer rows.Close()

	claimed := make(map[int64]bool)
	for rows.Next() {
		var idx int64
		if err := rows.Scan(&idx); err != nil {
			return nil, fmt.Errorf("failed to scan claimed index: %w", err)
		}
		claimed[idx] = true
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating claimed indexes: %w", err)
	}

	return claimed, nil
}

// TotalByAsset returns the summed claimed amount for an asset.
func (r *ClaimRepository) TotalByAsset(assetID int64) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(amount), 0) FROM claim WHERE asset_id = ?`
	if err := r.db.QueryRow(query, assetID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum claims: %w", err)
	}
	return total, nil
}

// TotalByDistributionTx returns the summed claimed amount for a single
// distribution, inside an open transaction.
func (r *ClaimRepository) TotalByDistributionTx(tx *sql.Tx, assetID, idx int64) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(amount), 0) FROM claim WHERE asset_id = ? AND distribution_idx = ?`
	if err := tx.QueryRow(query, assetID, idx).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum distribution claims: %w", err)
	}
	return total, nil
}
