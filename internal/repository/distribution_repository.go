package repository

import (
	"database/sql"
	"fmt"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
)

// DistributionRepository provides data access methods for the per-asset
// append-only distribution sequence.
type DistributionRepository struct {
	db *sql.DB
}

// NewDistributionRepository creates a new DistributionRepository with the provided database connection.
func NewDistributionRepository(db *sql.DB) *DistributionRepository {
	return &DistributionRepository{db: db}
}

// NextIndexTx returns the next distribution index for an asset inside
// an open transaction.
func (r *DistributionRepository) NextIndexTx(tx *sql.Tx, assetID int64) (int64, error) {
	var next int64
	query := `SELECT COALESCE(MAX(idx) + 1, 0) FROM distribution WHERE asset_id = ?`
	if err := tx.QueryRow(query, assetID).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to compute next distribution index: %w", err)
	}
	return next, nil
}

// InsertTx appends a distribution inside an open transaction.
func (r *DistributionRepository) InsertTx(tx *sql.Tx, d *model.Distribution) error {
	query := `
		INSERT INTO distribution (id, asset_id, idx, amount, sold_shares, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := tx.Exec(query, d.ID, d.AssetID, d.Index, d.Amount, d.SoldShares, FormatTime(d.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert distribution: %w", err)
	}
	return nil
}

// GetByIndex retrieves a single distribution by (asset, index). The
// second return value reports whether the distribution exists.
func (r *DistributionRepository) GetByIndex(assetID, idx int64) (model.Distribution, bool, error) {
	query := `
		SELECT id, asset_id, idx, amount, sold_shares, created_at
		FROM distribution
		WHERE asset_id = ? AND idx = ?
	`

	var d model.Distribution
	var createdAtStr string

	err := r.db.QueryRow(query, assetID, idx).Scan(&d.ID, &d.AssetID, &d.Index, &d.Amount, &d.SoldShares, &createdAtStr)
	if err == sql.ErrNoRows {
		return model.Distribution{}, false, nil
	}
	if err != nil {
		return model.Distribution{}, false, fmt.Errorf("failed to scan distribution: %w", err)
	}

	if d.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.Distribution{}, false, err
	}

	return d, true, nil
}

// ByAsset retrieves all distributions for an asset in index order.
func (r *DistributionRepository) ByAsset(assetID int64) ([]model.Distribution, error) {
	query := `
		SELECT id, asset_id, idx, amount, sold_shares, created_at
		FROM distribution
		WHERE asset_id = ?
		ORDER BY idx ASC
	`

	rows, err := r.db.Query(query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query distribution table: %w", err)
	}
	defer rows.Close()

	distributions := []model.Distribution{}
	for rows.Next() {
		var d model.Distribution
		var createdAtStr string

		err := rows.Scan(&d.ID, &d.AssetID, &d.Index, &d.Amount, &d.SoldShares, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan distribution table results: %w", err)
		}

		if d.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}

		distributions = append(distributions, d)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating distribution table: %w", err)
	}

	return distributions, nil
}

// TotalByAsset returns the summed distributed amount for an asset.
func (r *DistributionRepository) TotalByAsset(assetID int64) (int64, error) {
	var total int64
	query := `SELECT COALESCE(SUM(amount), 0) FROM distribution WHERE asset_id = ?`
	if err := r.db.QueryRow(query, assetID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum distributions: %w", err)
	}
	return total, nil
}
