package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
)

// AssetRepository provides data access methods for the asset table.
type AssetRepository struct {
	db *sql.DB
}

// NewAssetRepository creates a new AssetRepository with the provided database connection.
func NewAssetRepository(db *sql.DB) *AssetRepository {
	return &AssetRepository{db: db}
}

const assetColumns = `id, address, metadata_uri, valuation, total_shares, available_shares,
		price_per_share, owner_id, is_active, is_paused, created_at`

// Insert persists a new asset and returns its allocated id. Ids are
// allocated by the database as a monotonic counter.
func (r *AssetRepository) Insert(ctx context.Context, a *model.Asset) (int64, error) {
	query := `
		INSERT INTO asset (address, metadata_uri, valuation, total_shares, available_shares,
			price_per_share, owner_id, is_active, is_paused, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		a.Address, a.MetadataURI, a.Valuation, a.TotalShares, a.AvailableShares,
		a.PricePerShare, a.OwnerID, a.IsActive, a.IsPaused, FormatTime(a.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to insert asset: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read asset id: %w", err)
	}

	return id, nil
}

// GetAsset retrieves a single asset by id. The second return value
// reports whether the asset exists.
func (r *AssetRepository) GetAsset(assetID int64) (model.Asset, bool, error) {
	query := `SELECT ` + assetColumns + ` FROM asset WHERE id = ?`
	return r.scanAsset(r.db.QueryRow(query, assetID))
}

// GetAssetTx retrieves a single asset by id inside an open transaction.
func (r *AssetRepository) GetAssetTx(tx *sql.Tx, assetID int64) (model.Asset, bool, error) {
	query := `SELECT ` + assetColumns + ` FROM asset WHERE id = ?`
	return r.scanAsset(tx.QueryRow(query, assetID))
}

func (r *AssetRepository) scanAsset(row *sql.Row) (model.Asset, bool, error) {
	var a model.Asset
	var metadataURI sql.NullString
	var createdAtStr string

	err := row.Scan(
		&a.ID,
		&a.Address,
		&metadataURI,
		&a.Valuation,
		&a.TotalShares,
		&a.AvailableShares,
		&a.PricePerShare,
		&a.OwnerID,
		&a.IsActive,
		&a.IsPaused,
		&createdAtStr,
	)
	if err == sql.ErrNoRows {
		return model.Asset{}, false, nil
	}
	if err != nil {
		return model.Asset{}, false, fmt.Errorf("failed to scan asset: %w", err)
	}

	if metadataURI.Valid {
		a.MetadataURI = metadataURI.String
	}

	a.CreatedAt, err = ParseTime(createdAtStr)
	if err != nil {
		return model.Asset{}, false, err
	}

	return a, true, nil
}

// ListAssets retrieves assets matching the filter, ordered by id.
func (r *AssetRepository) ListAssets(filter model.AssetFilter) ([]model.Asset, error) {
	query := `SELECT ` + assetColumns + ` FROM asset`

	var args []any
	var clauses []string

	if !filter.IncludeInactive {
		clauses = append(clauses, "is_active = TRUE")
	}
	if filter.OwnerID != "" {
		clauses = append(clauses, "owner_id = ?")
		args = append(args, filter.OwnerID)
	}

	for i, clause := range clauses {
		if i == 0 {
			query += " WHERE " + clause
		} else {
			query += " AND " + clause
		}
	}
	query += " ORDER BY id ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query asset table: %w", err)
	}
	defer rows.Close()

	assets := []model.Asset{}
	for rows.Next() {
		var a model.Asset
		var metadataURI sql.NullString
		var createdAtStr string

		err := rows.Scan(
			&a.ID,
			&a.Address,
			&metadataURI,
			&a.Valuation,
			&a.TotalShares,
			&a.AvailableShares,
			&a.PricePerShare,
			&a.OwnerID,
			&a.IsActive,
			&a.IsPaused,
			&createdAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset table results: %w", err)
		}

		if metadataURI.Valid {
			a.MetadataURI = metadataURI.String
		}

		a.CreatedAt, err = ParseTime(createdAtStr)
		if err != nil {
			return nil, err
		}

		assets = append(assets, a)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating asset table: %w", err)
	}

	return assets, nil
}

// SetValuation updates the valuation and the derived price per share.
func (r *AssetRepository) SetValuation(ctx context.Context, assetID, valuation, pricePerShare int64) error {
	query := `UPDATE asset SET valuation = ?, price_per_share = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, valuation, pricePerShare, assetID); err != nil {
		return fmt.Errorf("failed to update asset valuation: %w", err)
	}
	return nil
}

// SetPaused updates the paused flag.
func (r *AssetRepository) SetPaused(ctx context.Context, assetID int64, paused bool) error {
	query := `UPDATE asset SET is_paused = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, paused, assetID); err != nil {
		return fmt.Errorf("failed to update asset pause flag: %w", err)
	}
	return nil
}

// SetActive updates the active flag.
func (r *AssetRepository) SetActive(ctx context.Context, assetID int64, active bool) error {
	query := `UPDATE asset SET is_active = ? WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, active, assetID); err != nil {
		return fmt.Errorf("failed to update asset active flag: %w", err)
	}
	return nil
}

// DecrementAvailableTx atomically moves shares out of the available pool.
// The availability check and the decrement are a single guarded UPDATE;
// zero affected rows means the pool does not hold enough shares.
func (r *AssetRepository) DecrementAvailableTx(tx *sql.Tx, assetID, shares int64) (bool, error) {
	query := `
		UPDATE asset
		SET available_shares = available_shares - ?
		WHERE id = ? AND available_shares >= ?
	`

	result, err := tx.Exec(query, shares, assetID, shares)
	if err != nil {
		return false, fmt.Errorf("failed to decrement available shares: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected == 1, nil
}
