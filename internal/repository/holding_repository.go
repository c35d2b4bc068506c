package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
)

// HoldingRepository provides data access methods for the holding table.
// It is the storage half of the ledger store: all share balance
// mutations go through the Tx methods so the trading and distribution
// services can keep them atomic with the rest of an operation.
type HoldingRepository struct {
	db *sql.DB
}

// NewHoldingRepository creates a new HoldingRepository with the provided database connection.
func NewHoldingRepository(db *sql.DB) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// GetHolding retrieves a holder's position in an asset. The second
// return value reports whether a holding row exists.
func (r *HoldingRepository) GetHolding(assetID int64, holderID string) (model.Holding, bool, error) {
	query := `
		SELECT id, asset_id, holder_id, shares, investment, created_at, updated_at
		FROM holding
		WHERE asset_id = ? AND holder_id = ?
	`
	return scanHolding(r.db.QueryRow(query, assetID, holderID))
}

// GetHoldingTx retrieves a holder's position inside an open transaction.
func (r *HoldingRepository) GetHoldingTx(tx *sql.Tx, assetID int64, holderID string) (model.Holding, bool, error) {
	query := `
		SELECT id, asset_id, holder_id, shares, investment, created_at, updated_at
		FROM holding
		WHERE asset_id = ? AND holder_id = ?
	`
	return scanHolding(tx.QueryRow(query, assetID, holderID))
}

func scanHolding(row *sql.Row) (model.Holding, bool, error) {
	var h model.Holding
	var createdAtStr, updatedAtStr string

	err := row.Scan(&h.ID, &h.AssetID, &h.HolderID, &h.Shares, &h.Investment, &createdAtStr, &updatedAtStr)
	if err == sql.ErrNoRows {
		return model.Holding{}, false, nil
	}
	if err != nil {
		return model.Holding{}, false, fmt.Errorf("failed to scan holding: %w", err)
	}

	if h.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.Holding{}, false, err
	}
	if h.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return model.Holding{}, false, err
	}

	return h, true, nil
}

// CreditTx adds shares and cost basis to a holder's position, creating
// the holding row on first purchase.
func (r *HoldingRepository) CreditTx(tx *sql.Tx, assetID int64, holderID string, shares, investment int64) error {
	now := FormatTime(time.Now())
	query := `
		INSERT INTO holding (id, asset_id, holder_id, shares, investment, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(asset_id, holder_id) DO UPDATE SET
			shares = shares + excluded.shares,
			investment = investment + excluded.investment,
			updated_at = excluded.updated_at
	`

	_, err := tx.Exec(query, uuid.New().String(), assetID, holderID, shares, investment, now, now)
	if err != nil {
		return fmt.Errorf("failed to credit holding: %w", err)
	}
	return nil
}

// DebitTx removes shares and cost basis from a holder's position. The
// balance check and the decrement are a single guarded UPDATE; false
// means the holder does not hold enough shares.
func (r *HoldingRepository) DebitTx(tx *sql.Tx, assetID int64, holderID string, shares, investment int64) (bool, error) {
	query := `
		UPDATE holding
		SET shares = shares - ?, investment = investment - ?, updated_at = ?
		WHERE asset_id = ? AND holder_id = ? AND shares >= ?
	`

	result, err := tx.Exec(query, shares, investment, FormatTime(time.Now()), assetID, holderID, shares)
	if err != nil {
		return false, fmt.Errorf("failed to debit holding: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}

	return affected == 1, nil
}

// HoldersOf retrieves all holdings with a positive balance for an asset.
func (r *HoldingRepository) HoldersOf(assetID int64) ([]model.Holding, error) {
	query := `
		SELECT id, asset_id, holder_id, shares, investment, created_at, updated_at
		FROM holding
		WHERE asset_id = ? AND shares > 0
		ORDER BY holder_id ASC
	`

	rows, err := r.db.Query(query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holding table: %w", err)
	}
	defer rows.Close()

	holdings := []model.Holding{}
	for rows.Next() {
		var h model.Holding
		var createdAtStr, updatedAtStr string

		err := rows.Scan(&h.ID, &h.AssetID, &h.HolderID, &h.Shares, &h.Investment, &createdAtStr, &updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding table results: %w", err)
		}

		if h.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}
		if h.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
			return nil, err
		}

		holdings = append(holdings, h)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holding table: %w", err)
	}

	return holdings, nil
}

// SumSharesTx returns the total shares held across all holders of an
// asset, inside an open transaction. Used for conservation checks.
func (r *HoldingRepository) SumSharesTx(tx *sql.Tx, assetID int64) (int64, error) {
	var sum int64
	query := `SELECT COALESCE(SUM(shares), 0) FROM holding WHERE asset_id = ?`
	if err := tx.QueryRow(query, assetID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("failed to sum holdings: %w", err)
	}
	return sum, nil
}

// PositionsByHolder retrieves a holder's positions across all assets,
// enriched with asset details for portfolio views.
func (r *HoldingRepository) PositionsByHolder(holderID string) ([]model.HolderPosition, error) {
	query := `
		SELECT h.asset_id, a.address, h.shares, h.investment, a.price_per_share, a.is_active
		FROM holding h
		JOIN asset a ON h.asset_id = a.id
		WHERE h.holder_id = ? AND h.shares > 0
		ORDER BY h.asset_id ASC
	`

	rows, err := r.db.Query(query, holderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holder positions: %w", err)
	}
	defer rows.Close()

	positions := []model.HolderPosition{}
	for rows.Next() {
		var p model.HolderPosition
		if err := rows.Scan(&p.AssetID, &p.Address, &p.Shares, &p.Investment, &p.PricePerShare, &p.IsActive); err != nil {
			return nil, fmt.Errorf("failed to scan holder position: %w", err)
		}
		positions = append(positions, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating holder positions: %w", err)
	}

	return positions, nil
}

// CountHolders returns the number of distinct holders with a positive balance.
func (r *HoldingRepository) CountHolders(assetID int64) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM holding WHERE asset_id = ? AND shares > 0`
	if err := r.db.QueryRow(query, assetID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count holders: %w", err)
	}
	return count, nil
}
