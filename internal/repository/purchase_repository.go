package repository

import (
	"database/sql"
	"fmt"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
)

// PurchaseRepository provides data access methods for the append-only
// purchase log. Rows are never updated or deleted.
type PurchaseRepository struct {
	db *sql.DB
}

// NewPurchaseRepository creates a new PurchaseRepository with the provided database connection.
func NewPurchaseRepository(db *sql.DB) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

// InsertTx appends a purchase record inside an open transaction.
func (r *PurchaseRepository) InsertTx(tx *sql.Tx, p *model.PurchaseRecord) error {
	query := `
		INSERT INTO purchase (id, asset_id, buyer_id, shares, price_per_share, total_cost, fee, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := tx.Exec(query, p.ID, p.AssetID, p.BuyerID, p.Shares, p.PricePerShare, p.TotalCost, p.Fee, FormatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to insert purchase record: %w", err)
	}
	return nil
}

// PurchasesByAsset retrieves the purchase log for an asset, oldest first.
func (r *PurchaseRepository) PurchasesByAsset(assetID int64) ([]model.PurchaseRecord, error) {
	query := `
		SELECT id, asset_id, buyer_id, shares, price_per_share, total_cost, fee, created_at
		FROM purchase
		WHERE asset_id = ?
		ORDER BY created_at ASC, id ASC
	`

	rows, err := r.db.Query(query, assetID)
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase table: %w", err)
	}
	defer rows.Close()

	purchases := []model.PurchaseRecord{}
	for rows.Next() {
		var p model.PurchaseRecord
		var createdAtStr string

		err := rows.Scan(&p.ID, &p.AssetID, &p.BuyerID, &p.Shares, &p.PricePerShare, &p.TotalCost, &p.Fee, &createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase table results: %w", err)
		}

		if p.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}

		purchases = append(purchases, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase table: %w", err)
	}

	return purchases, nil
}

// TotalsByAsset returns the summed cost and fees across an asset's purchases.
func (r *PurchaseRepository) TotalsByAsset(assetID int64) (totalRaised, totalFees int64, err error) {
	query := `SELECT COALESCE(SUM(total_cost), 0), COALESCE(SUM(fee), 0) FROM purchase WHERE asset_id = ?`
	if err := r.db.QueryRow(query, assetID).Scan(&totalRaised, &totalFees); err != nil {
		return 0, 0, fmt.Errorf("failed to sum purchases: %w", err)
	}
	return totalRaised, totalFees, nil
}
