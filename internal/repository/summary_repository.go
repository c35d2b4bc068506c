package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
)

// SummaryRepository provides data access methods for the materialized
// per-asset summary table.
type SummaryRepository struct {
	db *sql.DB
}

// NewSummaryRepository creates a new SummaryRepository with the provided database connection.
func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Upsert replaces the materialized summary for an asset.
func (r *SummaryRepository) Upsert(ctx context.Context, s *model.AssetSummary) error {
	query := `
		INSERT INTO asset_summary_materialized
			(asset_id, holders, sold_shares, total_raised, total_fees, total_distributed, total_claimed, calculated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(asset_id) DO UPDATE SET
			holders = excluded.holders,
			sold_shares = excluded.sold_shares,
			total_raised = excluded.total_raised,
			total_fees = excluded.total_fees,
			total_distributed = excluded.total_distributed,
			total_claimed = excluded.total_claimed,
			calculated_at = excluded.calculated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		s.AssetID, s.Holders, s.SoldShares, s.TotalRaised, s.TotalFees,
		s.TotalDistributed, s.TotalClaimed, FormatTime(s.CalculatedAt))
	if err != nil {
		return fmt.Errorf("failed to upsert asset summary: %w", err)
	}
	return nil
}

// Get retrieves the materialized summary for an asset. The second
// return value reports whether a summary has been calculated.
func (r *SummaryRepository) Get(assetID int64) (model.AssetSummary, bool, error) {
	query := `
		SELECT asset_id, holders, sold_shares, total_raised, total_fees, total_distributed, total_claimed, calculated_at
		FROM asset_summary_materialized
		WHERE asset_id = ?
	`

	var s model.AssetSummary
	var calculatedAtStr string

	err := r.db.QueryRow(query, assetID).Scan(
		&s.AssetID, &s.Holders, &s.SoldShares, &s.TotalRaised, &s.TotalFees,
		&s.TotalDistributed, &s.TotalClaimed, &calculatedAtStr)
	if err == sql.ErrNoRows {
		return model.AssetSummary{}, false, nil
	}
	if err != nil {
		return model.AssetSummary{}, false, fmt.Errorf("failed to scan asset summary: %w", err)
	}

	if s.CalculatedAt, err = ParseTime(calculatedAtStr); err != nil {
		return model.AssetSummary{}, false, err
	}

	return s, true, nil
}
