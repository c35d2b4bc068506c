package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
)

// SettlementRepository provides data access methods for the settlement
// retry queue. Rows land here when an external payout fails after the
// ledger mutation committed.
type SettlementRepository struct {
	db *sql.DB
}

// NewSettlementRepository creates a new SettlementRepository with the provided database connection.
func NewSettlementRepository(db *sql.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

// Enqueue records a failed payout for later retry.
func (r *SettlementRepository) Enqueue(ctx context.Context, p *model.PendingSettlement) error {
	query := `
		INSERT INTO settlement_queue (id, account_id, amount, reason, reference, status, attempts, last_error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.AccountID, p.Amount, p.Reason, p.Reference, p.Status, p.Attempts, p.LastError, FormatTime(p.CreatedAt))
	if err != nil {
		return fmt.Errorf("failed to enqueue settlement: %w", err)
	}
	return nil
}

// Pending retrieves queued settlements awaiting retry, oldest first.
func (r *SettlementRepository) Pending(limit int) ([]model.PendingSettlement, error) {
	query := `
		SELECT id, account_id, amount, reason, reference, status, attempts, last_error, created_at, settled_at
		FROM settlement_queue
		WHERE status = ?
		ORDER BY created_at ASC
		LIMIT ?
	`

	rows, err := r.db.Query(query, model.SettlementStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query settlement queue: %w", err)
	}
	defer rows.Close()

	pending := []model.PendingSettlement{}
	for rows.Next() {
		var p model.PendingSettlement
		var reference, lastError, settledAtStr sql.NullString
		var createdAtStr string

		err := rows.Scan(&p.ID, &p.AccountID, &p.Amount, &p.Reason, &reference, &p.Status, &p.Attempts, &lastError, &createdAtStr, &settledAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to scan settlement queue results: %w", err)
		}

		if reference.Valid {
			p.Reference = reference.String
		}
		if lastError.Valid {
			p.LastError = lastError.String
		}
		if p.CreatedAt, err = ParseTime(createdAtStr); err != nil {
			return nil, err
		}
		if settledAtStr.Valid {
			settledAt, err := ParseTime(settledAtStr.String)
			if err != nil {
				return nil, err
			}
			p.SettledAt = &settledAt
		}

		pending = append(pending, p)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settlement queue: %w", err)
	}

	return pending, nil
}

// MarkSettled records a successful retry.
func (r *SettlementRepository) MarkSettled(ctx context.Context, id string) error {
	query := `UPDATE settlement_queue SET status = ?, settled_at = ?, last_error = NULL WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, query, model.SettlementStatusSettled, FormatTime(time.Now()), id); err != nil {
		return fmt.Errorf("failed to mark settlement settled: %w", err)
	}
	return nil
}

// MarkAttemptFailed records a failed retry. Once attempts reach
// maxAttempts the row is marked failed and needs manual resolution;
// it is never silently dropped.
func (r *SettlementRepository) MarkAttemptFailed(ctx context.Context, id string, attemptErr string, maxAttempts int) error {
	query := `
		UPDATE settlement_queue
		SET attempts = attempts + 1,
			last_error = ?,
			status = CASE WHEN attempts + 1 >= ? THEN ? ELSE status END
		WHERE id = ?
	`
	if _, err := r.db.ExecContext(ctx, query, attemptErr, maxAttempts, model.SettlementStatusFailed, id); err != nil {
		return fmt.Errorf("failed to record settlement attempt: %w", err)
	}
	return nil
}
