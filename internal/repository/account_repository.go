package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
)

// AccountRepository provides data access methods for the internal cash
// account table credited by settlement legs.
type AccountRepository struct {
	db *sql.DB
}

// NewAccountRepository creates a new AccountRepository with the provided database connection.
func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Credit adds the amount to the account balance, creating the account
// row if it does not exist yet.
func (r *AccountRepository) Credit(ctx context.Context, accountID string, amount int64) error {
	now := FormatTime(time.Now())
	query := `
		INSERT INTO account (id, balance, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			balance = balance + excluded.balance,
			updated_at = excluded.updated_at
	`

	if _, err := r.db.ExecContext(ctx, query, accountID, amount, now, now); err != nil {
		return fmt.Errorf("failed to credit account: %w", err)
	}
	return nil
}

// GetAccount retrieves an account by id. The second return value
// reports whether the account exists.
func (r *AccountRepository) GetAccount(accountID string) (model.Account, bool, error) {
	query := `SELECT id, balance, created_at, updated_at FROM account WHERE id = ?`

	var a model.Account
	var createdAtStr, updatedAtStr string

	err := r.db.QueryRow(query, accountID).Scan(&a.ID, &a.Balance, &createdAtStr, &updatedAtStr)
	if err == sql.ErrNoRows {
		return model.Account{}, false, nil
	}
	if err != nil {
		return model.Account{}, false, fmt.Errorf("failed to scan account: %w", err)
	}

	if a.CreatedAt, err = ParseTime(createdAtStr); err != nil {
		return model.Account{}, false, err
	}
	if a.UpdatedAt, err = ParseTime(updatedAtStr); err != nil {
		return model.Account{}, false, err
	}

	return a, true, nil
}
