package testutil

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite" // Test Package
)

// SetupTestDB creates an in-memory SQLite database for testing.
// The database is automatically cleaned up when the test completes.
//
// Example usage:
//
//	func TestSomething(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // db is ready to use with schema created
//	}
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	// In-memory database (destroyed when connection closes)
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	// Every pooled connection to a plain :memory: DSN gets its own
	// database; pin the pool to one connection so all queries share it.
	db.SetMaxOpenConns(1)

	// Test connection
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}

	// Configure SQLite for testing
	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA timezone = 'UTC'",
		"PRAGMA journal_mode = MEMORY", // Faster for tests
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			t.Fatalf("Failed to set pragma: %v", err)
		}
	}

	// Create schema
	if err := createTestSchema(db); err != nil {
		t.Fatalf("Failed to create test schema: %v", err)
	}

	// Cleanup when test ends
	t.Cleanup(func() {
		db.Close()
	})

	return db
}

// createTestSchema creates all database tables for testing.
// Schema is synchronized with the production migrations.
//
//nolint:funlen // Database schema DDL
func createTestSchema(db *sql.DB) error {
	schema := `
		-- Asset table
		CREATE TABLE asset (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			address TEXT NOT NULL,
			metadata_uri TEXT,
			valuation INTEGER NOT NULL,
			total_shares INTEGER NOT NULL,
			available_shares INTEGER NOT NULL,
			price_per_share INTEGER NOT NULL,
			owner_id VARCHAR(36) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_paused BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			CHECK (available_shares >= 0),
			CHECK (available_shares <= total_shares)
		);

		-- Holding table
		CREATE TABLE holding (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			asset_id INTEGER NOT NULL,
			holder_id VARCHAR(36) NOT NULL,
			shares INTEGER NOT NULL DEFAULT 0,
			investment INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(asset_id) REFERENCES asset(id),
			CONSTRAINT unique_holding UNIQUE (asset_id, holder_id),
			CHECK (shares >= 0)
		);

		-- Append-only purchase log
		CREATE TABLE purchase (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			asset_id INTEGER NOT NULL,
			buyer_id VARCHAR(36) NOT NULL,
			shares INTEGER NOT NULL,
			price_per_share INTEGER NOT NULL,
			total_cost INTEGER NOT NULL,
			fee INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(asset_id) REFERENCES asset(id)
		);

		-- Distribution table
		CREATE TABLE distribution (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			asset_id INTEGER NOT NULL,
			idx INTEGER NOT NULL,
			amount INTEGER NOT NULL,
			sold_shares INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(asset_id) REFERENCES asset(id),
			CONSTRAINT unique_distribution UNIQUE (asset_id, idx),
			CHECK (sold_shares > 0)
		);

		-- Claim table
		CREATE TABLE claim (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			asset_id INTEGER NOT NULL,
			distribution_idx INTEGER NOT NULL,
			holder_id VARCHAR(36) NOT NULL,
			amount INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(asset_id) REFERENCES asset(id),
			CONSTRAINT unique_claim UNIQUE (asset_id, distribution_idx, holder_id)
		);

		-- Internal cash ledger credited by settlements
		CREATE TABLE account (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			balance INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		-- Settlement retry queue
		CREATE TABLE settlement_queue (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			account_id VARCHAR(36) NOT NULL,
			amount INTEGER NOT NULL,
			reason VARCHAR(20) NOT NULL,
			reference VARCHAR(100),
			status VARCHAR(10) NOT NULL DEFAULT 'pending',
			attempts INTEGER NOT NULL DEFAULT 0,
			last_error TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			settled_at DATETIME
		);

		-- System setting table
		CREATE TABLE system_setting (
			id VARCHAR(36) NOT NULL PRIMARY KEY,
			"key" VARCHAR(30) NOT NULL UNIQUE,
			value VARCHAR(255) NOT NULL,
			updated_at DATETIME
		);

		-- Materialized per-asset summary
		CREATE TABLE asset_summary_materialized (
			asset_id INTEGER NOT NULL PRIMARY KEY,
			holders INTEGER NOT NULL,
			sold_shares INTEGER NOT NULL,
			total_raised INTEGER NOT NULL,
			total_fees INTEGER NOT NULL,
			total_distributed INTEGER NOT NULL,
			total_claimed INTEGER NOT NULL,
			calculated_at DATETIME DEFAULT CURRENT_TIMESTAMP NOT NULL,
			FOREIGN KEY(asset_id) REFERENCES asset(id)
		);

		CREATE INDEX ix_asset_owner_id ON asset(owner_id);
		CREATE INDEX ix_holding_holder_id ON holding(holder_id);
		CREATE INDEX ix_holding_asset_id ON holding(asset_id);
		CREATE INDEX ix_purchase_asset_id ON purchase(asset_id);
		CREATE INDEX ix_purchase_buyer_id ON purchase(buyer_id);
		CREATE INDEX ix_distribution_asset_id ON distribution(asset_id);
		CREATE INDEX ix_claim_asset_idx ON claim(asset_id, distribution_idx);
		CREATE INDEX ix_claim_holder_id ON claim(holder_id);
		CREATE INDEX ix_settlement_queue_status ON settlement_queue(status);
	`

	_, err := db.Exec(schema)
	return err
}

// CleanDatabase removes all rows from all tables, preserving the schema.
// Useful when one test function exercises several scenarios.
//
// Example usage:
//
//	func TestMultipleThings(t *testing.T) {
//	    db := testutil.SetupTestDB(t)
//	    // ... first scenario ...
//	    testutil.CleanDatabase(t, db)
//	    // ... second scenario ...
//	}
func CleanDatabase(t *testing.T, db *sql.DB) {
	t.Helper()

	tables := []string{
		"asset_summary_materialized",
		"system_setting",
		"settlement_queue",
		"account",
		"claim",
		"distribution",
		"purchase",
		"holding",
		"asset",
	}

	for _, table := range tables {
		if _, err := db.Exec("DELETE FROM " + table); err != nil {
			t.Fatalf("Failed to clean table %s: %v", table, err)
		}
	}
}

// CountRows returns the number of rows in a table.
func CountRows(t *testing.T, db *sql.DB, table string) int {
	t.Helper()

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM " + table).Scan(&count); err != nil {
		t.Fatalf("Failed to count rows in %s: %v", table, err)
	}
	return count
}

// AssertRowCount fails the test when a table does not hold the expected
// number of rows.
func AssertRowCount(t *testing.T, db *sql.DB, table string, expected int) {
	t.Helper()

	if count := CountRows(t, db, table); count != expected {
		t.Errorf("Expected %d rows in %s, got %d", expected, table, count)
	}
}
