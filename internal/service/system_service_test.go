package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/config"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/repository"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/service"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/testutil"
)

// testFernetKey is a throwaway 32-byte key for token storage tests.
const testFernetKey = "cw_0x689RpI-jtRR7oE8h_eQsKImvJapLeSbXpwF4e4="

// TestSystemService_FeeSettings tests the platform fee configuration.
func TestSystemService_FeeSettings(t *testing.T) {
	ctx := context.Background()

	t.Run("fee rate falls back to the startup default", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSystemService(t, db)

		bps, err := svc.FeeBps()
		if err != nil {
			t.Fatalf("FeeBps() returned unexpected error: %v", err)
		}
		if bps != 250 {
			t.Errorf("Expected default fee 250 bps, got %d", bps)
		}
	})

	t.Run("a stored fee rate overrides the default", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSystemService(t, db)

		if err := svc.SetFeeBps(ctx, 100); err != nil {
			t.Fatalf("SetFeeBps() returned unexpected error: %v", err)
		}

		bps, err := svc.FeeBps()
		if err != nil {
			t.Fatalf("FeeBps() returned unexpected error: %v", err)
		}
		if bps != 100 {
			t.Errorf("Expected fee 100 bps, got %d", bps)
		}
	})

	t.Run("rejects fee rates outside the allowed band", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSystemService(t, db)

		if err := svc.SetFeeBps(ctx, -1); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for a negative fee, got %v", err)
		}
		if err := svc.SetFeeBps(ctx, config.MaxFeeBps+1); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput above the cap, got %v", err)
		}
		if err := svc.SetFeeBps(ctx, config.MaxFeeBps); err != nil {
			t.Errorf("Expected the cap itself to be accepted, got %v", err)
		}
	})

	t.Run("fee recipient must not be cleared to empty", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSystemService(t, db)

		recipient := testutil.MakeID()
		if err := svc.SetFeeRecipient(ctx, recipient); err != nil {
			t.Fatalf("SetFeeRecipient() returned unexpected error: %v", err)
		}

		stored, err := svc.FeeRecipient()
		if err != nil {
			t.Fatalf("FeeRecipient() returned unexpected error: %v", err)
		}
		if stored != recipient {
			t.Errorf("Expected recipient %s, got %s", recipient, stored)
		}

		if err := svc.SetFeeRecipient(ctx, ""); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput for an empty recipient, got %v", err)
		}
	})
}

// TestSystemService_EmergencyStop tests the platform-wide stop switch.
func TestSystemService_EmergencyStop(t *testing.T) {
	ctx := context.Background()

	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSystemService(t, db)

	stopped, err := svc.EmergencyStopped()
	if err != nil {
		t.Fatalf("EmergencyStopped() returned unexpected error: %v", err)
	}
	if stopped {
		t.Error("Expected the stop to be released by default")
	}

	if err := svc.SetEmergencyStop(ctx, true); err != nil {
		t.Fatalf("SetEmergencyStop(true) returned unexpected error: %v", err)
	}
	stopped, err = svc.EmergencyStopped()
	if err != nil {
		t.Fatalf("EmergencyStopped() returned unexpected error: %v", err)
	}
	if !stopped {
		t.Error("Expected the stop to be engaged")
	}

	settings, err := svc.Settings()
	if err != nil {
		t.Fatalf("Settings() returned unexpected error: %v", err)
	}
	if !settings.EmergencyStop {
		t.Error("Expected the settings view to report the engaged stop")
	}

	if err := svc.SetEmergencyStop(ctx, false); err != nil {
		t.Fatalf("SetEmergencyStop(false) returned unexpected error: %v", err)
	}
	stopped, err = svc.EmergencyStopped()
	if err != nil {
		t.Fatalf("EmergencyStopped() returned unexpected error: %v", err)
	}
	if stopped {
		t.Error("Expected the stop to be released")
	}
}

// TestSystemService_PayoutToken tests encrypted token storage.
//
// WHY: The provider credential sits in the same database as everything
// else; it must never be readable from a raw table dump.
func TestSystemService_PayoutToken(t *testing.T) {
	ctx := context.Background()

	t.Run("round-trips the token through encryption", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc, err := service.NewSystemService(db, repository.NewSettingRepository(db), testutil.TestPlatformConfig(), testFernetKey, false, false)
		if err != nil {
			t.Fatalf("Failed to create system service: %v", err)
		}

		if err := svc.SetPayoutToken(ctx, "provider-secret-token"); err != nil {
			t.Fatalf("SetPayoutToken() returned unexpected error: %v", err)
		}

		token, found, err := svc.PayoutToken()
		if err != nil {
			t.Fatalf("PayoutToken() returned unexpected error: %v", err)
		}
		if !found {
			t.Fatal("Expected a stored token")
		}
		if token != "provider-secret-token" {
			t.Errorf("Expected the token to round-trip, got %q", token)
		}

		// The stored value must not be the plaintext.
		var stored string
		if err := db.QueryRow("SELECT value FROM system_setting WHERE key = 'payout_provider_token'").Scan(&stored); err != nil {
			t.Fatalf("Failed to read stored token: %v", err)
		}
		if stored == "provider-secret-token" {
			t.Error("Expected the token to be encrypted at rest")
		}
	})

	t.Run("storage is disabled without an encryption key", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		svc := testutil.NewTestSystemService(t, db)

		if err := svc.SetPayoutToken(ctx, "provider-secret-token"); !errors.Is(err, apperrors.ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput without a key, got %v", err)
		}

		_, found, err := svc.PayoutToken()
		if err != nil {
			t.Fatalf("PayoutToken() returned unexpected error: %v", err)
		}
		if found {
			t.Error("Expected no token without a key")
		}
	})

	t.Run("rejects a malformed encryption key at startup", func(t *testing.T) {
		db := testutil.SetupTestDB(t)
		_, err := service.NewSystemService(db, repository.NewSettingRepository(db), testutil.TestPlatformConfig(), "not-a-key", false, false)
		if err == nil {
			t.Error("Expected an error for a malformed key")
		}
	})
}

// TestSystemService_CheckHealth tests the database health probe.
func TestSystemService_CheckHealth(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := testutil.NewTestSystemService(t, db)

	if err := svc.CheckHealth(); err != nil {
		t.Errorf("CheckHealth() returned unexpected error: %v", err)
	}
}
