package service

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/fernet/fernet-go"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/config"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/database"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/repository"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/version"
)

// Keys in the system_setting table. Values written through the admin
// API override the startup defaults from the environment.
const (
	settingFeeBps        = "platform_fee_bps"
	settingFeeRecipient  = "platform_fee_recipient"
	settingEmergencyStop = "emergency_stop"
	settingPayoutToken   = "payout_provider_token"
)

// SystemService handles system-related operations and owns the
// platform-wide settings: fee rate, fee recipient, emergency stop, and
// the payout provider credential.
type SystemService struct {
	db               *sql.DB
	settingRepo      *repository.SettingRepository
	defaults         config.PlatformConfig
	fernetKey        *fernet.Key
	payoutConfigured bool
	schedulerEnabled bool
}

// NewSystemService creates a new SystemService. The fernet key encrypts
// the payout provider token at rest; passing an empty key disables
// token storage.
func NewSystemService(
	db *sql.DB,
	settingRepo *repository.SettingRepository,
	defaults config.PlatformConfig,
	fernetKeyStr string,
	payoutConfigured bool,
	schedulerEnabled bool,
) (*SystemService, error) {
	var key *fernet.Key
	if fernetKeyStr != "" {
		decoded, err := fernet.DecodeKey(fernetKeyStr)
		if err != nil {
			return nil, fmt.Errorf("invalid fernet key: %w", err)
		}
		key = decoded
	}

	return &SystemService{
		db:               db,
		settingRepo:      settingRepo,
		defaults:         defaults,
		fernetKey:        key,
		payoutConfigured: payoutConfigured,
		schedulerEnabled: schedulerEnabled,
	}, nil
}

// CheckHealth checks the health of the system.
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion returns the application version, the applied migration
// version, and the feature flags active in this deployment.
func (s *SystemService) CheckVersion() (model.VersionInfo, error) {
	dbVersion, err := database.MigrationVersion(s.db)
	if err != nil {
		return model.VersionInfo{}, err
	}

	return model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  strconv.FormatInt(dbVersion, 10),
		Features: map[string]bool{
			"payout_provider": s.payoutConfigured,
			"scheduler":       s.schedulerEnabled,
		},
	}, nil
}

// FeeBps returns the active platform fee rate in basis points.
func (s *SystemService) FeeBps() (int64, error) {
	value, found, err := s.settingRepo.Get(settingFeeBps)
	if err != nil {
		return 0, err
	}
	if !found {
		return s.defaults.FeeBps, nil
	}

	bps, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt fee setting %q: %w", value, err)
	}
	if bps > config.MaxFeeBps {
		bps = config.MaxFeeBps
	}
	return bps, nil
}

// SetFeeBps updates the platform fee rate. The rate is capped so a
// misconfigured admin call cannot consume a purchase.
func (s *SystemService) SetFeeBps(ctx context.Context, bps int64) error {
	if bps < 0 || bps > config.MaxFeeBps {
		return fmt.Errorf("%w: fee must be between 0 and %d basis points", apperrors.ErrInvalidInput, config.MaxFeeBps)
	}
	return s.settingRepo.Set(ctx, settingFeeBps, strconv.FormatInt(bps, 10))
}

// FeeRecipient returns the account receiving platform fees. An empty
// recipient means no fee is charged.
func (s *SystemService) FeeRecipient() (string, error) {
	value, found, err := s.settingRepo.Get(settingFeeRecipient)
	if err != nil {
		return "", err
	}
	if !found {
		return s.defaults.FeeRecipient, nil
	}
	return value, nil
}

// SetFeeRecipient updates the account receiving platform fees.
func (s *SystemService) SetFeeRecipient(ctx context.Context, accountID string) error {
	if accountID == "" {
		return fmt.Errorf("%w: fee recipient must not be empty", apperrors.ErrInvalidInput)
	}
	return s.settingRepo.Set(ctx, settingFeeRecipient, accountID)
}

// EmergencyStopped reports whether the platform-wide emergency stop is engaged.
func (s *SystemService) EmergencyStopped() (bool, error) {
	value, found, err := s.settingRepo.Get(settingEmergencyStop)
	if err != nil {
		return false, err
	}
	return found && value == "true", nil
}

// SetEmergencyStop engages or releases the platform-wide emergency stop.
// While engaged, every purchase, transfer, distribution, and claim is
// rejected before touching the ledger.
func (s *SystemService) SetEmergencyStop(ctx context.Context, stopped bool) error {
	return s.settingRepo.Set(ctx, settingEmergencyStop, strconv.FormatBool(stopped))
}

// Settings returns the administrative view of the platform settings.
func (s *SystemService) Settings() (model.PlatformSettings, error) {
	feeBps, err := s.FeeBps()
	if err != nil {
		return model.PlatformSettings{}, err
	}
	feeRecipient, err := s.FeeRecipient()
	if err != nil {
		return model.PlatformSettings{}, err
	}
	stopped, err := s.EmergencyStopped()
	if err != nil {
		return model.PlatformSettings{}, err
	}

	return model.PlatformSettings{
		FeeBps:        feeBps,
		FeeRecipient:  feeRecipient,
		EmergencyStop: stopped,
	}, nil
}

// SetPayoutToken stores the payout provider credential encrypted at rest.
func (s *SystemService) SetPayoutToken(ctx context.Context, token string) error {
	if s.fernetKey == nil {
		return fmt.Errorf("%w: no encryption key configured", apperrors.ErrInvalidInput)
	}
	if token == "" {
		return fmt.Errorf("%w: token must not be empty", apperrors.ErrInvalidInput)
	}

	encrypted, err := fernet.EncryptAndSign([]byte(token), s.fernetKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt payout token: %w", err)
	}

	return s.settingRepo.Set(ctx, settingPayoutToken, string(encrypted))
}

// PayoutToken returns the decrypted payout provider credential. The
// second return value reports whether a token has been stored.
func (s *SystemService) PayoutToken() (string, bool, error) {
	if s.fernetKey == nil {
		return "", false, nil
	}

	value, found, err := s.settingRepo.Get(settingPayoutToken)
	if err != nil {
		return "", false, err
	}
	if !found {
		return "", false, nil
	}

	decrypted := fernet.VerifyAndDecrypt([]byte(value), 0, []*fernet.Key{s.fernetKey})
	if decrypted == nil {
		return "", false, fmt.Errorf("stored payout token failed verification")
	}

	return string(decrypted), true, nil
}
