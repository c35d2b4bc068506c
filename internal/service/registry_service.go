package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/repository"
)

// RegistryService handles asset lifecycle operations: registration,
// valuation updates, pausing, and deactivation.
type RegistryService struct {
	assetRepo      *repository.AssetRepository
	ledger         *LedgerService
	locker         *AssetLocker
	adminAccountID string
}

// NewRegistryService creates a new RegistryService with the provided dependencies.
func NewRegistryService(
	assetRepo *repository.AssetRepository,
	ledger *LedgerService,
	locker *AssetLocker,
	adminAccountID string,
) *RegistryService {
	return &RegistryService{
		assetRepo:      assetRepo,
		ledger:         ledger,
		locker:         locker,
		adminAccountID: adminAccountID,
	}
}

// RegisterAsset creates a new asset owned by the caller. The full share
// supply starts in the available pool and the price per share is derived
// from the valuation.
func (s *RegistryService) RegisterAsset(ctx context.Context, ownerID, address, metadataURI string, valuation, totalShares int64) (model.Asset, error) {
	address = strings.TrimSpace(address)

	if address == "" {
		return model.Asset{}, fmt.Errorf("%w: address must not be empty", apperrors.ErrInvalidInput)
	}
	if valuation <= 0 {
		return model.Asset{}, fmt.Errorf("%w: valuation must be positive", apperrors.ErrInvalidInput)
	}
	if totalShares <= 0 {
		return model.Asset{}, fmt.Errorf("%w: total shares must be positive", apperrors.ErrInvalidInput)
	}
	if valuation < totalShares {
		return model.Asset{}, fmt.Errorf("%w: valuation must be at least one currency unit per share", apperrors.ErrInvalidInput)
	}

	asset := model.Asset{
		Address:         address,
		MetadataURI:     metadataURI,
		Valuation:       valuation,
		TotalShares:     totalShares,
		AvailableShares: totalShares,
		PricePerShare:   valuation / totalShares,
		OwnerID:         ownerID,
		IsActive:        true,
		IsPaused:        false,
		CreatedAt:       time.Now(),
	}

	id, err := s.assetRepo.Insert(ctx, &asset)
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to register asset: %w", err)
	}
	asset.ID = id

	return asset, nil
}

// GetAsset retrieves a single asset by id.
func (s *RegistryService) GetAsset(assetID int64) (model.Asset, error) {
	asset, found, err := s.assetRepo.GetAsset(assetID)
	if err != nil {
		return model.Asset{}, err
	}
	if !found {
		return model.Asset{}, apperrors.ErrAssetNotFound
	}
	return asset, nil
}

// ListAssets retrieves assets matching the filter.
func (s *RegistryService) ListAssets(filter model.AssetFilter) ([]model.Asset, error) {
	return s.assetRepo.ListAssets(filter)
}

// HoldersOf returns all positive positions in an asset.
func (s *RegistryService) HoldersOf(assetID int64) ([]model.Holding, error) {
	if _, err := s.GetAsset(assetID); err != nil {
		return nil, err
	}
	return s.ledger.HoldersOf(assetID)
}

// UpdateValuation sets a new valuation and re-derives the price per
// share. Only the asset owner may revalue, and only while the asset is
// active. The asset lock keeps the price stable for any purchase in
// flight.
func (s *RegistryService) UpdateValuation(ctx context.Context, callerID string, assetID, valuation int64) (model.Asset, error) {
	unlock := s.locker.Lock(assetID)
	defer unlock()

	asset, err := s.GetAsset(assetID)
	if err != nil {
		return model.Asset{}, err
	}

	if asset.OwnerID != callerID {
		return model.Asset{}, fmt.Errorf("%w: only the asset owner may update the valuation", apperrors.ErrUnauthorized)
	}
	if !asset.IsActive {
		return model.Asset{}, apperrors.ErrAssetNotActive
	}
	if valuation <= 0 {
		return model.Asset{}, fmt.Errorf("%w: valuation must be positive", apperrors.ErrInvalidInput)
	}
	if valuation < asset.TotalShares {
		return model.Asset{}, fmt.Errorf("%w: valuation must be at least one currency unit per share", apperrors.ErrInvalidInput)
	}

	pricePerShare := valuation / asset.TotalShares
	if err := s.assetRepo.SetValuation(ctx, assetID, valuation, pricePerShare); err != nil {
		return model.Asset{}, err
	}

	asset.Valuation = valuation
	asset.PricePerShare = pricePerShare
	return asset, nil
}

// SetPaused pauses or resumes trading on an asset. The owner and the
// platform admin may both toggle the flag.
func (s *RegistryService) SetPaused(ctx context.Context, callerID string, assetID int64, paused bool) error {
	unlock := s.locker.Lock(assetID)
	defer unlock()

	asset, err := s.GetAsset(assetID)
	if err != nil {
		return err
	}

	if asset.OwnerID != callerID && !s.isAdmin(callerID) {
		return fmt.Errorf("%w: only the asset owner or the platform admin may pause trading", apperrors.ErrUnauthorized)
	}
	if !asset.IsActive {
		return apperrors.ErrAssetNotActive
	}

	return s.assetRepo.SetPaused(ctx, assetID, paused)
}

// Deactivate retires an asset. The owner may deactivate only while all
// shares remain unsold; the platform admin may force deactivation with
// shares outstanding, which freezes trading but leaves balances and
// unclaimed distributions intact.
func (s *RegistryService) Deactivate(ctx context.Context, callerID string, assetID int64, force bool) error {
	unlock := s.locker.Lock(assetID)
	defer unlock()

	asset, err := s.GetAsset(assetID)
	if err != nil {
		return err
	}

	if force {
		if !s.isAdmin(callerID) {
			return fmt.Errorf("%w: only the platform admin may force deactivation", apperrors.ErrUnauthorized)
		}
	} else {
		if asset.OwnerID != callerID {
			return fmt.Errorf("%w: only the asset owner may deactivate the asset", apperrors.ErrUnauthorized)
		}
		if asset.SoldShares() != 0 {
			return fmt.Errorf("%w: %d shares held by investors", apperrors.ErrSharesSold, asset.SoldShares())
		}
	}

	return s.assetRepo.SetActive(ctx, assetID, false)
}

func (s *RegistryService) isAdmin(callerID string) bool {
	return s.adminAccountID != "" && callerID == s.adminAccountID
}
