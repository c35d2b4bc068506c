package service

import (
	"database/sql"
	"fmt"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/repository"
)

// LedgerService owns share balances. The trading and distribution
// services mutate balances exclusively through its Tx methods, inside
// the transaction that carries the rest of the operation.
type LedgerService struct {
	assetRepo   *repository.AssetRepository
	holdingRepo *repository.HoldingRepository
}

// NewLedgerService creates a new LedgerService with the provided repository dependencies.
func NewLedgerService(
	assetRepo *repository.AssetRepository,
	holdingRepo *repository.HoldingRepository,
) *LedgerService {
	return &LedgerService{
		assetRepo:   assetRepo,
		holdingRepo: holdingRepo,
	}
}

// BalanceOf returns the holder's current share balance for an asset.
// A holder without a holding row has a balance of zero.
func (s *LedgerService) BalanceOf(assetID int64, holderID string) (int64, error) {
	holding, found, err := s.holdingRepo.GetHolding(assetID, holderID)
	if err != nil {
		return 0, err
	}
	if !found {
		return 0, nil
	}
	return holding.Shares, nil
}

// PositionOf returns the holder's full position in an asset.
func (s *LedgerService) PositionOf(assetID int64, holderID string) (model.Holding, error) {
	holding, found, err := s.holdingRepo.GetHolding(assetID, holderID)
	if err != nil {
		return model.Holding{}, err
	}
	if !found {
		return model.Holding{}, apperrors.ErrHoldingNotFound
	}
	return holding, nil
}

// HoldersOf returns all positive positions in an asset.
func (s *LedgerService) HoldersOf(assetID int64) ([]model.Holding, error) {
	return s.holdingRepo.HoldersOf(assetID)
}

// PositionsByHolder returns the holder's positions across all assets.
func (s *LedgerService) PositionsByHolder(holderID string) ([]model.HolderPosition, error) {
	return s.holdingRepo.PositionsByHolder(holderID)
}

func (s *LedgerService) creditTx(tx *sql.Tx, assetID int64, holderID string, shares, investment int64) error {
	return s.holdingRepo.CreditTx(tx, assetID, holderID, shares, investment)
}

func (s *LedgerService) debitTx(tx *sql.Tx, assetID int64, holderID string, shares, investment int64) (bool, error) {
	return s.holdingRepo.DebitTx(tx, assetID, holderID, shares, investment)
}

// checkConservationTx verifies that the sum of all holdings plus the
// available pool still equals the asset's total supply, inside the
// transaction that mutated them. A failed check aborts the operation
// before anything becomes visible.
func (s *LedgerService) checkConservationTx(tx *sql.Tx, assetID int64) error {
	asset, found, err := s.assetRepo.GetAssetTx(tx, assetID)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.ErrAssetNotFound
	}

	held, err := s.holdingRepo.SumSharesTx(tx, assetID)
	if err != nil {
		return err
	}

	if held+asset.AvailableShares != asset.TotalShares {
		return fmt.Errorf("%w: asset %d holds %d + %d available, expected %d total",
			apperrors.ErrInvariantViolation, assetID, held, asset.AvailableShares, asset.TotalShares)
	}

	return nil
}
