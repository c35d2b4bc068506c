package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/repository"
)

// DistributionService handles income distributions and claims. Each
// distribution snapshots the sold-share count as its pro-rata
// denominator; claims pay out against the holder's current balance and
// are exactly-once per (asset, distribution, holder).
type DistributionService struct {
	db               *sql.DB
	assetRepo        *repository.AssetRepository
	distributionRepo *repository.DistributionRepository
	claimRepo        *repository.ClaimRepository
	ledger           *LedgerService
	settlement       *SettlementService
	system           *SystemService
	locker           *AssetLocker
}

// NewDistributionService creates a new DistributionService with the provided dependencies.
func NewDistributionService(
	db *sql.DB,
	assetRepo *repository.AssetRepository,
	distributionRepo *repository.DistributionRepository,
	claimRepo *repository.ClaimRepository,
	ledger *LedgerService,
	settlement *SettlementService,
	system *SystemService,
	locker *AssetLocker,
) *DistributionService {
	return &DistributionService{
		db:               db,
		assetRepo:        assetRepo,
		distributionRepo: distributionRepo,
		claimRepo:        claimRepo,
		ledger:           ledger,
		settlement:       settlement,
		system:           system,
		locker:           locker,
	}
}

// Distribute records a new income distribution for an asset. Only the
// asset owner may distribute, and only while at least one share is held
// by investors. The returned distribution carries the index holders
// claim against.
func (s *DistributionService) Distribute(ctx context.Context, callerID string, assetID, amount int64) (model.Distribution, error) {
	if err := s.gateEmergencyStop(); err != nil {
		return model.Distribution{}, err
	}
	if amount <= 0 {
		return model.Distribution{}, fmt.Errorf("%w: amount must be positive", apperrors.ErrInvalidInput)
	}

	unlock := s.locker.Lock(assetID)
	defer unlock()

	asset, found, err := s.assetRepo.GetAsset(assetID)
	if err != nil {
		return model.Distribution{}, err
	}
	if !found {
		return model.Distribution{}, apperrors.ErrAssetNotFound
	}
	if asset.OwnerID != callerID {
		return model.Distribution{}, fmt.Errorf("%w: only the asset owner may distribute income", apperrors.ErrUnauthorized)
	}
	if !asset.IsActive {
		return model.Distribution{}, apperrors.ErrAssetNotActive
	}

	soldShares := asset.SoldShares()
	if soldShares <= 0 {
		return model.Distribution{}, apperrors.ErrNoShareholders
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Distribution{}, fmt.Errorf("failed to begin distribution transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	idx, err := s.distributionRepo.NextIndexTx(tx, assetID)
	if err != nil {
		return model.Distribution{}, err
	}

	distribution := model.Distribution{
		ID:         uuid.New().String(),
		AssetID:    assetID,
		Index:      idx,
		Amount:     amount,
		SoldShares: soldShares,
		CreatedAt:  time.Now(),
	}

	if err := s.distributionRepo.InsertTx(tx, &distribution); err != nil {
		return model.Distribution{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.Distribution{}, fmt.Errorf("failed to commit distribution: %w", err)
	}

	return distribution, nil
}

// Claim pays out the holder's share of a single distribution. The
// payout is the holder's current balance divided by the sold-share
// snapshot; the claim row makes a second attempt fail. Claims stay
// available on paused and deactivated assets.
func (s *DistributionService) Claim(ctx context.Context, holderID string, assetID, idx int64) (model.ClaimResult, error) {
	if err := s.gateEmergencyStop(); err != nil {
		return model.ClaimResult{}, err
	}

	unlock := s.locker.Lock(assetID)
	defer unlock()

	if _, found, err := s.assetRepo.GetAsset(assetID); err != nil {
		return model.ClaimResult{}, err
	} else if !found {
		return model.ClaimResult{}, apperrors.ErrAssetNotFound
	}

	distribution, found, err := s.distributionRepo.GetByIndex(assetID, idx)
	if err != nil {
		return model.ClaimResult{}, err
	}
	if !found {
		return model.ClaimResult{}, apperrors.ErrInvalidIndex
	}

	balance, err := s.ledger.BalanceOf(assetID, holderID)
	if err != nil {
		return model.ClaimResult{}, err
	}
	if balance <= 0 {
		return model.ClaimResult{}, apperrors.ErrNothingToClaim
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ClaimResult{}, fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	payout, claim, err := s.claimOneTx(tx, distribution, holderID, balance)
	if err != nil {
		return model.ClaimResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.ClaimResult{}, fmt.Errorf("failed to commit claim: %w", err)
	}

	legs := s.settlement.settle(ctx, []legRequest{
		{AccountID: holderID, Amount: payout, Reason: model.SettlementReasonRentPayout, Reference: claim.ID},
	})

	return model.ClaimResult{
		AssetID:     assetID,
		AmountPaid:  payout,
		Claimed:     []int64{idx},
		Settlements: legs,
	}, nil
}

// ClaimAll pays out every unclaimed distribution of an asset for the
// holder in one transaction and one settlement leg.
func (s *DistributionService) ClaimAll(ctx context.Context, holderID string, assetID int64) (model.ClaimResult, error) {
	if err := s.gateEmergencyStop(); err != nil {
		return model.ClaimResult{}, err
	}

	unlock := s.locker.Lock(assetID)
	defer unlock()

	if _, found, err := s.assetRepo.GetAsset(assetID); err != nil {
		return model.ClaimResult{}, err
	} else if !found {
		return model.ClaimResult{}, apperrors.ErrAssetNotFound
	}

	balance, err := s.ledger.BalanceOf(assetID, holderID)
	if err != nil {
		return model.ClaimResult{}, err
	}
	if balance <= 0 {
		return model.ClaimResult{}, apperrors.ErrNothingToClaim
	}

	distributions, err := s.distributionRepo.ByAsset(assetID)
	if err != nil {
		return model.ClaimResult{}, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.ClaimResult{}, fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	claimed, err := s.claimRepo.ClaimedIndexesTx(tx, assetID, holderID)
	if err != nil {
		return model.ClaimResult{}, err
	}

	var total int64
	claimedIndexes := []int64{}
	batchID := uuid.New().String()

	for _, distribution := range distributions {
		if claimed[distribution.Index] {
			continue
		}

		payout, _, err := s.claimOneTx(tx, distribution, holderID, balance)
		if errors.Is(err, apperrors.ErrNothingToClaim) {
			continue
		}
		if err != nil {
			return model.ClaimResult{}, err
		}

		total += payout
		claimedIndexes = append(claimedIndexes, distribution.Index)
	}

	if total == 0 {
		return model.ClaimResult{}, apperrors.ErrNothingToClaim
	}

	if err := tx.Commit(); err != nil {
		return model.ClaimResult{}, fmt.Errorf("failed to commit claims: %w", err)
	}

	legs := s.settlement.settle(ctx, []legRequest{
		{AccountID: holderID, Amount: total, Reason: model.SettlementReasonRentPayout, Reference: batchID},
	})

	return model.ClaimResult{
		AssetID:     assetID,
		AmountPaid:  total,
		Claimed:     claimedIndexes,
		Settlements: legs,
	}, nil
}

// claimOneTx computes and records the payout for one distribution
// inside an open transaction. The payout is capped at what remains of
// the distribution amount, so summed claims can never exceed it even
// when shares sold after the snapshot inflate current balances.
func (s *DistributionService) claimOneTx(tx *sql.Tx, distribution model.Distribution, holderID string, balance int64) (int64, model.ClaimRecord, error) {
	exists, err := s.claimRepo.ExistsTx(tx, distribution.AssetID, distribution.Index, holderID)
	if err != nil {
		return 0, model.ClaimRecord{}, err
	}
	if exists {
		return 0, model.ClaimRecord{}, apperrors.ErrAlreadyClaimed
	}

	payout := mulDiv(distribution.Amount, balance, distribution.SoldShares)

	claimedTotal, err := s.claimRepo.TotalByDistributionTx(tx, distribution.AssetID, distribution.Index)
	if err != nil {
		return 0, model.ClaimRecord{}, err
	}
	if remaining := distribution.Amount - claimedTotal; payout > remaining {
		payout = remaining
	}
	if payout <= 0 {
		return 0, model.ClaimRecord{}, apperrors.ErrNothingToClaim
	}

	claim := model.ClaimRecord{
		ID:                uuid.New().String(),
		AssetID:           distribution.AssetID,
		DistributionIndex: distribution.Index,
		HolderID:          holderID,
		Amount:            payout,
		CreatedAt:         time.Now(),
	}

	if err := s.claimRepo.InsertTx(tx, &claim); err != nil {
		return 0, model.ClaimRecord{}, err
	}

	return payout, claim, nil
}

// DistributionsByAsset returns an asset's distribution history in index order.
func (s *DistributionService) DistributionsByAsset(assetID int64) ([]model.Distribution, error) {
	if _, found, err := s.assetRepo.GetAsset(assetID); err != nil {
		return nil, err
	} else if !found {
		return nil, apperrors.ErrAssetNotFound
	}
	return s.distributionRepo.ByAsset(assetID)
}

// Claimable returns the distributions the holder has not yet claimed,
// with the payout their current balance would yield.
func (s *DistributionService) Claimable(holderID string, assetID int64) ([]model.ClaimableDistribution, error) {
	if _, found, err := s.assetRepo.GetAsset(assetID); err != nil {
		return nil, err
	} else if !found {
		return nil, apperrors.ErrAssetNotFound
	}

	balance, err := s.ledger.BalanceOf(assetID, holderID)
	if err != nil {
		return nil, err
	}

	distributions, err := s.distributionRepo.ByAsset(assetID)
	if err != nil {
		return nil, err
	}
	claimed, err := s.claimRepo.ClaimedIndexes(assetID, holderID)
	if err != nil {
		return nil, err
	}

	claimable := []model.ClaimableDistribution{}
	for _, distribution := range distributions {
		if claimed[distribution.Index] {
			continue
		}
		claimable = append(claimable, model.ClaimableDistribution{
			Index:  distribution.Index,
			Amount: distribution.Amount,
			Payout: mulDiv(distribution.Amount, balance, distribution.SoldShares),
		})
	}

	return claimable, nil
}

func (s *DistributionService) gateEmergencyStop() error {
	stopped, err := s.system.EmergencyStopped()
	if err != nil {
		return err
	}
	if stopped {
		return apperrors.ErrEmergencyStop
	}
	return nil
}
