package service

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/repository"
)

// Concurrent summary calculations per refresh run.
const refreshConcurrency = 4

// SnapshotService maintains the materialized per-asset summaries. The
// scheduler refreshes them periodically; reads fall back to an
// on-demand calculation when no summary has been stored yet.
type SnapshotService struct {
	assetRepo        *repository.AssetRepository
	holdingRepo      *repository.HoldingRepository
	purchaseRepo     *repository.PurchaseRepository
	distributionRepo *repository.DistributionRepository
	claimRepo        *repository.ClaimRepository
	summaryRepo      *repository.SummaryRepository
}

// NewSnapshotService creates a new SnapshotService with the provided repository dependencies.
func NewSnapshotService(
	assetRepo *repository.AssetRepository,
	holdingRepo *repository.HoldingRepository,
	purchaseRepo *repository.PurchaseRepository,
	distributionRepo *repository.DistributionRepository,
	claimRepo *repository.ClaimRepository,
	summaryRepo *repository.SummaryRepository,
) *SnapshotService {
	return &SnapshotService{
		assetRepo:        assetRepo,
		holdingRepo:      holdingRepo,
		purchaseRepo:     purchaseRepo,
		distributionRepo: distributionRepo,
		claimRepo:        claimRepo,
		summaryRepo:      summaryRepo,
	}
}

// RefreshAll recalculates and stores the summary for every asset,
// including deactivated ones. Calculations run concurrently; the first
// failure cancels the rest.
func (s *SnapshotService) RefreshAll(ctx context.Context) error {
	assets, err := s.assetRepo.ListAssets(model.AssetFilter{IncludeInactive: true})
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(refreshConcurrency)

	for _, asset := range assets {
		asset := asset
		g.Go(func() error {
			summary, err := s.calculate(asset)
			if err != nil {
				return err
			}
			return s.summaryRepo.Upsert(ctx, &summary)
		})
	}

	return g.Wait()
}

// Summary returns the materialized summary for an asset, calculating
// and storing it on the spot when none exists yet.
func (s *SnapshotService) Summary(ctx context.Context, assetID int64) (model.AssetSummary, error) {
	asset, found, err := s.assetRepo.GetAsset(assetID)
	if err != nil {
		return model.AssetSummary{}, err
	}
	if !found {
		return model.AssetSummary{}, apperrors.ErrAssetNotFound
	}

	summary, found, err := s.summaryRepo.Get(assetID)
	if err != nil {
		return model.AssetSummary{}, err
	}
	if found {
		return summary, nil
	}

	summary, err = s.calculate(asset)
	if err != nil {
		return model.AssetSummary{}, err
	}
	if err := s.summaryRepo.Upsert(ctx, &summary); err != nil {
		return model.AssetSummary{}, err
	}

	return summary, nil
}

func (s *SnapshotService) calculate(asset model.Asset) (model.AssetSummary, error) {
	holders, err := s.holdingRepo.CountHolders(asset.ID)
	if err != nil {
		return model.AssetSummary{}, err
	}

	totalRaised, totalFees, err := s.purchaseRepo.TotalsByAsset(asset.ID)
	if err != nil {
		return model.AssetSummary{}, err
	}

	totalDistributed, err := s.distributionRepo.TotalByAsset(asset.ID)
	if err != nil {
		return model.AssetSummary{}, err
	}

	totalClaimed, err := s.claimRepo.TotalByAsset(asset.ID)
	if err != nil {
		return model.AssetSummary{}, err
	}

	return model.AssetSummary{
		AssetID:          asset.ID,
		Holders:          holders,
		SoldShares:       asset.SoldShares(),
		TotalRaised:      totalRaised,
		TotalFees:        totalFees,
		TotalDistributed: totalDistributed,
		TotalClaimed:     totalClaimed,
		CalculatedAt:     time.Now(),
	}, nil
}
