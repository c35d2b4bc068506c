package service

import (
	"context"
	"database/sql"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/repository"
)

// TradingService handles share purchases and transfers. Every mutation
// runs under the asset's lock and inside a single transaction, with a
// conservation check before commit; payout legs run after commit.
type TradingService struct {
	db           *sql.DB
	assetRepo    *repository.AssetRepository
	purchaseRepo *repository.PurchaseRepository
	ledger       *LedgerService
	settlement   *SettlementService
	system       *SystemService
	locker       *AssetLocker
	minShares    int64
}

// NewTradingService creates a new TradingService with the provided dependencies.
func NewTradingService(
	db *sql.DB,
	assetRepo *repository.AssetRepository,
	purchaseRepo *repository.PurchaseRepository,
	ledger *LedgerService,
	settlement *SettlementService,
	system *SystemService,
	locker *AssetLocker,
	minShares int64,
) *TradingService {
	if minShares < 1 {
		minShares = 1
	}
	return &TradingService{
		db:           db,
		assetRepo:    assetRepo,
		purchaseRepo: purchaseRepo,
		ledger:       ledger,
		settlement:   settlement,
		system:       system,
		locker:       locker,
		minShares:    minShares,
	}
}

// PurchaseItem is one line of a bulk purchase order.
type PurchaseItem struct {
	AssetID int64
	Shares  int64
}

// PurchaseShares sells shares from the asset's available pool to the
// buyer. The payment must cover shares times the current price; any
// excess is refunded. The platform fee is deducted from the proceeds
// before they are settled to the asset owner.
func (s *TradingService) PurchaseShares(ctx context.Context, buyerID string, assetID, shares, payment int64) (model.PurchaseReceipt, error) {
	if err := s.gateEmergencyStop(); err != nil {
		return model.PurchaseReceipt{}, err
	}
	if shares < s.minShares {
		return model.PurchaseReceipt{}, fmt.Errorf("%w: must purchase at least %d shares", apperrors.ErrInvalidInput, s.minShares)
	}
	if payment < 0 {
		return model.PurchaseReceipt{}, fmt.Errorf("%w: payment must not be negative", apperrors.ErrInvalidInput)
	}

	unlock := s.locker.Lock(assetID)
	defer unlock()

	asset, err := s.tradableAsset(assetID)
	if err != nil {
		return model.PurchaseReceipt{}, err
	}
	if shares > asset.AvailableShares {
		return model.PurchaseReceipt{}, fmt.Errorf("%w: %d available, %d requested", apperrors.ErrInsufficientShares, asset.AvailableShares, shares)
	}

	cost, ok := safeMul(shares, asset.PricePerShare)
	if !ok {
		return model.PurchaseReceipt{}, fmt.Errorf("%w: total cost overflows", apperrors.ErrInvalidInput)
	}
	if payment < cost {
		return model.PurchaseReceipt{}, fmt.Errorf("%w: total cost is %d, payment is %d", apperrors.ErrInsufficientPayment, cost, payment)
	}

	fee, feeRecipient, err := s.feeOn(cost)
	if err != nil {
		return model.PurchaseReceipt{}, err
	}
	ownerPayment := cost - fee
	refund := payment - cost

	purchase := model.PurchaseRecord{
		ID:            uuid.New().String(),
		AssetID:       assetID,
		BuyerID:       buyerID,
		Shares:        shares,
		PricePerShare: asset.PricePerShare,
		TotalCost:     cost,
		Fee:           fee,
		CreatedAt:     time.Now(),
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.PurchaseReceipt{}, fmt.Errorf("failed to begin purchase transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	decremented, err := s.assetRepo.DecrementAvailableTx(tx, assetID, shares)
	if err != nil {
		return model.PurchaseReceipt{}, err
	}
	if !decremented {
		return model.PurchaseReceipt{}, fmt.Errorf("%w: available pool changed", apperrors.ErrInsufficientShares)
	}

	if err := s.ledger.creditTx(tx, assetID, buyerID, shares, cost); err != nil {
		return model.PurchaseReceipt{}, err
	}
	if err := s.purchaseRepo.InsertTx(tx, &purchase); err != nil {
		return model.PurchaseReceipt{}, err
	}
	if err := s.ledger.checkConservationTx(tx, assetID); err != nil {
		return model.PurchaseReceipt{}, err
	}

	if err := tx.Commit(); err != nil {
		return model.PurchaseReceipt{}, fmt.Errorf("failed to commit purchase: %w", err)
	}

	legs := s.settlement.settle(ctx, []legRequest{
		{AccountID: asset.OwnerID, Amount: ownerPayment, Reason: model.SettlementReasonOwnerProceeds, Reference: purchase.ID},
		{AccountID: feeRecipient, Amount: fee, Reason: model.SettlementReasonPlatformFee, Reference: purchase.ID},
		{AccountID: buyerID, Amount: refund, Reason: model.SettlementReasonRefund, Reference: purchase.ID},
	})

	return model.PurchaseReceipt{
		Purchase:     purchase,
		OwnerPayment: ownerPayment,
		Refund:       refund,
		Settlements:  legs,
	}, nil
}

// TransferShares moves shares between two holders. The sender's cost
// basis moves with them in proportion to the shares transferred, so the
// combined investment of sender and recipient is preserved.
func (s *TradingService) TransferShares(ctx context.Context, fromID string, assetID int64, toID string, shares int64) error {
	if err := s.gateEmergencyStop(); err != nil {
		return err
	}
	if toID == "" || toID == fromID {
		return apperrors.ErrInvalidRecipient
	}
	if shares <= 0 {
		return fmt.Errorf("%w: shares must be positive", apperrors.ErrInvalidInput)
	}

	unlock := s.locker.Lock(assetID)
	defer unlock()

	if _, err := s.tradableAsset(assetID); err != nil {
		return err
	}

	holding, found, err := s.ledger.holdingRepo.GetHolding(assetID, fromID)
	if err != nil {
		return err
	}
	if !found || holding.Shares < shares {
		return fmt.Errorf("%w: balance is %d, transfer of %d requested", apperrors.ErrInsufficientShares, holding.Shares, shares)
	}

	investmentMoved := mulDiv(holding.Investment, shares, holding.Shares)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transfer transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	debited, err := s.ledger.debitTx(tx, assetID, fromID, shares, investmentMoved)
	if err != nil {
		return err
	}
	if !debited {
		return fmt.Errorf("%w: balance changed", apperrors.ErrInsufficientShares)
	}

	if err := s.ledger.creditTx(tx, assetID, toID, shares, investmentMoved); err != nil {
		return err
	}
	if err := s.ledger.checkConservationTx(tx, assetID); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transfer: %w", err)
	}

	return nil
}

// BulkPurchase buys shares across several assets in one atomic
// operation: either every line succeeds or none does. Asset locks are
// taken in ascending id order so overlapping bulk orders cannot deadlock.
func (s *TradingService) BulkPurchase(ctx context.Context, buyerID string, items []PurchaseItem, payment int64) (model.BulkPurchaseReceipt, error) {
	if err := s.gateEmergencyStop(); err != nil {
		return model.BulkPurchaseReceipt{}, err
	}
	if len(items) == 0 {
		return model.BulkPurchaseReceipt{}, fmt.Errorf("%w: order must contain at least one item", apperrors.ErrInvalidInput)
	}
	if payment < 0 {
		return model.BulkPurchaseReceipt{}, fmt.Errorf("%w: payment must not be negative", apperrors.ErrInvalidInput)
	}

	assetIDs := make([]int64, 0, len(items))
	requested := make(map[int64]int64, len(items))
	for _, item := range items {
		if item.Shares < s.minShares {
			return model.BulkPurchaseReceipt{}, fmt.Errorf("%w: must purchase at least %d shares of asset %d", apperrors.ErrInvalidInput, s.minShares, item.AssetID)
		}
		assetIDs = append(assetIDs, item.AssetID)
		requested[item.AssetID] += item.Shares
	}

	unlock := s.locker.LockMany(assetIDs)
	defer unlock()

	assets := make(map[int64]model.Asset, len(requested))
	for assetID, shares := range requested {
		asset, err := s.tradableAsset(assetID)
		if err != nil {
			return model.BulkPurchaseReceipt{}, err
		}
		if shares > asset.AvailableShares {
			return model.BulkPurchaseReceipt{}, fmt.Errorf("%w: asset %d has %d available, %d requested", apperrors.ErrInsufficientShares, assetID, asset.AvailableShares, shares)
		}
		assets[assetID] = asset
	}

	totalCost := new(big.Int)
	itemCosts := make([]int64, len(items))
	for i, item := range items {
		cost, ok := safeMul(item.Shares, assets[item.AssetID].PricePerShare)
		if !ok {
			return model.BulkPurchaseReceipt{}, fmt.Errorf("%w: total cost overflows", apperrors.ErrInvalidInput)
		}
		itemCosts[i] = cost
		totalCost.Add(totalCost, big.NewInt(cost))
	}
	if !totalCost.IsInt64() {
		return model.BulkPurchaseReceipt{}, fmt.Errorf("%w: total cost overflows", apperrors.ErrInvalidInput)
	}
	total := totalCost.Int64()
	if payment < total {
		return model.BulkPurchaseReceipt{}, fmt.Errorf("%w: total cost is %d, payment is %d", apperrors.ErrInsufficientPayment, total, payment)
	}

	feeBps, err := s.system.FeeBps()
	if err != nil {
		return model.BulkPurchaseReceipt{}, err
	}
	feeRecipient, err := s.system.FeeRecipient()
	if err != nil {
		return model.BulkPurchaseReceipt{}, err
	}

	purchases := make([]model.PurchaseRecord, len(items))
	legs := make([]legRequest, 0, 2*len(items)+1)
	var totalFees int64
	now := time.Now()

	for i, item := range items {
		fee := int64(0)
		if feeRecipient != "" {
			fee = feeFor(itemCosts[i], feeBps)
		}
		totalFees += fee

		purchases[i] = model.PurchaseRecord{
			ID:            uuid.New().String(),
			AssetID:       item.AssetID,
			BuyerID:       buyerID,
			Shares:        item.Shares,
			PricePerShare: assets[item.AssetID].PricePerShare,
			TotalCost:     itemCosts[i],
			Fee:           fee,
			CreatedAt:     now,
		}

		legs = append(legs, legRequest{
			AccountID: assets[item.AssetID].OwnerID,
			Amount:    itemCosts[i] - fee,
			Reason:    model.SettlementReasonOwnerProceeds,
			Reference: purchases[i].ID,
		})
		if fee > 0 {
			legs = append(legs, legRequest{
				AccountID: feeRecipient,
				Amount:    fee,
				Reason:    model.SettlementReasonPlatformFee,
				Reference: purchases[i].ID,
			})
		}
	}

	refund := payment - total

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.BulkPurchaseReceipt{}, fmt.Errorf("failed to begin bulk purchase transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for i, item := range items {
		decremented, err := s.assetRepo.DecrementAvailableTx(tx, item.AssetID, item.Shares)
		if err != nil {
			return model.BulkPurchaseReceipt{}, err
		}
		if !decremented {
			return model.BulkPurchaseReceipt{}, fmt.Errorf("%w: available pool of asset %d changed", apperrors.ErrInsufficientShares, item.AssetID)
		}
		if err := s.ledger.creditTx(tx, item.AssetID, buyerID, item.Shares, itemCosts[i]); err != nil {
			return model.BulkPurchaseReceipt{}, err
		}
		if err := s.purchaseRepo.InsertTx(tx, &purchases[i]); err != nil {
			return model.BulkPurchaseReceipt{}, err
		}
	}

	for assetID := range requested {
		if err := s.ledger.checkConservationTx(tx, assetID); err != nil {
			return model.BulkPurchaseReceipt{}, err
		}
	}

	if err := tx.Commit(); err != nil {
		return model.BulkPurchaseReceipt{}, fmt.Errorf("failed to commit bulk purchase: %w", err)
	}

	if refund > 0 {
		legs = append(legs, legRequest{
			AccountID: buyerID,
			Amount:    refund,
			Reason:    model.SettlementReasonRefund,
			Reference: purchases[0].ID,
		})
	}
	settled := s.settlement.settle(ctx, legs)

	return model.BulkPurchaseReceipt{
		Purchases:   purchases,
		TotalCost:   total,
		TotalFees:   totalFees,
		Refund:      refund,
		Settlements: settled,
	}, nil
}

// PurchasesByAsset returns the purchase log for an asset, oldest first.
func (s *TradingService) PurchasesByAsset(assetID int64) ([]model.PurchaseRecord, error) {
	if _, found, err := s.assetRepo.GetAsset(assetID); err != nil {
		return nil, err
	} else if !found {
		return nil, apperrors.ErrAssetNotFound
	}
	return s.purchaseRepo.PurchasesByAsset(assetID)
}

// tradableAsset loads an asset and verifies it accepts trades.
func (s *TradingService) tradableAsset(assetID int64) (model.Asset, error) {
	asset, found, err := s.assetRepo.GetAsset(assetID)
	if err != nil {
		return model.Asset{}, err
	}
	if !found {
		return model.Asset{}, apperrors.ErrAssetNotFound
	}
	if !asset.IsActive {
		return model.Asset{}, apperrors.ErrAssetNotActive
	}
	if asset.IsPaused {
		return model.Asset{}, apperrors.ErrAssetPaused
	}
	return asset, nil
}

// feeOn computes the platform fee for a cost. Without a configured fee
// recipient no fee is charged, since there would be no account to
// settle it to.
func (s *TradingService) feeOn(cost int64) (int64, string, error) {
	feeRecipient, err := s.system.FeeRecipient()
	if err != nil {
		return 0, "", err
	}
	if feeRecipient == "" {
		return 0, "", nil
	}

	feeBps, err := s.system.FeeBps()
	if err != nil {
		return 0, "", err
	}

	return feeFor(cost, feeBps), feeRecipient, nil
}

func (s *TradingService) gateEmergencyStop() error {
	stopped, err := s.system.EmergencyStopped()
	if err != nil {
		return err
	}
	if stopped {
		return apperrors.ErrEmergencyStop
	}
	return nil
}
