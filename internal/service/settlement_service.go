package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/payout"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/repository"
)

// SettlementService moves funds after a ledger mutation has committed.
// Each leg credits the internal account ledger and then instructs the
// external payout provider. A failed external payout does not roll the
// ledger back; the leg lands in the retry queue instead.
type SettlementService struct {
	accountRepo    *repository.AccountRepository
	settlementRepo *repository.SettlementRepository
	payoutClient   payout.Client
	maxRetries     int
}

// NewSettlementService creates a new SettlementService with the provided dependencies.
func NewSettlementService(
	accountRepo *repository.AccountRepository,
	settlementRepo *repository.SettlementRepository,
	payoutClient payout.Client,
	maxRetries int,
) *SettlementService {
	return &SettlementService{
		accountRepo:    accountRepo,
		settlementRepo: settlementRepo,
		payoutClient:   payoutClient,
		maxRetries:     maxRetries,
	}
}

// legRequest describes one payout leg of a completed operation.
type legRequest struct {
	AccountID string
	Amount    int64
	Reason    string
	Reference string
}

// settle executes the payout legs of a committed operation in order.
// Legs with a zero amount or no recipient are skipped. The returned
// slice reports the final status of every executed leg.
func (s *SettlementService) settle(ctx context.Context, legs []legRequest) []model.SettlementLeg {
	results := make([]model.SettlementLeg, 0, len(legs))

	for _, leg := range legs {
		if leg.Amount <= 0 || leg.AccountID == "" {
			continue
		}

		status := model.SettlementStatusSettled

		if err := s.accountRepo.Credit(ctx, leg.AccountID, leg.Amount); err != nil {
			log.Printf("settlement: failed to credit account %s with %d (%s): %v", leg.AccountID, leg.Amount, leg.Reason, err)
			status = model.SettlementStatusFailed
		} else if err := s.payoutClient.SendPayout(ctx, leg.AccountID, leg.Amount, leg.Reference); err != nil {
			log.Printf("settlement: payout to %s for %d (%s) failed, queued for retry: %v", leg.AccountID, leg.Amount, leg.Reason, err)
			s.enqueue(ctx, leg, err)
			status = model.SettlementStatusQueued
		}

		results = append(results, model.SettlementLeg{
			AccountID: leg.AccountID,
			Amount:    leg.Amount,
			Reason:    leg.Reason,
			Status:    status,
		})
	}

	return results
}

func (s *SettlementService) enqueue(ctx context.Context, leg legRequest, cause error) {
	pending := &model.PendingSettlement{
		ID:        uuid.New().String(),
		AccountID: leg.AccountID,
		Amount:    leg.Amount,
		Reason:    leg.Reason,
		Reference: leg.Reference,
		Status:    model.SettlementStatusPending,
		Attempts:  1,
		LastError: cause.Error(),
		CreatedAt: time.Now(),
	}

	if err := s.settlementRepo.Enqueue(ctx, pending); err != nil {
		// The internal credit already happened; losing the queue row
		// loses only the external transfer, which the log preserves.
		log.Printf("settlement: failed to enqueue retry for %s: %v", leg.Reference, err)
	}
}

// RetryPending re-sends queued payouts through the provider. It returns
// how many were attempted and how many settled. Legs exhausting the
// retry budget are marked failed for manual resolution.
func (s *SettlementService) RetryPending(ctx context.Context) (attempted, settled int, err error) {
	pending, err := s.settlementRepo.Pending(50)
	if err != nil {
		return 0, 0, err
	}

	for _, p := range pending {
		attempted++

		if sendErr := s.payoutClient.SendPayout(ctx, p.AccountID, p.Amount, p.Reference); sendErr != nil {
			if markErr := s.settlementRepo.MarkAttemptFailed(ctx, p.ID, sendErr.Error(), s.maxRetries); markErr != nil {
				return attempted, settled, markErr
			}
			continue
		}

		if markErr := s.settlementRepo.MarkSettled(ctx, p.ID); markErr != nil {
			return attempted, settled, markErr
		}
		settled++
	}

	return attempted, settled, nil
}

// PendingSettlements returns queued payouts awaiting retry.
func (s *SettlementService) PendingSettlements(limit int) ([]model.PendingSettlement, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.settlementRepo.Pending(limit)
}

// AccountOf retrieves the internal cash account for an identity.
func (s *SettlementService) AccountOf(accountID string) (model.Account, error) {
	account, found, err := s.accountRepo.GetAccount(accountID)
	if err != nil {
		return model.Account{}, err
	}
	if !found {
		return model.Account{}, apperrors.ErrAccountNotFound
	}
	return account, nil
}
