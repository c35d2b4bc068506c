package handlers

import (
	"errors"
	"net/http"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/middleware"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/response"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/service"
)

// AccountHandler handles HTTP requests for the caller's own account and positions.
type AccountHandler struct {
	settlementService *service.SettlementService
	ledgerService     *service.LedgerService
}

// NewAccountHandler creates a new AccountHandler with the provided service dependencies.
func NewAccountHandler(settlementService *service.SettlementService, ledgerService *service.LedgerService) *AccountHandler {
	return &AccountHandler{
		settlementService: settlementService,
		ledgerService:     ledgerService,
	}
}

// Account handles GET requests for the caller's cash account. A caller
// who has never received a settlement gets a zero balance rather than a 404.
//
// Endpoint: GET /api/account/me
// Response: 200 OK with Account
func (h *AccountHandler) Account(w http.ResponseWriter, r *http.Request) {
	accountID := middleware.AccountID(r.Context())

	account, err := h.settlementService.AccountOf(accountID)
	if errors.Is(err, apperrors.ErrAccountNotFound) {
		account = model.Account{ID: accountID, Balance: 0}
	} else if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveBalance.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, account)
}

// Positions handles GET requests for the caller's share positions
// across all assets.
//
// Endpoint: GET /api/account/me/positions
// Response: 200 OK with array of HolderPosition
func (h *AccountHandler) Positions(w http.ResponseWriter, r *http.Request) {
	positions, err := h.ledgerService.PositionsByHolder(middleware.AccountID(r.Context()))
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveHoldings.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, positions)
}
