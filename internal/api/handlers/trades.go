package handlers

import (
	"net/http"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/middleware"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/request"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/response"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/service"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/validation"
)

// TradeHandler handles HTTP requests for purchase and transfer endpoints.
type TradeHandler struct {
	tradingService *service.TradingService
}

// NewTradeHandler creates a new TradeHandler with the provided service dependency.
func NewTradeHandler(tradingService *service.TradingService) *TradeHandler {
	return &TradeHandler{
		tradingService: tradingService,
	}
}

// Purchase handles POST requests to buy shares of an asset.
// The caller identity is the buyer.
//
// Endpoint: POST /api/asset/{assetID}/purchase
// Request Body: PurchaseRequest (shares, payment)
// Response: 201 Created with PurchaseReceipt
// Error: 400 Bad Request if validation fails
// Error: 422 Unprocessable Entity if the pool or payment is insufficient
func (h *TradeHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.PurchaseRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidatePurchase(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	receipt, err := h.tradingService.PurchaseShares(r.Context(),
		middleware.AccountID(r.Context()), assetIDParam(r), req.Shares, req.Payment)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePurchases)
		return
	}

	response.RespondJSON(w, http.StatusCreated, receipt)
}

// Transfer handles POST requests to move shares to another holder.
// The caller identity is the sender.
//
// Endpoint: POST /api/asset/{assetID}/transfer
// Request Body: TransferRequest (toAccountId, shares)
// Response: 204 No Content
// Error: 400 Bad Request if the recipient is invalid
// Error: 422 Unprocessable Entity if the sender's balance is insufficient
func (h *TradeHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.TransferRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateTransfer(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.tradingService.TransferShares(r.Context(),
		middleware.AccountID(r.Context()), assetIDParam(r), req.ToAccountID, req.Shares); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveHoldings)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// BulkPurchase handles POST requests to buy shares across several
// assets in one atomic operation.
//
// Endpoint: POST /api/trade/bulk
// Request Body: BulkPurchaseRequest (items, payment)
// Response: 201 Created with BulkPurchaseReceipt
// Error: 400 Bad Request if validation fails
// Error: 422 Unprocessable Entity if any line cannot be filled
func (h *TradeHandler) BulkPurchase(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.BulkPurchaseRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateBulkPurchase(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	items := make([]service.PurchaseItem, len(req.Items))
	for i, item := range req.Items {
		items[i] = service.PurchaseItem{AssetID: item.AssetID, Shares: item.Shares}
	}

	receipt, err := h.tradingService.BulkPurchase(r.Context(),
		middleware.AccountID(r.Context()), items, req.Payment)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePurchases)
		return
	}

	response.RespondJSON(w, http.StatusCreated, receipt)
}
