package handlers

import (
	"net/http"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/middleware"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/request"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/response"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/service"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/validation"
)

// AssetHandler handles HTTP requests for asset lifecycle endpoints.
// It serves as the HTTP layer adapter, parsing requests and delegating
// business logic to the registryService.
type AssetHandler struct {
	registryService *service.RegistryService
	snapshotService *service.SnapshotService
	tradingService  *service.TradingService
}

// NewAssetHandler creates a new AssetHandler with the provided service dependencies.
func NewAssetHandler(
	registryService *service.RegistryService,
	snapshotService *service.SnapshotService,
	tradingService *service.TradingService,
) *AssetHandler {
	return &AssetHandler{
		registryService: registryService,
		snapshotService: snapshotService,
		tradingService:  tradingService,
	}
}

// Assets handles GET requests to retrieve assets.
// Supports filtering by owner and including deactivated assets.
//
// Endpoint: GET /api/asset?owner={uuid}&includeInactive=true
// Response: 200 OK with array of Asset
// Error: 500 Internal Server Error if retrieval fails
func (h *AssetHandler) Assets(w http.ResponseWriter, r *http.Request) {
	filter := model.AssetFilter{
		IncludeInactive: r.URL.Query().Get("includeInactive") == "true",
		OwnerID:         r.URL.Query().Get("owner"),
	}

	assets, err := h.registryService.ListAssets(filter)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, apperrors.ErrFailedToRetrieveAssets.Error(), err.Error())
		return
	}

	response.RespondJSON(w, http.StatusOK, assets)
}

// Asset handles GET requests to retrieve a single asset.
//
// Endpoint: GET /api/asset/{assetID}
// Response: 200 OK with Asset
// Error: 404 Not Found if the asset does not exist
func (h *AssetHandler) Asset(w http.ResponseWriter, r *http.Request) {
	asset, err := h.registryService.GetAsset(assetIDParam(r))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveAsset)
		return
	}

	response.RespondJSON(w, http.StatusOK, asset)
}

// RegisterAsset handles POST requests to register a new asset.
// The caller identity becomes the asset owner.
//
// Endpoint: POST /api/asset
// Request Body: RegisterAssetRequest (address, metadataUri, valuation, totalShares)
// Response: 201 Created with Asset
// Error: 400 Bad Request if validation fails or request body is invalid
func (h *AssetHandler) RegisterAsset(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.RegisterAssetRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateRegisterAsset(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	asset, err := h.registryService.RegisterAsset(r.Context(),
		middleware.AccountID(r.Context()), req.Address, req.MetadataURI, req.Valuation, req.TotalShares)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveAsset)
		return
	}

	response.RespondJSON(w, http.StatusCreated, asset)
}

// UpdateValuation handles PUT requests to revalue an asset.
// Only the asset owner may revalue; the price per share is re-derived.
//
// Endpoint: PUT /api/asset/{assetID}/valuation
// Request Body: UpdateValuationRequest (valuation)
// Response: 200 OK with the updated Asset
// Error: 403 Forbidden if the caller is not the owner
// Error: 404 Not Found if the asset does not exist
func (h *AssetHandler) UpdateValuation(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.UpdateValuationRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateUpdateValuation(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	asset, err := h.registryService.UpdateValuation(r.Context(),
		middleware.AccountID(r.Context()), assetIDParam(r), req.Valuation)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveAsset)
		return
	}

	response.RespondJSON(w, http.StatusOK, asset)
}

// SetPaused handles PUT requests to pause or resume trading on an asset.
//
// Endpoint: PUT /api/asset/{assetID}/pause
// Request Body: SetPausedRequest (paused)
// Response: 204 No Content
// Error: 403 Forbidden if the caller is neither owner nor admin
func (h *AssetHandler) SetPaused(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetPausedRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetPaused(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.registryService.SetPaused(r.Context(),
		middleware.AccountID(r.Context()), assetIDParam(r), *req.Paused); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveAsset)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Deactivate handles DELETE requests to retire an asset.
// The owner may deactivate while all shares are unsold; the platform
// admin may pass force=true to retire an asset with holders.
//
// Endpoint: DELETE /api/asset/{assetID}?force=true
// Response: 204 No Content
// Error: 403 Forbidden if the caller lacks the required role
// Error: 422 Unprocessable Entity if shares are outstanding
func (h *AssetHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"

	if err := h.registryService.Deactivate(r.Context(),
		middleware.AccountID(r.Context()), assetIDParam(r), force); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveAsset)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// Holders handles GET requests to retrieve an asset's shareholders.
//
// Endpoint: GET /api/asset/{assetID}/holders
// Response: 200 OK with array of Holding
// Error: 404 Not Found if the asset does not exist
func (h *AssetHandler) Holders(w http.ResponseWriter, r *http.Request) {
	holders, err := h.registryService.HoldersOf(assetIDParam(r))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveHoldings)
		return
	}

	response.RespondJSON(w, http.StatusOK, holders)
}

// Purchases handles GET requests to retrieve an asset's purchase log.
//
// Endpoint: GET /api/asset/{assetID}/purchases
// Response: 200 OK with array of PurchaseRecord
// Error: 404 Not Found if the asset does not exist
func (h *AssetHandler) Purchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.tradingService.PurchasesByAsset(assetIDParam(r))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrievePurchases)
		return
	}

	response.RespondJSON(w, http.StatusOK, purchases)
}

// Summary handles GET requests to retrieve an asset's aggregate summary.
//
// Endpoint: GET /api/asset/{assetID}/summary
// Response: 200 OK with AssetSummary
// Error: 404 Not Found if the asset does not exist
func (h *AssetHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.snapshotService.Summary(r.Context(), assetIDParam(r))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveSummary)
		return
	}

	response.RespondJSON(w, http.StatusOK, summary)
}
