package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/middleware"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/request"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/response"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/service"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/validation"
)

// DistributionHandler handles HTTP requests for distribution and claim endpoints.
type DistributionHandler struct {
	distributionService *service.DistributionService
}

// NewDistributionHandler creates a new DistributionHandler with the provided service dependency.
func NewDistributionHandler(distributionService *service.DistributionService) *DistributionHandler {
	return &DistributionHandler{
		distributionService: distributionService,
	}
}

// Distributions handles GET requests to retrieve an asset's distribution history.
//
// Endpoint: GET /api/asset/{assetID}/distribution
// Response: 200 OK with array of Distribution
// Error: 404 Not Found if the asset does not exist
func (h *DistributionHandler) Distributions(w http.ResponseWriter, r *http.Request) {
	distributions, err := h.distributionService.DistributionsByAsset(assetIDParam(r))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveDistributions)
		return
	}

	response.RespondJSON(w, http.StatusOK, distributions)
}

// Distribute handles POST requests to record an income distribution.
// Only the asset owner may distribute.
//
// Endpoint: POST /api/asset/{assetID}/distribution
// Request Body: DistributeRequest (amount)
// Response: 201 Created with Distribution
// Error: 403 Forbidden if the caller is not the owner
// Error: 422 Unprocessable Entity if no shares are held by investors
func (h *DistributionHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.DistributeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateDistribute(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	distribution, err := h.distributionService.Distribute(r.Context(),
		middleware.AccountID(r.Context()), assetIDParam(r), req.Amount)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveDistributions)
		return
	}

	response.RespondJSON(w, http.StatusCreated, distribution)
}

// Claim handles POST requests to claim the caller's share of a single distribution.
//
// Endpoint: POST /api/asset/{assetID}/distribution/{index}/claim
// Response: 200 OK with ClaimResult
// Error: 404 Not Found if the distribution index does not exist
// Error: 409 Conflict if the distribution was already claimed
// Error: 422 Unprocessable Entity if the caller holds no shares
func (h *DistributionHandler) Claim(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.ParseInt(chi.URLParam(r, "index"), 10, 64)
	if err != nil || idx < 0 {
		response.RespondError(w, http.StatusBadRequest, "invalid distribution index", "index must be a non-negative integer")
		return
	}

	result, err := h.distributionService.Claim(r.Context(),
		middleware.AccountID(r.Context()), assetIDParam(r), idx)
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveDistributions)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// ClaimAll handles POST requests to claim every unclaimed distribution
// of an asset for the caller.
//
// Endpoint: POST /api/asset/{assetID}/distribution/claim-all
// Response: 200 OK with ClaimResult
// Error: 422 Unprocessable Entity if nothing is claimable
func (h *DistributionHandler) ClaimAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.distributionService.ClaimAll(r.Context(),
		middleware.AccountID(r.Context()), assetIDParam(r))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveDistributions)
		return
	}

	response.RespondJSON(w, http.StatusOK, result)
}

// Claimable handles GET requests to list the caller's unclaimed distributions.
//
// Endpoint: GET /api/asset/{assetID}/distribution/claimable
// Response: 200 OK with array of ClaimableDistribution
// Error: 404 Not Found if the asset does not exist
func (h *DistributionHandler) Claimable(w http.ResponseWriter, r *http.Request) {
	claimable, err := h.distributionService.Claimable(
		middleware.AccountID(r.Context()), assetIDParam(r))
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveDistributions)
		return
	}

	response.RespondJSON(w, http.StatusOK, claimable)
}
