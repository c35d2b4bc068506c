package handlers

import (
	"net/http"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/request"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/response"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/service"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/validation"
)

// SystemHandler handles system-related HTTP requests
type SystemHandler struct {
	systemService     *service.SystemService
	settlementService *service.SettlementService
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(systemService *service.SystemService, settlementService *service.SettlementService) *SystemHandler {
	return &SystemHandler{
		systemService:     systemService,
		settlementService: settlementService,
	}
}

// Health handles GET requests for the health check.
//
// Endpoint: GET /api/system/health
// Response: 200 OK when the database responds
// Error: 503 Service Unavailable otherwise
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	if err := h.systemService.CheckHealth(); err != nil {
		response.RespondError(w, http.StatusServiceUnavailable, "unhealthy", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Version handles GET requests for version information.
//
// Endpoint: GET /api/system/version
// Response: 200 OK with VersionInfo
func (h *SystemHandler) Version(w http.ResponseWriter, _ *http.Request) {
	info, err := h.systemService.CheckVersion()
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to read version", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, info)
}

// Settings handles GET requests for the platform settings.
//
// Endpoint: GET /api/system/settings
// Response: 200 OK with PlatformSettings
func (h *SystemHandler) Settings(w http.ResponseWriter, _ *http.Request) {
	settings, err := h.systemService.Settings()
	if err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveSettings)
		return
	}
	response.RespondJSON(w, http.StatusOK, settings)
}

// SetFee handles PUT requests to update the platform fee rate.
//
// Endpoint: PUT /api/system/settings/fee
// Request Body: SetFeeRequest (feeBps)
// Response: 200 OK with the updated PlatformSettings
// Error: 400 Bad Request if validation fails
func (h *SystemHandler) SetFee(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetFeeRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetFee(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.systemService.SetFeeBps(r.Context(), *req.FeeBps); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveSettings)
		return
	}

	h.Settings(w, r)
}

// SetFeeRecipient handles PUT requests to update the fee recipient account.
//
// Endpoint: PUT /api/system/settings/fee-recipient
// Request Body: SetFeeRecipientRequest (accountId)
// Response: 200 OK with the updated PlatformSettings
// Error: 400 Bad Request if validation fails
func (h *SystemHandler) SetFeeRecipient(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetFeeRecipientRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetFeeRecipient(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.systemService.SetFeeRecipient(r.Context(), req.AccountID); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveSettings)
		return
	}

	h.Settings(w, r)
}

// SetEmergencyStop handles PUT requests to engage or release the
// platform-wide emergency stop.
//
// Endpoint: PUT /api/system/settings/emergency-stop
// Request Body: SetEmergencyStopRequest (enabled)
// Response: 200 OK with the updated PlatformSettings
// Error: 400 Bad Request if validation fails
func (h *SystemHandler) SetEmergencyStop(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetEmergencyStopRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetEmergencyStop(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.systemService.SetEmergencyStop(r.Context(), *req.Enabled); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveSettings)
		return
	}

	h.Settings(w, r)
}

// SetPayoutToken handles PUT requests to store the payout provider credential.
//
// Endpoint: PUT /api/system/settings/payout-token
// Request Body: SetPayoutTokenRequest (token)
// Response: 204 No Content
// Error: 400 Bad Request if validation fails or no encryption key is configured
func (h *SystemHandler) SetPayoutToken(w http.ResponseWriter, r *http.Request) {
	req, err := parseJSON[request.SetPayoutTokenRequest](r)
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := validation.ValidateSetPayoutToken(req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "validation failed", err.Error())
		return
	}

	if err := h.systemService.SetPayoutToken(r.Context(), req.Token); err != nil {
		respondServiceError(w, err, apperrors.ErrFailedToRetrieveSettings)
		return
	}

	response.RespondJSON(w, http.StatusNoContent, nil)
}

// PendingSettlements handles GET requests for queued payout retries.
//
// Endpoint: GET /api/system/settlements/pending
// Response: 200 OK with array of PendingSettlement
func (h *SystemHandler) PendingSettlements(w http.ResponseWriter, _ *http.Request) {
	pending, err := h.settlementService.PendingSettlements(0)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "failed to retrieve pending settlements", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, pending)
}

// RetrySettlements handles POST requests to run a settlement retry pass
// immediately instead of waiting for the scheduler.
//
// Endpoint: POST /api/system/settlements/retry
// Response: 200 OK with attempted and settled counts
func (h *SystemHandler) RetrySettlements(w http.ResponseWriter, r *http.Request) {
	attempted, settled, err := h.settlementService.RetryPending(r.Context())
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, "settlement retry failed", err.Error())
		return
	}
	response.RespondJSON(w, http.StatusOK, map[string]int{"attempted": attempted, "settled": settled})
}
