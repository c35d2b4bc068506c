package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/response"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/apperrors"
)

// parseJSON decodes the request body into the given request type.
// Unknown fields are rejected so typos surface as 400s instead of
// silently dropped values.
func parseJSON[T any](r *http.Request) (T, error) {
	var req T
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		return req, err
	}
	return req, nil
}

// assetIDParam reads the assetID URL parameter. The route middleware
// has already validated it is a positive integer.
func assetIDParam(r *http.Request) int64 {
	id, _ := strconv.ParseInt(chi.URLParam(r, "assetID"), 10, 64)
	return id
}

// respondServiceError maps a service error onto an HTTP status:
// missing entities to 404, bad arguments to 400, authorization to 403,
// repeated claims to 409, business rule failures to 422, and anything
// unrecognized to 500 with the given fallback message.
func respondServiceError(w http.ResponseWriter, err error, fallback error) {
	switch {
	case errors.Is(err, apperrors.ErrAssetNotFound),
		errors.Is(err, apperrors.ErrHoldingNotFound),
		errors.Is(err, apperrors.ErrAccountNotFound),
		errors.Is(err, apperrors.ErrInvalidIndex):
		response.RespondError(w, http.StatusNotFound, err.Error(), nil)

	case errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrInvalidRecipient):
		response.RespondError(w, http.StatusBadRequest, err.Error(), nil)

	case errors.Is(err, apperrors.ErrUnauthorized):
		response.RespondError(w, http.StatusForbidden, err.Error(), nil)

	case errors.Is(err, apperrors.ErrAlreadyClaimed),
		errors.Is(err, apperrors.ErrDuplicateEntry):
		response.RespondError(w, http.StatusConflict, err.Error(), nil)

	case errors.Is(err, apperrors.ErrAssetNotActive),
		errors.Is(err, apperrors.ErrAssetPaused),
		errors.Is(err, apperrors.ErrEmergencyStop),
		errors.Is(err, apperrors.ErrInsufficientShares),
		errors.Is(err, apperrors.ErrInsufficientPayment),
		errors.Is(err, apperrors.ErrNoShareholders),
		errors.Is(err, apperrors.ErrNothingToClaim),
		errors.Is(err, apperrors.ErrSharesSold):
		response.RespondError(w, http.StatusUnprocessableEntity, err.Error(), nil)

	default:
		response.RespondError(w, http.StatusInternalServerError, fallback.Error(), err.Error())
	}
}
