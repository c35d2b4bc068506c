package middleware

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/response"
)

// ValidateAssetID validates that the assetID URL parameter is present
// and is a positive integer.
// Returns 400 Bad Request if the asset ID is missing or invalid.
// This middleware should be applied to routes that carry an asset ID in
// the URL path.
func ValidateAssetID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "assetID")
		if raw == "" {
			response.RespondError(w, http.StatusBadRequest, "missing asset ID", nil)
			return
		}

		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.RespondError(w, http.StatusBadRequest, "invalid asset ID", "asset ID must be a positive integer")
			return
		}

		next.ServeHTTP(w, r)
	})
}
