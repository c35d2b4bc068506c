// Package middleware provides HTTP middleware for request validation and processing.
package middleware

import (
	"context"
	"net/http"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/response"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/validation"
)

type contextKey string

const accountIDKey contextKey = "accountID"

// AccountIDHeader carries the caller's identity. Authentication of the
// header is delegated to the gateway in front of this service.
const AccountIDHeader = "X-Account-ID"

// RequireIdentity validates that the X-Account-ID header is present and
// is a valid UUID, and stores it on the request context.
// Returns 403 Forbidden when the header is missing or malformed.
func RequireIdentity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		accountID := r.Header.Get(AccountIDHeader)
		if accountID == "" {
			response.RespondError(w, http.StatusForbidden, "missing identity", AccountIDHeader+" header is required")
			return
		}
		if err := validation.ValidateUUID(accountID); err != nil {
			response.RespondError(w, http.StatusForbidden, "invalid identity", err.Error())
			return
		}

		ctx := context.WithValue(r.Context(), accountIDKey, accountID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireAdmin validates that the caller identity matches the platform
// admin account. Must be mounted after RequireIdentity.
// Returns 403 Forbidden for any other caller.
func RequireAdmin(adminAccountID string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if adminAccountID == "" || AccountID(r.Context()) != adminAccountID {
				response.RespondError(w, http.StatusForbidden, "admin access required", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// AccountID returns the caller identity stored by RequireIdentity, or
// an empty string when the request carried none.
func AccountID(ctx context.Context) string {
	accountID, _ := ctx.Value(accountIDKey).(string)
	return accountID
}
