package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

// TestRequireIdentity tests the identity header middleware.
func TestRequireIdentity(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if AccountID(r.Context()) == "" {
			t.Error("Expected the account id on the context")
		}
		w.WriteHeader(http.StatusOK)
	})

	t.Run("passes a valid identity through", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(AccountIDHeader, uuid.New().String())

		w := httptest.NewRecorder()
		RequireIdentity(next).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("rejects a missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		w := httptest.NewRecorder()
		RequireIdentity(next).ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", w.Code)
		}
	})

	t.Run("rejects a malformed identity", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(AccountIDHeader, "not-a-uuid")

		w := httptest.NewRecorder()
		RequireIdentity(next).ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", w.Code)
		}
	})
}

// TestRequireAdmin tests the admin gate.
func TestRequireAdmin(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	admin := uuid.New().String()

	t.Run("admits the configured admin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(AccountIDHeader, admin)

		w := httptest.NewRecorder()
		RequireIdentity(RequireAdmin(admin)(next)).ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("Expected status 200, got %d", w.Code)
		}
	})

	t.Run("rejects other callers", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(AccountIDHeader, uuid.New().String())

		w := httptest.NewRecorder()
		RequireIdentity(RequireAdmin(admin)(next)).ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", w.Code)
		}
	})

	t.Run("rejects everyone when no admin is configured", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(AccountIDHeader, admin)

		w := httptest.NewRecorder()
		RequireIdentity(RequireAdmin("")(next)).ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", w.Code)
		}
	})
}
