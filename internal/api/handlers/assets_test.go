package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/middleware"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/api/request"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/model"
	"github.com/rvanlent/Property-Share-Ledger-Backend/internal/testutil"
)

// serveAs runs a handler behind the identity middleware with the given
// caller, the way the router mounts it.
func serveAs(t *testing.T, accountID string, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	req.Header.Set(middleware.AccountIDHeader, accountID)
	w := httptest.NewRecorder()
	middleware.RequireIdentity(handler).ServeHTTP(w, req)
	return w
}

// TestAssetHandler tests the asset lifecycle endpoints.
func TestAssetHandler(t *testing.T) {
	setupHandler := func(t *testing.T) (*AssetHandler, *sql.DB) {
		t.Helper()
		db := testutil.SetupTestDB(t)
		handler := NewAssetHandler(
			testutil.NewTestRegistryService(t, db),
			testutil.NewTestSnapshotService(t, db),
			testutil.NewTestTradingService(t, db),
		)
		return handler, db
	}

	t.Run("POST /api/asset registers an asset for the caller", func(t *testing.T) {
		handler, _ := setupHandler(t)

		owner := testutil.MakeID()
		req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/asset", request.RegisterAssetRequest{
			Address:     "5 Canal Street",
			MetadataURI: "ipfs://deed",
			Valuation:   1_000_000,
			TotalShares: 1000,
		})

		w := serveAs(t, owner, handler.RegisterAsset, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("Expected status 201, got %d: %s", w.Code, w.Body.String())
		}

		var asset model.Asset
		json.NewDecoder(w.Body).Decode(&asset) //nolint:errcheck
		if asset.OwnerID != owner {
			t.Errorf("Expected owner %s, got %s", owner, asset.OwnerID)
		}
		if asset.PricePerShare != 1000 {
			t.Errorf("Expected price per share 1000, got %d", asset.PricePerShare)
		}
	})

	t.Run("POST /api/asset rejects an invalid body", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/asset", request.RegisterAssetRequest{
			Address:     "",
			Valuation:   -1,
			TotalShares: 0,
		})

		w := serveAs(t, testutil.MakeID(), handler.RegisterAsset, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", w.Code)
		}
	})

	t.Run("POST /api/asset requires an identity", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := testutil.NewRequestWithBody(t, http.MethodPost, "/api/asset", request.RegisterAssetRequest{
			Address:     "5 Canal Street",
			Valuation:   1_000_000,
			TotalShares: 1000,
		})

		w := httptest.NewRecorder()
		middleware.RequireIdentity(http.HandlerFunc(handler.RegisterAsset)).ServeHTTP(w, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected status 403 without identity, got %d", w.Code)
		}
	})

	t.Run("GET /api/asset/{assetID} returns the asset", func(t *testing.T) {
		handler, db := setupHandler(t)

		asset := testutil.NewAsset().Build(t, db)
		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/asset/1", map[string]string{"assetID": "1"})

		w := httptest.NewRecorder()
		handler.Asset(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}

		var got model.Asset
		json.NewDecoder(w.Body).Decode(&got) //nolint:errcheck
		if got.ID != asset.ID {
			t.Errorf("Expected asset %d, got %d", asset.ID, got.ID)
		}
	})

	t.Run("GET /api/asset/{assetID} returns 404 for unknown assets", func(t *testing.T) {
		handler, _ := setupHandler(t)

		req := testutil.NewRequestWithURLParams(http.MethodGet, "/api/asset/999", map[string]string{"assetID": "999"})

		w := httptest.NewRecorder()
		handler.Asset(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Expected status 404, got %d", w.Code)
		}
	})

	t.Run("GET /api/asset filters deactivated assets by default", func(t *testing.T) {
		handler, db := setupHandler(t)

		testutil.NewAsset().Build(t, db)
		testutil.NewAsset().Deactivated().Build(t, db)

		w := httptest.NewRecorder()
		handler.Assets(w, httptest.NewRequest(http.MethodGet, "/api/asset", nil))

		var assets []model.Asset
		json.NewDecoder(w.Body).Decode(&assets) //nolint:errcheck
		if len(assets) != 1 {
			t.Errorf("Expected 1 active asset, got %d", len(assets))
		}

		req := testutil.NewRequestWithQueryParams(http.MethodGet, "/api/asset", map[string]string{"includeInactive": "true"})
		w = httptest.NewRecorder()
		handler.Assets(w, req)

		assets = nil
		json.NewDecoder(w.Body).Decode(&assets) //nolint:errcheck
		if len(assets) != 2 {
			t.Errorf("Expected 2 assets including inactive, got %d", len(assets))
		}
	})

	t.Run("DELETE /api/asset/{assetID} returns 422 with shares outstanding", func(t *testing.T) {
		handler, db := setupHandler(t)

		owner := testutil.MakeID()
		asset := testutil.NewAsset().WithOwner(owner).WithAvailableShares(900).Build(t, db)
		testutil.NewHolding(asset.ID).WithShares(100).Build(t, db)

		req := testutil.NewRequestWithURLParams(http.MethodDelete, "/api/asset/1", map[string]string{"assetID": "1"})
		w := serveAs(t, owner, handler.Deactivate, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Errorf("Expected status 422, got %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("PUT /api/asset/{assetID}/valuation returns 403 for non-owners", func(t *testing.T) {
		handler, db := setupHandler(t)

		testutil.NewAsset().Build(t, db)

		req := testutil.NewRequestWithURLParamsAndBody(t, http.MethodPut, "/api/asset/1/valuation",
			map[string]string{"assetID": "1"}, request.UpdateValuationRequest{Valuation: 2_000_000})
		w := serveAs(t, testutil.MakeID(), handler.UpdateValuation, req)

		if w.Code != http.StatusForbidden {
			t.Errorf("Expected status 403, got %d", w.Code)
		}
	})
}
