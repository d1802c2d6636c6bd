package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/novatoken/marketplace/internal/database"
	"github.com/novatoken/marketplace/internal/identities"
	"github.com/novatoken/marketplace/internal/ledger"
	"github.com/novatoken/marketplace/internal/listing"
	"github.com/novatoken/marketplace/internal/marketplace"
	"github.com/novatoken/marketplace/internal/registry"
)

const (
	seller = "0x00000000000000000000000000000000000000a1"
	buyer  = "0x00000000000000000000000000000000000000a2"
	other  = "0x00000000000000000000000000000000000000a3"
)

func setupServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	logger := zap.NewNop()
	reg, err := registry.NewService(logger, db)
	require.NoError(t, err)
	led, err := ledger.NewService(logger, db)
	require.NoError(t, err)
	mgr, err := listing.NewManager(logger, db, reg, led)
	require.NoError(t, err)
	mkt, err := marketplace.NewService(logger, reg, mgr, led, nil)
	require.NoError(t, err)
	ids, err := identities.NewService(logger, db)
	require.NoError(t, err)

	return NewServer(logger, mkt, ids)
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func registerTestItem(t *testing.T, s *Server) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"token_id":         "1",
		"contract_address": "0x1234567890abcdef1234567890abcdef12345678",
		"name":             "Stellar Voyage",
		"image":            "https://images.novatoken.io/cosmic/stellar-voyage.jpg",
		"owner_address":    seller,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return decode(t, w)["id"].(string)
}

func createTestListing(t *testing.T, s *Server, itemID string) string {
	t.Helper()
	w := doJSON(t, s, http.MethodPost, "/api/v1/listings", map[string]interface{}{
		"item_id":        itemID,
		"seller_address": seller,
		"price":          2.5,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	return decode(t, w)["id"].(string)
}

func TestHealthCheck(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "ok", decode(t, w)["status"])
}

func TestRegisterItemEndpoint(t *testing.T) {
	s := setupServer(t)
	itemID := registerTestItem(t, s)

	w := doJSON(t, s, http.MethodGet, "/api/v1/items/"+itemID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, false, decode(t, w)["is_listed"])

	// Duplicate token/contract pair is rejected
	w = doJSON(t, s, http.MethodPost, "/api/v1/items", map[string]interface{}{
		"token_id":         "1",
		"contract_address": "0x1234567890abcdef1234567890abcdef12345678",
		"name":             "Other",
		"image":            "https://images.novatoken.io/other.jpg",
		"owner_address":    other,
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestGetItemNotFound(t *testing.T) {
	s := setupServer(t)
	w := doJSON(t, s, http.MethodGet, "/api/v1/items/a2180e4e-0000-0000-0000-000000000000", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "application/problem+json")
}

func TestListingLifecycleEndpoints(t *testing.T) {
	s := setupServer(t)
	itemID := registerTestItem(t, s)

	// Listing by a non-owner is forbidden
	w := doJSON(t, s, http.MethodPost, "/api/v1/listings", map[string]interface{}{
		"item_id":        itemID,
		"seller_address": other,
		"price":          1.0,
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	listingID := createTestListing(t, s, itemID)

	w = doJSON(t, s, http.MethodGet, "/api/v1/listings?limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listings []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listings))
	require.Len(t, listings, 1)

	w = doJSON(t, s, http.MethodPost, "/api/v1/listings/"+listingID+"/buy", map[string]interface{}{
		"buyer_address": buyer,
		"tx_hash":       "0xhash",
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.Equal(t, true, resp["success"])
	require.NotEmpty(t, resp["transaction_id"])

	// Second settlement of the same listing is a state conflict
	w = doJSON(t, s, http.MethodPost, "/api/v1/listings/"+listingID+"/buy", map[string]interface{}{
		"buyer_address": other,
		"tx_hash":       "0xhash2",
	})
	require.Equal(t, http.StatusConflict, w.Code)

	// Ownership moved to the buyer
	w = doJSON(t, s, http.MethodGet, "/api/v1/items/"+itemID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	item := decode(t, w)
	require.Equal(t, buyer, item["owner_address"])
	require.Equal(t, false, item["is_listed"])

	w = doJSON(t, s, http.MethodGet, "/api/v1/transactions/"+buyer, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var txs []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txs))
	require.Len(t, txs, 1)
}

func TestCancelListingEndpoint(t *testing.T) {
	s := setupServer(t)
	itemID := registerTestItem(t, s)
	listingID := createTestListing(t, s, itemID)

	w := doJSON(t, s, http.MethodDelete, "/api/v1/listings/"+listingID, map[string]interface{}{
		"seller_address": other,
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, s, http.MethodDelete, "/api/v1/listings/"+listingID, map[string]interface{}{
		"seller_address": seller,
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, true, decode(t, w)["success"])

	w = doJSON(t, s, http.MethodGet, "/api/v1/items/"+itemID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, false, decode(t, w)["is_listed"])
}

func TestUserEndpoints(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/users/auth", map[string]interface{}{
		"wallet_address": "0x00000000000000000000000000000000000000A1",
	})
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	require.Equal(t, true, resp["is_new"])

	// Address is stored in canonical lowercase form
	user := resp["user"].(map[string]interface{})
	require.Equal(t, seller, user["wallet_address"])

	w = doJSON(t, s, http.MethodPut, "/api/v1/users/"+seller, map[string]interface{}{
		"username": "nova",
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "nova", decode(t, w)["username"])

	w = doJSON(t, s, http.MethodGet, "/api/v1/users/"+other, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatsAndSeedEndpoints(t *testing.T) {
	s := setupServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/admin/seed", nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	stats := decode(t, w)
	require.EqualValues(t, 3, stats["total_collections"])
	require.EqualValues(t, 8, stats["total_nfts"])
	require.EqualValues(t, 8, stats["active_listings"])
}
