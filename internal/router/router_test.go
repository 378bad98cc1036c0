package router

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sticctape/barkeep-backend/config"
	"github.com/sticctape/barkeep-backend/internal/app/controller"
	"github.com/sticctape/barkeep-backend/internal/app/repository"
	"github.com/sticctape/barkeep-backend/internal/app/service"
	"github.com/sticctape/barkeep-backend/internal/auth"
	"github.com/sticctape/barkeep-backend/internal/db"
	"github.com/sticctape/barkeep-backend/internal/middleware"
	"github.com/sticctape/barkeep-backend/pkg/upc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOrigin = "https://bar.example.com"

// nopObjectStore satisfies the image service without a real bucket.
type nopObjectStore struct{}

func (nopObjectStore) Put(context.Context, string, []byte, string) error { return nil }

func (nopObjectStore) Delete(context.Context, string) error { return nil }

func (nopObjectStore) PublicURL(key string) string { return "https://img.example.com/" + key }

func routerTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode},
		Auth: config.AuthConfig{
			JWTSecret:         "router-test-jwt-secret",
			StaffSharedSecret: "0123456789abcdefghij-tail",
		},
		CORS: config.CORSConfig{AllowedOrigins: []string{testOrigin}},
		RateLimit: config.RateLimitConfig{
			Capacity: 1000,
			Window:   time.Minute,
			IPHeader: "CF-Connecting-IP",
		},
	}
}

func setupRouterWithConfig(t *testing.T, cfg *config.Config) *gin.Engine {
	t.Helper()

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	bottleRepo := repository.NewBottleRepository(testDB)
	tagRepo := repository.NewTagRepository(testDB)
	bottleService := service.NewBottleService(bottleRepo, tagRepo)
	imageService := service.NewImageService(bottleRepo, nopObjectStore{})

	// The lookup endpoint validates the code shape before any upstream
	// call, so an unreachable upstream is fine here.
	upcClient, err := upc.NewClient(upc.Config{BaseURL: "http://127.0.0.1:0/lookup"})
	require.NoError(t, err)

	r := NewRouter(
		controller.NewAuthController(),
		controller.NewBottleController(bottleService),
		controller.NewImageController(imageService),
		controller.NewUPCController(upcClient),
		middleware.NewAuthMiddleware(auth.NewResolver(cfg.Auth)),
		middleware.NewMemoryRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Window),
		cfg,
	)
	return r.Setup()
}

func setupTestRouter(t *testing.T) *gin.Engine {
	return setupRouterWithConfig(t, routerTestConfig())
}

func doJSON(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestRouter_Health(t *testing.T) {
	router := setupTestRouter(t)

	for _, path := range []string{"/api/health", "/api/admin/health"} {
		w := doJSON(router, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"ok":true}`, w.Body.String())
	}
}

func TestRouter_AuthCheck(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("Anonymous", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/auth/check", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, false, body["authenticated"])
		assert.Nil(t, body["ownerId"])
	})

	t.Run("Owner", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/auth/check", "owner_abc", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, true, body["authenticated"])
		assert.Equal(t, true, body["isOwner"])
		assert.Equal(t, false, body["isStaff"])
		assert.Equal(t, "owner:owner_abc", body["ownerId"])
	})

	t.Run("Staff", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/auth/check", "staff_xyz", nil)
		require.Equal(t, http.StatusOK, w.Code)

		body := decodeBody(t, w)
		assert.Equal(t, true, body["authenticated"])
		assert.Equal(t, true, body["isStaff"])
		assert.Equal(t, false, body["isOwner"])
	})
}

func TestRouter_BottleLifecycle(t *testing.T) {
	router := setupTestRouter(t)

	// Create with defaults applied.
	w := doJSON(router, http.MethodPost, "/api/admin/bottles", "owner_abc", gin.H{
		"brand":        "Ardbeg",
		"product_name": "Uigeadail",
		"tags":         []string{"peaty"},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	created := decodeBody(t, w)["bottle"].(map[string]interface{})
	bottleID := created["id"].(string)
	assert.Equal(t, "owner:owner_abc", created["owner_id"])
	assert.Equal(t, "sealed", created["status"])
	assert.Equal(t, float64(1), created["quantity"])
	assert.Equal(t, "USD", created["currency"])

	// The owner's list includes the new bottle.
	w = doJSON(router, http.MethodGet, "/api/bottles", "owner_abc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	bottles := decodeBody(t, w)["bottles"].([]interface{})
	require.Len(t, bottles, 1)

	// Staff sees it too, across owners.
	w = doJSON(router, http.MethodGet, "/api/bottles", "staff_xyz", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decodeBody(t, w)["bottles"].([]interface{}), 1)

	// Update from a different owner token passes the loose match.
	w = doJSON(router, http.MethodPut, "/api/admin/bottles/"+bottleID, "owner_other", gin.H{
		"status": "open",
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decodeBody(t, w)["bottle"].(map[string]interface{})
	assert.Equal(t, "open", updated["status"])

	// Delete and verify the list is empty.
	w = doJSON(router, http.MethodDelete, "/api/admin/bottles/"+bottleID, "owner_abc", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())

	w = doJSON(router, http.MethodGet, "/api/bottles", "owner_abc", nil)
	assert.Empty(t, decodeBody(t, w)["bottles"])
}

func TestRouter_AuthzBoundaries(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/admin/bottles", "owner_abc", gin.H{
		"brand":        "Campari",
		"product_name": "Bitter",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	bottleID := decodeBody(t, w)["bottle"].(map[string]interface{})["id"].(string)

	t.Run("Unauthenticated list", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/bottles", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Unauthenticated write", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/admin/bottles", "", gin.H{
			"brand": "X", "product_name": "Y",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Staff cannot write", func(t *testing.T) {
		w := doJSON(router, http.MethodDelete, "/api/admin/bottles/"+bottleID, "staff_xyz", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Writes do not exist outside the admin prefix", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/bottles", "owner_abc", gin.H{
			"brand": "X", "product_name": "Y",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "not found")

		w = doJSON(router, http.MethodDelete, "/api/bottles/"+bottleID, "owner_abc", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Unknown path", func(t *testing.T) {
		w := doJSON(router, http.MethodGet, "/api/nope", "owner_abc", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.JSONEq(t, `{"error":"not found"}`, w.Body.String())
	})

	t.Run("Delete by a bare identity is forbidden and keeps the row", func(t *testing.T) {
		w := doJSON(router, http.MethodDelete, "/api/admin/bottles/"+bottleID, "owner_abc", nil)
		require.Equal(t, http.StatusOK, w.Code)

		// Recreate under a bare dev identity to pit it against a prefixed one.
		devRouter := setupDevRouter(t)
		w = doJSONWithHeaders(devRouter, http.MethodPost, "/api/admin/bottles", map[string]string{
			"X-Owner-Id": "alice",
		}, gin.H{"brand": "Tanqueray", "product_name": "No. Ten"})
		require.Equal(t, http.StatusCreated, w.Code)
		id := decodeBody(t, w)["bottle"].(map[string]interface{})["id"].(string)

		w = doJSON(devRouter, http.MethodDelete, "/api/admin/bottles/"+id, "owner_abc", nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = doJSONWithHeaders(devRouter, http.MethodGet, "/api/bottles", map[string]string{
			"X-Owner-Id": "alice",
		}, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, decodeBody(t, w)["bottles"].([]interface{}), 1)
	})

	t.Run("Missing required fields", func(t *testing.T) {
		w := doJSON(router, http.MethodPost, "/api/admin/bottles", "owner_abc", gin.H{
			"brand": "No Product Name",
		})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "VALIDATION_REQUIRED")
	})

	t.Run("Update of a missing bottle", func(t *testing.T) {
		w := doJSON(router, http.MethodPut, "/api/admin/bottles/no-such-id", "owner_abc", gin.H{
			"status": "open",
		})
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Contains(t, w.Body.String(), "BOTTLE_NOT_FOUND")
	})
}

// setupDevRouter enables the X-Owner-Id dev header so tests can mint bare
// (unprefixed) identities.
func setupDevRouter(t *testing.T) *gin.Engine {
	cfg := routerTestConfig()
	cfg.Auth.AllowHeaderDev = true
	return setupRouterWithConfig(t, cfg)
}

func doJSONWithHeaders(router *gin.Engine, method, path string, headers map[string]string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_CORSAndRateLimit(t *testing.T) {
	router := setupTestRouter(t)

	t.Run("Unknown origin is rejected before auth", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/bottles", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		req.Header.Set("Authorization", "Bearer owner_abc")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "CORS origin not allowed", w.Body.String())
	})

	t.Run("Preflight", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/admin/bottles", nil)
		req.Header.Set("Origin", testOrigin)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("Rate limited responses carry CORS headers", func(t *testing.T) {
		tight := setupTightRateLimitRouter(t)

		first := doJSON(tight, http.MethodGet, "/api/health", "", nil)
		require.Equal(t, http.StatusOK, first.Code)

		second := doJSON(tight, http.MethodGet, "/api/health", "", nil)
		assert.Equal(t, http.StatusTooManyRequests, second.Code)
		assert.Contains(t, second.Body.String(), "RATE_LIMITED")
		assert.Equal(t, testOrigin, second.Header().Get("Access-Control-Allow-Origin"))
	})
}

func setupTightRateLimitRouter(t *testing.T) *gin.Engine {
	cfg := routerTestConfig()
	cfg.RateLimit.Capacity = 1
	return setupRouterWithConfig(t, cfg)
}

func TestRouter_ImageEndpoints(t *testing.T) {
	router := setupTestRouter(t)

	w := doJSON(router, http.MethodPost, "/api/admin/bottles", "owner_abc", gin.H{
		"brand":        "Laphroaig",
		"product_name": "10",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	bottleID := decodeBody(t, w)["bottle"].(map[string]interface{})["id"].(string)

	t.Run("Upload and delete", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/bottles/"+bottleID+"/image",
			bytes.NewReader([]byte("png-bytes")))
		req.Header.Set("Origin", testOrigin)
		req.Header.Set("Content-Type", "image/png")
		req.Header.Set("Authorization", "Bearer owner_abc")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, true, body["success"])
		assert.Contains(t, body["imageUrl"], "/bottles/"+bottleID+"/")

		w2 := doJSON(router, http.MethodDelete, "/api/admin/bottles/"+bottleID+"/image", "owner_abc", nil)
		require.Equal(t, http.StatusOK, w2.Code)
		assert.Contains(t, w2.Body.String(), `"success":true`)
	})

	t.Run("Wrong content type", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/bottles/"+bottleID+"/image",
			bytes.NewReader([]byte("<html>")))
		req.Header.Set("Origin", testOrigin)
		req.Header.Set("Content-Type", "text/html")
		req.Header.Set("Authorization", "Bearer owner_abc")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "UPLOAD_INVALID_FILE_TYPE")
	})
}

func TestRouter_UPCValidation(t *testing.T) {
	router := setupTestRouter(t)

	// Code shape is checked before any upstream call, so the unreachable
	// upstream URL never matters here.
	w := doJSON(router, http.MethodGet, "/api/admin/upc/abc123", "owner_abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UPC_INVALID_CODE")

	w = doJSON(router, http.MethodGet, "/api/admin/upc/12345", "owner_abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Staff token cannot reach the admin-only lookup.
	w = doJSON(router, http.MethodGet, "/api/admin/upc/812066021500", "staff_xyz", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
