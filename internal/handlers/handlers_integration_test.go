package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"nexora/internal/app"
	"nexora/internal/auth"
	"nexora/internal/config"
	"nexora/internal/models"
	"nexora/internal/payments"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeVerifier accepts tokens of the form "google:<subject>:<email>".
type fakeVerifier struct{}

func (fakeVerifier) Verify(ctx context.Context, token string) (*auth.Identity, error) {
	parts := strings.SplitN(token, ":", 3)
	if len(parts) != 3 || parts[0] != "google" {
		return nil, fmt.Errorf("%w: malformed test token", auth.ErrInvalidIdentity)
	}
	return &auth.Identity{Subject: parts[1], Email: parts[2], Name: parts[1]}, nil
}

type fakeProvider struct {
	last payments.CheckoutRequest
}

func (p *fakeProvider) CreateCheckoutSession(ctx context.Context, req payments.CheckoutRequest) (*payments.CheckoutSession, error) {
	p.last = req
	return &payments.CheckoutSession{ID: "cs_test", URL: "https://checkout.test/cs_test"}, nil
}

type testServer struct {
	app      *app.App
	provider *fakeProvider
}

// setupApp builds the server against an in-memory SQLite database.
func setupApp(t *testing.T, adminEmails ...string) *testServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.User{}))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:   "test_jwt_secret",
			SessionTTL:  time.Hour,
			AdminEmails: adminEmails,
		},
	}
	provider := &fakeProvider{}
	a, err := app.NewApp(cfg, app.Options{DB: db, Verifier: fakeVerifier{}, Payments: provider})
	require.NoError(t, err)
	return &testServer{app: a, provider: provider}
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(jsonBody)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.app.Fiber.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp, decoded
}

func (s *testServer) signIn(t *testing.T, subject, email string) string {
	t.Helper()
	resp, body := s.do(t, http.MethodPost, "/api/auth/google", "", map[string]string{
		"idToken": "google:" + subject + ":" + email,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func assertNoCache(t *testing.T, resp *http.Response) {
	t.Helper()
	assert.Equal(t, "no-cache, no-store, must-revalidate", resp.Header.Get("Cache-Control"))
	assert.Equal(t, "no-cache", resp.Header.Get("Pragma"))
	assert.Equal(t, "0", resp.Header.Get("Expires"))
}

func TestGoogleSignInAndMe(t *testing.T) {
	s := setupApp(t)

	token := s.signIn(t, "sub-1", "ana@example.com")
	claims, err := s.app.Auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", claims["email"])

	resp, body := s.do(t, http.MethodGet, "/api/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["admin"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "ana@example.com", user["email"])
	assert.NotContains(t, user, "subject")

	// Signing in again reuses the same user record.
	again := s.signIn(t, "sub-1", "ana@example.com")
	claimsAgain, err := s.app.Auth.ValidateToken(again)
	require.NoError(t, err)
	assert.Equal(t, claims["user_id"], claimsAgain["user_id"])

	resp, _ = s.do(t, http.MethodPost, "/api/auth/google", "", map[string]string{"idToken": "forged"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, body = s.do(t, http.MethodPost, "/api/auth/google", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["errors"], "idToken")

	resp, _ = s.do(t, http.MethodGet, "/api/auth/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminProductLifecycle(t *testing.T) {
	s := setupApp(t)
	token := s.signIn(t, "sub-admin", "owner@example.com")

	resp, body := s.do(t, http.MethodGet, "/api/admin/add-product", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assertNoCache(t, resp)
	assert.Equal(t, "Fetch successful", body["status"])
	assert.Empty(t, body["data"])

	resp, body = s.do(t, http.MethodPost, "/api/admin/add-product", token, map[string]interface{}{
		"name": "Tee", "gender": "unisex", "price": 19.99, "image": "https://img.example/tee.jpg",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Insert successful", body["status"])
	data := body["data"].([]interface{})
	require.Len(t, data, 1)
	created := data[0].(map[string]interface{})
	assert.Equal(t, "Tee", created["name"])
	assert.Nil(t, created["oldPrice"])
	id := int64(created["id"].(float64))
	assert.Positive(t, id)

	resp, body = s.do(t, http.MethodPost, "/api/admin/add-product", token, map[string]interface{}{
		"name": "Hoodie", "gender": "male", "image": "https://img.example/hoodie.jpg",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["errors"], "price")

	resp, body = s.do(t, http.MethodPost, "/api/admin/add-product", token, map[string]interface{}{
		"name": "Hoodie", "gender": "kids", "price": 30, "image": "https://img.example/hoodie.jpg",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["errors"], "gender")

	// The storefront sees the new product through the in-memory catalog.
	resp, body = s.do(t, http.MethodGet, "/api/products?gender=Unisex", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, body["data"], 1)
	assert.Equal(t, []interface{}{"All", "Male", "Female", "Unisex"}, body["facets"])

	resp, body = s.do(t, http.MethodGet, "/api/products?gender=male", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["data"])

	resp, body = s.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", id), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Tee", body["data"].(map[string]interface{})["name"])

	resp, body = s.do(t, http.MethodDelete, "/api/admin/delete-product", token, map[string]interface{}{"id": "abc"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Product ID is required", body["error"])

	// Ids arrive as strings from form posts.
	resp, body = s.do(t, http.MethodDelete, "/api/admin/delete-product", token, map[string]interface{}{"id": fmt.Sprint(id)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assertNoCache(t, resp)
	assert.Equal(t, "Product deleted", body["message"])

	resp, body = s.do(t, http.MethodDelete, "/api/admin/delete-product", token, map[string]interface{}{"id": id})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to delete product", body["error"])
	assert.Equal(t, "NOT_FOUND", body["code"])

	resp, body = s.do(t, http.MethodDelete, "/api/admin/delete-product", token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Product ID is required", body["error"])

	resp, _ = s.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", id), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/products/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = s.do(t, http.MethodGet, "/api/admin/add-product", token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, body["data"])
}

func TestAdminEndpointsWithoutAuth(t *testing.T) {
	s := setupApp(t)

	resp, _ := s.do(t, http.MethodGet, "/api/admin/add-product", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assertNoCache(t, resp)

	resp, _ = s.do(t, http.MethodPost, "/api/admin/add-product", "", map[string]interface{}{
		"name": "Unauthorized", "gender": "male", "price": 1, "image": "x",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/api/admin/delete-product", "not-a-jwt", map[string]interface{}{"id": 1})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminAllowList(t *testing.T) {
	s := setupApp(t, "owner@example.com")

	shopper := s.signIn(t, "sub-shopper", "shopper@example.com")
	resp, _ := s.do(t, http.MethodGet, "/api/admin/add-product", shopper, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	_, body := s.do(t, http.MethodGet, "/api/auth/me", shopper, nil)
	assert.Equal(t, false, body["admin"])

	owner := s.signIn(t, "sub-owner", "Owner@Example.com")
	resp, _ = s.do(t, http.MethodGet, "/api/admin/add-product", owner, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCheckout(t *testing.T) {
	s := setupApp(t)
	item := map[string]interface{}{"product": map[string]interface{}{"name": "Tee", "price": 19.99}}

	resp, _ := s.do(t, http.MethodPost, "/api/checkout", "", item)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	token := s.signIn(t, "sub-buyer", "buyer@example.com")
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", strings.NewReader(`{"product":{"name":"Tee","price":19.99}}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set(fiber.HeaderOrigin, "https://shop.example.com")
	httpResp, err := s.app.Fiber.Test(req, -1)
	require.NoError(t, err)
	defer httpResp.Body.Close()
	require.Equal(t, http.StatusOK, httpResp.StatusCode)

	var body map[string]string
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&body))
	assert.Equal(t, "https://checkout.test/cs_test", body["url"])
	assert.Equal(t, "https://shop.example.com", s.provider.last.Origin)
	assert.Equal(t, "Tee", s.provider.last.ProductName)

	resp, decoded := s.do(t, http.MethodPost, "/api/checkout", token, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Product not found", decoded["error"])
}

func TestHealth(t *testing.T) {
	s := setupApp(t)

	resp, body := s.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	catalogStatus := body["catalog"].(map[string]interface{})
	assert.Equal(t, float64(0), catalogStatus["products"])
	assert.Equal(t, false, catalogStatus["loading"])
}
