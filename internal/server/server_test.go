package server

import (
	"bytes"
	"encoding/json"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"agritrace/internal/config"
	"agritrace/internal/infra/memory"
	"agritrace/internal/usecase"
	auth "agritrace/internal/usecase/auth_usecase"
	"agritrace/internal/validator"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// =====================
// helper
// =====================

type TestClient struct {
	t       *testing.T
	BaseURL string
	HTTP    *http.Client
}

func newTestServer(t *testing.T, mode string) *TestClient {
	t.Helper()

	cfg := config.Config{
		JWTSecret:          "test-secret",
		AccessMode:         mode,
		WriteRatePerMinute: 1000,
		FEURL:              "https://trace.example.com",
	}

	store := memory.NewStore()
	issuer, err := auth.NewJWTIssuer(cfg.JWTSecret, time.Hour)
	require.NoError(t, err)

	d := Deps{
		Ledger: usecase.NewLedgerUsecase(store, store.Repos(), validator.NewLedgerValidator(), usecase.SystemClock{},
			mode == config.AccessModeStrict, zap.NewNop()),
		Register: auth.NewRegisterUsecase(store.Accounts(), auth.NewBcryptPasswordHasher(4), auth.UUIDGenerator{}, usecase.SystemClock{}),
		Login:    auth.NewLoginUsecase(store.Accounts(), auth.NewBcryptPasswordVerifier(), issuer, usecase.SystemClock{}),
		Accounts: store.Accounts(),
		Log:      zap.NewNop(),
	}

	srv := httptest.NewServer(New(cfg, d))
	t.Cleanup(srv.Close)

	return &TestClient{t: t, BaseURL: srv.URL, HTTP: srv.Client()}
}

func (c *TestClient) do(method, path, token string, body interface{}) *http.Response {
	c.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(c.t, err)
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, r)
	require.NoError(c.t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.HTTP.Do(req)
	require.NoError(c.t, err)
	c.t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

type ErrorResponse struct {
	Error string `json:"error"`
}

type loginResponse struct {
	Account struct {
		ID   string `json:"id"`
		Role string `json:"role"`
	} `json:"account"`
	Token struct {
		AccessToken string `json:"access_token"`
	} `json:"token"`
}

// 登録してログインし、(account id, token) を返す
func (c *TestClient) signUp(email, role string) (string, string) {
	c.t.Helper()

	resp := c.do(http.MethodPost, "/auth/register", "", map[string]string{
		"email": email, "password": "supply-chain-2024", "role": role,
	})
	require.Equal(c.t, http.StatusCreated, resp.StatusCode)

	resp = c.do(http.MethodPost, "/auth/login", "", map[string]string{
		"email": email, "password": "supply-chain-2024",
	})
	require.Equal(c.t, http.StatusOK, resp.StatusCode)
	out := decode[loginResponse](c.t, resp)
	return out.Account.ID, out.Token.AccessToken
}

var applesBody = map[string]interface{}{
	"name":                "Organic Apples",
	"category":            "Fruits",
	"date_of_manufacture": "2024-01-15",
	"time_of_manufacture": "08:00",
	"place":               "Farm Valley",
	"quality_rating":      "A",
	"price_for_farmer":    1000000,
	"description":         "Fresh",
}

// =====================
// tests
// =====================

func TestHealth(t *testing.T) {
	c := newTestServer(t, config.AccessModeStrict)
	resp := c.do(http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProductLifecycle(t *testing.T) {
	c := newTestServer(t, config.AccessModeStrict)

	farmerID, farmer := c.signUp("farmer@example.com", "FARMER")
	retailerB, tokB := c.signUp("b@example.com", "RETAILER")
	retailerC, tokC := c.signUp("c@example.com", "RETAILER")
	_, dist := c.signUp("d@example.com", "DISTRIBUTOR")

	// 作成
	resp := c.do(http.MethodPost, "/products", farmer, applesBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[usecase.CreateProductOutput](t, resp)
	assert.Equal(t, int64(0), created.ID)
	assert.True(t, strings.HasPrefix(created.TxHash, "0x"))

	resp = c.do(http.MethodGet, "/products/0", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	p := decode[map[string]interface{}](t, resp)
	assert.Equal(t, "Organic Apples", p["name"])
	assert.Equal(t, farmerID, p["farmer"])

	// 小売の注記は後勝ち
	resp = c.do(http.MethodPut, "/products/0/retailer", tokB, map[string]interface{}{"retailer_name": "Fresh Mart", "retail_price": 1500000})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = c.do(http.MethodPut, "/products/0/retailer", tokC, map[string]interface{}{"retailer_name": "City Grocer", "retail_price": 1200000})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = c.do(http.MethodGet, "/products/0/retailer", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	ri := decode[map[string]interface{}](t, resp)
	assert.Equal(t, "City Grocer", ri["retailer_name"])
	assert.Equal(t, float64(1200000), ri["retail_price"])
	assert.Equal(t, retailerC, ri["retailer_address"])

	resp = c.do(http.MethodGet, "/products/0/retailer/history", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hist := decode[[]map[string]interface{}](t, resp)
	require.Len(t, hist, 2)
	assert.Equal(t, retailerB, hist[0]["actor"])

	// 流通
	resp = c.do(http.MethodPut, "/products/0/distributor", dist, map[string]interface{}{"distributor_name": "Fast Freight", "batch_number": "B-1"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = c.do(http.MethodGet, "/products/0/distributor", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// 追跡
	resp = c.do(http.MethodGet, "/trace/"+created.VerificationCode, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tr := decode[map[string]interface{}](t, resp)
	assert.NotNil(t, tr["retailer"])
	assert.NotNil(t, tr["distributor"])

	// 台帳
	resp = c.do(http.MethodGet, "/ledger/transactions?product_id=0", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	txs := decode[[]map[string]interface{}](t, resp)
	assert.Len(t, txs, 4)

	resp = c.do(http.MethodGet, "/ledger/verify", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	report := decode[usecase.ChainReport](t, resp)
	assert.True(t, report.Valid)
	assert.Equal(t, 4, report.Length)

	// 一覧
	resp = c.do(http.MethodGet, "/products?farmer="+farmerID, "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decode[usecase.ProductListOutput](t, resp)
	assert.Equal(t, int64(1), list.Total)
}

func TestNotFoundAndBadRequest(t *testing.T) {
	c := newTestServer(t, config.AccessModeStrict)
	_, tokB := c.signUp("b@example.com", "RETAILER")

	resp := c.do(http.MethodGet, "/products/999", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "product not found", decode[ErrorResponse](t, resp).Error)

	resp = c.do(http.MethodPut, "/products/999/retailer", tokB, map[string]interface{}{"retailer_name": "Fresh Mart"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = c.do(http.MethodGet, "/products/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = c.do(http.MethodGet, "/products/-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = c.do(http.MethodGet, "/products?page=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = c.do(http.MethodGet, "/ledger/transactions?product_id=x", "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp = c.do(http.MethodGet, "/trace/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestStrictModeRoles(t *testing.T) {
	c := newTestServer(t, config.AccessModeStrict)
	_, farmer := c.signUp("farmer@example.com", "FARMER")
	_, retailer := c.signUp("r@example.com", "RETAILER")

	resp := c.do(http.MethodPost, "/products", "", applesBody)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = c.do(http.MethodPost, "/products", retailer, applesBody)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = c.do(http.MethodPost, "/products", farmer, applesBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = c.do(http.MethodPut, "/products/0/retailer", farmer, map[string]interface{}{"retailer_name": "x"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPermissiveMode(t *testing.T) {
	c := newTestServer(t, config.AccessModePermissive)
	_, anyone := c.signUp("any@example.com", "CUSTOMER")

	resp := c.do(http.MethodPost, "/products", anyone, applesBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = c.do(http.MethodPut, "/products/0/retailer", anyone, map[string]interface{}{"retailer_name": "Own Shop"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestValidationErrors(t *testing.T) {
	c := newTestServer(t, config.AccessModeStrict)
	_, farmer := c.signUp("farmer@example.com", "FARMER")

	resp := c.do(http.MethodPost, "/products", farmer, map[string]interface{}{"name": "x", "price_for_farmer": -1})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.do(http.MethodPost, "/products", farmer, map[string]interface{}{"name": ""})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.do(http.MethodPost, "/auth/register", "", map[string]string{"email": "bad", "password": "supply-chain-2024"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = c.do(http.MethodPost, "/auth/register", "", map[string]string{"email": "farmer@example.com", "password": "supply-chain-2024"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = c.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "farmer@example.com", "password": "wrong-password-x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestQRCode(t *testing.T) {
	c := newTestServer(t, config.AccessModeStrict)
	_, farmer := c.signUp("farmer@example.com", "FARMER")

	resp := c.do(http.MethodPost, "/products", farmer, applesBody)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = c.do(http.MethodGet, "/products/0/qr", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	_, err := png.Decode(resp.Body)
	assert.NoError(t, err)

	resp = c.do(http.MethodGet, "/products/5/qr", "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	c := newTestServer(t, config.AccessModeStrict)
	c.do(http.MethodGet, "/api/health", "", nil)

	resp := c.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(b), "http_requests_total")
}
