package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GTDGit/gtd_pos/internal/config"
	"github.com/GTDGit/gtd_pos/internal/database"
	"github.com/GTDGit/gtd_pos/internal/rules"
	"github.com/GTDGit/gtd_pos/internal/sse"
)

type envelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := database.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{
		Env:         "test",
		JWTSecret:   "router-test-secret",
		JWTTTL:      time.Hour,
		Timezone:    "UTC",
		CORSOrigins: []string{"http://localhost:3000"},
		Shop: config.ShopConfig{
			Name:                  "Test shop",
			VATRate:               0.10,
			DefaultWarrantyMonths: 12,
			RepairWarrantyMonths:  3,
			RepairEstimateDays:    3,
			PawnInterestRate:      0.03,
			PawnTermDays:          30,
			PawnLoanRatio:         0.75,
			LowStockThreshold:     5,
			DebtDueDays:           30,
			WarrantyExpiringDays:  30,
		},
		Admin: config.AdminConfig{Username: "admin", Password: "admin-pass", FullName: "Chủ cửa hàng"},
	}
	clock := rules.FixedClock{T: time.Date(2024, 6, 10, 9, 30, 0, 0, time.UTC)}
	a := newApp(cfg, db, nil, clock, sse.NewHub())
	require.NoError(t, a.staff.EnsureAdmin(context.Background(), cfg.Admin))

	return &testServer{t: t, router: a.router(cfg)}
}

func (s *testServer) do(method, path, token string, body any) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func (s *testServer) login(username, password string) string {
	s.t.Helper()
	code, env := s.do(http.MethodPost, "/v1/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(s.t, http.StatusOK, code)
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(s.t, json.Unmarshal(env.Data, &res))
	return res.Token
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

func TestRouter_HealthAndAuth(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, code)
	health := decode[map[string]any](t, env.Data)
	assert.Equal(t, "connected", health["database"])
	assert.Equal(t, "disabled", health["cache"])

	code, env = s.do(http.MethodGet, "/v1/sales", "", nil)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.False(t, env.Success)

	code, env = s.do(http.MethodPost, "/v1/auth/login", "", gin.H{"username": "admin", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Equal(t, "UNAUTHORIZED", env.Error.Code)

	token := s.login("admin", "admin-pass")
	code, _ = s.do(http.MethodGet, "/v1/auth/me", token, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_RolesGateManagerRoutes(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin", "admin-pass")

	code, _ := s.do(http.MethodPost, "/v1/staff", admin, gin.H{
		"username": "thungan",
		"password": "cashier-pass",
		"fullName": "Lê Thu Ngân",
		"role":     "cashier",
	})
	require.Equal(t, http.StatusCreated, code)
	cashier := s.login("thungan", "cashier-pass")

	for _, path := range []string{"/v1/reports/sales", "/v1/transactions", "/v1/staff"} {
		code, env := s.do(http.MethodGet, path, cashier, nil)
		assert.Equal(t, http.StatusForbidden, code, path)
		assert.Equal(t, "FORBIDDEN", env.Error.Code, path)
	}
	code, _ = s.do(http.MethodGet, "/v1/reports/sales", admin, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestRouter_CheckoutAndPublicLookup(t *testing.T) {
	s := newTestServer(t)
	admin := s.login("admin", "admin-pass")

	code, env := s.do(http.MethodPost, "/v1/products", admin, gin.H{
		"name":         "iPhone 15 128GB",
		"brand":        "Apple",
		"costPrice":    16_000_000,
		"sellingPrice": 20_000_000,
	})
	require.Equal(t, http.StatusCreated, code)
	product := decode[struct {
		ID int `json:"id"`
	}](t, env.Data)

	const imei = "356938035643809"
	code, _ = s.do(http.MethodPost, "/v1/inventory", admin, gin.H{
		"productId": product.ID,
		"imei":      imei,
		"costPrice": 16_000_000,
	})
	require.Equal(t, http.StatusCreated, code)

	cart := gin.H{
		"items":      []gin.H{{"productId": product.ID, "imei": imei}},
		"paidAmount": 10_000_000,
	}
	code, env = s.do(http.MethodPost, "/v1/sales", admin, cart)
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Equal(t, "INSUFFICIENT_PAYMENT", env.Error.Code)

	cart["paidAmount"] = 22_000_000
	code, env = s.do(http.MethodPost, "/v1/sales", admin, cart)
	require.Equal(t, http.StatusCreated, code)
	result := decode[struct {
		Sale struct {
			InvoiceNumber string `json:"invoiceNumber"`
			TotalAmount   int64  `json:"totalAmount"`
		} `json:"sale"`
		Change int64 `json:"change"`
	}](t, env.Data)
	assert.Equal(t, "HD20240610093000", result.Sale.InvoiceNumber)
	assert.Equal(t, int64(22_000_000), result.Sale.TotalAmount)
	assert.Zero(t, result.Change)

	code, env = s.do(http.MethodPost, "/v1/sales", admin, cart)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "ILLEGAL_TRANSITION", env.Error.Code)

	code, env = s.do(http.MethodGet, "/v1/warranties/lookup?q="+imei, "", nil)
	require.Equal(t, http.StatusOK, code)
	warranty := decode[struct {
		EffectiveStatus string `json:"effectiveStatus"`
		RemainingDays   int    `json:"remainingDays"`
	}](t, env.Data)
	assert.Equal(t, "active", warranty.EffectiveStatus)
	assert.Equal(t, 365, warranty.RemainingDays)

	code, env = s.do(http.MethodGet, "/v1/warranties/lookup?q=359999999999999", "", nil)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)

	code, _ = s.do(http.MethodGet, fmt.Sprintf("/v1/sales/%s", result.Sale.InvoiceNumber), admin, nil)
	assert.Equal(t, http.StatusOK, code)
}
