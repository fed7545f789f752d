package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/core/ports/mocks"
	"wallet-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func postJSON(t *testing.T, body any) (*httptest.ResponseRecorder, *gin.Context) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/test", bytes.NewReader(raw))
	c.Request.Header.Set("Content-Type", "application/json")
	return w, c
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// --- Ledger Handler Tests ---

func TestDepositHandler_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	mockLedger.EXPECT().Deposit(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.DepositRequest) (*domain.Movement, error) {
			assert.Equal(t, "w1", req.Address)
			assert.Equal(t, "USD", req.CurrencyCode)
			assert.True(t, req.Amount.Equal(dec("100")))
			assert.True(t, req.Fee.Equal(dec("2.5")))
			assert.Equal(t, "req-1", req.IdempotencyKey)
			return &domain.Movement{
				ID: 7, Address: "w1", CurrencyID: 1,
				Kind: domain.MovementKindDeposit,
				Amount: req.Amount, Fee: req.Fee,
				CreatedAt: time.Now().UTC(),
			}, nil
		})

	w, c := postJSON(t, dto.MovementRequest{
		Address: "w1", Currency: "USD", Amount: "100", Fee: "2.5",
	})
	c.Request.Header.Set("Idempotency-Key", "req-1")

	h.Deposit(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, float64(7), data["id"])
	assert.Equal(t, "100", data["amount"])
	assert.Equal(t, "DEPOSIT", data["kind"])
}

func TestDepositHandler_MalformedAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	w, c := postJSON(t, map[string]string{
		"address": "w1", "currency": "USD", "amount": "one hundred",
	})

	h.Deposit(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "LEDGER_001")
}

func TestWithdrawHandler_InsufficientFunds(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	mockLedger.EXPECT().Withdraw(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrInsufficientFunds())

	w, c := postJSON(t, dto.MovementRequest{
		Address: "w1", Currency: "USD", Amount: "500",
	})

	h.Withdraw(c)

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.Contains(t, w.Body.String(), "LEDGER_003")
}

func TestConvertHandler_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	mockLedger.EXPECT().Convert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req ports.ConvertRequest) (*domain.Conversion, error) {
			assert.Equal(t, "BTC", req.FromCurrency)
			assert.Equal(t, "USD", req.ToCurrency)
			assert.True(t, req.Rate.IsZero(), "omitted rate should arrive as zero")
			return &domain.Conversion{
				ID: 3, Address: "w1", FromCurrencyID: 2, ToCurrencyID: 1,
				FromAmount: req.Amount, ToAmount: dec("49500"),
				FeePercent: req.FeePercent, FeeAmount: dec("0.01"),
				Rate: dec("50000"), CreatedAt: time.Now().UTC(),
			}, nil
		})

	w, c := postJSON(t, dto.ConvertRequest{
		Address: "w1", FromCurrency: "BTC", ToCurrency: "USD",
		Amount: "1", FeePercent: "0.01",
	})

	h.Convert(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, "49500", data["to_amount"])
	assert.Equal(t, "50000", data["rate"])
}

func TestTransferHandler_SelfTransfer(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	mockLedger.EXPECT().Transfer(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrSelfTransfer())

	w, c := postJSON(t, dto.TransferRequest{
		FromAddress: "alice", ToAddress: "alice", Currency: "USD", Amount: "10",
	})

	h.Transfer(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "LEDGER_005")
}

// --- Wallet Handler Tests ---

func TestWalletCreateHandler_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().Create(gomock.Any(), "w1", "hash").
		Return(&domain.Wallet{
			Address: "w1", Status: domain.WalletStatusActive, CreatedAt: time.Now().UTC(),
		}, nil)

	w, c := postJSON(t, dto.CreateWalletRequest{Address: "w1", SecretHash: "hash"})

	h.Create(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]any)
	assert.Equal(t, "w1", data["address"])
	assert.Equal(t, "ACTIVE", data["status"])
	assert.NotContains(t, w.Body.String(), "hash", "secret hash must never leave the service")
}

func TestWalletGetHandler_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().Get(gomock.Any(), "ghost").
		Return(nil, apperror.ErrWalletNotFound("ghost"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	c.Params = gin.Params{{Key: "address", Value: "ghost"}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "WALLET_001")
}

func TestWalletBalancesHandler(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().Balances(gomock.Any(), "w1").
		Return([]domain.Balance{
			{Address: "w1", CurrencyCode: "BTC", Amount: dec("0.5")},
			{Address: "w1", CurrencyCode: "USD", Amount: dec("250")},
		}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	c.Params = gin.Params{{Key: "address", Value: "w1"}}

	h.Balances(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].([]any)
	require.Len(t, data, 2)
	first := data[0].(map[string]any)
	assert.Equal(t, "BTC", first["currency"])
	assert.Equal(t, "0.5", first["amount"])
}

func TestWalletRemoveHandler_RestrictedByHistory(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockWallet := mocks.NewMockWalletService(ctrl)
	h := NewWalletHandler(mockWallet)

	mockWallet.EXPECT().Remove(gomock.Any(), "w1").
		Return(apperror.ErrWalletHasHistory("w1"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodDelete, "/test", nil)
	c.Params = gin.Params{{Key: "address", Value: "w1"}}

	h.Remove(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "WALLET_003")
}

func TestHistoryLimit(t *testing.T) {
	cases := map[string]int{
		"":     defaultHistoryLimit,
		"25":   25,
		"9999": maxHistoryLimit,
		"-3":   defaultHistoryLimit,
		"abc":  defaultHistoryLimit,
	}
	for raw, want := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		url := "/test"
		if raw != "" {
			url += "?limit=" + raw
		}
		c.Request = httptest.NewRequest(http.MethodGet, url, nil)
		assert.Equal(t, want, historyLimit(c), "limit=%q", raw)
	}
}

// --- Health Handler Tests ---

type stubChecker struct {
	name string
	err  error
}

func (s stubChecker) Ping(context.Context) error { return s.err }
func (s stubChecker) Name() string               { return s.name }

func TestHealthCheck_AllHealthy(t *testing.T) {
	router := gin.New()
	router.GET("/health", HealthCheck(
		stubChecker{name: "postgresql"},
		stubChecker{name: "redis"},
	))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestHealthCheck_Degraded(t *testing.T) {
	router := gin.New()
	router.GET("/health", HealthCheck(
		stubChecker{name: "postgresql"},
		stubChecker{name: "redis", err: errors.New("connection refused")},
	))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "degraded")
	assert.Contains(t, w.Body.String(), "connection refused")
}
