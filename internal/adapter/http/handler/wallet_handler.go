package handler

import (
	"strconv"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// WalletHandler handles wallet lifecycle and read endpoints.
type WalletHandler struct {
	walletSvc ports.WalletService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(walletSvc ports.WalletService) *WalletHandler {
	return &WalletHandler{walletSvc: walletSvc}
}

// Create handles POST /api/v1/wallets.
func (h *WalletHandler) Create(c *gin.Context) {
	var req dto.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	wallet, err := h.walletSvc.Create(c.Request.Context(), req.Address, req.SecretHash)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.FromWallet(wallet))
}

// Get handles GET /api/v1/wallets/:address.
func (h *WalletHandler) Get(c *gin.Context) {
	wallet, err := h.walletSvc.Get(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromWallet(wallet))
}

// List handles GET /api/v1/wallets.
func (h *WalletHandler) List(c *gin.Context) {
	wallets, err := h.walletSvc.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.WalletResponse, 0, len(wallets))
	for i := range wallets {
		out = append(out, dto.FromWallet(&wallets[i]))
	}
	response.OK(c, out)
}

// Balances handles GET /api/v1/wallets/:address/balances.
func (h *WalletHandler) Balances(c *gin.Context) {
	balances, err := h.walletSvc.Balances(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.BalanceResponse, 0, len(balances))
	for _, b := range balances {
		out = append(out, dto.FromBalance(b))
	}
	response.OK(c, out)
}

// Movements handles GET /api/v1/wallets/:address/movements.
func (h *WalletHandler) Movements(c *gin.Context) {
	movements, err := h.walletSvc.Movements(c.Request.Context(), c.Param("address"), historyLimit(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.MovementResponse, 0, len(movements))
	for i := range movements {
		out = append(out, dto.FromMovement(&movements[i]))
	}
	response.OK(c, out)
}

// Conversions handles GET /api/v1/wallets/:address/conversions.
func (h *WalletHandler) Conversions(c *gin.Context) {
	conversions, err := h.walletSvc.Conversions(c.Request.Context(), c.Param("address"), historyLimit(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.ConversionResponse, 0, len(conversions))
	for i := range conversions {
		out = append(out, dto.FromConversion(&conversions[i]))
	}
	response.OK(c, out)
}

// Transfers handles GET /api/v1/wallets/:address/transfers.
func (h *WalletHandler) Transfers(c *gin.Context) {
	transfers, err := h.walletSvc.Transfers(c.Request.Context(), c.Param("address"), historyLimit(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	out := make([]dto.TransferResponse, 0, len(transfers))
	for i := range transfers {
		out = append(out, dto.FromTransfer(&transfers[i]))
	}
	response.OK(c, out)
}

// Block handles POST /api/v1/wallets/:address/block.
func (h *WalletHandler) Block(c *gin.Context) {
	wallet, err := h.walletSvc.Block(c.Request.Context(), c.Param("address"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, dto.FromWallet(wallet))
}

// Remove handles DELETE /api/v1/wallets/:address.
func (h *WalletHandler) Remove(c *gin.Context) {
	if err := h.walletSvc.Remove(c.Request.Context(), c.Param("address")); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, gin.H{"deleted": true})
}

// CurrencyHandler handles currency registry endpoints.
type CurrencyHandler struct {
	currencyRepo ports.CurrencyRepository
}

// NewCurrencyHandler creates a new CurrencyHandler.
func NewCurrencyHandler(currencyRepo ports.CurrencyRepository) *CurrencyHandler {
	return &CurrencyHandler{currencyRepo: currencyRepo}
}

// Create handles POST /api/v1/currencies.
func (h *CurrencyHandler) Create(c *gin.Context) {
	var req dto.CreateCurrencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	existing, err := h.currencyRepo.GetByCode(c.Request.Context(), req.Code)
	if err != nil {
		response.Error(c, apperror.ErrStorageFailure(err))
		return
	}
	if existing != nil {
		response.Error(c, apperror.Validation("currency code already registered"))
		return
	}

	currency := &domain.Currency{Code: req.Code, Name: req.Name, Kind: domain.CurrencyKind(req.Kind)}
	if err := h.currencyRepo.Create(c.Request.Context(), currency); err != nil {
		response.Error(c, apperror.ErrStorageFailure(err))
		return
	}
	response.Created(c, dto.FromCurrency(currency))
}

// List handles GET /api/v1/currencies.
func (h *CurrencyHandler) List(c *gin.Context) {
	currencies, err := h.currencyRepo.List(c.Request.Context())
	if err != nil {
		response.Error(c, apperror.ErrStorageFailure(err))
		return
	}
	out := make([]dto.CurrencyResponse, 0, len(currencies))
	for i := range currencies {
		out = append(out, dto.FromCurrency(&currencies[i]))
	}
	response.OK(c, out)
}

func historyLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultHistoryLimit)))
	if err != nil || limit <= 0 {
		return defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		return maxHistoryLimit
	}
	return limit
}
