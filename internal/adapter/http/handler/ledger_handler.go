package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/adapter/http/middleware"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// LedgerHandler handles the money-moving endpoints.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// Deposit handles POST /api/v1/ledger/deposit.
func (h *LedgerHandler) Deposit(c *gin.Context) {
	var req dto.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	amount, fee, ok := parseMoney(c, req.Amount, req.Fee)
	if !ok {
		return
	}

	result, err := h.ledgerSvc.Deposit(c.Request.Context(), ports.DepositRequest{
		Address:        req.Address,
		CurrencyCode:   req.Currency,
		Amount:         amount,
		Fee:            fee,
		IdempotencyKey: c.GetHeader(middleware.HeaderIdempotencyKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.FromMovement(result))
}

// Withdraw handles POST /api/v1/ledger/withdraw.
func (h *LedgerHandler) Withdraw(c *gin.Context) {
	var req dto.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	amount, fee, ok := parseMoney(c, req.Amount, req.Fee)
	if !ok {
		return
	}

	result, err := h.ledgerSvc.Withdraw(c.Request.Context(), ports.WithdrawRequest{
		Address:        req.Address,
		CurrencyCode:   req.Currency,
		Amount:         amount,
		Fee:            fee,
		IdempotencyKey: c.GetHeader(middleware.HeaderIdempotencyKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.FromMovement(result))
}

// Convert handles POST /api/v1/ledger/convert.
func (h *LedgerHandler) Convert(c *gin.Context) {
	var req dto.ConvertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	amount, err := dto.ParseAmount(req.Amount)
	if err != nil {
		response.Error(c, apperror.Validation("malformed amount"))
		return
	}
	feePercent, err := dto.ParseAmount(req.FeePercent)
	if err != nil {
		response.Error(c, apperror.Validation("malformed fee_percent"))
		return
	}
	rate, err := dto.ParseAmount(req.Rate)
	if err != nil {
		response.Error(c, apperror.Validation("malformed rate"))
		return
	}

	result, err := h.ledgerSvc.Convert(c.Request.Context(), ports.ConvertRequest{
		Address:        req.Address,
		FromCurrency:   req.FromCurrency,
		ToCurrency:     req.ToCurrency,
		Amount:         amount,
		FeePercent:     feePercent,
		Rate:           rate,
		IdempotencyKey: c.GetHeader(middleware.HeaderIdempotencyKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.FromConversion(result))
}

// Transfer handles POST /api/v1/ledger/transfer.
func (h *LedgerHandler) Transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}
	amount, fee, ok := parseMoney(c, req.Amount, req.Fee)
	if !ok {
		return
	}

	result, err := h.ledgerSvc.Transfer(c.Request.Context(), ports.TransferRequest{
		FromAddress:    req.FromAddress,
		ToAddress:      req.ToAddress,
		CurrencyCode:   req.Currency,
		Amount:         amount,
		Fee:            fee,
		IdempotencyKey: c.GetHeader(middleware.HeaderIdempotencyKey),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.FromTransfer(result))
}

func parseMoney(c *gin.Context, amountStr, feeStr string) (amount, fee decimal.Decimal, ok bool) {
	amount, err := dto.ParseAmount(amountStr)
	if err != nil {
		response.Error(c, apperror.Validation("malformed amount"))
		return amount, fee, false
	}
	fee, err = dto.ParseAmount(feeStr)
	if err != nil {
		response.Error(c, apperror.Validation("malformed fee"))
		return amount, fee, false
	}
	return amount, fee, true
}
