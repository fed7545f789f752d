package dto

import (
	"time"

	"wallet-ledger/internal/core/domain"
)

// Amounts travel as decimal strings on the wire so no precision is lost to
// float parsing. Validation tag "amount" checks the string parses and fits the
// ledger scale.

// CreateWalletRequest is the request body for wallet creation. The address and
// secret hash are generated by the caller; the service never sees plaintext
// secrets.
type CreateWalletRequest struct {
	Address    string `json:"address" binding:"required,safe_id,max=64"`
	SecretHash string `json:"secret_hash" binding:"required,max=256"`
}

// CreateCurrencyRequest is the request body for registering a currency.
type CreateCurrencyRequest struct {
	Code string `json:"code" binding:"required,min=2,max=10,safe_id"`
	Name string `json:"name" binding:"required,max=100"`
	Kind string `json:"kind" binding:"required,oneof=CRYPTO FIAT"`
}

// MovementRequest is the request body for deposits and withdrawals.
type MovementRequest struct {
	Address  string `json:"address" binding:"required,safe_id,max=64"`
	Currency string `json:"currency" binding:"required,min=2,max=10"`
	Amount   string `json:"amount" binding:"required,amount"`
	Fee      string `json:"fee,omitempty" binding:"omitempty,amount"`
}

// ConvertRequest is the request body for intra-wallet conversions. Rate is
// optional; when omitted the engine quotes the pair itself.
type ConvertRequest struct {
	Address      string `json:"address" binding:"required,safe_id,max=64"`
	FromCurrency string `json:"from_currency" binding:"required,min=2,max=10"`
	ToCurrency   string `json:"to_currency" binding:"required,min=2,max=10"`
	Amount       string `json:"amount" binding:"required,amount"`
	FeePercent   string `json:"fee_percent,omitempty" binding:"omitempty,amount"`
	Rate         string `json:"rate,omitempty" binding:"omitempty,amount"`
}

// TransferRequest is the request body for peer-to-peer transfers.
type TransferRequest struct {
	FromAddress string `json:"from_address" binding:"required,safe_id,max=64"`
	ToAddress   string `json:"to_address" binding:"required,safe_id,max=64"`
	Currency    string `json:"currency" binding:"required,min=2,max=10"`
	Amount      string `json:"amount" binding:"required,amount"`
	Fee         string `json:"fee,omitempty" binding:"omitempty,amount"`
}

// WalletResponse is the response body for wallet queries.
type WalletResponse struct {
	Address   string `json:"address"`
	Status    string `json:"status"`
	CreatedAt string `json:"created_at"`
}

// BalanceResponse is one (currency, amount) entry of a wallet.
type BalanceResponse struct {
	Currency string `json:"currency"`
	Amount   string `json:"amount"`
}

// MovementResponse is the response body for a deposit or withdrawal entry.
type MovementResponse struct {
	ID         int64  `json:"id"`
	Address    string `json:"address"`
	CurrencyID int32  `json:"currency_id"`
	Kind       string `json:"kind"`
	Amount     string `json:"amount"`
	Fee        string `json:"fee"`
	CreatedAt  string `json:"created_at"`
}

// ConversionResponse is the response body for a conversion entry.
type ConversionResponse struct {
	ID             int64  `json:"id"`
	Address        string `json:"address"`
	FromCurrencyID int32  `json:"from_currency_id"`
	ToCurrencyID   int32  `json:"to_currency_id"`
	FromAmount     string `json:"from_amount"`
	ToAmount       string `json:"to_amount"`
	FeePercent     string `json:"fee_percent"`
	FeeAmount      string `json:"fee_amount"`
	Rate           string `json:"rate"`
	CreatedAt      string `json:"created_at"`
}

// TransferResponse is the response body for a transfer entry.
type TransferResponse struct {
	ID          int64  `json:"id"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	CurrencyID  int32  `json:"currency_id"`
	Amount      string `json:"amount"`
	Fee         string `json:"fee"`
	CreatedAt   string `json:"created_at"`
}

// CurrencyResponse is the response body for a currency.
type CurrencyResponse struct {
	ID   int32  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
	Kind string `json:"kind"`
}

func FromWallet(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		Address:   w.Address,
		Status:    string(w.Status),
		CreatedAt: w.CreatedAt.Format(time.RFC3339),
	}
}

func FromBalance(b domain.Balance) BalanceResponse {
	return BalanceResponse{Currency: b.CurrencyCode, Amount: b.Amount.String()}
}

func FromMovement(m *domain.Movement) MovementResponse {
	return MovementResponse{
		ID:         m.ID,
		Address:    m.Address,
		CurrencyID: m.CurrencyID,
		Kind:       string(m.Kind),
		Amount:     m.Amount.String(),
		Fee:        m.Fee.String(),
		CreatedAt:  m.CreatedAt.Format(time.RFC3339),
	}
}

func FromConversion(c *domain.Conversion) ConversionResponse {
	return ConversionResponse{
		ID:             c.ID,
		Address:        c.Address,
		FromCurrencyID: c.FromCurrencyID,
		ToCurrencyID:   c.ToCurrencyID,
		FromAmount:     c.FromAmount.String(),
		ToAmount:       c.ToAmount.String(),
		FeePercent:     c.FeePercent.String(),
		FeeAmount:      c.FeeAmount.String(),
		Rate:           c.Rate.String(),
		CreatedAt:      c.CreatedAt.Format(time.RFC3339),
	}
}

func FromTransfer(t *domain.Transfer) TransferResponse {
	return TransferResponse{
		ID:          t.ID,
		FromAddress: t.FromAddress,
		ToAddress:   t.ToAddress,
		CurrencyID:  t.CurrencyID,
		Amount:      t.Amount.String(),
		Fee:         t.Fee.String(),
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

func FromCurrency(c *domain.Currency) CurrencyResponse {
	return CurrencyResponse{ID: c.ID, Code: c.Code, Name: c.Name, Kind: string(c.Kind)}
}
