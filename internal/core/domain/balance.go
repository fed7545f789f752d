package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the current amount held by one wallet in one currency.
// Rows are lazily materialized: an absent (wallet, currency) pair reads as zero.
// The amount is never negative; the engine enforces this transactionally.
type Balance struct {
	Address      string          `json:"address"`
	CurrencyID   int32           `json:"currency_id"`
	CurrencyCode string          `json:"currency_code,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	UpdatedAt    time.Time       `json:"updated_at"`
}
