package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Conversion is an immutable ledger entry for an intra-wallet currency swap.
// FromCurrencyID and ToCurrencyID always differ; the engine rejects
// same-currency conversions before any balance is touched.
type Conversion struct {
	ID             int64           `json:"id"`
	Address        string          `json:"address"`
	FromCurrencyID int32           `json:"from_currency_id"`
	ToCurrencyID   int32           `json:"to_currency_id"`
	FromAmount     decimal.Decimal `json:"from_amount"` // gross amount debited
	ToAmount       decimal.Decimal `json:"to_amount"`   // net amount credited
	FeePercent     decimal.Decimal `json:"fee_percent"`
	FeeAmount      decimal.Decimal `json:"fee_amount"`
	Rate           decimal.Decimal `json:"rate"` // quote applied to the net source amount
	CreatedAt      time.Time       `json:"created_at"`
}
