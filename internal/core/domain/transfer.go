package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer is an immutable ledger entry for a peer-to-peer movement.
// The source wallet is debited Amount + Fee; the destination receives Amount.
type Transfer struct {
	ID          int64           `json:"id"`
	FromAddress string          `json:"from_address"`
	ToAddress   string          `json:"to_address"`
	CurrencyID  int32           `json:"currency_id"`
	Amount      decimal.Decimal `json:"amount"`
	Fee         decimal.Decimal `json:"fee"`
	CreatedAt   time.Time       `json:"created_at"`
}
