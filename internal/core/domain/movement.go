package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind is the direction of a single-currency balance movement.
type MovementKind string

const (
	MovementKindDeposit    MovementKind = "DEPOSIT"
	MovementKindWithdrawal MovementKind = "WITHDRAWAL"
)

// Movement is an immutable deposit or withdrawal ledger entry.
type Movement struct {
	ID         int64           `json:"id"`
	Address    string          `json:"address"`
	CurrencyID int32           `json:"currency_id"`
	Kind       MovementKind    `json:"kind"`
	Amount     decimal.Decimal `json:"amount"` // principal, always positive
	Fee        decimal.Decimal `json:"fee"`    // retained by the system
	CreatedAt  time.Time       `json:"created_at"`
}
