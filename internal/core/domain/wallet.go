package domain

import "time"

// WalletStatus is the lifecycle state gating all mutating operations.
type WalletStatus string

const (
	WalletStatusActive  WalletStatus = "ACTIVE"
	WalletStatusBlocked WalletStatus = "BLOCKED"
)

// Wallet is an address-identified account holding one balance per currency.
type Wallet struct {
	Address    string       `json:"address"`
	SecretHash string       `json:"-"` // hash of the wallet credential, never the raw secret
	Status     WalletStatus `json:"status"`
	CreatedAt  time.Time    `json:"created_at"`
}

// IsActive reports whether the wallet may participate in mutating operations.
func (w *Wallet) IsActive() bool {
	return w.Status == WalletStatusActive
}
