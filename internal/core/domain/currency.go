package domain

// CurrencyKind distinguishes crypto assets from fiat money.
type CurrencyKind string

const (
	CurrencyKindCrypto CurrencyKind = "CRYPTO"
	CurrencyKindFiat   CurrencyKind = "FIAT"
)

// Currency is immutable once referenced by any balance or movement.
type Currency struct {
	ID   int32        `json:"id"`
	Code string       `json:"code"` // e.g. "BTC", "USD"
	Name string       `json:"name"`
	Kind CurrencyKind `json:"kind"`
}
