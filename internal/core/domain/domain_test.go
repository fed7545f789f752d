package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestWallet_IsActive(t *testing.T) {
	w := &Wallet{Address: "addr1", Status: WalletStatusActive}
	assert.True(t, w.IsActive())

	w.Status = WalletStatusBlocked
	assert.False(t, w.IsActive())
}

func TestBuildIdempotencyKey(t *testing.T) {
	key := BuildIdempotencyKey("deposit", "addr1", "req-42")
	assert.Equal(t, "deposit:addr1:req-42", key)

	// Same token, different operation must not collide.
	assert.NotEqual(t, key, BuildIdempotencyKey("withdraw", "addr1", "req-42"))
}

func TestFitsLedgerScale(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"integer", "100", true},
		{"eight fractional digits", "0.00000001", true},
		{"max magnitude minus one", "9999999999.99999999", true},
		{"nine fractional digits", "0.000000001", false},
		{"too many integer digits", "10000000000", false},
		{"negative in range", "-42.5", true},
		{"negative out of range", "-10000000000", false},
		{"zero", "0", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := decimal.NewFromString(tt.value)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, FitsLedgerScale(d))
		})
	}
}

func TestTruncateMoney(t *testing.T) {
	d := decimal.RequireFromString("1.234567899")
	assert.Equal(t, "1.23456789", TruncateMoney(d).String())

	// Truncation goes toward zero, never up.
	neg := decimal.RequireFromString("-1.234567899")
	assert.Equal(t, "-1.23456789", TruncateMoney(neg).String())

	exact := decimal.RequireFromString("5.5")
	assert.True(t, exact.Equal(TruncateMoney(exact)))
}
