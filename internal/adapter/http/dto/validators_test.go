package dto

import (
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeID_Valid(t *testing.T) {
	cases := []string{
		"wallet-001",
		"WALLET_002",
		"a.b.c",
		"simple123",
		"ABC-def_GHI.123",
	}
	for _, tc := range cases {
		assert.True(t, safeStringRe.MatchString(tc), "expected valid: %s", tc)
	}
}

func TestSafeID_Invalid(t *testing.T) {
	cases := []string{
		"has space",
		"semi;colon",
		"quote'",
		"<tag>",
		"",
	}
	for _, tc := range cases {
		assert.False(t, safeStringRe.MatchString(tc), "expected invalid: %s", tc)
	}
}

func TestParseAmount(t *testing.T) {
	d, err := ParseAmount(" 100.5 ")
	require.NoError(t, err)
	assert.True(t, d.Equal(decimal.RequireFromString("100.5")))

	d, err = ParseAmount("")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseAmount("not-a-number")
	assert.Error(t, err)
}

func TestFromMovement_AmountsAsStrings(t *testing.T) {
	m := &domain.Movement{
		ID:         7,
		Address:    "w1",
		CurrencyID: 1,
		Kind:       domain.MovementKindDeposit,
		Amount:     decimal.RequireFromString("100"),
		Fee:        decimal.RequireFromString("2.5"),
		CreatedAt:  time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
	resp := FromMovement(m)

	assert.Equal(t, "100", resp.Amount)
	assert.Equal(t, "2.5", resp.Fee)
	assert.Equal(t, "DEPOSIT", resp.Kind)
	assert.Equal(t, "2026-08-01T12:00:00Z", resp.CreatedAt)
}
