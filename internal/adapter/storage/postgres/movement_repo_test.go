package postgres

import (
	"context"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMovementRepo_RecordMovement(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)
	m := &domain.Movement{
		Address:    "w1",
		CurrencyID: 1,
		Kind:       domain.MovementKindDeposit,
		Amount:     decimal.RequireFromString("100"),
		Fee:        decimal.RequireFromString("2.5"),
		CreatedAt:  time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO movements").
		WithArgs(m.Address, m.CurrencyID, m.Kind, m.Amount, m.Fee, m.CreatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(7)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	id, err := repo.RecordMovement(context.Background(), tx, m)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepo_RecordConversion(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)
	c := &domain.Conversion{
		Address:        "w1",
		FromCurrencyID: 2,
		ToCurrencyID:   1,
		FromAmount:     decimal.RequireFromString("1"),
		ToAmount:       decimal.RequireFromString("49500"),
		FeePercent:     decimal.RequireFromString("0.01"),
		FeeAmount:      decimal.RequireFromString("0.01"),
		Rate:           decimal.RequireFromString("50000"),
		CreatedAt:      time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO conversions").
		WithArgs(c.Address, c.FromCurrencyID, c.ToCurrencyID, c.FromAmount, c.ToAmount,
			c.FeePercent, c.FeeAmount, c.Rate, c.CreatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	id, err := repo.RecordConversion(context.Background(), tx, c)
	require.NoError(t, err)
	assert.Equal(t, int64(3), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepo_RecordTransfer(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)
	tr := &domain.Transfer{
		FromAddress: "alice",
		ToAddress:   "bob",
		CurrencyID:  1,
		Amount:      decimal.RequireFromString("20"),
		Fee:         decimal.RequireFromString("0.5"),
		CreatedAt:   time.Now().UTC(),
	}

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO transfers").
		WithArgs(tr.FromAddress, tr.ToAddress, tr.CurrencyID, tr.Amount, tr.Fee, tr.CreatedAt).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(5)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	id, err := repo.RecordTransfer(context.Background(), tx, tr)
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepo_ListMovementsByWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM movements WHERE address").
		WithArgs("w1", 50).
		WillReturnRows(pgxmock.NewRows([]string{"id", "address", "currency_id", "kind", "amount", "fee", "created_at"}).
			AddRow(int64(2), "w1", int32(1), domain.MovementKindWithdrawal,
				decimal.RequireFromString("30"), decimal.RequireFromString("0.5"), now).
			AddRow(int64(1), "w1", int32(1), domain.MovementKindDeposit,
				decimal.RequireFromString("100"), decimal.Zero, now))

	movements, err := repo.ListMovementsByWallet(context.Background(), "w1", 50)
	require.NoError(t, err)
	require.Len(t, movements, 2)
	assert.Equal(t, domain.MovementKindWithdrawal, movements[0].Kind)
	assert.Equal(t, int64(1), movements[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMovementRepo_CountByWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewMovementRepo(mock)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT").
		WithArgs("w1").
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(int64(3)))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)
	count, err := repo.CountByWallet(context.Background(), tx, "w1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
