package postgres

import (
	"context"
	"testing"
	"time"

	"wallet-ledger/pkg/apperror"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBalanceRepo_Get(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)

	mock.ExpectQuery("SELECT amount FROM balances").
		WithArgs("w1", int32(1)).
		WillReturnRows(pgxmock.NewRows([]string{"amount"}).AddRow(decimal.RequireFromString("42.5")))

	amount, err := repo.Get(context.Background(), "w1", 1)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("42.5")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_Get_MissingRowReadsZero(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)

	mock.ExpectQuery("SELECT amount FROM balances").
		WithArgs("w1", int32(9)).
		WillReturnRows(pgxmock.NewRows([]string{"amount"}))

	amount, err := repo.Get(context.Background(), "w1", 9)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_GetForUpdate_MaterializesAndLocks(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO balances").
		WithArgs("w1", int32(1)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	mock.ExpectQuery("SELECT amount FROM balances .+ FOR UPDATE").
		WithArgs("w1", int32(1)).
		WillReturnRows(pgxmock.NewRows([]string{"amount"}).AddRow(decimal.RequireFromString("100")))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	amount, err := repo.GetForUpdate(context.Background(), tx, "w1", 1)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("100")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_ApplyDelta(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	delta := decimal.RequireFromString("-30.5")

	mock.ExpectBegin()
	mock.ExpectQuery("UPDATE balances").
		WithArgs("w1", int32(1), delta).
		WillReturnRows(pgxmock.NewRows([]string{"amount"}).AddRow(decimal.RequireFromString("69.5")))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	amount, err := repo.ApplyDelta(context.Background(), tx, "w1", 1, delta)
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("69.5")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_ApplyDelta_GuardRejectsNegativeResult(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	delta := decimal.RequireFromString("-1000")

	mock.ExpectBegin()
	// The guarded UPDATE matches no row when the result would be negative.
	mock.ExpectQuery("UPDATE balances").
		WithArgs("w1", int32(1), delta).
		WillReturnRows(pgxmock.NewRows([]string{"amount"}))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	_, err = repo.ApplyDelta(context.Background(), tx, "w1", 1, delta)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "LEDGER_003", appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBalanceRepo_ListByWallet(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewBalanceRepo(mock)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT .+ FROM balances b").
		WithArgs("w1").
		WillReturnRows(pgxmock.NewRows([]string{"address", "currency_id", "code", "amount", "updated_at"}).
			AddRow("w1", int32(2), "BTC", decimal.RequireFromString("0.5"), now).
			AddRow("w1", int32(1), "USD", decimal.RequireFromString("250"), now))

	balances, err := repo.ListByWallet(context.Background(), "w1")
	require.NoError(t, err)
	require.Len(t, balances, 2)
	assert.Equal(t, "BTC", balances[0].CurrencyCode)
	assert.True(t, balances[1].Amount.Equal(decimal.RequireFromString("250")))
	assert.NoError(t, mock.ExpectationsWereMet())
}
