package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// BalanceRepo implements ports.BalanceRepository. Balance rows are
// materialized lazily: a (wallet, currency) pair exists in the table only once
// an operation has touched it.
type BalanceRepo struct {
	pool Pool
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(pool Pool) *BalanceRepo {
	return &BalanceRepo{pool: pool}
}

// Get reads the current amount without locking. Missing rows read as zero.
func (r *BalanceRepo) Get(ctx context.Context, address string, currencyID int32) (decimal.Decimal, error) {
	query := `SELECT amount FROM balances WHERE address = $1 AND currency_id = $2`

	var amount decimal.Decimal
	err := r.pool.QueryRow(ctx, query, address, currencyID).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, fmt.Errorf("get balance: %w", err)
	}
	return amount, nil
}

// GetForUpdate materializes the zero row on first touch, then reads the amount
// under a row lock held until the transaction ends. MUST be called within a
// transaction.
func (r *BalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, address string, currencyID int32) (decimal.Decimal, error) {
	insert := `INSERT INTO balances (address, currency_id, amount, updated_at)
		VALUES ($1, $2, 0, NOW())
		ON CONFLICT (address, currency_id) DO NOTHING`

	if _, err := tx.Exec(ctx, insert, address, currencyID); err != nil {
		return decimal.Zero, fmt.Errorf("materialize balance: %w", err)
	}

	query := `SELECT amount FROM balances WHERE address = $1 AND currency_id = $2 FOR UPDATE`

	var amount decimal.Decimal
	if err := tx.QueryRow(ctx, query, address, currencyID).Scan(&amount); err != nil {
		return decimal.Zero, fmt.Errorf("lock balance: %w", err)
	}
	return amount, nil
}

// ApplyDelta writes current + delta in one guarded statement. The WHERE clause
// refuses a negative result, so a concurrent writer can never drive a balance
// below zero even if the caller's earlier read went stale.
func (r *BalanceRepo) ApplyDelta(ctx context.Context, tx pgx.Tx, address string, currencyID int32, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `UPDATE balances
		SET amount = amount + $3, updated_at = NOW()
		WHERE address = $1 AND currency_id = $2 AND amount + $3 >= 0
		RETURNING amount`

	var amount decimal.Decimal
	err := tx.QueryRow(ctx, query, address, currencyID, delta).Scan(&amount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperror.ErrInsufficientFunds()
		}
		return decimal.Zero, fmt.Errorf("apply balance delta: %w", err)
	}
	return amount, nil
}

// ListByWallet returns every balance the wallet holds, joined with the
// currency code, ordered by code.
func (r *BalanceRepo) ListByWallet(ctx context.Context, address string) ([]domain.Balance, error) {
	query := `SELECT b.address, b.currency_id, c.code, b.amount, b.updated_at
		FROM balances b
		JOIN currencies c ON c.id = b.currency_id
		WHERE b.address = $1
		ORDER BY c.code`

	rows, err := r.pool.Query(ctx, query, address)
	if err != nil {
		return nil, fmt.Errorf("list balances: %w", err)
	}
	defer rows.Close()

	var balances []domain.Balance
	for rows.Next() {
		var b domain.Balance
		if err := rows.Scan(&b.Address, &b.CurrencyID, &b.CurrencyCode, &b.Amount, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan balance: %w", err)
		}
		balances = append(balances, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate balances: %w", err)
	}
	return balances, nil
}
