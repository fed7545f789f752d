package postgres

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// MovementRepo implements ports.MovementRepository. The three ledger tables
// are append-only: rows are inserted inside the operation's transaction and
// never updated or deleted afterwards.
type MovementRepo struct {
	pool Pool
}

// NewMovementRepo creates a new MovementRepo.
func NewMovementRepo(pool Pool) *MovementRepo {
	return &MovementRepo{pool: pool}
}

// RecordMovement inserts a deposit or withdrawal entry and returns its ID.
func (r *MovementRepo) RecordMovement(ctx context.Context, tx pgx.Tx, m *domain.Movement) (int64, error) {
	query := `INSERT INTO movements (address, currency_id, kind, amount, fee, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id int64
	err := tx.QueryRow(ctx, query,
		m.Address, m.CurrencyID, m.Kind, m.Amount, m.Fee, m.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert movement: %w", err)
	}
	return id, nil
}

// RecordConversion inserts a conversion entry and returns its ID.
func (r *MovementRepo) RecordConversion(ctx context.Context, tx pgx.Tx, c *domain.Conversion) (int64, error) {
	query := `INSERT INTO conversions
		(address, from_currency_id, to_currency_id, from_amount, to_amount, fee_percent, fee_amount, rate, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`

	var id int64
	err := tx.QueryRow(ctx, query,
		c.Address, c.FromCurrencyID, c.ToCurrencyID, c.FromAmount, c.ToAmount,
		c.FeePercent, c.FeeAmount, c.Rate, c.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert conversion: %w", err)
	}
	return id, nil
}

// RecordTransfer inserts a transfer entry and returns its ID.
func (r *MovementRepo) RecordTransfer(ctx context.Context, tx pgx.Tx, t *domain.Transfer) (int64, error) {
	query := `INSERT INTO transfers (from_address, to_address, currency_id, amount, fee, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`

	var id int64
	err := tx.QueryRow(ctx, query,
		t.FromAddress, t.ToAddress, t.CurrencyID, t.Amount, t.Fee, t.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert transfer: %w", err)
	}
	return id, nil
}

// ListMovementsByWallet returns the wallet's deposits and withdrawals, newest
// first.
func (r *MovementRepo) ListMovementsByWallet(ctx context.Context, address string, limit int) ([]domain.Movement, error) {
	query := `SELECT id, address, currency_id, kind, amount, fee, created_at
		FROM movements WHERE address = $1
		ORDER BY id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, address, limit)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()

	var movements []domain.Movement
	for rows.Next() {
		var m domain.Movement
		if err := rows.Scan(&m.ID, &m.Address, &m.CurrencyID, &m.Kind, &m.Amount, &m.Fee, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		movements = append(movements, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movements: %w", err)
	}
	return movements, nil
}

// ListConversionsByWallet returns the wallet's conversions, newest first.
func (r *MovementRepo) ListConversionsByWallet(ctx context.Context, address string, limit int) ([]domain.Conversion, error) {
	query := `SELECT id, address, from_currency_id, to_currency_id, from_amount, to_amount, fee_percent, fee_amount, rate, created_at
		FROM conversions WHERE address = $1
		ORDER BY id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, address, limit)
	if err != nil {
		return nil, fmt.Errorf("list conversions: %w", err)
	}
	defer rows.Close()

	var conversions []domain.Conversion
	for rows.Next() {
		var c domain.Conversion
		if err := rows.Scan(&c.ID, &c.Address, &c.FromCurrencyID, &c.ToCurrencyID,
			&c.FromAmount, &c.ToAmount, &c.FeePercent, &c.FeeAmount, &c.Rate, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		conversions = append(conversions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate conversions: %w", err)
	}
	return conversions, nil
}

// ListTransfersByWallet returns transfers where the wallet is sender or
// receiver, newest first.
func (r *MovementRepo) ListTransfersByWallet(ctx context.Context, address string, limit int) ([]domain.Transfer, error) {
	query := `SELECT id, from_address, to_address, currency_id, amount, fee, created_at
		FROM transfers WHERE from_address = $1 OR to_address = $1
		ORDER BY id DESC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, address, limit)
	if err != nil {
		return nil, fmt.Errorf("list transfers: %w", err)
	}
	defer rows.Close()

	var transfers []domain.Transfer
	for rows.Next() {
		var t domain.Transfer
		if err := rows.Scan(&t.ID, &t.FromAddress, &t.ToAddress, &t.CurrencyID, &t.Amount, &t.Fee, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan transfer: %w", err)
		}
		transfers = append(transfers, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transfers: %w", err)
	}
	return transfers, nil
}

// CountByWallet tallies every ledger row referencing the wallet, as source or
// destination. It runs inside the wallet-delete transaction so the delete
// policy and the delete itself see the same history.
func (r *MovementRepo) CountByWallet(ctx context.Context, tx pgx.Tx, address string) (int64, error) {
	query := `SELECT
		(SELECT COUNT(*) FROM movements WHERE address = $1) +
		(SELECT COUNT(*) FROM conversions WHERE address = $1) +
		(SELECT COUNT(*) FROM transfers WHERE from_address = $1 OR to_address = $1)`

	var count int64
	if err := tx.QueryRow(ctx, query, address).Scan(&count); err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return count, nil
}
