package postgres

import (
	"context"
	"errors"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// WalletRepo implements ports.WalletRepository.
type WalletRepo struct {
	pool Pool
}

// NewWalletRepo creates a new WalletRepo.
func NewWalletRepo(pool Pool) *WalletRepo {
	return &WalletRepo{pool: pool}
}

// Create inserts a new wallet.
func (r *WalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	query := `INSERT INTO wallets (address, secret_hash, status, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING created_at`

	err := r.pool.QueryRow(ctx, query, w.Address, w.SecretHash, w.Status).Scan(&w.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert wallet: %w", err)
	}
	return nil
}

// GetByAddress fetches a wallet by address. Returns nil when absent.
func (r *WalletRepo) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	query := `SELECT address, secret_hash, status, created_at
		FROM wallets WHERE address = $1`

	w := &domain.Wallet{}
	err := r.pool.QueryRow(ctx, query, address).Scan(
		&w.Address, &w.SecretHash, &w.Status, &w.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get wallet by address: %w", err)
	}
	return w, nil
}

// List returns every wallet, newest first.
func (r *WalletRepo) List(ctx context.Context) ([]domain.Wallet, error) {
	query := `SELECT address, secret_hash, status, created_at
		FROM wallets ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list wallets: %w", err)
	}
	defer rows.Close()

	var wallets []domain.Wallet
	for rows.Next() {
		var w domain.Wallet
		if err := rows.Scan(&w.Address, &w.SecretHash, &w.Status, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan wallet: %w", err)
		}
		wallets = append(wallets, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wallets: %w", err)
	}
	return wallets, nil
}

// UpdateStatus sets the wallet's lifecycle status.
func (r *WalletRepo) UpdateStatus(ctx context.Context, address string, status domain.WalletStatus) error {
	query := `UPDATE wallets SET status = $1 WHERE address = $2`

	tag, err := r.pool.Exec(ctx, query, status, address)
	if err != nil {
		return fmt.Errorf("update wallet status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update wallet status: wallet %s not found", address)
	}
	return nil
}

// Delete removes the wallet and its balance rows in the caller's transaction.
// Ledger history is untouched.
func (r *WalletRepo) Delete(ctx context.Context, tx pgx.Tx, address string) error {
	if _, err := tx.Exec(ctx, `DELETE FROM balances WHERE address = $1`, address); err != nil {
		return fmt.Errorf("delete balances: %w", err)
	}
	tag, err := tx.Exec(ctx, `DELETE FROM wallets WHERE address = $1`, address)
	if err != nil {
		return fmt.Errorf("delete wallet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete wallet: wallet %s not found", address)
	}
	return nil
}
