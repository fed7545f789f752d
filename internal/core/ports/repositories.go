package ports

import (
	"context"

	"wallet-ledger/internal/core/domain"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepository defines persistence operations for wallets.
type WalletRepository interface {
	Create(ctx context.Context, wallet *domain.Wallet) error
	GetByAddress(ctx context.Context, address string) (*domain.Wallet, error)
	List(ctx context.Context) ([]domain.Wallet, error)
	UpdateStatus(ctx context.Context, address string, status domain.WalletStatus) error
	// Delete removes the wallet row and its balances inside the caller's
	// transaction, so a failed wallet delete never leaves balances gone.
	// Movement history is untouched; the delete policy is enforced by the
	// wallet service.
	Delete(ctx context.Context, tx pgx.Tx, address string) error
}

// CurrencyRepository defines read access to the currency table.
type CurrencyRepository interface {
	Create(ctx context.Context, currency *domain.Currency) error
	GetByCode(ctx context.Context, code string) (*domain.Currency, error)
	List(ctx context.Context) ([]domain.Currency, error)
}

// BalanceRepository defines per-(wallet, currency) balance access.
// Methods accepting pgx.Tx run inside the operation's transaction and rely on
// row locking for serialization against concurrent delta applications.
type BalanceRepository interface {
	// Get returns the current amount, zero when the pair has no row yet.
	Get(ctx context.Context, address string, currencyID int32) (decimal.Decimal, error)
	// GetForUpdate materializes the zero row on first touch and returns the
	// amount under a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, tx pgx.Tx, address string, currencyID int32) (decimal.Decimal, error)
	// ApplyDelta atomically writes current + delta, failing with
	// apperror.ErrInsufficientFunds when the result would be negative.
	ApplyDelta(ctx context.Context, tx pgx.Tx, address string, currencyID int32, delta decimal.Decimal) (decimal.Decimal, error)
	ListByWallet(ctx context.Context, address string) ([]domain.Balance, error)
}

// MovementRepository is the append-only movement ledger. Entries are written
// in the same transaction as their balance changes and are never updated or
// deleted after commit.
type MovementRepository interface {
	RecordMovement(ctx context.Context, tx pgx.Tx, m *domain.Movement) (int64, error)
	RecordConversion(ctx context.Context, tx pgx.Tx, c *domain.Conversion) (int64, error)
	RecordTransfer(ctx context.Context, tx pgx.Tx, t *domain.Transfer) (int64, error)
	ListMovementsByWallet(ctx context.Context, address string, limit int) ([]domain.Movement, error)
	ListConversionsByWallet(ctx context.Context, address string, limit int) ([]domain.Conversion, error)
	ListTransfersByWallet(ctx context.Context, address string, limit int) ([]domain.Transfer, error)
	// CountByWallet tallies every ledger row referencing the wallet, either as
	// source or destination. Runs inside the wallet-delete transaction so the
	// restrict policy and the delete see the same history.
	CountByWallet(ctx context.Context, tx pgx.Tx, address string) (int64, error)
}

// IdempotencyRepository defines persistence for idempotency records (DB backup).
type IdempotencyRepository interface {
	Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error
	Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
