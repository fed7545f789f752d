package ports

import (
	"context"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/shopspring/decimal"
)

// IdempotencyCache is the Redis-layer idempotency check (fast path).
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error) // Returns cached response JSON or nil
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// RateProvider supplies a currency-pair quote at conversion time.
// The real quote service is an external collaborator; implementations here are
// injection seams only.
type RateProvider interface {
	Quote(ctx context.Context, fromCode, toCode string) (decimal.Decimal, error)
}

// --- Service Ports (Business Logic) ---

// LedgerService applies movements to balances: validate, compute deltas and
// fees, then apply balance changes and the ledger entry as one atomic unit.
type LedgerService interface {
	Deposit(ctx context.Context, req DepositRequest) (*domain.Movement, error)
	Withdraw(ctx context.Context, req WithdrawRequest) (*domain.Movement, error)
	Convert(ctx context.Context, req ConvertRequest) (*domain.Conversion, error)
	Transfer(ctx context.Context, req TransferRequest) (*domain.Transfer, error)
}

// DepositRequest holds validated input for a deposit.
// The net credited amount is Amount - Fee: the fee is deducted from the gross
// deposit, never added on top.
type DepositRequest struct {
	Address        string
	CurrencyCode   string
	Amount         decimal.Decimal
	Fee            decimal.Decimal
	IdempotencyKey string // optional; empty disables deduplication
}

// WithdrawRequest holds validated input for a withdrawal.
// The total debited amount is Amount + Fee.
type WithdrawRequest struct {
	Address        string
	CurrencyCode   string
	Amount         decimal.Decimal
	Fee            decimal.Decimal
	IdempotencyKey string
}

// ConvertRequest holds validated input for an intra-wallet conversion.
// When Rate is zero the engine resolves the quote through its RateProvider.
type ConvertRequest struct {
	Address        string
	FromCurrency   string
	ToCurrency     string
	Amount         decimal.Decimal
	FeePercent     decimal.Decimal // 0 <= FeePercent < 1
	Rate           decimal.Decimal
	IdempotencyKey string
}

// TransferRequest holds validated input for a peer-to-peer transfer.
type TransferRequest struct {
	FromAddress    string
	ToAddress      string
	CurrencyCode   string
	Amount         decimal.Decimal
	Fee            decimal.Decimal
	IdempotencyKey string
}

// WalletService covers wallet lifecycle and read access.
type WalletService interface {
	Create(ctx context.Context, address, secretHash string) (*domain.Wallet, error)
	Get(ctx context.Context, address string) (*domain.Wallet, error)
	List(ctx context.Context) ([]domain.Wallet, error)
	Balances(ctx context.Context, address string) ([]domain.Balance, error)
	Movements(ctx context.Context, address string, limit int) ([]domain.Movement, error)
	Conversions(ctx context.Context, address string, limit int) ([]domain.Conversion, error)
	Transfers(ctx context.Context, address string, limit int) ([]domain.Transfer, error)
	Block(ctx context.Context, address string) (*domain.Wallet, error)
	// Remove deletes the wallet under the configured delete policy: restrict
	// refuses while movement history exists, retain orphans the history.
	Remove(ctx context.Context, address string) error
}
