package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory Wallet Repo ---

type inMemoryWalletRepo struct {
	mu      sync.RWMutex
	wallets map[string]*domain.Wallet
}

func newInMemoryWalletRepo() *inMemoryWalletRepo {
	return &inMemoryWalletRepo{wallets: make(map[string]*domain.Wallet)}
}

func (r *inMemoryWalletRepo) Create(ctx context.Context, w *domain.Wallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[w.Address]; ok {
		return fmt.Errorf("wallet already exists")
	}
	cp := *w
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.wallets[w.Address] = &cp
	w.CreatedAt = cp.CreatedAt
	return nil
}

func (r *inMemoryWalletRepo) GetByAddress(ctx context.Context, address string) (*domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.wallets[address]
	if !ok {
		return nil, nil
	}
	cp := *w
	return &cp, nil
}

func (r *inMemoryWalletRepo) List(ctx context.Context) ([]domain.Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Wallet, 0, len(r.wallets))
	for _, w := range r.wallets {
		out = append(out, *w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Address < out[j].Address })
	return out, nil
}

func (r *inMemoryWalletRepo) UpdateStatus(ctx context.Context, address string, status domain.WalletStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[address]
	if !ok {
		return fmt.Errorf("wallet not found")
	}
	w.Status = status
	return nil
}

func (r *inMemoryWalletRepo) Delete(ctx context.Context, tx pgx.Tx, address string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.wallets[address]; !ok {
		return fmt.Errorf("wallet not found")
	}
	delete(r.wallets, address)
	return nil
}

// --- In-Memory Currency Repo ---

type inMemoryCurrencyRepo struct {
	mu         sync.RWMutex
	currencies map[string]*domain.Currency
	nextID     int32
}

func newInMemoryCurrencyRepo() *inMemoryCurrencyRepo {
	return &inMemoryCurrencyRepo{currencies: make(map[string]*domain.Currency), nextID: 1}
}

func (r *inMemoryCurrencyRepo) Create(ctx context.Context, c *domain.Currency) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.currencies[c.Code]; ok {
		return fmt.Errorf("currency already exists")
	}
	c.ID = r.nextID
	r.nextID++
	cp := *c
	r.currencies[c.Code] = &cp
	return nil
}

func (r *inMemoryCurrencyRepo) GetByCode(ctx context.Context, code string) (*domain.Currency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.currencies[code]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (r *inMemoryCurrencyRepo) codeByID(id int32) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.currencies {
		if c.ID == id {
			return c.Code
		}
	}
	return ""
}

func (r *inMemoryCurrencyRepo) List(ctx context.Context) ([]domain.Currency, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Currency, 0, len(r.currencies))
	for _, c := range r.currencies {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

// --- In-Memory Balance Repo ---

type balanceKey struct {
	address    string
	currencyID int32
}

type inMemoryBalanceRepo struct {
	mu         sync.Mutex
	balances   map[balanceKey]decimal.Decimal
	currencies *inMemoryCurrencyRepo
}

func newInMemoryBalanceRepo(currencies *inMemoryCurrencyRepo) *inMemoryBalanceRepo {
	return &inMemoryBalanceRepo{
		balances:   make(map[balanceKey]decimal.Decimal),
		currencies: currencies,
	}
}

func (r *inMemoryBalanceRepo) Get(ctx context.Context, address string, currencyID int32) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	amt, ok := r.balances[balanceKey{address, currencyID}]
	if !ok {
		return decimal.Zero, nil
	}
	return amt, nil
}

func (r *inMemoryBalanceRepo) GetForUpdate(ctx context.Context, tx pgx.Tx, address string, currencyID int32) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey{address, currencyID}
	amt, ok := r.balances[key]
	if !ok {
		r.balances[key] = decimal.Zero
		return decimal.Zero, nil
	}
	return amt, nil
}

// ApplyDelta mirrors the guarded UPDATE: the check and the write happen under
// one lock so a concurrent operation can never drive a balance negative.
func (r *inMemoryBalanceRepo) ApplyDelta(ctx context.Context, tx pgx.Tx, address string, currencyID int32, delta decimal.Decimal) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := balanceKey{address, currencyID}
	next := r.balances[key].Add(delta)
	if next.IsNegative() {
		return decimal.Zero, apperror.ErrInsufficientFunds()
	}
	r.balances[key] = next
	return next, nil
}

func (r *inMemoryBalanceRepo) ListByWallet(ctx context.Context, address string) ([]domain.Balance, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Balance
	for key, amt := range r.balances {
		if key.address != address {
			continue
		}
		out = append(out, domain.Balance{
			Address:      key.address,
			CurrencyID:   key.currencyID,
			CurrencyCode: r.currencies.codeByID(key.currencyID),
			Amount:       amt,
			UpdatedAt:    time.Now(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CurrencyID < out[j].CurrencyID })
	return out, nil
}

// total sums every balance held in the given currency, across all wallets.
func (r *inMemoryBalanceRepo) total(currencyID int32) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for key, amt := range r.balances {
		if key.currencyID == currencyID {
			sum = sum.Add(amt)
		}
	}
	return sum
}

// --- In-Memory Movement Repo ---

type inMemoryMovementRepo struct {
	mu          sync.Mutex
	nextID      int64
	movements   []domain.Movement
	conversions []domain.Conversion
	transfers   []domain.Transfer
}

func newInMemoryMovementRepo() *inMemoryMovementRepo {
	return &inMemoryMovementRepo{nextID: 1}
}

func (r *inMemoryMovementRepo) RecordMovement(ctx context.Context, tx pgx.Tx, m *domain.Movement) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	cp := *m
	cp.ID = id
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.movements = append(r.movements, cp)
	return id, nil
}

func (r *inMemoryMovementRepo) RecordConversion(ctx context.Context, tx pgx.Tx, c *domain.Conversion) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	cp := *c
	cp.ID = id
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.conversions = append(r.conversions, cp)
	return id, nil
}

func (r *inMemoryMovementRepo) RecordTransfer(ctx context.Context, tx pgx.Tx, t *domain.Transfer) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	cp := *t
	cp.ID = id
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now()
	}
	r.transfers = append(r.transfers, cp)
	return id, nil
}

func (r *inMemoryMovementRepo) ListMovementsByWallet(ctx context.Context, address string, limit int) ([]domain.Movement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Movement
	for i := len(r.movements) - 1; i >= 0 && len(out) < limit; i-- {
		if r.movements[i].Address == address {
			out = append(out, r.movements[i])
		}
	}
	return out, nil
}

func (r *inMemoryMovementRepo) ListConversionsByWallet(ctx context.Context, address string, limit int) ([]domain.Conversion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Conversion
	for i := len(r.conversions) - 1; i >= 0 && len(out) < limit; i-- {
		if r.conversions[i].Address == address {
			out = append(out, r.conversions[i])
		}
	}
	return out, nil
}

func (r *inMemoryMovementRepo) ListTransfersByWallet(ctx context.Context, address string, limit int) ([]domain.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Transfer
	for i := len(r.transfers) - 1; i >= 0 && len(out) < limit; i-- {
		if r.transfers[i].FromAddress == address || r.transfers[i].ToAddress == address {
			out = append(out, r.transfers[i])
		}
	}
	return out, nil
}

func (r *inMemoryMovementRepo) CountByWallet(ctx context.Context, tx pgx.Tx, address string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, m := range r.movements {
		if m.Address == address {
			n++
		}
	}
	for _, c := range r.conversions {
		if c.Address == address {
			n++
		}
	}
	for _, t := range r.transfers {
		if t.FromAddress == address || t.ToAddress == address {
			n++
		}
	}
	return n, nil
}

// --- In-Memory Idempotency Repo ---

type inMemoryIdempotencyRepo struct {
	mu      sync.RWMutex
	records map[string]*domain.IdempotencyRecord
}

func newInMemoryIdempotencyRepo() *inMemoryIdempotencyRepo {
	return &inMemoryIdempotencyRepo{records: make(map[string]*domain.IdempotencyRecord)}
}

func (r *inMemoryIdempotencyRepo) Create(ctx context.Context, tx pgx.Tx, rec *domain.IdempotencyRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *rec
	r.records[rec.Key] = &cp
	return nil
}

func (r *inMemoryIdempotencyRepo) Get(ctx context.Context, key string) (*domain.IdempotencyRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[key]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

// --- In-Memory Transactor (no-op tx) ---

type inMemoryTransactor struct{}

func newInMemoryTransactor() *inMemoryTransactor {
	return &inMemoryTransactor{}
}

func (t *inMemoryTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return &noopTx{}, nil
}

// noopTx is a no-op pgx.Tx implementation for in-memory testing.
type noopTx struct{}

func (t *noopTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *noopTx) Commit(ctx context.Context) error          { return nil }
func (t *noopTx) Rollback(ctx context.Context) error        { return nil }
func (t *noopTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *noopTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *noopTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *noopTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *noopTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *noopTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *noopTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (t *noopTx) Conn() *pgx.Conn                                               { return nil }
