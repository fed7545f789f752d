package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	opDeposit  = "deposit"
	opWithdraw = "withdraw"
	opConvert  = "convert"
	opTransfer = "transfer"
)

// LedgerServiceImpl applies movements to wallet balances. Every operation
// follows the same shape: validate input, resolve wallet and currency, take the
// pair locks in sorted order, then apply balance deltas and the ledger entry in
// one database transaction.
type LedgerServiceImpl struct {
	walletRepo   ports.WalletRepository
	currencyRepo ports.CurrencyRepository
	balanceRepo  ports.BalanceRepository
	movementRepo ports.MovementRepository
	idempRepo    ports.IdempotencyRepository
	idempCache   ports.IdempotencyCache
	rates        ports.RateProvider
	transactor   ports.DBTransactor
	locks        *pairLocks
	lockWait     time.Duration
	idempTTL     time.Duration
	log          zerolog.Logger
}

func NewLedgerService(
	walletRepo ports.WalletRepository,
	currencyRepo ports.CurrencyRepository,
	balanceRepo ports.BalanceRepository,
	movementRepo ports.MovementRepository,
	idempRepo ports.IdempotencyRepository,
	idempCache ports.IdempotencyCache,
	rates ports.RateProvider,
	transactor ports.DBTransactor,
	lockWait time.Duration,
	idempTTL time.Duration,
	log zerolog.Logger,
) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		walletRepo:   walletRepo,
		currencyRepo: currencyRepo,
		balanceRepo:  balanceRepo,
		movementRepo: movementRepo,
		idempRepo:    idempRepo,
		idempCache:   idempCache,
		rates:        rates,
		transactor:   transactor,
		locks:        newPairLocks(),
		lockWait:     lockWait,
		idempTTL:     idempTTL,
		log:          log,
	}
}

// Deposit credits Amount - Fee to the wallet's balance in the given currency.
func (s *LedgerServiceImpl) Deposit(ctx context.Context, req ports.DepositRequest) (*domain.Movement, error) {
	if err := checkMoney(req.Amount, req.Fee); err != nil {
		return nil, err
	}
	if req.Fee.GreaterThan(req.Amount) {
		return nil, apperror.ErrInvalidAmount("fee cannot exceed the deposit amount")
	}

	idempKey := scopedKey(opDeposit, req.Address, req.IdempotencyKey)
	if cached, err := s.cachedResult(ctx, idempKey); err != nil {
		return nil, err
	} else if cached != nil {
		return decodeCached[domain.Movement](cached)
	}

	if _, err := s.requireActive(ctx, req.Address); err != nil {
		return nil, err
	}
	ccy, err := s.currency(ctx, req.CurrencyCode)
	if err != nil {
		return nil, err
	}

	release, err := s.acquirePairs(ctx, pairKeyFor(req.Address, ccy.ID))
	if err != nil {
		return nil, err
	}
	defer release()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx)

	if _, err := s.balanceRepo.GetForUpdate(ctx, dbTx, req.Address, ccy.ID); err != nil {
		return nil, storageErr("lock balance", err)
	}
	net := req.Amount.Sub(req.Fee)
	newBalance, err := s.balanceRepo.ApplyDelta(ctx, dbTx, req.Address, ccy.ID, net)
	if err != nil {
		return nil, storageErr("apply deposit", err)
	}

	movement := &domain.Movement{
		Address:    req.Address,
		CurrencyID: ccy.ID,
		Kind:       domain.MovementKindDeposit,
		Amount:     req.Amount,
		Fee:        req.Fee,
		CreatedAt:  time.Now().UTC(),
	}
	movement.ID, err = s.movementRepo.RecordMovement(ctx, dbTx, movement)
	if err != nil {
		return nil, storageErr("record deposit", err)
	}

	payload, err := s.persistIdempotency(ctx, dbTx, idempKey, movement)
	if err != nil {
		return nil, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("commit deposit: %w", err))
	}
	s.cacheResult(ctx, idempKey, payload)

	s.log.Info().
		Str("address", req.Address).
		Str("currency", ccy.Code).
		Str("amount", req.Amount.String()).
		Str("fee", req.Fee.String()).
		Str("balance", newBalance.String()).
		Msg("deposit applied")
	return movement, nil
}

// Withdraw debits Amount + Fee from the wallet's balance in the given currency.
func (s *LedgerServiceImpl) Withdraw(ctx context.Context, req ports.WithdrawRequest) (*domain.Movement, error) {
	if err := checkMoney(req.Amount, req.Fee); err != nil {
		return nil, err
	}
	total := req.Amount.Add(req.Fee)
	if !domain.FitsLedgerScale(total) {
		return nil, apperror.ErrAmountOutOfRange()
	}

	idempKey := scopedKey(opWithdraw, req.Address, req.IdempotencyKey)
	if cached, err := s.cachedResult(ctx, idempKey); err != nil {
		return nil, err
	} else if cached != nil {
		return decodeCached[domain.Movement](cached)
	}

	if _, err := s.requireActive(ctx, req.Address); err != nil {
		return nil, err
	}
	ccy, err := s.currency(ctx, req.CurrencyCode)
	if err != nil {
		return nil, err
	}

	release, err := s.acquirePairs(ctx, pairKeyFor(req.Address, ccy.ID))
	if err != nil {
		return nil, err
	}
	defer release()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx)

	balance, err := s.balanceRepo.GetForUpdate(ctx, dbTx, req.Address, ccy.ID)
	if err != nil {
		return nil, storageErr("lock balance", err)
	}
	if balance.LessThan(total) {
		return nil, apperror.ErrInsufficientFunds()
	}
	newBalance, err := s.balanceRepo.ApplyDelta(ctx, dbTx, req.Address, ccy.ID, total.Neg())
	if err != nil {
		return nil, storageErr("apply withdrawal", err)
	}

	movement := &domain.Movement{
		Address:    req.Address,
		CurrencyID: ccy.ID,
		Kind:       domain.MovementKindWithdrawal,
		Amount:     req.Amount,
		Fee:        req.Fee,
		CreatedAt:  time.Now().UTC(),
	}
	movement.ID, err = s.movementRepo.RecordMovement(ctx, dbTx, movement)
	if err != nil {
		return nil, storageErr("record withdrawal", err)
	}

	payload, err := s.persistIdempotency(ctx, dbTx, idempKey, movement)
	if err != nil {
		return nil, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("commit withdrawal: %w", err))
	}
	s.cacheResult(ctx, idempKey, payload)

	s.log.Info().
		Str("address", req.Address).
		Str("currency", ccy.Code).
		Str("amount", req.Amount.String()).
		Str("fee", req.Fee.String()).
		Str("balance", newBalance.String()).
		Msg("withdrawal applied")
	return movement, nil
}

// Convert exchanges Amount of FromCurrency into ToCurrency inside one wallet.
// The fee is taken on the source side before the rate is applied; the credited
// amount is truncated to the ledger scale.
func (s *LedgerServiceImpl) Convert(ctx context.Context, req ports.ConvertRequest) (*domain.Conversion, error) {
	if err := checkAmount(req.Amount); err != nil {
		return nil, err
	}
	if req.FeePercent.IsNegative() || req.FeePercent.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, apperror.ErrInvalidAmount("fee percent must be in [0, 1)")
	}
	if req.FromCurrency == req.ToCurrency {
		return nil, apperror.ErrSameCurrencyConversion()
	}
	if req.Rate.IsNegative() {
		return nil, apperror.ErrInvalidAmount("rate must be positive")
	}

	idempKey := scopedKey(opConvert, req.Address, req.IdempotencyKey)
	if cached, err := s.cachedResult(ctx, idempKey); err != nil {
		return nil, err
	} else if cached != nil {
		return decodeCached[domain.Conversion](cached)
	}

	if _, err := s.requireActive(ctx, req.Address); err != nil {
		return nil, err
	}
	from, err := s.currency(ctx, req.FromCurrency)
	if err != nil {
		return nil, err
	}
	to, err := s.currency(ctx, req.ToCurrency)
	if err != nil {
		return nil, err
	}

	rate := req.Rate
	if rate.IsZero() {
		if s.rates == nil {
			return nil, apperror.ErrRateUnavailable(from.Code, to.Code)
		}
		rate, err = s.rates.Quote(ctx, from.Code, to.Code)
		if err != nil {
			return nil, apperror.ErrRateUnavailable(from.Code, to.Code)
		}
	}
	if rate.Sign() <= 0 {
		return nil, apperror.ErrInvalidAmount("rate must be positive")
	}

	feeAmount := domain.TruncateMoney(req.Amount.Mul(req.FeePercent))
	credit := domain.TruncateMoney(req.Amount.Sub(feeAmount).Mul(rate))
	if !domain.FitsLedgerScale(credit) {
		return nil, apperror.ErrAmountOutOfRange()
	}

	srcPair := balancePair{req.Address, from.ID}
	dstPair := balancePair{req.Address, to.ID}
	release, err := s.acquirePairs(ctx, srcPair.key(), dstPair.key())
	if err != nil {
		return nil, err
	}
	defer release()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx)

	balances, err := s.lockPairs(ctx, dbTx, srcPair, dstPair)
	if err != nil {
		return nil, err
	}
	if balances[srcPair].LessThan(req.Amount) {
		return nil, apperror.ErrInsufficientFunds()
	}
	if _, err := s.balanceRepo.ApplyDelta(ctx, dbTx, req.Address, from.ID, req.Amount.Neg()); err != nil {
		return nil, storageErr("debit source", err)
	}
	if _, err := s.balanceRepo.ApplyDelta(ctx, dbTx, req.Address, to.ID, credit); err != nil {
		return nil, storageErr("credit destination", err)
	}

	conversion := &domain.Conversion{
		Address:        req.Address,
		FromCurrencyID: from.ID,
		ToCurrencyID:   to.ID,
		FromAmount:     req.Amount,
		ToAmount:       credit,
		FeePercent:     req.FeePercent,
		FeeAmount:      feeAmount,
		Rate:           rate,
		CreatedAt:      time.Now().UTC(),
	}
	conversion.ID, err = s.movementRepo.RecordConversion(ctx, dbTx, conversion)
	if err != nil {
		return nil, storageErr("record conversion", err)
	}

	payload, err := s.persistIdempotency(ctx, dbTx, idempKey, conversion)
	if err != nil {
		return nil, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("commit conversion: %w", err))
	}
	s.cacheResult(ctx, idempKey, payload)

	s.log.Info().
		Str("address", req.Address).
		Str("from", from.Code).
		Str("to", to.Code).
		Str("amount", req.Amount.String()).
		Str("credited", credit.String()).
		Str("rate", rate.String()).
		Msg("conversion applied")
	return conversion, nil
}

// Transfer moves Amount from one wallet to another in the same currency. The
// sender pays Amount + Fee; the receiver gets Amount.
func (s *LedgerServiceImpl) Transfer(ctx context.Context, req ports.TransferRequest) (*domain.Transfer, error) {
	if err := checkMoney(req.Amount, req.Fee); err != nil {
		return nil, err
	}
	if req.FromAddress == req.ToAddress {
		return nil, apperror.ErrSelfTransfer()
	}
	total := req.Amount.Add(req.Fee)
	if !domain.FitsLedgerScale(total) {
		return nil, apperror.ErrAmountOutOfRange()
	}

	idempKey := scopedKey(opTransfer, req.FromAddress, req.IdempotencyKey)
	if cached, err := s.cachedResult(ctx, idempKey); err != nil {
		return nil, err
	} else if cached != nil {
		return decodeCached[domain.Transfer](cached)
	}

	if _, err := s.requireActive(ctx, req.FromAddress); err != nil {
		return nil, err
	}
	if _, err := s.requireActive(ctx, req.ToAddress); err != nil {
		return nil, err
	}
	ccy, err := s.currency(ctx, req.CurrencyCode)
	if err != nil {
		return nil, err
	}

	srcPair := balancePair{req.FromAddress, ccy.ID}
	dstPair := balancePair{req.ToAddress, ccy.ID}
	release, err := s.acquirePairs(ctx, srcPair.key(), dstPair.key())
	if err != nil {
		return nil, err
	}
	defer release()

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx)

	balances, err := s.lockPairs(ctx, dbTx, srcPair, dstPair)
	if err != nil {
		return nil, err
	}
	if balances[srcPair].LessThan(total) {
		return nil, apperror.ErrInsufficientFunds()
	}
	if _, err := s.balanceRepo.ApplyDelta(ctx, dbTx, req.FromAddress, ccy.ID, total.Neg()); err != nil {
		return nil, storageErr("debit sender", err)
	}
	if _, err := s.balanceRepo.ApplyDelta(ctx, dbTx, req.ToAddress, ccy.ID, req.Amount); err != nil {
		return nil, storageErr("credit receiver", err)
	}

	transfer := &domain.Transfer{
		FromAddress: req.FromAddress,
		ToAddress:   req.ToAddress,
		CurrencyID:  ccy.ID,
		Amount:      req.Amount,
		Fee:         req.Fee,
		CreatedAt:   time.Now().UTC(),
	}
	transfer.ID, err = s.movementRepo.RecordTransfer(ctx, dbTx, transfer)
	if err != nil {
		return nil, storageErr("record transfer", err)
	}

	payload, err := s.persistIdempotency(ctx, dbTx, idempKey, transfer)
	if err != nil {
		return nil, err
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrStorageFailure(fmt.Errorf("commit transfer: %w", err))
	}
	s.cacheResult(ctx, idempKey, payload)

	s.log.Info().
		Str("from", req.FromAddress).
		Str("to", req.ToAddress).
		Str("currency", ccy.Code).
		Str("amount", req.Amount.String()).
		Str("fee", req.Fee.String()).
		Msg("transfer applied")
	return transfer, nil
}

// --- helpers ---

type balancePair struct {
	address    string
	currencyID int32
}

func (p balancePair) key() string {
	return pairKeyFor(p.address, p.currencyID)
}

// lockPairs takes the row locks in sorted key order, mirroring the in-process
// lock order, and returns the current amount per pair.
func (s *LedgerServiceImpl) lockPairs(ctx context.Context, tx pgx.Tx, pairs ...balancePair) (map[balancePair]decimal.Decimal, error) {
	ordered := append([]balancePair(nil), pairs...)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].key() < ordered[j].key() })

	balances := make(map[balancePair]decimal.Decimal, len(ordered))
	for _, p := range ordered {
		amount, err := s.balanceRepo.GetForUpdate(ctx, tx, p.address, p.currencyID)
		if err != nil {
			return nil, storageErr("lock balance", err)
		}
		balances[p] = amount
	}
	return balances, nil
}

func (s *LedgerServiceImpl) acquirePairs(ctx context.Context, keys ...string) (func(), error) {
	release, err := s.locks.Acquire(ctx, s.lockWait, keys...)
	if err != nil {
		return nil, apperror.ErrLockTimeout(err)
	}
	return release, nil
}

func (s *LedgerServiceImpl) requireActive(ctx context.Context, address string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByAddress(ctx, address)
	if err != nil {
		return nil, storageErr("fetch wallet", err)
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound(address)
	}
	if !wallet.IsActive() {
		return nil, apperror.ErrWalletBlocked(address)
	}
	return wallet, nil
}

func (s *LedgerServiceImpl) currency(ctx context.Context, code string) (*domain.Currency, error) {
	ccy, err := s.currencyRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, storageErr("fetch currency", err)
	}
	if ccy == nil {
		return nil, apperror.ErrCurrencyNotFound(code)
	}
	return ccy, nil
}

// cachedResult checks the idempotency layers: Redis first, then the durable DB
// record. An empty key disables deduplication.
func (s *LedgerServiceImpl) cachedResult(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	if data, err := s.idempCache.Get(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("idempotency cache read failed")
	} else if data != nil {
		return data, nil
	}
	rec, err := s.idempRepo.Get(ctx, key)
	if err != nil {
		return nil, storageErr("fetch idempotency record", err)
	}
	if rec != nil {
		return rec.ResponseJSON, nil
	}
	return nil, nil
}

// persistIdempotency serializes the result and writes the durable record inside
// the operation's transaction. Returns the payload for the cache write, nil
// when deduplication is off.
func (s *LedgerServiceImpl) persistIdempotency(ctx context.Context, tx pgx.Tx, key string, result any) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("marshal result: %w", err))
	}
	rec := &domain.IdempotencyRecord{
		Key:          key,
		OperationID:  uuid.New(),
		ResponseJSON: payload,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.idempRepo.Create(ctx, tx, rec); err != nil {
		return nil, storageErr("persist idempotency record", err)
	}
	return payload, nil
}

// cacheResult writes the fast-path idempotency entry. Best effort: a cache
// failure never fails an already committed operation.
func (s *LedgerServiceImpl) cacheResult(ctx context.Context, key string, payload []byte) {
	if key == "" || payload == nil {
		return
	}
	if err := s.idempCache.Set(ctx, key, payload, s.idempTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("idempotency cache write failed")
	}
}

func scopedKey(op, address, key string) string {
	if key == "" {
		return ""
	}
	return domain.BuildIdempotencyKey(op, address, key)
}

func checkAmount(amount decimal.Decimal) error {
	if amount.Sign() <= 0 {
		return apperror.ErrInvalidAmount("amount must be positive")
	}
	if !domain.FitsLedgerScale(amount) {
		return apperror.ErrAmountOutOfRange()
	}
	return nil
}

func checkMoney(amount, fee decimal.Decimal) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	if fee.IsNegative() {
		return apperror.ErrInvalidAmount("fee cannot be negative")
	}
	if !domain.FitsLedgerScale(fee) {
		return apperror.ErrAmountOutOfRange()
	}
	return nil
}

func decodeCached[T any](data []byte) (*T, error) {
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("decode cached result: %w", err))
	}
	return out, nil
}

func storageErr(op string, err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperror.ErrStorageFailure(fmt.Errorf("%s: %w", op, err))
}
