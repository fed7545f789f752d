package service

import (
	"context"
	"fmt"

	"wallet-ledger/config"
	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/rs/zerolog"
)

// WalletServiceImpl covers wallet lifecycle and read access. Deletion honors
// the configured policy: "restrict" refuses while ledger history exists,
// "retain" deletes the wallet and leaves the history orphaned.
type WalletServiceImpl struct {
	walletRepo   ports.WalletRepository
	balanceRepo  ports.BalanceRepository
	movementRepo ports.MovementRepository
	transactor   ports.DBTransactor
	deletePolicy string
	log          zerolog.Logger
}

func NewWalletService(
	walletRepo ports.WalletRepository,
	balanceRepo ports.BalanceRepository,
	movementRepo ports.MovementRepository,
	transactor ports.DBTransactor,
	deletePolicy string,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		walletRepo:   walletRepo,
		balanceRepo:  balanceRepo,
		movementRepo: movementRepo,
		transactor:   transactor,
		deletePolicy: deletePolicy,
		log:          log,
	}
}

func (s *WalletServiceImpl) Create(ctx context.Context, address, secretHash string) (*domain.Wallet, error) {
	if address == "" {
		return nil, apperror.Validation("address is required")
	}
	existing, err := s.walletRepo.GetByAddress(ctx, address)
	if err != nil {
		return nil, storageErr("fetch wallet", err)
	}
	if existing != nil {
		return nil, apperror.ErrWalletExists(address)
	}

	wallet := &domain.Wallet{
		Address:    address,
		SecretHash: secretHash,
		Status:     domain.WalletStatusActive,
	}
	if err := s.walletRepo.Create(ctx, wallet); err != nil {
		return nil, storageErr("create wallet", err)
	}
	s.log.Info().Str("address", address).Msg("wallet created")
	return wallet, nil
}

func (s *WalletServiceImpl) Get(ctx context.Context, address string) (*domain.Wallet, error) {
	wallet, err := s.walletRepo.GetByAddress(ctx, address)
	if err != nil {
		return nil, storageErr("fetch wallet", err)
	}
	if wallet == nil {
		return nil, apperror.ErrWalletNotFound(address)
	}
	return wallet, nil
}

func (s *WalletServiceImpl) List(ctx context.Context) ([]domain.Wallet, error) {
	wallets, err := s.walletRepo.List(ctx)
	if err != nil {
		return nil, storageErr("list wallets", err)
	}
	return wallets, nil
}

func (s *WalletServiceImpl) Balances(ctx context.Context, address string) ([]domain.Balance, error) {
	if _, err := s.Get(ctx, address); err != nil {
		return nil, err
	}
	balances, err := s.balanceRepo.ListByWallet(ctx, address)
	if err != nil {
		return nil, storageErr("list balances", err)
	}
	return balances, nil
}

func (s *WalletServiceImpl) Movements(ctx context.Context, address string, limit int) ([]domain.Movement, error) {
	if _, err := s.Get(ctx, address); err != nil {
		return nil, err
	}
	movements, err := s.movementRepo.ListMovementsByWallet(ctx, address, limit)
	if err != nil {
		return nil, storageErr("list movements", err)
	}
	return movements, nil
}

func (s *WalletServiceImpl) Conversions(ctx context.Context, address string, limit int) ([]domain.Conversion, error) {
	if _, err := s.Get(ctx, address); err != nil {
		return nil, err
	}
	conversions, err := s.movementRepo.ListConversionsByWallet(ctx, address, limit)
	if err != nil {
		return nil, storageErr("list conversions", err)
	}
	return conversions, nil
}

func (s *WalletServiceImpl) Transfers(ctx context.Context, address string, limit int) ([]domain.Transfer, error) {
	if _, err := s.Get(ctx, address); err != nil {
		return nil, err
	}
	transfers, err := s.movementRepo.ListTransfersByWallet(ctx, address, limit)
	if err != nil {
		return nil, storageErr("list transfers", err)
	}
	return transfers, nil
}

// Block puts the wallet in the BLOCKED state. Blocking is idempotent.
func (s *WalletServiceImpl) Block(ctx context.Context, address string) (*domain.Wallet, error) {
	wallet, err := s.Get(ctx, address)
	if err != nil {
		return nil, err
	}
	if wallet.Status == domain.WalletStatusBlocked {
		return wallet, nil
	}
	if err := s.walletRepo.UpdateStatus(ctx, address, domain.WalletStatusBlocked); err != nil {
		return nil, storageErr("block wallet", err)
	}
	wallet.Status = domain.WalletStatusBlocked
	s.log.Info().Str("address", address).Msg("wallet blocked")
	return wallet, nil
}

// Remove deletes the wallet and its balances as one transaction. The history
// count under the restrict policy runs in the same transaction, so a ledger
// entry landing mid-removal either blocks the delete or commits after it.
func (s *WalletServiceImpl) Remove(ctx context.Context, address string) error {
	if _, err := s.Get(ctx, address); err != nil {
		return err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return apperror.ErrStorageFailure(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx)

	if s.deletePolicy == config.DeletePolicyRestrict {
		count, err := s.movementRepo.CountByWallet(ctx, dbTx, address)
		if err != nil {
			return storageErr("count ledger entries", err)
		}
		if count > 0 {
			return apperror.ErrWalletHasHistory(address)
		}
	}
	if err := s.walletRepo.Delete(ctx, dbTx, address); err != nil {
		return storageErr("delete wallet", err)
	}
	if err := dbTx.Commit(ctx); err != nil {
		return apperror.ErrStorageFailure(fmt.Errorf("commit wallet delete: %w", err))
	}
	s.log.Info().Str("address", address).Str("policy", s.deletePolicy).Msg("wallet deleted")
	return nil
}
