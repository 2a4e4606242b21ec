package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"btcwallet/internal/domain"
)

// GormStore implements UserStore, WalletStore and TransactionStore on a
// gorm-managed MySQL database. The gorm.DB must be opened with
// TranslateError enabled so duplicate-key violations surface as
// gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore wraps an open gorm connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AddUser persists a new user, translating the unique-email violation
func (s *GormStore) AddUser(ctx context.Context, user *domain.User) error {
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser resolves a user by id
func (s *GormStore) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewUserNotFound(id)
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}

// AddWallet atomically re-checks the owner's wallet count and inserts. The
// count runs FOR UPDATE inside the same transaction as the insert, so two
// concurrent creations cannot both pass the cap check.
func (s *GormStore) AddWallet(ctx context.Context, wallet *domain.Wallet, limit int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&domain.Wallet{}).
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("owner_id = ?", wallet.OwnerID).
			Count(&owned).Error; err != nil {
			return fmt.Errorf("count wallets: %w", err)
		}
		if owned >= int64(limit) {
			return &domain.WalletLimitError{OwnerID: wallet.OwnerID, Limit: limit}
		}
		if err := tx.Create(wallet).Error; err != nil {
			return fmt.Errorf("insert wallet: %w", err)
		}
		return nil
	})
}

// GetWallet resolves a wallet by id
func (s *GormStore) GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	var wallet domain.Wallet
	if err := s.db.WithContext(ctx).First(&wallet, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewWalletNotFound(id)
		}
		return nil, fmt.Errorf("select wallet: %w", err)
	}
	return &wallet, nil
}

// ListByOwner returns the owner's wallets, oldest first
func (s *GormStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Wallet, error) {
	var wallets []domain.Wallet
	if err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at asc").
		Find(&wallets).Error; err != nil {
		return nil, fmt.Errorf("select wallets: %w", err)
	}
	return wallets, nil
}

// ApplyTransfer runs the two balance updates and the log append in one
// database transaction. Row locks are taken in sorted wallet-id order so two
// opposing transfers on the same pair cannot deadlock, and the sufficiency
// check happens after the sender's row is locked.
func (s *GormStore) ApplyTransfer(ctx context.Context, t *domain.Transaction) error {
	if t.FromID == t.ToID {
		return &domain.SelfTransferError{WalletID: t.FromID}
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		first, second := t.FromID, t.ToID
		if first.String() > second.String() {
			first, second = second, first
		}
		var a, b domain.Wallet
		if err := lockWallet(tx, first, &a); err != nil {
			return err
		}
		if err := lockWallet(tx, second, &b); err != nil {
			return err
		}
		sender := &a
		if b.ID == t.FromID {
			sender = &b
		}
		if sender.BalanceBTC < t.Debited() {
			return domain.ErrInsufficientFunds
		}
		if err := tx.Model(&domain.Wallet{}).
			Where("id = ?", t.FromID).
			Update("balance_btc", gorm.Expr("balance_btc - ?", t.Debited())).Error; err != nil {
			return fmt.Errorf("debit sender: %w", err)
		}
		if err := tx.Model(&domain.Wallet{}).
			Where("id = ?", t.ToID).
			Update("balance_btc", gorm.Expr("balance_btc + ?", t.AmountBTC)).Error; err != nil {
			return fmt.Errorf("credit recipient: %w", err)
		}
		if err := tx.Create(t).Error; err != nil {
			return fmt.Errorf("append transaction: %w", err)
		}
		return nil
	})
}

// lockWallet reads one wallet row FOR UPDATE
func lockWallet(tx *gorm.DB, id uuid.UUID, dst *domain.Wallet) error {
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(dst, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NewWalletNotFound(id)
	}
	if err != nil {
		return fmt.Errorf("lock wallet: %w", err)
	}
	return nil
}

// Append persists a completed transfer
func (s *GormStore) Append(ctx context.Context, t *domain.Transaction) error {
	if t.FromID == t.ToID {
		return &domain.SelfTransferError{WalletID: t.FromID}
	}
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return fmt.Errorf("append transaction: %w", err)
	}
	return nil
}

// TouchingWallet returns one page of transactions where the wallet is sender
// or recipient, insertion order, plus the total count
func (s *GormStore) TouchingWallet(ctx context.Context, walletID uuid.UUID, offset, limit int) ([]domain.Transaction, int64, error) {
	q := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Where("from_id = ? OR to_id = ?", walletID, walletID)
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count transactions: %w", err)
	}
	if limit > 0 {
		q = q.Offset(offset).Limit(limit)
	}
	var txs []domain.Transaction
	if err := q.Order("created_at asc").Find(&txs).Error; err != nil {
		return nil, 0, fmt.Errorf("select transactions: %w", err)
	}
	return txs, total, nil
}

// ForOwner returns all transactions touching any wallet of the owner
func (s *GormStore) ForOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Transaction, error) {
	owned := s.db.Model(&domain.Wallet{}).Select("id").Where("owner_id = ?", ownerID)
	var txs []domain.Transaction
	if err := s.db.WithContext(ctx).
		Where("from_id IN (?) OR to_id IN (?)", owned, owned).
		Order("created_at asc").
		Find(&txs).Error; err != nil {
		return nil, fmt.Errorf("select transactions: %w", err)
	}
	return txs, nil
}

// Aggregate returns the log's row count and total collected fees
func (s *GormStore) Aggregate(ctx context.Context) (int64, float64, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Transaction{}).Count(&count).Error; err != nil {
		return 0, 0, fmt.Errorf("count transactions: %w", err)
	}
	var feeSum float64
	if err := s.db.WithContext(ctx).Model(&domain.Transaction{}).
		Select("COALESCE(SUM(fee_btc), 0)").
		Scan(&feeSum).Error; err != nil {
		return 0, 0, fmt.Errorf("sum fees: %w", err)
	}
	return count, feeSum, nil
}
