package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"btcwallet/internal/domain"
)

// MemoryStore implements UserStore, WalletStore and TransactionStore on maps
// guarded by a single mutex. One lock for everything gives the same guarantee
// the database implementation gets from row locks: the sufficiency check and
// both balance writes of a transfer happen in one critical section.
// It exists so the ledger services can be tested without MySQL.
type MemoryStore struct {
	mu      sync.Mutex
	users   map[uuid.UUID]domain.User
	emails  map[string]uuid.UUID
	wallets map[uuid.UUID]domain.Wallet
	log     []domain.Transaction
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[uuid.UUID]domain.User),
		emails:  make(map[string]uuid.UUID),
		wallets: make(map[uuid.UUID]domain.Wallet),
	}
}

// AddUser persists a new user, enforcing email uniqueness
func (s *MemoryStore) AddUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.emails[user.Email]; taken {
		return domain.ErrDuplicateEmail
	}
	stamp(&user.CreatedAt)
	s.users[user.ID] = *user
	s.emails[user.Email] = user.ID
	return nil
}

// GetUser resolves a user by id
func (s *MemoryStore) GetUser(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, domain.NewUserNotFound(id)
	}
	return &user, nil
}

// AddWallet re-checks the owner's wallet count and inserts under one lock
func (s *MemoryStore) AddWallet(_ context.Context, wallet *domain.Wallet, limit int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := 0
	for _, w := range s.wallets {
		if w.OwnerID == wallet.OwnerID {
			owned++
		}
	}
	if owned >= limit {
		return &domain.WalletLimitError{OwnerID: wallet.OwnerID, Limit: limit}
	}
	stamp(&wallet.CreatedAt)
	s.wallets[wallet.ID] = *wallet
	return nil
}

// stamp mimics gorm's autoCreateTime for the in-memory implementation
func stamp(createdAt *int64) {
	if *createdAt == 0 {
		*createdAt = time.Now().UnixMilli()
	}
}

// GetWallet resolves a wallet by id
func (s *MemoryStore) GetWallet(_ context.Context, id uuid.UUID) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wallet, ok := s.wallets[id]
	if !ok {
		return nil, domain.NewWalletNotFound(id)
	}
	return &wallet, nil
}

// ListByOwner returns the owner's wallets in creation order
func (s *MemoryStore) ListByOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var wallets []domain.Wallet
	for _, w := range s.wallets {
		if w.OwnerID == ownerID {
			wallets = append(wallets, w)
		}
	}
	sort.Slice(wallets, func(i, j int) bool { return wallets[i].CreatedAt < wallets[j].CreatedAt })
	return wallets, nil
}

// ApplyTransfer checks funds, moves both balances and appends to the log
// inside one critical section
func (s *MemoryStore) ApplyTransfer(_ context.Context, t *domain.Transaction) error {
	if t.FromID == t.ToID {
		return &domain.SelfTransferError{WalletID: t.FromID}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sender, ok := s.wallets[t.FromID]
	if !ok {
		return domain.NewWalletNotFound(t.FromID)
	}
	recipient, ok := s.wallets[t.ToID]
	if !ok {
		return domain.NewWalletNotFound(t.ToID)
	}
	if sender.BalanceBTC < t.Debited() {
		return domain.ErrInsufficientFunds
	}
	sender.BalanceBTC -= t.Debited()
	recipient.BalanceBTC += t.AmountBTC
	s.wallets[sender.ID] = sender
	s.wallets[recipient.ID] = recipient
	stamp(&t.CreatedAt)
	s.log = append(s.log, *t)
	return nil
}

// Append persists a completed transfer
func (s *MemoryStore) Append(_ context.Context, t *domain.Transaction) error {
	if t.FromID == t.ToID {
		return &domain.SelfTransferError{WalletID: t.FromID}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	stamp(&t.CreatedAt)
	s.log = append(s.log, *t)
	return nil
}

// TouchingWallet pages through transactions where the wallet is an endpoint
func (s *MemoryStore) TouchingWallet(_ context.Context, walletID uuid.UUID, offset, limit int) ([]domain.Transaction, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var all []domain.Transaction
	for _, t := range s.log {
		if t.FromID == walletID || t.ToID == walletID {
			all = append(all, t)
		}
	}
	total := int64(len(all))
	if limit <= 0 {
		return all, total, nil
	}
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ForOwner returns transactions touching any wallet of the owner
func (s *MemoryStore) ForOwner(_ context.Context, ownerID uuid.UUID) ([]domain.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	owned := make(map[uuid.UUID]bool)
	for id, w := range s.wallets {
		if w.OwnerID == ownerID {
			owned[id] = true
		}
	}
	var txs []domain.Transaction
	for _, t := range s.log {
		if owned[t.FromID] || owned[t.ToID] {
			txs = append(txs, t)
		}
	}
	return txs, nil
}

// Aggregate returns the log's row count and total collected fees
func (s *MemoryStore) Aggregate(_ context.Context) (int64, float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	feeSum := 0.0
	for _, t := range s.log {
		feeSum += t.FeeBTC
	}
	return int64(len(s.log)), feeSum, nil
}
