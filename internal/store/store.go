// Package store defines the capability interfaces the ledger services run on,
// plus two implementations: the MySQL one used in production and an in-memory
// one used by tests. The interfaces deliberately bundle the atomic operations
// (wallet creation under the owner cap, the two-sided balance update of a
// transfer) so every implementation carries the concurrency contract itself
// instead of leaving check-then-act gaps to the caller.
package store

import (
	"context"

	"github.com/google/uuid"

	"btcwallet/internal/domain"
)

// UserStore persists registered users
type UserStore interface {
	// AddUser persists a new user; returns domain.ErrDuplicateEmail when the
	// email is already registered.
	AddUser(ctx context.Context, user *domain.User) error
	// GetUser resolves a user by id; returns *domain.NotFoundError when absent.
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// WalletStore persists wallets and applies balance mutations
type WalletStore interface {
	// AddWallet atomically re-checks the owner's wallet count against limit and
	// inserts. Returns *domain.WalletLimitError when the owner is at the cap.
	AddWallet(ctx context.Context, wallet *domain.Wallet, limit int) error
	// GetWallet resolves a wallet by id; returns *domain.NotFoundError when absent.
	GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	// ListByOwner returns all wallets belonging to the owner, oldest first.
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Wallet, error)
	// ApplyTransfer debits the sender by t.Debited(), credits the recipient
	// by t.AmountBTC and appends t to the transaction log as one atomic unit.
	// The sufficiency check runs inside the same critical section, so a
	// concurrent transfer can never invalidate it. Returns
	// domain.ErrInsufficientFunds or *domain.NotFoundError; on any error no
	// balance or log mutation survives.
	ApplyTransfer(ctx context.Context, t *domain.Transaction) error
}

// TransactionStore reads the append-only transaction log
type TransactionStore interface {
	// Append persists a completed transfer. Transfers normally reach the log
	// through WalletStore.ApplyTransfer; Append exists for the log's own
	// contract and re-rejects self-transfers defensively.
	Append(ctx context.Context, t *domain.Transaction) error
	// TouchingWallet returns the page of transactions where the wallet is
	// sender or recipient, insertion order, plus the total count.
	TouchingWallet(ctx context.Context, walletID uuid.UUID, offset, limit int) ([]domain.Transaction, int64, error)
	// ForOwner returns all transactions touching any wallet of the owner,
	// insertion order.
	ForOwner(ctx context.Context, ownerID uuid.UUID) ([]domain.Transaction, error)
	// Aggregate returns the total row count and the sum of all fees;
	// (0, 0.0) on an empty log.
	Aggregate(ctx context.Context) (int64, float64, error)
}
