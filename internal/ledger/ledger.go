// Package ledger owns wallet creation and the transfer operation. Handlers
// never touch the stores directly for mutations; everything that moves
// bitcoin goes through here.
package ledger

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"btcwallet/internal/domain"
	"btcwallet/internal/store"
)

// Metrics
var (
	transfersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wallet_transfers_total",
		Help: "Completed and rejected transfers",
	}, []string{"outcome"})

	feesCollectedBTC = promauto.NewCounter(prometheus.CounterOpts{
		Name: "wallet_fees_collected_btc_total",
		Help: "Bitcoin retained as platform fees",
	})
)

// Config carries the ledger's business constants
type Config struct {
	FeeRate            float64 // Fraction of a cross-owner transfer retained as fee
	WalletLimit        int     // Maximum wallets per owner
	StartingBalanceBTC float64 // Balance a new wallet opens with
}

// Ledger enforces the wallet invariants: the per-owner cap, balance
// sufficiency, the fee rule and the no-self-transfer rule
type Ledger struct {
	users   store.UserStore
	wallets store.WalletStore
	txs     store.TransactionStore
	cfg     Config
}

// New wires a Ledger over its stores
func New(users store.UserStore, wallets store.WalletStore, txs store.TransactionStore, cfg Config) *Ledger {
	return &Ledger{users: users, wallets: wallets, txs: txs, cfg: cfg}
}

// CreateWallet opens a wallet for the owner with the configured starting
// balance. The owner must exist and must be under the wallet cap; the cap
// re-check and the insert are atomic in the store.
func (l *Ledger) CreateWallet(ctx context.Context, ownerID uuid.UUID) (*domain.Wallet, error) {
	if _, err := l.users.GetUser(ctx, ownerID); err != nil {
		return nil, err
	}
	wallet := domain.NewWallet(ownerID, l.cfg.StartingBalanceBTC)
	if err := l.wallets.AddWallet(ctx, wallet, l.cfg.WalletLimit); err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"owner_id":  ownerID,
		"wallet_id": wallet.ID,
		"balance":   wallet.BalanceBTC,
	}).Info("Wallet created")
	return wallet, nil
}

// GetWallet resolves a wallet by id
func (l *Ledger) GetWallet(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, error) {
	return l.wallets.GetWallet(ctx, walletID)
}

// UserWallets returns all wallets of the user, oldest first
func (l *Ledger) UserWallets(ctx context.Context, userID uuid.UUID) ([]domain.Wallet, error) {
	if _, err := l.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return l.wallets.ListByOwner(ctx, userID)
}

// WalletOwnerMatches verifies the wallet exists and belongs to ownerID
func (l *Ledger) WalletOwnerMatches(ctx context.Context, ownerID, walletID uuid.UUID) error {
	wallet, err := l.wallets.GetWallet(ctx, walletID)
	if err != nil {
		return err
	}
	if wallet.OwnerID != ownerID {
		return &domain.WrongOwnerError{OwnerID: ownerID, WalletID: walletID}
	}
	return nil
}

// SameOwner reports whether two wallets belong to the same user, failing
// with a not-found error naming whichever wallet is missing
func (l *Ledger) SameOwner(ctx context.Context, a, b uuid.UUID) (bool, error) {
	wa, err := l.wallets.GetWallet(ctx, a)
	if err != nil {
		return false, err
	}
	wb, err := l.wallets.GetWallet(ctx, b)
	if err != nil {
		return false, err
	}
	return wa.OwnerID == wb.OwnerID, nil
}

// Transfer moves amount from one wallet to another. Cross-owner transfers
// retain FeeRate of the amount as platform profit; the fee is carved out of
// the sent amount, so the sender is debited exactly amount and the recipient
// receives amount minus fee. Same-owner transfers carry no fee. The balance
// check, both balance writes and the log append are one atomic unit in the
// store.
func (l *Ledger) Transfer(ctx context.Context, fromID, toID uuid.UUID, amount float64) (*domain.Transaction, error) {
	if fromID == toID {
		transfersTotal.WithLabelValues("rejected").Inc()
		return nil, &domain.SelfTransferError{WalletID: fromID}
	}
	sameOwner, err := l.SameOwner(ctx, fromID, toID)
	if err != nil {
		transfersTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	fee := 0.0
	if !sameOwner {
		fee = amount * l.cfg.FeeRate
	}
	t := &domain.Transaction{
		ID:        uuid.New(),
		FromID:    fromID,
		ToID:      toID,
		AmountBTC: amount - fee, // Credited to the recipient
		FeeBTC:    fee,          // Retained as profit
	}
	if err := l.wallets.ApplyTransfer(ctx, t); err != nil {
		transfersTotal.WithLabelValues("rejected").Inc()
		logrus.WithFields(logrus.Fields{
			"from_id": fromID,
			"to_id":   toID,
			"amount":  amount,
			"error":   err.Error(),
		}).Warn("Transfer rejected")
		return nil, err
	}
	transfersTotal.WithLabelValues("completed").Inc()
	feesCollectedBTC.Add(fee)
	logrus.WithFields(logrus.Fields{
		"transaction_id": t.ID,
		"from_id":        fromID,
		"to_id":          toID,
		"amount":         t.AmountBTC,
		"fee":            t.FeeBTC,
		"timestamp":      time.Now().Format(time.RFC3339),
	}).Info("Transfer completed")
	return t, nil
}

// WalletTransactions returns one page of the wallet's history plus the total
// count, verifying the wallet exists first
func (l *Ledger) WalletTransactions(ctx context.Context, walletID uuid.UUID, offset, limit int) ([]domain.Transaction, int64, error) {
	if _, err := l.wallets.GetWallet(ctx, walletID); err != nil {
		return nil, 0, err
	}
	return l.txs.TouchingWallet(ctx, walletID, offset, limit)
}

// UserTransactions returns every transaction touching any wallet of the user
func (l *Ledger) UserTransactions(ctx context.Context, userID uuid.UUID) ([]domain.Transaction, error) {
	if _, err := l.users.GetUser(ctx, userID); err != nil {
		return nil, err
	}
	return l.txs.ForOwner(ctx, userID)
}
