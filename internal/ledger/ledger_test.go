package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btcwallet/internal/domain"
	"btcwallet/internal/store"
)

func newTestLedger(t *testing.T) (*Ledger, *store.MemoryStore) {
	t.Helper()
	mem := store.NewMemoryStore()
	l := New(mem, mem, mem, Config{
		FeeRate:            0.015,
		WalletLimit:        3,
		StartingBalanceBTC: 1.0,
	})
	return l, mem
}

func registerUser(t *testing.T, mem *store.MemoryStore, email string) uuid.UUID {
	t.Helper()
	user := domain.NewUser(email)
	require.NoError(t, mem.AddUser(context.Background(), user))
	return user.ID
}

func TestCreateWalletStartingBalance(t *testing.T) {
	l, mem := newTestLedger(t)
	owner := registerUser(t, mem, "alice@example.com")

	wallet, err := l.CreateWallet(context.Background(), owner)
	require.NoError(t, err)
	assert.Equal(t, owner, wallet.OwnerID)
	assert.Equal(t, 1.0, wallet.BalanceBTC)

	stored, err := l.GetWallet(context.Background(), wallet.ID)
	require.NoError(t, err)
	assert.Equal(t, wallet.ID, stored.ID)
}

func TestCreateWalletOwnerLimit(t *testing.T) {
	l, mem := newTestLedger(t)
	owner := registerUser(t, mem, "alice@example.com")

	for i := 0; i < 3; i++ {
		_, err := l.CreateWallet(context.Background(), owner)
		require.NoError(t, err, "wallet %d should be under the cap", i+1)
	}

	_, err := l.CreateWallet(context.Background(), owner)
	var capErr *domain.WalletLimitError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, owner, capErr.OwnerID)
	assert.Equal(t, 3, capErr.Limit)
}

func TestCreateWalletUnknownOwner(t *testing.T) {
	l, _ := newTestLedger(t)

	missing := uuid.New()
	_, err := l.CreateWallet(context.Background(), missing)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "user", notFound.Kind)
	assert.Equal(t, missing, notFound.ID)
}

func TestTransferCrossOwner(t *testing.T) {
	l, mem := newTestLedger(t)
	ctx := context.Background()
	alice := registerUser(t, mem, "alice@example.com")
	bob := registerUser(t, mem, "bob@example.com")
	from, err := l.CreateWallet(ctx, alice)
	require.NoError(t, err)
	to, err := l.CreateWallet(ctx, bob)
	require.NoError(t, err)

	tx, err := l.Transfer(ctx, from.ID, to.ID, 0.2)
	require.NoError(t, err)

	// Fee is carved out of the sent amount: sender loses 0.2, recipient
	// receives 0.197, platform keeps 0.003
	assert.InDelta(t, 0.197, tx.AmountBTC, 1e-9)
	assert.InDelta(t, 0.003, tx.FeeBTC, 1e-9)
	assert.InDelta(t, 0.2, tx.Debited(), 1e-9)

	sender, err := l.GetWallet(ctx, from.ID)
	require.NoError(t, err)
	recipient, err := l.GetWallet(ctx, to.ID)
	require.NoError(t, err)
	assert.InDelta(t, 0.8, sender.BalanceBTC, 1e-9)
	assert.InDelta(t, 1.197, recipient.BalanceBTC, 1e-9)

	count, feeSum, err := mem.Aggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
	assert.InDelta(t, 0.003, feeSum, 1e-9)
}

func TestTransferSameOwnerNoFee(t *testing.T) {
	l, mem := newTestLedger(t)
	ctx := context.Background()
	alice := registerUser(t, mem, "alice@example.com")
	from, err := l.CreateWallet(ctx, alice)
	require.NoError(t, err)
	to, err := l.CreateWallet(ctx, alice)
	require.NoError(t, err)

	tx, err := l.Transfer(ctx, from.ID, to.ID, 0.4)
	require.NoError(t, err)
	assert.Equal(t, 0.0, tx.FeeBTC)
	assert.InDelta(t, 0.4, tx.AmountBTC, 1e-9)

	sender, _ := l.GetWallet(ctx, from.ID)
	recipient, _ := l.GetWallet(ctx, to.ID)
	assert.InDelta(t, 0.6, sender.BalanceBTC, 1e-9)
	assert.InDelta(t, 1.4, recipient.BalanceBTC, 1e-9)
}

func TestTransferSelfRejectedBeforeAnyMutation(t *testing.T) {
	l, mem := newTestLedger(t)
	ctx := context.Background()
	alice := registerUser(t, mem, "alice@example.com")
	wallet, err := l.CreateWallet(ctx, alice)
	require.NoError(t, err)

	_, err = l.Transfer(ctx, wallet.ID, wallet.ID, 0.1)
	var selfErr *domain.SelfTransferError
	require.ErrorAs(t, err, &selfErr)
	assert.Equal(t, wallet.ID, selfErr.WalletID)

	// Neither the balance nor the log moved
	after, _ := l.GetWallet(ctx, wallet.ID)
	assert.Equal(t, 1.0, after.BalanceBTC)
	count, feeSum, err := mem.Aggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	assert.Equal(t, 0.0, feeSum)
}

func TestTransferInsufficientFunds(t *testing.T) {
	l, mem := newTestLedger(t)
	ctx := context.Background()
	alice := registerUser(t, mem, "alice@example.com")
	bob := registerUser(t, mem, "bob@example.com")
	from, _ := l.CreateWallet(ctx, alice)
	to, _ := l.CreateWallet(ctx, bob)

	_, err := l.Transfer(ctx, from.ID, to.ID, 1.5)
	require.ErrorIs(t, err, domain.ErrInsufficientFunds)

	sender, _ := l.GetWallet(ctx, from.ID)
	recipient, _ := l.GetWallet(ctx, to.ID)
	assert.Equal(t, 1.0, sender.BalanceBTC)
	assert.Equal(t, 1.0, recipient.BalanceBTC)
	count, _, _ := mem.Aggregate(ctx)
	assert.Equal(t, int64(0), count)
}

func TestTransferMissingWalletNamesIt(t *testing.T) {
	l, mem := newTestLedger(t)
	ctx := context.Background()
	alice := registerUser(t, mem, "alice@example.com")
	from, _ := l.CreateWallet(ctx, alice)

	missing := uuid.New()
	_, err := l.Transfer(ctx, from.ID, missing, 0.1)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "wallet", notFound.Kind)
	assert.Equal(t, missing, notFound.ID)
}

// Two concurrent transfers that together overdraw the wallet must serialize:
// exactly one succeeds, and the balance never goes negative.
func TestConcurrentTransfersSerialize(t *testing.T) {
	l, mem := newTestLedger(t)
	ctx := context.Background()
	alice := registerUser(t, mem, "alice@example.com")
	bob := registerUser(t, mem, "bob@example.com")
	from, _ := l.CreateWallet(ctx, alice)
	to, _ := l.CreateWallet(ctx, bob)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = l.Transfer(ctx, from.ID, to.ID, 0.7)
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			require.ErrorIs(t, err, domain.ErrInsufficientFunds)
			failures++
		}
	}
	assert.Equal(t, 1, failures, "exactly one of the two transfers must fail")

	sender, _ := l.GetWallet(ctx, from.ID)
	assert.InDelta(t, 0.3, sender.BalanceBTC, 1e-9)
	assert.GreaterOrEqual(t, sender.BalanceBTC, 0.0)
	count, _, _ := mem.Aggregate(ctx)
	assert.Equal(t, int64(1), count)
}

func TestWalletOwnerMatches(t *testing.T) {
	l, mem := newTestLedger(t)
	ctx := context.Background()
	alice := registerUser(t, mem, "alice@example.com")
	bob := registerUser(t, mem, "bob@example.com")
	wallet, _ := l.CreateWallet(ctx, alice)

	require.NoError(t, l.WalletOwnerMatches(ctx, alice, wallet.ID))

	err := l.WalletOwnerMatches(ctx, bob, wallet.ID)
	var wrongOwner *domain.WrongOwnerError
	require.ErrorAs(t, err, &wrongOwner)
	assert.Equal(t, bob, wrongOwner.OwnerID)
	assert.Equal(t, wallet.ID, wrongOwner.WalletID)

	var notFound *domain.NotFoundError
	require.ErrorAs(t, l.WalletOwnerMatches(ctx, alice, uuid.New()), &notFound)
}

func TestSameOwner(t *testing.T) {
	l, mem := newTestLedger(t)
	ctx := context.Background()
	alice := registerUser(t, mem, "alice@example.com")
	bob := registerUser(t, mem, "bob@example.com")
	a1, _ := l.CreateWallet(ctx, alice)
	a2, _ := l.CreateWallet(ctx, alice)
	b1, _ := l.CreateWallet(ctx, bob)

	same, err := l.SameOwner(ctx, a1.ID, a2.ID)
	require.NoError(t, err)
	assert.True(t, same)

	same, err = l.SameOwner(ctx, a1.ID, b1.ID)
	require.NoError(t, err)
	assert.False(t, same)

	missing := uuid.New()
	_, err = l.SameOwner(ctx, a1.ID, missing)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, missing, notFound.ID)
}

func TestWalletTransactionsBothDirections(t *testing.T) {
	l, mem := newTestLedger(t)
	ctx := context.Background()
	alice := registerUser(t, mem, "alice@example.com")
	bob := registerUser(t, mem, "bob@example.com")
	a, _ := l.CreateWallet(ctx, alice)
	b, _ := l.CreateWallet(ctx, bob)

	_, err := l.Transfer(ctx, a.ID, b.ID, 0.1)
	require.NoError(t, err)
	_, err = l.Transfer(ctx, b.ID, a.ID, 0.05)
	require.NoError(t, err)

	txs, total, err := l.WalletTransactions(ctx, a.ID, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, txs, 2)
	assert.Equal(t, a.ID, txs[0].FromID)
	assert.Equal(t, a.ID, txs[1].ToID)

	// Unknown wallet is an error, empty history is not
	_, _, err = l.WalletTransactions(ctx, uuid.New(), 0, 20)
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
}

func TestWalletTransactionsPagination(t *testing.T) {
	l, mem := newTestLedger(t)
	ctx := context.Background()
	alice := registerUser(t, mem, "alice@example.com")
	bob := registerUser(t, mem, "bob@example.com")
	a, _ := l.CreateWallet(ctx, alice)
	b, _ := l.CreateWallet(ctx, bob)

	for i := 0; i < 5; i++ {
		_, err := l.Transfer(ctx, a.ID, b.ID, 0.01)
		require.NoError(t, err)
	}

	page, total, err := l.WalletTransactions(ctx, a.ID, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 2)

	last, _, err := l.WalletTransactions(ctx, a.ID, 4, 2)
	require.NoError(t, err)
	assert.Len(t, last, 1)
}

func TestUserTransactions(t *testing.T) {
	l, mem := newTestLedger(t)
	ctx := context.Background()
	alice := registerUser(t, mem, "alice@example.com")
	bob := registerUser(t, mem, "bob@example.com")
	carol := registerUser(t, mem, "carol@example.com")
	a, _ := l.CreateWallet(ctx, alice)
	b, _ := l.CreateWallet(ctx, bob)
	cw, _ := l.CreateWallet(ctx, carol)

	_, err := l.Transfer(ctx, a.ID, b.ID, 0.1)
	require.NoError(t, err)
	_, err = l.Transfer(ctx, b.ID, cw.ID, 0.1)
	require.NoError(t, err)

	aliceTxs, err := l.UserTransactions(ctx, alice)
	require.NoError(t, err)
	assert.Len(t, aliceTxs, 1)

	bobTxs, err := l.UserTransactions(ctx, bob)
	require.NoError(t, err)
	assert.Len(t, bobTxs, 2)

	_, err = l.UserTransactions(ctx, uuid.New())
	var notFound *domain.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "user", notFound.Kind)
}

func TestBalanceNeverNegative(t *testing.T) {
	l, mem := newTestLedger(t)
	ctx := context.Background()
	alice := registerUser(t, mem, "alice@example.com")
	bob := registerUser(t, mem, "bob@example.com")
	a, _ := l.CreateWallet(ctx, alice)
	b, _ := l.CreateWallet(ctx, bob)

	// Drain in chunks; failed attempts must not dip the balance below zero
	for i := 0; i < 10; i++ {
		_, err := l.Transfer(ctx, a.ID, b.ID, 0.3)
		if err != nil {
			require.ErrorIs(t, err, domain.ErrInsufficientFunds)
		}
		w, getErr := l.GetWallet(ctx, a.ID)
		require.NoError(t, getErr)
		assert.GreaterOrEqual(t, w.BalanceBTC, 0.0)
	}

	if !errors.Is(mustTransferErr(l, ctx, a.ID, b.ID, 1.0), domain.ErrInsufficientFunds) {
		t.Fatal("draining transfer should be rejected")
	}
}

func mustTransferErr(l *Ledger, ctx context.Context, from, to uuid.UUID, amount float64) error {
	_, err := l.Transfer(ctx, from, to, amount)
	return err
}
