package ledger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"btcwallet/internal/domain"
	"btcwallet/internal/store"
)

const testAdminKey = "super-secret-admin-key"

func TestStatisticsForbiddenWithoutAdminKey(t *testing.T) {
	mem := store.NewMemoryStore()
	reader := NewStatisticsReader(testAdminKey, mem)

	_, err := reader.Read(context.Background(), "not-the-admin-key")
	require.ErrorIs(t, err, domain.ErrForbidden)

	_, err = reader.Read(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

// An unset admin key must close the endpoint entirely, not open it
func TestStatisticsUnconfiguredKeyDeniesEveryone(t *testing.T) {
	mem := store.NewMemoryStore()
	reader := NewStatisticsReader("", mem)

	_, err := reader.Read(context.Background(), "")
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestStatisticsEmptyLog(t *testing.T) {
	mem := store.NewMemoryStore()
	reader := NewStatisticsReader(testAdminKey, mem)

	stats, err := reader.Read(context.Background(), testAdminKey)
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.NumberOfTransactions)
	assert.Equal(t, 0.0, stats.BitcoinProfit)
}

func TestStatisticsAfterTransfers(t *testing.T) {
	l, mem := newTestLedger(t)
	ctx := context.Background()
	alice := registerUser(t, mem, "alice@example.com")
	bob := registerUser(t, mem, "bob@example.com")
	a, _ := l.CreateWallet(ctx, alice)
	b, _ := l.CreateWallet(ctx, bob)

	_, err := l.Transfer(ctx, a.ID, b.ID, 0.2)
	require.NoError(t, err)

	reader := NewStatisticsReader(testAdminKey, mem)
	stats, err := reader.Read(ctx, testAdminKey)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.NumberOfTransactions)
	assert.InDelta(t, 0.003, stats.BitcoinProfit, 1e-9)

	// A second, same-owner transfer adds a row but no profit
	a2, _ := l.CreateWallet(ctx, alice)
	_, err = l.Transfer(ctx, a.ID, a2.ID, 0.1)
	require.NoError(t, err)

	stats, err = reader.Read(ctx, testAdminKey)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.NumberOfTransactions)
	assert.InDelta(t, 0.003, stats.BitcoinProfit, 1e-9)
}
