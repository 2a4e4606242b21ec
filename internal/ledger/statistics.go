package ledger

import (
	"context"
	"crypto/subtle"

	"btcwallet/internal/domain"
	"btcwallet/internal/store"
)

// StatisticsReader answers the admin-gated aggregate query
type StatisticsReader struct {
	adminKey string
	txs      store.TransactionStore
}

// NewStatisticsReader wires the reader with the configured admin key
func NewStatisticsReader(adminKey string, txs store.TransactionStore) *StatisticsReader {
	return &StatisticsReader{adminKey: adminKey, txs: txs}
}

// Read returns the platform totals when apiKey matches the admin key,
// domain.ErrForbidden otherwise
func (r *StatisticsReader) Read(ctx context.Context, apiKey string) (*domain.Statistics, error) {
	if r.adminKey == "" || subtle.ConstantTimeCompare([]byte(apiKey), []byte(r.adminKey)) != 1 {
		return nil, domain.ErrForbidden
	}
	count, feeSum, err := r.txs.Aggregate(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.Statistics{
		NumberOfTransactions: count,
		BitcoinProfit:        feeSum,
	}, nil
}
