package domain

// Statistics is derived from the transaction log on demand, never stored.
type Statistics struct {
	NumberOfTransactions int64   `json:"number_of_transactions"` // Count of all transactions
	BitcoinProfit        float64 `json:"bitcoin_profit"`         // Sum of all collected fees
}
