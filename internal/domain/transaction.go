package domain

import "github.com/google/uuid"

// Transaction Model. Rows are append-only: a transaction is created exactly
// once per successful transfer and never mutated afterwards.
type Transaction struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"transaction_id"` // Primary key (UUIDv4)
	FromID    uuid.UUID `gorm:"type:char(36);index;not null" json:"from_id"`    // Sender wallet
	ToID      uuid.UUID `gorm:"type:char(36);index;not null" json:"to_id"`      // Recipient wallet
	AmountBTC float64   `gorm:"not null" json:"bitcoin_amount"`                 // Amount credited to the recipient
	FeeBTC    float64   `gorm:"not null" json:"bitcoin_fee"`                    // Amount retained as platform fee
	CreatedAt int64     `gorm:"autoCreateTime:milli" json:"-"`                  // Timestamp of creation in milliseconds
}

// Debited is the total amount removed from the sender's wallet.
// AmountBTC + FeeBTC always equals the amount the caller asked to send.
func (t *Transaction) Debited() float64 {
	return t.AmountBTC + t.FeeBTC
}
