package domain

import "github.com/google/uuid"

// Wallet Model
type Wallet struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey" json:"wallet_id"`    // Primary key (UUIDv4)
	OwnerID    uuid.UUID `gorm:"type:char(36);index;not null" json:"owner_id"` // Foreign key to User
	BalanceBTC float64   `gorm:"not null" json:"balance_btc"`                  // Balance in bitcoin, never negative
	CreatedAt  int64     `gorm:"autoCreateTime:milli" json:"-"`                // Timestamp of creation in milliseconds
}

// NewWallet builds a wallet for the given owner with the configured starting balance
func NewWallet(ownerID uuid.UUID, startingBalance float64) *Wallet {
	return &Wallet{
		ID:         uuid.New(),      // Generated identifier
		OwnerID:    ownerID,         // Owning user
		BalanceBTC: startingBalance, // Starting balance
	}
}
