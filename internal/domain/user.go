package domain

import "github.com/google/uuid"

// User Model
type User struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`         // Primary key (UUIDv4)
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"` // Unique registration email
	CreatedAt int64     `gorm:"autoCreateTime:milli" json:"-"`              // Timestamp of creation in milliseconds
}

// NewUser builds a registered user with a freshly generated identifier
func NewUser(email string) *User {
	return &User{
		ID:    uuid.New(), // Generated identifier
		Email: email,      // Registration email
	}
}
