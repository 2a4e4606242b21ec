package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Sentinel errors for conditions that carry no extra context
var (
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrForbidden         = errors.New("admin access required")
	ErrQuoteUnavailable  = errors.New("price quote unavailable")
)

// NotFoundError reports a missing entity, naming its kind and identifier
type NotFoundError struct {
	Kind string    // "user", "wallet" or "transaction"
	ID   uuid.UUID // Identifier that failed to resolve
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s with id<%s> does not exist", e.Kind, e.ID)
}

// NewUserNotFound reports a missing user
func NewUserNotFound(id uuid.UUID) error {
	return &NotFoundError{Kind: "user", ID: id}
}

// NewWalletNotFound reports a missing wallet
func NewWalletNotFound(id uuid.UUID) error {
	return &NotFoundError{Kind: "wallet", ID: id}
}

// WrongOwnerError reports an access attempt on a wallet the user does not own
type WrongOwnerError struct {
	OwnerID  uuid.UUID // Acting user
	WalletID uuid.UUID // Wallet they tried to use
}

func (e *WrongOwnerError) Error() string {
	return fmt.Sprintf("wallet with id<%s> does not belong to user with id<%s>", e.WalletID, e.OwnerID)
}

// WalletLimitError reports an owner already holding the maximum number of wallets
type WalletLimitError struct {
	OwnerID uuid.UUID // Owner at the cap
	Limit   int       // Configured cap
}

func (e *WalletLimitError) Error() string {
	return fmt.Sprintf("user with id<%s> already has %d wallets", e.OwnerID, e.Limit)
}

// SelfTransferError reports a transfer whose endpoints are the same wallet
type SelfTransferError struct {
	WalletID uuid.UUID // The wallet named on both sides
}

func (e *SelfTransferError) Error() string {
	return fmt.Sprintf("wallet with id<%s> cannot transfer to itself", e.WalletID)
}
