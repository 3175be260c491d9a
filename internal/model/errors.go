package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Identity errors
	ErrInvalidAccountID = errors.New("account id is required")
	ErrInvalidEmail     = errors.New("account id must be a valid email address")
	ErrIdentityNotFound = errors.New("identity not found")

	// Room errors
	ErrRoomNotFound       = errors.New("room not found")
	ErrAlreadyInRoom      = errors.New("identity already has a seat in this room")
	ErrInvalidPlayerIndex = errors.New("player index out of range")

	// Credit errors
	ErrInvalidAmount     = errors.New("credit amount must be a positive multiple of the loan step")
	ErrNoCreditData      = errors.New("no credit has been issued in this room")
	ErrNoActiveCredit    = errors.New("player has no active credit")
	ErrOverpayment       = errors.New("payoff amount exceeds outstanding credit")
	ErrInsufficientFunds = errors.New("insufficient balance")

	// Transfer errors
	ErrInvalidTransfer = errors.New("invalid transfer")
)

// CreditLimitError is returned when a loan draw would push a player past
// the per-player cap. Available carries the remaining headroom so callers
// can present it.
type CreditLimitError struct {
	Requested int
	Available int
}

func (e *CreditLimitError) Error() string {
	return fmt.Sprintf("credit limit exceeded: requested %d, %d available", e.Requested, e.Available)
}
