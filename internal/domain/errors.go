package domain

import "errors"

// Sentinel errors for the core. The gateway maps these to HTTP statuses with
// errors.Is; everything else is a programming error and surfaces as a 500.
var (
	ErrInvalidArgument   = errors.New("invalid argument")
	ErrNotFound          = errors.New("not found")
	ErrUnavailable       = errors.New("unavailable")
	ErrExhausted         = errors.New("exhausted")
	ErrAlreadyClaimed    = errors.New("already claimed")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
