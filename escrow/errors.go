package escrow

import "errors"

// Every rejected action maps to one of these, the transport layer renders
// distinct guidance per reason.
var (
	ErrInvalidCurrency      = errors.New("unsupported currency")
	ErrNoActiveTransaction  = errors.New("no active transaction")
	ErrAddressAlreadySet    = errors.New("address already set")
	ErrInvalidAddressFormat = errors.New("invalid address format")
	ErrNotFunded            = errors.New("transaction not funded")
	ErrNotCompleted         = errors.New("transaction not completed")
	ErrNotAwaitingFunds     = errors.New("transaction not awaiting funds")
)
