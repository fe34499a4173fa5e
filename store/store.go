package store

import "errors"

// ErrNotFound returned when a user has no stored transaction.
var ErrNotFound = errors.New("transaction not found")

// Interface defines the escrow records registry. Create replaces any prior
// transaction for the same user, no archival. Update applies fn to the
// stored record atomically, fn's error aborts the mutation and is returned
// as is. Reviews and reports are append-only.
type Interface interface {
	Create(t Transaction) error
	Get(userID int64) (Transaction, error)
	Update(userID int64, fn func(t *Transaction) error) (Transaction, error)
	Reset(userID int64) error
	AddReview(r Review) error
	AddReport(r Report) error
	Close() error
}
