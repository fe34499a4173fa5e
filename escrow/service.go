// Package escrow owns the transaction lifecycle: which actions are legal
// against a transaction in a given status and what the resulting status is.
// Financial release (payout, refund) is gated on Funded, addresses are
// settable at most once so a party can't alter agreed terms mid-deal.
package escrow

import (
	"errors"
	"fmt"
	"time"

	log "github.com/go-pkgz/lgr"
	"github.com/google/uuid"

	"escrowbot/store"
)

// Validator reports whether an address is well-formed for a currency.
// The shipped implementation is format-only, a chain-aware validator can
// replace it without touching the lifecycle rules.
type Validator interface {
	ValidateAddress(currency store.Currency, address string) bool
}

// Service applies lifecycle rules on top of a store. All mutations go
// through the store's atomic Update, so concurrent requests for the same
// user can't produce a half-applied transition.
type Service struct {
	store     store.Interface
	validator Validator
}

// NewService constructor
func NewService(s store.Interface, v Validator) *Service {
	return &Service{store: s, validator: v}
}

// CreateTransaction starts a fresh escrow deal for the user. Any prior
// transaction, in whatever state, is replaced and its record discarded.
func (s *Service) CreateTransaction(userID int64, currency store.Currency) (store.Transaction, error) {
	if !currency.Supported() {
		return store.Transaction{}, fmt.Errorf("currency %q: %w", currency, ErrInvalidCurrency)
	}

	t := store.Transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Currency:  currency,
		Status:    store.StatusCreated,
		CreatedAt: time.Now(),
	}
	if err := s.store.Create(t); err != nil {
		return store.Transaction{}, fmt.Errorf("failed to save transaction: %w", err)
	}

	log.Printf("[INFO] transaction %s created, user %d, currency %s", t.ID, userID, currency)
	return t, nil
}

// GetTransaction returns the user's current transaction if any.
func (s *Service) GetTransaction(userID int64) (store.Transaction, error) {
	t, err := s.store.Get(userID)
	return mapNotFound(t, err)
}

// SetBuyerAddress records the buyer's wallet address, once. The address has
// to pass the format check for the transaction's currency.
func (s *Service) SetBuyerAddress(userID int64, address string) (store.Transaction, error) {
	t, err := s.store.Update(userID, func(t *store.Transaction) error {
		if t.BuyerAddress != "" {
			return ErrAddressAlreadySet
		}
		if !s.validator.ValidateAddress(t.Currency, address) {
			return ErrInvalidAddressFormat
		}
		t.BuyerAddress = address
		if t.Status == store.StatusCreated {
			t.Status = store.StatusBuyerSet
		}
		return nil
	})
	return mapNotFound(t, err)
}

// SetSellerAddress records the seller's wallet address, once.
func (s *Service) SetSellerAddress(userID int64, address string) (store.Transaction, error) {
	t, err := s.store.Update(userID, func(t *store.Transaction) error {
		if t.SellerAddress != "" {
			return ErrAddressAlreadySet
		}
		if !s.validator.ValidateAddress(t.Currency, address) {
			return ErrInvalidAddressFormat
		}
		t.SellerAddress = address
		if t.Status == store.StatusCreated || t.Status == store.StatusBuyerSet {
			t.Status = store.StatusSellerSet
		}
		return nil
	})
	return mapNotFound(t, err)
}

// MarkFunded records a detected deposit and moves the transaction to
// Funded. Requires both addresses set, otherwise a later refund or payout
// would release to an empty address.
func (s *Service) MarkFunded(userID int64, amount float64) (store.Transaction, error) {
	t, err := s.store.Update(userID, func(t *store.Transaction) error {
		if t.Status != store.StatusSellerSet || t.BuyerAddress == "" {
			return ErrNotAwaitingFunds
		}
		now := time.Now()
		t.Amount = amount
		t.FundedAt = &now
		t.Status = store.StatusFunded
		return nil
	})
	if err == nil {
		log.Printf("[INFO] transaction %s funded, amount %v %s", t.ID, amount, t.Currency)
	}
	return mapNotFound(t, err)
}

// PayOutToSeller releases escrowed funds to the seller. Requires Funded.
func (s *Service) PayOutToSeller(userID int64) (store.Transaction, error) {
	t, err := s.store.Update(userID, func(t *store.Transaction) error {
		if t.Status != store.StatusFunded {
			return ErrNotFunded
		}
		t.Status = store.StatusCompleted
		return nil
	})
	if err == nil {
		log.Printf("[INFO] transaction %s paid out to seller", t.ID)
	}
	return mapNotFound(t, err)
}

// RefundToBuyer returns escrowed funds to the buyer. Requires Funded.
func (s *Service) RefundToBuyer(userID int64) (store.Transaction, error) {
	t, err := s.store.Update(userID, func(t *store.Transaction) error {
		if t.Status != store.StatusFunded {
			return ErrNotFunded
		}
		t.Status = store.StatusRefunded
		return nil
	})
	if err == nil {
		log.Printf("[INFO] transaction %s refunded to buyer", t.ID)
	}
	return mapNotFound(t, err)
}

// ResetTransaction deletes the user's transaction, no-op if absent.
func (s *Service) ResetTransaction(userID int64) error {
	if err := s.store.Reset(userID); err != nil {
		return fmt.Errorf("failed to reset transaction for user %d: %w", userID, err)
	}
	log.Printf("[INFO] transaction reset for user %d", userID)
	return nil
}

// SubmitReview appends a review for the user's completed transaction.
func (s *Service) SubmitReview(userID int64, text string) (store.Review, error) {
	t, err := s.store.Get(userID)
	if errors.Is(err, store.ErrNotFound) {
		return store.Review{}, ErrNoActiveTransaction
	}
	if err != nil {
		return store.Review{}, err
	}
	if t.Status != store.StatusCompleted {
		return store.Review{}, ErrNotCompleted
	}

	r := store.Review{
		TransactionID: t.ID,
		UserID:        userID,
		Message:       text,
		CreatedAt:     time.Now(),
	}
	if err = s.store.AddReview(r); err != nil {
		return store.Review{}, fmt.Errorf("failed to save review: %w", err)
	}
	return r, nil
}

// SubmitReport files an issue report, always accepted.
func (s *Service) SubmitReport(userID int64, text string) (store.Report, error) {
	r := store.Report{
		UserID:    userID,
		Message:   text,
		CreatedAt: time.Now(),
	}
	if err := s.store.AddReport(r); err != nil {
		return store.Report{}, fmt.Errorf("failed to save report: %w", err)
	}
	log.Printf("[WARN] report filed by user %d", userID)
	return r, nil
}

func mapNotFound(t store.Transaction, err error) (store.Transaction, error) {
	if errors.Is(err, store.ErrNotFound) {
		return store.Transaction{}, ErrNoActiveTransaction
	}
	if err != nil {
		return store.Transaction{}, err
	}
	return t, nil
}
