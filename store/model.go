package store

import "time"

// Status is the closed set of transaction lifecycle states. Transitions
// between them are owned by the escrow service, the store never changes
// a status on its own.
type Status string

const (
	StatusCreated    Status = "created"
	StatusBuyerSet   Status = "buyer_set"
	StatusSellerSet  Status = "seller_set"
	StatusFunded     Status = "funded"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusRefunded   Status = "refunded"
)

// Currency is a supported escrow currency code.
type Currency string

const (
	BTC Currency = "BTC"
	LTC Currency = "LTC"
)

// Supported reports whether the currency can be escrowed.
func (c Currency) Supported() bool {
	switch c {
	case BTC, LTC:
		return true
	}
	return false
}

// Transaction is one escrow deal. A user owns at most one at a time,
// keyed by UserID. Addresses are set at most once each.
type Transaction struct {
	ID            string     `json:"id"`
	UserID        int64      `json:"user_id"`
	Currency      Currency   `json:"currency"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	BuyerAddress  string     `json:"buyer_address,omitempty"`
	SellerAddress string     `json:"seller_address,omitempty"`
	Amount        float64    `json:"amount,omitempty"`
	FundedAt      *time.Time `json:"funded_at,omitempty"`
}

// Review is feedback left after a completed transaction, never mutated.
type Review struct {
	TransactionID string    `json:"transaction_id"`
	UserID        int64     `json:"user_id"`
	Message       string    `json:"message"`
	Rating        int       `json:"rating,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Report is a user-filed issue, resolved by moderation out of band.
type Report struct {
	UserID    int64     `json:"user_id"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"created_at"`
	Resolved  bool      `json:"resolved"`
}
