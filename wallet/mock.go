// Package wallet is the mocked crypto side of the bot: format-only address
// checks, a flat fee table and fabricated settlement ids. No chain access.
package wallet

import (
	"regexp"

	"github.com/google/uuid"

	"escrowbot/store"
)

var addressRe = map[store.Currency]*regexp.Regexp{
	store.BTC: regexp.MustCompile(`^[13][a-km-zA-HJ-NP-Z1-9]{25,34}$`),
	store.LTC: regexp.MustCompile(`^[LM3][a-km-zA-HJ-NP-Z1-9]{26,33}$`),
}

// Mock implements escrow.Validator with regex checks only.
type Mock struct{}

func (Mock) ValidateAddress(currency store.Currency, address string) bool {
	re, ok := addressRe[currency]
	return ok && re.MatchString(address)
}

// Fee returns the network fee charged on top of the escrowed amount.
func (Mock) Fee(currency store.Currency) float64 {
	if currency == store.BTC {
		return 0.00002256
	}
	return 0
}

// Total returns amount plus the currency's fee.
func (m Mock) Total(amount float64, currency store.Currency) float64 {
	return amount + m.Fee(currency)
}

// NewSettlementID fabricates a transaction id for payout and refund receipts.
func NewSettlementID() string {
	return uuid.NewString()
}
