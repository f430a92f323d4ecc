// Package model defines the domain types shared by the storage layer,
// the snapshot layer, and the background worker.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMode indicates how an expense was paid.
type PaymentMode string

const (
	// PaymentModeCash represents cash payments.
	PaymentModeCash PaymentMode = "Cash"
	// PaymentModeUPI represents UPI transfers.
	PaymentModeUPI PaymentMode = "UPI"
	// PaymentModeCard represents debit/credit card payments.
	PaymentModeCard PaymentMode = "Card"
	// PaymentModeOther represents anything else.
	PaymentModeOther PaymentMode = "Other"
)

// ValidPaymentMode reports whether m is one of the known payment modes.
func ValidPaymentMode(m PaymentMode) bool {
	switch m {
	case PaymentModeCash, PaymentModeUPI, PaymentModeCard, PaymentModeOther:
		return true
	}
	return false
}

// Expense represents a single recorded expense.
type Expense struct {
	Date        time.Time       `json:"date"`
	Title       string          `json:"title"`
	PaymentMode PaymentMode     `json:"paymentMode"`
	Amount      decimal.Decimal `json:"amount"`
	ID          int64           `json:"id"`
	CategoryID  int64           `json:"categoryId"`
}

// DedupHash creates the soft duplicate-detection key used by bulk import.
// Two expenses with the same title, amount, calendar date, and category are
// treated as the same entry; this is a heuristic, not a store constraint.
func (e *Expense) DedupHash() string {
	data := fmt.Sprintf("%s|%s|%s|%d",
		e.Title,
		e.Amount.StringFixed(2),
		e.Date.Format("2006-01-02"),
		e.CategoryID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
