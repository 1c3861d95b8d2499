package models

import (
	"math"
	"time"
)

// Transaction is one classified mobile-money event as stored in the dataset.
// Optional fields are pointers: a nil value means the source message carried
// no such statement, which is distinct from a stated zero or empty string.
type Transaction struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	TransactionID   *string   `json:"transaction_id,omitempty"`
	Date            time.Time `gorm:"not null;index" json:"date"`
	Amount          float64   `gorm:"not null" json:"amount"`
	Fee             float64   `gorm:"not null" json:"fee"`
	Balance         *float64  `json:"balance,omitempty"`
	Category        Category  `gorm:"not null;index" json:"category"`
	RecipientName   *string   `json:"recipient_name,omitempty"`
	RecipientNumber *string   `json:"recipient_number,omitempty"`
	SenderName      *string   `json:"sender_name,omitempty"`
	SenderNumber    *string   `json:"sender_number,omitempty"`
	Message         *string   `json:"message,omitempty"`
	RawBody         string    `gorm:"type:text" json:"raw_body"`
	CreatedAt       time.Time `json:"created_at"`
}

// Draft is a Transaction before the store assigns its id and creation
// timestamp. The archive parser produces drafts; only the store turns them
// into Transactions.
type Draft struct {
	TransactionID   *string
	Date            time.Time
	Amount          float64
	Fee             float64
	Balance         *float64
	Category        Category
	RecipientName   *string
	RecipientNumber *string
	SenderName      *string
	SenderNumber    *string
	Message         *string
	RawBody         string
}

// Validate reports whether the draft carries the fields every stored
// transaction must have: a date, a known category, and a non-negative
// finite amount.
func (d Draft) Validate() bool {
	if d.Date.IsZero() {
		return false
	}
	if !d.Category.Valid() {
		return false
	}
	if !finiteNonNegative(d.Amount) || !finiteNonNegative(d.Fee) {
		return false
	}
	return true
}

func finiteNonNegative(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
