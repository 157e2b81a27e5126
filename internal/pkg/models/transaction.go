package models

import (
	"time"
)

// TransactionType classifies the direction of a financial event
type TransactionType string

const (
	TransactionTypeIncome   TransactionType = "income"
	TransactionTypeExpense  TransactionType = "expense"
	TransactionTypeTransfer TransactionType = "transfer"
)

// ValidTransactionType reports whether t is one of the known types
func ValidTransactionType(t TransactionType) bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense || t == TransactionTypeTransfer
}

// MinConfidence is the confirmation threshold: candidates at or below
// this value are never shown to the user.
const MinConfidence = 0.6

// ParsedTransaction is an unconfirmed transaction candidate extracted
// from a chat message. It lives in the pending store until the user
// confirms, cancels, or the entry expires.
type ParsedTransaction struct {
	TempID       string          `json:"temp_id"`
	ContextID    string          `json:"context_id,omitempty"`
	Amount       float64         `json:"amount"`
	Currency     string          `json:"currency"`
	Type         TransactionType `json:"type"`
	Description  string          `json:"description"`
	Category     string          `json:"category,omitempty"`
	MerchantName string          `json:"merchant_name,omitempty"`
	Confidence   float64         `json:"confidence"`
	Date         *time.Time      `json:"date,omitempty"`

	// Conversion provenance, populated once currency conversion has
	// been attempted. Rate is 1.0 when no conversion occurred.
	OriginalAmount   float64 `json:"original_amount,omitempty"`
	OriginalCurrency string  `json:"original_currency,omitempty"`
	ExchangeRate     float64 `json:"exchange_rate,omitempty"`

	// NeedsReview marks placeholder candidates produced when vision
	// extraction failed and the user must correct the values manually.
	NeedsReview bool `json:"needs_review,omitempty"`
}

// PendingBatch groups candidates extracted from a single message.
// Confirmed or cancelled as a unit, persisted item by item.
type PendingBatch struct {
	BatchID    string              `json:"batch_id"`
	ChatID     int64               `json:"chat_id"`
	UserID     string              `json:"user_id"`
	ContextID  string              `json:"context_id"`
	Candidates []ParsedTransaction `json:"candidates"`
	CreatedAt  time.Time           `json:"created_at"`
}

// Transaction represents a confirmed, durable transaction record
type Transaction struct {
	ID           string          `json:"id" db:"id"`
	ContextID    string          `json:"context_id" db:"context_id"`
	UserID       string          `json:"user_id" db:"user_id"`
	Amount       float64         `json:"amount" db:"amount"`
	Currency     string          `json:"currency" db:"currency"`
	Type         TransactionType `json:"type" db:"type"`
	Description  string          `json:"description" db:"description"`
	Category     string          `json:"category" db:"category"`
	MerchantName string          `json:"merchant_name" db:"merchant_name"`
	Date         time.Time       `json:"date" db:"date"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
}

// ConversionResult carries a converted amount with its provenance
type ConversionResult struct {
	ConvertedAmount  float64 `json:"converted_amount"`
	ExchangeRate     float64 `json:"exchange_rate"`
	OriginalAmount   float64 `json:"original_amount"`
	OriginalCurrency string  `json:"original_currency"`
}
