package models

import (
	"time"
)

// TransactionConfirmedEvent is published after a single candidate is
// persisted
type TransactionConfirmedEvent struct {
	TransactionID string          `json:"transaction_id"`
	ContextID     string          `json:"context_id"`
	UserID        string          `json:"user_id"`
	Amount        float64         `json:"amount"`
	Currency      string          `json:"currency"`
	Type          TransactionType `json:"type"`
	Timestamp     time.Time       `json:"timestamp"`
}

// BatchConfirmedEvent is published after a batch confirm-all completes
type BatchConfirmedEvent struct {
	BatchID   string    `json:"batch_id"`
	ContextID string    `json:"context_id"`
	UserID    string    `json:"user_id"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Timestamp time.Time `json:"timestamp"`
}

// ContextCreatedEvent is published when onboarding or resolution
// creates a new context
type ContextCreatedEvent struct {
	ContextID string      `json:"context_id"`
	Name      string      `json:"name"`
	Type      ContextType `json:"type"`
	CreatedBy string      `json:"created_by"`
	Timestamp time.Time   `json:"timestamp"`
}
