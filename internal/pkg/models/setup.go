package models

import (
	"time"
)

// SetupStep is a stage of the group onboarding wizard
type SetupStep string

const (
	SetupStepType        SetupStep = "type"
	SetupStepName        SetupStep = "name"
	SetupStepPermissions SetupStep = "permissions"
	SetupStepCurrency    SetupStep = "currency"
	SetupStepComplete    SetupStep = "complete"
)

// setupOrder is the strict forward order of wizard steps
var setupOrder = []SetupStep{
	SetupStepType,
	SetupStepName,
	SetupStepPermissions,
	SetupStepCurrency,
	SetupStepComplete,
}

// PrevSetupStep returns the predecessor of step, or step itself when
// already at the first stage.
func PrevSetupStep(step SetupStep) SetupStep {
	for i, s := range setupOrder {
		if s == step && i > 0 {
			return setupOrder[i-1]
		}
	}
	return step
}

// NextSetupStep returns the successor of step, or step itself when
// already complete.
func NextSetupStep(step SetupStep) SetupStep {
	for i, s := range setupOrder {
		if s == step && i < len(setupOrder)-1 {
			return setupOrder[i+1]
		}
	}
	return step
}

// SetupSession holds the in-progress state of the onboarding wizard
// for one chat. One session exists per chat at a time; starting a new
// one replaces any prior session.
type SetupSession struct {
	ChatID    int64     `json:"chat_id"`
	ChatTitle string    `json:"chat_title"`
	UserID    string    `json:"user_id"`
	Step      SetupStep `json:"step"`

	// PendingType holds a tapped type awaiting the confirmation
	// sub-step before the wizard advances to the name stage.
	PendingType ContextType `json:"pending_type,omitempty"`

	Type        ContextType       `json:"type,omitempty"`
	Name        string            `json:"name,omitempty"`
	Permissions TransactionPolicy `json:"permissions,omitempty"`
	Currency    string            `json:"currency,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
}
