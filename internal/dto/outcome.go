package dto

import "github.com/noah-isme/academic-portal-api/internal/workflow"

// TransitionOutcome is the typed result every workflow operation returns.
// Business rule violations are reported here rather than as errors.
type TransitionOutcome struct {
	Success bool             `json:"success"`
	Outcome workflow.Outcome `json:"outcome"`
	Message string           `json:"message,omitempty"`
}

// Succeeded builds an allowed outcome.
func Succeeded(message string) TransitionOutcome {
	return TransitionOutcome{Success: true, Outcome: workflow.OutcomeAllowed, Message: message}
}

// FromGuard converts a failed guard decision into an outcome.
func FromGuard(res workflow.GuardResult) TransitionOutcome {
	return TransitionOutcome{Success: res.OK, Outcome: res.Outcome, Message: res.Reason}
}
