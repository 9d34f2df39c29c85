package dto

import "github.com/noah-isme/academic-portal-api/internal/models"

// PaymentActionRequest drives GENERATE, APPROVE and PAY. PaymentIDs is ignored
// for GENERATE, which instead reads the eligible payables for Session/Semester.
type PaymentActionRequest struct {
	Action     string   `json:"action" validate:"required"`
	PaymentIDs []string `json:"paymentIds" validate:"omitempty,dive,required"`
	Session    string   `json:"session"`
	Semester   string   `json:"semester"`
	Reference  string   `json:"reference" validate:"omitempty,max=120"`
}

// SkippedPayment explains why an id was left untouched.
type SkippedPayment struct {
	ID     string               `json:"id"`
	Status models.PaymentStatus `json:"status,omitempty"`
	Reason string               `json:"reason"`
}

// PaymentActionOutcome reports which ids moved and which were skipped.
type PaymentActionOutcome struct {
	TransitionOutcome
	Transitioned []string         `json:"transitioned"`
	Skipped      []SkippedPayment `json:"skipped"`
}

// PaymentQuery mirrors listing and export filters.
type PaymentQuery struct {
	Status     []models.PaymentStatus
	LecturerID string
	Session    string
	Semester   string
	Page       int
	PageSize   int
}

// ExportFile is a rendered payment schedule.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}
