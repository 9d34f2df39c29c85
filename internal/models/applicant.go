package models

import "time"

// ApplicantStatus captures the admission review state of an applicant.
type ApplicantStatus string

const (
	ApplicantStatusPending         ApplicantStatus = "PENDING"
	ApplicantStatusUnderReview     ApplicantStatus = "UNDER_REVIEW"
	ApplicantStatusApproved        ApplicantStatus = "APPROVED"
	ApplicantStatusRejected        ApplicantStatus = "REJECTED"
	ApplicantStatusAwaitingPayment ApplicantStatus = "AWAITING_PAYMENT"
)

// Applicant is a prospective student who has submitted an admission application.
// Admission review happens elsewhere; this service only stamps MigratedAt.
type Applicant struct {
	ID                         string          `db:"id" json:"id"`
	FullName                   string          `db:"full_name" json:"fullName"`
	Email                      string          `db:"email" json:"email"`
	Phone                      string          `db:"phone" json:"phone"`
	ProgrammeID                string          `db:"programme_id" json:"programmeId"`
	AdmissionSessionID         string          `db:"admission_session_id" json:"admissionSessionId"`
	Status                     ApplicantStatus `db:"status" json:"status"`
	AcceptanceFeePaid          bool            `db:"acceptance_fee_paid" json:"acceptanceFeePaid"`
	AcceptancePaymentReference *string         `db:"acceptance_payment_reference" json:"acceptancePaymentReference,omitempty"`
	MigratedAt                 *time.Time      `db:"migrated_at" json:"migratedAt,omitempty"`
	CreatedAt                  time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt                  time.Time       `db:"updated_at" json:"updatedAt"`
}
