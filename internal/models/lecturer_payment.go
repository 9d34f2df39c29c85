package models

import "time"

// PaymentStatus captures lecturer payment processing states.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusApproved PaymentStatus = "APPROVED"
	PaymentStatusPaid     PaymentStatus = "PAID"
)

// LecturerPayment is one payable line for a lecturer teaching a course in a session.
type LecturerPayment struct {
	ID               string        `db:"id" json:"id"`
	LecturerID       string        `db:"lecturer_id" json:"lecturerId"`
	CourseID         string        `db:"course_id" json:"courseId"`
	Session          string        `db:"session" json:"session"`
	Semester         string        `db:"semester" json:"semester"`
	Amount           int64         `db:"amount" json:"amount"`
	Status           PaymentStatus `db:"status" json:"status"`
	ApprovedBy       *string       `db:"approved_by" json:"approvedBy,omitempty"`
	ApprovedAt       *time.Time    `db:"approved_at" json:"approvedAt,omitempty"`
	PaidBy           *string       `db:"paid_by" json:"paidBy,omitempty"`
	PaidAt           *time.Time    `db:"paid_at" json:"paidAt,omitempty"`
	PaymentReference *string       `db:"payment_reference" json:"paymentReference,omitempty"`
	CreatedAt        time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time     `db:"updated_at" json:"updatedAt"`
}

// EligiblePayable is a lecturer/course/session combination that qualifies for a
// payment. Eligibility itself is decided by the eligible_lecturer_payables view.
type EligiblePayable struct {
	LecturerID string `db:"lecturer_id" json:"lecturerId"`
	CourseID   string `db:"course_id" json:"courseId"`
	Session    string `db:"session" json:"session"`
	Semester   string `db:"semester" json:"semester"`
	Amount     int64  `db:"amount" json:"amount"`
}

// PaymentFilter constrains payment listings.
type PaymentFilter struct {
	Status     []PaymentStatus
	LecturerID string
	Session    string
	Semester   string
	Limit      int
	Offset     int
}

// PaymentScheduleRow is a denormalised payment line used by schedule exports.
type PaymentScheduleRow struct {
	PaymentID    string        `db:"payment_id"`
	LecturerName string        `db:"lecturer_name"`
	StaffNumber  string        `db:"staff_number"`
	CourseCode   string        `db:"course_code"`
	Session      string        `db:"session"`
	Semester     string        `db:"semester"`
	Amount       int64         `db:"amount"`
	Status       PaymentStatus `db:"status"`
}
