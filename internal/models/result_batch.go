package models

import "time"

// ResultStatus captures the approval state of a course result batch.
type ResultStatus string

const (
	ResultStatusPending  ResultStatus = "Pending"
	ResultStatusApproved ResultStatus = "Approved"
	ResultStatusRejected ResultStatus = "Rejected"
	ResultStatusReleased ResultStatus = "Released"
)

// ResultBatchKey identifies the grades of one course in one session/semester.
type ResultBatchKey struct {
	CourseID string `json:"courseId"`
	Session  string `json:"session"`
	Semester string `json:"semester"`
}

// ResultBatch is approved, rejected or released as a unit. The stamp fields are
// only populated for the state that owns them.
type ResultBatch struct {
	ID              string       `db:"id" json:"id"`
	CourseID        string       `db:"course_id" json:"courseId"`
	Session         string       `db:"session" json:"session"`
	Semester        string       `db:"semester" json:"semester"`
	Status          ResultStatus `db:"status" json:"status"`
	ApprovedBy      *string      `db:"approved_by" json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time   `db:"approved_at" json:"approvedAt,omitempty"`
	ReleasedAt      *time.Time   `db:"released_at" json:"releasedAt,omitempty"`
	RejectedAt      *time.Time   `db:"rejected_at" json:"rejectedAt,omitempty"`
	RejectionReason *string      `db:"rejection_reason" json:"rejectionReason,omitempty"`
	CreatedAt       time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time    `db:"updated_at" json:"updatedAt"`
}

// Key returns the composite identifier of the batch.
func (b ResultBatch) Key() ResultBatchKey {
	return ResultBatchKey{CourseID: b.CourseID, Session: b.Session, Semester: b.Semester}
}

// ResultBatchFilter constrains batch listings.
type ResultBatchFilter struct {
	Status   []ResultStatus
	CourseID string
	Session  string
	Semester string
	Limit    int
	Offset   int
}
