package models

import "time"

// StudentStatus enumerates enrolment states of a student.
type StudentStatus string

const (
	StudentStatusActive    StudentStatus = "ACTIVE"
	StudentStatusInactive  StudentStatus = "INACTIVE"
	StudentStatusGraduated StudentStatus = "GRADUATED"
	StudentStatusWithdrawn StudentStatus = "WITHDRAWN"
	StudentStatusSuspended StudentStatus = "SUSPENDED"
	StudentStatusDeferred  StudentStatus = "DEFERRED"
)

// Student is created exactly once per applicant on migration. ApplicantID is a
// lookup key backed by a unique index, not an ownership relation.
type Student struct {
	ID                 string        `db:"id" json:"id"`
	ApplicantID        string        `db:"applicant_id" json:"applicantId"`
	ProgrammeID        string        `db:"programme_id" json:"programmeId"`
	MatricNumber       string        `db:"matric_number" json:"matricNumber"`
	RegistrationNumber string        `db:"registration_number" json:"registrationNumber"`
	Status             StudentStatus `db:"status" json:"status"`
	GraduatedAt        *time.Time    `db:"graduated_at" json:"graduatedAt,omitempty"`
	CreatedAt          time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt          time.Time     `db:"updated_at" json:"updatedAt"`
}

// StudentIdentifiers carries freshly allocated matric and registration numbers.
type StudentIdentifiers struct {
	MatricNumber       string
	RegistrationNumber string
}
