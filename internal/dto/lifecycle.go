package dto

import "github.com/noah-isme/academic-portal-api/internal/models"

// LifecycleRequest identifies the applicant whose lifecycle is advanced.
type LifecycleRequest struct {
	ApplicantID string `json:"applicantId" validate:"required"`
}

// StudentView is the subset of a student returned by lifecycle endpoints.
type StudentView struct {
	ID                 string               `json:"id"`
	MatricNumber       string               `json:"matricNumber"`
	RegistrationNumber string               `json:"registrationNumber"`
	Status             models.StudentStatus `json:"status"`
}

// NewStudentView projects a student; nil stays nil.
func NewStudentView(s *models.Student) *StudentView {
	if s == nil {
		return nil
	}
	return &StudentView{
		ID:                 s.ID,
		MatricNumber:       s.MatricNumber,
		RegistrationNumber: s.RegistrationNumber,
		Status:             s.Status,
	}
}

// LifecycleOutcome carries the student created, graduated or already present.
type LifecycleOutcome struct {
	TransitionOutcome
	Student *models.Student `json:"student,omitempty"`
}
