package dto

import "github.com/noah-isme/academic-portal-api/internal/models"

// AssignExaminerRequest sets or, with an empty ExaminerID, clears an examiner slot.
type AssignExaminerRequest struct {
	StudentProgrammeID string              `json:"studentProgrammeId" validate:"required"`
	ExaminerID         string              `json:"examinerId"`
	Type               models.ExaminerType `json:"type" validate:"required,oneof=internal1 internal2 external"`
}

// AssignSupervisorRequest sets or clears the supervisor slot.
type AssignSupervisorRequest struct {
	StudentProgrammeID string `json:"studentProgrammeId" validate:"required"`
	SupervisorID       string `json:"supervisorId"`
}

// AssignmentOutcome carries the programme after the slot change.
type AssignmentOutcome struct {
	TransitionOutcome
	Programme *models.StudentProgramme `json:"programme,omitempty"`
}
