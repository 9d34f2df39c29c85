package dto

import "github.com/noah-isme/academic-portal-api/internal/models"

// ResultActionRequest asks for approve, reject or release on one course batch.
type ResultActionRequest struct {
	CourseID string `json:"courseId" validate:"required"`
	Session  string `json:"session" validate:"required"`
	Semester string `json:"semester" validate:"required"`
	Action   string `json:"action" validate:"required"`
	Reason   string `json:"reason" validate:"omitempty,max=500"`
}

// ResultActionOutcome carries the batch after the action was evaluated.
type ResultActionOutcome struct {
	TransitionOutcome
	Batch *models.ResultBatch `json:"batch,omitempty"`
}

// ResultBatchQuery mirrors listing filters.
type ResultBatchQuery struct {
	Status   []models.ResultStatus
	CourseID string
	Session  string
	Semester string
	Page     int
	PageSize int
}
