package dto

import "time"

// InviteRequest schedules an applicant for the admission exercise.
type InviteRequest struct {
	Venue       string    `json:"venue" validate:"required,max=200"`
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Note        string    `json:"note" validate:"omitempty,max=1000"`
}
