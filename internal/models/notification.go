package models

import "time"

// NotificationKind classifies side-effect notifications emitted after transitions.
type NotificationKind string

const (
	NotificationAdmissionInvite   NotificationKind = "ADMISSION_INVITE"
	NotificationApplicantStatus   NotificationKind = "APPLICANT_STATUS"
	NotificationStudentMigrated   NotificationKind = "STUDENT_MIGRATED"
	NotificationStudentGraduated  NotificationKind = "STUDENT_GRADUATED"
	NotificationResultStatus      NotificationKind = "RESULT_STATUS"
	NotificationPaymentStatus     NotificationKind = "PAYMENT_STATUS"
	NotificationAssignmentChanged NotificationKind = "ASSIGNMENT_CHANGED"
)

// Notification is the payload fanned out to notification channels.
type Notification struct {
	Kind       NotificationKind       `json:"kind"`
	TargetID   string                 `json:"targetId"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	RequestID  string                 `json:"requestId,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}
