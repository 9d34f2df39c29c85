package models

import "time"

// AssignmentSlot names a supervision or examination role on a student programme.
type AssignmentSlot string

const (
	SlotSupervisor        AssignmentSlot = "supervisor"
	SlotInternalExaminer1 AssignmentSlot = "internalExaminer1"
	SlotInternalExaminer2 AssignmentSlot = "internalExaminer2"
	SlotExternalExaminer  AssignmentSlot = "externalExaminer"
)

// AllAssignmentSlots lists every slot in display order.
var AllAssignmentSlots = []AssignmentSlot{
	SlotSupervisor,
	SlotInternalExaminer1,
	SlotInternalExaminer2,
	SlotExternalExaminer,
}

// ExaminerType is the wire value used by the examiner assignment endpoint.
type ExaminerType string

const (
	ExaminerInternal1 ExaminerType = "internal1"
	ExaminerInternal2 ExaminerType = "internal2"
	ExaminerExternal  ExaminerType = "external"
)

// Slot maps an examiner type to its assignment slot.
func (t ExaminerType) Slot() (AssignmentSlot, bool) {
	switch t {
	case ExaminerInternal1:
		return SlotInternalExaminer1, true
	case ExaminerInternal2:
		return SlotInternalExaminer2, true
	case ExaminerExternal:
		return SlotExternalExaminer, true
	default:
		return "", false
	}
}

// Lecturer is a member of staff eligible for supervision and examination.
type Lecturer struct {
	ID          string `db:"id" json:"id"`
	StaffNumber string `db:"staff_number" json:"staffNumber"`
	FullName    string `db:"full_name" json:"fullName"`
	Email       string `db:"email" json:"email"`
	Active      bool   `db:"active" json:"active"`
}

// StudentProgramme links a student to a programme and carries the thesis
// supervision and examination slots. Reassignment overwrites; no history is kept.
type StudentProgramme struct {
	ID                  string    `db:"id" json:"id"`
	StudentID           string    `db:"student_id" json:"studentId"`
	ProgrammeID         string    `db:"programme_id" json:"programmeId"`
	SupervisorID        *string   `db:"supervisor_id" json:"supervisorId,omitempty"`
	InternalExaminer1ID *string   `db:"internal_examiner1_id" json:"internalExaminer1Id,omitempty"`
	InternalExaminer2ID *string   `db:"internal_examiner2_id" json:"internalExaminer2Id,omitempty"`
	ExternalExaminerID  *string   `db:"external_examiner_id" json:"externalExaminerId,omitempty"`
	UpdatedAt           time.Time `db:"updated_at" json:"updatedAt"`
}

// SlotHolder returns the lecturer currently assigned to slot, if any.
func (p StudentProgramme) SlotHolder(slot AssignmentSlot) *string {
	switch slot {
	case SlotSupervisor:
		return p.SupervisorID
	case SlotInternalExaminer1:
		return p.InternalExaminer1ID
	case SlotInternalExaminer2:
		return p.InternalExaminer2ID
	case SlotExternalExaminer:
		return p.ExternalExaminerID
	default:
		return nil
	}
}

// SetSlot overwrites the holder of slot; nil clears it.
func (p *StudentProgramme) SetSlot(slot AssignmentSlot, lecturerID *string) {
	switch slot {
	case SlotSupervisor:
		p.SupervisorID = lecturerID
	case SlotInternalExaminer1:
		p.InternalExaminer1ID = lecturerID
	case SlotInternalExaminer2:
		p.InternalExaminer2ID = lecturerID
	case SlotExternalExaminer:
		p.ExternalExaminerID = lecturerID
	}
}

// Column returns the student_programmes column backing slot.
func (s AssignmentSlot) Column() (string, bool) {
	switch s {
	case SlotSupervisor:
		return "supervisor_id", true
	case SlotInternalExaminer1:
		return "internal_examiner1_id", true
	case SlotInternalExaminer2:
		return "internal_examiner2_id", true
	case SlotExternalExaminer:
		return "external_examiner_id", true
	default:
		return "", false
	}
}
