package workflow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/noah-isme/academic-portal-api/internal/models"
)

// Outcome classifies a guard decision.
type Outcome string

const (
	OutcomeAllowed             Outcome = "ALLOWED"
	OutcomeGuardRejected       Outcome = "GUARD_REJECTED"
	OutcomeAlreadyTransitioned Outcome = "ALREADY_TRANSITIONED"
	OutcomeNotFound            Outcome = "NOT_FOUND"
	// OutcomeFailed is never produced by a guard; services use it when the
	// datastore write itself failed.
	OutcomeFailed Outcome = "TRANSITION_FAILED"
)

// Reasons callers match on verbatim.
const (
	ReasonStudentExists    = "Student record already exists"
	ReasonNoStudentRecord  = "No student record found for this applicant"
	ReasonAlreadyGraduated = "Student has already graduated"
)

// GuardResult is the answer to "is this transition legal right now?". Next holds
// the destination status for table-driven transitions.
type GuardResult struct {
	OK      bool
	Outcome Outcome
	Reason  string
	Next    string
}

func allow(next string) GuardResult {
	return GuardResult{OK: true, Outcome: OutcomeAllowed, Next: next}
}

func rejected(reason string) GuardResult {
	return GuardResult{Outcome: OutcomeGuardRejected, Reason: reason}
}

func already(reason string) GuardResult {
	return GuardResult{Outcome: OutcomeAlreadyTransitioned, Reason: reason}
}

func notFound(reason string) GuardResult {
	return GuardResult{Outcome: OutcomeNotFound, Reason: reason}
}

// CanMigrate decides whether an applicant may become a student. An existing
// student wins over every other check so callers can show the linked record.
func CanMigrate(applicant *models.Applicant, existing *models.Student) GuardResult {
	if applicant == nil {
		return notFound("Applicant not found")
	}
	if existing != nil {
		return already(ReasonStudentExists)
	}
	if applicant.Status != models.ApplicantStatusApproved {
		return rejected(fmt.Sprintf("Applicant has not been approved for admission (status: %s)", applicant.Status))
	}
	if !applicant.AcceptanceFeePaid {
		return rejected("Acceptance fee has not been paid")
	}
	return allow(string(models.StudentStatusActive))
}

// CanGraduate decides whether the linked student may graduate.
func CanGraduate(student *models.Student) GuardResult {
	if student == nil {
		return notFound(ReasonNoStudentRecord)
	}
	if student.Status == models.StudentStatusGraduated {
		return already(ReasonAlreadyGraduated)
	}
	return allow(string(models.StudentStatusGraduated))
}

// CanInvite decides whether an applicant may be invited to the admission exercise.
func CanInvite(applicant *models.Applicant) GuardResult {
	if applicant == nil {
		return notFound("Applicant not found")
	}
	switch applicant.Status {
	case models.ApplicantStatusPending, models.ApplicantStatusUnderReview:
		return allow(string(applicant.Status))
	default:
		return rejected(fmt.Sprintf("Only pending or under-review applicants can be invited (status: %s)", applicant.Status))
	}
}

// CanAssign decides whether lecturer may take slot on programme. A nil lecturer
// means the slot is being cleared, which is always allowed.
func CanAssign(programme *models.StudentProgramme, slot models.AssignmentSlot, lecturer *models.Lecturer) GuardResult {
	if programme == nil {
		return notFound("Student programme record not found")
	}
	if _, ok := slot.Column(); !ok {
		return rejected(fmt.Sprintf("Unknown assignment slot %q", slot))
	}
	if lecturer == nil {
		return allow("")
	}
	if !lecturer.Active {
		return rejected(fmt.Sprintf("%s is not an active lecturer", lecturer.FullName))
	}
	if holder := programme.SlotHolder(slot); holder != nil && *holder == lecturer.ID {
		return already(fmt.Sprintf("%s is already the %s", lecturer.FullName, SlotLabel(slot)))
	}
	for _, other := range models.AllAssignmentSlots {
		if other == slot {
			continue
		}
		if holder := programme.SlotHolder(other); holder != nil && *holder == lecturer.ID {
			return rejected(fmt.Sprintf("%s is already the %s for this student", lecturer.FullName, SlotLabel(other)))
		}
	}
	return allow(lecturer.ID)
}

// SlotLabel renders a slot for user-facing messages.
func SlotLabel(slot models.AssignmentSlot) string {
	switch slot {
	case models.SlotSupervisor:
		return "supervisor"
	case models.SlotInternalExaminer1:
		return "first internal examiner"
	case models.SlotInternalExaminer2:
		return "second internal examiner"
	case models.SlotExternalExaminer:
		return "external examiner"
	default:
		return string(slot)
	}
}

// Guard evaluates table-driven transitions against a dispatcher.
type Guard struct {
	dispatcher *Dispatcher
}

// NewGuard wraps dispatcher; nil uses DefaultDispatcher.
func NewGuard(dispatcher *Dispatcher) *Guard {
	if dispatcher == nil {
		dispatcher = DefaultDispatcher()
	}
	return &Guard{dispatcher: dispatcher}
}

// Dispatcher exposes the underlying transition tables.
func (g *Guard) Dispatcher() *Dispatcher {
	return g.dispatcher
}

// CanTransitionResult checks a result batch action against the result table.
func (g *Guard) CanTransitionResult(status models.ResultStatus, action string) GuardResult {
	return g.check(DomainResult, "Result batch", string(status), action)
}

// CanTransitionPayment checks a payment action against the payment table.
func (g *Guard) CanTransitionPayment(status models.PaymentStatus, action string) GuardResult {
	return g.check(DomainPayment, "Payment", string(status), action)
}

func (g *Guard) check(domain Domain, noun, current, action string) GuardResult {
	next, err := g.dispatcher.NextStatus(domain, action, current)
	if err == nil {
		return allow(next)
	}
	var te *TransitionError
	if !errors.As(err, &te) {
		return rejected(err.Error())
	}
	switch {
	case errors.Is(te.Cause, ErrAlreadyInStatus):
		return already(fmt.Sprintf("%s is already %s", noun, current))
	case errors.Is(te.Cause, ErrUnknownAction), errors.Is(te.Cause, ErrUnknownDomain):
		return rejected(fmt.Sprintf("Unsupported action %q", action))
	case errors.Is(te.Cause, ErrTerminalStatus):
		return rejected(fmt.Sprintf("%s is %s and can no longer be changed", noun, current))
	case errors.Is(te.Cause, ErrCreateOnlyAction):
		return rejected(fmt.Sprintf("%s cannot be applied to an existing %s", te.Action, strings.ToLower(noun)))
	default:
		return rejected(fmt.Sprintf("Cannot %s a %s in %s status", strings.ToLower(te.Action), strings.ToLower(noun), current))
	}
}
