package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-portal-api/internal/dto"
	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/internal/workflow"
	appErrors "github.com/noah-isme/academic-portal-api/pkg/errors"
)

const assignmentDomain = "assignment"

type assignmentRepository interface {
	FindProgramme(ctx context.Context, id string) (*models.StudentProgramme, error)
	FindLecturer(ctx context.Context, id string) (*models.Lecturer, error)
	UpdateSlot(ctx context.Context, programmeID string, slot models.AssignmentSlot, lecturerID *string) error
}

// AssignmentService sets supervision and examination slots on student
// programmes. Slots are overwritten; there is no assignment history.
type AssignmentService struct {
	repo      assignmentRepository
	hooks     TransitionHooks
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAssignmentService constructs an AssignmentService.
func NewAssignmentService(repo assignmentRepository, hooks TransitionHooks, validate *validator.Validate, logger *zap.Logger) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssignmentService{repo: repo, hooks: hooks, validator: validate, logger: logger}
}

// AssignExaminer sets or clears one of the three examiner slots.
func (s *AssignmentService) AssignExaminer(ctx context.Context, req dto.AssignExaminerRequest, actor *models.JWTClaims) (*dto.AssignmentOutcome, error) {
	req.Type = models.ExaminerType(strings.ToLower(strings.TrimSpace(string(req.Type))))
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "studentProgrammeId and a type of internal1, internal2 or external are required")
	}
	slot, _ := req.Type.Slot()
	return s.assign(ctx, req.StudentProgrammeID, slot, req.ExaminerID, actor)
}

// AssignSupervisor sets or clears the supervisor slot.
func (s *AssignmentService) AssignSupervisor(ctx context.Context, req dto.AssignSupervisorRequest, actor *models.JWTClaims) (*dto.AssignmentOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "studentProgrammeId is required")
	}
	return s.assign(ctx, req.StudentProgrammeID, models.SlotSupervisor, req.SupervisorID, actor)
}

func (s *AssignmentService) assign(ctx context.Context, programmeID string, slot models.AssignmentSlot, lecturerID string, actor *models.JWTClaims) (*dto.AssignmentOutcome, error) {
	action := "assign_" + string(slot)

	programme, err := s.repo.FindProgramme(ctx, programmeID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, s.failed("load student programme", err)
	}

	var lecturer *models.Lecturer
	lecturerID = strings.TrimSpace(lecturerID)
	if lecturerID != "" && programme != nil {
		lecturer, err = s.repo.FindLecturer(ctx, lecturerID)
		if err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return nil, s.failed("load lecturer", err)
			}
			s.hooks.record(assignmentDomain, action, workflow.OutcomeNotFound)
			return &dto.AssignmentOutcome{
				TransitionOutcome: dto.TransitionOutcome{Outcome: workflow.OutcomeNotFound, Message: "Lecturer not found"},
				Programme:         programme,
			}, nil
		}
	}

	decision := workflow.CanAssign(programme, slot, lecturer)
	if decision.Outcome == workflow.OutcomeAlreadyTransitioned {
		// Re-assigning the current holder changes nothing and is reported as success.
		s.hooks.record(assignmentDomain, action, decision.Outcome)
		return &dto.AssignmentOutcome{TransitionOutcome: dto.Succeeded(decision.Reason), Programme: programme}, nil
	}
	if !decision.OK {
		s.hooks.record(assignmentDomain, action, decision.Outcome)
		return &dto.AssignmentOutcome{TransitionOutcome: dto.FromGuard(decision), Programme: programme}, nil
	}
	if lecturer == nil && programme.SlotHolder(slot) == nil {
		s.hooks.record(assignmentDomain, action, workflow.OutcomeAlreadyTransitioned)
		return &dto.AssignmentOutcome{
			TransitionOutcome: dto.Succeeded(fmt.Sprintf("No %s is assigned", workflow.SlotLabel(slot))),
			Programme:         programme,
		}, nil
	}

	var holder *string
	if lecturer != nil {
		id := lecturer.ID
		holder = &id
	}
	previous := programme.SlotHolder(slot)
	if err := s.repo.UpdateSlot(ctx, programme.ID, slot, holder); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.hooks.record(assignmentDomain, action, workflow.OutcomeNotFound)
			return &dto.AssignmentOutcome{
				TransitionOutcome: dto.TransitionOutcome{Outcome: workflow.OutcomeNotFound, Message: "Student programme record not found"},
			}, nil
		}
		return nil, s.failed("update "+string(slot), err)
	}
	programme.SetSlot(slot, holder)

	fields := map[string]interface{}{
		"studentProgrammeId": programme.ID,
		"studentId":          programme.StudentID,
		"slot":               string(slot),
	}
	if previous != nil {
		fields["previousLecturerId"] = *previous
	}
	message := fmt.Sprintf("%s cleared", capitalise(workflow.SlotLabel(slot)))
	if lecturer != nil {
		fields["lecturerId"] = lecturer.ID
		fields["email"] = lecturer.Email
		fields["name"] = lecturer.FullName
		message = fmt.Sprintf("%s assigned as %s", lecturer.FullName, workflow.SlotLabel(slot))
	}

	s.hooks.record(assignmentDomain, action, workflow.OutcomeAllowed)
	s.hooks.committed(ctx, models.NotificationAssignmentChanged, programme.ID, actorPayload(actor, fields))
	return &dto.AssignmentOutcome{TransitionOutcome: dto.Succeeded(message), Programme: programme}, nil
}

func (s *AssignmentService) failed(step string, err error) error {
	s.logger.Error("assignment failed", zap.String("step", step), zap.Error(err))
	return appErrors.TransitionFailed(fmt.Errorf("%s: %w", step, err))
}

func capitalise(v string) string {
	if v == "" {
		return v
	}
	return strings.ToUpper(v[:1]) + v[1:]
}
