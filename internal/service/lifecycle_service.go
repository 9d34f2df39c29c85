package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-portal-api/internal/dto"
	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/internal/workflow"
	"github.com/noah-isme/academic-portal-api/pkg/database"
	appErrors "github.com/noah-isme/academic-portal-api/pkg/errors"
)

const lifecycleDomain = "lifecycle"

type lifecycleApplicantRepository interface {
	FindByID(ctx context.Context, id string) (*models.Applicant, error)
}

type lifecycleStudentRepository interface {
	FindByApplicantID(ctx context.Context, applicantID string) (*models.Student, error)
	NextSerial(ctx context.Context) (int64, error)
	CreateForApplicant(ctx context.Context, student *models.Student) error
	MarkGraduated(ctx context.Context, id string, at time.Time) error
}

// LifecycleConfig controls identifier formatting.
type LifecycleConfig struct {
	MatricPrefix       string
	RegistrationPrefix string
}

// LifecycleService moves applicants to students and students to graduates.
type LifecycleService struct {
	applicants lifecycleApplicantRepository
	students   lifecycleStudentRepository
	hooks      TransitionHooks
	validator  *validator.Validate
	logger     *zap.Logger
	cfg        LifecycleConfig
	now        func() time.Time
}

// NewLifecycleService constructs a LifecycleService.
func NewLifecycleService(applicants lifecycleApplicantRepository, students lifecycleStudentRepository, hooks TransitionHooks, validate *validator.Validate, logger *zap.Logger, cfg LifecycleConfig) *LifecycleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MatricPrefix == "" {
		cfg.MatricPrefix = "PG"
	}
	if cfg.RegistrationPrefix == "" {
		cfg.RegistrationPrefix = "REG"
	}
	return &LifecycleService{
		applicants: applicants,
		students:   students,
		hooks:      hooks,
		validator:  validate,
		logger:     logger,
		cfg:        cfg,
		now:        time.Now,
	}
}

// Migrate creates the student record for an approved applicant whose acceptance
// fee is paid. A second call returns the existing student as ALREADY_TRANSITIONED.
func (s *LifecycleService) Migrate(ctx context.Context, req dto.LifecycleRequest, actor *models.JWTClaims) (*dto.LifecycleOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "applicantId is required")
	}

	applicant, err := s.applicants.FindByID(ctx, req.ApplicantID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, s.failed("load applicant", err)
	}
	existing, err := s.linkedStudent(ctx, req.ApplicantID)
	if err != nil {
		return nil, err
	}

	decision := workflow.CanMigrate(applicant, existing)
	if !decision.OK {
		s.hooks.record(lifecycleDomain, "migrate", decision.Outcome)
		return &dto.LifecycleOutcome{TransitionOutcome: dto.FromGuard(decision), Student: existing}, nil
	}

	serial, err := s.students.NextSerial(ctx)
	if err != nil {
		return nil, s.failed("allocate student number", err)
	}
	now := s.now().UTC()
	student := &models.Student{
		ApplicantID:        applicant.ID,
		ProgrammeID:        applicant.ProgrammeID,
		MatricNumber:       s.matricNumber(serial, now),
		RegistrationNumber: s.registrationNumber(serial, now),
		Status:             models.StudentStatus(decision.Next),
		CreatedAt:          now,
	}

	if err := s.students.CreateForApplicant(ctx, student); err != nil {
		if !database.IsUniqueViolation(err) {
			return nil, s.failed("create student", err)
		}
		winner, lookupErr := s.linkedStudent(ctx, applicant.ID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if winner == nil {
			return nil, s.failed("create student", err)
		}
		s.hooks.record(lifecycleDomain, "migrate", workflow.OutcomeAlreadyTransitioned)
		return &dto.LifecycleOutcome{
			TransitionOutcome: dto.FromGuard(workflow.CanMigrate(applicant, winner)),
			Student:           winner,
		}, nil
	}

	s.hooks.record(lifecycleDomain, "migrate", workflow.OutcomeAllowed)
	s.hooks.committed(ctx, models.NotificationStudentMigrated, student.ID, actorPayload(actor, map[string]interface{}{
		"applicantId":        applicant.ID,
		"email":              applicant.Email,
		"name":               applicant.FullName,
		"matricNumber":       student.MatricNumber,
		"registrationNumber": student.RegistrationNumber,
	}))
	return &dto.LifecycleOutcome{
		TransitionOutcome: dto.Succeeded(fmt.Sprintf("%s migrated to student %s", applicant.FullName, student.MatricNumber)),
		Student:           student,
	}, nil
}

// Graduate marks the student linked to an applicant as GRADUATED.
func (s *LifecycleService) Graduate(ctx context.Context, req dto.LifecycleRequest, actor *models.JWTClaims) (*dto.LifecycleOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "applicantId is required")
	}

	student, err := s.linkedStudent(ctx, req.ApplicantID)
	if err != nil {
		return nil, err
	}
	decision := workflow.CanGraduate(student)
	if !decision.OK {
		s.hooks.record(lifecycleDomain, "graduate", decision.Outcome)
		return &dto.LifecycleOutcome{TransitionOutcome: dto.FromGuard(decision), Student: student}, nil
	}

	now := s.now().UTC()
	if err := s.students.MarkGraduated(ctx, student.ID, now); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, s.failed("graduate student", err)
		}
		// Lost a race with another graduation request.
		current, lookupErr := s.linkedStudent(ctx, req.ApplicantID)
		if lookupErr != nil {
			return nil, lookupErr
		}
		decision = workflow.CanGraduate(current)
		s.hooks.record(lifecycleDomain, "graduate", decision.Outcome)
		return &dto.LifecycleOutcome{TransitionOutcome: dto.FromGuard(decision), Student: current}, nil
	}

	student.Status = models.StudentStatusGraduated
	student.GraduatedAt = &now
	student.UpdatedAt = now

	fields := map[string]interface{}{
		"applicantId":  req.ApplicantID,
		"matricNumber": student.MatricNumber,
	}
	if applicant, err := s.applicants.FindByID(ctx, req.ApplicantID); err == nil {
		fields["email"] = applicant.Email
		fields["name"] = applicant.FullName
	} else {
		s.logger.Debug("graduation notice without contact details", zap.String("applicant_id", req.ApplicantID), zap.Error(err))
	}

	s.hooks.record(lifecycleDomain, "graduate", workflow.OutcomeAllowed)
	s.hooks.committed(ctx, models.NotificationStudentGraduated, student.ID, actorPayload(actor, fields))
	return &dto.LifecycleOutcome{
		TransitionOutcome: dto.Succeeded(fmt.Sprintf("Student %s has graduated", student.MatricNumber)),
		Student:           student,
	}, nil
}

// LinkedStudent returns the student created from an applicant.
func (s *LifecycleService) LinkedStudent(ctx context.Context, applicantID string) (*models.Student, error) {
	student, err := s.linkedStudent(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, workflow.ReasonNoStudentRecord)
	}
	return student, nil
}

func (s *LifecycleService) linkedStudent(ctx context.Context, applicantID string) (*models.Student, error) {
	student, err := s.students.FindByApplicantID(ctx, applicantID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, s.failed("load linked student", err)
	}
	return student, nil
}

func (s *LifecycleService) matricNumber(serial int64, at time.Time) string {
	return fmt.Sprintf("%s/%d/%05d", s.cfg.MatricPrefix, at.Year(), serial)
}

func (s *LifecycleService) registrationNumber(serial int64, at time.Time) string {
	return fmt.Sprintf("%s%d%06d", s.cfg.RegistrationPrefix, at.Year(), serial)
}

func (s *LifecycleService) failed(step string, err error) error {
	s.logger.Error("lifecycle transition failed", zap.String("step", step), zap.Error(err))
	return appErrors.TransitionFailed(fmt.Errorf("%s: %w", step, err))
}
