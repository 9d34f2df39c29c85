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
	appErrors "github.com/noah-isme/academic-portal-api/pkg/errors"
)

const admissionDomain = "admission"

type admissionApplicantRepository interface {
	FindByID(ctx context.Context, id string) (*models.Applicant, error)
}

// AdmissionService sends applicant-facing notices. It changes no state; the
// notification hook is the whole effect.
type AdmissionService struct {
	applicants admissionApplicantRepository
	hooks      TransitionHooks
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
}

// NewAdmissionService constructs an AdmissionService.
func NewAdmissionService(applicants admissionApplicantRepository, hooks TransitionHooks, validate *validator.Validate, logger *zap.Logger) *AdmissionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdmissionService{applicants: applicants, hooks: hooks, validator: validate, logger: logger, now: time.Now}
}

// Invite asks a pending or under-review applicant to attend the admission exercise.
func (s *AdmissionService) Invite(ctx context.Context, applicantID string, req dto.InviteRequest, actor *models.JWTClaims) (*dto.TransitionOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "venue and scheduledAt are required")
	}
	if !req.ScheduledAt.After(s.now()) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "scheduledAt must be in the future")
	}

	applicant, err := s.load(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	decision := workflow.CanInvite(applicant)
	s.hooks.record(admissionDomain, "invite", decision.Outcome)
	if !decision.OK {
		out := dto.FromGuard(decision)
		return &out, nil
	}

	s.hooks.Notify(ctx, models.NotificationAdmissionInvite, applicant.ID, actorPayload(actor, map[string]interface{}{
		"email":       applicant.Email,
		"name":        applicant.FullName,
		"venue":       req.Venue,
		"scheduledAt": req.ScheduledAt.UTC().Format("Monday, 02 January 2006 15:04 MST"),
		"note":        req.Note,
	}))
	out := dto.Succeeded(fmt.Sprintf("Invitation sent to %s", applicant.FullName))
	return &out, nil
}

// NotifyStatus tells an applicant their current admission status.
func (s *AdmissionService) NotifyStatus(ctx context.Context, applicantID string, actor *models.JWTClaims) (*dto.TransitionOutcome, error) {
	applicant, err := s.load(ctx, applicantID)
	if err != nil {
		return nil, err
	}
	if applicant == nil {
		s.hooks.record(admissionDomain, "notify_status", workflow.OutcomeNotFound)
		return &dto.TransitionOutcome{Outcome: workflow.OutcomeNotFound, Message: "Applicant not found"}, nil
	}

	s.hooks.record(admissionDomain, "notify_status", workflow.OutcomeAllowed)
	s.hooks.Notify(ctx, models.NotificationApplicantStatus, applicant.ID, actorPayload(actor, map[string]interface{}{
		"email":  applicant.Email,
		"name":   applicant.FullName,
		"status": string(applicant.Status),
	}))
	out := dto.Succeeded(fmt.Sprintf("%s notified of status %s", applicant.FullName, applicant.Status))
	return &out, nil
}

func (s *AdmissionService) load(ctx context.Context, id string) (*models.Applicant, error) {
	applicant, err := s.applicants.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		s.logger.Error("load applicant failed", zap.String("applicant_id", id), zap.Error(err))
		return nil, appErrors.TransitionFailed(fmt.Errorf("load applicant: %w", err))
	}
	return applicant, nil
}
