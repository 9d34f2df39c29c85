package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-portal-api/internal/dto"
	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/internal/repository"
	"github.com/noah-isme/academic-portal-api/internal/workflow"
	"github.com/noah-isme/academic-portal-api/pkg/database"
	appErrors "github.com/noah-isme/academic-portal-api/pkg/errors"
)

type resultBatchRepository interface {
	FindByKey(ctx context.Context, key models.ResultBatchKey) (*models.ResultBatch, error)
	CountUploadedResults(ctx context.Context, key models.ResultBatchKey) (int, error)
	Create(ctx context.Context, batch *models.ResultBatch) error
	Transition(ctx context.Context, t repository.ResultBatchTransition) error
	List(ctx context.Context, filter models.ResultBatchFilter) ([]models.ResultBatch, int, error)
}

// ResultService approves, rejects and releases course result batches.
type ResultService struct {
	repo      resultBatchRepository
	guard     *workflow.Guard
	hooks     TransitionHooks
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewResultService constructs a ResultService. A nil guard uses the default tables.
func NewResultService(repo resultBatchRepository, guard *workflow.Guard, hooks TransitionHooks, validate *validator.Validate, logger *zap.Logger) *ResultService {
	if guard == nil {
		guard = workflow.NewGuard(nil)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultService{repo: repo, guard: guard, hooks: hooks, validator: validate, logger: logger, now: time.Now}
}

// Transition applies req.Action to the batch identified by course, session and
// semester. A batch that does not exist yet is derived as Pending when results
// have been uploaded for the key.
func (s *ResultService) Transition(ctx context.Context, req dto.ResultActionRequest, actor *models.JWTClaims) (*dto.ResultActionOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "courseId, session, semester and action are required")
	}
	action := strings.ToLower(strings.TrimSpace(req.Action))
	label := actionLabel(s.guard, workflow.DomainResult, action)
	key := models.ResultBatchKey{CourseID: req.CourseID, Session: req.Session, Semester: req.Semester}

	batch, err := s.resolveBatch(ctx, key)
	if err != nil {
		return nil, err
	}
	if batch == nil {
		s.hooks.record(string(workflow.DomainResult), label, workflow.OutcomeNotFound)
		return &dto.ResultActionOutcome{TransitionOutcome: dto.TransitionOutcome{
			Outcome: workflow.OutcomeNotFound,
			Message: fmt.Sprintf("No results have been uploaded for %s", describeBatch(key)),
		}}, nil
	}

	decision := s.guard.CanTransitionResult(batch.Status, action)
	if !decision.OK {
		s.hooks.record(string(workflow.DomainResult), label, decision.Outcome)
		return &dto.ResultActionOutcome{TransitionOutcome: dto.FromGuard(decision), Batch: batch}, nil
	}
	if batch.ID == "" {
		if batch, err = s.persistDerived(ctx, key, batch); err != nil {
			return nil, err
		}
		if decision = s.guard.CanTransitionResult(batch.Status, action); !decision.OK {
			s.hooks.record(string(workflow.DomainResult), label, decision.Outcome)
			return &dto.ResultActionOutcome{TransitionOutcome: dto.FromGuard(decision), Batch: batch}, nil
		}
	}

	now := s.now().UTC()
	transition := repository.ResultBatchTransition{
		ID:        batch.ID,
		From:      batch.Status,
		To:        models.ResultStatus(decision.Next),
		UpdatedAt: now,
	}
	switch transition.To {
	case models.ResultStatusApproved:
		transition.ApprovedBy = actorID(actor)
		transition.ApprovedAt = &now
	case models.ResultStatusReleased:
		transition.ReleasedAt = &now
	case models.ResultStatusRejected:
		transition.RejectedAt = &now
		if reason := strings.TrimSpace(req.Reason); reason != "" {
			transition.RejectionReason = &reason
		}
	}

	if err := s.repo.Transition(ctx, transition); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, s.failed("update result batch", err)
		}
		current, lookupErr := s.resolveBatch(ctx, key)
		if lookupErr != nil {
			return nil, lookupErr
		}
		if current == nil {
			return nil, s.failed("update result batch", err)
		}
		decision = s.guard.CanTransitionResult(current.Status, action)
		if decision.OK {
			// The batch moved and moved back between our read and write; report it as a conflict.
			decision = workflow.GuardResult{Outcome: workflow.OutcomeGuardRejected, Reason: "Result batch changed while processing, please retry"}
		}
		s.hooks.record(string(workflow.DomainResult), label, decision.Outcome)
		return &dto.ResultActionOutcome{TransitionOutcome: dto.FromGuard(decision), Batch: current}, nil
	}

	applyResultTransition(batch, transition)
	s.hooks.record(string(workflow.DomainResult), label, workflow.OutcomeAllowed)
	s.hooks.committed(ctx, models.NotificationResultStatus, batch.ID, actorPayload(actor, map[string]interface{}{
		"courseId": key.CourseID,
		"session":  key.Session,
		"semester": key.Semester,
		"action":   action,
		"status":   string(batch.Status),
	}))
	return &dto.ResultActionOutcome{
		TransitionOutcome: dto.Succeeded(fmt.Sprintf("Results for %s are now %s", describeBatch(key), batch.Status)),
		Batch:             batch,
	}, nil
}

// List returns result batches matching query.
func (s *ResultService) List(ctx context.Context, query dto.ResultBatchQuery) ([]models.ResultBatch, *models.Pagination, error) {
	page, size := normalisePage(query.Page, query.PageSize)
	batches, total, err := s.repo.List(ctx, models.ResultBatchFilter{
		Status:   query.Status,
		CourseID: query.CourseID,
		Session:  query.Session,
		Semester: query.Semester,
		Limit:    size,
		Offset:   (page - 1) * size,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list result batches")
	}
	return batches, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// resolveBatch returns the stored batch, a Pending batch derived in memory from
// uploaded results (with an empty ID), or nil when nothing exists for key.
func (s *ResultService) resolveBatch(ctx context.Context, key models.ResultBatchKey) (*models.ResultBatch, error) {
	batch, err := s.repo.FindByKey(ctx, key)
	if err == nil {
		return batch, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, s.failed("load result batch", err)
	}

	uploaded, err := s.repo.CountUploadedResults(ctx, key)
	if err != nil {
		return nil, s.failed("count uploaded results", err)
	}
	if uploaded == 0 {
		return nil, nil
	}
	return &models.ResultBatch{
		CourseID: key.CourseID,
		Session:  key.Session,
		Semester: key.Semester,
		Status:   models.ResultStatusPending,
	}, nil
}

// persistDerived stores a derived batch once an action on it is allowed. When
// another request stored it first, the stored row is returned instead.
func (s *ResultService) persistDerived(ctx context.Context, key models.ResultBatchKey, batch *models.ResultBatch) (*models.ResultBatch, error) {
	err := s.repo.Create(ctx, batch)
	if err == nil {
		return batch, nil
	}
	if !database.IsUniqueViolation(err) {
		return nil, s.failed("create result batch", err)
	}
	stored, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, s.failed("reload result batch", err)
	}
	return stored, nil
}

func (s *ResultService) failed(step string, err error) error {
	s.logger.Error("result transition failed", zap.String("step", step), zap.Error(err))
	return appErrors.TransitionFailed(fmt.Errorf("%s: %w", step, err))
}

func applyResultTransition(batch *models.ResultBatch, t repository.ResultBatchTransition) {
	batch.Status = t.To
	batch.UpdatedAt = t.UpdatedAt
	if t.ApprovedBy != nil {
		batch.ApprovedBy = t.ApprovedBy
	}
	if t.ApprovedAt != nil {
		batch.ApprovedAt = t.ApprovedAt
	}
	if t.ReleasedAt != nil {
		batch.ReleasedAt = t.ReleasedAt
	}
	if t.RejectedAt != nil {
		batch.RejectedAt = t.RejectedAt
	}
	if t.RejectionReason != nil {
		batch.RejectionReason = t.RejectionReason
	}
}

func describeBatch(key models.ResultBatchKey) string {
	return fmt.Sprintf("%s (%s, %s semester)", key.CourseID, key.Session, strings.ToLower(key.Semester))
}

func normalisePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	return page, size
}
