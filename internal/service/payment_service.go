package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/academic-portal-api/internal/dto"
	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/internal/repository"
	"github.com/noah-isme/academic-portal-api/internal/workflow"
	appErrors "github.com/noah-isme/academic-portal-api/pkg/errors"
	"github.com/noah-isme/academic-portal-api/pkg/export"
)

type lecturerPaymentRepository interface {
	ListByIDs(ctx context.Context, ids []string) ([]models.LecturerPayment, error)
	ListEligible(ctx context.Context, session, semester string) ([]models.EligiblePayable, error)
	CreateBatch(ctx context.Context, payments []*models.LecturerPayment) ([]string, error)
	TransitionBatch(ctx context.Context, transitions []repository.PaymentTransition) ([]string, error)
	List(ctx context.Context, filter models.PaymentFilter) ([]models.LecturerPayment, int, error)
	ScheduleRows(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentScheduleRow, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// PaymentService generates lecturer payments and advances them through
// approval and payment.
type PaymentService struct {
	repo      lecturerPaymentRepository
	guard     *workflow.Guard
	hooks     TransitionHooks
	validator *validator.Validate
	logger    *zap.Logger
	csv       csvRenderer
	pdf       pdfRenderer
	now       func() time.Time
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo lecturerPaymentRepository, guard *workflow.Guard, hooks TransitionHooks, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if guard == nil {
		guard = workflow.NewGuard(nil)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		repo:      repo,
		guard:     guard,
		hooks:     hooks,
		validator: validate,
		logger:    logger,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		now:       time.Now,
	}
}

// Transition dispatches req.Action. Create actions insert new payments from the
// eligible payables; the others move each listed id, skipping ids whose status
// does not allow it. Success means at least one payment changed.
func (s *PaymentService) Transition(ctx context.Context, req dto.PaymentActionRequest, actor *models.JWTClaims) (*dto.PaymentActionOutcome, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment action payload")
	}

	rule, ok := s.guard.Dispatcher().Rule(workflow.DomainPayment, req.Action)
	if !ok {
		s.hooks.record(string(workflow.DomainPayment), unknownAction, workflow.OutcomeGuardRejected)
		return &dto.PaymentActionOutcome{
			TransitionOutcome: dto.TransitionOutcome{
				Outcome: workflow.OutcomeGuardRejected,
				Message: fmt.Sprintf("Unsupported action %q", req.Action),
			},
			Transitioned: []string{},
			Skipped:      []dto.SkippedPayment{},
		}, nil
	}
	if rule.Create {
		return s.generate(ctx, rule, req, actor)
	}
	return s.advance(ctx, rule, req, actor)
}

func (s *PaymentService) generate(ctx context.Context, rule workflow.Rule, req dto.PaymentActionRequest, actor *models.JWTClaims) (*dto.PaymentActionOutcome, error) {
	status, err := s.guard.Dispatcher().NextStatus(workflow.DomainPayment, rule.Action, "")
	if err != nil {
		return nil, s.failed("resolve generated status", err)
	}

	payables, err := s.repo.ListEligible(ctx, req.Session, req.Semester)
	if err != nil {
		return nil, s.failed("list eligible payables", err)
	}

	out := &dto.PaymentActionOutcome{Transitioned: []string{}, Skipped: []dto.SkippedPayment{}}
	if len(payables) == 0 {
		out.Outcome = workflow.OutcomeNotFound
		out.Message = "No eligible lecturer payables were found"
		s.hooks.record(string(workflow.DomainPayment), rule.Action, out.Outcome)
		return out, nil
	}

	batch := make([]*models.LecturerPayment, 0, len(payables))
	for _, payable := range payables {
		batch = append(batch, &models.LecturerPayment{
			LecturerID: payable.LecturerID,
			CourseID:   payable.CourseID,
			Session:    payable.Session,
			Semester:   payable.Semester,
			Amount:     payable.Amount,
			Status:     models.PaymentStatus(status),
		})
	}
	created, err := s.repo.CreateBatch(ctx, batch)
	if err != nil {
		s.hooks.record(string(workflow.DomainPayment), rule.Action, workflow.OutcomeFailed)
		return nil, s.failed("create lecturer payments", err)
	}
	out.Transitioned = append(out.Transitioned, created...)
	existing := len(payables) - len(created)

	if len(out.Transitioned) == 0 {
		out.Outcome = workflow.OutcomeAlreadyTransitioned
		out.Message = "All eligible payments have already been generated"
		s.hooks.record(string(workflow.DomainPayment), rule.Action, out.Outcome)
		return out, nil
	}
	out.Success = true
	out.Outcome = workflow.OutcomeAllowed
	out.Message = fmt.Sprintf("Generated %d payment(s)", len(out.Transitioned))
	if existing > 0 {
		out.Message += fmt.Sprintf(", %d already existed", existing)
	}
	s.finish(ctx, rule, out, actor)
	return out, nil
}

func (s *PaymentService) advance(ctx context.Context, rule workflow.Rule, req dto.PaymentActionRequest, actor *models.JWTClaims) (*dto.PaymentActionOutcome, error) {
	ids := uniqueIDs(req.PaymentIDs)
	if len(ids) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("paymentIds is required for %s", rule.Action))
	}

	payments, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, s.failed("load payments", err)
	}
	byID := make(map[string]models.LecturerPayment, len(payments))
	for _, p := range payments {
		byID[p.ID] = p
	}

	out := &dto.PaymentActionOutcome{Transitioned: []string{}, Skipped: []dto.SkippedPayment{}}
	alreadyOnly := true
	var pending []repository.PaymentTransition
	for _, id := range ids {
		payment, ok := byID[id]
		if !ok {
			alreadyOnly = false
			out.Skipped = append(out.Skipped, dto.SkippedPayment{ID: id, Reason: "Payment not found"})
			continue
		}
		decision := s.guard.CanTransitionPayment(payment.Status, rule.Action)
		if !decision.OK {
			if decision.Outcome != workflow.OutcomeAlreadyTransitioned {
				alreadyOnly = false
			}
			out.Skipped = append(out.Skipped, dto.SkippedPayment{ID: id, Status: payment.Status, Reason: decision.Reason})
			continue
		}
		pending = append(pending, s.paymentTransition(payment, decision.Next, req.Reference, actor))
	}

	if len(pending) > 0 {
		applied, err := s.repo.TransitionBatch(ctx, pending)
		if err != nil {
			// The batch rolled back, so nothing moved and nothing is announced.
			s.hooks.record(string(workflow.DomainPayment), rule.Action, workflow.OutcomeFailed)
			return nil, s.failed("update payments", err)
		}
		done := make(map[string]struct{}, len(applied))
		for _, id := range applied {
			done[id] = struct{}{}
		}
		for _, t := range pending {
			if _, ok := done[t.ID]; ok {
				out.Transitioned = append(out.Transitioned, t.ID)
				continue
			}
			alreadyOnly = false
			out.Skipped = append(out.Skipped, dto.SkippedPayment{ID: t.ID, Status: t.From, Reason: "Payment changed while processing"})
		}
	}

	switch {
	case len(out.Transitioned) > 0:
		out.Success = true
		out.Outcome = workflow.OutcomeAllowed
		out.Message = fmt.Sprintf("%s applied to %d payment(s)", strings.ToUpper(rule.Action), len(out.Transitioned))
		if len(out.Skipped) > 0 {
			out.Message += fmt.Sprintf(", %d skipped", len(out.Skipped))
		}
	case alreadyOnly:
		out.Outcome = workflow.OutcomeAlreadyTransitioned
		out.Message = fmt.Sprintf("All selected payments are already %s", strings.ToLower(rule.To))
	default:
		out.Outcome = workflow.OutcomeGuardRejected
		out.Message = fmt.Sprintf("None of the selected payments can be processed with %s", strings.ToUpper(rule.Action))
	}
	s.finish(ctx, rule, out, actor)
	return out, nil
}

func (s *PaymentService) paymentTransition(payment models.LecturerPayment, next, reference string, actor *models.JWTClaims) repository.PaymentTransition {
	now := s.now().UTC()
	t := repository.PaymentTransition{
		ID:        payment.ID,
		From:      payment.Status,
		To:        models.PaymentStatus(next),
		UpdatedAt: now,
	}
	switch t.To {
	case models.PaymentStatusApproved:
		t.ApprovedBy = actorID(actor)
		t.ApprovedAt = &now
	case models.PaymentStatusPaid:
		t.PaidBy = actorID(actor)
		t.PaidAt = &now
		if ref := strings.TrimSpace(reference); ref != "" {
			t.PaymentReference = &ref
		}
	}
	return t
}

// finish records the attempt and, when anything moved, fires the side effects
// once for the whole batch.
func (s *PaymentService) finish(ctx context.Context, rule workflow.Rule, out *dto.PaymentActionOutcome, actor *models.JWTClaims) {
	s.hooks.record(string(workflow.DomainPayment), rule.Action, out.Outcome)
	if len(out.Transitioned) == 0 {
		return
	}
	s.hooks.committed(ctx, models.NotificationPaymentStatus, uuid.NewString(), actorPayload(actor, map[string]interface{}{
		"action":     rule.Action,
		"status":     rule.To,
		"paymentIds": out.Transitioned,
		"skipped":    len(out.Skipped),
	}))
}

// List returns payments matching query.
func (s *PaymentService) List(ctx context.Context, query dto.PaymentQuery) ([]models.LecturerPayment, *models.Pagination, error) {
	page, size := normalisePage(query.Page, query.PageSize)
	payments, total, err := s.repo.List(ctx, models.PaymentFilter{
		Status:     query.Status,
		LecturerID: query.LecturerID,
		Session:    query.Session,
		Semester:   query.Semester,
		Limit:      size,
		Offset:     (page - 1) * size,
	})
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	return payments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ExportSchedule renders the payment schedule as csv or pdf.
func (s *PaymentService) ExportSchedule(ctx context.Context, query dto.PaymentQuery, format string) (*dto.ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = "csv"
	}
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	rows, err := s.repo.ScheduleRows(ctx, models.PaymentFilter{
		Status:     query.Status,
		LecturerID: query.LecturerID,
		Session:    query.Session,
		Semester:   query.Semester,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment schedule")
	}
	dataset := paymentScheduleDataset(rows)
	stamp := s.now().UTC().Format("20060102")

	if format == "pdf" {
		title := "Lecturer payment schedule"
		if query.Session != "" {
			title += " " + query.Session
		}
		data, err := s.pdf.Render(dataset, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render payment schedule")
		}
		return &dto.ExportFile{Filename: "payment-schedule-" + stamp + ".pdf", ContentType: "application/pdf", Data: data}, nil
	}

	data, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render payment schedule")
	}
	return &dto.ExportFile{Filename: "payment-schedule-" + stamp + ".csv", ContentType: "text/csv", Data: data}, nil
}

func paymentScheduleDataset(rows []models.PaymentScheduleRow) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Lecturer", "Staff No", "Course", "Session", "Semester", "Amount", "Status"},
		Align:   map[string]string{"Amount": export.AlignRight},
	}
	var total int64
	for _, row := range rows {
		total += row.Amount
		dataset.Rows = append(dataset.Rows, map[string]string{
			"Lecturer": row.LecturerName,
			"Staff No": row.StaffNumber,
			"Course":   row.CourseCode,
			"Session":  row.Session,
			"Semester": row.Semester,
			"Amount":   formatAmount(row.Amount),
			"Status":   string(row.Status),
		})
	}
	dataset.Footer = map[string]string{"Lecturer": "Total", "Amount": formatAmount(total)}
	return dataset
}

// formatAmount renders minor units as a fixed two-decimal figure.
func formatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}

func (s *PaymentService) failed(step string, err error) error {
	s.logger.Error("payment transition failed", zap.String("step", step), zap.Error(err))
	return appErrors.TransitionFailed(fmt.Errorf("%s: %w", step, err))
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
