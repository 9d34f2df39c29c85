package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-portal-api/internal/dto"
	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/internal/repository"
	"github.com/noah-isme/academic-portal-api/internal/workflow"
	appErrors "github.com/noah-isme/academic-portal-api/pkg/errors"
)

type stubPaymentRepo struct {
	payments      map[string]*models.LecturerPayment
	eligible      []models.EligiblePayable
	existingKeys  map[string]bool
	transitionErr error
	failAt        int
	createErr     error
	transitions   []repository.PaymentTransition
	schedule      []models.PaymentScheduleRow
	seq           int
}

func newStubPaymentRepo(payments ...models.LecturerPayment) *stubPaymentRepo {
	repo := &stubPaymentRepo{payments: map[string]*models.LecturerPayment{}, existingKeys: map[string]bool{}}
	for i := range payments {
		p := payments[i]
		repo.payments[p.ID] = &p
	}
	return repo
}

func (s *stubPaymentRepo) ListByIDs(_ context.Context, ids []string) ([]models.LecturerPayment, error) {
	var out []models.LecturerPayment
	for _, id := range ids {
		if p, ok := s.payments[id]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *stubPaymentRepo) ListEligible(context.Context, string, string) ([]models.EligiblePayable, error) {
	return s.eligible, nil
}

// CreateBatch and TransitionBatch stage every change and keep none of them
// when a row fails, like the transactional repository.
func (s *stubPaymentRepo) CreateBatch(_ context.Context, payments []*models.LecturerPayment) ([]string, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	created := []string{}
	for _, payment := range payments {
		key := payment.LecturerID + "|" + payment.CourseID + "|" + payment.Session + "|" + payment.Semester
		if s.existingKeys[key] {
			continue
		}
		s.seq++
		payment.ID = fmt.Sprintf("pay-%d", s.seq)
		s.existingKeys[key] = true
		clone := *payment
		s.payments[payment.ID] = &clone
		created = append(created, payment.ID)
	}
	return created, nil
}

func (s *stubPaymentRepo) TransitionBatch(_ context.Context, transitions []repository.PaymentTransition) ([]string, error) {
	staged := make(map[string]models.PaymentStatus, len(transitions))
	applied := []string{}
	for i, t := range transitions {
		if s.transitionErr != nil && (s.failAt == 0 || s.failAt == i+1) {
			return nil, s.transitionErr
		}
		current, ok := s.payments[t.ID]
		if !ok || current.Status != t.From {
			continue
		}
		staged[t.ID] = t.To
		applied = append(applied, t.ID)
	}
	for id, status := range staged {
		s.payments[id].Status = status
	}
	s.transitions = append(s.transitions, transitions...)
	return applied, nil
}

func (s *stubPaymentRepo) List(_ context.Context, _ models.PaymentFilter) ([]models.LecturerPayment, int, error) {
	out := make([]models.LecturerPayment, 0, len(s.payments))
	for _, p := range s.payments {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (s *stubPaymentRepo) ScheduleRows(context.Context, models.PaymentFilter) ([]models.PaymentScheduleRow, error) {
	return s.schedule, nil
}

func newPaymentFixture(repo *stubPaymentRepo) (*PaymentService, *recordingNotifier, *countingInvalidator) {
	hooks, notifier, dashboard := testHooks()
	svc := NewPaymentService(repo, nil, hooks, nil, nil)
	svc.now = func() time.Time { return time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC) }
	return svc, notifier, dashboard
}

func TestPaymentApproveMixedBatch(t *testing.T) {
	repo := newStubPaymentRepo(
		models.LecturerPayment{ID: "p1", Status: models.PaymentStatusPending},
		models.LecturerPayment{ID: "p2", Status: models.PaymentStatusApproved},
	)
	svc, notifier, dashboard := newPaymentFixture(repo)

	out, err := svc.Transition(context.Background(), dto.PaymentActionRequest{Action: "APPROVE", PaymentIDs: []string{"p1", "p2"}}, testActor())
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, workflow.OutcomeAllowed, out.Outcome)
	assert.Equal(t, []string{"p1"}, out.Transitioned)
	require.Len(t, out.Skipped, 1)
	assert.Equal(t, "p2", out.Skipped[0].ID)
	assert.Equal(t, models.PaymentStatusApproved, out.Skipped[0].Status)
	assert.Equal(t, models.PaymentStatusApproved, repo.payments["p1"].Status)
	assert.Equal(t, models.PaymentStatusApproved, repo.payments["p2"].Status)
	require.Len(t, repo.transitions, 1)
	assert.Equal(t, "user-1", *repo.transitions[0].ApprovedBy)
	assert.Len(t, notifier.sent, 1)
	assert.Equal(t, 1, dashboard.calls)
}

func TestPaymentApproveAlreadyApproved(t *testing.T) {
	repo := newStubPaymentRepo(models.LecturerPayment{ID: "p2", Status: models.PaymentStatusApproved})
	svc, notifier, _ := newPaymentFixture(repo)

	out, err := svc.Transition(context.Background(), dto.PaymentActionRequest{Action: "APPROVE", PaymentIDs: []string{"p2", "p2"}}, nil)
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, workflow.OutcomeAlreadyTransitioned, out.Outcome)
	assert.Len(t, out.Skipped, 1)
	assert.Empty(t, notifier.sent)
}

func TestPaymentPayRequiresApproval(t *testing.T) {
	repo := newStubPaymentRepo(models.LecturerPayment{ID: "p1", Status: models.PaymentStatusPending})
	svc, _, _ := newPaymentFixture(repo)

	out, err := svc.Transition(context.Background(), dto.PaymentActionRequest{Action: "PAY", PaymentIDs: []string{"p1", "missing"}}, nil)
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, workflow.OutcomeGuardRejected, out.Outcome)
	require.Len(t, out.Skipped, 2)
	assert.Equal(t, "Payment not found", out.Skipped[1].Reason)
	assert.Equal(t, models.PaymentStatusPending, repo.payments["p1"].Status)
}

func TestPaymentPayStampsReference(t *testing.T) {
	repo := newStubPaymentRepo(models.LecturerPayment{ID: "p1", Status: models.PaymentStatusApproved})
	svc, _, _ := newPaymentFixture(repo)

	out, err := svc.Transition(context.Background(), dto.PaymentActionRequest{Action: "pay", PaymentIDs: []string{"p1"}, Reference: "TRX-0091"}, testActor())
	require.NoError(t, err)
	assert.True(t, out.Success)
	require.Len(t, repo.transitions, 1)
	assert.Equal(t, models.PaymentStatusPaid, repo.transitions[0].To)
	require.NotNil(t, repo.transitions[0].PaymentReference)
	assert.Equal(t, "TRX-0091", *repo.transitions[0].PaymentReference)
	require.NotNil(t, repo.transitions[0].PaidAt)
}

func TestPaymentPaidIsTerminal(t *testing.T) {
	repo := newStubPaymentRepo(models.LecturerPayment{ID: "p1", Status: models.PaymentStatusPaid})
	svc, _, _ := newPaymentFixture(repo)

	out, err := svc.Transition(context.Background(), dto.PaymentActionRequest{Action: "APPROVE", PaymentIDs: []string{"p1"}}, nil)
	require.NoError(t, err)
	assert.Equal(t, workflow.OutcomeGuardRejected, out.Outcome)
	assert.Contains(t, out.Skipped[0].Reason, "can no longer be changed")
}

func TestPaymentGenerateIsIdempotent(t *testing.T) {
	repo := newStubPaymentRepo()
	repo.eligible = []models.EligiblePayable{
		{LecturerID: "l1", CourseID: "c1", Session: "2023/2024", Semester: "First", Amount: 150000},
		{LecturerID: "l2", CourseID: "c2", Session: "2023/2024", Semester: "First", Amount: 90000},
	}
	svc, notifier, _ := newPaymentFixture(repo)
	req := dto.PaymentActionRequest{Action: "GENERATE", Session: "2023/2024", Semester: "First"}

	first, err := svc.Transition(context.Background(), req, testActor())
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Len(t, first.Transitioned, 2)
	for _, id := range first.Transitioned {
		assert.Equal(t, models.PaymentStatusPending, repo.payments[id].Status)
	}

	second, err := svc.Transition(context.Background(), req, testActor())
	require.NoError(t, err)
	assert.False(t, second.Success)
	assert.Equal(t, workflow.OutcomeAlreadyTransitioned, second.Outcome)
	assert.Len(t, repo.payments, 2)
	assert.Len(t, notifier.sent, 1)
}

func TestPaymentGenerateWithoutPayables(t *testing.T) {
	svc, _, _ := newPaymentFixture(newStubPaymentRepo())

	out, err := svc.Transition(context.Background(), dto.PaymentActionRequest{Action: "GENERATE"}, nil)
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, workflow.OutcomeNotFound, out.Outcome)
}

func TestPaymentUnknownAction(t *testing.T) {
	svc, _, _ := newPaymentFixture(newStubPaymentRepo())

	out, err := svc.Transition(context.Background(), dto.PaymentActionRequest{Action: "REFUND", PaymentIDs: []string{"p1"}}, nil)
	require.NoError(t, err)
	assert.False(t, out.Success)
	assert.Equal(t, workflow.OutcomeGuardRejected, out.Outcome)
	assert.Contains(t, out.Message, "REFUND")
}

func TestPaymentAdvanceRequiresIDs(t *testing.T) {
	svc, _, _ := newPaymentFixture(newStubPaymentRepo())

	_, err := svc.Transition(context.Background(), dto.PaymentActionRequest{Action: "APPROVE", PaymentIDs: []string{" "}}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestPaymentDatastoreFailure(t *testing.T) {
	repo := newStubPaymentRepo(models.LecturerPayment{ID: "p1", Status: models.PaymentStatusPending})
	repo.transitionErr = errors.New("connection refused")
	svc, notifier, _ := newPaymentFixture(repo)

	out, err := svc.Transition(context.Background(), dto.PaymentActionRequest{Action: "APPROVE", PaymentIDs: []string{"p1"}}, nil)
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, appErrors.ErrTransitionFailed)
	assert.Empty(t, notifier.sent)
}

func TestPaymentApproveRollsBackOnMidBatchFailure(t *testing.T) {
	repo := newStubPaymentRepo(
		models.LecturerPayment{ID: "p1", Status: models.PaymentStatusPending},
		models.LecturerPayment{ID: "p2", Status: models.PaymentStatusPending},
	)
	repo.transitionErr = errors.New("update payment: connection reset")
	repo.failAt = 2
	svc, notifier, dashboard := newPaymentFixture(repo)

	out, err := svc.Transition(context.Background(), dto.PaymentActionRequest{Action: "APPROVE", PaymentIDs: []string{"p1", "p2"}}, testActor())
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, appErrors.ErrTransitionFailed)
	assert.Equal(t, models.PaymentStatusPending, repo.payments["p1"].Status)
	assert.Equal(t, models.PaymentStatusPending, repo.payments["p2"].Status)
	assert.Empty(t, notifier.sent)
	assert.Zero(t, dashboard.calls)
}

func TestPaymentApproveReportsConcurrentChange(t *testing.T) {
	repo := newStubPaymentRepo(
		models.LecturerPayment{ID: "p1", Status: models.PaymentStatusPending},
		models.LecturerPayment{ID: "p2", Status: models.PaymentStatusPending},
	)
	svc, notifier, _ := newPaymentFixture(repo)
	// p2 is approved by someone else after it was read.
	svc.repo = &racingPaymentRepo{stubPaymentRepo: repo, raced: "p2"}

	out, err := svc.Transition(context.Background(), dto.PaymentActionRequest{Action: "APPROVE", PaymentIDs: []string{"p1", "p2"}}, testActor())
	require.NoError(t, err)
	assert.True(t, out.Success)
	assert.Equal(t, []string{"p1"}, out.Transitioned)
	require.Len(t, out.Skipped, 1)
	assert.Equal(t, "Payment changed while processing", out.Skipped[0].Reason)
	assert.Len(t, notifier.sent, 1)
}

func TestPaymentGenerateFailureKeepsNothing(t *testing.T) {
	repo := newStubPaymentRepo()
	repo.eligible = []models.EligiblePayable{{LecturerID: "l1", CourseID: "c1", Session: "2023/2024", Semester: "First", Amount: 150000}}
	repo.createErr = errors.New("insert payment: connection reset")
	svc, notifier, dashboard := newPaymentFixture(repo)

	out, err := svc.Transition(context.Background(), dto.PaymentActionRequest{Action: "GENERATE"}, testActor())
	require.Error(t, err)
	assert.Nil(t, out)
	assert.ErrorIs(t, err, appErrors.ErrTransitionFailed)
	assert.Empty(t, repo.payments)
	assert.Empty(t, notifier.sent)
	assert.Zero(t, dashboard.calls)
}

type racingPaymentRepo struct {
	*stubPaymentRepo
	raced string
}

func (r *racingPaymentRepo) TransitionBatch(ctx context.Context, transitions []repository.PaymentTransition) ([]string, error) {
	r.payments[r.raced].Status = models.PaymentStatusApproved
	return r.stubPaymentRepo.TransitionBatch(ctx, transitions)
}

func TestPaymentExportSchedule(t *testing.T) {
	repo := newStubPaymentRepo()
	repo.schedule = []models.PaymentScheduleRow{
		{LecturerName: "Dr. Ada", StaffNumber: "SN-01", CourseCode: "CSC801", Session: "2023/2024", Semester: "First", Amount: 150000, Status: models.PaymentStatusApproved},
		{LecturerName: "Prof. Obi", StaffNumber: "SN-02", CourseCode: "CSC802", Session: "2023/2024", Semester: "First", Amount: 90050, Status: models.PaymentStatusPending},
	}
	svc, _, _ := newPaymentFixture(repo)

	file, err := svc.ExportSchedule(context.Background(), dto.PaymentQuery{}, "")
	require.NoError(t, err)
	assert.Equal(t, "payment-schedule-20240315.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)
	lines := strings.Split(strings.TrimSpace(string(file.Data)), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "Dr. Ada,SN-01,CSC801,2023/2024,First,1500.00,APPROVED", lines[1])
	assert.Equal(t, "Total,,,,,2400.50,", lines[3])

	pdf, err := svc.ExportSchedule(context.Background(), dto.PaymentQuery{Session: "2023/2024"}, "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.True(t, strings.HasPrefix(string(pdf.Data), "%PDF"))

	_, err = svc.ExportSchedule(context.Background(), dto.PaymentQuery{}, "xlsx")
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.05", formatAmount(5))
	assert.Equal(t, "-12.30", formatAmount(-1230))
}
