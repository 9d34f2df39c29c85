package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-portal-api/internal/models"
)

var paymentTestColumns = []string{"id", "lecturer_id", "course_id", "session", "semester", "amount", "status", "approved_by", "approved_at", "paid_by", "paid_at", "payment_reference", "created_at", "updated_at"}

func TestLecturerPaymentRepositoryListByIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLecturerPaymentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(paymentTestColumns).
		AddRow("p1", "lec-1", "CSC801", "2025/2026", "FIRST", 150000, "PENDING", nil, nil, nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM lecturer_payments WHERE id = ANY($1)")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(rows)

	payments, err := repo.ListByIDs(context.Background(), []string{"p1", "p9"})
	require.NoError(t, err)
	require.Len(t, payments, 1)
	assert.Equal(t, models.PaymentStatusPending, payments[0].Status)
	assert.Equal(t, int64(150000), payments[0].Amount)

	none, err := repo.ListByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, none)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLecturerPaymentRepositoryListEligible(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLecturerPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM eligible_lecturer_payables")).
		WithArgs("2025/2026", "").
		WillReturnRows(sqlmock.NewRows([]string{"lecturer_id", "course_id", "session", "semester", "amount"}).
			AddRow("lec-1", "CSC801", "2025/2026", "FIRST", 150000).
			AddRow("lec-2", "CSC802", "2025/2026", "SECOND", 90000))

	payables, err := repo.ListEligible(context.Background(), "2025/2026", "")
	require.NoError(t, err)
	assert.Len(t, payables, 2)
}

func TestLecturerPaymentRepositoryCreateBatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLecturerPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (lecturer_id, course_id, session, semester) DO NOTHING")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("ON CONFLICT (lecturer_id, course_id, session, semester) DO NOTHING")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	fresh := &models.LecturerPayment{LecturerID: "lec-1", CourseID: "CSC801", Session: "2025/2026", Semester: "FIRST", Amount: 150000, Status: models.PaymentStatusPending}
	existing := &models.LecturerPayment{LecturerID: "lec-2", CourseID: "CSC802", Session: "2025/2026", Semester: "FIRST", Amount: 90000, Status: models.PaymentStatusPending}
	created, err := repo.CreateBatch(context.Background(), []*models.LecturerPayment{fresh, existing})
	require.NoError(t, err)
	assert.Equal(t, []string{fresh.ID}, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLecturerPaymentRepositoryCreateBatchRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLecturerPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lecturer_payments")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO lecturer_payments")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	created, err := repo.CreateBatch(context.Background(), []*models.LecturerPayment{
		{LecturerID: "lec-1", CourseID: "CSC801", Status: models.PaymentStatusPending},
		{LecturerID: "lec-2", CourseID: "CSC802", Status: models.PaymentStatusPending},
	})
	require.Error(t, err)
	assert.Nil(t, created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLecturerPaymentRepositoryTransitionBatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLecturerPaymentRepository(db)

	now := time.Now().UTC()
	actor := "dcl-1"
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE lecturer_payments SET status = $1")).
		WithArgs(models.PaymentStatusApproved, actor, now, nil, nil, nil, now, "p1", models.PaymentStatusPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE lecturer_payments SET status = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	applied, err := repo.TransitionBatch(context.Background(), []PaymentTransition{
		{ID: "p1", From: models.PaymentStatusPending, To: models.PaymentStatusApproved, ApprovedBy: &actor, ApprovedAt: &now, UpdatedAt: now},
		{ID: "p2", From: models.PaymentStatusPending, To: models.PaymentStatusApproved, ApprovedBy: &actor, ApprovedAt: &now, UpdatedAt: now},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"p1"}, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLecturerPaymentRepositoryTransitionBatchRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLecturerPaymentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE lecturer_payments SET status = $1")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE lecturer_payments SET status = $1")).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	applied, err := repo.TransitionBatch(context.Background(), []PaymentTransition{
		{ID: "p1", From: models.PaymentStatusPending, To: models.PaymentStatusApproved},
		{ID: "p2", From: models.PaymentStatusPending, To: models.PaymentStatusApproved},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "p2")
	assert.Nil(t, applied)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLecturerPaymentRepositoryScheduleRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLecturerPaymentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE 1=1 AND p.status = ANY($1) ORDER BY l.full_name, c.code")).
		WithArgs(sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"payment_id", "lecturer_name", "staff_number", "course_code", "session", "semester", "amount", "status"}).
			AddRow("p1", "Dr. Ada", "STF-001", "CSC801", "2025/2026", "FIRST", 150000, "APPROVED"))

	rows, err := repo.ScheduleRows(context.Background(), models.PaymentFilter{Status: []models.PaymentStatus{models.PaymentStatusApproved}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "STF-001", rows[0].StaffNumber)
}
