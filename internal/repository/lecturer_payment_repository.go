package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/academic-portal-api/internal/models"
)

const paymentColumns = `id, lecturer_id, course_id, session, semester, amount, status, approved_by, approved_at, paid_by, paid_at, payment_reference, created_at, updated_at`

// PaymentTransition describes a conditional payment status change.
type PaymentTransition struct {
	ID               string               `db:"id"`
	From             models.PaymentStatus `db:"from_status"`
	To               models.PaymentStatus `db:"to_status"`
	ApprovedBy       *string              `db:"approved_by"`
	ApprovedAt       *time.Time           `db:"approved_at"`
	PaidBy           *string              `db:"paid_by"`
	PaidAt           *time.Time           `db:"paid_at"`
	PaymentReference *string              `db:"payment_reference"`
	UpdatedAt        time.Time            `db:"updated_at"`
}

// LecturerPaymentRepository persists lecturer payments.
type LecturerPaymentRepository struct {
	db *sqlx.DB
}

// NewLecturerPaymentRepository constructs a LecturerPaymentRepository.
func NewLecturerPaymentRepository(db *sqlx.DB) *LecturerPaymentRepository {
	return &LecturerPaymentRepository{db: db}
}

// ListByIDs returns the payments among ids that exist.
func (r *LecturerPaymentRepository) ListByIDs(ctx context.Context, ids []string) ([]models.LecturerPayment, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT ` + paymentColumns + ` FROM lecturer_payments WHERE id = ANY($1)`
	var payments []models.LecturerPayment
	if err := r.db.SelectContext(ctx, &payments, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list payments by ids: %w", err)
	}
	return payments, nil
}

// ListEligible reads the eligibility view, optionally narrowed to a session and semester.
func (r *LecturerPaymentRepository) ListEligible(ctx context.Context, session, semester string) ([]models.EligiblePayable, error) {
	query := `SELECT lecturer_id, course_id, session, semester, amount FROM eligible_lecturer_payables WHERE ($1::text = '' OR session = $1) AND ($2::text = '' OR semester = $2) ORDER BY lecturer_id, course_id`
	var payables []models.EligiblePayable
	if err := r.db.SelectContext(ctx, &payables, query, session, semester); err != nil {
		return nil, fmt.Errorf("list eligible payables: %w", err)
	}
	return payables, nil
}

// CreateBatch inserts PENDING payments in one transaction, skipping any that
// already exist for the same lecturer, course, session and semester. It returns
// the ids of the rows written. Nothing is kept when any insert fails.
func (r *LecturerPaymentRepository) CreateBatch(ctx context.Context, payments []*models.LecturerPayment) (created []string, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin payment generation: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	created = make([]string, 0, len(payments))
	for _, payment := range payments {
		var ok bool
		if ok, err = createIfAbsent(ctx, tx, payment); err != nil {
			return nil, err
		}
		if ok {
			created = append(created, payment.ID)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment generation: %w", err)
	}
	return created, nil
}

// TransitionBatch applies every transition in one transaction. A payment no
// longer in its From status is left out of applied; any other failure rolls
// the whole batch back.
func (r *LecturerPaymentRepository) TransitionBatch(ctx context.Context, transitions []PaymentTransition) (applied []string, err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin payment transition: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	applied = make([]string, 0, len(transitions))
	for _, t := range transitions {
		var ok bool
		if ok, err = transitionPayment(ctx, tx, t); err != nil {
			return nil, err
		}
		if ok {
			applied = append(applied, t.ID)
		}
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit payment transition: %w", err)
	}
	return applied, nil
}

func createIfAbsent(ctx context.Context, exec sqlx.ExtContext, payment *models.LecturerPayment) (bool, error) {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = now
	}
	payment.UpdatedAt = now
	const query = `INSERT INTO lecturer_payments (id, lecturer_id, course_id, session, semester, amount, status, created_at, updated_at)
VALUES (:id, :lecturer_id, :course_id, :session, :semester, :amount, :status, :created_at, :updated_at)
ON CONFLICT (lecturer_id, course_id, session, semester) DO NOTHING`
	result, err := sqlx.NamedExecContext(ctx, exec, query, payment)
	if err != nil {
		return false, fmt.Errorf("create lecturer payment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check created payment rows: %w", err)
	}
	return affected > 0, nil
}

// transitionPayment reports false when the payment was no longer in t.From.
func transitionPayment(ctx context.Context, exec sqlx.ExtContext, t PaymentTransition) (bool, error) {
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = time.Now().UTC()
	}
	const query = `UPDATE lecturer_payments SET status = :to_status,
approved_by = COALESCE(:approved_by, approved_by),
approved_at = COALESCE(:approved_at, approved_at),
paid_by = COALESCE(:paid_by, paid_by),
paid_at = COALESCE(:paid_at, paid_at),
payment_reference = COALESCE(:payment_reference, payment_reference),
updated_at = :updated_at
WHERE id = :id AND status = :from_status`
	result, err := sqlx.NamedExecContext(ctx, exec, query, t)
	if err != nil {
		return false, fmt.Errorf("transition lecturer payment %s: %w", t.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("check payment rows: %w", err)
	}
	return affected > 0, nil
}

// List returns payments matching filter with the total count.
func (r *LecturerPaymentRepository) List(ctx context.Context, filter models.PaymentFilter) ([]models.LecturerPayment, int, error) {
	where, args := paymentConditions(filter, "")
	base := "FROM lecturer_payments WHERE " + where
	limit, offset := clampPage(filter.Limit, filter.Offset)
	query := fmt.Sprintf("SELECT %s %s ORDER BY created_at DESC LIMIT %d OFFSET %d", paymentColumns, base, limit, offset)

	var payments []models.LecturerPayment
	if err := r.db.SelectContext(ctx, &payments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list lecturer payments: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count lecturer payments: %w", err)
	}
	return payments, total, nil
}

// ScheduleRows returns every payment matching filter joined with lecturer and
// course details for export.
func (r *LecturerPaymentRepository) ScheduleRows(ctx context.Context, filter models.PaymentFilter) ([]models.PaymentScheduleRow, error) {
	where, args := paymentConditions(filter, "p.")
	query := `SELECT p.id AS payment_id, l.full_name AS lecturer_name, l.staff_number, c.code AS course_code, p.session, p.semester, p.amount, p.status
FROM lecturer_payments p
JOIN lecturers l ON l.id = p.lecturer_id
JOIN courses c ON c.id = p.course_id
WHERE ` + where + ` ORDER BY l.full_name, c.code`
	var rows []models.PaymentScheduleRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list payment schedule: %w", err)
	}
	return rows, nil
}

// CountByStatus groups payments by status.
func (r *LecturerPaymentRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	return countByStatus(ctx, r.db, "lecturer_payments")
}

func paymentConditions(filter models.PaymentFilter, prefix string) (string, []interface{}) {
	conditions := []string{"1=1"}
	var args []interface{}
	if len(filter.Status) > 0 {
		statuses := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			statuses[i] = string(s)
		}
		conditions = append(conditions, fmt.Sprintf("%sstatus = ANY($%d)", prefix, len(args)+1))
		args = append(args, pq.Array(statuses))
	}
	if filter.LecturerID != "" {
		conditions = append(conditions, fmt.Sprintf("%slecturer_id = $%d", prefix, len(args)+1))
		args = append(args, filter.LecturerID)
	}
	if filter.Session != "" {
		conditions = append(conditions, fmt.Sprintf("%ssession = $%d", prefix, len(args)+1))
		args = append(args, filter.Session)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("%ssemester = $%d", prefix, len(args)+1))
		args = append(args, filter.Semester)
	}
	return strings.Join(conditions, " AND "), args
}
