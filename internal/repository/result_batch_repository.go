package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/academic-portal-api/internal/models"
)

const resultBatchColumns = `id, course_id, session, semester, status, approved_by, approved_at, released_at, rejected_at, rejection_reason, created_at, updated_at`

// ResultBatchTransition describes a conditional status change. Only the stamps
// that belong to To are expected to be set.
type ResultBatchTransition struct {
	ID              string              `db:"id"`
	From            models.ResultStatus `db:"from_status"`
	To              models.ResultStatus `db:"to_status"`
	ApprovedBy      *string             `db:"approved_by"`
	ApprovedAt      *time.Time          `db:"approved_at"`
	ReleasedAt      *time.Time          `db:"released_at"`
	RejectedAt      *time.Time          `db:"rejected_at"`
	RejectionReason *string             `db:"rejection_reason"`
	UpdatedAt       time.Time           `db:"updated_at"`
}

// ResultBatchRepository persists course result batches.
type ResultBatchRepository struct {
	db *sqlx.DB
}

// NewResultBatchRepository constructs a ResultBatchRepository.
func NewResultBatchRepository(db *sqlx.DB) *ResultBatchRepository {
	return &ResultBatchRepository{db: db}
}

// FindByKey returns the batch for a course/session/semester or sql.ErrNoRows.
func (r *ResultBatchRepository) FindByKey(ctx context.Context, key models.ResultBatchKey) (*models.ResultBatch, error) {
	query := `SELECT ` + resultBatchColumns + ` FROM result_batches WHERE course_id = $1 AND session = $2 AND semester = $3 LIMIT 1`
	var batch models.ResultBatch
	if err := r.db.GetContext(ctx, &batch, query, key.CourseID, key.Session, key.Semester); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find result batch: %w", err)
	}
	return &batch, nil
}

// CountUploadedResults counts the individual grades lecturers uploaded for key.
func (r *ResultBatchRepository) CountUploadedResults(ctx context.Context, key models.ResultBatchKey) (int, error) {
	const query = `SELECT COUNT(*) FROM course_results WHERE course_id = $1 AND session = $2 AND semester = $3`
	var count int
	if err := r.db.GetContext(ctx, &count, query, key.CourseID, key.Session, key.Semester); err != nil {
		return 0, fmt.Errorf("count uploaded results: %w", err)
	}
	return count, nil
}

// Create inserts a batch. A concurrent insert for the same key fails on the
// (course_id, session, semester) unique index.
func (r *ResultBatchRepository) Create(ctx context.Context, batch *models.ResultBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = now
	}
	batch.UpdatedAt = now
	const query = `INSERT INTO result_batches (id, course_id, session, semester, status, created_at, updated_at)
VALUES (:id, :course_id, :session, :semester, :status, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, batch); err != nil {
		return fmt.Errorf("create result batch: %w", err)
	}
	return nil
}

// Transition applies t only while the batch is still in t.From; otherwise it
// returns sql.ErrNoRows.
func (r *ResultBatchRepository) Transition(ctx context.Context, t ResultBatchTransition) error {
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = time.Now().UTC()
	}
	const query = `UPDATE result_batches SET status = :to_status,
approved_by = COALESCE(:approved_by, approved_by),
approved_at = COALESCE(:approved_at, approved_at),
released_at = COALESCE(:released_at, released_at),
rejected_at = COALESCE(:rejected_at, rejected_at),
rejection_reason = COALESCE(:rejection_reason, rejection_reason),
updated_at = :updated_at
WHERE id = :id AND status = :from_status`
	result, err := r.db.NamedExecContext(ctx, query, t)
	if err != nil {
		return fmt.Errorf("transition result batch: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check result batch rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// List returns batches matching filter with the total count.
func (r *ResultBatchRepository) List(ctx context.Context, filter models.ResultBatchFilter) ([]models.ResultBatch, int, error) {
	conditions := []string{"1=1"}
	var args []interface{}

	if len(filter.Status) > 0 {
		statuses := make([]string, len(filter.Status))
		for i, s := range filter.Status {
			statuses[i] = string(s)
		}
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", len(args)+1))
		args = append(args, pq.Array(statuses))
	}
	if filter.CourseID != "" {
		conditions = append(conditions, fmt.Sprintf("course_id = $%d", len(args)+1))
		args = append(args, filter.CourseID)
	}
	if filter.Session != "" {
		conditions = append(conditions, fmt.Sprintf("session = $%d", len(args)+1))
		args = append(args, filter.Session)
	}
	if filter.Semester != "" {
		conditions = append(conditions, fmt.Sprintf("semester = $%d", len(args)+1))
		args = append(args, filter.Semester)
	}

	base := "FROM result_batches WHERE " + strings.Join(conditions, " AND ")
	limit, offset := clampPage(filter.Limit, filter.Offset)
	query := fmt.Sprintf("SELECT %s %s ORDER BY updated_at DESC LIMIT %d OFFSET %d", resultBatchColumns, base, limit, offset)

	var batches []models.ResultBatch
	if err := r.db.SelectContext(ctx, &batches, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list result batches: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) "+base, args...); err != nil {
		return nil, 0, fmt.Errorf("count result batches: %w", err)
	}
	return batches, total, nil
}

// CountByStatus groups result batches by status.
func (r *ResultBatchRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	return countByStatus(ctx, r.db, "result_batches")
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
