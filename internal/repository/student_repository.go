package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-portal-api/internal/models"
)

const studentColumns = `id, applicant_id, programme_id, matric_number, registration_number, status, graduated_at, created_at, updated_at`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// FindByApplicantID returns the student linked to an applicant or sql.ErrNoRows.
func (r *StudentRepository) FindByApplicantID(ctx context.Context, applicantID string) (*models.Student, error) {
	query := `SELECT ` + studentColumns + ` FROM students WHERE applicant_id = $1 LIMIT 1`
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, applicantID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student by applicant: %w", err)
	}
	return &student, nil
}

// NextSerial allocates the next student number from the shared sequence.
func (r *StudentRepository) NextSerial(ctx context.Context) (int64, error) {
	var serial int64
	if err := r.db.GetContext(ctx, &serial, `SELECT nextval('student_number_seq')`); err != nil {
		return 0, fmt.Errorf("allocate student number: %w", err)
	}
	return serial, nil
}

// CreateForApplicant inserts the student and stamps the applicant's migrated_at in
// one transaction. The unique index on students.applicant_id surfaces as a
// *pq.Error with code 23505 when a concurrent migration won.
func (r *StudentRepository) CreateForApplicant(ctx context.Context, student *models.Student) (err error) {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if student.CreatedAt.IsZero() {
		student.CreatedAt = now
	}
	student.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertQuery = `INSERT INTO students (id, applicant_id, programme_id, matric_number, registration_number, status, created_at, updated_at)
VALUES (:id, :applicant_id, :programme_id, :matric_number, :registration_number, :status, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insertQuery, student); err != nil {
		return fmt.Errorf("insert student: %w", err)
	}

	const stampQuery = `UPDATE applicants SET migrated_at = $2, updated_at = $2 WHERE id = $1`
	if _, err = tx.ExecContext(ctx, stampQuery, student.ApplicantID, now); err != nil {
		return fmt.Errorf("stamp applicant migration: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}
	return nil
}

// MarkGraduated moves a student to GRADUATED. It returns sql.ErrNoRows when the
// student is missing or was graduated concurrently.
func (r *StudentRepository) MarkGraduated(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE students SET status = $2, graduated_at = $3, updated_at = $3 WHERE id = $1 AND status <> $2`
	result, err := r.db.ExecContext(ctx, query, id, models.StudentStatusGraduated, at)
	if err != nil {
		return fmt.Errorf("graduate student: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check graduated student rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus groups students by status.
func (r *StudentRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	return countByStatus(ctx, r.db, "students")
}
