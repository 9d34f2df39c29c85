package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-portal-api/internal/models"
)

// AssignmentRepository reads lecturers and overwrites supervision and
// examination slots on student programmes.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// FindProgramme returns a student programme or sql.ErrNoRows.
func (r *AssignmentRepository) FindProgramme(ctx context.Context, id string) (*models.StudentProgramme, error) {
	const query = `SELECT id, student_id, programme_id, supervisor_id, internal_examiner1_id, internal_examiner2_id, external_examiner_id, updated_at FROM student_programmes WHERE id = $1 LIMIT 1`
	var programme models.StudentProgramme
	if err := r.db.GetContext(ctx, &programme, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find student programme: %w", err)
	}
	return &programme, nil
}

// FindLecturer returns a lecturer or sql.ErrNoRows.
func (r *AssignmentRepository) FindLecturer(ctx context.Context, id string) (*models.Lecturer, error) {
	const query = `SELECT id, staff_number, full_name, email, active FROM lecturers WHERE id = $1 LIMIT 1`
	var lecturer models.Lecturer
	if err := r.db.GetContext(ctx, &lecturer, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find lecturer: %w", err)
	}
	return &lecturer, nil
}

// UpdateSlot overwrites slot on the programme; a nil lecturerID clears it.
func (r *AssignmentRepository) UpdateSlot(ctx context.Context, programmeID string, slot models.AssignmentSlot, lecturerID *string) error {
	column, ok := slot.Column()
	if !ok {
		return fmt.Errorf("update assignment: unknown slot %q", slot)
	}
	query := fmt.Sprintf(`UPDATE student_programmes SET %s = $2, updated_at = $3 WHERE id = $1`, column)
	result, err := r.db.ExecContext(ctx, query, programmeID, lecturerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update %s: %w", column, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check assignment rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
