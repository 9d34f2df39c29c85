package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/academic-portal-api/internal/models"
)

const applicantColumns = `id, full_name, email, phone, programme_id, admission_session_id, status, acceptance_fee_paid, acceptance_payment_reference, migrated_at, created_at, updated_at`

// ApplicantRepository reads applicants. Admission review writes happen elsewhere.
type ApplicantRepository struct {
	db *sqlx.DB
}

// NewApplicantRepository constructs an ApplicantRepository.
func NewApplicantRepository(db *sqlx.DB) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

// FindByID returns an applicant or sql.ErrNoRows.
func (r *ApplicantRepository) FindByID(ctx context.Context, id string) (*models.Applicant, error) {
	query := `SELECT ` + applicantColumns + ` FROM applicants WHERE id = $1 LIMIT 1`
	var applicant models.Applicant
	if err := r.db.GetContext(ctx, &applicant, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find applicant: %w", err)
	}
	return &applicant, nil
}

// CountByStatus groups applicants by status.
func (r *ApplicantRepository) CountByStatus(ctx context.Context) ([]models.StatusCount, error) {
	return countByStatus(ctx, r.db, "applicants")
}

// countByStatus is shared by every status-bearing table. table is never user input.
func countByStatus(ctx context.Context, db sqlx.QueryerContext, table string) ([]models.StatusCount, error) {
	query := fmt.Sprintf("SELECT status, COUNT(*) AS total FROM %s GROUP BY status", table)
	var counts []models.StatusCount
	if err := sqlx.SelectContext(ctx, db, &counts, query); err != nil {
		return nil, fmt.Errorf("count %s by status: %w", table, err)
	}
	return counts, nil
}
