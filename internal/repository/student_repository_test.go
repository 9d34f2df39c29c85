package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-portal-api/internal/models"
	"github.com/noah-isme/academic-portal-api/pkg/database"
)

func TestStudentRepositoryCreateForApplicant(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").
		WithArgs(sqlmock.AnyArg(), "app-1", "prog-1", "PG/2026/00001", "REG2026000001", models.StudentStatusActive, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE applicants SET migrated_at = $2, updated_at = $2 WHERE id = $1")).
		WithArgs("app-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	student := &models.Student{
		ApplicantID:        "app-1",
		ProgrammeID:        "prog-1",
		MatricNumber:       "PG/2026/00001",
		RegistrationNumber: "REG2026000001",
		Status:             models.StudentStatusActive,
	}
	require.NoError(t, repo.CreateForApplicant(context.Background(), student))
	assert.NotEmpty(t, student.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryCreateForApplicantDuplicate(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO students").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "students_applicant_id_key"})
	mock.ExpectRollback()

	err := repo.CreateForApplicant(context.Background(), &models.Student{ApplicantID: "app-1", Status: models.StudentStatusActive})
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentRepositoryFindByApplicantID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "applicant_id", "programme_id", "matric_number", "registration_number", "status", "graduated_at", "created_at", "updated_at"}).
		AddRow("stu-1", "app-1", "prog-1", "PG/2026/00001", "REG2026000001", "ACTIVE", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM students WHERE applicant_id = $1 LIMIT 1")).
		WithArgs("app-1").
		WillReturnRows(rows)

	student, err := repo.FindByApplicantID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, "PG/2026/00001", student.MatricNumber)
	assert.Equal(t, models.StudentStatusActive, student.Status)
}

func TestStudentRepositoryNextSerial(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT nextval('student_number_seq')")).
		WillReturnRows(sqlmock.NewRows([]string{"nextval"}).AddRow(42))

	serial, err := repo.NextSerial(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(42), serial)
}

func TestStudentRepositoryMarkGraduated(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	query := regexp.QuoteMeta("UPDATE students SET status = $2, graduated_at = $3, updated_at = $3 WHERE id = $1 AND status <> $2")
	mock.ExpectExec(query).
		WithArgs("stu-1", models.StudentStatusGraduated, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(query).
		WithArgs("stu-1", models.StudentStatusGraduated, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.MarkGraduated(context.Background(), "stu-1", time.Now()))
	assert.ErrorIs(t, repo.MarkGraduated(context.Background(), "stu-1", time.Now()), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
