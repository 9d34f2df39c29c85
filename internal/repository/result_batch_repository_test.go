package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/academic-portal-api/internal/models"
)

var testBatchKey = models.ResultBatchKey{CourseID: "CSC801", Session: "2025/2026", Semester: "FIRST"}

func TestResultBatchRepositoryFindByKey(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResultBatchRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "course_id", "session", "semester", "status", "approved_by", "approved_at", "released_at", "rejected_at", "rejection_reason", "created_at", "updated_at"}).
		AddRow("batch-1", "CSC801", "2025/2026", "FIRST", "Approved", "hop-1", now, nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM result_batches WHERE course_id = $1 AND session = $2 AND semester = $3 LIMIT 1")).
		WithArgs("CSC801", "2025/2026", "FIRST").
		WillReturnRows(rows)

	batch, err := repo.FindByKey(context.Background(), testBatchKey)
	require.NoError(t, err)
	assert.Equal(t, models.ResultStatusApproved, batch.Status)
	assert.Equal(t, testBatchKey, batch.Key())
	require.NotNil(t, batch.ApprovedBy)
	assert.Nil(t, batch.RejectionReason)
}

func TestResultBatchRepositoryCountUploadedResults(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResultBatchRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM course_results WHERE course_id = $1 AND session = $2 AND semester = $3")).
		WithArgs("CSC801", "2025/2026", "FIRST").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))

	count, err := repo.CountUploadedResults(context.Background(), testBatchKey)
	require.NoError(t, err)
	assert.Equal(t, 12, count)
}

func TestResultBatchRepositoryTransitionIsConditional(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResultBatchRepository(db)

	now := time.Now().UTC()
	transition := ResultBatchTransition{
		ID:         "batch-1",
		From:       models.ResultStatusApproved,
		To:         models.ResultStatusReleased,
		ReleasedAt: &now,
		UpdatedAt:  now,
	}

	mock.ExpectExec(regexp.QuoteMeta("UPDATE result_batches SET status = $1")).
		WithArgs(models.ResultStatusReleased, nil, nil, now, nil, nil, now, "batch-1", models.ResultStatusApproved).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE result_batches SET status = $1")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, repo.Transition(context.Background(), transition))
	assert.ErrorIs(t, repo.Transition(context.Background(), transition), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultBatchRepositoryList(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewResultBatchRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "course_id", "session", "semester", "status", "approved_by", "approved_at", "released_at", "rejected_at", "rejection_reason", "created_at", "updated_at"}).
		AddRow("batch-1", "CSC801", "2025/2026", "FIRST", "Pending", nil, nil, nil, nil, nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM result_batches WHERE 1=1 AND status = ANY($1) AND session = $2 ORDER BY updated_at DESC LIMIT 20 OFFSET 0")).
		WithArgs(sqlmock.AnyArg(), "2025/2026").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM result_batches WHERE 1=1 AND status = ANY($1) AND session = $2")).
		WithArgs(sqlmock.AnyArg(), "2025/2026").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	batches, total, err := repo.List(context.Background(), models.ResultBatchFilter{
		Status:  []models.ResultStatus{models.ResultStatusPending},
		Session: "2025/2026",
	})
	require.NoError(t, err)
	assert.Len(t, batches, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}
