package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func newRunRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestRunRepositoryCreateVersioned(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(version), 0) + 1 FROM timetable_runs WHERE dataset_id = $1")).
		WithArgs("digest-1").
		WillReturnRows(sqlmock.NewRows([]string{"next"}).AddRow(3))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_runs")).
		WithArgs(sqlmock.AnyArg(), "digest-1", 3, string(models.TimetableRunStatusDraft), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	payload := &models.TimetableRun{
		DatasetID: "digest-1",
		Meta:      types.JSONText(`{"sections":3}`),
	}
	err := repo.CreateVersioned(context.Background(), nil, payload)
	require.NoError(t, err)
	assert.Equal(t, 3, payload.Version)
	assert.NotEmpty(t, payload.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryCreateVersionedRequiresDataset(t *testing.T) {
	db, _, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	err := repo.CreateVersioned(context.Background(), nil, &models.TimetableRun{})
	assert.Error(t, err)
}

func TestRunRepositoryListByDataset(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	rows := sqlmock.NewRows([]string{"id", "dataset_id", "version", "status", "meta", "created_at", "updated_at"}).
		AddRow("run-2", "digest-1", 2, string(models.TimetableRunStatusDraft), types.JSONText(`{}`), time.Now(), time.Now()).
		AddRow("run-1", "digest-1", 1, string(models.TimetableRunStatusPublished), types.JSONText(`{}`), time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, dataset_id, version, status, meta, created_at, updated_at")).
		WithArgs("digest-1").
		WillReturnRows(rows)

	list, err := repo.ListByDataset(context.Background(), "digest-1")
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, 2, list[0].Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryDeleteNotFound(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM timetable_runs WHERE id = $1")).
		WithArgs("run-1").
		WillReturnResult(sqlmock.NewResult(1, 0))

	err := repo.Delete(context.Background(), "run-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunRepositoryUpdateStatus(t *testing.T) {
	db, mock, cleanup := newRunRepoMock(t)
	defer cleanup()
	repo := NewRunRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE timetable_runs SET status = $1, updated_at = $2 WHERE id = $3")).
		WithArgs(string(models.TimetableRunStatusPublished), sqlmock.AnyArg(), "run-1").
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.UpdateStatus(context.Background(), nil, "run-1", models.TimetableRunStatusPublished, nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
