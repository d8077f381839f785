package repository

import (
	"context"
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

func newEntryRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestEntryRepositoryInsertBatch(t *testing.T) {
	db, mock, cleanup := newEntryRepoMock(t)
	defer cleanup()
	repo := NewEntryRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO timetable_entries")).
		WillReturnResult(sqlmock.NewResult(1, 2))

	entries := []models.TimetableEntry{
		{RunID: "run-1", Section: "A", CourseID: "c1", StartHour: 7, Students: types.JSONText(`["s1"]`)},
		{RunID: "run-1", Section: "A", CourseID: "c2", StartHour: 8, Students: types.JSONText(`["s1"]`)},
	}
	err := repo.InsertBatch(context.Background(), nil, entries)
	require.NoError(t, err)
	assert.NotEmpty(t, entries[0].ID)
	assert.NotEmpty(t, entries[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepositoryInsertBatchEmpty(t *testing.T) {
	db, mock, cleanup := newEntryRepoMock(t)
	defer cleanup()
	repo := NewEntryRepository(db)

	require.NoError(t, repo.InsertBatch(context.Background(), nil, nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryRepositoryInsertBatchMissingRun(t *testing.T) {
	db, _, cleanup := newEntryRepoMock(t)
	defer cleanup()
	repo := NewEntryRepository(db)

	err := repo.InsertBatch(context.Background(), nil, []models.TimetableEntry{{Section: "A"}})
	assert.Error(t, err)
}

func TestEntryRepositoryListByRun(t *testing.T) {
	db, mock, cleanup := newEntryRepoMock(t)
	defer cleanup()
	repo := NewEntryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "run_id", "section", "course_id", "course_name", "teacher_id", "teacher_name", "room_id", "room_name", "start_hour", "students", "created_at"}).
		AddRow("e1", "run-1", "A", "c1", "Math", "t1", "Ms. Rose", "r1", "Room 101", 7, types.JSONText(`["s1","s2"]`), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM timetable_entries WHERE run_id = $1 ORDER BY section ASC, start_hour ASC")).
		WithArgs("run-1").
		WillReturnRows(rows)

	entries, err := repo.ListByRun(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 7, entries[0].StartHour)
	assert.NoError(t, mock.ExpectationsWereMet())
}
