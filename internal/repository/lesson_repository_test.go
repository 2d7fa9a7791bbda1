package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportedu/agenda-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func lessonRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "lesson_date", "start_time", "duration_minutes", "location", "sport_id", "teacher_id", "content_id", "created_at", "updated_at"}).
		AddRow("l1", "Treino de fundamentos", time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC), "09:00", 60, "Quadra 1", "s1", "t1", nil, time.Now(), time.Now())
}

func TestLessonRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, lesson_date, start_time, duration_minutes, location, sport_id, teacher_id, content_id, created_at, updated_at FROM lessons WHERE 1=1 ORDER BY lesson_date ASC, start_time ASC LIMIT 20 OFFSET 0")).
		WillReturnRows(lessonRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM lessons WHERE 1=1")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.LessonFilter{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryListFiltersByTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectQuery("SELECT id, title, lesson_date, .+ FROM lessons WHERE 1=1 AND teacher_id = \\$1").
		WithArgs("t1").
		WillReturnRows(lessonRows())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM lessons WHERE 1=1 AND teacher_id = $1")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.LessonFilter{TeacherID: "t1"})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryListByTeacherAndDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	day := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, lesson_date, start_time, duration_minutes, location, sport_id, teacher_id, content_id, created_at, updated_at FROM lessons WHERE teacher_id = $1 AND lesson_date = $2 ORDER BY start_time ASC")).
		WithArgs("t1", day).
		WillReturnRows(lessonRows())

	lessons, err := repo.ListByTeacherAndDate(context.Background(), "t1", day)
	require.NoError(t, err)
	require.Len(t, lessons, 1)
	assert.Equal(t, "09:00", lessons[0].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM lessons WHERE id = $1 LIMIT 1")).
		WithArgs("l1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(1))

	exists, err := repo.Exists(context.Background(), "l1")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM lessons WHERE id = $1 LIMIT 1")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}))

	exists, err = repo.Exists(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonRepositoryCreateAndDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectExec("INSERT INTO lessons").
		WithArgs(sqlmock.AnyArg(), "Treino de fundamentos", sqlmock.AnyArg(), "09:00", 60, "Quadra 1", "s1", "t1", nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	lesson := &models.Lesson{
		Title:           "Treino de fundamentos",
		Date:            time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC),
		StartTime:       "09:00",
		DurationMinutes: 60,
		Location:        "Quadra 1",
		SportID:         "s1",
		TeacherID:       "t1",
	}
	require.NoError(t, repo.Create(context.Background(), lesson))
	assert.NotEmpty(t, lesson.ID)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM lessons WHERE id = $1")).
		WithArgs(lesson.ID).
		WillReturnResult(sqlmock.NewResult(1, 1))

	require.NoError(t, repo.Delete(context.Background(), lesson.ID))
	assert.NoError(t, mock.ExpectationsWereMet())
}
