package repository

import (
	"context"
	"testing"
	"time"

	"learnhub/internal/domain/progress/model"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)
	return db, mock
}

func TestUpsert_KeepsCompletion(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectExec(`INSERT INTO "user_progress" .* ON CONFLICT \("user_id","chapter_id"\) DO UPDATE SET .*"is_completed"=user_progress.is_completed OR excluded.is_completed.*"completed_at"=COALESCE\(user_progress.completed_at, excluded.completed_at\)`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := NewProgressRepository(db).Upsert(context.Background(), &model.UserProgress{
		UserID: "u1", CourseID: "c1", ChapterID: "ch1", Progress: 30, LastWatchedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListByCourse(t *testing.T) {
	db, mock := newMockDB(t)
	mock.ExpectQuery(`SELECT \* FROM "user_progress" WHERE user_id = \$1 AND course_id = \$2 ORDER BY last_watched_at DESC`).
		WithArgs("u1", "c1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "chapter_id", "is_completed"}).
			AddRow("p1", "ch2", false).
			AddRow("p2", "ch1", true))

	list, err := NewProgressRepository(db).ListByCourse(context.Background(), "u1", "c1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "ch2", list[0].ChapterID)
	assert.True(t, list[1].IsCompleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
