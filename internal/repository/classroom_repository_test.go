package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kotkala/EduConnectSystem-sub009/internal/models"
)

func TestClassroomRepositoryListSearch(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM classrooms WHERE 1=1 AND building = $1 AND (LOWER(code) LIKE $2 OR LOWER(name) LIKE $2) ORDER BY code ASC LIMIT 20 OFFSET 0")).
		WithArgs("A", "%lab%").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "building", "capacity", "created_at", "updated_at"}).
			AddRow("r1", "A-LAB", "Physics lab", "A", 40, now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM classrooms")).
		WithArgs("A", "%lab%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	rooms, total, err := repo.List(context.Background(), models.ClassroomFilter{Building: "A", Search: "LAB"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rooms, 1)
	assert.Equal(t, "A-LAB", rooms[0].Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryExistsByCode(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM classrooms WHERE LOWER(code) = LOWER($1) LIMIT 1")).
		WithArgs("101").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(1))

	exists, err := repo.ExistsByCode(context.Background(), "101", "")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassroomRepositoryCountEvents(t *testing.T) {
	db, mock, cleanup := newTimetableRepoMock(t)
	defer cleanup()
	repo := NewClassroomRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM timetable_events WHERE classroom_id = $1")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountEvents(context.Background(), "r1")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
