package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sit-council/council-api/internal/models"
)

func taskColumns() []string {
	return []string{"id", "title", "description", "meeting_id", "assigned_to", "assigned_by", "deadline", "status", "completion_date", "created_at", "updated_at"}
}

func TestTaskRepositoryUpdateStatusCompletedStampsDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	at := time.Date(2026, 3, 20, 15, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(taskColumns()).
		AddRow("task-1", "Publish minutes", nil, nil, "member-1", nil, nil, "completed", at, at.Add(-time.Hour), at)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks SET status = $2, completion_date = $3, updated_at = $4 WHERE id = $1")).
		WithArgs("task-1", models.TaskStatusCompleted, &at, at).
		WillReturnRows(rows)

	task, err := repo.UpdateStatus(context.Background(), "task-1", models.TaskStatusCompleted, at)
	require.NoError(t, err)
	require.NotNil(t, task)
	require.NotNil(t, task.CompletionDate)
	assert.Equal(t, at, *task.CompletionDate)
}

func TestTaskRepositoryUpdateStatusReopenClearsDate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	at := time.Date(2026, 3, 21, 9, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(taskColumns()).
		AddRow("task-1", "Publish minutes", nil, nil, "member-1", nil, nil, "in-progress", nil, at.Add(-2*time.Hour), at)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks SET status = $2")).
		WithArgs("task-1", models.TaskStatusInProgress, nil, at).
		WillReturnRows(rows)

	task, err := repo.UpdateStatus(context.Background(), "task-1", models.TaskStatusInProgress, at)
	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Nil(t, task.CompletionDate)
}

func TestTaskRepositoryUpdateStatusNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE tasks SET status = $2")).
		WillReturnError(sql.ErrNoRows)

	task, err := repo.UpdateStatus(context.Background(), "task-99", models.TaskStatusCompleted, time.Now())
	require.NoError(t, err)
	assert.Nil(t, task)
}

func TestTaskRepositoryCountForMemberWindowed(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	completed := models.TaskStatusCompleted

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM tasks WHERE assigned_to = $1 AND status = $2 AND created_at >= $3 AND created_at < $4")).
		WithArgs("member-1", completed, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := repo.CountForMember(context.Background(), "member-1", models.TaskCountFilter{
		Status:        &completed,
		CreatedFrom:   &from,
		CreatedBefore: &to,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestTaskRepositoryCompletionCountsOrdering(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTaskRepository(db)

	from := time.Date(2026, 3, 8, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"member_id", "tasks_completed"}).
		AddRow("member-2", 4).
		AddRow("member-5", 4).
		AddRow("member-1", 1)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY tasks_completed DESC, member_id ASC")).
		WithArgs(models.TaskStatusCompleted, from, to).
		WillReturnRows(rows)

	counts, err := repo.CompletionCounts(context.Background(), from, to)
	require.NoError(t, err)
	require.Len(t, counts, 3)
	assert.Equal(t, "member-2", counts[0].MemberID)
	assert.Equal(t, 4, counts[0].TasksCompleted)
}
