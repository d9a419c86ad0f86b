package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sit-council/council-api/internal/models"
	appErrors "github.com/sit-council/council-api/pkg/errors"
)

type fakeTaskStore struct {
	created *models.Task
	task    *models.Task
	updated *models.Task
	status  models.TaskStatus
}

func (f *fakeTaskStore) Create(_ context.Context, task *models.Task) (*models.Task, error) {
	if task.ID == "" {
		task.ID = "task-1"
	}
	f.created = task
	return task, nil
}

func (f *fakeTaskStore) GetByID(context.Context, string) (*models.Task, error) {
	return f.task, nil
}

func (f *fakeTaskStore) UpdateStatus(_ context.Context, _ string, status models.TaskStatus, _ time.Time) (*models.Task, error) {
	f.status = status
	return f.updated, nil
}

func (f *fakeTaskStore) List(context.Context, models.TaskFilter) ([]models.Task, int, error) {
	return nil, 0, nil
}

func TestTaskCreateDispatchesRecompute(t *testing.T) {
	store := &fakeTaskStore{}
	queue := &fakeQueue{}
	svc := NewTaskService(store, &fakeMembers{exists: true}, queue, nil, zap.NewNop())

	task, err := svc.Create(context.Background(), CreateTaskRequest{
		Title:      "Publish minutes",
		AssignedTo: "member-1",
	}, "member-2")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusPending, task.Status)
	require.NotNil(t, task.AssignedBy)
	assert.Equal(t, "member-2", *task.AssignedBy)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, "member-1", queue.jobs[0].Payload)
}

func TestTaskCreateUnknownAssignee(t *testing.T) {
	svc := NewTaskService(&fakeTaskStore{}, &fakeMembers{exists: false}, &fakeQueue{}, nil, zap.NewNop())

	_, err := svc.Create(context.Background(), CreateTaskRequest{
		Title:      "Publish minutes",
		AssignedTo: "member-99",
	}, "")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTaskUpdateStatusDispatchesRecompute(t *testing.T) {
	store := &fakeTaskStore{updated: &models.Task{ID: "task-1", AssignedTo: "member-1", Status: models.TaskStatusCompleted}}
	queue := &fakeQueue{}
	svc := NewTaskService(store, &fakeMembers{exists: true}, queue, nil, zap.NewNop())

	task, err := svc.UpdateStatus(context.Background(), "task-1", "completed")
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, task.Status)
	assert.Equal(t, models.TaskStatusCompleted, store.status)
	require.Len(t, queue.jobs, 1)
}

func TestTaskUpdateStatusRejectsUnknown(t *testing.T) {
	svc := NewTaskService(&fakeTaskStore{}, &fakeMembers{exists: true}, &fakeQueue{}, nil, zap.NewNop())

	_, err := svc.UpdateStatus(context.Background(), "task-1", "abandoned")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidStatus.Code, appErrors.FromError(err).Code)
}

func TestTaskUpdateStatusNotFound(t *testing.T) {
	queue := &fakeQueue{}
	svc := NewTaskService(&fakeTaskStore{}, &fakeMembers{exists: true}, queue, nil, zap.NewNop())

	_, err := svc.UpdateStatus(context.Background(), "task-99", "completed")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
	assert.Empty(t, queue.jobs)
}
