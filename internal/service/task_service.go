package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sit-council/council-api/internal/models"
	appErrors "github.com/sit-council/council-api/pkg/errors"
	"github.com/sit-council/council-api/pkg/jobs"
)

type taskStore interface {
	Create(ctx context.Context, task *models.Task) (*models.Task, error)
	GetByID(ctx context.Context, id string) (*models.Task, error)
	UpdateStatus(ctx context.Context, id string, status models.TaskStatus, at time.Time) (*models.Task, error)
	List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error)
}

// TaskService manages action items. Status changes feed the performance
// rollup, so mutations dispatch a recompute for the assignee.
type TaskService struct {
	repo      taskStore
	members   memberDirectory
	queue     recomputeDispatcher
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewTaskService constructs the task service.
func NewTaskService(repo taskStore, members memberDirectory, queue recomputeDispatcher, validate *validator.Validate, logger *zap.Logger) *TaskService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &TaskService{repo: repo, members: members, queue: queue, validator: validate, logger: logger, now: time.Now}
	svc.validator.RegisterValidation("task_status", func(fl validator.FieldLevel) bool {
		return models.TaskStatus(strings.ToLower(fl.Field().String())).Valid()
	})
	return svc
}

// CreateTaskRequest describes the task creation payload.
type CreateTaskRequest struct {
	Title       string     `json:"title" validate:"required"`
	Description *string    `json:"description"`
	MeetingID   *string    `json:"meeting_id"`
	AssignedTo  string     `json:"assigned_to" validate:"required"`
	Deadline    *time.Time `json:"deadline"`
}

// Create persists a pending task and refreshes the assignee's rollup (the
// assigned count changed).
func (s *TaskService) Create(ctx context.Context, req CreateTaskRequest, assignedBy string) (*models.Task, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid task payload")
	}
	assigneeOK, err := s.members.Exists(ctx, req.AssignedTo)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve assignee")
	}
	if !assigneeOK {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "assignee not found")
	}
	task := &models.Task{
		Title:       strings.TrimSpace(req.Title),
		Description: req.Description,
		MeetingID:   req.MeetingID,
		AssignedTo:  req.AssignedTo,
		Deadline:    req.Deadline,
		Status:      models.TaskStatusPending,
	}
	if assignedBy != "" {
		task.AssignedBy = &assignedBy
	}
	stored, err := s.repo.Create(ctx, task)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create task")
	}
	s.dispatchRecompute(stored.ID, stored.AssignedTo)
	return stored, nil
}

// UpdateStatus transitions a task and refreshes the assignee's rollup.
// Completion stamps the completion date.
func (s *TaskService) UpdateStatus(ctx context.Context, id, status string) (*models.Task, error) {
	parsed := models.TaskStatus(strings.ToLower(status))
	if !parsed.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidStatus, "unsupported task status: "+status)
	}
	task, err := s.repo.UpdateStatus(ctx, id, parsed, s.now())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update task status")
	}
	if task == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "task not found")
	}
	s.dispatchRecompute(task.ID, task.AssignedTo)
	return task, nil
}

// List returns tasks matching the filter.
func (s *TaskService) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, *models.Pagination, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list tasks")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

func (s *TaskService) dispatchRecompute(taskID, memberID string) {
	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(jobs.Job{ID: taskID, Type: JobTypeRecompute, Payload: memberID}); err != nil {
		s.logger.Warn("performance recompute deferred",
			zap.String("member_id", memberID),
			zap.Error(err))
	}
}
