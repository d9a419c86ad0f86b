package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sit-council/council-api/internal/models"
)

// TaskRepository handles persistence for action items.
type TaskRepository struct {
	db *sqlx.DB
}

// NewTaskRepository constructs the repository.
func NewTaskRepository(db *sqlx.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task.
func (r *TaskRepository) Create(ctx context.Context, task *models.Task) (*models.Task, error) {
	now := time.Now().UTC()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Status == "" {
		task.Status = models.TaskStatusPending
	}
	query := `INSERT INTO tasks (id, title, description, meeting_id, assigned_to, assigned_by, deadline, status, completion_date, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING id, title, description, meeting_id, assigned_to, assigned_by, deadline, status, completion_date, created_at, updated_at`
	var stored models.Task
	if err := r.db.GetContext(ctx, &stored, query,
		task.ID, task.Title, task.Description, task.MeetingID, task.AssignedTo, task.AssignedBy, task.Deadline, task.Status, task.CompletionDate, task.CreatedAt, task.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &stored, nil
}

// GetByID fetches a task. Returns nil when absent.
func (r *TaskRepository) GetByID(ctx context.Context, id string) (*models.Task, error) {
	var task models.Task
	query := `SELECT id, title, description, meeting_id, assigned_to, assigned_by, deadline, status, completion_date, created_at, updated_at
FROM tasks WHERE id = $1`
	if err := r.db.GetContext(ctx, &task, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return &task, nil
}

// UpdateStatus transitions a task. Completion stamps completion_date; moving
// away from completed clears it again.
func (r *TaskRepository) UpdateStatus(ctx context.Context, id string, status models.TaskStatus, at time.Time) (*models.Task, error) {
	var completion *time.Time
	if status == models.TaskStatusCompleted {
		ts := at.UTC()
		completion = &ts
	}
	query := `UPDATE tasks SET status = $2, completion_date = $3, updated_at = $4 WHERE id = $1
RETURNING id, title, description, meeting_id, assigned_to, assigned_by, deadline, status, completion_date, created_at, updated_at`
	var stored models.Task
	if err := r.db.GetContext(ctx, &stored, query, id, status, completion, at.UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update task status: %w", err)
	}
	return &stored, nil
}

// List returns tasks matching the filter, newest first.
func (r *TaskRepository) List(ctx context.Context, filter models.TaskFilter) ([]models.Task, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.AssignedTo != "" {
		where = append(where, fmt.Sprintf("assigned_to = $%d", len(args)+1))
		args = append(args, filter.AssignedTo)
	}
	if filter.MeetingID != "" {
		where = append(where, fmt.Sprintf("meeting_id = $%d", len(args)+1))
		args = append(args, filter.MeetingID)
	}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	whereClause := strings.Join(where, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT id, title, description, meeting_id, assigned_to, assigned_by, deadline, status, completion_date, created_at, updated_at
FROM tasks WHERE %s
ORDER BY created_at DESC
LIMIT %d OFFSET %d`, whereClause, size, offset)

	var rows []models.Task
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list tasks: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM tasks WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count tasks: %w", err)
	}
	return rows, total, nil
}

// CountForMember counts a member's tasks narrowed by the filter. The creation
// bounds are half-open [from, before).
func (r *TaskRepository) CountForMember(ctx context.Context, memberID string, filter models.TaskCountFilter) (int, error) {
	where := []string{"assigned_to = $1"}
	args := []interface{}{memberID}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.CreatedFrom != nil {
		where = append(where, fmt.Sprintf("created_at >= $%d", len(args)+1))
		args = append(args, *filter.CreatedFrom)
	}
	if filter.CreatedBefore != nil {
		where = append(where, fmt.Sprintf("created_at < $%d", len(args)+1))
		args = append(args, *filter.CreatedBefore)
	}
	query := fmt.Sprintf("SELECT COUNT(*) FROM tasks WHERE %s", strings.Join(where, " AND "))
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count tasks for member: %w", err)
	}
	return count, nil
}

// CompletionCounts groups completed tasks in [from, to) by assignee, most
// completions first with member id as the deterministic tie-break.
func (r *TaskRepository) CompletionCounts(ctx context.Context, from, to time.Time) ([]models.TaskCompletionCount, error) {
	query := `SELECT assigned_to AS member_id, COUNT(*) AS tasks_completed
FROM tasks
WHERE status = $1 AND completion_date >= $2 AND completion_date < $3
GROUP BY assigned_to
ORDER BY tasks_completed DESC, member_id ASC`
	var rows []models.TaskCompletionCount
	if err := r.db.SelectContext(ctx, &rows, query, models.TaskStatusCompleted, from, to); err != nil {
		return nil, fmt.Errorf("task completion counts: %w", err)
	}
	return rows, nil
}
