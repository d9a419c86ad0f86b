package models

import "time"

// TaskStatus enumerates task lifecycle states.
type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in-progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusOverdue    TaskStatus = "overdue"
)

// Valid returns true when the status is a supported value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusOverdue:
		return true
	default:
		return false
	}
}

// Task represents an action item assigned during a meeting.
type Task struct {
	ID             string     `db:"id" json:"id"`
	Title          string     `db:"title" json:"title"`
	Description    *string    `db:"description" json:"description,omitempty"`
	MeetingID      *string    `db:"meeting_id" json:"meeting_id,omitempty"`
	AssignedTo     string     `db:"assigned_to" json:"assigned_to"`
	AssignedBy     *string    `db:"assigned_by" json:"assigned_by,omitempty"`
	Deadline       *time.Time `db:"deadline" json:"deadline,omitempty"`
	Status         TaskStatus `db:"status" json:"status"`
	CompletionDate *time.Time `db:"completion_date" json:"completion_date,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// TaskCountFilter scopes window-bounded task counting.
type TaskCountFilter struct {
	Status        *TaskStatus
	CreatedFrom   *time.Time
	CreatedBefore *time.Time
}

/// TaskCompletionCount is one leaderboard grouping row: completions per member
// within a window, ordered by count descending then member id ascending.
type TaskCompletionCount struct {
	MemberID       string `db:"member_id" json:"member_id"`
	TasksCompleted int    `db:"tasks_completed" json:"tasks_completed"`
}

// TaskFilter scopes task listing queries.
type TaskFilter struct {
	AssignedTo string
	MeetingID  string
	Status     *TaskStatus
	Page       int
	PageSize   int
}
