package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sit-council/council-api/internal/models"
)

// PerformanceRepository handles persistence for monthly performance records.
type PerformanceRepository struct {
	db *sqlx.DB
}

// NewPerformanceRepository constructs the repository.
func NewPerformanceRepository(db *sqlx.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// UpsertValues holds the numeric fields replaced on every aggregator run.
type UpsertValues struct {
	MemberID           string
	Month              string
	AttendanceRate     float64
	TasksCompleted     int
	TasksAssigned      int
	ParticipationScore float64
}

// Upsert writes the rollup for (member, month), replacing only the numeric
// fields. Awards and distinction flags on an existing row are left untouched
// so a recompute never erases a previously granted distinction.
func (r *PerformanceRepository) Upsert(ctx context.Context, values UpsertValues) (*models.PerformanceRecord, error) {
	now := time.Now().UTC()
	query := `INSERT INTO performance (id, member_id, month, attendance_rate, tasks_completed, tasks_assigned, participation_score, awards, member_of_the_month, member_of_the_week, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, '{}', FALSE, FALSE, $8, $8)
ON CONFLICT (member_id, month)
DO UPDATE SET attendance_rate = EXCLUDED.attendance_rate, tasks_completed = EXCLUDED.tasks_completed, tasks_assigned = EXCLUDED.tasks_assigned, participation_score = EXCLUDED.participation_score, updated_at = EXCLUDED.updated_at
RETURNING id, member_id, month, attendance_rate, tasks_completed, tasks_assigned, participation_score, awards, member_of_the_month, member_of_the_week, created_at, updated_at`
	var stored models.PerformanceRecord
	if err := r.db.GetContext(ctx, &stored, query,
		uuid.NewString(), values.MemberID, values.Month,
		values.AttendanceRate, values.TasksCompleted, values.TasksAssigned, values.ParticipationScore, now); err != nil {
		return nil, fmt.Errorf("upsert performance record: %w", err)
	}
	return &stored, nil
}

// GetByMemberMonth fetches the rollup for one member and month. Returns nil
// when no record exists yet.
func (r *PerformanceRepository) GetByMemberMonth(ctx context.Context, memberID, month string) (*models.PerformanceRecord, error) {
	var record models.PerformanceRecord
	query := `SELECT id, member_id, month, attendance_rate, tasks_completed, tasks_assigned, participation_score, awards, member_of_the_month, member_of_the_week, created_at, updated_at
FROM performance WHERE member_id = $1 AND month = $2`
	if err := r.db.GetContext(ctx, &record, query, memberID, month); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get performance record: %w", err)
	}
	return &record, nil
}

// ListByMonth returns all rollups for a month sorted by participation score
// descending. Ties order by record creation then member id so repeated reads
// return the same leader.
func (r *PerformanceRepository) ListByMonth(ctx context.Context, month string, limit int) ([]models.PerformanceSummary, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := fmt.Sprintf(`SELECT p.id, p.member_id, p.month, p.attendance_rate, p.tasks_completed, p.tasks_assigned, p.participation_score, p.awards, p.member_of_the_month, p.member_of_the_week, p.created_at, p.updated_at,
m.full_name AS member_name, m.role AS member_role
FROM performance p
JOIN members m ON m.id = p.member_id
WHERE p.month = $1
ORDER BY p.participation_score DESC, p.created_at ASC, p.member_id ASC
LIMIT %d`, limit)
	var rows []models.PerformanceSummary
	if err := r.db.SelectContext(ctx, &rows, query, month); err != nil {
		return nil, fmt.Errorf("list performance by month: %w", err)
	}
	return rows, nil
}

// AwardValues carries distinction updates applied on top of a rollup.
type AwardValues struct {
	Awards  []string
	Monthly *bool
	Weekly  *bool
}

// UpdateAwards sets awards and distinction flags on an existing record.
// Returns nil when no record exists for the pair.
func (r *PerformanceRepository) UpdateAwards(ctx context.Context, memberID, month string, values AwardValues) (*models.PerformanceRecord, error) {
	query := `UPDATE performance
SET awards = COALESCE($3, awards),
    member_of_the_month = COALESCE($4, member_of_the_month),
    member_of_the_week = COALESCE($5, member_of_the_week),
    updated_at = $6
WHERE member_id = $1 AND month = $2
RETURNING id, member_id, month, attendance_rate, tasks_completed, tasks_assigned, participation_score, awards, member_of_the_month, member_of_the_week, created_at, updated_at`
	var awards interface{}
	if values.Awards != nil {
		awards = pq.StringArray(values.Awards)
	}
	var stored models.PerformanceRecord
	if err := r.db.GetContext(ctx, &stored, query, memberID, month, awards, values.Monthly, values.Weekly, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update performance awards: %w", err)
	}
	return &stored, nil
}
