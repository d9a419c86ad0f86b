package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sit-council/council-api/internal/models"
)

// AttendanceRepository handles persistence for the attendance ledger.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// GetByMeetingAndMember fetches the ledger row for one (meeting, member)
// pair. Returns nil when no fact has been recorded yet.
func (r *AttendanceRepository) GetByMeetingAndMember(ctx context.Context, meetingID, memberID string) (*models.AttendanceFact, error) {
	var fact models.AttendanceFact
	query := `SELECT id, meeting_id, member_id, status, check_in_time, check_out_time, notes, created_at, updated_at
FROM attendance WHERE meeting_id = $1 AND member_id = $2`
	if err := r.db.GetContext(ctx, &fact, query, meetingID, memberID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get attendance fact: %w", err)
	}
	return &fact, nil
}

// Upsert writes the ledger row for a (meeting, member) pair. Later writes
// overwrite the full field set; the unique constraint keeps one row per pair.
func (r *AttendanceRepository) Upsert(ctx context.Context, fact *models.AttendanceFact) (*models.AttendanceFact, error) {
	now := time.Now().UTC()
	if fact.ID == "" {
		fact.ID = uuid.NewString()
	}
	if fact.CreatedAt.IsZero() {
		fact.CreatedAt = now
	}
	fact.UpdatedAt = now
	query := `INSERT INTO attendance (id, meeting_id, member_id, status, check_in_time, check_out_time, notes, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (meeting_id, member_id)
DO UPDATE SET status = EXCLUDED.status, check_in_time = EXCLUDED.check_in_time, check_out_time = EXCLUDED.check_out_time, notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
RETURNING id, meeting_id, member_id, status, check_in_time, check_out_time, notes, created_at, updated_at`
	var stored models.AttendanceFact
	if err := r.db.GetContext(ctx, &stored, query,
		fact.ID, fact.MeetingID, fact.MemberID, fact.Status, fact.CheckInTime, fact.CheckOutTime, fact.Notes, fact.CreatedAt, fact.UpdatedAt); err != nil {
		return nil, fmt.Errorf("upsert attendance fact: %w", err)
	}
	return &stored, nil
}

// ListByMeeting returns ledger rows for a meeting with member metadata,
// newest first.
func (r *AttendanceRepository) ListByMeeting(ctx context.Context, meetingID string) ([]models.AttendanceRecord, error) {
	query := `SELECT a.id, a.meeting_id, a.member_id, a.status, a.check_in_time, a.check_out_time, a.notes, a.created_at, a.updated_at,
m.full_name AS member_name, m.role AS member_role
FROM attendance a
JOIN members m ON m.id = a.member_id
WHERE a.meeting_id = $1
ORDER BY a.created_at DESC`
	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, meetingID); err != nil {
		return nil, fmt.Errorf("list attendance by meeting: %w", err)
	}
	return rows, nil
}

// CountPresentBetween counts a member's present facts recorded in [from, to).
// The window bounds the fact's creation, matching the rollup semantics.
func (r *AttendanceRepository) CountPresentBetween(ctx context.Context, memberID string, from, to time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM attendance
WHERE member_id = $1 AND status = $2 AND created_at >= $3 AND created_at < $4`
	if err := r.db.GetContext(ctx, &count, query, memberID, models.AttendanceStatusPresent, from, to); err != nil {
		return 0, fmt.Errorf("count present attendance: %w", err)
	}
	return count, nil
}
