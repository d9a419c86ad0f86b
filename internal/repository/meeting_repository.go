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

// MeetingRepository handles persistence for meetings and their embedded
// attendee mirror.
type MeetingRepository struct {
	db *sqlx.DB
}

// NewMeetingRepository constructs the repository.
func NewMeetingRepository(db *sqlx.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// Create inserts a new meeting.
func (r *MeetingRepository) Create(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	now := time.Now().UTC()
	if meeting.ID == "" {
		meeting.ID = uuid.NewString()
	}
	meeting.CreatedAt = now
	meeting.UpdatedAt = now
	query := `INSERT INTO meetings (id, title, code, location, date, status, created_by, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING id, title, code, location, date, status, created_by, created_at, updated_at`
	var stored models.Meeting
	if err := r.db.GetContext(ctx, &stored, query,
		meeting.ID, meeting.Title, meeting.Code, meeting.Location, meeting.Date, meeting.Status, meeting.CreatedBy, meeting.CreatedAt, meeting.UpdatedAt); err != nil {
		return nil, fmt.Errorf("create meeting: %w", err)
	}
	return &stored, nil
}

// GetByID fetches a meeting. Returns nil when absent.
func (r *MeetingRepository) GetByID(ctx context.Context, id string) (*models.Meeting, error) {
	var meeting models.Meeting
	query := `SELECT id, title, code, location, date, status, created_by, created_at, updated_at
FROM meetings WHERE id = $1`
	if err := r.db.GetContext(ctx, &meeting, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get meeting: %w", err)
	}
	return &meeting, nil
}

// Exists reports whether a meeting row exists for the given id.
func (r *MeetingRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM meetings WHERE id = $1)`
	if err := r.db.GetContext(ctx, &exists, query, id); err != nil {
		return false, fmt.Errorf("meeting exists: %w", err)
	}
	return exists, nil
}

// List returns meetings matching the filter, newest first.
func (r *MeetingRepository) List(ctx context.Context, filter models.MeetingFilter) ([]models.Meeting, int, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Status != nil && filter.Status.Valid() {
		where = append(where, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DateFrom != nil {
		where = append(where, fmt.Sprintf("date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		where = append(where, fmt.Sprintf("date < $%d", len(args)+1))
		args = append(args, *filter.DateTo)
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

	query := fmt.Sprintf(`SELECT id, title, code, location, date, status, created_by, created_at, updated_at
FROM meetings WHERE %s
ORDER BY date DESC
LIMIT %d OFFSET %d`, whereClause, size, offset)

	var rows []models.Meeting
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list meetings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM meetings WHERE %s", whereClause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count meetings: %w", err)
	}
	return rows, total, nil
}

// UpdateStatus transitions a meeting to a new status.
func (r *MeetingRepository) UpdateStatus(ctx context.Context, id string, status models.MeetingStatus) (*models.Meeting, error) {
	query := `UPDATE meetings SET status = $2, updated_at = $3 WHERE id = $1
RETURNING id, title, code, location, date, status, created_by, created_at, updated_at`
	var stored models.Meeting
	if err := r.db.GetContext(ctx, &stored, query, id, status, time.Now().UTC()); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("update meeting status: %w", err)
	}
	return &stored, nil
}

// CountCompletedBetween counts completed meetings whose date falls in
// [from, to). This is the attendance rate denominator.
func (r *MeetingRepository) CountCompletedBetween(ctx context.Context, from, to time.Time) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM meetings WHERE status = $1 AND date >= $2 AND date < $3`
	if err := r.db.GetContext(ctx, &count, query, models.MeetingStatusCompleted, from, to); err != nil {
		return 0, fmt.Errorf("count completed meetings: %w", err)
	}
	return count, nil
}

// ReplaceAttendee synchronizes the mirror entry for one member within a
// meeting. The entry is deleted then reinserted instead of updated in place:
// the mirror table carries no unique key, so a conditional update could miss
// a drifted row and leave duplicates behind. The two statements share one
// transaction so readers never observe the member missing from the list.
func (r *MeetingRepository) ReplaceAttendee(ctx context.Context, entry models.MeetingAttendee) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin attendee sync: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM meeting_attendees WHERE meeting_id = $1 AND member_id = $2`,
		entry.MeetingID, entry.MemberID); err != nil {
		return fmt.Errorf("remove attendee mirror entry: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meeting_attendees (meeting_id, member_id, status, check_in_time, check_out_time)
VALUES ($1, $2, $3, $4, $5)`,
		entry.MeetingID, entry.MemberID, entry.Status, entry.CheckInTime, entry.CheckOutTime); err != nil {
		return fmt.Errorf("insert attendee mirror entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit attendee sync: %w", err)
	}
	committed = true
	return nil
}

// ListAttendees returns the mirror entries for a meeting with member metadata.
func (r *MeetingRepository) ListAttendees(ctx context.Context, meetingID string) ([]models.MeetingAttendeeRow, error) {
	query := `SELECT ma.meeting_id, ma.member_id, ma.status, ma.check_in_time, ma.check_out_time,
m.full_name AS member_name, m.role AS member_role
FROM meeting_attendees ma
JOIN members m ON m.id = ma.member_id
WHERE ma.meeting_id = $1
ORDER BY m.full_name ASC`
	var rows []models.MeetingAttendeeRow
	if err := r.db.SelectContext(ctx, &rows, query, meetingID); err != nil {
		return nil, fmt.Errorf("list meeting attendees: %w", err)
	}
	return rows, nil
}
