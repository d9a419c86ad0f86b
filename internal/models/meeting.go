package models

import "time"

// MeetingStatus enumerates the meeting lifecycle.
type MeetingStatus string

const (
	MeetingStatusDraft      MeetingStatus = "draft"
	MeetingStatusScheduled  MeetingStatus = "scheduled"
	MeetingStatusInProgress MeetingStatus = "in-progress"
	MeetingStatusCompleted  MeetingStatus = "completed"
	MeetingStatusCancelled  MeetingStatus = "cancelled"
)

// Valid returns true when the status is a supported value.
func (s MeetingStatus) Valid() bool {
	switch s {
	case MeetingStatusDraft, MeetingStatusScheduled, MeetingStatusInProgress, MeetingStatusCompleted, MeetingStatusCancelled:
		return true
	default:
		return false
	}
}

// Meeting represents a council meeting.
type Meeting struct {
	ID        string        `db:"id" json:"id"`
	Title     string        `db:"title" json:"title"`
	Code      string        `db:"code" json:"code"`
	Location  *string       `db:"location" json:"location,omitempty"`
	Date      time.Time     `db:"date" json:"date"`
	Status    MeetingStatus `db:"status" json:"status"`
	CreatedBy string        `db:"created_by" json:"created_by"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt time.Time     `db:"updated_at" json:"updated_at"`
}

// MeetingAttendee is the denormalized attendee entry embedded with a meeting.
// It mirrors the attendance ledger row for the same (meeting, member) pair;
// the ledger is the source of truth and the mirror is replaced, never merged.
type MeetingAttendee struct {
	MeetingID    string           `db:"meeting_id" json:"meeting_id"`
	MemberID     string           `db:"member_id" json:"member_id"`
	Status       AttendanceStatus `db:"status" json:"status"`
	CheckInTime  *time.Time       `db:"check_in_time" json:"check_in_time,omitempty"`
	CheckOutTime *time.Time       `db:"check_out_time" json:"check_out_time,omitempty"`
}

// MeetingFilter scopes meeting listing queries.
type MeetingFilter struct {
	Status   *MeetingStatus
	DateFrom *time.Time
	DateTo   *time.Time
	Page     int
	PageSize int
}

// MeetingAttendeeRow extends the mirror entry with member metadata for
// attendance sheet rendering.
type MeetingAttendeeRow struct {
	MeetingAttendee
	MemberName string `db:"member_name" json:"member_name"`
	MemberRole string `db:"member_role" json:"member_role"`
}
