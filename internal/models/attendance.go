package models

import "time"

// AttendanceStatus represents the status for attendance records.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
	AttendanceStatusLate    AttendanceStatus = "late"
	AttendanceStatusExcused AttendanceStatus = "excused"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceStatusPresent, AttendanceStatusAbsent, AttendanceStatusLate, AttendanceStatusExcused:
		return true
	default:
		return false
	}
}

// CheckedIn reports whether the status implies a check-in timestamp.
func (s AttendanceStatus) CheckedIn() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusLate
}

// AttendanceFact is a single ledger row: one per (meeting, member) pair.
// Re-recording overwrites the row in place rather than appending.
type AttendanceFact struct {
	ID           string           `db:"id" json:"id"`
	MeetingID    string           `db:"meeting_id" json:"meeting_id"`
	MemberID     string           `db:"member_id" json:"member_id"`
	Status       AttendanceStatus `db:"status" json:"status"`
	CheckInTime  *time.Time       `db:"check_in_time" json:"check_in_time,omitempty"`
	CheckOutTime *time.Time       `db:"check_out_time" json:"check_out_time,omitempty"`
	Notes        *string          `db:"notes" json:"notes,omitempty"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// AttendanceRecord extends a ledger row with member metadata for listings.
type AttendanceRecord struct {
	AttendanceFact
	MemberName string `db:"member_name" json:"member_name"`
	MemberRole string `db:"member_role" json:"member_role"`
}
