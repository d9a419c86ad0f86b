package models

import (
	"time"

	"github.com/lib/pq"
)

// Weights applied when combining attendance and task completion rates into
// the participation score. Fixed policy, not configurable per call.
const (
	AttendanceWeight = 0.4
	CompletionWeight = 0.6
)

// PerformanceRecord is the monthly rollup per member, keyed (member_id, month).
// Each aggregator run recomputes and replaces the numeric fields wholesale;
// awards and distinction flags survive recomputation untouched.
type PerformanceRecord struct {
	ID                 string         `db:"id" json:"id"`
	MemberID           string         `db:"member_id" json:"member_id"`
	Month              string         `db:"month" json:"month"`
	AttendanceRate     float64        `db:"attendance_rate" json:"attendance_rate"`
	TasksCompleted     int            `db:"tasks_completed" json:"tasks_completed"`
	TasksAssigned      int            `db:"tasks_assigned" json:"tasks_assigned"`
	ParticipationScore float64        `db:"participation_score" json:"participation_score"`
	Awards             pq.StringArray `db:"awards" json:"awards"`
	MemberOfTheMonth   bool           `db:"member_of_the_month" json:"member_of_the_month"`
	MemberOfTheWeek    bool           `db:"member_of_the_week" json:"member_of_the_week"`
	CreatedAt          time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time      `db:"updated_at" json:"updated_at"`
}

// ParticipationScore combines the two rates with the fixed policy weights.
func ParticipationScore(attendanceRate, completionRate float64) float64 {
	return attendanceRate*AttendanceWeight + completionRate*CompletionWeight
}

// PerformanceSummary extends a record with member metadata for listings.
type PerformanceSummary struct {
	PerformanceRecord
	MemberName string `db:"member_name" json:"member_name"`
	MemberRole string `db:"member_role" json:"member_role"`
}
