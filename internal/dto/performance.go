package dto

// RecomputeResponse echoes the freshly computed rollup values.
type RecomputeResponse struct {
	MemberID           string  `json:"member_id"`
	Month              string  `json:"month"`
	AttendanceRate     float64 `json:"attendance_rate"`
	TasksCompleted     int     `json:"tasks_completed"`
	TasksAssigned      int     `json:"tasks_assigned"`
	ParticipationScore float64 `json:"participation_score"`
}

// AwardRequest grants a distinction on an existing monthly record.
type AwardRequest struct {
	Month   string   `json:"month" validate:"required"`
	Awards  []string `json:"awards"`
	Monthly *bool    `json:"member_of_the_month"`
	Weekly  *bool    `json:"member_of_the_week"`
}
