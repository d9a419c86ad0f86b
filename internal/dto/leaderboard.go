package dto

import "github.com/sit-council/council-api/internal/models"

// MemberSummary is the weekly distinction payload.
type MemberSummary struct {
	MemberID       string `json:"member_id"`
	MemberName     string `json:"member_name,omitempty"`
	TasksCompleted int    `json:"tasks_completed"`
}

// DistinctionsResponse is the leaderboard payload. A nil Weekly means the
// weekly half is unknown (for example the task store was unreachable), not
// that nobody completed tasks.
type DistinctionsResponse struct {
	Month   string                      `json:"month"`
	Monthly *models.PerformanceSummary  `json:"member_of_the_month"`
	Weekly  *MemberSummary              `json:"member_of_the_week"`
	Board   []models.PerformanceSummary `json:"board,omitempty"`
}
