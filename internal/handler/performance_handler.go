package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sit-council/council-api/internal/dto"
	"github.com/sit-council/council-api/internal/models"
	appErrors "github.com/sit-council/council-api/pkg/errors"
	"github.com/sit-council/council-api/pkg/response"
)

type performanceService interface {
	Recompute(ctx context.Context, memberID string) (*models.PerformanceRecord, error)
	Get(ctx context.Context, memberID, month string) (*models.PerformanceRecord, error)
	ListMonth(ctx context.Context, month string, limit int) ([]models.PerformanceSummary, error)
	GrantAwards(ctx context.Context, memberID string, req dto.AwardRequest) (*models.PerformanceRecord, error)
}

// PerformanceHandler wires HTTP endpoints to the performance service.
type PerformanceHandler struct {
	service performanceService
}

// NewPerformanceHandler creates a new handler.
func NewPerformanceHandler(svc performanceService) *PerformanceHandler {
	return &PerformanceHandler{service: svc}
}

// Get godoc
// @Summary Get member performance
// @Description Monthly rollup for one member, current month by default
// @Tags Performance
// @Produce json
// @Param memberId path string true "Member ID"
// @Param month query string false "Month key (YYYY-MM)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /performance/{memberId} [get]
func (h *PerformanceHandler) Get(c *gin.Context) {
	record, err := h.service.Get(c.Request.Context(), c.Param("memberId"), c.Query("month"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, record, nil)
}

// ListMonth godoc
// @Summary List monthly performance
// @Description All rollups for a month ordered by participation score
// @Tags Performance
// @Produce json
// @Param month query string false "Month key (YYYY-MM)"
// @Param limit query int false "Row limit"
// @Success 200 {object} response.Envelope
// @Router /performance [get]
func (h *PerformanceHandler) ListMonth(c *gin.Context) {
	limit := queryInt(c, "limit", 0)
	summaries, err := h.service.ListMonth(c.Request.Context(), c.Query("month"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, summaries, nil)
}

// Recompute godoc
// @Summary Recompute member performance
// @Description Rebuild the member's rollup for the current month
// @Tags Performance
// @Produce json
// @Param memberId path string true "Member ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /performance/{memberId}/recompute [post]
func (h *PerformanceHandler) Recompute(c *gin.Context) {
	record, err := h.service.Recompute(c.Request.Context(), c.Param("memberId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, dto.RecomputeResponse{
		MemberID:           record.MemberID,
		Month:              record.Month,
		AttendanceRate:     record.AttendanceRate,
		TasksCompleted:     record.TasksCompleted,
		TasksAssigned:      record.TasksAssigned,
		ParticipationScore: record.ParticipationScore,
	}, nil)
}

// GrantAwards godoc
// @Summary Grant distinction awards
// @Description Set awards and distinction flags on a monthly record
// @Tags Performance
// @Accept json
// @Produce json
// @Param memberId path string true "Member ID"
// @Param payload body dto.AwardRequest true "Award payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /performance/{memberId}/awards [post]
func (h *PerformanceHandler) GrantAwards(c *gin.Context) {
	var req dto.AwardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid award payload"))
		return
	}

	record, err := h.service.GrantAwards(c.Request.Context(), c.Param("memberId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, record, nil)
}
