package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sit-council/council-api/internal/models"
	"github.com/sit-council/council-api/internal/service"
	appErrors "github.com/sit-council/council-api/pkg/errors"
	"github.com/sit-council/council-api/pkg/response"
)

type attendanceService interface {
	Record(ctx context.Context, req service.RecordAttendanceRequest) (*models.AttendanceFact, error)
	ListByMeeting(ctx context.Context, meetingID string) ([]models.AttendanceRecord, error)
}

// AttendanceHandler wires HTTP endpoints to the attendance service.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler creates a new handler.
func NewAttendanceHandler(svc attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: svc}
}

// Record godoc
// @Summary Record attendance
// @Description Record or correct a member's attendance at a meeting
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.RecordAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Record(c *gin.Context) {
	var req service.RecordAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid attendance payload"))
		return
	}

	fact, err := h.service.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, fact, nil)
}

// ListByMeeting godoc
// @Summary List meeting attendance
// @Description List attendance ledger rows for a meeting
// @Tags Attendance
// @Produce json
// @Param meetingId path string true "Meeting ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/{meetingId} [get]
func (h *AttendanceHandler) ListByMeeting(c *gin.Context) {
	records, err := h.service.ListByMeeting(c.Request.Context(), c.Param("meetingId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, records, nil)
}
