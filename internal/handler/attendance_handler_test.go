package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sit-council/council-api/internal/models"
	"github.com/sit-council/council-api/internal/service"
	appErrors "github.com/sit-council/council-api/pkg/errors"
)

type attendanceServiceMock struct {
	recordResp *models.AttendanceFact
	recordErr  error
	listResp   []models.AttendanceRecord
	listErr    error
	lastReq    service.RecordAttendanceRequest
}

func (m *attendanceServiceMock) Record(_ context.Context, req service.RecordAttendanceRequest) (*models.AttendanceFact, error) {
	m.lastReq = req
	return m.recordResp, m.recordErr
}

func (m *attendanceServiceMock) ListByMeeting(context.Context, string) ([]models.AttendanceRecord, error) {
	return m.listResp, m.listErr
}

func TestAttendanceHandlerRecord(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &attendanceServiceMock{
		recordResp: &models.AttendanceFact{ID: "fact-1", MeetingID: "meeting-1", MemberID: "member-1", Status: models.AttendanceStatusPresent},
	}
	handler := NewAttendanceHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"meeting_id":"meeting-1","member_id":"member-1","status":"present"}`
	req, _ := http.NewRequest(http.MethodPost, "/attendance", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Record(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "meeting-1", mockSvc.lastReq.MeetingID)
	assert.Equal(t, "present", mockSvc.lastReq.Status)

	var envelope struct {
		Data models.AttendanceFact `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "fact-1", envelope.Data.ID)
}

func TestAttendanceHandlerRecordMalformedBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewAttendanceHandler(&attendanceServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/attendance", bytes.NewBufferString(`{"meeting_id":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Record(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAttendanceHandlerRecordInvalidStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &attendanceServiceMock{recordErr: appErrors.ErrInvalidStatus}
	handler := NewAttendanceHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body := `{"meeting_id":"meeting-1","member_id":"member-1","status":"vacationing"}`
	req, _ := http.NewRequest(http.MethodPost, "/attendance", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Record(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_STATUS")
}

func TestAttendanceHandlerListByMeeting(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &attendanceServiceMock{listResp: []models.AttendanceRecord{
		{AttendanceFact: models.AttendanceFact{ID: "fact-1"}, MemberName: "Ayu Lestari"},
	}}
	handler := NewAttendanceHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/attendance/meeting-1", nil)
	c.Request = req
	c.Params = gin.Params{{Key: "meetingId", Value: "meeting-1"}}

	handler.ListByMeeting(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Ayu Lestari")
}
