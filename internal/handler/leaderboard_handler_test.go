package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sit-council/council-api/internal/dto"
	"github.com/sit-council/council-api/internal/models"
	appErrors "github.com/sit-council/council-api/pkg/errors"
)

type leaderboardServiceMock struct {
	result *dto.DistinctionsResponse
	cached bool
	err    error
}

func (m *leaderboardServiceMock) SelectDistinctions(context.Context) (*dto.DistinctionsResponse, bool, error) {
	return m.result, m.cached, m.err
}

func TestLeaderboardHandlerGet(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &leaderboardServiceMock{
		result: &dto.DistinctionsResponse{
			Month: "2026-03",
			Monthly: &models.PerformanceSummary{
				PerformanceRecord: models.PerformanceRecord{MemberID: "member-1", ParticipationScore: 78},
				MemberName:        "Ayu Lestari",
			},
		},
		cached: true,
	}
	handler := NewLeaderboardHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/leaderboard", nil)
	c.Request = req

	handler.Get(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data dto.DistinctionsResponse `json:"data"`
		Meta map[string]interface{}   `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "2026-03", envelope.Data.Month)
	require.NotNil(t, envelope.Data.Monthly)
	assert.Equal(t, "Ayu Lestari", envelope.Data.Monthly.MemberName)
	assert.Equal(t, true, envelope.Meta["cached"])
}

func TestLeaderboardHandlerGetUpstreamFailure(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &leaderboardServiceMock{err: appErrors.ErrUpstream}
	handler := NewLeaderboardHandler(mockSvc)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/leaderboard", nil)
	c.Request = req

	handler.Get(c)
	assert.Equal(t, appErrors.ErrUpstream.Status, w.Code)
	assert.Contains(t, w.Body.String(), appErrors.ErrUpstream.Code)
}
