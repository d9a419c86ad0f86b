package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sit-council/council-api/internal/dto"
	"github.com/sit-council/council-api/pkg/response"
)

type leaderboardService interface {
	SelectDistinctions(ctx context.Context) (*dto.DistinctionsResponse, bool, error)
}

// LeaderboardHandler wires HTTP endpoints to the leaderboard service.
type LeaderboardHandler struct {
	service leaderboardService
}

// NewLeaderboardHandler creates a new handler.
func NewLeaderboardHandler(svc leaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{service: svc}
}

// Get godoc
// @Summary Current distinctions
// @Description Member of the month, member of the week and the monthly board
// @Tags Leaderboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /leaderboard [get]
func (h *LeaderboardHandler) Get(c *gin.Context) {
	result, cached, err := h.service.SelectDistinctions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.JSON(c, http.StatusOK, result, nil, map[string]interface{}{"cached": cached})
}
