package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sit-council/council-api/internal/dto"
	"github.com/sit-council/council-api/internal/models"
	appErrors "github.com/sit-council/council-api/pkg/errors"
	"github.com/sit-council/council-api/pkg/timewindow"
)

const leaderboardCachePrefix = "leaderboard:"

type performanceBoardReader interface {
	ListByMonth(ctx context.Context, month string, limit int) ([]models.PerformanceSummary, error)
}

type completionCounter interface {
	CompletionCounts(ctx context.Context, from, to time.Time) ([]models.TaskCompletionCount, error)
}

type memberResolver interface {
	GetByID(ctx context.Context, id string) (*models.Member, error)
}

// LeaderboardServiceConfig tunes leaderboard behaviour.
type LeaderboardServiceConfig struct {
	CacheTTL  time.Duration
	BoardSize int
}

// LeaderboardService derives the monthly and weekly distinctions. It only
// reads: granting a distinction onto a record is an explicit admin action,
// never a side effect of viewing the board.
type LeaderboardService struct {
	records     performanceBoardReader
	completions completionCounter
	members     memberResolver
	cache       *CacheService
	logger      *zap.Logger
	now         func() time.Time
	cfg         LeaderboardServiceConfig
}

// NewLeaderboardService constructs the selector.
func NewLeaderboardService(records performanceBoardReader, completions completionCounter, members memberResolver, cache *CacheService, logger *zap.Logger, cfg LeaderboardServiceConfig) *LeaderboardService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Minute
	}
	if cfg.BoardSize <= 0 {
		cfg.BoardSize = 10
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LeaderboardService{
		records:     records,
		completions: completions,
		members:     members,
		cache:       cache,
		logger:      logger,
		now:         time.Now,
		cfg:         cfg,
	}
}

// SelectDistinctions picks member of the month and member of the week.
//
// Monthly: the current month's top performance record; the repository orders
// ties by record creation then member id, so repeated calls return the same
// leader. Weekly: the member with the most task completions in the trailing
// 7 days, earliest member id on ties.
//
// When only the weekly half fails the monthly half is still returned with
// Weekly nil; callers must read a nil Weekly as unknown, not as "nobody
// completed tasks". Partial results are never cached.
func (s *LeaderboardService) SelectDistinctions(ctx context.Context) (*dto.DistinctionsResponse, bool, error) {
	now := s.now()
	month := timewindow.MonthKey(now)
	cacheKey := leaderboardCachePrefix + month

	if s.cache != nil {
		var cached dto.DistinctionsResponse
		if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	board, err := s.records.ListByMonth(ctx, month, s.cfg.BoardSize)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read performance records")
	}

	result := &dto.DistinctionsResponse{Month: month, Board: board}
	if len(board) > 0 {
		top := board[0]
		result.Monthly = &top
	}

	weekly, weeklyErr := s.selectWeekly(ctx, now)
	if weeklyErr != nil {
		s.logger.Warn("weekly distinction unavailable", zap.Error(weeklyErr))
		return result, false, nil
	}
	result.Weekly = weekly

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("leaderboard cache write failed", zap.Error(err))
		}
	}
	return result, false, nil
}

func (s *LeaderboardService) selectWeekly(ctx context.Context, now time.Time) (*dto.MemberSummary, error) {
	window := timewindow.TrailingWeek(now)
	counts, err := s.completions.CompletionCounts(ctx, window.Start, window.End)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "task store unavailable")
	}
	if len(counts) == 0 {
		return nil, nil
	}

	top := counts[0]
	summary := &dto.MemberSummary{MemberID: top.MemberID, TasksCompleted: top.TasksCompleted}
	if s.members != nil {
		if member, err := s.members.GetByID(ctx, top.MemberID); err != nil {
			s.logger.Warn("weekly distinction member lookup failed", zap.String("member_id", top.MemberID), zap.Error(err))
		} else if member != nil {
			summary.MemberName = member.FullName
		}
	}
	return summary, nil
}
