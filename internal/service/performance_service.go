package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sit-council/council-api/internal/dto"
	"github.com/sit-council/council-api/internal/models"
	"github.com/sit-council/council-api/internal/repository"
	appErrors "github.com/sit-council/council-api/pkg/errors"
	"github.com/sit-council/council-api/pkg/jobs"
	"github.com/sit-council/council-api/pkg/timewindow"
)

type completedMeetingCounter interface {
	CountCompletedBetween(ctx context.Context, from, to time.Time) (int, error)
}

type presenceCounter interface {
	CountPresentBetween(ctx context.Context, memberID string, from, to time.Time) (int, error)
}

type taskCounter interface {
	CountForMember(ctx context.Context, memberID string, filter models.TaskCountFilter) (int, error)
}

type performanceStore interface {
	Upsert(ctx context.Context, values repository.UpsertValues) (*models.PerformanceRecord, error)
	GetByMemberMonth(ctx context.Context, memberID, month string) (*models.PerformanceRecord, error)
	ListByMonth(ctx context.Context, month string, limit int) ([]models.PerformanceSummary, error)
	UpdateAwards(ctx context.Context, memberID, month string, values repository.AwardValues) (*models.PerformanceRecord, error)
}

// PerformanceService recomputes and serves monthly performance rollups.
type PerformanceService struct {
	store    performanceStore
	meetings completedMeetingCounter
	presence presenceCounter
	tasks    taskCounter
	members  memberDirectory
	cache    *CacheService
	metrics  *MetricsService
	logger   *zap.Logger
	now      func() time.Time
}

// NewPerformanceService constructs the aggregator.
func NewPerformanceService(store performanceStore, meetings completedMeetingCounter, presence presenceCounter, tasks taskCounter, members memberDirectory, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *PerformanceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceService{
		store:    store,
		meetings: meetings,
		presence: presence,
		tasks:    tasks,
		members:  members,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		now:      time.Now,
	}
}

// Recompute rebuilds the member's rollup for the current calendar month.
// The computation reads the attendance ledger and the task store, derives the
// rates, and replaces the record's numeric fields in one upsert. Given
// unchanged facts, repeated runs write identical values.
func (s *PerformanceService) Recompute(ctx context.Context, memberID string) (*models.PerformanceRecord, error) {
	if memberID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "member id is required")
	}
	memberOK, err := s.members.Exists(ctx, memberID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "member directory unavailable")
	}
	if !memberOK {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
	}

	window := timewindow.Month(s.now())
	month := timewindow.MonthKey(window.Start)

	meetingsCompleted, err := s.meetings.CountCompletedBetween(ctx, window.Start, window.End)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "meeting directory unavailable")
	}
	presentCount, err := s.presence.CountPresentBetween(ctx, memberID, window.Start, window.End)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "attendance ledger unavailable")
	}

	var attendanceRate float64
	if meetingsCompleted > 0 {
		attendanceRate = float64(presentCount) / float64(meetingsCompleted) * 100
	}

	completed := models.TaskStatusCompleted
	tasksAssigned, err := s.tasks.CountForMember(ctx, memberID, models.TaskCountFilter{
		CreatedFrom:   &window.Start,
		CreatedBefore: &window.End,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "task store unavailable")
	}
	tasksCompleted, err := s.tasks.CountForMember(ctx, memberID, models.TaskCountFilter{
		Status:        &completed,
		CreatedFrom:   &window.Start,
		CreatedBefore: &window.End,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUpstream.Code, appErrors.ErrUpstream.Status, "task store unavailable")
	}

	var completionRate float64
	if tasksAssigned > 0 {
		completionRate = float64(tasksCompleted) / float64(tasksAssigned) * 100
	}

	record, err := s.store.Upsert(ctx, repository.UpsertValues{
		MemberID:           memberID,
		Month:              month,
		AttendanceRate:     attendanceRate,
		TasksCompleted:     tasksCompleted,
		TasksAssigned:      tasksAssigned,
		ParticipationScore: models.ParticipationScore(attendanceRate, completionRate),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist performance record")
	}

	if s.metrics != nil {
		s.metrics.RecordAggregationRun(true)
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, leaderboardCachePrefix+"*"); err != nil {
			s.logger.Warn("leaderboard cache invalidation failed", zap.Error(err))
		}
	}

	return record, nil
}

// HandleRecomputeJob adapts Recompute to the background queue. A missing
// member is terminal, not retryable: the fact stream it would aggregate is
// gone with the member.
func (s *PerformanceService) HandleRecomputeJob(ctx context.Context, job jobs.Job) error {
	_, err := s.Recompute(ctx, job.Payload)
	if err == nil {
		return nil
	}
	appErr := appErrors.FromError(err)
	if appErr.Code == appErrors.ErrNotFound.Code {
		s.logger.Warn("dropping recompute for unknown member", zap.String("member_id", job.Payload))
		return nil
	}
	if s.metrics != nil {
		s.metrics.RecordAggregationRun(false)
	}
	return err
}

// Get returns the rollup for one member and month.
func (s *PerformanceService) Get(ctx context.Context, memberID, month string) (*models.PerformanceRecord, error) {
	if month == "" {
		month = timewindow.MonthKey(s.now())
	} else if _, err := timewindow.ParseMonthKey(month); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid month, expected YYYY-MM")
	}
	record, err := s.store.GetByMemberMonth(ctx, memberID, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read performance record")
	}
	if record == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no performance record for member and month")
	}
	return record, nil
}

// ListMonth returns every member's rollup for a month sorted by
// participation score descending.
func (s *PerformanceService) ListMonth(ctx context.Context, month string, limit int) ([]models.PerformanceSummary, error) {
	if month == "" {
		month = timewindow.MonthKey(s.now())
	} else if _, err := timewindow.ParseMonthKey(month); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid month, expected YYYY-MM")
	}
	summaries, err := s.store.ListByMonth(ctx, month, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list performance records")
	}
	return summaries, nil
}

// GrantAwards applies distinction awards to an existing monthly record.
func (s *PerformanceService) GrantAwards(ctx context.Context, memberID string, req dto.AwardRequest) (*models.PerformanceRecord, error) {
	if _, err := timewindow.ParseMonthKey(req.Month); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid month, expected YYYY-MM")
	}
	record, err := s.store.UpdateAwards(ctx, memberID, req.Month, repository.AwardValues{
		Awards:  req.Awards,
		Monthly: req.Monthly,
		Weekly:  req.Weekly,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update awards")
	}
	if record == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no performance record for member and month")
	}
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, leaderboardCachePrefix+"*"); err != nil {
			s.logger.Warn("leaderboard cache invalidation failed", zap.Error(err))
		}
	}
	return record, nil
}
