package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sit-council/council-api/internal/models"
	appErrors "github.com/sit-council/council-api/pkg/errors"
)

type stubCacheRepo struct {
	entries map[string][]byte
	deleted []string
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := s.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if s.entries == nil {
		s.entries = map[string][]byte{}
	}
	s.entries[key] = raw
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	s.deleted = append(s.deleted, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	return nil
}

type fakeBoardReader struct {
	summaries []models.PerformanceSummary
	err       error
	calls     int
}

func (f *fakeBoardReader) ListByMonth(context.Context, string, int) ([]models.PerformanceSummary, error) {
	f.calls++
	return f.summaries, f.err
}

type fakeCompletionCounter struct {
	counts []models.TaskCompletionCount
	err    error
}

func (f *fakeCompletionCounter) CompletionCounts(context.Context, time.Time, time.Time) ([]models.TaskCompletionCount, error) {
	return f.counts, f.err
}

type fakeMemberResolver struct {
	members map[string]*models.Member
}

func (f *fakeMemberResolver) GetByID(_ context.Context, id string) (*models.Member, error) {
	return f.members[id], nil
}

func summaryFor(memberID, name string, score float64) models.PerformanceSummary {
	return models.PerformanceSummary{
		PerformanceRecord: models.PerformanceRecord{
			MemberID:           memberID,
			Month:              "2026-03",
			ParticipationScore: score,
		},
		MemberName: name,
	}
}

func newLeaderboardFixture(board *fakeBoardReader, completions *fakeCompletionCounter, members *fakeMemberResolver, cacheSvc *CacheService) *LeaderboardService {
	svc := NewLeaderboardService(board, completions, members, cacheSvc, zap.NewNop(), LeaderboardServiceConfig{CacheTTL: time.Minute, BoardSize: 10})
	svc.now = func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestSelectDistinctionsMonthlyIsTopOfBoard(t *testing.T) {
	board := &fakeBoardReader{summaries: []models.PerformanceSummary{
		summaryFor("member-2", "Budi Santoso", 92),
		summaryFor("member-1", "Ayu Lestari", 85),
	}}
	completions := &fakeCompletionCounter{counts: []models.TaskCompletionCount{
		{MemberID: "member-1", TasksCompleted: 6},
		{MemberID: "member-2", TasksCompleted: 3},
	}}
	members := &fakeMemberResolver{members: map[string]*models.Member{
		"member-1": {ID: "member-1", FullName: "Ayu Lestari"},
	}}
	svc := newLeaderboardFixture(board, completions, members, nil)

	result, cached, err := svc.SelectDistinctions(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, "2026-03", result.Month)
	require.NotNil(t, result.Monthly)
	assert.Equal(t, "member-2", result.Monthly.MemberID)
	require.NotNil(t, result.Weekly)
	assert.Equal(t, "member-1", result.Weekly.MemberID)
	assert.Equal(t, 6, result.Weekly.TasksCompleted)
	assert.Equal(t, "Ayu Lestari", result.Weekly.MemberName)
	assert.Len(t, result.Board, 2)
}

func TestSelectDistinctionsEmptyMonth(t *testing.T) {
	svc := newLeaderboardFixture(&fakeBoardReader{}, &fakeCompletionCounter{}, &fakeMemberResolver{}, nil)

	result, _, err := svc.SelectDistinctions(context.Background())
	require.NoError(t, err)
	assert.Nil(t, result.Monthly)
	assert.Nil(t, result.Weekly)
	assert.Empty(t, result.Board)
}

func TestSelectDistinctionsPartialOnWeeklyFailure(t *testing.T) {
	cacheRepo := &stubCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	board := &fakeBoardReader{summaries: []models.PerformanceSummary{
		summaryFor("member-1", "Ayu Lestari", 85),
	}}
	completions := &fakeCompletionCounter{err: errors.New("task store down")}
	svc := newLeaderboardFixture(board, completions, &fakeMemberResolver{}, cacheSvc)

	result, cached, err := svc.SelectDistinctions(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	require.NotNil(t, result.Monthly)
	assert.Nil(t, result.Weekly)
	// Partial results are never cached, so the next read retries the weekly half.
	assert.Empty(t, cacheRepo.entries)
}

func TestSelectDistinctionsCachesFullResult(t *testing.T) {
	cacheRepo := &stubCacheRepo{}
	cacheSvc := NewCacheService(cacheRepo, nil, time.Minute, zap.NewNop(), true)
	board := &fakeBoardReader{summaries: []models.PerformanceSummary{
		summaryFor("member-1", "Ayu Lestari", 85),
	}}
	completions := &fakeCompletionCounter{counts: []models.TaskCompletionCount{
		{MemberID: "member-1", TasksCompleted: 2},
	}}
	svc := newLeaderboardFixture(board, completions, &fakeMemberResolver{}, cacheSvc)

	_, cached, err := svc.SelectDistinctions(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	require.Contains(t, cacheRepo.entries, "leaderboard:2026-03")

	result, cached, err := svc.SelectDistinctions(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, "member-1", result.Monthly.MemberID)
	assert.Equal(t, 1, board.calls)
}
