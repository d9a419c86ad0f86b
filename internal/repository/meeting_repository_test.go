package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sit-council/council-api/internal/models"
)

func TestMeetingRepositoryGetByIDNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("FROM meetings WHERE id = $1")).
		WithArgs("meeting-99").
		WillReturnError(sql.ErrNoRows)

	meeting, err := repo.GetByID(context.Background(), "meeting-99")
	require.NoError(t, err)
	assert.Nil(t, meeting)
}

func TestMeetingRepositoryExists(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM meetings WHERE id = $1)")).
		WithArgs("meeting-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), "meeting-1")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestMeetingRepositoryCountCompletedBetween(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM meetings WHERE status = $1 AND date >= $2 AND date < $3")).
		WithArgs(models.MeetingStatusCompleted, from, to).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	count, err := repo.CountCompletedBetween(context.Background(), from, to)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestMeetingRepositoryReplaceAttendee(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	checkIn := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM meeting_attendees WHERE meeting_id = $1 AND member_id = $2")).
		WithArgs("meeting-1", "member-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO meeting_attendees")).
		WithArgs("meeting-1", "member-1", models.AttendanceStatusLate, &checkIn, nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err := repo.ReplaceAttendee(context.Background(), models.MeetingAttendee{
		MeetingID:   "meeting-1",
		MemberID:    "member-1",
		Status:      models.AttendanceStatusLate,
		CheckInTime: &checkIn,
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepositoryReplaceAttendeeRollsBackOnInsertFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM meeting_attendees")).
		WithArgs("meeting-1", "member-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO meeting_attendees")).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.ReplaceAttendee(context.Background(), models.MeetingAttendee{
		MeetingID: "meeting-1",
		MemberID:  "member-1",
		Status:    models.AttendanceStatusPresent,
	})
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMeetingRepositoryUpdateStatusNone(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewMeetingRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE meetings SET status = $2, updated_at = $3 WHERE id = $1")).
		WithArgs("meeting-99", models.MeetingStatusCompleted, sqlmock.AnyArg()).
		WillReturnError(sql.ErrNoRows)

	meeting, err := repo.UpdateStatus(context.Background(), "meeting-99", models.MeetingStatusCompleted)
	require.NoError(t, err)
	assert.Nil(t, meeting)
}
