package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sit-council/council-api/internal/models"
	appErrors "github.com/sit-council/council-api/pkg/errors"
)

type fakeMeetingStore struct {
	created   *models.Meeting
	meeting   *models.Meeting
	updated   *models.Meeting
	attendees []models.MeetingAttendeeRow
}

func (f *fakeMeetingStore) Create(_ context.Context, meeting *models.Meeting) (*models.Meeting, error) {
	f.created = meeting
	return meeting, nil
}

func (f *fakeMeetingStore) GetByID(context.Context, string) (*models.Meeting, error) {
	return f.meeting, nil
}

func (f *fakeMeetingStore) List(context.Context, models.MeetingFilter) ([]models.Meeting, int, error) {
	return nil, 0, nil
}

func (f *fakeMeetingStore) UpdateStatus(context.Context, string, models.MeetingStatus) (*models.Meeting, error) {
	return f.updated, nil
}

func (f *fakeMeetingStore) ListAttendees(context.Context, string) ([]models.MeetingAttendeeRow, error) {
	return f.attendees, nil
}

func TestMeetingCreateDefaults(t *testing.T) {
	store := &fakeMeetingStore{}
	svc := NewMeetingService(store, nil, zap.NewNop())

	meeting, err := svc.Create(context.Background(), CreateMeetingRequest{
		Title: "  Rapat Koordinasi  ",
		Date:  time.Date(2026, 3, 20, 14, 0, 0, 0, time.UTC),
	}, "member-1")
	require.NoError(t, err)
	assert.Equal(t, "Rapat Koordinasi", meeting.Title)
	assert.Equal(t, models.MeetingStatusDraft, meeting.Status)
	assert.Equal(t, "member-1", meeting.CreatedBy)
	assert.True(t, strings.HasPrefix(meeting.Code, "CNL-"))
}

func TestMeetingUpdateStatusRejectsUnknown(t *testing.T) {
	svc := NewMeetingService(&fakeMeetingStore{}, nil, zap.NewNop())

	_, err := svc.UpdateStatus(context.Background(), "meeting-1", "postponed")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidStatus.Code, appErrors.FromError(err).Code)
}

func TestMeetingUpdateStatusNotFound(t *testing.T) {
	svc := NewMeetingService(&fakeMeetingStore{}, nil, zap.NewNop())

	_, err := svc.UpdateStatus(context.Background(), "meeting-99", "completed")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestMeetingAttendanceSheetCSV(t *testing.T) {
	checkIn := time.Date(2026, 3, 20, 14, 5, 0, 0, time.UTC)
	store := &fakeMeetingStore{
		meeting: &models.Meeting{ID: "meeting-1", Title: "Rapat Koordinasi", Date: time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)},
		attendees: []models.MeetingAttendeeRow{
			{
				MeetingAttendee: models.MeetingAttendee{MeetingID: "meeting-1", MemberID: "member-1", Status: models.AttendanceStatusPresent, CheckInTime: &checkIn},
				MemberName:      "Ayu Lestari",
				MemberRole:      "SECRETARY",
			},
		},
	}
	svc := NewMeetingService(store, nil, zap.NewNop())

	data, contentType, err := svc.AttendanceSheet(context.Background(), "meeting-1", "csv")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)
	body := string(data)
	assert.Contains(t, body, "Ayu Lestari")
	assert.Contains(t, body, "present")
	assert.Contains(t, body, "14:05")
}

func TestMeetingAttendanceSheetUnknownFormat(t *testing.T) {
	store := &fakeMeetingStore{meeting: &models.Meeting{ID: "meeting-1", Title: "Rapat"}}
	svc := NewMeetingService(store, nil, zap.NewNop())

	_, _, err := svc.AttendanceSheet(context.Background(), "meeting-1", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestMeetingCheckInQR(t *testing.T) {
	store := &fakeMeetingStore{meeting: &models.Meeting{ID: "meeting-1", Code: "CNL-AB12CD34"}}
	svc := NewMeetingService(store, nil, zap.NewNop())

	png, err := svc.CheckInQR(context.Background(), "meeting-1", 0)
	require.NoError(t, err)
	assert.NotEmpty(t, png)
	// PNG magic bytes.
	assert.Equal(t, byte(0x89), png[0])
}
