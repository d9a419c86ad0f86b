package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sit-council/council-api/internal/models"
	appErrors "github.com/sit-council/council-api/pkg/errors"
	"github.com/sit-council/council-api/pkg/jobs"
)

type fakeLedger struct {
	existing  *models.AttendanceFact
	getErr    error
	upsertErr error
	upserted  *models.AttendanceFact
	records   []models.AttendanceRecord
}

func (f *fakeLedger) GetByMeetingAndMember(context.Context, string, string) (*models.AttendanceFact, error) {
	return f.existing, f.getErr
}

func (f *fakeLedger) Upsert(_ context.Context, fact *models.AttendanceFact) (*models.AttendanceFact, error) {
	if f.upsertErr != nil {
		return nil, f.upsertErr
	}
	stored := *fact
	if stored.ID == "" {
		stored.ID = "fact-1"
	}
	f.upserted = &stored
	return &stored, nil
}

func (f *fakeLedger) ListByMeeting(context.Context, string) ([]models.AttendanceRecord, error) {
	return f.records, nil
}

type fakeMirror struct {
	exists     bool
	existsErr  error
	replaceErr error
	replaced   []models.MeetingAttendee
}

func (f *fakeMirror) Exists(context.Context, string) (bool, error) {
	return f.exists, f.existsErr
}

func (f *fakeMirror) ReplaceAttendee(_ context.Context, entry models.MeetingAttendee) error {
	if f.replaceErr != nil {
		return f.replaceErr
	}
	f.replaced = append(f.replaced, entry)
	return nil
}

type fakeMembers struct {
	exists    bool
	existsErr error
}

func (f *fakeMembers) Exists(context.Context, string) (bool, error) {
	return f.exists, f.existsErr
}

type fakeQueue struct {
	jobs       []jobs.Job
	enqueueErr error
}

func (f *fakeQueue) Enqueue(job jobs.Job) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func newAttendanceFixture(ledger *fakeLedger, mirror *fakeMirror, members *fakeMembers, queue *fakeQueue) *AttendanceService {
	svc := NewAttendanceService(ledger, mirror, members, queue, nil, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC) }
	return svc
}

func TestAttendanceRecordStampsCheckInForPresent(t *testing.T) {
	ledger := &fakeLedger{}
	mirror := &fakeMirror{exists: true}
	queue := &fakeQueue{}
	svc := newAttendanceFixture(ledger, mirror, &fakeMembers{exists: true}, queue)

	fact, err := svc.Record(context.Background(), RecordAttendanceRequest{
		MeetingID: "meeting-1",
		MemberID:  "member-1",
		Status:    "present",
	})
	require.NoError(t, err)
	require.NotNil(t, fact.CheckInTime)
	assert.Equal(t, time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC), *fact.CheckInTime)

	require.Len(t, mirror.replaced, 1)
	assert.Equal(t, models.AttendanceStatusPresent, mirror.replaced[0].Status)
	require.Len(t, queue.jobs, 1)
	assert.Equal(t, JobTypeRecompute, queue.jobs[0].Type)
	assert.Equal(t, "member-1", queue.jobs[0].Payload)
}

func TestAttendanceRecordOverwritesPriorStatus(t *testing.T) {
	checkIn := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	created := time.Date(2026, 3, 10, 9, 0, 5, 0, time.UTC)
	ledger := &fakeLedger{existing: &models.AttendanceFact{
		ID:          "fact-7",
		MeetingID:   "meeting-1",
		MemberID:    "member-1",
		Status:      models.AttendanceStatusPresent,
		CheckInTime: &checkIn,
		CreatedAt:   created,
	}}
	svc := newAttendanceFixture(ledger, &fakeMirror{exists: true}, &fakeMembers{exists: true}, &fakeQueue{})

	fact, err := svc.Record(context.Background(), RecordAttendanceRequest{
		MeetingID: "meeting-1",
		MemberID:  "member-1",
		Status:    "excused",
	})
	require.NoError(t, err)
	assert.Equal(t, "fact-7", fact.ID)
	assert.Equal(t, models.AttendanceStatusExcused, fact.Status)
	assert.Equal(t, created, fact.CreatedAt)
	// Correction keeps the original timestamp even though excused implies no
	// check-in.
	require.NotNil(t, fact.CheckInTime)
	assert.Equal(t, checkIn, *fact.CheckInTime)
}

func TestAttendanceRecordDoesNotRestampCheckIn(t *testing.T) {
	checkIn := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	ledger := &fakeLedger{existing: &models.AttendanceFact{
		ID:          "fact-7",
		CheckInTime: &checkIn,
		Status:      models.AttendanceStatusLate,
	}}
	svc := newAttendanceFixture(ledger, &fakeMirror{exists: true}, &fakeMembers{exists: true}, &fakeQueue{})

	fact, err := svc.Record(context.Background(), RecordAttendanceRequest{
		MeetingID: "meeting-1",
		MemberID:  "member-1",
		Status:    "present",
	})
	require.NoError(t, err)
	require.NotNil(t, fact.CheckInTime)
	assert.Equal(t, checkIn, *fact.CheckInTime)
}

func TestAttendanceRecordRejectsUnknownStatus(t *testing.T) {
	svc := newAttendanceFixture(&fakeLedger{}, &fakeMirror{exists: true}, &fakeMembers{exists: true}, &fakeQueue{})

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{
		MeetingID: "meeting-1",
		MemberID:  "member-1",
		Status:    "vacationing",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidStatus.Code, appErrors.FromError(err).Code)
}

func TestAttendanceRecordUnknownMeeting(t *testing.T) {
	svc := newAttendanceFixture(&fakeLedger{}, &fakeMirror{exists: false}, &fakeMembers{exists: true}, &fakeQueue{})

	_, err := svc.Record(context.Background(), RecordAttendanceRequest{
		MeetingID: "meeting-99",
		MemberID:  "member-1",
		Status:    "present",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAttendanceRecordSurvivesMirrorFailure(t *testing.T) {
	ledger := &fakeLedger{}
	mirror := &fakeMirror{exists: true, replaceErr: errors.New("mirror down")}
	queue := &fakeQueue{}
	svc := newAttendanceFixture(ledger, mirror, &fakeMembers{exists: true}, queue)

	fact, err := svc.Record(context.Background(), RecordAttendanceRequest{
		MeetingID: "meeting-1",
		MemberID:  "member-1",
		Status:    "present",
	})
	require.NoError(t, err)
	assert.NotNil(t, fact)
	// Recompute still dispatched; the ledger write is what counts.
	require.Len(t, queue.jobs, 1)
}

func TestAttendanceRecordSurvivesQueueFailure(t *testing.T) {
	ledger := &fakeLedger{}
	queue := &fakeQueue{enqueueErr: errors.New("queue full")}
	svc := newAttendanceFixture(ledger, &fakeMirror{exists: true}, &fakeMembers{exists: true}, queue)

	fact, err := svc.Record(context.Background(), RecordAttendanceRequest{
		MeetingID: "meeting-1",
		MemberID:  "member-1",
		Status:    "present",
	})
	require.NoError(t, err)
	assert.NotNil(t, fact)
}
