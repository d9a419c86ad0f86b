package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sit-council/council-api/internal/models"
	appErrors "github.com/sit-council/council-api/pkg/errors"
	"github.com/sit-council/council-api/pkg/jobs"
)

// JobTypeRecompute identifies performance recompute jobs on the queue. The
// payload is the member id.
const JobTypeRecompute = "performance.recompute"

type attendanceLedger interface {
	GetByMeetingAndMember(ctx context.Context, meetingID, memberID string) (*models.AttendanceFact, error)
	Upsert(ctx context.Context, fact *models.AttendanceFact) (*models.AttendanceFact, error)
	ListByMeeting(ctx context.Context, meetingID string) ([]models.AttendanceRecord, error)
}

type attendeeMirror interface {
	Exists(ctx context.Context, id string) (bool, error)
	ReplaceAttendee(ctx context.Context, entry models.MeetingAttendee) error
}

type memberDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

type recomputeDispatcher interface {
	Enqueue(job jobs.Job) error
}

// AttendanceService owns the attendance ledger and keeps the meeting
// attendee mirror and the monthly rollup in sync with it.
type AttendanceService struct {
	ledger    attendanceLedger
	meetings  attendeeMirror
	members   memberDirectory
	queue     recomputeDispatcher
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(ledger attendanceLedger, meetings attendeeMirror, members memberDirectory, queue recomputeDispatcher, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AttendanceService{
		ledger:    ledger,
		meetings:  meetings,
		members:   members,
		queue:     queue,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		return models.AttendanceStatus(strings.ToLower(fl.Field().String())).Valid()
	})
	return svc
}

// RecordAttendanceRequest describes the attendance recording payload.
type RecordAttendanceRequest struct {
	MeetingID string  `json:"meeting_id" validate:"required"`
	MemberID  string  `json:"member_id" validate:"required"`
	Status    string  `json:"status" validate:"required,attendance_status"`
	Notes     *string `json:"notes"`
}

// Record writes an attendance fact for a (meeting, member) pair. A repeated
// call overwrites status and notes on the existing row. The original check-in
// timestamp is preserved on corrections; it is stamped only when the new
// status implies presence and no timestamp exists yet.
//
// After the ledger write the meeting's attendee mirror is replaced and a
// recompute job is dispatched for the member. Neither of those steps can fail
// the recording: the ledger row is durable even when its projections lag.
func (s *AttendanceService) Record(ctx context.Context, req RecordAttendanceRequest) (*models.AttendanceFact, error) {
	if err := s.validator.Struct(req); err != nil {
		status := models.AttendanceStatus(strings.ToLower(req.Status))
		if req.Status != "" && !status.Valid() {
			return nil, appErrors.Clone(appErrors.ErrInvalidStatus, "unsupported attendance status: "+req.Status)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	meetingOK, err := s.meetings.Exists(ctx, req.MeetingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve meeting")
	}
	if !meetingOK {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
	}
	memberOK, err := s.members.Exists(ctx, req.MemberID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve member")
	}
	if !memberOK {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
	}

	status := models.AttendanceStatus(strings.ToLower(req.Status))

	prior, err := s.ledger.GetByMeetingAndMember(ctx, req.MeetingID, req.MemberID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read attendance ledger")
	}

	fact := &models.AttendanceFact{
		MeetingID: req.MeetingID,
		MemberID:  req.MemberID,
		Status:    status,
		Notes:     req.Notes,
	}
	if prior != nil {
		fact.ID = prior.ID
		fact.CreatedAt = prior.CreatedAt
		fact.CheckInTime = prior.CheckInTime
		fact.CheckOutTime = prior.CheckOutTime
	}
	if status.CheckedIn() && fact.CheckInTime == nil {
		ts := s.now().UTC()
		fact.CheckInTime = &ts
	}

	stored, err := s.ledger.Upsert(ctx, fact)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to write attendance ledger")
	}

	// The ledger row is committed. Mirror sync and recompute dispatch run
	// after it and are never allowed to undo it.
	if err := s.meetings.ReplaceAttendee(ctx, models.MeetingAttendee{
		MeetingID:    stored.MeetingID,
		MemberID:     stored.MemberID,
		Status:       stored.Status,
		CheckInTime:  stored.CheckInTime,
		CheckOutTime: stored.CheckOutTime,
	}); err != nil {
		s.logger.Warn("attendee mirror sync failed, mirror stale until next write",
			zap.String("meeting_id", stored.MeetingID),
			zap.String("member_id", stored.MemberID),
			zap.Error(err))
	}

	if err := s.queue.Enqueue(jobs.Job{
		ID:      stored.ID,
		Type:    JobTypeRecompute,
		Payload: stored.MemberID,
	}); err != nil {
		s.logger.Warn("performance recompute deferred",
			zap.String("member_id", stored.MemberID),
			zap.Error(err))
	}

	return stored, nil
}

// ListByMeeting returns ledger rows for a meeting.
func (s *AttendanceService) ListByMeeting(ctx context.Context, meetingID string) ([]models.AttendanceRecord, error) {
	meetingOK, err := s.meetings.Exists(ctx, meetingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve meeting")
	}
	if !meetingOK {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
	}
	records, err := s.ledger.ListByMeeting(ctx, meetingID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return records, nil
}
