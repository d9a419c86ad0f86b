package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	qrcode "github.com/skip2/go-qrcode"
	"go.uber.org/zap"

	"github.com/sit-council/council-api/internal/models"
	appErrors "github.com/sit-council/council-api/pkg/errors"
	"github.com/sit-council/council-api/pkg/export"
)

type meetingStore interface {
	Create(ctx context.Context, meeting *models.Meeting) (*models.Meeting, error)
	GetByID(ctx context.Context, id string) (*models.Meeting, error)
	List(ctx context.Context, filter models.MeetingFilter) ([]models.Meeting, int, error)
	UpdateStatus(ctx context.Context, id string, status models.MeetingStatus) (*models.Meeting, error)
	ListAttendees(ctx context.Context, meetingID string) ([]models.MeetingAttendeeRow, error)
}

// MeetingService manages meetings and their derived artifacts (attendance
// sheets, check-in codes).
type MeetingService struct {
	repo      meetingStore
	validator *validator.Validate
	logger    *zap.Logger
}

// NewMeetingService constructs the meeting service.
func NewMeetingService(repo meetingStore, validate *validator.Validate, logger *zap.Logger) *MeetingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &MeetingService{repo: repo, validator: validate, logger: logger}
	svc.validator.RegisterValidation("meeting_status", func(fl validator.FieldLevel) bool {
		return models.MeetingStatus(strings.ToLower(fl.Field().String())).Valid()
	})
	return svc
}

// CreateMeetingRequest describes the meeting creation payload.
type CreateMeetingRequest struct {
	Title    string    `json:"title" validate:"required"`
	Location *string   `json:"location"`
	Date     time.Time `json:"date" validate:"required"`
}

// Create persists a new meeting in draft status with a generated check-in code.
func (s *MeetingService) Create(ctx context.Context, req CreateMeetingRequest, createdBy string) (*models.Meeting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meeting payload")
	}
	meeting := &models.Meeting{
		Title:     strings.TrimSpace(req.Title),
		Code:      generateMeetingCode(),
		Location:  req.Location,
		Date:      req.Date.UTC(),
		Status:    models.MeetingStatusDraft,
		CreatedBy: createdBy,
	}
	stored, err := s.repo.Create(ctx, meeting)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create meeting")
	}
	return stored, nil
}

// Get fetches a meeting by id.
func (s *MeetingService) Get(ctx context.Context, id string) (*models.Meeting, error) {
	meeting, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch meeting")
	}
	if meeting == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
	}
	return meeting, nil
}

// List returns meetings matching the filter.
func (s *MeetingService) List(ctx context.Context, filter models.MeetingFilter) ([]models.Meeting, *models.Pagination, error) {
	rows, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list meetings")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	return rows, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// UpdateStatus transitions a meeting's lifecycle status.
func (s *MeetingService) UpdateStatus(ctx context.Context, id, status string) (*models.Meeting, error) {
	parsed := models.MeetingStatus(strings.ToLower(status))
	if !parsed.Valid() {
		return nil, appErrors.Clone(appErrors.ErrInvalidStatus, "unsupported meeting status: "+status)
	}
	meeting, err := s.repo.UpdateStatus(ctx, id, parsed)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update meeting status")
	}
	if meeting == nil {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "meeting not found")
	}
	return meeting, nil
}

// AttendanceSheet renders the meeting's attendee mirror as a downloadable
// sheet. Format is "csv" or "pdf".
func (s *MeetingService) AttendanceSheet(ctx context.Context, id, format string) ([]byte, string, error) {
	meeting, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	attendees, err := s.repo.ListAttendees(ctx, id)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendees")
	}

	sheet := export.Sheet{
		Title:   fmt.Sprintf("Attendance - %s (%s)", meeting.Title, meeting.Date.Format("2006-01-02")),
		Headers: []string{"Member", "Role", "Status", "Check-in", "Check-out"},
	}
	for _, a := range attendees {
		sheet.Rows = append(sheet.Rows, []string{
			a.MemberName,
			a.MemberRole,
			string(a.Status),
			formatTimestamp(a.CheckInTime),
			formatTimestamp(a.CheckOutTime),
		})
	}

	switch strings.ToLower(format) {
	case "csv":
		data, err := export.CSV(sheet)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return data, "text/csv", nil
	case "pdf", "":
		data, err := export.PDF(sheet)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return data, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unsupported export format: "+format)
	}
}

// CheckInQR renders the meeting's check-in code as a PNG QR image.
func (s *MeetingService) CheckInQR(ctx context.Context, id string, size int) ([]byte, error) {
	meeting, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if size <= 0 || size > 1024 {
		size = 256
	}
	png, err := qrcode.Encode(meeting.Code, qrcode.Medium, size)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render qr code")
	}
	return png, nil
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format("15:04")
}

func generateMeetingCode() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("CNL-%d", time.Now().UnixNano())
	}
	return "CNL-" + strings.ToUpper(hex.EncodeToString(buf))
}
