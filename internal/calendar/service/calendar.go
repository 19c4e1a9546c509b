package service

import (
	"context"
	"errors"
	"time"

	calendarerrors "slotkeeper/internal/calendar/errors"
	"slotkeeper/internal/calendar/repository"
	"slotkeeper/internal/calendar/validator"
	"slotkeeper/pkg/config"
	"slotkeeper/pkg/daytime"
	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/model"
	"slotkeeper/pkg/sanitizer"
	"slotkeeper/pkg/validation"
)

// Day is one specialist's calendar for one date.
type Day struct {
	Specialist *model.Specialist
	Date       string
	// Window is nil when the specialist does not work that day.
	Window   *daytime.Range
	Location *time.Location
}

type CalendarService interface {
	GetWorkingWindow(ctx context.Context, specialistID, date string) (*daytime.Range, error)
	GetDay(ctx context.Context, specialistID, date string) (*Day, error)
	GetSpecialist(ctx context.Context, id string) (*model.Specialist, error)
	UpsertSpecialist(ctx context.Context, sp *model.Specialist) error
	SetWorkingDay(ctx context.Context, specialistID string, day int, req *model.WorkingDayRequest) (*model.Specialist, error)
	RemoveWorkingDay(ctx context.Context, specialistID string, day int) (*model.Specialist, error)
}

type calendarService struct {
	repo      repository.SpecialistRepository
	validator *validator.CalendarValidator
	cfg       *config.Config
}

func NewCalendarService(
	repo repository.SpecialistRepository,
	validator *validator.CalendarValidator,
	cfg *config.Config,
) CalendarService {
	return &calendarService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *calendarService) GetWorkingWindow(ctx context.Context, specialistID, date string) (*daytime.Range, error) {
	day, err := s.GetDay(ctx, specialistID, date)
	if err != nil {
		return nil, err
	}
	return day.Window, nil
}

func (s *calendarService) GetDay(ctx context.Context, specialistID, date string) (*Day, error) {
	if err := s.validator.ValidateDate(date); err != nil {
		return nil, validation.AppError("Invalid date", err)
	}

	sp, err := s.GetSpecialist(ctx, specialistID)
	if err != nil {
		return nil, err
	}

	loc, err := daytime.LoadLocation(sp.TimeZone, s.cfg.DefaultTimeZone)
	if err != nil {
		s.cfg.Log.Error("Specialist has an unusable time zone",
			"specialist_id", sp.ID,
			"time_zone", sp.TimeZone,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to resolve specialist time zone", err)
	}

	weekday, _ := daytime.Weekday(date)

	return &Day{
		Specialist: sp,
		Date:       date,
		Window:     sp.WindowFor(weekday),
		Location:   loc,
	}, nil
}

func (s *calendarService) GetSpecialist(ctx context.Context, id string) (*model.Specialist, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Specialist ID cannot be empty")
	}

	sp, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translate(err, id, "Failed to retrieve specialist")
	}
	return sp, nil
}

func (s *calendarService) UpsertSpecialist(ctx context.Context, sp *model.Specialist) error {
	sp.ID = sanitizer.NormalizeID(sp.ID)
	sp.Name = sanitizer.NormalizeName(sp.Name)
	sp.TimeZone = sanitizer.NormalizeTimeZone(sp.TimeZone)

	if err := s.validator.ValidateSpecialist(sp); err != nil {
		s.cfg.Log.Warn("Specialist validation failed", "id", sp.ID, "error", err)
		return validation.AppError("Specialist validation failed", err)
	}

	if err := s.repo.Upsert(ctx, sp); err != nil {
		s.cfg.Log.Error("Failed to upsert specialist", "id", sp.ID, "error", err)
		return apperrors.Internal("Failed to save specialist", err)
	}

	s.cfg.Log.Info("Specialist saved", "id", sp.ID, "time_zone", sp.TimeZone)
	return nil
}

func (s *calendarService) SetWorkingDay(ctx context.Context, specialistID string, day int, req *model.WorkingDayRequest) (*model.Specialist, error) {
	wd, err := s.validator.ValidateWorkingDay(day, req)
	if err != nil {
		return nil, validation.AppError("Working day validation failed", err)
	}

	if err := s.repo.SetWorkingDay(ctx, specialistID, wd); err != nil {
		return nil, s.translate(err, specialistID, "Failed to set working day")
	}

	s.cfg.Log.Info("Working day set",
		"specialist_id", specialistID,
		"day", day,
		"start", wd.Start.String(),
		"end", wd.End.String(),
	)
	return s.GetSpecialist(ctx, specialistID)
}

func (s *calendarService) RemoveWorkingDay(ctx context.Context, specialistID string, day int) (*model.Specialist, error) {
	if day < 0 || day > 6 {
		return nil, validation.AppError("Invalid day", validation.Field("day", "day must be between 0 (Sunday) and 6 (Saturday)"))
	}

	if err := s.repo.RemoveWorkingDay(ctx, specialistID, day); err != nil {
		return nil, s.translate(err, specialistID, "Failed to remove working day")
	}

	s.cfg.Log.Info("Working day removed", "specialist_id", specialistID, "day", day)
	return s.GetSpecialist(ctx, specialistID)
}

func (s *calendarService) translate(err error, id, message string) error {
	switch {
	case errors.Is(err, calendarerrors.ErrNotFound):
		return apperrors.NotFoundWithID("Specialist", id)
	case errors.Is(err, calendarerrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid specialist ID format")
	default:
		s.cfg.Log.Error(message, "specialist_id", id, "error", err)
		return apperrors.Internal(message, err)
	}
}
