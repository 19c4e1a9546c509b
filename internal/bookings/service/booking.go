package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	bookingerrors "slotkeeper/internal/bookings/errors"
	"slotkeeper/internal/bookings/lifecycle"
	"slotkeeper/internal/bookings/repository"
	"slotkeeper/internal/bookings/validator"
	calendarservice "slotkeeper/internal/calendar/service"
	catalogservice "slotkeeper/internal/catalog/service"
	"slotkeeper/internal/events"
	"slotkeeper/pkg/config"
	"slotkeeper/pkg/daytime"
	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/lock"
	"slotkeeper/pkg/metrics"
	"slotkeeper/pkg/model"
	"slotkeeper/pkg/sanitizer"
	"slotkeeper/pkg/validation"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type DayProvider interface {
	GetDay(ctx context.Context, specialistID, date string) (*calendarservice.Day, error)
}

type OccupancyReader interface {
	OccupiedIntervals(ctx context.Context, specialistID, date string) ([]daytime.Range, error)
}

type BookingService interface {
	CreateBooking(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error)
	ChangeStatus(ctx context.Context, actor model.Actor, id string, status model.BookingStatus) (*model.Booking, error)
	GetBooking(ctx context.Context, actor model.Actor, id string) (*model.Booking, error)
	ListBookings(ctx context.Context, actor model.Actor, filter *model.BookingFilter) ([]*model.Booking, int64, error)
}

// Dependencies groups the collaborators of the booking service.
type Dependencies struct {
	Repo       repository.BookingRepository
	Validator  *validator.BookingValidator
	Calendar   DayProvider
	Catalog    catalogservice.ServiceCatalog
	Clients    catalogservice.ClientDirectory
	Occupancy  OccupancyReader
	Serializer lock.Serializer
	Events     events.Publisher
	Metrics    *metrics.Metrics
}

type bookingService struct {
	repo       repository.BookingRepository
	validator  *validator.BookingValidator
	calendar   DayProvider
	catalog    catalogservice.ServiceCatalog
	clients    catalogservice.ClientDirectory
	occupancy  OccupancyReader
	serializer lock.Serializer
	events     events.Publisher
	metrics    *metrics.Metrics
	cfg        *config.Config
	now        func() time.Time
}

func NewBookingService(deps Dependencies, cfg *config.Config) BookingService {
	publisher := deps.Events
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &bookingService{
		repo:       deps.Repo,
		validator:  deps.Validator,
		calendar:   deps.Calendar,
		catalog:    deps.Catalog,
		clients:    deps.Clients,
		occupancy:  deps.Occupancy,
		serializer: deps.Serializer,
		events:     publisher,
		metrics:    deps.Metrics,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor model.Actor, req *model.BookingRequest) (*model.Booking, error) {
	initial := lifecycle.InitialStatus(actor)

	booking, err := s.createBooking(ctx, actor, initial, req)
	s.metrics.ObserveBookingAttempt(bookingOutcome(err), string(initial))
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"booking_id", booking.ID,
		"specialist_id", booking.SpecialistID,
		"date", booking.Date,
		"start", booking.Start.String(),
		"end", booking.End.String(),
		"status", booking.Status,
		"created_by", booking.CreatedBy,
	)
	s.events.BookingCreated(ctx, booking)
	return booking, nil
}

func (s *bookingService) createBooking(ctx context.Context, actor model.Actor, initial model.BookingStatus, req *model.BookingRequest) (*model.Booking, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Booking request cannot be empty")
	}
	req.SpecialistID = sanitizer.NormalizeID(req.SpecialistID)
	req.ServiceID = sanitizer.NormalizeID(req.ServiceID)
	req.ClientID = sanitizer.NormalizeID(req.ClientID)
	req.Date = sanitizer.TrimAndNormalize(req.Date)
	req.StartTime = sanitizer.TrimAndNormalize(req.StartTime)

	start, err := s.validator.ValidateRequest(req)
	if err != nil {
		return nil, validation.AppError("Invalid booking request", err)
	}

	if !actor.IsAdmin() && req.ClientID != actor.ClientID {
		return nil, apperrors.Forbidden("Clients may only book for themselves")
	}

	day, svc, err := s.resolve(ctx, req)
	if err != nil {
		return nil, err
	}

	slot := daytime.NewRange(start, start.Add(svc.DurationMin))
	if !daytime.Now(s.now(), day.Location).IsFuture(req.Date, start) {
		return nil, apperrors.PastDateTime("Booking start must be in the future")
	}

	booking := &model.Booking{
		ID:           uuid.NewString(),
		SpecialistID: req.SpecialistID,
		ServiceID:    req.ServiceID,
		ClientID:     req.ClientID,
		Date:         req.Date,
		Start:        slot.Start,
		End:          slot.End,
		Status:       initial,
		CreatedBy:    actor.Role,
	}

	err = s.serializer.Serialize(ctx, lock.Key(req.SpecialistID, req.Date), func(txCtx context.Context) error {
		occupied, err := s.occupancy.OccupiedIntervals(txCtx, req.SpecialistID, req.Date)
		if err != nil {
			return fmt.Errorf("failed to load occupancy: %w", err)
		}

		if taken, overlaps := daytime.FirstOverlap(slot, occupied); overlaps {
			return apperrors.Conflict(fmt.Sprintf("Requested time %s overlaps occupied interval %s", slot, taken))
		}

		if slot.End > daytime.EndOfDay || day.Window == nil || !day.Window.Contains(slot) {
			return apperrors.OutOfWindow(fmt.Sprintf("Requested time %s is outside the working hours", slot))
		}

		now := s.now().UTC()
		booking.CreatedAt = now
		booking.UpdatedAt = now
		return s.repo.Create(txCtx, booking)
	})
	if err != nil {
		return nil, s.translateWrite(err, "Failed to create booking", booking.SpecialistID, booking.Date)
	}

	return booking, nil
}

// resolve loads the specialist's day, the service and the client in
// parallel. Each unknown id is reported as NotFound.
func (s *bookingService) resolve(ctx context.Context, req *model.BookingRequest) (*calendarservice.Day, *model.Service, error) {
	var (
		day *calendarservice.Day
		svc *model.Service
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		day, err = s.calendar.GetDay(gctx, req.SpecialistID, req.Date)
		return err
	})
	g.Go(func() error {
		var err error
		svc, err = s.catalog.GetService(gctx, req.ServiceID)
		return err
	})
	g.Go(func() error {
		ok, err := s.clients.ClientExists(gctx, req.ClientID)
		if err != nil {
			s.cfg.Log.Error("Client directory lookup failed", "client_id", req.ClientID, "error", err)
			return apperrors.Unavailable("client directory")
		}
		if !ok {
			return apperrors.NotFoundWithID("Client", req.ClientID)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return day, svc, nil
}

func (s *bookingService) ChangeStatus(ctx context.Context, actor model.Actor, id string, status model.BookingStatus) (*model.Booking, error) {
	from := "unknown"
	updated, err := s.changeStatus(ctx, actor, id, status, &from)
	s.metrics.ObserveStatusTransition(from, string(status), transitionOutcome(err))
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Booking status changed",
		"booking_id", updated.ID,
		"from", from,
		"to", updated.Status,
		"actor_role", actor.Role,
	)
	s.events.BookingStatusChanged(ctx, updated, model.BookingStatus(from), actor)
	return updated, nil
}

func (s *bookingService) changeStatus(ctx context.Context, actor model.Actor, id string, status model.BookingStatus, from *string) (*model.Booking, error) {
	if err := s.validator.ValidateStatus(status); err != nil {
		return nil, validation.AppError("Invalid booking status", err)
	}

	existing, err := s.GetBooking(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	*from = string(existing.Status)

	if lifecycle.IsTerminal(existing.Status) || !lifecycle.CanTransition(existing.Status, status) {
		return nil, apperrors.InvalidTransition(string(existing.Status), string(status))
	}
	if !lifecycle.ActorMayTransition(actor, existing, status) {
		return nil, apperrors.Forbidden(fmt.Sprintf("Not allowed to move booking to %s", status))
	}

	var updated *model.Booking
	err = s.serializer.Serialize(ctx, lock.Key(existing.SpecialistID, existing.Date), func(txCtx context.Context) error {
		current, err := s.repo.FindByID(txCtx, existing.ID)
		if err != nil {
			return err
		}
		*from = string(current.Status)

		if !lifecycle.CanTransition(current.Status, status) {
			return apperrors.InvalidTransition(string(current.Status), string(status))
		}

		updated, err = s.repo.UpdateStatus(txCtx, current.ID, current.Status, status)
		return err
	})
	if err != nil {
		return nil, s.translateWrite(err, "Failed to change booking status", existing.SpecialistID, existing.Date)
	}

	return updated, nil
}

// GetBooking hides bookings of other clients behind NotFound.
func (s *bookingService) GetBooking(ctx context.Context, actor model.Actor, id string) (*model.Booking, error) {
	id = sanitizer.NormalizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) || errors.Is(err, bookingerrors.ErrInvalidID) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		s.cfg.Log.Error("Failed to retrieve booking", "booking_id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	if !actor.IsAdmin() && booking.ClientID != actor.ClientID {
		return nil, apperrors.NotFoundWithID("Booking", id)
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, actor model.Actor, filter *model.BookingFilter) ([]*model.Booking, int64, error) {
	if filter == nil {
		filter = &model.BookingFilter{}
	}
	filter.SpecialistID = sanitizer.NormalizeID(filter.SpecialistID)
	filter.ClientID = sanitizer.NormalizeID(filter.ClientID)

	if !actor.IsAdmin() {
		if actor.ClientID == "" {
			return nil, 0, apperrors.Forbidden("Client identity required")
		}
		filter.ClientID = actor.ClientID
	}

	if err := s.validator.ValidateFilter(filter); err != nil {
		return nil, 0, validation.AppError("Invalid booking filter", err)
	}

	filter.Limit = config.NormalizePaginationLimit(filter.Limit)
	filter.Offset = config.NormalizeOffset(filter.Offset)

	if filter.Scope != "" {
		if empty := s.applyScope(filter); empty {
			return []*model.Booking{}, 0, nil
		}
	}

	var (
		bookings []*model.Booking
		total    int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		bookings, err = s.repo.Search(gctx, filter)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.repo.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		s.cfg.Log.Error("Failed to list bookings",
			"specialist_id", filter.SpecialistID,
			"client_id", filter.ClientID,
			"error", err,
		)
		return nil, 0, apperrors.Internal("Failed to list bookings", err)
	}

	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, total, nil
}

// applyScope narrows From/To to the upcoming or past side of today in the
// default time zone. It reports true when the narrowed range is empty.
func (s *bookingService) applyScope(filter *model.BookingFilter) bool {
	loc, err := daytime.LoadLocation("", s.cfg.DefaultTimeZone)
	if err != nil {
		loc = time.UTC
	}
	now := s.now().In(loc)
	today := now.Format(daytime.DateLayout)

	switch filter.Scope {
	case model.ScopeUpcoming:
		if filter.From < today {
			filter.From = today
		}
	case model.ScopePast:
		yesterday := now.AddDate(0, 0, -1).Format(daytime.DateLayout)
		if filter.To == "" || filter.To > yesterday {
			filter.To = yesterday
		}
	}
	return filter.From != "" && filter.To != "" && filter.From > filter.To
}

// translateWrite maps errors from inside the critical section. AppErrors
// pass through; lock contention and exclusion violations are conflicts.
func (s *bookingService) translateWrite(err error, message, specialistID, date string) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, lock.ErrLockTimeout):
		return apperrors.Conflict("Slot is being booked by another request")
	case errors.Is(err, bookingerrors.ErrTimeConflict):
		return apperrors.Conflict("Requested time overlaps an occupied interval")
	case errors.Is(err, bookingerrors.ErrStatusChanged):
		return apperrors.Conflict("Booking status was changed by another request")
	case errors.Is(err, bookingerrors.ErrNotFound):
		return apperrors.NotFound("Booking")
	case errors.Is(err, context.DeadlineExceeded):
		return apperrors.Timeout("Request timed out")
	}

	s.cfg.Log.Error(message,
		"specialist_id", specialistID,
		"date", date,
		"error", err,
	)
	return apperrors.Internal(message, err)
}

func bookingOutcome(err error) string {
	if err == nil {
		return "created"
	}
	switch apperrors.AsAppError(err).Code {
	case apperrors.CodeConflict:
		return "conflict"
	case apperrors.CodeOutOfWindow:
		return "out_of_window"
	case apperrors.CodePastDateTime:
		return "past"
	case apperrors.CodeNotFound:
		return "not_found"
	case apperrors.CodeValidation, apperrors.CodeInvalidInput:
		return "invalid"
	case apperrors.CodeForbidden:
		return "forbidden"
	}
	return "error"
}

func transitionOutcome(err error) string {
	if err == nil {
		return "success"
	}
	switch apperrors.AsAppError(err).Code {
	case apperrors.CodeInvalidTransition:
		return "invalid_transition"
	case apperrors.CodeConflict:
		return "conflict"
	case apperrors.CodeForbidden:
		return "forbidden"
	case apperrors.CodeNotFound:
		return "not_found"
	}
	return "error"
}
