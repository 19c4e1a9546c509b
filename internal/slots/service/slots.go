package service

import (
	"context"
	"time"

	calendarservice "slotkeeper/internal/calendar/service"
	catalogservice "slotkeeper/internal/catalog/service"
	"slotkeeper/pkg/config"
	"slotkeeper/pkg/daytime"
	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/metrics"
	"slotkeeper/pkg/model"

	"golang.org/x/sync/errgroup"
)

type DayProvider interface {
	GetDay(ctx context.Context, specialistID, date string) (*calendarservice.Day, error)
}

type OccupancyReader interface {
	OccupiedIntervals(ctx context.Context, specialistID, date string) ([]daytime.Range, error)
}

// SlotService answers availability reads. It never takes the occupancy
// lock.
type SlotService interface {
	GetFreeSlots(ctx context.Context, specialistID, serviceID, date string) ([]daytime.Range, error)
	GetOccupiedIntervals(ctx context.Context, specialistID, date string) ([]daytime.Range, error)
}

type slotService struct {
	calendar  DayProvider
	catalog   catalogservice.ServiceCatalog
	occupancy OccupancyReader
	metrics   *metrics.Metrics
	cfg       *config.Config
	now       func() time.Time
}

func NewSlotService(
	calendar DayProvider,
	catalog catalogservice.ServiceCatalog,
	occupancy OccupancyReader,
	m *metrics.Metrics,
	cfg *config.Config,
) SlotService {
	return &slotService{
		calendar:  calendar,
		catalog:   catalog,
		occupancy: occupancy,
		metrics:   m,
		cfg:       cfg,
		now:       time.Now,
	}
}

func (s *slotService) GetFreeSlots(ctx context.Context, specialistID, serviceID, date string) ([]daytime.Range, error) {
	start := time.Now()
	slots, err := s.freeSlots(ctx, specialistID, serviceID, date)

	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.metrics.ObserveSlotQuery(outcome, time.Since(start))
	return slots, err
}

func (s *slotService) freeSlots(ctx context.Context, specialistID, serviceID, date string) ([]daytime.Range, error) {
	if serviceID == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	var (
		day      *calendarservice.Day
		svc      *model.Service
		occupied []daytime.Range
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		day, err = s.calendar.GetDay(gctx, specialistID, date)
		return err
	})
	g.Go(func() error {
		var err error
		svc, err = s.catalog.GetService(gctx, serviceID)
		return err
	})
	g.Go(func() error {
		var err error
		occupied, err = s.occupancy.OccupiedIntervals(gctx, specialistID, date)
		if err != nil {
			return apperrors.Internal("Failed to load occupied intervals", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		if appErr := apperrors.AsAppError(err); appErr.Code == apperrors.CodeInternal {
			s.cfg.Log.Error("Failed to compute free slots",
				"specialist_id", specialistID,
				"service_id", serviceID,
				"date", date,
				"error", err,
			)
		}
		return nil, err
	}

	if day.Window == nil {
		return []daytime.Range{}, nil
	}

	now := daytime.Now(s.now(), day.Location)
	free := []daytime.Range{}
	for _, slot := range Pack(*day.Window, occupied, svc.DurationMin) {
		if now.IsFuture(date, slot.Start) {
			free = append(free, slot)
		}
	}

	s.cfg.Log.Debug("Free slots computed",
		"specialist_id", specialistID,
		"service_id", serviceID,
		"date", date,
		"occupied", len(occupied),
		"slots", len(free),
	)
	return free, nil
}

func (s *slotService) GetOccupiedIntervals(ctx context.Context, specialistID, date string) ([]daytime.Range, error) {
	if _, err := s.calendar.GetDay(ctx, specialistID, date); err != nil {
		return nil, err
	}

	occupied, err := s.occupancy.OccupiedIntervals(ctx, specialistID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to load occupied intervals",
			"specialist_id", specialistID,
			"date", date,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to load occupied intervals", err)
	}
	return occupied, nil
}
