package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	blockserrors "slotkeeper/internal/blocks/errors"
	"slotkeeper/internal/blocks/repository"
	"slotkeeper/internal/blocks/validator"
	calendarservice "slotkeeper/internal/calendar/service"
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
)

type DayProvider interface {
	GetDay(ctx context.Context, specialistID, date string) (*calendarservice.Day, error)
}

type OccupancyReader interface {
	OccupiedIntervals(ctx context.Context, specialistID, date string) ([]daytime.Range, error)
}

type BlockService interface {
	AddBlock(ctx context.Context, specialistID string, req *model.BlockRequest) (*model.BlockedInterval, error)
	RemoveBlock(ctx context.Context, id string) error
	ListBlocks(ctx context.Context, specialistID, date string) ([]*model.BlockedInterval, error)
}

type blockService struct {
	repo       repository.BlockRepository
	validator  *validator.BlockValidator
	calendar   DayProvider
	occupancy  OccupancyReader
	serializer lock.Serializer
	events     events.Publisher
	metrics    *metrics.Metrics
	cfg        *config.Config
	now        func() time.Time
}

func NewBlockService(
	repo repository.BlockRepository,
	validator *validator.BlockValidator,
	calendar DayProvider,
	occupancy OccupancyReader,
	serializer lock.Serializer,
	publisher events.Publisher,
	m *metrics.Metrics,
	cfg *config.Config,
) BlockService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &blockService{
		repo:       repo,
		validator:  validator,
		calendar:   calendar,
		occupancy:  occupancy,
		serializer: serializer,
		events:     publisher,
		metrics:    m,
		cfg:        cfg,
		now:        time.Now,
	}
}

func (s *blockService) AddBlock(ctx context.Context, specialistID string, req *model.BlockRequest) (*model.BlockedInterval, error) {
	block, err := s.addBlock(ctx, specialistID, req)
	s.metrics.ObserveBlockChange("add", changeOutcome(err))
	if err != nil {
		return nil, err
	}

	s.cfg.Log.Info("Blocked interval added",
		"block_id", block.ID,
		"specialist_id", block.SpecialistID,
		"date", block.Date,
		"start", block.Start.String(),
		"end", block.End.String(),
		"origin", block.Origin,
	)
	s.events.BlockCreated(ctx, block)
	return block, nil
}

func (s *blockService) addBlock(ctx context.Context, specialistID string, req *model.BlockRequest) (*model.BlockedInterval, error) {
	if req == nil {
		return nil, apperrors.InvalidInput("Block request cannot be empty")
	}
	specialistID = sanitizer.NormalizeID(specialistID)
	req.Date = sanitizer.TrimAndNormalize(req.Date)
	req.StartTime = sanitizer.TrimAndNormalize(req.StartTime)
	req.EndTime = sanitizer.TrimAndNormalize(req.EndTime)
	req.Reason = sanitizer.NormalizeReason(req.Reason)
	req.Origin = sanitizer.TrimAndNormalize(req.Origin)

	blocked, err := s.validator.ValidateRequest(req)
	if err != nil {
		return nil, validation.AppError("Invalid blocked interval", err)
	}

	if _, err := s.calendar.GetDay(ctx, specialistID, req.Date); err != nil {
		return nil, err
	}

	origin := model.BlockOrigin(req.Origin)
	if origin == "" {
		origin = model.OriginManual
	}

	block := &model.BlockedInterval{
		ID:           uuid.NewString(),
		SpecialistID: specialistID,
		Date:         req.Date,
		Start:        blocked.Start,
		End:          blocked.End,
		Reason:       req.Reason,
		Origin:       origin,
	}

	err = s.serializer.Serialize(ctx, lock.Key(specialistID, req.Date), func(txCtx context.Context) error {
		occupied, err := s.occupancy.OccupiedIntervals(txCtx, specialistID, req.Date)
		if err != nil {
			return fmt.Errorf("failed to load occupancy: %w", err)
		}

		if taken, overlaps := daytime.FirstOverlap(blocked, occupied); overlaps {
			return apperrors.Conflict(fmt.Sprintf("Blocked interval %s overlaps occupied interval %s", blocked, taken))
		}

		block.CreatedAt = s.now().UTC()
		return s.repo.Create(txCtx, block)
	})
	if err != nil {
		return nil, s.translateWrite(err, "Failed to add blocked interval", specialistID, req.Date)
	}

	return block, nil
}

func (s *blockService) RemoveBlock(ctx context.Context, id string) error {
	block, err := s.removeBlock(ctx, id)
	s.metrics.ObserveBlockChange("remove", changeOutcome(err))
	if err != nil {
		return err
	}

	s.cfg.Log.Info("Blocked interval removed",
		"block_id", block.ID,
		"specialist_id", block.SpecialistID,
		"date", block.Date,
	)
	s.events.BlockRemoved(ctx, block)
	return nil
}

func (s *blockService) removeBlock(ctx context.Context, id string) (*model.BlockedInterval, error) {
	id = sanitizer.NormalizeID(id)
	if id == "" {
		return nil, apperrors.InvalidInput("Block ID cannot be empty")
	}

	block, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.translateWrite(err, "Failed to retrieve blocked interval", "", "")
	}

	err = s.serializer.Serialize(ctx, lock.Key(block.SpecialistID, block.Date), func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, id)
	})
	if err != nil {
		return nil, s.translateWrite(err, "Failed to remove blocked interval", block.SpecialistID, block.Date)
	}
	return block, nil
}

func (s *blockService) ListBlocks(ctx context.Context, specialistID, date string) ([]*model.BlockedInterval, error) {
	specialistID = sanitizer.NormalizeID(specialistID)
	if specialistID == "" {
		return nil, apperrors.InvalidInput("Specialist ID cannot be empty")
	}
	if err := s.validator.ValidateDate(date); err != nil {
		return nil, validation.AppError("Invalid date", err)
	}
	if _, err := s.calendar.GetDay(ctx, specialistID, date); err != nil {
		return nil, err
	}

	blocks, err := s.repo.FindByDay(ctx, specialistID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to list blocked intervals",
			"specialist_id", specialistID,
			"date", date,
			"error", err,
		)
		return nil, apperrors.Internal("Failed to list blocked intervals", err)
	}
	return blocks, nil
}

func (s *blockService) translateWrite(err error, message, specialistID, date string) error {
	var appErr *apperrors.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, lock.ErrLockTimeout):
		return apperrors.Conflict("Specialist day is being changed by another request")
	case errors.Is(err, blockserrors.ErrNotFound):
		return apperrors.NotFound("Blocked interval")
	case errors.Is(err, blockserrors.ErrSpecialistNotFound):
		return apperrors.NotFoundWithID("Specialist", specialistID)
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

func changeOutcome(err error) string {
	if err == nil {
		return "success"
	}
	switch apperrors.AsAppError(err).Code {
	case apperrors.CodeConflict:
		return "conflict"
	case apperrors.CodeNotFound:
		return "not_found"
	case apperrors.CodeValidation, apperrors.CodeInvalidInput:
		return "invalid"
	}
	return "error"
}
