package service

import (
	"context"
	"errors"

	catalogerrors "slotkeeper/internal/catalog/errors"
	"slotkeeper/internal/catalog/repository"
	"slotkeeper/internal/catalog/validator"
	"slotkeeper/pkg/config"
	apperrors "slotkeeper/pkg/errors"
	"slotkeeper/pkg/model"
	"slotkeeper/pkg/sanitizer"
	"slotkeeper/pkg/validation"
)

// ServiceCatalog resolves services by id. Implemented by the store-backed
// CatalogService and by the remote HTTP catalog.
type ServiceCatalog interface {
	GetService(ctx context.Context, id string) (*model.Service, error)
}

// ClientDirectory answers whether a client id is known.
type ClientDirectory interface {
	ClientExists(ctx context.Context, id string) (bool, error)
}

type CatalogService interface {
	ServiceCatalog
	UpsertService(ctx context.Context, svc *model.Service) error
}

type catalogService struct {
	repo      repository.ServiceRepository
	validator *validator.ServiceValidator
	cfg       *config.Config
}

func NewCatalogService(repo repository.ServiceRepository, validator *validator.ServiceValidator, cfg *config.Config) CatalogService {
	return &catalogService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *catalogService) GetService(ctx context.Context, id string) (*model.Service, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Service ID cannot be empty")
	}

	svc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, catalogerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Service", id)
		}
		s.cfg.Log.Error("Failed to get service", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to retrieve service", err)
	}
	return svc, nil
}

func (s *catalogService) UpsertService(ctx context.Context, svc *model.Service) error {
	svc.ID = sanitizer.NormalizeID(svc.ID)
	svc.Name = sanitizer.NormalizeName(svc.Name)

	if err := s.validator.Validate(svc); err != nil {
		s.cfg.Log.Warn("Service validation failed", "id", svc.ID, "error", err)
		return validation.AppError("Service validation failed", err)
	}

	if err := s.repo.Upsert(ctx, svc); err != nil {
		s.cfg.Log.Error("Failed to upsert service", "id", svc.ID, "error", err)
		return apperrors.Internal("Failed to save service", err)
	}

	s.cfg.Log.Info("Service saved", "id", svc.ID, "duration_min", svc.DurationMin)
	return nil
}

// OpenDirectory accepts every non-empty client id. Used when no client
// directory is configured.
type OpenDirectory struct{}

func (OpenDirectory) ClientExists(ctx context.Context, id string) (bool, error) {
	return id != "", nil
}
