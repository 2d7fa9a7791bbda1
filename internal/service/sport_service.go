package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sportedu/agenda-api/internal/models"
	appErrors "github.com/sportedu/agenda-api/pkg/errors"
)

type sportRepository interface {
	List(ctx context.Context, filter models.SportFilter) ([]models.Sport, int, error)
	FindByID(ctx context.Context, id string) (*models.Sport, error)
	ExistsByName(ctx context.Context, name string, excludeID string) (bool, error)
	Create(ctx context.Context, sport *models.Sport) error
	Deactivate(ctx context.Context, id string) error
}

type sportContentCounter interface {
	CountBySport(ctx context.Context, sportID string) (int, error)
}

// CreateSportRequest carries the payload for registering a sport.
type CreateSportRequest struct {
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required"`
}

// SportService manages the sport catalog. Sports have no rename operation;
// names are fixed at creation and unique school-wide.
type SportService struct {
	sports    sportRepository
	contents  sportContentCounter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSportService constructs a SportService.
func NewSportService(sports sportRepository, contents sportContentCounter, validate *validator.Validate, logger *zap.Logger) *SportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SportService{sports: sports, contents: contents, validator: validate, logger: logger}
}

// Create registers a new sport with a unique name.
func (s *SportService) Create(ctx context.Context, req CreateSportRequest) (*models.Sport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid sport payload")
	}

	sport, err := models.NewSport(req.Name, req.Category)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	taken, err := s.sports.ExistsByName(ctx, sport.Name, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not check sport name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("sport %q already registered", sport.Name))
	}

	if err := s.sports.Create(ctx, sport); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not save sport")
	}

	s.logger.Info("sport created", zap.String("sport_id", sport.ID), zap.String("name", sport.Name))
	return sport, nil
}

// Get loads a sport by id.
func (s *SportService) Get(ctx context.Context, id string) (*models.Sport, error) {
	sport, err := s.sports.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sport not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load sport")
	}
	return sport, nil
}

// List returns sports with filters and pagination metadata.
func (s *SportService) List(ctx context.Context, filter models.SportFilter) ([]models.Sport, *models.Pagination, error) {
	sports, total, err := s.sports.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list sports")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return sports, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Deactivate marks a sport inactive. Sports still referenced by contents stay
// active so their contents remain bookable.
func (s *SportService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	referenced, err := s.contents.CountBySport(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not check sport references")
	}
	if referenced > 0 {
		return appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("sport is referenced by %d contents and cannot be deactivated", referenced))
	}

	if err := s.sports.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not deactivate sport")
	}

	s.logger.Info("sport deactivated", zap.String("sport_id", id))
	return nil
}
