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

type contentRepository interface {
	List(ctx context.Context, filter models.ContentFilter) ([]models.Content, int, error)
	FindByID(ctx context.Context, id string) (*models.Content, error)
	Create(ctx context.Context, content *models.Content) error
	Delete(ctx context.Context, id string) error
}

type contentSportReader interface {
	FindByID(ctx context.Context, id string) (*models.Sport, error)
}

// CreateContentRequest carries the payload for registering a content.
type CreateContentRequest struct {
	Title           string `json:"title" validate:"required"`
	Description     string `json:"description"`
	URL             string `json:"url" validate:"required"`
	Level           string `json:"level" validate:"required"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,gt=0"`
	SportID         string `json:"sport_id" validate:"required"`
}

// ContentService manages the educational content catalog. The sport reference
// of a content is fixed at creation.
type ContentService struct {
	contents  contentRepository
	sports    contentSportReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewContentService constructs a ContentService.
func NewContentService(contents contentRepository, sports contentSportReader, validate *validator.Validate, logger *zap.Logger) *ContentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContentService{contents: contents, sports: sports, validator: validate, logger: logger}
}

// Create registers a new content tied to an existing, active sport.
func (s *ContentService) Create(ctx context.Context, req CreateContentRequest) (*models.Content, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid content payload")
	}

	sport, err := s.sports.FindByID(ctx, req.SportID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "sport not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load sport")
	}
	if !sport.Active {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("sport %q is inactive", sport.Name))
	}

	content, err := models.NewContent(req.Title, req.Description, req.URL, req.Level, req.DurationMinutes, sport.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	if err := s.contents.Create(ctx, content); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not save content")
	}

	s.logger.Info("content created", zap.String("content_id", content.ID), zap.String("sport_id", sport.ID))
	return content, nil
}

// Get loads a content by id.
func (s *ContentService) Get(ctx context.Context, id string) (*models.Content, error) {
	content, err := s.contents.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load content")
	}
	return content, nil
}

// List returns contents with filters and pagination metadata.
func (s *ContentService) List(ctx context.Context, filter models.ContentFilter) ([]models.Content, *models.Pagination, error) {
	contents, total, err := s.contents.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list contents")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return contents, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Delete removes a content. Booked lessons keep their snapshot of the
// duration, so removing the content does not disturb the agenda.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.contents.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not delete content")
	}

	s.logger.Info("content deleted", zap.String("content_id", id))
	return nil
}
