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

type teacherRepository interface {
	List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error)
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
	ListBySpecialization(ctx context.Context, term string) ([]models.Teacher, error)
	ExistsByEmail(ctx context.Context, email string, excludeID string) (bool, error)
	Create(ctx context.Context, teacher *models.Teacher) error
	Update(ctx context.Context, teacher *models.Teacher) error
	Deactivate(ctx context.Context, id string) error
}

// CreateTeacherRequest carries the payload for registering a teacher.
type CreateTeacherRequest struct {
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Specialization string `json:"specialization" validate:"required"`
}

// UpdateTeacherRequest carries the payload for editing a teacher. All fields
// are required; partial updates are not supported.
type UpdateTeacherRequest struct {
	FullName       string `json:"full_name" validate:"required"`
	Email          string `json:"email" validate:"required,email"`
	Specialization string `json:"specialization" validate:"required"`
}

// TeacherService manages instructor records.
type TeacherService struct {
	teachers  teacherRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherService constructs a TeacherService.
func NewTeacherService(teachers teacherRepository, validate *validator.Validate, logger *zap.Logger) *TeacherService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{teachers: teachers, validator: validate, logger: logger}
}

// Create registers a new teacher with a unique email.
func (s *TeacherService) Create(ctx context.Context, req CreateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	teacher, err := models.NewTeacher(req.FullName, req.Email, req.Specialization)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	taken, err := s.teachers.ExistsByEmail(ctx, teacher.Email, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not check teacher email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("email %s already in use", teacher.Email))
	}

	if err := s.teachers.Create(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not save teacher")
	}

	s.logger.Info("teacher created", zap.String("teacher_id", teacher.ID), zap.String("specialization", teacher.Specialization))
	return teacher, nil
}

// Get loads a teacher by id.
func (s *TeacherService) Get(ctx context.Context, id string) (*models.Teacher, error) {
	teacher, err := s.teachers.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load teacher")
	}
	return teacher, nil
}

// List returns teachers with filters and pagination metadata.
func (s *TeacherService) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, *models.Pagination, error) {
	teachers, total, err := s.teachers.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list teachers")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return teachers, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ListBySpecialization returns active teachers whose specialization mentions
// the term. Substring classification; distinct from the booking gate, which
// requires an exact match.
func (s *TeacherService) ListBySpecialization(ctx context.Context, term string) ([]models.Teacher, error) {
	teachers, err := s.teachers.ListBySpecialization(ctx, term)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list teachers by specialization")
	}
	return teachers, nil
}

// Update replaces a teacher's editable fields, keeping email unique.
func (s *TeacherService) Update(ctx context.Context, id string, req UpdateTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	teacher, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	fullName, err := models.ValidateTeacherName(req.FullName)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	email, err := models.ValidateTeacherEmail(req.Email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	specialization, err := models.ValidateSpecialization(req.Specialization)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	taken, err := s.teachers.ExistsByEmail(ctx, email, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not check teacher email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("email %s already in use", email))
	}

	teacher.FullName = fullName
	teacher.Email = email
	teacher.Specialization = specialization

	if err := s.teachers.Update(ctx, teacher); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not update teacher")
	}

	s.logger.Info("teacher updated", zap.String("teacher_id", id))
	return teacher, nil
}

// Deactivate marks a teacher inactive. Existing lessons stay booked; only new
// bookings are blocked.
func (s *TeacherService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if err := s.teachers.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not deactivate teacher")
	}

	s.logger.Info("teacher deactivated", zap.String("teacher_id", id))
	return nil
}
