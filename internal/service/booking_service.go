package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/sportedu/agenda-api/internal/models"
	appErrors "github.com/sportedu/agenda-api/pkg/errors"
)

// Fallbacks for the convenience booking path. Requests may omit title,
// location and duration; defaults derive from the referenced content.
const (
	defaultLessonDurationMinutes = 60
	defaultLessonLocation        = "Local padrão"
)

type bookingLessonRepository interface {
	List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error)
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	ListByTeacherAndDate(ctx context.Context, teacherID string, date time.Time) ([]models.Lesson, error)
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Lesson, error)
	ListUpcoming(ctx context.Context, from time.Time) ([]models.Lesson, error)
	Exists(ctx context.Context, id string) (bool, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id string) error
}

type bookingTeacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type bookingContentReader interface {
	FindByID(ctx context.Context, id string) (*models.Content, error)
}

type bookingSportReader interface {
	FindByID(ctx context.Context, id string) (*models.Sport, error)
}

type agendaCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// BookLessonRequest carries a booking attempt. Title, location and duration
// are optional; see the defaulting rules in Book.
type BookLessonRequest struct {
	TeacherID       string `json:"teacher_id" validate:"required"`
	ContentID       string `json:"content_id" validate:"required"`
	Date            string `json:"date" validate:"required"`
	StartTime       string `json:"start_time" validate:"required"`
	Title           string `json:"title"`
	Location        string `json:"location"`
	DurationMinutes int    `json:"duration_minutes" validate:"omitempty,min=1"`
}

// teacherLocks hands out one mutex per teacher id so concurrent bookings for
// the same teacher cannot both pass the conflict scan.
type teacherLocks struct {
	mu   sync.Mutex
	byID map[string]*sync.Mutex
}

func (l *teacherLocks) forTeacher(id string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.byID == nil {
		l.byID = make(map[string]*sync.Mutex)
	}
	lock, ok := l.byID[id]
	if !ok {
		lock = &sync.Mutex{}
		l.byID[id] = lock
	}
	return lock
}

// BookingService orchestrates lesson bookings: identity and eligibility
// checks, the schedule conflict scan, construction and persistence.
type BookingService struct {
	lessons   bookingLessonRepository
	teachers  bookingTeacherReader
	contents  bookingContentReader
	sports    bookingSportReader
	cache     agendaCache
	cacheTTL  time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	locks     teacherLocks
}

// NewBookingService constructs a BookingService. Cache and metrics are
// optional; nil disables them.
func NewBookingService(
	lessons bookingLessonRepository,
	teachers bookingTeacherReader,
	contents bookingContentReader,
	sports bookingSportReader,
	cache agendaCache,
	cacheTTL time.Duration,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		lessons:   lessons,
		teachers:  teachers,
		contents:  contents,
		sports:    sports,
		cache:     cache,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Book attempts to reserve a lesson slot. Checks run in a fixed order: teacher
// identity, teacher active, content identity, specialization eligibility,
// schedule conflict, then field validation on construction. Decisions for one
// teacher are serialized so two racing requests cannot both book the same slot.
func (s *BookingService) Book(ctx context.Context, req BookLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		s.observeBooking(BookingOutcomeRejected)
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	date, err := time.Parse(models.DateLayout, strings.TrimSpace(req.Date))
	if err != nil {
		s.observeBooking(BookingOutcomeRejected)
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted as YYYY-MM-DD")
	}
	startMinute, err := models.ValidateStartTime(req.StartTime)
	if err != nil {
		s.observeBooking(BookingOutcomeRejected)
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	lock := s.locks.forTeacher(req.TeacherID)
	lock.Lock()
	defer lock.Unlock()

	teacher, err := s.teachers.FindByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.observeBooking(BookingOutcomeRejected)
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load teacher")
	}
	if !teacher.Active {
		s.observeBooking(BookingOutcomeRejected)
		return nil, appErrors.Clone(appErrors.ErrTeacherInactive, fmt.Sprintf("teacher %s is inactive", teacher.ID))
	}

	content, err := s.contents.FindByID(ctx, req.ContentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.observeBooking(BookingOutcomeRejected)
			return nil, appErrors.Clone(appErrors.ErrNotFound, "content not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load content")
	}

	sport, err := s.sports.FindByID(ctx, content.SportID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load sport for content")
	}
	if !teacher.CanTeach(sport.Name) {
		s.observeBooking(BookingOutcomeRejected)
		return nil, appErrors.Clone(appErrors.ErrSpecializationMismatch,
			fmt.Sprintf("teacher specializes in %q, lesson requires %q", teacher.Specialization, sport.Name))
	}

	duration := req.DurationMinutes
	if duration == 0 {
		duration = content.DurationMinutes
		if duration <= 0 {
			duration = defaultLessonDurationMinutes
		}
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Aula de " + content.Title
	}
	location := strings.TrimSpace(req.Location)
	if location == "" {
		location = defaultLessonLocation
	}

	existing, err := s.lessons.ListByTeacherAndDate(ctx, teacher.ID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not scan teacher agenda")
	}
	for i := range existing {
		other := &existing[i]
		if models.Overlaps(date, startMinute, duration, other.Date, other.StartMinute(), other.DurationMinutes) {
			conflict := &models.LessonConflictError{
				Message:  fmt.Sprintf("teacher %s already has lesson %s from %s to %s", teacher.ID, other.ID, other.StartTime, other.EndTime()),
				Conflict: models.ConflictFrom(other),
			}
			s.observeBooking(BookingOutcomeConflict)
			return nil, appErrors.Wrap(conflict, appErrors.ErrScheduleConflict.Code, appErrors.ErrScheduleConflict.Status, conflict.Message)
		}
	}

	contentID := content.ID
	lesson, err := models.NewLesson(title, date, req.StartTime, duration, location, sport.ID, teacher.ID, &contentID, s.now())
	if err != nil {
		s.observeBooking(BookingOutcomeRejected)
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	if err := s.lessons.Create(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not save lesson")
	}

	s.invalidateAgenda(ctx, teacher.ID, lesson.Date)
	s.observeBooking(BookingOutcomeBooked)
	s.logger.Info("lesson booked",
		zap.String("lesson_id", lesson.ID),
		zap.String("teacher_id", teacher.ID),
		zap.String("date", req.Date),
		zap.String("start_time", lesson.StartTime))
	return lesson, nil
}

// Cancel removes a booked lesson. Lessons whose start has passed are kept for
// the historical record and cannot be cancelled.
func (s *BookingService) Cancel(ctx context.Context, id string) error {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load lesson")
	}

	if lesson.Occurred(s.now()) {
		return appErrors.Clone(appErrors.ErrLessonOccurred, "")
	}

	if err := s.lessons.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not delete lesson")
	}

	s.invalidateAgenda(ctx, lesson.TeacherID, lesson.Date)
	if s.metrics != nil {
		s.metrics.ObserveCancellation()
	}
	s.logger.Info("lesson cancelled", zap.String("lesson_id", id), zap.String("teacher_id", lesson.TeacherID))
	return nil
}

// FindConflicts lists every lesson a hypothetical booking would collide with.
// Read-only and idempotent; it never reserves the slot.
func (s *BookingService) FindConflicts(ctx context.Context, teacherID string, date time.Time, startTime string, durationMinutes int) ([]models.LessonConflict, error) {
	startMinute, err := models.ValidateStartTime(startTime)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if durationMinutes < models.MinDurationMinutes || durationMinutes > models.MaxDurationMinutes {
		return nil, appErrors.Clone(appErrors.ErrValidation, "duration_minutes must be between 30 and 240 minutes")
	}

	agenda, err := s.Agenda(ctx, teacherID, date)
	if err != nil {
		return nil, err
	}

	conflicts := make([]models.LessonConflict, 0)
	for i := range agenda {
		other := &agenda[i]
		if models.Overlaps(date, startMinute, durationMinutes, other.Date, other.StartMinute(), other.DurationMinutes) {
			conflicts = append(conflicts, models.ConflictFrom(other))
		}
	}
	return conflicts, nil
}

// Agenda returns a teacher's lessons for one calendar date, cache-assisted.
// Booking decisions never read this path; the conflict scan inside Book always
// hits the store directly.
func (s *BookingService) Agenda(ctx context.Context, teacherID string, date time.Time) ([]models.Lesson, error) {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load teacher")
	}

	key := agendaCacheKey(teacherID, date)
	if s.cache != nil {
		var cached []models.Lesson
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("agenda cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	lessons, err := s.lessons.ListByTeacherAndDate(ctx, teacherID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load agenda")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, lessons, s.cacheTTL); err != nil {
			s.logger.Warn("agenda cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return lessons, nil
}

// Get loads a single lesson by id.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Lesson, error) {
	lesson, err := s.lessons.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not load lesson")
	}
	return lesson, nil
}

// LessonExists reports whether a lesson with the given id is still booked.
func (s *BookingService) LessonExists(ctx context.Context, id string) (bool, error) {
	exists, err := s.lessons.Exists(ctx, id)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not check lesson")
	}
	return exists, nil
}

// List returns lessons with filters and pagination metadata.
func (s *BookingService) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, *models.Pagination, error) {
	lessons, total, err := s.lessons.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list lessons")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return lessons, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// ListByTeacher returns every lesson booked for a teacher.
func (s *BookingService) ListByTeacher(ctx context.Context, teacherID string) ([]models.Lesson, error) {
	lessons, err := s.lessons.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list teacher lessons")
	}
	return lessons, nil
}

// ListUpcoming returns lessons dated today or later.
func (s *BookingService) ListUpcoming(ctx context.Context) ([]models.Lesson, error) {
	lessons, err := s.lessons.ListUpcoming(ctx, models.DateOnly(s.now()))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "could not list upcoming lessons")
	}
	return lessons, nil
}

func (s *BookingService) observeBooking(outcome string) {
	if s.metrics != nil {
		s.metrics.ObserveBooking(outcome)
	}
}

func (s *BookingService) invalidateAgenda(ctx context.Context, teacherID string, date time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, agendaCacheKey(teacherID, date)); err != nil {
		s.logger.Warn("agenda cache invalidation failed", zap.String("teacher_id", teacherID), zap.Error(err))
	}
}

func agendaCacheKey(teacherID string, date time.Time) string {
	return fmt.Sprintf("agenda:%s:%s", teacherID, date.Format(models.DateLayout))
}
