package service

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sportedu/agenda-api/internal/models"
	appErrors "github.com/sportedu/agenda-api/pkg/errors"
)

type fakeLessonRepo struct {
	lessons map[string]*models.Lesson
	nextID  int
	deleted []string
}

func (f *fakeLessonRepo) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	out := make([]models.Lesson, 0, len(f.lessons))
	for _, l := range f.lessons {
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (f *fakeLessonRepo) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	if l, ok := f.lessons[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeLessonRepo) ListByTeacherAndDate(ctx context.Context, teacherID string, date time.Time) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, l := range f.lessons {
		if l.TeacherID == teacherID && models.SameDate(l.Date, date) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLessonRepo) ListByTeacher(ctx context.Context, teacherID string) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, l := range f.lessons {
		if l.TeacherID == teacherID {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLessonRepo) ListUpcoming(ctx context.Context, from time.Time) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, l := range f.lessons {
		if !l.Date.Before(from) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (f *fakeLessonRepo) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := f.lessons[id]
	return ok, nil
}

func (f *fakeLessonRepo) Create(ctx context.Context, lesson *models.Lesson) error {
	if f.lessons == nil {
		f.lessons = make(map[string]*models.Lesson)
	}
	if lesson.ID == "" {
		f.nextID++
		lesson.ID = fmt.Sprintf("l%d", f.nextID)
	}
	cp := *lesson
	f.lessons[lesson.ID] = &cp
	return nil
}

func (f *fakeLessonRepo) Delete(ctx context.Context, id string) error {
	delete(f.lessons, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeTeacherReader struct {
	items map[string]*models.Teacher
}

func (f *fakeTeacherReader) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := f.items[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type fakeContentReader struct {
	items map[string]*models.Content
}

func (f *fakeContentReader) FindByID(ctx context.Context, id string) (*models.Content, error) {
	if c, ok := f.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type fakeSportReader struct {
	items map[string]*models.Sport
}

func (f *fakeSportReader) FindByID(ctx context.Context, id string) (*models.Sport, error) {
	if s, ok := f.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

var bookingClock = time.Date(2024, time.June, 1, 12, 0, 0, 0, time.UTC)

func newBookingFixture() (*BookingService, *fakeLessonRepo) {
	lessons := &fakeLessonRepo{lessons: make(map[string]*models.Lesson)}
	teachers := &fakeTeacherReader{items: map[string]*models.Teacher{
		"t1": {ID: "t1", FullName: "Ana Souza", Email: "ana@escola.com", Specialization: "Futebol", Active: true},
		"t2": {ID: "t2", FullName: "Bruno Lima", Email: "bruno@escola.com", Specialization: "Basquete", Active: false},
	}}
	sports := &fakeSportReader{items: map[string]*models.Sport{
		"s1": {ID: "s1", Name: "Futebol", Category: "Coletivo", Active: true},
		"s2": {ID: "s2", Name: "Basquete", Category: "Coletivo", Active: true},
	}}
	contents := &fakeContentReader{items: map[string]*models.Content{
		"c1": {ID: "c1", Title: "Fundamentos do passe", URL: "https://videos.escola.com/passe.mp4", Level: models.LevelFundamental, DurationMinutes: 50, SportID: "s1"},
		"c2": {ID: "c2", Title: "Arremesso livre", URL: "https://videos.escola.com/arremesso.mp4", Level: models.LevelMedio, DurationMinutes: 40, SportID: "s2"},
	}}

	svc := NewBookingService(lessons, teachers, contents, sports, nil, 0, nil, validator.New(), zap.NewNop())
	svc.now = func() time.Time { return bookingClock }
	return svc, lessons
}

func bookingRequest() BookLessonRequest {
	return BookLessonRequest{
		TeacherID:       "t1",
		ContentID:       "c1",
		Date:            "2024-06-10",
		StartTime:       "09:00",
		Title:           "Treino de fundamentos",
		Location:        "Quadra 1",
		DurationMinutes: 60,
	}
}

func TestBookingServiceBook(t *testing.T) {
	svc, lessons := newBookingFixture()

	lesson, err := svc.Book(context.Background(), bookingRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, lesson.ID)
	assert.Equal(t, "09:00", lesson.StartTime)
	assert.Equal(t, "10:00", lesson.EndTime())
	assert.Equal(t, "s1", lesson.SportID)
	require.NotNil(t, lesson.ContentID)
	assert.Equal(t, "c1", *lesson.ContentID)
	assert.Len(t, lessons.lessons, 1)
}

func TestBookingServiceBookDefaults(t *testing.T) {
	svc, _ := newBookingFixture()

	req := bookingRequest()
	req.Title = ""
	req.Location = ""
	req.DurationMinutes = 0

	lesson, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Aula de Fundamentos do passe", lesson.Title)
	assert.Equal(t, "Local padrão", lesson.Location)
	// duration falls back to the content's
	assert.Equal(t, 50, lesson.DurationMinutes)
}

func TestBookingServiceBookTeacherNotFound(t *testing.T) {
	svc, _ := newBookingFixture()

	req := bookingRequest()
	req.TeacherID = "missing"

	_, err := svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceBookInactiveTeacher(t *testing.T) {
	svc, _ := newBookingFixture()

	req := bookingRequest()
	req.TeacherID = "t2"
	req.ContentID = "c2"

	_, err := svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrTeacherInactive.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceBookContentNotFound(t *testing.T) {
	svc, _ := newBookingFixture()

	req := bookingRequest()
	req.ContentID = "missing"

	_, err := svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceBookSpecializationMismatch(t *testing.T) {
	svc, _ := newBookingFixture()

	// Futebol teacher, Basquete content
	req := bookingRequest()
	req.ContentID = "c2"

	_, err := svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSpecializationMismatch.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceBookScheduleConflict(t *testing.T) {
	svc, lessons := newBookingFixture()

	first, err := svc.Book(context.Background(), bookingRequest())
	require.NoError(t, err)

	// overlapping window
	req := bookingRequest()
	req.StartTime = "09:30"
	req.DurationMinutes = 30
	_, err = svc.Book(context.Background(), req)
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrScheduleConflict.Code, appErr.Code)

	var conflictErr *models.LessonConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, first.ID, conflictErr.Conflict.LessonID)

	// back-to-back start at the previous end still conflicts
	req = bookingRequest()
	req.StartTime = "10:00"
	req.DurationMinutes = 30
	_, err = svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrScheduleConflict.Code, appErrors.FromError(err).Code)

	assert.Len(t, lessons.lessons, 1)
}

func TestBookingServiceBookDifferentDateNoConflict(t *testing.T) {
	svc, lessons := newBookingFixture()

	_, err := svc.Book(context.Background(), bookingRequest())
	require.NoError(t, err)

	req := bookingRequest()
	req.Date = "2024-06-11"
	_, err = svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Len(t, lessons.lessons, 2)
}

func TestBookingServiceBookPastDate(t *testing.T) {
	svc, _ := newBookingFixture()

	req := bookingRequest()
	req.Date = "2024-05-20"

	_, err := svc.Book(context.Background(), req)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceCancel(t *testing.T) {
	svc, lessons := newBookingFixture()

	lesson, err := svc.Book(context.Background(), bookingRequest())
	require.NoError(t, err)

	exists, err := svc.LessonExists(context.Background(), lesson.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, svc.Cancel(context.Background(), lesson.ID))

	exists, err = svc.LessonExists(context.Background(), lesson.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, []string{lesson.ID}, lessons.deleted)
}

func TestBookingServiceCancelNotFound(t *testing.T) {
	svc, _ := newBookingFixture()

	err := svc.Cancel(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingServiceCancelOccurred(t *testing.T) {
	svc, lessons := newBookingFixture()

	lessons.lessons["past"] = &models.Lesson{
		ID:              "past",
		Title:           "Treino antigo",
		Date:            time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC),
		StartTime:       "09:00",
		DurationMinutes: 60,
		TeacherID:       "t1",
	}

	err := svc.Cancel(context.Background(), "past")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrLessonOccurred.Code, appErrors.FromError(err).Code)
	assert.Len(t, lessons.lessons, 1)
}

func TestBookingServiceFindConflicts(t *testing.T) {
	svc, lessons := newBookingFixture()

	booked, err := svc.Book(context.Background(), bookingRequest())
	require.NoError(t, err)

	day := time.Date(2024, time.June, 10, 0, 0, 0, 0, time.UTC)

	conflicts, err := svc.FindConflicts(context.Background(), "t1", day, "09:30", 30)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, booked.ID, conflicts[0].LessonID)

	// read-only: a second identical call sees the same state
	again, err := svc.FindConflicts(context.Background(), "t1", day, "09:30", 30)
	require.NoError(t, err)
	assert.Equal(t, conflicts, again)
	assert.Len(t, lessons.lessons, 1)

	clear, err := svc.FindConflicts(context.Background(), "t1", day, "14:00", 60)
	require.NoError(t, err)
	assert.Empty(t, clear)
}
