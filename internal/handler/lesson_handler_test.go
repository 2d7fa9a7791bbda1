package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sportedu/agenda-api/internal/models"
	"github.com/sportedu/agenda-api/internal/service"
)

type lessonStoreStub struct {
	lessons map[string]*models.Lesson
	nextID  int
}

func (s *lessonStoreStub) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	out := make([]models.Lesson, 0, len(s.lessons))
	for _, l := range s.lessons {
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (s *lessonStoreStub) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	if l, ok := s.lessons[id]; ok {
		cp := *l
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *lessonStoreStub) ListByTeacherAndDate(ctx context.Context, teacherID string, date time.Time) ([]models.Lesson, error) {
	var out []models.Lesson
	for _, l := range s.lessons {
		if l.TeacherID == teacherID && models.SameDate(l.Date, date) {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *lessonStoreStub) ListByTeacher(ctx context.Context, teacherID string) ([]models.Lesson, error) {
	return nil, nil
}

func (s *lessonStoreStub) ListUpcoming(ctx context.Context, from time.Time) ([]models.Lesson, error) {
	return nil, nil
}

func (s *lessonStoreStub) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := s.lessons[id]
	return ok, nil
}

func (s *lessonStoreStub) Create(ctx context.Context, lesson *models.Lesson) error {
	if s.lessons == nil {
		s.lessons = make(map[string]*models.Lesson)
	}
	if lesson.ID == "" {
		s.nextID++
		lesson.ID = fmt.Sprintf("l%d", s.nextID)
	}
	cp := *lesson
	s.lessons[lesson.ID] = &cp
	return nil
}

func (s *lessonStoreStub) Delete(ctx context.Context, id string) error {
	delete(s.lessons, id)
	return nil
}

type teacherStoreStub struct{ items map[string]*models.Teacher }

func (s *teacherStoreStub) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if t, ok := s.items[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type contentStoreStub struct{ items map[string]*models.Content }

func (s *contentStoreStub) FindByID(ctx context.Context, id string) (*models.Content, error) {
	if c, ok := s.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

type sportStoreStub struct{ items map[string]*models.Sport }

func (s *sportStoreStub) FindByID(ctx context.Context, id string) (*models.Sport, error) {
	if sp, ok := s.items[id]; ok {
		cp := *sp
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func newLessonRouter() (*gin.Engine, *lessonStoreStub) {
	gin.SetMode(gin.TestMode)

	store := &lessonStoreStub{lessons: make(map[string]*models.Lesson)}
	teachers := &teacherStoreStub{items: map[string]*models.Teacher{
		"t1": {ID: "t1", FullName: "Ana Souza", Email: "ana@escola.com", Specialization: "Futebol", Active: true},
	}}
	contents := &contentStoreStub{items: map[string]*models.Content{
		"c1": {ID: "c1", Title: "Fundamentos do passe", URL: "https://videos.escola.com/passe.mp4", Level: models.LevelFundamental, DurationMinutes: 50, SportID: "s1"},
	}}
	sports := &sportStoreStub{items: map[string]*models.Sport{
		"s1": {ID: "s1", Name: "Futebol", Category: "Coletivo", Active: true},
	}}

	bookings := service.NewBookingService(store, teachers, contents, sports, nil, 0, nil, nil, nil)
	h := NewLessonHandler(bookings)

	r := gin.New()
	r.POST("/lessons", h.Book)
	r.DELETE("/lessons/:id", h.Cancel)
	r.GET("/lessons/conflicts", h.Conflicts)
	return r, store
}

func futureDate() string {
	return time.Now().AddDate(0, 0, 7).Format(models.DateLayout)
}

func bookBody(t *testing.T, overrides map[string]interface{}) []byte {
	payload := map[string]interface{}{
		"teacher_id":       "t1",
		"content_id":       "c1",
		"date":             futureDate(),
		"start_time":       "09:00",
		"title":            "Treino de fundamentos",
		"location":         "Quadra 1",
		"duration_minutes": 60,
	}
	for k, v := range overrides {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func TestLessonHandlerBook(t *testing.T) {
	r, store := newLessonRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/lessons", bytes.NewReader(bookBody(t, nil)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, store.lessons, 1)

	var envelope struct {
		Data models.Lesson `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.ID)
	assert.Equal(t, "09:00", envelope.Data.StartTime)
}

func TestLessonHandlerBookInvalidBody(t *testing.T) {
	r, _ := newLessonRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/lessons", bytes.NewReader([]byte(`invalid`)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLessonHandlerBookConflict(t *testing.T) {
	r, store := newLessonRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/lessons", bytes.NewReader(bookBody(t, nil)))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodPost, "/lessons", bytes.NewReader(bookBody(t, map[string]interface{}{
		"start_time":       "09:30",
		"duration_minutes": 30,
	})))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	assert.Len(t, store.lessons, 1)

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "SCHEDULE_CONFLICT", envelope.Error.Code)
}

func TestLessonHandlerCancelNotFound(t *testing.T) {
	r, _ := newLessonRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodDelete, "/lessons/missing", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLessonHandlerConflictsRequiresTeacher(t *testing.T) {
	r, _ := newLessonRouter()

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/lessons/conflicts?date="+futureDate()+"&start_time=09:00&duration=60", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
