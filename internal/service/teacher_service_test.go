package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sportedu/agenda-api/internal/models"
	appErrors "github.com/sportedu/agenda-api/pkg/errors"
)

type mockTeacherRepo struct {
	items       map[string]*models.Teacher
	emailIndex  map[string]string
	listResult  []models.Teacher
	listTotal   int
	listErr     error
	deactivated []string
}

func (m *mockTeacherRepo) List(ctx context.Context, filter models.TeacherFilter) ([]models.Teacher, int, error) {
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.listResult, m.listTotal, nil
}

func (m *mockTeacherRepo) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	if teacher, ok := m.items[id]; ok {
		cp := *teacher
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockTeacherRepo) ListBySpecialization(ctx context.Context, term string) ([]models.Teacher, error) {
	var out []models.Teacher
	for _, teacher := range m.items {
		if teacher.Active && teacher.HasExpertiseIn(term) {
			out = append(out, *teacher)
		}
	}
	return out, nil
}

func (m *mockTeacherRepo) ExistsByEmail(ctx context.Context, email, excludeID string) (bool, error) {
	if owner, ok := m.emailIndex[email]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockTeacherRepo) Create(ctx context.Context, teacher *models.Teacher) error {
	if m.items == nil {
		m.items = make(map[string]*models.Teacher)
	}
	if teacher.ID == "" {
		teacher.ID = "generated"
	}
	now := time.Now()
	teacher.CreatedAt = now
	teacher.UpdatedAt = now
	cp := *teacher
	m.items[teacher.ID] = &cp
	return nil
}

func (m *mockTeacherRepo) Update(ctx context.Context, teacher *models.Teacher) error {
	if m.items == nil {
		m.items = make(map[string]*models.Teacher)
	}
	cp := *teacher
	m.items[teacher.ID] = &cp
	return nil
}

func (m *mockTeacherRepo) Deactivate(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	if t, ok := m.items[id]; ok {
		t.Active = false
	}
	return nil
}

func TestTeacherServiceCreate(t *testing.T) {
	repo := &mockTeacherRepo{}
	service := NewTeacherService(repo, validator.New(), zap.NewNop())

	teacher, err := service.Create(context.Background(), CreateTeacherRequest{
		FullName:       "Ana Souza",
		Email:          "ana@escola.com",
		Specialization: "Futebol",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana@escola.com", teacher.Email)
	assert.Equal(t, "Futebol", teacher.Specialization)
	assert.True(t, teacher.Active)
	assert.Len(t, repo.items, 1)
}

func TestTeacherServiceCreateDuplicateEmail(t *testing.T) {
	repo := &mockTeacherRepo{emailIndex: map[string]string{"ana@escola.com": "another"}}
	service := NewTeacherService(repo, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), CreateTeacherRequest{
		FullName:       "Ana Souza",
		Email:          "ana@escola.com",
		Specialization: "Futebol",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestTeacherServiceUpdate(t *testing.T) {
	repo := &mockTeacherRepo{
		items: map[string]*models.Teacher{
			"t1": {ID: "t1", FullName: "Ana Souza", Email: "ana@escola.com", Specialization: "Futebol", Active: true},
		},
	}
	service := NewTeacherService(repo, validator.New(), zap.NewNop())

	updated, err := service.Update(context.Background(), "t1", UpdateTeacherRequest{
		FullName:       "Ana Souza Lima",
		Email:          "ana.lima@escola.com",
		Specialization: "Natação",
	})
	require.NoError(t, err)
	assert.Equal(t, "ana.lima@escola.com", updated.Email)
	assert.Equal(t, "Natação", updated.Specialization)
}

func TestTeacherServiceUpdateNotFound(t *testing.T) {
	repo := &mockTeacherRepo{}
	service := NewTeacherService(repo, validator.New(), zap.NewNop())

	_, err := service.Update(context.Background(), "missing", UpdateTeacherRequest{
		FullName:       "Ana Souza",
		Email:          "ana@escola.com",
		Specialization: "Futebol",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestTeacherServiceDeactivate(t *testing.T) {
	repo := &mockTeacherRepo{
		items: map[string]*models.Teacher{
			"t1": {ID: "t1", FullName: "Ana Souza", Email: "ana@escola.com", Specialization: "Futebol", Active: true},
		},
	}
	service := NewTeacherService(repo, validator.New(), zap.NewNop())

	err := service.Deactivate(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1"}, repo.deactivated)
}

func TestTeacherServiceListBySpecialization(t *testing.T) {
	repo := &mockTeacherRepo{
		items: map[string]*models.Teacher{
			"t1": {ID: "t1", FullName: "Ana Souza", Specialization: "Futebol de Salão", Active: true},
			"t2": {ID: "t2", FullName: "Bruno Lima", Specialization: "Basquete", Active: true},
			"t3": {ID: "t3", FullName: "Carla Dias", Specialization: "Futebol", Active: false},
		},
	}
	service := NewTeacherService(repo, validator.New(), zap.NewNop())

	teachers, err := service.ListBySpecialization(context.Background(), "futebol")
	require.NoError(t, err)
	require.Len(t, teachers, 1)
	assert.Equal(t, "t1", teachers[0].ID)
}
