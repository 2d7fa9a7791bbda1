package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sportedu/agenda-api/internal/models"
	appErrors "github.com/sportedu/agenda-api/pkg/errors"
)

type mockSportRepo struct {
	items       map[string]*models.Sport
	nameIndex   map[string]string
	deactivated []string
}

func (m *mockSportRepo) List(ctx context.Context, filter models.SportFilter) ([]models.Sport, int, error) {
	out := make([]models.Sport, 0, len(m.items))
	for _, s := range m.items {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockSportRepo) FindByID(ctx context.Context, id string) (*models.Sport, error) {
	if s, ok := m.items[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSportRepo) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	if owner, ok := m.nameIndex[name]; ok {
		if excludeID == "" || owner != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockSportRepo) Create(ctx context.Context, sport *models.Sport) error {
	if m.items == nil {
		m.items = make(map[string]*models.Sport)
	}
	if sport.ID == "" {
		sport.ID = "generated"
	}
	cp := *sport
	m.items[sport.ID] = &cp
	return nil
}

func (m *mockSportRepo) Deactivate(ctx context.Context, id string) error {
	m.deactivated = append(m.deactivated, id)
	if s, ok := m.items[id]; ok {
		s.Active = false
	}
	return nil
}

type mockContentCounter struct {
	counts map[string]int
}

func (m *mockContentCounter) CountBySport(ctx context.Context, sportID string) (int, error) {
	return m.counts[sportID], nil
}

func TestSportServiceCreate(t *testing.T) {
	repo := &mockSportRepo{}
	service := NewSportService(repo, &mockContentCounter{}, validator.New(), zap.NewNop())

	sport, err := service.Create(context.Background(), CreateSportRequest{Name: "Futebol", Category: "Coletivo"})
	require.NoError(t, err)
	assert.Equal(t, "Futebol", sport.Name)
	assert.True(t, sport.Active)
	assert.Len(t, repo.items, 1)
}

func TestSportServiceCreateDuplicateName(t *testing.T) {
	repo := &mockSportRepo{nameIndex: map[string]string{"Futebol": "another"}}
	service := NewSportService(repo, &mockContentCounter{}, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), CreateSportRequest{Name: "Futebol", Category: "Coletivo"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSportServiceCreateInvalidName(t *testing.T) {
	service := NewSportService(&mockSportRepo{}, &mockContentCounter{}, validator.New(), zap.NewNop())

	_, err := service.Create(context.Background(), CreateSportRequest{Name: "F", Category: "Coletivo"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSportServiceDeactivate(t *testing.T) {
	repo := &mockSportRepo{items: map[string]*models.Sport{
		"s1": {ID: "s1", Name: "Futebol", Category: "Coletivo", Active: true},
	}}
	service := NewSportService(repo, &mockContentCounter{}, validator.New(), zap.NewNop())

	require.NoError(t, service.Deactivate(context.Background(), "s1"))
	assert.Equal(t, []string{"s1"}, repo.deactivated)
}

func TestSportServiceDeactivateReferenced(t *testing.T) {
	repo := &mockSportRepo{items: map[string]*models.Sport{
		"s1": {ID: "s1", Name: "Futebol", Category: "Coletivo", Active: true},
	}}
	counter := &mockContentCounter{counts: map[string]int{"s1": 3}}
	service := NewSportService(repo, counter, validator.New(), zap.NewNop())

	err := service.Deactivate(context.Background(), "s1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deactivated)
}
