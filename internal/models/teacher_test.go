package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTeacherCanTeach(t *testing.T) {
	teacher := Teacher{Specialization: "Futebol"}

	assert.True(t, teacher.CanTeach("Futebol"))
	assert.True(t, teacher.CanTeach("futebol"))
	assert.True(t, teacher.CanTeach("  FUTEBOL  "))

	// exact match only; substrings do not qualify
	assert.False(t, teacher.CanTeach("Futebol de Salão"))
	assert.False(t, teacher.CanTeach("Basquete"))
}

func TestTeacherHasExpertiseIn(t *testing.T) {
	teacher := Teacher{Specialization: "Futebol de Salão"}

	assert.True(t, teacher.HasExpertiseIn("futebol"))
	assert.True(t, teacher.HasExpertiseIn("Salão"))
	assert.False(t, teacher.HasExpertiseIn("Basquete"))
}

func TestNewTeacher(t *testing.T) {
	teacher, err := NewTeacher("  Ana Souza  ", "ana@escola.com", "Natação")
	require.NoError(t, err)
	assert.Equal(t, "Ana Souza", teacher.FullName)
	assert.True(t, teacher.Active)
}

func TestNewTeacherRejectsInvalidEmail(t *testing.T) {
	_, err := NewTeacher("Ana Souza", "not-an-email", "Natação")
	require.Error(t, err)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
	assert.Equal(t, "email", vErr.Field)
}

func TestTeacherDeactivated(t *testing.T) {
	teacher := Teacher{ID: "t1", Active: true}
	inactive := teacher.Deactivated()

	assert.False(t, inactive.Active)
	assert.True(t, teacher.Active)
}
