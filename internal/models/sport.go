package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Sport represents a sport modality offered by the school.
type Sport struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Category  string    `db:"category" json:"category"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// SportFilter captures filtering options for listing sports.
type SportFilter struct {
	Search    string
	Category  string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// NewSport builds a validated Sport. Names are unique school-wide; uniqueness
// is enforced at the repository level.
func NewSport(name, category string) (*Sport, error) {
	cleanName, err := ValidateSportName(name)
	if err != nil {
		return nil, err
	}
	cleanCategory, err := ValidateSportCategory(category)
	if err != nil {
		return nil, err
	}
	return &Sport{Name: cleanName, Category: cleanCategory, Active: true}, nil
}

// ValidateSportName checks and normalizes a sport name.
func ValidateSportName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", invalidField("name", "must not be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n < 2 || n > 100 {
		return "", invalidField("name", "must be between 2 and 100 characters")
	}
	return trimmed, nil
}

// ValidateSportCategory checks and normalizes a category label. The label is
// free-form ("Coletivo", "Individual", "Aquático", ...).
func ValidateSportCategory(category string) (string, error) {
	trimmed := strings.TrimSpace(category)
	if trimmed == "" {
		return "", invalidField("category", "must not be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n < 2 || n > 50 {
		return "", invalidField("category", "must be between 2 and 50 characters")
	}
	return trimmed, nil
}

// Deactivated returns a copy of the sport marked inactive.
func (s Sport) Deactivated() Sport {
	s.Active = false
	return s
}
