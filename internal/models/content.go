package models

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Content difficulty levels. The set is closed.
const (
	LevelFundamental = "Fundamental II"
	LevelMedio       = "Médio"
)

// Content represents an educational resource (video/PDF) tied to one sport.
// The sport reference is immutable after creation.
type Content struct {
	ID              string    `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	Description     string    `db:"description" json:"description"`
	URL             string    `db:"url" json:"url"`
	Level           string    `db:"level" json:"level"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	SportID         string    `db:"sport_id" json:"sport_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// ContentFilter captures filtering options for listing contents.
type ContentFilter struct {
	SportID   string
	Level     string
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// NewContent builds a validated Content. The referenced sport must exist and
// be active; that check belongs to the service layer.
func NewContent(title, description, url, level string, durationMinutes int, sportID string) (*Content, error) {
	cleanTitle, err := ValidateContentTitle(title)
	if err != nil {
		return nil, err
	}
	cleanURL, err := ValidateContentURL(url)
	if err != nil {
		return nil, err
	}
	cleanLevel, err := ValidateContentLevel(level)
	if err != nil {
		return nil, err
	}
	if durationMinutes <= 0 {
		return nil, invalidField("duration_minutes", "must be greater than zero")
	}
	if strings.TrimSpace(sportID) == "" {
		return nil, invalidField("sport_id", "must not be empty")
	}
	return &Content{
		Title:           cleanTitle,
		Description:     strings.TrimSpace(description),
		URL:             cleanURL,
		Level:           cleanLevel,
		DurationMinutes: durationMinutes,
		SportID:         strings.TrimSpace(sportID),
	}, nil
}

// ValidateContentTitle checks and normalizes a content title.
func ValidateContentTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", invalidField("title", "must not be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n < 5 || n > 200 {
		return "", invalidField("title", "must be between 5 and 200 characters")
	}
	return trimmed, nil
}

// ValidateContentURL checks and normalizes a resource URL.
func ValidateContentURL(url string) (string, error) {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return "", invalidField("url", "must not be empty")
	}
	if utf8.RuneCountInString(trimmed) > 500 {
		return "", invalidField("url", "must be at most 500 characters")
	}
	return trimmed, nil
}

// ValidateContentLevel checks a difficulty level against the closed enum.
func ValidateContentLevel(level string) (string, error) {
	trimmed := strings.TrimSpace(level)
	if trimmed != LevelFundamental && trimmed != LevelMedio {
		return "", invalidField("level", `must be "Fundamental II" or "Médio"`)
	}
	return trimmed, nil
}

// IsVideo reports whether the resource looks like a video link.
func (c Content) IsVideo() bool {
	lower := strings.ToLower(c.URL)
	return strings.Contains(lower, ".mp4") ||
		strings.Contains(lower, "youtube") ||
		strings.Contains(lower, "vimeo")
}
