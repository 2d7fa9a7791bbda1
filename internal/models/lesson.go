package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Wire formats for calendar dates and times of day.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Booking bounds, in minutes. Start times live inside the school's opening
// window; durations are capped so a lesson always fits within one day.
const (
	EarliestStartMinute = 6 * 60
	LatestStartMinute   = 22 * 60
	MinDurationMinutes  = 30
	MaxDurationMinutes  = 240
)

// Lesson represents a booked teaching session. Lessons are created only by
// the booking service so field invariants can never be bypassed.
type Lesson struct {
	ID              string    `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	Date            time.Time `db:"lesson_date" json:"date"`
	StartTime       string    `db:"start_time" json:"start_time"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Location        string    `db:"location" json:"location"`
	SportID         string    `db:"sport_id" json:"sport_id"`
	TeacherID       string    `db:"teacher_id" json:"teacher_id"`
	ContentID       *string   `db:"content_id" json:"content_id,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// LessonFilter captures filtering options for listing lessons.
type LessonFilter struct {
	TeacherID string
	SportID   string
	ContentID string
	From      *time.Time
	To        *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// NewLesson builds a fully validated Lesson. The reference clock decides
// whether the requested date is already in the past.
func NewLesson(title string, date time.Time, startTime string, durationMinutes int, location, sportID, teacherID string, contentID *string, now time.Time) (*Lesson, error) {
	cleanTitle, err := ValidateLessonTitle(title)
	if err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, invalidField("date", "must not be empty")
	}
	if DateOnly(date).Before(DateOnly(now)) {
		return nil, invalidField("date", "must not be in the past")
	}
	startMinute, err := ValidateStartTime(startTime)
	if err != nil {
		return nil, err
	}
	if durationMinutes < MinDurationMinutes || durationMinutes > MaxDurationMinutes {
		return nil, invalidField("duration_minutes", "must be between 30 and 240 minutes")
	}
	cleanLocation, err := ValidateLessonLocation(location)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(sportID) == "" {
		return nil, invalidField("sport_id", "must not be empty")
	}
	if strings.TrimSpace(teacherID) == "" {
		return nil, invalidField("teacher_id", "must not be empty")
	}

	return &Lesson{
		Title:           cleanTitle,
		Date:            DateOnly(date),
		StartTime:       FormatTimeOfDay(startMinute),
		DurationMinutes: durationMinutes,
		Location:        cleanLocation,
		SportID:         strings.TrimSpace(sportID),
		TeacherID:       strings.TrimSpace(teacherID),
		ContentID:       contentID,
	}, nil
}

// ValidateLessonTitle checks and normalizes a lesson title.
func ValidateLessonTitle(title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", invalidField("title", "must not be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n < 5 || n > 200 {
		return "", invalidField("title", "must be between 5 and 200 characters")
	}
	return trimmed, nil
}

// ValidateLessonLocation checks and normalizes a location label.
func ValidateLessonLocation(location string) (string, error) {
	trimmed := strings.TrimSpace(location)
	if trimmed == "" {
		return "", invalidField("location", "must not be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n < 3 || n > 100 {
		return "", invalidField("location", "must be between 3 and 100 characters")
	}
	return trimmed, nil
}

// ValidateStartTime parses a time of day and checks it against the opening
// window. Returns the minute of day on success.
func ValidateStartTime(startTime string) (int, error) {
	minute, err := ParseTimeOfDay(startTime)
	if err != nil {
		return 0, invalidField("start_time", "must be a valid HH:MM time")
	}
	if minute < EarliestStartMinute || minute > LatestStartMinute {
		return 0, invalidField("start_time", "must be between 06:00 and 22:00")
	}
	return minute, nil
}

// ParseTimeOfDay converts "HH:MM" into minutes since midnight.
func ParseTimeOfDay(value string) (int, error) {
	parsed, err := time.Parse(TimeLayout, strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("parse time of day %q: %w", value, err)
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// FormatTimeOfDay converts minutes since midnight into "HH:MM".
func FormatTimeOfDay(minute int) string {
	return fmt.Sprintf("%02d:%02d", minute/60, minute%60)
}

// DateOnly strips the time-of-day portion of a timestamp.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDate reports whether two timestamps fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

// Overlaps decides whether two lesson windows intersect. Windows on different
// calendar dates never overlap; no overnight wraparound is modeled. On the
// same date the comparison is boundary-inclusive: a lesson ending exactly
// when another begins still counts as a conflict.
func Overlaps(dateA time.Time, startA, durationA int, dateB time.Time, startB, durationB int) bool {
	if !SameDate(dateA, dateB) {
		return false
	}
	endA := startA + durationA
	endB := startB + durationB
	return !(endA < startB || startA > endB)
}

// StartMinute returns the lesson's start as minutes since midnight. The value
// was validated at construction, so parse failures map to zero.
func (l *Lesson) StartMinute() int {
	minute, err := ParseTimeOfDay(l.StartTime)
	if err != nil {
		return 0
	}
	return minute
}

// EndMinute returns the derived end of the lesson as minutes since midnight.
func (l *Lesson) EndMinute() int {
	return l.StartMinute() + l.DurationMinutes
}

// EndTime returns the derived end of the lesson as "HH:MM".
func (l *Lesson) EndTime() string {
	return FormatTimeOfDay(l.EndMinute())
}

// StartsAt combines date and start time into a single timestamp.
func (l *Lesson) StartsAt() time.Time {
	minute := l.StartMinute()
	return time.Date(l.Date.Year(), l.Date.Month(), l.Date.Day(), minute/60, minute%60, 0, 0, l.Date.Location())
}

// Occurred reports whether the lesson's start has passed. Never persisted;
// inferred from the clock on every call.
func (l *Lesson) Occurred(now time.Time) bool {
	return !l.StartsAt().After(now)
}

// ConflictsWith applies the overlap rule against another lesson.
func (l *Lesson) ConflictsWith(other *Lesson) bool {
	return Overlaps(l.Date, l.StartMinute(), l.DurationMinutes, other.Date, other.StartMinute(), other.DurationMinutes)
}

// IsLong reports whether the lesson runs for more than two hours.
func (l *Lesson) IsLong() bool {
	return l.DurationMinutes > 120
}

// Shift classifies the lesson by start period.
func (l *Lesson) Shift() string {
	switch minute := l.StartMinute(); {
	case minute < 12*60:
		return "morning"
	case minute < 18*60:
		return "afternoon"
	default:
		return "evening"
	}
}

// LessonConflict describes an existing lesson that blocks a booking.
type LessonConflict struct {
	LessonID  string `json:"lesson_id"`
	TeacherID string `json:"teacher_id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// LessonConflictError is returned when a booking collides with an existing
// lesson for the same teacher.
type LessonConflictError struct {
	Message  string         `json:"message"`
	Conflict LessonConflict `json:"conflict"`
}

// Error implements the error interface for conflict errors.
func (e *LessonConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}

// ConflictFrom captures the public shape of a conflicting lesson.
func ConflictFrom(lesson *Lesson) LessonConflict {
	return LessonConflict{
		LessonID:  lesson.ID,
		TeacherID: lesson.TeacherID,
		Title:     lesson.Title,
		Date:      lesson.Date.Format(DateLayout),
		StartTime: lesson.StartTime,
		EndTime:   lesson.EndTime(),
	}
}
