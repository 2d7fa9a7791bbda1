package models

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Teacher represents an instructor record. Specialization is a free-text
// label matched against sport names when gating lesson bookings.
type Teacher struct {
	ID             string    `db:"id" json:"id"`
	FullName       string    `db:"full_name" json:"full_name"`
	Email          string    `db:"email" json:"email"`
	Specialization string    `db:"specialization" json:"specialization"`
	Active         bool      `db:"active" json:"active"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Active    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// NewTeacher builds a validated Teacher. Email uniqueness is enforced at the
// repository level.
func NewTeacher(fullName, email, specialization string) (*Teacher, error) {
	cleanName, err := ValidateTeacherName(fullName)
	if err != nil {
		return nil, err
	}
	cleanEmail, err := ValidateTeacherEmail(email)
	if err != nil {
		return nil, err
	}
	cleanSpec, err := ValidateSpecialization(specialization)
	if err != nil {
		return nil, err
	}
	return &Teacher{
		FullName:       cleanName,
		Email:          cleanEmail,
		Specialization: cleanSpec,
		Active:         true,
	}, nil
}

// ValidateTeacherName checks and normalizes a teacher name.
func ValidateTeacherName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", invalidField("full_name", "must not be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n < 2 || n > 200 {
		return "", invalidField("full_name", "must be between 2 and 200 characters")
	}
	return trimmed, nil
}

// ValidateTeacherEmail checks the syntactic shape of an email address.
func ValidateTeacherEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return "", invalidField("email", "must not be empty")
	}
	if !emailPattern.MatchString(trimmed) {
		return "", invalidField("email", "must be a valid email address")
	}
	return trimmed, nil
}

// ValidateSpecialization checks and normalizes a specialization label.
func ValidateSpecialization(specialization string) (string, error) {
	trimmed := strings.TrimSpace(specialization)
	if trimmed == "" {
		return "", invalidField("specialization", "must not be empty")
	}
	if n := utf8.RuneCountInString(trimmed); n < 2 || n > 100 {
		return "", invalidField("specialization", "must be between 2 and 100 characters")
	}
	return trimmed, nil
}

// CanTeach decides whether the teacher is authorized for a sport. The gate is
// a case-insensitive exact match between specialization and the sport name;
// substring matches do not qualify.
func (t Teacher) CanTeach(sportName string) bool {
	return strings.EqualFold(t.Specialization, strings.TrimSpace(sportName))
}

// HasExpertiseIn reports whether the specialization mentions the given term.
// This is a classification helper only and never gates bookings.
func (t Teacher) HasExpertiseIn(term string) bool {
	return strings.Contains(strings.ToLower(t.Specialization), strings.ToLower(term))
}

// Deactivated returns a copy of the teacher marked inactive. Already booked
// lessons are untouched; deactivation only blocks new bookings.
func (t Teacher) Deactivated() Teacher {
	t.Active = false
	return t
}
