package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sportedu/agenda-api/internal/models"
)

const lessonColumns = "id, title, lesson_date, start_time, duration_minutes, location, sport_id, teacher_id, content_id, created_at, updated_at"

// LessonRepository provides persistence for booked lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// List returns lessons with optional filtering and pagination.
func (r *LessonRepository) List(ctx context.Context, filter models.LessonFilter) ([]models.Lesson, int, error) {
	base := "FROM lessons WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.SportID != "" {
		conditions = append(conditions, fmt.Sprintf("sport_id = $%d", len(args)+1))
		args = append(args, filter.SportID)
	}
	if filter.ContentID != "" {
		conditions = append(conditions, fmt.Sprintf("content_id = $%d", len(args)+1))
		args = append(args, filter.ContentID)
	}
	if filter.From != nil {
		conditions = append(conditions, fmt.Sprintf("lesson_date >= $%d", len(args)+1))
		args = append(args, models.DateOnly(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, fmt.Sprintf("lesson_date <= $%d", len(args)+1))
		args = append(args, models.DateOnly(*filter.To))
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"lesson_date": true,
		"start_time":  true,
		"created_at":  true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "lesson_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s, start_time ASC LIMIT %d OFFSET %d", lessonColumns, base, sortBy, order, size, offset)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list lessons: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count lessons: %w", err)
	}

	return lessons, total, nil
}

// FindByID loads a lesson by id.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE id = $1", lessonColumns)
	var lesson models.Lesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// ListByTeacherAndDate returns a teacher's lessons on a calendar date,
// ordered by start time. Backed by the (teacher_id, lesson_date) index; this
// is the candidate set for the conflict scan.
func (r *LessonRepository) ListByTeacherAndDate(ctx context.Context, teacherID string, date time.Time) ([]models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE teacher_id = $1 AND lesson_date = $2 ORDER BY start_time ASC", lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, teacherID, models.DateOnly(date)); err != nil {
		return nil, fmt.Errorf("list lessons by teacher and date: %w", err)
	}
	return lessons, nil
}

// ListByTeacher returns all lessons booked for a teacher.
func (r *LessonRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE teacher_id = $1 ORDER BY lesson_date ASC, start_time ASC", lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, teacherID); err != nil {
		return nil, fmt.Errorf("list lessons by teacher: %w", err)
	}
	return lessons, nil
}

// ListUpcoming returns lessons dated on or after the given day.
func (r *LessonRepository) ListUpcoming(ctx context.Context, from time.Time) ([]models.Lesson, error) {
	query := fmt.Sprintf("SELECT %s FROM lessons WHERE lesson_date >= $1 ORDER BY lesson_date ASC, start_time ASC", lessonColumns)
	var lessons []models.Lesson
	if err := r.db.SelectContext(ctx, &lessons, query, models.DateOnly(from)); err != nil {
		return nil, fmt.Errorf("list upcoming lessons: %w", err)
	}
	return lessons, nil
}

// Exists reports whether a lesson with the given id is stored.
func (r *LessonRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, `SELECT 1 FROM lessons WHERE id = $1 LIMIT 1`, id); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check lesson exists: %w", err)
	}
	return true, nil
}

// Create stores a new lesson record, assigning identity on first save.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now

	const query = `INSERT INTO lessons (id, title, lesson_date, start_time, duration_minutes, location, sport_id, teacher_id, content_id, created_at, updated_at)
		VALUES (:id, :title, :lesson_date, :start_time, :duration_minutes, :location, :sport_id, :teacher_id, :content_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, lesson); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// Delete removes a lesson by id.
func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}
