package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/sportedu/agenda-api/internal/models"
)

// ContentRepository manages persistence for educational contents.
type ContentRepository struct {
	db *sqlx.DB
}

// NewContentRepository constructs a ContentRepository.
func NewContentRepository(db *sqlx.DB) *ContentRepository {
	return &ContentRepository{db: db}
}

// List returns contents matching filters along with total count.
func (r *ContentRepository) List(ctx context.Context, filter models.ContentFilter) ([]models.Content, int, error) {
	base := "FROM contents WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.SportID != "" {
		conditions = append(conditions, fmt.Sprintf("sport_id = $%d", len(args)+1))
		args = append(args, filter.SportID)
	}
	if filter.Level != "" {
		conditions = append(conditions, fmt.Sprintf("level = $%d", len(args)+1))
		args = append(args, filter.Level)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(title) LIKE $%d OR LOWER(description) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"title":      true,
		"level":      true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
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

	query := fmt.Sprintf("SELECT id, title, description, url, level, duration_minutes, sport_id, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var contents []models.Content
	if err := r.db.SelectContext(ctx, &contents, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list contents: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count contents: %w", err)
	}

	return contents, total, nil
}

// FindByID fetches a content by ID.
func (r *ContentRepository) FindByID(ctx context.Context, id string) (*models.Content, error) {
	const query = `SELECT id, title, description, url, level, duration_minutes, sport_id, created_at, updated_at FROM contents WHERE id = $1`
	var content models.Content
	if err := r.db.GetContext(ctx, &content, query, id); err != nil {
		return nil, err
	}
	return &content, nil
}

// CountBySport counts contents referencing a sport. Used to keep referenced
// sports immutable.
func (r *ContentRepository) CountBySport(ctx context.Context, sportID string) (int, error) {
	const query = `SELECT COUNT(*) FROM contents WHERE sport_id = $1`
	var total int
	if err := r.db.GetContext(ctx, &total, query, sportID); err != nil {
		return 0, fmt.Errorf("count contents by sport: %w", err)
	}
	return total, nil
}

// Create inserts a new content record.
func (r *ContentRepository) Create(ctx context.Context, content *models.Content) error {
	if content.ID == "" {
		content.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if content.CreatedAt.IsZero() {
		content.CreatedAt = now
	}
	content.UpdatedAt = now

	const query = `INSERT INTO contents (id, title, description, url, level, duration_minutes, sport_id, created_at, updated_at)
		VALUES (:id, :title, :description, :url, :level, :duration_minutes, :sport_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, content); err != nil {
		return fmt.Errorf("create content: %w", err)
	}
	return nil
}

// Delete removes a content by id.
func (r *ContentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM contents WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete content: %w", err)
	}
	return nil
}
