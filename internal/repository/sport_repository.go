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

// SportRepository manages persistence for sports.
type SportRepository struct {
	db *sqlx.DB
}

// NewSportRepository constructs a SportRepository.
func NewSportRepository(db *sqlx.DB) *SportRepository {
	return &SportRepository{db: db}
}

// List returns sports matching filters along with total count.
func (r *SportRepository) List(ctx context.Context, filter models.SportFilter) ([]models.Sport, int, error) {
	base := "FROM sports WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.Active != nil {
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)+1))
		args = append(args, *filter.Active)
	}
	if filter.Category != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(category) = LOWER($%d)", len(args)+1))
		args = append(args, filter.Category)
	}
	if filter.Search != "" {
		search := "%" + strings.ToLower(filter.Search) + "%"
		conditions = append(conditions, fmt.Sprintf("(LOWER(name) LIKE $%d OR LOWER(category) LIKE $%d)", len(args)+1, len(args)+1))
		args = append(args, search)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"category":   true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "name"
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

	query := fmt.Sprintf("SELECT id, name, category, active, created_at, updated_at %s ORDER BY %s %s LIMIT %d OFFSET %d", base, sortBy, order, size, offset)
	var sports []models.Sport
	if err := r.db.SelectContext(ctx, &sports, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list sports: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count sports: %w", err)
	}

	return sports, total, nil
}

// FindByID fetches a sport by ID.
func (r *SportRepository) FindByID(ctx context.Context, id string) (*models.Sport, error) {
	const query = `SELECT id, name, category, active, created_at, updated_at FROM sports WHERE id = $1`
	var sport models.Sport
	if err := r.db.GetContext(ctx, &sport, query, id); err != nil {
		return nil, err
	}
	return &sport, nil
}

// ExistsByName checks if another sport uses the same name.
func (r *SportRepository) ExistsByName(ctx context.Context, name string, excludeID string) (bool, error) {
	query := "SELECT 1 FROM sports WHERE LOWER(name) = LOWER($1)"
	args := []interface{}{name}
	if excludeID != "" {
		query += " AND id <> $2"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check sport name: %w", err)
	}
	return true, nil
}

// Create inserts a new sport record.
func (r *SportRepository) Create(ctx context.Context, sport *models.Sport) error {
	if sport.ID == "" {
		sport.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if sport.CreatedAt.IsZero() {
		sport.CreatedAt = now
	}
	sport.UpdatedAt = now

	const query = `INSERT INTO sports (id, name, category, active, created_at, updated_at)
		VALUES (:id, :name, :category, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, sport); err != nil {
		return fmt.Errorf("create sport: %w", err)
	}
	return nil
}

// Deactivate sets a sport's active flag to false.
func (r *SportRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE sports SET active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate sport: %w", err)
	}
	return nil
}
