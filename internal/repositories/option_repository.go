package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"caa_portal_backend/internal/models"
)

const optionColumns = `id, category, key, value, label, is_active, sort_order, metadata, created_at, updated_at`

// OptionRepository defines the persistence operations of the options registry.
type OptionRepository interface {
	GetActiveOptions(ctx context.Context) ([]models.SystemOption, error)
	GetActiveOptionsByCategory(ctx context.Context, category string) ([]models.SystemOption, error)
	GetOptionByID(ctx context.Context, id int64) (*models.SystemOption, error)
	IsActiveOption(ctx context.Context, category, value string) (bool, error)
	UpsertOption(ctx context.Context, executor SQLExecutor, in models.OptionUpsert) (*models.SystemOption, error)
	DeleteOption(ctx context.Context, executor SQLExecutor, id int64) error
}

type optionRepository struct {
	db *sql.DB
}

// NewOptionRepository creates a new instance of OptionRepository.
func NewOptionRepository(db *sql.DB) OptionRepository {
	return &optionRepository{db: db}
}

func scanOption(s scanner) (*models.SystemOption, error) {
	o := &models.SystemOption{}
	err := s.Scan(&o.ID, &o.Category, &o.Key, &o.Value, &o.Label, &o.IsActive,
		&o.SortOrder, &o.Metadata, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (r *optionRepository) queryOptions(ctx context.Context, action, query string, args ...interface{}) ([]models.SystemOption, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDatabaseError, action, err)
	}
	defer rows.Close()

	options := []models.SystemOption{}
	for rows.Next() {
		o, err := scanOption(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning system option: %v", ErrDatabaseError, err)
		}
		options = append(options, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating system option rows: %v", ErrDatabaseError, err)
	}
	return options, nil
}

// GetActiveOptions returns every active option ordered by category, sort order and label.
func (r *optionRepository) GetActiveOptions(ctx context.Context) ([]models.SystemOption, error) {
	query := `SELECT ` + optionColumns + ` FROM system_options
	          WHERE is_active = TRUE
	          ORDER BY category, sort_order, label`
	return r.queryOptions(ctx, "querying active options", query)
}

// GetActiveOptionsByCategory returns the active options of one category.
func (r *optionRepository) GetActiveOptionsByCategory(ctx context.Context, category string) ([]models.SystemOption, error) {
	query := `SELECT ` + optionColumns + ` FROM system_options
	          WHERE category = $1 AND is_active = TRUE
	          ORDER BY sort_order, label`
	return r.queryOptions(ctx, "querying options of category "+category, query, category)
}

// GetOptionByID retrieves an option regardless of its active flag.
func (r *optionRepository) GetOptionByID(ctx context.Context, id int64) (*models.SystemOption, error) {
	query := `SELECT ` + optionColumns + ` FROM system_options WHERE id = $1`
	o, err := scanOption(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("getting system option by ID %d", id))
	}
	return o, nil
}

// IsActiveOption reports whether value is an active choice of category.
func (r *optionRepository) IsActiveOption(ctx context.Context, category, value string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM system_options WHERE category = $1 AND value = $2 AND is_active = TRUE)`
	if err := r.db.QueryRowContext(ctx, query, category, value).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: checking option %s/%s: %v", ErrDatabaseError, category, value, err)
	}
	return exists, nil
}

// UpsertOption creates the option or updates the existing (category, value) row.
func (r *optionRepository) UpsertOption(ctx context.Context, executor SQLExecutor, in models.OptionUpsert) (*models.SystemOption, error) {
	query := `INSERT INTO system_options (category, value, label, key, sort_order, is_active, metadata, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, COALESCE($5, 0), COALESCE($6, TRUE), $7, $8, $8)
	          ON CONFLICT (category, value) DO UPDATE SET
	            label = EXCLUDED.label,
	            key = COALESCE($4, system_options.key),
	            sort_order = COALESCE($5, system_options.sort_order),
	            is_active = COALESCE($6, system_options.is_active),
	            metadata = COALESCE($7, system_options.metadata),
	            updated_at = EXCLUDED.updated_at
	          RETURNING ` + optionColumns

	var sortOrder, isActive interface{}
	if in.SortOrder != nil {
		sortOrder = *in.SortOrder
	}
	if in.IsActive != nil {
		isActive = *in.IsActive
	}

	o, err := scanOption(executor.QueryRowContext(ctx, query,
		in.Category, in.Value, in.Label, in.Key, sortOrder, isActive, in.Metadata, time.Now().UTC(),
	))
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("upserting system option %s/%s", in.Category, in.Value))
	}
	return o, nil
}

// DeleteOption removes an option from the registry.
func (r *optionRepository) DeleteOption(ctx context.Context, executor SQLExecutor, id int64) error {
	result, err := executor.ExecContext(ctx, `DELETE FROM system_options WHERE id = $1`, id)
	if err != nil {
		return translateError(err, fmt.Sprintf("deleting system option ID %d", id))
	}
	return checkAffected(result, fmt.Sprintf("deleting system option ID %d", id))
}
