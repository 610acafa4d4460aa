package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"caa_portal_backend/internal/models"
)

const applicationColumns = `id, reference, licence_type, status, applicant_details, payload, created_at, updated_at`

// ApplicationRepository defines the persistence operations for licence applications.
type ApplicationRepository interface {
	CreateApplication(ctx context.Context, executor SQLExecutor, app *models.Application) (int64, error)
	GetApplicationByID(ctx context.Context, id int64) (*models.Application, error)
	GetApplicationForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.Application, error)
	GetApplications(ctx context.Context, filters models.ApplicationFilters) ([]models.Application, error)
	UpdateApplicationContent(ctx context.Context, executor SQLExecutor, id int64, applicantDetails, payload models.JSONMap) (*models.Application, error)
	UpdateApplicationStatus(ctx context.Context, executor SQLExecutor, id int64, status string) (*models.Application, error)
}

type applicationRepository struct {
	db *sql.DB
}

// NewApplicationRepository creates a new instance of ApplicationRepository.
func NewApplicationRepository(db *sql.DB) ApplicationRepository {
	return &applicationRepository{db: db}
}

func scanApplication(s scanner) (*models.Application, error) {
	app := &models.Application{}
	err := s.Scan(&app.ID, &app.Reference, &app.LicenceType, &app.Status,
		&app.ApplicantDetails, &app.Payload, &app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// CreateApplication inserts a new application and fills in its id and timestamps.
func (r *applicationRepository) CreateApplication(ctx context.Context, executor SQLExecutor, app *models.Application) (int64, error) {
	query := `INSERT INTO licence_applications (reference, licence_type, status, applicant_details, payload, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING id`

	now := time.Now().UTC()
	if app.CreatedAt.IsZero() {
		app.CreatedAt = now
	}
	if app.UpdatedAt.IsZero() {
		app.UpdatedAt = now
	}
	if app.Status == "" {
		app.Status = string(models.ApplicationStatusDraft)
	}

	err := executor.QueryRowContext(ctx, query,
		app.Reference, app.LicenceType, app.Status, app.ApplicantDetails, app.Payload,
		app.CreatedAt, app.UpdatedAt,
	).Scan(&app.ID)
	if err != nil {
		return 0, translateError(err, "creating application")
	}
	return app.ID, nil
}

// GetApplicationByID retrieves an application by its ID.
func (r *applicationRepository) GetApplicationByID(ctx context.Context, id int64) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM licence_applications WHERE id = $1`
	app, err := scanApplication(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("getting application by ID %d", id))
	}
	return app, nil
}

// GetApplicationForUpdate reads an application and locks its row until tx ends.
func (r *applicationRepository) GetApplicationForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM licence_applications WHERE id = $1 FOR UPDATE`
	app, err := scanApplication(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("locking application ID %d", id))
	}
	return app, nil
}

// GetApplications lists applications, newest first.
func (r *applicationRepository) GetApplications(ctx context.Context, filters models.ApplicationFilters) ([]models.Application, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + applicationColumns + ` FROM licence_applications`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if filters.Status != nil && *filters.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argCount))
		args = append(args, *filters.Status)
		argCount++
	}
	if filters.LicenceType != nil && *filters.LicenceType != "" {
		conditions = append(conditions, fmt.Sprintf("licence_type = $%d", argCount))
		args = append(args, *filters.LicenceType)
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC, id DESC")

	rows, err := r.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("%w: querying applications: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	apps := []models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning application: %v", ErrDatabaseError, err)
		}
		apps = append(apps, *app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating application rows: %v", ErrDatabaseError, err)
	}
	return apps, nil
}

// UpdateApplicationContent replaces the payload. A nil applicantDetails keeps the stored value.
func (r *applicationRepository) UpdateApplicationContent(ctx context.Context, executor SQLExecutor, id int64, applicantDetails, payload models.JSONMap) (*models.Application, error) {
	query := `UPDATE licence_applications SET
	            payload = $1,
	            applicant_details = COALESCE($2, applicant_details),
	            updated_at = $3
	          WHERE id = $4
	          RETURNING ` + applicationColumns

	app, err := scanApplication(executor.QueryRowContext(ctx, query, payload, applicantDetails, time.Now().UTC(), id))
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("updating application ID %d", id))
	}
	return app, nil
}

// UpdateApplicationStatus sets the status of an application.
func (r *applicationRepository) UpdateApplicationStatus(ctx context.Context, executor SQLExecutor, id int64, status string) (*models.Application, error) {
	query := `UPDATE licence_applications SET status = $1, updated_at = $2
	          WHERE id = $3
	          RETURNING ` + applicationColumns

	app, err := scanApplication(executor.QueryRowContext(ctx, query, status, time.Now().UTC(), id))
	if err != nil {
		return nil, translateError(err, fmt.Sprintf("updating status of application ID %d", id))
	}
	return app, nil
}
