package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"caa_portal_backend/internal/models"
)

const organizationColumns = `id, name, legal_name, registration_number, tax_id, organization_type, email,
	phone_number, website, address_line_1, city, country, primary_contact_name, primary_contact_email,
	status, is_archived, archived_at, archived_by, metadata, created_at, updated_at`

// OrganizationRepository defines the persistence operations for organizations.
type OrganizationRepository interface {
	CreateOrganization(ctx context.Context, executor SQLExecutor, org *models.Organization) (int64, error)
	GetOrganizationByID(ctx context.Context, id int64) (*models.Organization, error)
	GetOrganizations(ctx context.Context, filters models.ListFilters) ([]models.Organization, int, error)
	UpdateOrganization(ctx context.Context, executor SQLExecutor, org *models.Organization) error
	ArchiveOrganization(ctx context.Context, executor SQLExecutor, id int64, archivedBy *int64, at time.Time) error
}

type organizationRepository struct {
	db *sql.DB
}

// NewOrganizationRepository creates a new instance of OrganizationRepository.
func NewOrganizationRepository(db *sql.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func organizationScanTargets(o *models.Organization) []interface{} {
	return []interface{}{
		&o.ID, &o.Name, &o.LegalName, &o.RegistrationNumber, &o.TaxID, &o.OrganizationType, &o.Email,
		&o.PhoneNumber, &o.Website, &o.AddressLine1, &o.City, &o.Country, &o.PrimaryContactName,
		&o.PrimaryContactEmail, &o.Status, &o.IsArchived, &o.ArchivedAt, &o.ArchivedBy, &o.Metadata,
		&o.CreatedAt, &o.UpdatedAt,
	}
}

// CreateOrganization inserts a new organization.
func (r *organizationRepository) CreateOrganization(ctx context.Context, executor SQLExecutor, org *models.Organization) (int64, error) {
	query := `INSERT INTO organizations (name, legal_name, registration_number, tax_id, organization_type, email,
	            phone_number, website, address_line_1, city, country, primary_contact_name, primary_contact_email,
	            status, metadata, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	          RETURNING id`

	now := time.Now().UTC()
	org.CreatedAt, org.UpdatedAt = now, now
	if org.Status == "" {
		org.Status = "active"
	}

	err := executor.QueryRowContext(ctx, query,
		org.Name, org.LegalName, org.RegistrationNumber, org.TaxID, org.OrganizationType, org.Email,
		org.PhoneNumber, org.Website, org.AddressLine1, org.City, org.Country, org.PrimaryContactName,
		org.PrimaryContactEmail, org.Status, org.Metadata, org.CreatedAt, org.UpdatedAt,
	).Scan(&org.ID)
	if err != nil {
		return 0, translateError(err, "creating organization")
	}
	return org.ID, nil
}

// GetOrganizationByID retrieves an organization by its ID.
func (r *organizationRepository) GetOrganizationByID(ctx context.Context, id int64) (*models.Organization, error) {
	org := &models.Organization{}
	query := `SELECT ` + organizationColumns + ` FROM organizations WHERE id = $1`
	if err := r.db.QueryRowContext(ctx, query, id).Scan(organizationScanTargets(org)...); err != nil {
		return nil, translateError(err, fmt.Sprintf("getting organization by ID %d", id))
	}
	return org, nil
}

// GetOrganizations retrieves organizations with pagination and optional search.
func (r *organizationRepository) GetOrganizations(ctx context.Context, filters models.ListFilters) ([]models.Organization, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + organizationColumns + `, COUNT(*) OVER() AS total_count FROM organizations`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if !filters.IncludeArchived {
		conditions = append(conditions, "is_archived = FALSE")
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR legal_name ILIKE $%d OR registration_number ILIKE $%d)", argCount, argCount, argCount))
		args = append(args, "%"+*filters.Search+"%")
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY name ASC, id ASC")

	query, args := paginate(queryBuilder.String(), args, argCount, filters.Page, filters.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying organizations: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	orgs := []models.Organization{}
	totalCount := 0
	for rows.Next() {
		var org models.Organization
		if err := rows.Scan(append(organizationScanTargets(&org), &totalCount)...); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning organization: %v", ErrDatabaseError, err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating organization rows: %v", ErrDatabaseError, err)
	}
	return orgs, totalCount, nil
}

// UpdateOrganization writes every mutable column of org.
func (r *organizationRepository) UpdateOrganization(ctx context.Context, executor SQLExecutor, org *models.Organization) error {
	query := `UPDATE organizations SET
	            name = $1, legal_name = $2, registration_number = $3, tax_id = $4, organization_type = $5,
	            email = $6, phone_number = $7, website = $8, address_line_1 = $9, city = $10, country = $11,
	            primary_contact_name = $12, primary_contact_email = $13, status = $14, metadata = $15, updated_at = $16
	          WHERE id = $17`

	org.UpdatedAt = time.Now().UTC()
	result, err := executor.ExecContext(ctx, query,
		org.Name, org.LegalName, org.RegistrationNumber, org.TaxID, org.OrganizationType,
		org.Email, org.PhoneNumber, org.Website, org.AddressLine1, org.City, org.Country,
		org.PrimaryContactName, org.PrimaryContactEmail, org.Status, org.Metadata, org.UpdatedAt, org.ID,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("updating organization ID %d", org.ID))
	}
	return checkAffected(result, fmt.Sprintf("updating organization ID %d", org.ID))
}

// ArchiveOrganization flags a live organization as archived.
func (r *organizationRepository) ArchiveOrganization(ctx context.Context, executor SQLExecutor, id int64, archivedBy *int64, at time.Time) error {
	query := `UPDATE organizations SET is_archived = TRUE, archived_at = $1, archived_by = $2, updated_at = $1
	          WHERE id = $3 AND is_archived = FALSE`
	result, err := executor.ExecContext(ctx, query, at, archivedBy, id)
	if err != nil {
		return translateError(err, fmt.Sprintf("archiving organization ID %d", id))
	}
	return checkAffected(result, fmt.Sprintf("archiving organization ID %d", id))
}
