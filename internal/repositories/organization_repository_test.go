package repositories

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"caa_portal_backend/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var organizationRowColumns = []string{"id", "name", "legal_name", "registration_number", "tax_id", "organization_type", "email",
	"phone_number", "website", "address_line_1", "city", "country", "primary_contact_name", "primary_contact_email",
	"status", "is_archived", "archived_at", "archived_by", "metadata", "created_at", "updated_at"}

func organizationRow(id int64, name string, now time.Time) []driver.Value {
	return []driver.Value{id, name, nil, "REG-" + name, nil, "ato", nil, nil, nil, nil, "Nairobi", "kenya", nil, nil,
		"active", false, nil, nil, nil, now, now}
}

func TestOrganizationRepository_CreateOrganization_Duplicate(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrganizationRepository(db)
	reg := "ATO-001"

	mock.ExpectQuery(`INSERT INTO organizations`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "organizations_registration_number_key"})

	_, err := repo.CreateOrganization(context.Background(), db, &models.Organization{Name: "Wings ATO", RegistrationNumber: &reg})
	assert.ErrorIs(t, err, ErrDuplicateKey)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationRepository_GetOrganizations_Paginated(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrganizationRepository(db)
	now := time.Now()
	search := "wings"

	cols := append(append([]string{}, organizationRowColumns...), "total_count")
	mock.ExpectQuery(`(?s)FROM organizations WHERE is_archived = FALSE AND \(name ILIKE \$1 .+ LIMIT \$2 OFFSET \$3`).
		WithArgs("%wings%", 10, 10).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(append(organizationRow(12, "Wings", now), 11)...))

	orgs, total, err := repo.GetOrganizations(context.Background(), models.ListFilters{Search: &search, Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, orgs, 1)
	assert.Equal(t, 11, total)
	assert.Equal(t, "Wings", orgs[0].Name)
	assert.Equal(t, "ato", *orgs[0].OrganizationType)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationRepository_ArchiveOrganization(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewOrganizationRepository(db)
	by := int64(2)

	mock.ExpectExec(`UPDATE organizations SET is_archived = TRUE`).
		WithArgs(sqlmock.AnyArg(), by, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE organizations SET is_archived = TRUE`).
		WithArgs(sqlmock.AnyArg(), nil, int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.ArchiveOrganization(context.Background(), db, 5, &by, time.Now()))
	assert.ErrorIs(t, repo.ArchiveOrganization(context.Background(), db, 6, nil, time.Now()), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
