package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"caa_portal_backend/internal/models"
	"caa_portal_backend/internal/repositories"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var organizationRowColumns = []string{
	"id", "name", "legal_name", "registration_number", "tax_id", "organization_type", "email",
	"phone_number", "website", "address_line_1", "city", "country", "primary_contact_name",
	"primary_contact_email", "status", "is_archived", "archived_at", "archived_by", "metadata",
	"created_at", "updated_at",
}

func organizationRow(id int64, name string, archived bool) []driver.Value {
	now := time.Now()
	return []driver.Value{
		id, name, nil, "REG-" + name, nil, "ato", nil,
		nil, nil, nil, "Nairobi", "kenya", nil,
		nil, "active", archived, nil, nil, nil,
		now, now,
	}
}

func newOrganizationService(db *sql.DB) OrganizationService {
	return NewOrganizationService(
		repositories.NewOrganizationRepository(db),
		repositories.NewUserRepository(db),
		NewOptionService(repositories.NewOptionRepository(db), db, nil),
		db,
	)
}

func TestOrganizationService_Create(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newOrganizationService(db)
	orgType, email := "ato", " Ops@Wings.Aero "

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("organization_type", "ato").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`INSERT INTO organizations`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	org, err := svc.CreateOrganization(context.Background(), CreateOrganizationRequest{
		Name:             "  Wings Flight School ",
		OrganizationType: &orgType,
		Email:            &email,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), org.ID)
	assert.Equal(t, "Wings Flight School", org.Name)
	assert.Equal(t, "active", org.Status)
	require.NotNil(t, org.Email)
	assert.Equal(t, "ops@wings.aero", *org.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationService_CreateRejectsUnknownType(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newOrganizationService(db)
	orgType := "spaceport"

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("organization_type", "spaceport").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	_, err := svc.CreateOrganization(context.Background(), CreateOrganizationRequest{Name: "Orbit", OrganizationType: &orgType})
	assert.ErrorIs(t, err, ErrOrganizationValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationService_CreateDuplicateRegistration(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newOrganizationService(db)
	reg := "REG-1"

	mock.ExpectQuery(`INSERT INTO organizations`).
		WillReturnError(&pq.Error{Code: "23505", Constraint: "organizations_registration_number_key"})

	_, err := svc.CreateOrganization(context.Background(), CreateOrganizationRequest{Name: "Wings", RegistrationNumber: &reg})
	assert.ErrorIs(t, err, ErrOrganizationExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationService_CreateRejectsBadEmail(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newOrganizationService(db)
	email := "ops@"

	_, err := svc.CreateOrganization(context.Background(), CreateOrganizationRequest{Name: "Wings", PrimaryContactEmail: &email})
	assert.ErrorIs(t, err, ErrOrganizationValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationService_UpdateClearsBlankFields(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newOrganizationService(db)
	city, name := "", "Wings Aviation"

	mock.ExpectQuery(`FROM organizations WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(organizationRowColumns).AddRow(organizationRow(3, "Wings", false)...))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("organization_type", "ato").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectExec(`UPDATE organizations SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	org, err := svc.UpdateOrganization(context.Background(), 3, UpdateOrganizationRequest{Name: &name, City: &city})
	require.NoError(t, err)
	assert.Equal(t, "Wings Aviation", org.Name)
	assert.Nil(t, org.City)
	require.NotNil(t, org.Country)
	assert.Equal(t, "kenya", *org.Country)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationService_Archive(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newOrganizationService(db)
	by := int64(1)

	mock.ExpectQuery(`FROM organizations WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(organizationRowColumns).AddRow(organizationRow(3, "Wings", false)...))
	mock.ExpectExec(`UPDATE organizations SET is_archived = TRUE`).
		WithArgs(sqlmock.AnyArg(), int64(1), int64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	org, err := svc.ArchiveOrganization(context.Background(), 3, ArchiveRequest{ArchivedBy: &by})
	require.NoError(t, err)
	assert.True(t, org.IsArchived)
	assert.NotNil(t, org.ArchivedAt)
	assert.Equal(t, &by, org.ArchivedBy)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationService_ArchiveTwice(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newOrganizationService(db)

	mock.ExpectQuery(`FROM organizations WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(organizationRowColumns).AddRow(organizationRow(3, "Wings", true)...))

	_, err := svc.ArchiveOrganization(context.Background(), 3, ArchiveRequest{})
	assert.ErrorIs(t, err, ErrOrganizationArchived)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationService_GetOrganizationUsers(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newOrganizationService(db)

	mock.ExpectQuery(`FROM organizations WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(organizationRowColumns).AddRow(organizationRow(3, "Wings", false)...))
	mock.ExpectQuery(`FROM users WHERE is_archived = FALSE AND organization_id = \$1 ORDER BY .+ LIMIT \$2`).
		WithArgs(int64(3), 20).
		WillReturnRows(sqlmock.NewRows(append(userRowColumns, "total_count")).
			AddRow(append(userRow(11, "amina@example.com", false), 1)...))

	users, total, err := svc.GetOrganizationUsers(context.Background(), 3, models.ListFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, "Amina Otieno", users[0].FullName)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOrganizationService_GetOrganizationUsersUnknownOrganization(t *testing.T) {
	db, mock := newMockDB(t)
	svc := newOrganizationService(db)

	mock.ExpectQuery(`FROM organizations WHERE id = \$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows(organizationRowColumns))

	_, _, err := svc.GetOrganizationUsers(context.Background(), 9, models.ListFilters{})
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
}
