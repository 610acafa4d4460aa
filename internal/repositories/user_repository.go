package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"caa_portal_backend/internal/models"
)

const userColumns = `id, organization_id, first_name, middle_name, last_name, full_name, email, password_hash,
	gender, date_of_birth, nationality, country_of_residence, phone_number, id_type, id_number,
	passport_number, passport_expiry_date, status, account_type, is_archived, archived_at, archived_by,
	created_at, updated_at`

// UserRepository defines the persistence operations for applicant accounts.
type UserRepository interface {
	CreateUser(ctx context.Context, executor SQLExecutor, user *models.User) (int64, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUsers(ctx context.Context, filters models.ListFilters) ([]models.User, int, error)
	UpdateUser(ctx context.Context, executor SQLExecutor, user *models.User) error
	ArchiveUser(ctx context.Context, executor SQLExecutor, id int64, archivedBy *int64, at time.Time) error
}

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

func userScanTargets(u *models.User) []interface{} {
	return []interface{}{
		&u.ID, &u.OrganizationID, &u.FirstName, &u.MiddleName, &u.LastName, &u.FullName, &u.Email,
		&u.PasswordHash, &u.Gender, &u.DateOfBirth, &u.Nationality, &u.CountryOfResidence,
		&u.PhoneNumber, &u.IDType, &u.IDNumber, &u.PassportNumber, &u.PassportExpiryDate, &u.Status,
		&u.AccountType, &u.IsArchived, &u.ArchivedAt, &u.ArchivedBy, &u.CreatedAt, &u.UpdatedAt,
	}
}

// CreateUser inserts a new user. PasswordHash must already be set.
func (r *userRepository) CreateUser(ctx context.Context, executor SQLExecutor, user *models.User) (int64, error) {
	query := `INSERT INTO users (organization_id, first_name, middle_name, last_name, full_name, email, password_hash,
	            gender, date_of_birth, nationality, country_of_residence, phone_number, id_type, id_number,
	            passport_number, passport_expiry_date, status, account_type, created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
	          RETURNING id`

	now := time.Now().UTC()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.Status == "" {
		user.Status = "active"
	}

	err := executor.QueryRowContext(ctx, query,
		user.OrganizationID, user.FirstName, user.MiddleName, user.LastName, user.FullName, user.Email,
		user.PasswordHash, user.Gender, user.DateOfBirth, user.Nationality, user.CountryOfResidence,
		user.PhoneNumber, user.IDType, user.IDNumber, user.PassportNumber, user.PassportExpiryDate,
		user.Status, user.AccountType, user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		return 0, translateError(err, "creating user")
	}
	return user.ID, nil
}

func (r *userRepository) getUser(ctx context.Context, action, where string, arg interface{}) (*models.User, error) {
	user := &models.User{}
	query := `SELECT ` + userColumns + ` FROM users WHERE ` + where
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(userScanTargets(user)...); err != nil {
		return nil, translateError(err, action)
	}
	return user, nil
}

// GetUserByID retrieves a user by their ID.
func (r *userRepository) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getUser(ctx, fmt.Sprintf("getting user by ID %d", id), "id = $1", id)
}

// GetUserByEmail retrieves a user by email, case-insensitively.
func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getUser(ctx, "getting user by email", "LOWER(email) = LOWER($1)", email)
}

// GetUsers retrieves users with pagination, search and an optional organization filter.
func (r *userRepository) GetUsers(ctx context.Context, filters models.ListFilters) ([]models.User, int, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + userColumns + `, COUNT(*) OVER() AS total_count FROM users`)

	var conditions []string
	var args []interface{}
	argCount := 1

	if !filters.IncludeArchived {
		conditions = append(conditions, "is_archived = FALSE")
	}
	if filters.OrganizationID != nil {
		conditions = append(conditions, fmt.Sprintf("organization_id = $%d", argCount))
		args = append(args, *filters.OrganizationID)
		argCount++
	}
	if filters.Search != nil && *filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(full_name ILIKE $%d OR email ILIKE $%d OR id_number ILIKE $%d)", argCount, argCount, argCount))
		args = append(args, "%"+*filters.Search+"%")
		argCount++
	}
	if len(conditions) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conditions, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY last_name ASC, first_name ASC, id ASC")

	query, args := paginate(queryBuilder.String(), args, argCount, filters.Page, filters.PageSize)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: querying users: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	users := []models.User{}
	totalCount := 0
	for rows.Next() {
		var user models.User
		if err := rows.Scan(append(userScanTargets(&user), &totalCount)...); err != nil {
			return nil, 0, fmt.Errorf("%w: scanning user: %v", ErrDatabaseError, err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("%w: iterating user rows: %v", ErrDatabaseError, err)
	}
	return users, totalCount, nil
}

// UpdateUser writes the profile columns of user. The password hash is not touched.
func (r *userRepository) UpdateUser(ctx context.Context, executor SQLExecutor, user *models.User) error {
	query := `UPDATE users SET
	            organization_id = $1, first_name = $2, middle_name = $3, last_name = $4, full_name = $5, email = $6,
	            gender = $7, date_of_birth = $8, nationality = $9, country_of_residence = $10, phone_number = $11,
	            id_type = $12, id_number = $13, passport_number = $14, passport_expiry_date = $15, status = $16,
	            account_type = $17, updated_at = $18
	          WHERE id = $19`

	user.UpdatedAt = time.Now().UTC()
	result, err := executor.ExecContext(ctx, query,
		user.OrganizationID, user.FirstName, user.MiddleName, user.LastName, user.FullName, user.Email,
		user.Gender, user.DateOfBirth, user.Nationality, user.CountryOfResidence, user.PhoneNumber,
		user.IDType, user.IDNumber, user.PassportNumber, user.PassportExpiryDate, user.Status,
		user.AccountType, user.UpdatedAt, user.ID,
	)
	if err != nil {
		return translateError(err, fmt.Sprintf("updating user ID %d", user.ID))
	}
	return checkAffected(result, fmt.Sprintf("updating user ID %d", user.ID))
}

// ArchiveUser flags a live user as archived.
func (r *userRepository) ArchiveUser(ctx context.Context, executor SQLExecutor, id int64, archivedBy *int64, at time.Time) error {
	query := `UPDATE users SET is_archived = TRUE, archived_at = $1, archived_by = $2, updated_at = $1
	          WHERE id = $3 AND is_archived = FALSE`
	result, err := executor.ExecContext(ctx, query, at, archivedBy, id)
	if err != nil {
		return translateError(err, fmt.Sprintf("archiving user ID %d", id))
	}
	return checkAffected(result, fmt.Sprintf("archiving user ID %d", id))
}
