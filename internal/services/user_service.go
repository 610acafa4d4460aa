package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"caa_portal_backend/internal/models"
	"caa_portal_backend/internal/repositories"
	"caa_portal_backend/internal/validation"
	"caa_portal_backend/pkg/utils"

	"golang.org/x/crypto/bcrypt"
)

// --- Custom Service Errors for Users ---
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrUserEmailExists = errors.New("a user with this email already exists")
	ErrUserValidation  = errors.New("user data validation error")
	ErrUserArchived    = errors.New("user is archived")
	ErrDateFormat      = errors.New("invalid date format, please use YYYY-MM-DD")
)

const minPasswordLength = 8

// --- User DTOs ---
type CreateUserRequest struct {
	OrganizationID     *int64  `json:"organization_id"`
	FirstName          string  `json:"first_name" binding:"required"`
	MiddleName         *string `json:"middle_name"`
	LastName           string  `json:"last_name" binding:"required"`
	Email              string  `json:"email" binding:"required"`
	Password           string  `json:"password" binding:"required"`
	Gender             *string `json:"gender"`
	DateOfBirth        *string `json:"date_of_birth"` // Format YYYY-MM-DD
	Nationality        *string `json:"nationality"`
	CountryOfResidence *string `json:"country_of_residence"`
	PhoneNumber        *string `json:"phone_number"`
	IDType             *string `json:"id_type"`
	IDNumber           *string `json:"id_number"`
	PassportNumber     *string `json:"passport_number"`
	PassportExpiryDate *string `json:"passport_expiry_date"` // Format YYYY-MM-DD
	AccountType        *string `json:"account_type"`
}

type UpdateUserRequest struct {
	OrganizationID     *int64  `json:"organization_id"`
	FirstName          *string `json:"first_name"`
	MiddleName         *string `json:"middle_name"`
	LastName           *string `json:"last_name"`
	Email              *string `json:"email"`
	Gender             *string `json:"gender"`
	DateOfBirth        *string `json:"date_of_birth"`
	Nationality        *string `json:"nationality"`
	CountryOfResidence *string `json:"country_of_residence"`
	PhoneNumber        *string `json:"phone_number"`
	IDType             *string `json:"id_type"`
	IDNumber           *string `json:"id_number"`
	PassportNumber     *string `json:"passport_number"`
	PassportExpiryDate *string `json:"passport_expiry_date"`
	Status             *string `json:"status"`
	AccountType        *string `json:"account_type"`
}

// --- UserService Interface ---
type UserService interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error)
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUsers(ctx context.Context, filters models.ListFilters) ([]models.User, int, error)
	UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*models.User, error)
	ArchiveUser(ctx context.Context, id int64, req ArchiveRequest) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	orgRepo  repositories.OrganizationRepository
	options  optionChecker
	db       *sql.DB
}

// NewUserService creates a new instance of UserService.
func NewUserService(userRepo repositories.UserRepository, orgRepo repositories.OrganizationRepository, options OptionService, db *sql.DB) UserService {
	return &userService{userRepo: userRepo, orgRepo: orgRepo, options: options, db: db}
}

func parseDate(field string, s *string) (*time.Time, error) {
	t, err := utils.ParseOptionalDate(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDateFormat, field)
	}
	return t, nil
}

// validateUser checks the merged record before it is written. excludeID is the
// user being updated (0 on create) for the email uniqueness check.
func (s *userService) validateUser(ctx context.Context, user *models.User, excludeID int64) error {
	if utils.IsEmpty(user.FirstName) || utils.IsEmpty(user.LastName) {
		return fmt.Errorf("%w: first_name and last_name cannot be empty", ErrUserValidation)
	}

	email, err := validation.Email("email", user.Email)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUserValidation, err)
	}
	user.Email = email

	existing, err := s.userRepo.GetUserByEmail(ctx, user.Email)
	if err != nil && !errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("failed to check email uniqueness: %w", err)
	}
	if existing != nil && existing.ID != excludeID {
		return ErrUserEmailExists
	}

	if user.DateOfBirth != nil && user.DateOfBirth.After(time.Now()) {
		return fmt.Errorf("%w: date_of_birth cannot be in the future", ErrUserValidation)
	}

	checks := []struct {
		field    string
		category string
		value    *string
	}{
		{"gender", models.OptionCategoryGender, user.Gender},
		{"nationality", models.OptionCategoryNationality, user.Nationality},
		{"country_of_residence", models.OptionCategoryCountry, user.CountryOfResidence},
		{"id_type", models.OptionCategoryDocumentType, user.IDType},
	}
	for _, c := range checks {
		if err := checkOption(ctx, s.options, ErrUserValidation, c.field, c.category, c.value); err != nil {
			return err
		}
	}

	if user.OrganizationID != nil {
		org, err := s.orgRepo.GetOrganizationByID(ctx, *user.OrganizationID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("%w: organization %d does not exist", ErrUserValidation, *user.OrganizationID)
			}
			return fmt.Errorf("failed to check organization: %w", err)
		}
		if org.IsArchived {
			return fmt.Errorf("%w: organization %d is archived", ErrUserValidation, org.ID)
		}
	}
	return checkRecordStatus(ErrUserValidation, &user.Status)
}

func (s *userService) CreateUser(ctx context.Context, req CreateUserRequest) (*models.User, error) {
	if err := validation.MinLength("password", req.Password, minPasswordLength); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUserValidation, err)
	}

	dob, err := parseDate("date_of_birth", req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	passportExpiry, err := parseDate("passport_expiry_date", req.PassportExpiryDate)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		OrganizationID:     req.OrganizationID,
		FirstName:          strings.TrimSpace(req.FirstName),
		MiddleName:         utils.TrimToNil(req.MiddleName),
		LastName:           strings.TrimSpace(req.LastName),
		Email:              req.Email,
		Gender:             utils.TrimToNil(req.Gender),
		DateOfBirth:        dob,
		Nationality:        utils.TrimToNil(req.Nationality),
		CountryOfResidence: utils.TrimToNil(req.CountryOfResidence),
		PhoneNumber:        utils.TrimToNil(req.PhoneNumber),
		IDType:             utils.TrimToNil(req.IDType),
		IDNumber:           utils.TrimToNil(req.IDNumber),
		PassportNumber:     utils.TrimToNil(req.PassportNumber),
		PassportExpiryDate: passportExpiry,
		Status:             "active",
		AccountType:        utils.TrimToNil(req.AccountType),
	}
	user.FullName = models.ComposeFullName(user.FirstName, user.MiddleName, user.LastName)

	if err := s.validateUser(ctx, user, 0); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	if _, err := s.userRepo.CreateUser(ctx, s.db, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrUserEmailExists
		}
		if errors.Is(err, repositories.ErrForeignKey) {
			return nil, fmt.Errorf("%w: organization_id does not reference an existing organization", ErrUserValidation)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	utils.LogInfo("User created", map[string]interface{}{"user_id": user.ID, "organization_id": user.OrganizationID})
	return user, nil
}

func (s *userService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (s *userService) GetUsers(ctx context.Context, filters models.ListFilters) ([]models.User, int, error) {
	filters.Page, filters.PageSize = NormalizePage(filters.Page, filters.PageSize)
	filters.Search = utils.TrimToNil(filters.Search)

	users, total, err := s.userRepo.GetUsers(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}

func (s *userService) UpdateUser(ctx context.Context, id int64, req UpdateUserRequest) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsArchived {
		return nil, ErrUserArchived
	}

	if req.OrganizationID != nil {
		user.OrganizationID = req.OrganizationID
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.MiddleName != nil {
		user.MiddleName = utils.TrimToNil(req.MiddleName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Status != nil {
		user.Status = strings.TrimSpace(*req.Status)
	}
	if req.DateOfBirth != nil {
		if user.DateOfBirth, err = parseDate("date_of_birth", req.DateOfBirth); err != nil {
			return nil, err
		}
	}
	if req.PassportExpiryDate != nil {
		if user.PassportExpiryDate, err = parseDate("passport_expiry_date", req.PassportExpiryDate); err != nil {
			return nil, err
		}
	}
	optional := []struct {
		in  *string
		dst **string
	}{
		{req.Gender, &user.Gender},
		{req.Nationality, &user.Nationality},
		{req.CountryOfResidence, &user.CountryOfResidence},
		{req.PhoneNumber, &user.PhoneNumber},
		{req.IDType, &user.IDType},
		{req.IDNumber, &user.IDNumber},
		{req.PassportNumber, &user.PassportNumber},
		{req.AccountType, &user.AccountType},
	}
	for _, f := range optional {
		if f.in != nil {
			*f.dst = utils.TrimToNil(f.in)
		}
	}
	user.FullName = models.ComposeFullName(user.FirstName, user.MiddleName, user.LastName)

	if err := s.validateUser(ctx, user, user.ID); err != nil {
		return nil, err
	}

	if err := s.userRepo.UpdateUser(ctx, s.db, user); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrUserNotFound
		case errors.Is(err, repositories.ErrDuplicateKey):
			return nil, ErrUserEmailExists
		case errors.Is(err, repositories.ErrForeignKey):
			return nil, fmt.Errorf("%w: organization_id does not reference an existing organization", ErrUserValidation)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *userService) ArchiveUser(ctx context.Context, id int64, req ArchiveRequest) (*models.User, error) {
	user, err := s.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsArchived {
		return nil, ErrUserArchived
	}

	at := time.Now().UTC()
	if err := s.userRepo.ArchiveUser(ctx, s.db, id, req.ArchivedBy, at); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrUserArchived
		case errors.Is(err, repositories.ErrForeignKey):
			return nil, fmt.Errorf("%w: archived_by does not reference an existing user", ErrUserValidation)
		}
		return nil, fmt.Errorf("failed to archive user: %w", err)
	}

	user.IsArchived = true
	user.ArchivedAt = &at
	user.ArchivedBy = req.ArchivedBy
	user.UpdatedAt = at
	utils.LogInfo("User archived", map[string]interface{}{"user_id": id})
	return user, nil
}
