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
)

// --- Custom Service Errors for Organizations ---
var (
	ErrOrganizationNotFound   = errors.New("organization not found")
	ErrOrganizationExists     = errors.New("organization with this registration number already exists")
	ErrOrganizationValidation = errors.New("organization data validation error")
	ErrOrganizationArchived   = errors.New("organization is archived")
)

// --- Organization DTOs ---
type CreateOrganizationRequest struct {
	Name                string         `json:"name" binding:"required"`
	LegalName           *string        `json:"legal_name"`
	RegistrationNumber  *string        `json:"registration_number"`
	TaxID               *string        `json:"tax_id"`
	OrganizationType    *string        `json:"organization_type"`
	Email               *string        `json:"email"`
	PhoneNumber         *string        `json:"phone_number"`
	Website             *string        `json:"website"`
	AddressLine1        *string        `json:"address_line_1"`
	City                *string        `json:"city"`
	Country             *string        `json:"country"`
	PrimaryContactName  *string        `json:"primary_contact_name"`
	PrimaryContactEmail *string        `json:"primary_contact_email"`
	Status              *string        `json:"status"`
	Metadata            models.JSONMap `json:"metadata"`
}

type UpdateOrganizationRequest struct {
	Name                *string        `json:"name"`
	LegalName           *string        `json:"legal_name"`
	RegistrationNumber  *string        `json:"registration_number"`
	TaxID               *string        `json:"tax_id"`
	OrganizationType    *string        `json:"organization_type"`
	Email               *string        `json:"email"`
	PhoneNumber         *string        `json:"phone_number"`
	Website             *string        `json:"website"`
	AddressLine1        *string        `json:"address_line_1"`
	City                *string        `json:"city"`
	Country             *string        `json:"country"`
	PrimaryContactName  *string        `json:"primary_contact_name"`
	PrimaryContactEmail *string        `json:"primary_contact_email"`
	Status              *string        `json:"status"`
	Metadata            models.JSONMap `json:"metadata"`
}

// --- OrganizationService Interface ---
type OrganizationService interface {
	CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*models.Organization, error)
	GetOrganizationByID(ctx context.Context, id int64) (*models.Organization, error)
	GetOrganizations(ctx context.Context, filters models.ListFilters) ([]models.Organization, int, error)
	UpdateOrganization(ctx context.Context, id int64, req UpdateOrganizationRequest) (*models.Organization, error)
	ArchiveOrganization(ctx context.Context, id int64, req ArchiveRequest) (*models.Organization, error)
	GetOrganizationUsers(ctx context.Context, id int64, filters models.ListFilters) ([]models.User, int, error)
}

type organizationService struct {
	orgRepo  repositories.OrganizationRepository
	userRepo repositories.UserRepository
	options  optionChecker
	db       *sql.DB
}

// NewOrganizationService creates a new instance of OrganizationService.
func NewOrganizationService(orgRepo repositories.OrganizationRepository, userRepo repositories.UserRepository, options OptionService, db *sql.DB) OrganizationService {
	return &organizationService{orgRepo: orgRepo, userRepo: userRepo, options: options, db: db}
}

// validateOrganization checks the fields shared by create and update on the merged record.
func (s *organizationService) validateOrganization(ctx context.Context, org *models.Organization) error {
	if utils.IsEmpty(org.Name) {
		return fmt.Errorf("%w: name cannot be empty", ErrOrganizationValidation)
	}
	if len(org.Name) > 255 {
		return fmt.Errorf("%w: name must be at most 255 characters", ErrOrganizationValidation)
	}
	emails := []struct {
		field string
		value **string
	}{
		{"email", &org.Email},
		{"primary_contact_email", &org.PrimaryContactEmail},
	}
	for _, e := range emails {
		if *e.value == nil {
			continue
		}
		normalized, err := validation.Email(e.field, **e.value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrOrganizationValidation, err)
		}
		*e.value = &normalized
	}
	if err := checkRecordStatus(ErrOrganizationValidation, &org.Status); err != nil {
		return err
	}
	return checkOption(ctx, s.options, ErrOrganizationValidation, "organization_type", models.OptionCategoryOrganizationType, org.OrganizationType)
}

func (s *organizationService) CreateOrganization(ctx context.Context, req CreateOrganizationRequest) (*models.Organization, error) {
	org := &models.Organization{
		Name:                strings.TrimSpace(req.Name),
		LegalName:           utils.TrimToNil(req.LegalName),
		RegistrationNumber:  utils.TrimToNil(req.RegistrationNumber),
		TaxID:               utils.TrimToNil(req.TaxID),
		OrganizationType:    utils.TrimToNil(req.OrganizationType),
		Email:               utils.TrimToNil(req.Email),
		PhoneNumber:         utils.TrimToNil(req.PhoneNumber),
		Website:             utils.TrimToNil(req.Website),
		AddressLine1:        utils.TrimToNil(req.AddressLine1),
		City:                utils.TrimToNil(req.City),
		Country:             utils.TrimToNil(req.Country),
		PrimaryContactName:  utils.TrimToNil(req.PrimaryContactName),
		PrimaryContactEmail: utils.TrimToNil(req.PrimaryContactEmail),
		Status:              "active",
		Metadata:            req.Metadata,
	}
	if req.Status != nil {
		org.Status = strings.TrimSpace(*req.Status)
	}

	if err := s.validateOrganization(ctx, org); err != nil {
		return nil, err
	}

	if _, err := s.orgRepo.CreateOrganization(ctx, s.db, org); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrOrganizationExists
		}
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}
	utils.LogInfo("Organization created", map[string]interface{}{"organization_id": org.ID, "name": org.Name})
	return org, nil
}

func (s *organizationService) GetOrganizationByID(ctx context.Context, id int64) (*models.Organization, error) {
	org, err := s.orgRepo.GetOrganizationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

func (s *organizationService) GetOrganizations(ctx context.Context, filters models.ListFilters) ([]models.Organization, int, error) {
	filters.Page, filters.PageSize = NormalizePage(filters.Page, filters.PageSize)
	filters.Search = utils.TrimToNil(filters.Search)
	filters.OrganizationID = nil

	orgs, total, err := s.orgRepo.GetOrganizations(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list organizations: %w", err)
	}
	return orgs, total, nil
}

func (s *organizationService) UpdateOrganization(ctx context.Context, id int64, req UpdateOrganizationRequest) (*models.Organization, error) {
	org, err := s.GetOrganizationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org.IsArchived {
		return nil, ErrOrganizationArchived
	}

	if req.Name != nil {
		org.Name = strings.TrimSpace(*req.Name)
	}
	if req.Status != nil {
		org.Status = strings.TrimSpace(*req.Status)
	}
	if req.Metadata != nil {
		org.Metadata = req.Metadata
	}
	// Optional text columns: a provided blank string clears the value.
	optional := []struct {
		in  *string
		dst **string
	}{
		{req.LegalName, &org.LegalName},
		{req.RegistrationNumber, &org.RegistrationNumber},
		{req.TaxID, &org.TaxID},
		{req.OrganizationType, &org.OrganizationType},
		{req.Email, &org.Email},
		{req.PhoneNumber, &org.PhoneNumber},
		{req.Website, &org.Website},
		{req.AddressLine1, &org.AddressLine1},
		{req.City, &org.City},
		{req.Country, &org.Country},
		{req.PrimaryContactName, &org.PrimaryContactName},
		{req.PrimaryContactEmail, &org.PrimaryContactEmail},
	}
	for _, f := range optional {
		if f.in != nil {
			*f.dst = utils.TrimToNil(f.in)
		}
	}

	if err := s.validateOrganization(ctx, org); err != nil {
		return nil, err
	}

	if err := s.orgRepo.UpdateOrganization(ctx, s.db, org); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrganizationNotFound
		}
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrOrganizationExists
		}
		return nil, fmt.Errorf("failed to update organization: %w", err)
	}
	return org, nil
}

func (s *organizationService) ArchiveOrganization(ctx context.Context, id int64, req ArchiveRequest) (*models.Organization, error) {
	org, err := s.GetOrganizationByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org.IsArchived {
		return nil, ErrOrganizationArchived
	}

	at := time.Now().UTC()
	if err := s.orgRepo.ArchiveOrganization(ctx, s.db, id, req.ArchivedBy, at); err != nil {
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			// archived concurrently between the read and the write
			return nil, ErrOrganizationArchived
		case errors.Is(err, repositories.ErrForeignKey):
			return nil, fmt.Errorf("%w: archived_by does not reference an existing user", ErrOrganizationValidation)
		}
		return nil, fmt.Errorf("failed to archive organization: %w", err)
	}

	org.IsArchived = true
	org.ArchivedAt = &at
	org.ArchivedBy = req.ArchivedBy
	org.UpdatedAt = at
	utils.LogInfo("Organization archived", map[string]interface{}{"organization_id": id})
	return org, nil
}

func (s *organizationService) GetOrganizationUsers(ctx context.Context, id int64, filters models.ListFilters) ([]models.User, int, error) {
	if _, err := s.GetOrganizationByID(ctx, id); err != nil {
		return nil, 0, err
	}

	filters.Page, filters.PageSize = NormalizePage(filters.Page, filters.PageSize)
	filters.Search = utils.TrimToNil(filters.Search)
	filters.OrganizationID = &id

	users, total, err := s.userRepo.GetUsers(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list organization users: %w", err)
	}
	return users, total, nil
}
