package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"caa_portal_backend/internal/metrics"
	"caa_portal_backend/internal/models"
	"caa_portal_backend/internal/repositories"
	"caa_portal_backend/internal/validation"
	"caa_portal_backend/pkg/utils"

	"github.com/rs/xid"
)

// --- Custom Service Errors for Applications ---
var (
	ErrApplicationNotFound     = errors.New("application not found")
	ErrApplicationValidation   = errors.New("application data validation error")
	ErrInvalidStatusTransition = errors.New("application status transition not allowed")
)

// referencePrefix marks references issued by this portal.
const referencePrefix = "CAA-"

// --- Application DTOs ---
type CreateApplicationRequest struct {
	LicenceType      string         `json:"licence_type" binding:"required"`
	ApplicantDetails models.JSONMap `json:"applicant_details" binding:"required"`
	Payload          models.JSONMap `json:"payload" binding:"required"`
	Status           *string        `json:"status"` // "submitted" (default) or "draft"
}

type UpdateApplicationRequest struct {
	ApplicantDetails models.JSONMap `json:"applicant_details"` // nil keeps the stored value
	Payload          models.JSONMap `json:"payload" binding:"required"`
}

type UpdateApplicationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// --- ApplicationService Interface ---
type ApplicationService interface {
	CreateApplication(ctx context.Context, req CreateApplicationRequest) (*models.Application, error)
	GetApplicationByID(ctx context.Context, id int64) (*models.Application, error)
	GetApplications(ctx context.Context, filters models.ApplicationFilters) ([]models.Application, error)
	UpdateApplication(ctx context.Context, id int64, req UpdateApplicationRequest) (*models.Application, error)
	UpdateApplicationStatus(ctx context.Context, id int64, req UpdateApplicationStatusRequest) (*models.Application, error)
}

type applicationService struct {
	appRepo repositories.ApplicationRepository
	db      *sql.DB
}

// NewApplicationService creates a new instance of ApplicationService.
func NewApplicationService(repo repositories.ApplicationRepository, db *sql.DB) ApplicationService {
	return &applicationService{appRepo: repo, db: db}
}

// newReference returns a sortable, globally unique application reference.
func newReference() string {
	return referencePrefix + strings.ToUpper(xid.New().String())
}

func (s *applicationService) CreateApplication(ctx context.Context, req CreateApplicationRequest) (*models.Application, error) {
	licenceType, err := validation.LicenceType(req.LicenceType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrApplicationValidation, err)
	}
	if req.Payload == nil {
		return nil, fmt.Errorf("%w: payload is required", ErrApplicationValidation)
	}
	if err := validation.ApplicantDetails(req.ApplicantDetails); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrApplicationValidation, err)
	}

	status := models.ApplicationStatusSubmitted
	if req.Status != nil {
		switch models.ApplicationStatus(strings.TrimSpace(*req.Status)) {
		case models.ApplicationStatusSubmitted:
		case models.ApplicationStatusDraft:
			status = models.ApplicationStatusDraft
		default:
			return nil, fmt.Errorf("%w: status must be '%s' or '%s' on creation", ErrApplicationValidation,
				models.ApplicationStatusDraft, models.ApplicationStatusSubmitted)
		}
	}

	app := &models.Application{
		Reference:        newReference(),
		LicenceType:      licenceType,
		Status:           string(status),
		ApplicantDetails: req.ApplicantDetails,
		Payload:          req.Payload,
	}

	if _, err := s.appRepo.CreateApplication(ctx, s.db, app); err != nil {
		return nil, fmt.Errorf("failed to create application: %w", err)
	}

	metrics.ApplicationsCreated.WithLabelValues(metrics.LicenceTypeLabel(app.LicenceType), app.Status).Inc()
	utils.LogInfo("Application created", map[string]interface{}{
		"application_id": app.ID,
		"reference":      app.Reference,
		"licence_type":   app.LicenceType,
		"status":         app.Status,
	})
	return app, nil
}

func (s *applicationService) GetApplicationByID(ctx context.Context, id int64) (*models.Application, error) {
	app, err := s.appRepo.GetApplicationByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}
	return app, nil
}

func (s *applicationService) GetApplications(ctx context.Context, filters models.ApplicationFilters) ([]models.Application, error) {
	filters.Status = utils.TrimToNil(filters.Status)
	filters.LicenceType = utils.TrimToNil(filters.LicenceType)

	if filters.Status != nil && !models.IsValidApplicationStatus(*filters.Status) {
		return nil, fmt.Errorf("%w: unknown status filter '%s'", ErrApplicationValidation, *filters.Status)
	}
	if filters.LicenceType != nil {
		normalized := validation.NormalizeLicenceType(*filters.LicenceType)
		filters.LicenceType = &normalized
	}

	apps, err := s.appRepo.GetApplications(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	return apps, nil
}

func (s *applicationService) UpdateApplication(ctx context.Context, id int64, req UpdateApplicationRequest) (*models.Application, error) {
	if req.Payload == nil {
		return nil, fmt.Errorf("%w: payload is required", ErrApplicationValidation)
	}

	var applicantDetails models.JSONMap
	if req.ApplicantDetails != nil {
		if err := validation.ApplicantDetails(req.ApplicantDetails); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrApplicationValidation, err)
		}
		applicantDetails = req.ApplicantDetails
	}

	app, err := s.appRepo.UpdateApplicationContent(ctx, s.db, id, applicantDetails, req.Payload)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to update application: %w", err)
	}
	return app, nil
}

// UpdateApplicationStatus moves an application along its workflow. The current
// status is read under a row lock so concurrent reviewers cannot both apply a transition.
func (s *applicationService) UpdateApplicationStatus(ctx context.Context, id int64, req UpdateApplicationStatusRequest) (*models.Application, error) {
	next := models.ApplicationStatus(strings.TrimSpace(req.Status))
	if !models.IsValidApplicationStatus(string(next)) {
		return nil, fmt.Errorf("%w: unknown status '%s'", ErrApplicationValidation, req.Status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := s.appRepo.GetApplicationForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to load application for status change: %w", err)
	}

	from := models.ApplicationStatus(current.Status)
	if !from.CanTransitionTo(next) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, from, next)
	}

	updated, err := s.appRepo.UpdateApplicationStatus(ctx, tx, id, string(next))
	if err != nil {
		return nil, fmt.Errorf("failed to update application status: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit status change: %w", err)
	}

	metrics.ApplicationTransitions.WithLabelValues(string(from), string(next)).Inc()
	utils.LogInfo("Application status changed", map[string]interface{}{
		"application_id": id,
		"from":           from,
		"to":             next,
	})
	return updated, nil
}
