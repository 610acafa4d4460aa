package handlers

import (
	"errors"
	"net/http"

	"caa_portal_backend/internal/models"
	"caa_portal_backend/internal/services"
	"caa_portal_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OrganizationHandler holds the organization service.
type OrganizationHandler struct {
	organizationService services.OrganizationService
}

// NewOrganizationHandler creates a new OrganizationHandler.
func NewOrganizationHandler(s services.OrganizationService) *OrganizationHandler {
	return &OrganizationHandler{organizationService: s}
}

func respondOrganizationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrOrganizationNotFound):
		utils.RespondNotFound(c, "Organization", err.Error())
	case errors.Is(err, services.ErrOrganizationExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Registration number already exists.", err.Error()))
	case errors.Is(err, services.ErrOrganizationArchived):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Organization is archived.", err.Error()))
	case errors.Is(err, services.ErrOrganizationValidation):
		utils.RespondValidationFailed(c, err.Error())
	default:
		utils.RespondInternalError(c, fallback)
	}
}

// CreateOrganization handles the creation of a new organization.
func (h *OrganizationHandler) CreateOrganization(c *gin.Context) {
	var req services.CreateOrganizationRequest
	if !bindJSON(c, &req, "CreateOrganization") {
		return
	}

	org, err := h.organizationService.CreateOrganization(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "CreateOrganization: Error from organizationService.CreateOrganization")
		respondOrganizationError(c, err, "Failed to create organization.")
		return
	}
	c.JSON(http.StatusCreated, org)
}

// GetOrganizations handles fetching organizations with pagination and search.
func (h *OrganizationHandler) GetOrganizations(c *gin.Context) {
	var filters models.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	orgs, total, err := h.organizationService.GetOrganizations(c.Request.Context(), filters)
	if err != nil {
		utils.LogError(err, "GetOrganizations: Error from organizationService.GetOrganizations")
		utils.RespondInternalError(c, "Failed to fetch organizations.")
		return
	}
	if orgs == nil {
		orgs = []models.Organization{}
	}
	page, pageSize := services.NormalizePage(filters.Page, filters.PageSize)
	c.JSON(http.StatusOK, listResponse(orgs, total, page, pageSize))
}

// GetOrganizationByID handles fetching a single organization.
func (h *OrganizationHandler) GetOrganizationByID(c *gin.Context) {
	id, ok := parseIDParam(c, "organization")
	if !ok {
		return
	}

	org, err := h.organizationService.GetOrganizationByID(c.Request.Context(), id)
	if err != nil {
		utils.LogError(err, "GetOrganizationByID: Error from organizationService.GetOrganizationByID", map[string]interface{}{"organization_id": id})
		respondOrganizationError(c, err, "Failed to fetch organization.")
		return
	}
	c.JSON(http.StatusOK, org)
}

// UpdateOrganization handles a partial update of an organization.
func (h *OrganizationHandler) UpdateOrganization(c *gin.Context) {
	id, ok := parseIDParam(c, "organization")
	if !ok {
		return
	}

	var req services.UpdateOrganizationRequest
	if !bindJSON(c, &req, "UpdateOrganization") {
		return
	}

	org, err := h.organizationService.UpdateOrganization(c.Request.Context(), id, req)
	if err != nil {
		utils.LogError(err, "UpdateOrganization: Error from organizationService.UpdateOrganization", map[string]interface{}{"organization_id": id})
		respondOrganizationError(c, err, "Failed to update organization.")
		return
	}
	c.JSON(http.StatusOK, org)
}

// ArchiveOrganization handles archiving an organization.
func (h *OrganizationHandler) ArchiveOrganization(c *gin.Context) {
	id, ok := parseIDParam(c, "organization")
	if !ok {
		return
	}

	var req services.ArchiveRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "ArchiveOrganization") {
		return
	}

	org, err := h.organizationService.ArchiveOrganization(c.Request.Context(), id, req)
	if err != nil {
		utils.LogError(err, "ArchiveOrganization: Error from organizationService.ArchiveOrganization", map[string]interface{}{"organization_id": id})
		respondOrganizationError(c, err, "Failed to archive organization.")
		return
	}
	c.JSON(http.StatusOK, org)
}

// GetOrganizationUsers lists the users belonging to an organization.
func (h *OrganizationHandler) GetOrganizationUsers(c *gin.Context) {
	id, ok := parseIDParam(c, "organization")
	if !ok {
		return
	}

	var filters models.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	users, total, err := h.organizationService.GetOrganizationUsers(c.Request.Context(), id, filters)
	if err != nil {
		utils.LogError(err, "GetOrganizationUsers: Error from organizationService.GetOrganizationUsers", map[string]interface{}{"organization_id": id})
		respondOrganizationError(c, err, "Failed to fetch organization users.")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	page, pageSize := services.NormalizePage(filters.Page, filters.PageSize)
	c.JSON(http.StatusOK, listResponse(users, total, page, pageSize))
}
