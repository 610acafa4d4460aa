package handlers

import (
	"errors"
	"net/http"

	"caa_portal_backend/internal/models"
	"caa_portal_backend/internal/services"
	"caa_portal_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// ApplicationHandler holds the application service.
type ApplicationHandler struct {
	applicationService services.ApplicationService
}

// NewApplicationHandler creates a new ApplicationHandler.
func NewApplicationHandler(as services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: as}
}

func respondApplicationError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrApplicationNotFound):
		utils.RespondNotFound(c, "Application", err.Error())
	case errors.Is(err, services.ErrApplicationValidation):
		utils.RespondValidationFailed(c, err.Error())
	case errors.Is(err, services.ErrInvalidStatusTransition):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Status change not allowed.", err.Error()))
	default:
		utils.RespondInternalError(c, fallback)
	}
}

// GetApplications lists applications, newest first.
func (h *ApplicationHandler) GetApplications(c *gin.Context) {
	var filters models.ApplicationFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	apps, err := h.applicationService.GetApplications(c.Request.Context(), filters)
	if err != nil {
		utils.LogError(err, "GetApplications: Error from applicationService.GetApplications")
		respondApplicationError(c, err, "Failed to fetch applications.")
		return
	}
	if apps == nil {
		apps = []models.Application{}
	}
	c.JSON(http.StatusOK, apps)
}

// CreateApplication handles a new licence application submission.
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	var req services.CreateApplicationRequest
	if !bindJSON(c, &req, "CreateApplication") {
		return
	}

	app, err := h.applicationService.CreateApplication(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "CreateApplication: Error from applicationService.CreateApplication")
		respondApplicationError(c, err, "Failed to submit application.")
		return
	}

	message := "Application submitted successfully"
	if app.Status == string(models.ApplicationStatusDraft) {
		message = "Application draft saved successfully"
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":        message,
		"application_id": app.ID,
		"reference":      app.Reference,
	})
}

// GetApplicationByID handles fetching a single application.
func (h *ApplicationHandler) GetApplicationByID(c *gin.Context) {
	id, ok := parseIDParam(c, "application")
	if !ok {
		return
	}

	app, err := h.applicationService.GetApplicationByID(c.Request.Context(), id)
	if err != nil {
		utils.LogError(err, "GetApplicationByID: Error from applicationService.GetApplicationByID", map[string]interface{}{"application_id": id})
		respondApplicationError(c, err, "Failed to fetch application.")
		return
	}
	c.JSON(http.StatusOK, app)
}

// UpdateApplication replaces the payload and, when given, the applicant details.
// A missing application is reported before the body is validated.
func (h *ApplicationHandler) UpdateApplication(c *gin.Context) {
	id, ok := parseIDParam(c, "application")
	if !ok {
		return
	}

	if _, err := h.applicationService.GetApplicationByID(c.Request.Context(), id); err != nil {
		utils.LogError(err, "UpdateApplication: Error from applicationService.GetApplicationByID", map[string]interface{}{"application_id": id})
		respondApplicationError(c, err, "Failed to update application.")
		return
	}

	var req services.UpdateApplicationRequest
	if !bindJSON(c, &req, "UpdateApplication") {
		return
	}

	app, err := h.applicationService.UpdateApplication(c.Request.Context(), id, req)
	if err != nil {
		utils.LogError(err, "UpdateApplication: Error from applicationService.UpdateApplication", map[string]interface{}{"application_id": id})
		respondApplicationError(c, err, "Failed to update application.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Application updated successfully",
		"application": app,
	})
}

// UpdateApplicationStatus applies a workflow transition.
func (h *ApplicationHandler) UpdateApplicationStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "application")
	if !ok {
		return
	}

	var req services.UpdateApplicationStatusRequest
	if !bindJSON(c, &req, "UpdateApplicationStatus") {
		return
	}

	app, err := h.applicationService.UpdateApplicationStatus(c.Request.Context(), id, req)
	if err != nil {
		utils.LogError(err, "UpdateApplicationStatus: Error from applicationService.UpdateApplicationStatus", map[string]interface{}{"application_id": id})
		respondApplicationError(c, err, "Failed to update application status.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Application status updated successfully",
		"application": app,
	})
}
