package handlers

import (
	"errors"
	"net/http"

	"caa_portal_backend/internal/services"
	"caa_portal_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// OptionHandler serves the lookup options used by the portal forms.
type OptionHandler struct {
	optionService services.OptionService
}

// NewOptionHandler creates a new OptionHandler.
func NewOptionHandler(ops services.OptionService) *OptionHandler {
	return &OptionHandler{optionService: ops}
}

// GetOptions returns every active option grouped by category.
func (h *OptionHandler) GetOptions(c *gin.Context) {
	grouped, err := h.optionService.GetGroupedOptions(c.Request.Context())
	if err != nil {
		utils.LogError(err, "GetOptions: Error from optionService.GetGroupedOptions")
		utils.RespondInternalError(c, "Failed to fetch options.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    grouped,
	})
}

// GetOptionsByCategory returns the active options of one category.
func (h *OptionHandler) GetOptionsByCategory(c *gin.Context) {
	category := c.Param("category")

	choices, err := h.optionService.GetOptionsByCategory(c.Request.Context(), category)
	if err != nil {
		utils.LogError(err, "GetOptionsByCategory: Error from optionService.GetOptionsByCategory", map[string]interface{}{"category": category})
		utils.RespondInternalError(c, "Failed to fetch options.")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"category": category,
		"data":     choices,
	})
}

// UpsertOption creates or updates an option keyed by (category, value).
func (h *OptionHandler) UpsertOption(c *gin.Context) {
	var req services.UpsertOptionRequest
	if !bindJSON(c, &req, "UpsertOption") {
		return
	}

	opt, err := h.optionService.UpsertOption(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "UpsertOption: Error from optionService.UpsertOption")
		if errors.Is(err, services.ErrOptionValidation) {
			utils.RespondValidationFailed(c, err.Error())
		} else {
			utils.RespondInternalError(c, "Failed to save option.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Option saved successfully",
		"data":    opt,
	})
}

// DeleteOption removes an option.
func (h *OptionHandler) DeleteOption(c *gin.Context) {
	id, ok := parseIDParam(c, "option")
	if !ok {
		return
	}

	if err := h.optionService.DeleteOption(c.Request.Context(), id); err != nil {
		utils.LogError(err, "DeleteOption: Error from optionService.DeleteOption", map[string]interface{}{"option_id": id})
		if errors.Is(err, services.ErrOptionNotFound) {
			utils.RespondNotFound(c, "Option", err.Error())
		} else {
			utils.RespondInternalError(c, "Failed to delete option.")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Option deleted successfully",
	})
}
