package handlers

import (
	"net/http"
	"strconv"

	"caa_portal_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// parseIDParam reads the :id path parameter. On failure it has already responded with 400.
func parseIDParam(c *gin.Context, resource string) (int64, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		utils.RespondWithError(c, utils.NewAPIError(http.StatusBadRequest, utils.ErrCodeBadRequest, "Invalid "+resource+" ID format.", "id must be a positive integer"))
		return 0, false
	}
	return id, true
}

// bindJSON binds the request body. Missing or malformed fields answer 422.
func bindJSON(c *gin.Context, dst interface{}, action string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.LogDebug(action+": failed to bind JSON", map[string]interface{}{"error": err.Error()})
		utils.RespondValidationFailed(c, err.Error())
		return false
	}
	return true
}

// listResponse is the envelope of the paginated registry listings.
func listResponse(data interface{}, total, page, pageSize int) gin.H {
	return gin.H{
		"data":      data,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	}
}

