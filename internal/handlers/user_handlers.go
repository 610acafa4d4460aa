package handlers

import (
	"errors"
	"net/http"

	"caa_portal_backend/internal/models"
	"caa_portal_backend/internal/services"
	"caa_portal_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler holds the user service.
type UserHandler struct {
	userService services.UserService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(us services.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

func respondUserError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, services.ErrUserNotFound):
		utils.RespondNotFound(c, "User", err.Error())
	case errors.Is(err, services.ErrUserEmailExists):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "Email already exists.", err.Error()))
	case errors.Is(err, services.ErrUserArchived):
		utils.RespondWithError(c, utils.NewAPIError(http.StatusConflict, utils.ErrCodeConflict, "User is archived.", err.Error()))
	case errors.Is(err, services.ErrUserValidation), errors.Is(err, services.ErrDateFormat):
		utils.RespondValidationFailed(c, err.Error())
	default:
		utils.RespondInternalError(c, fallback)
	}
}

// CreateUser handles the creation of a new applicant account.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req services.CreateUserRequest
	if !bindJSON(c, &req, "CreateUser") {
		return
	}

	user, err := h.userService.CreateUser(c.Request.Context(), req)
	if err != nil {
		utils.LogError(err, "CreateUser: Error from userService.CreateUser")
		respondUserError(c, err, "Failed to create user.")
		return
	}
	c.JSON(http.StatusCreated, user)
}

// GetUsers handles fetching users with pagination, search and organization filter.
func (h *UserHandler) GetUsers(c *gin.Context) {
	var filters models.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		utils.RespondValidationFailed(c, err.Error())
		return
	}

	users, total, err := h.userService.GetUsers(c.Request.Context(), filters)
	if err != nil {
		utils.LogError(err, "GetUsers: Error from userService.GetUsers")
		utils.RespondInternalError(c, "Failed to fetch users.")
		return
	}
	if users == nil {
		users = []models.User{}
	}
	page, pageSize := services.NormalizePage(filters.Page, filters.PageSize)
	c.JSON(http.StatusOK, listResponse(users, total, page, pageSize))
}

// GetUserByID handles fetching a single user.
func (h *UserHandler) GetUserByID(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	user, err := h.userService.GetUserByID(c.Request.Context(), id)
	if err != nil {
		utils.LogError(err, "GetUserByID: Error from userService.GetUserByID", map[string]interface{}{"user_id": id})
		respondUserError(c, err, "Failed to fetch user.")
		return
	}
	c.JSON(http.StatusOK, user)
}

// UpdateUser handles a partial profile update.
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	var req services.UpdateUserRequest
	if !bindJSON(c, &req, "UpdateUser") {
		return
	}

	user, err := h.userService.UpdateUser(c.Request.Context(), id, req)
	if err != nil {
		utils.LogError(err, "UpdateUser: Error from userService.UpdateUser", map[string]interface{}{"user_id": id})
		respondUserError(c, err, "Failed to update user.")
		return
	}
	c.JSON(http.StatusOK, user)
}

// ArchiveUser handles archiving a user.
func (h *UserHandler) ArchiveUser(c *gin.Context) {
	id, ok := parseIDParam(c, "user")
	if !ok {
		return
	}

	var req services.ArchiveRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req, "ArchiveUser") {
		return
	}

	user, err := h.userService.ArchiveUser(c.Request.Context(), id, req)
	if err != nil {
		utils.LogError(err, "ArchiveUser: Error from userService.ArchiveUser", map[string]interface{}{"user_id": id})
		respondUserError(c, err, "Failed to archive user.")
		return
	}
	c.JSON(http.StatusOK, user)
}
