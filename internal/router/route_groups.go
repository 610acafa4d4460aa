package router

import (
	"caa_portal_backend/internal/handlers"
	"caa_portal_backend/internal/middleware"

	"github.com/gin-gonic/gin"
)

var staffRoles = []string{middleware.RoleAdmin, middleware.RoleManager, middleware.RoleOfficer}

// staffOnly chains token validation and the role check for one route.
func staffOnly(secret string, roles ...string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		middleware.StaffAuthMiddleware(secret),
		middleware.RoleAuthMiddleware(secret, roles...),
	}
}

// SetupApplicationRoutes sets up the licence application routes.
func SetupApplicationRoutes(apiGroup *gin.RouterGroup, h *handlers.ApplicationHandler, secret string) {
	applicationRoutes := apiGroup.Group("/applications")
	{
		applicationRoutes.GET("", h.GetApplications)
		applicationRoutes.POST("", h.CreateApplication)
		applicationRoutes.GET("/:id", h.GetApplicationByID)
		applicationRoutes.PUT("/:id", h.UpdateApplication)
		applicationRoutes.PATCH("/:id/status", append(staffOnly(secret, staffRoles...), h.UpdateApplicationStatus)...)
	}
}

// SetupOptionRoutes sets up the lookup option routes. Writes are admin only.
func SetupOptionRoutes(apiGroup *gin.RouterGroup, h *handlers.OptionHandler, secret string) {
	optionRoutes := apiGroup.Group("/options")
	{
		optionRoutes.GET("", h.GetOptions)
		optionRoutes.GET("/:category", h.GetOptionsByCategory)
		optionRoutes.POST("", append(staffOnly(secret, middleware.RoleAdmin), h.UpsertOption)...)
		optionRoutes.DELETE("/:id", append(staffOnly(secret, middleware.RoleAdmin), h.DeleteOption)...)
	}
}

// SetupOrganizationRoutes sets up the organization registry routes. The registry
// is maintained by staff, so every route requires a staff token.
func SetupOrganizationRoutes(apiGroup *gin.RouterGroup, h *handlers.OrganizationHandler, secret string) {
	organizationRoutes := apiGroup.Group("/organizations", staffOnly(secret, staffRoles...)...)
	{
		organizationRoutes.GET("", h.GetOrganizations)
		organizationRoutes.POST("", h.CreateOrganization)
		organizationRoutes.GET("/:id", h.GetOrganizationByID)
		organizationRoutes.PUT("/:id", h.UpdateOrganization)
		organizationRoutes.GET("/:id/users", h.GetOrganizationUsers)
		organizationRoutes.POST("/:id/archive", middleware.RoleAuthMiddleware(secret, middleware.RoleAdmin, middleware.RoleManager), h.ArchiveOrganization)
	}
}

// SetupUserRoutes sets up the applicant account routes. Registration is public;
// reading and editing accounts is a staff action.
func SetupUserRoutes(apiGroup *gin.RouterGroup, h *handlers.UserHandler, secret string) {
	apiGroup.POST("/users", h.CreateUser)

	userRoutes := apiGroup.Group("/users", staffOnly(secret, staffRoles...)...)
	{
		userRoutes.GET("", h.GetUsers)
		userRoutes.GET("/:id", h.GetUserByID)
		userRoutes.PUT("/:id", h.UpdateUser)
		userRoutes.POST("/:id/archive", middleware.RoleAuthMiddleware(secret, middleware.RoleAdmin, middleware.RoleManager), h.ArchiveUser)
	}
}
