package middleware

import (
	"net/http"
	"strings"

	"caa_portal_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Staff roles recognised in tokens from the staff identity provider.
const (
	RoleAdmin   = "admin"
	RoleManager = "manager"
	RoleOfficer = "officer"
)

// Context keys set by StaffAuthMiddleware.
const (
	StaffIDKey    = "staffID"
	StaffEmailKey = "staffEmail"
	StaffRoleKey  = "staffRole"
)

// StaffAuthMiddleware validates the bearer JWT on staff routes. With an empty
// secret the middleware lets every request through (local development).
func StaffAuthMiddleware(secret string) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		if len(key) == 0 {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Authorization header required", ""))
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid authorization header format. Use Bearer <token>", ""))
			return
		}

		claims, err := utils.ValidateToken(parts[1], key)
		if err != nil {
			utils.LogWarn("Rejected staff token", map[string]interface{}{"error": err.Error(), "path": c.Request.URL.Path})
			utils.RespondWithError(c, utils.NewAPIError(http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Invalid or expired token", err.Error()))
			return
		}

		c.Set(StaffIDKey, claims.UserID)
		c.Set(StaffEmailKey, claims.Email)
		c.Set(StaffRoleKey, strings.ToLower(claims.Role))

		c.Next()
	}
}

// RoleAuthMiddleware admits requests whose staff role is one of allowedRoles.
// It is a no-op when auth is disabled, i.e. StaffAuthMiddleware set no role.
func RoleAuthMiddleware(secret string, allowedRoles ...string) gin.HandlerFunc {
	enabled := secret != ""
	return func(c *gin.Context) {
		if !enabled {
			c.Next()
			return
		}

		role := c.GetString(StaffRoleKey)
		if role == "" {
			utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden, "Staff role not found in token claims", ""))
			return
		}

		for _, r := range allowedRoles {
			if strings.EqualFold(role, r) {
				c.Next()
				return
			}
		}

		utils.RespondWithError(c, utils.NewAPIError(http.StatusForbidden, utils.ErrCodeForbidden,
			"You do not have permission to access this resource. Required roles: "+strings.Join(allowedRoles, ", "), ""))
	}
}
