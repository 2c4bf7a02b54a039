package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/wikiboard/backend/internal/domain/identity"
	"go.uber.org/zap"
)

// RoleConfig holds configuration for role middleware
type RoleConfig struct {
	// Logger for middleware logging (optional)
	Logger *zap.Logger
	// OnDenied is called when the role check fails (optional)
	OnDenied func(c *gin.Context, requiredRole string)
}

// RequireAdmin creates middleware that only lets admin accounts through.
// It must run after JWTAuthMiddleware; requests without claims are denied.
// Role checks run before any request body parsing, so a non-admin caller
// gets 403 even when the payload is malformed.
func RequireAdmin() gin.HandlerFunc {
	return RequireRole(string(identity.UserRoleAdmin), RoleConfig{})
}

// RequireAdminWithConfig creates admin middleware with custom config
func RequireAdminWithConfig(cfg RoleConfig) gin.HandlerFunc {
	return RequireRole(string(identity.UserRoleAdmin), cfg)
}

// RequireRole creates middleware that requires a specific role
func RequireRole(role string, cfg RoleConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := GetJWTClaims(c)
		if claims == nil {
			handleRoleDenied(c, cfg, role, "No authentication claims found")
			return
		}

		if claims.Role != role {
			handleRoleDenied(c, cfg, role, "User lacks required role")
			return
		}

		c.Next()
	}
}

func handleRoleDenied(c *gin.Context, cfg RoleConfig, requiredRole, reason string) {
	if cfg.OnDenied != nil {
		cfg.OnDenied(c, requiredRole)
		return
	}

	if cfg.Logger != nil {
		userID := ""
		userRole := ""
		if claims := GetJWTClaims(c); claims != nil {
			userID = claims.UserID
			userRole = claims.Role
		}

		cfg.Logger.Warn("Role check denied",
			zap.String("reason", reason),
			zap.String("user_id", userID),
			zap.String("required_role", requiredRole),
			zap.String("user_role", userRole),
			zap.String("path", c.Request.URL.Path),
			zap.String("method", c.Request.Method),
		)
	}

	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "ERR_FORBIDDEN",
			"message": "Access denied: insufficient permissions",
		},
	})
}

// IsAdmin reports whether the current request is authenticated as an admin
func IsAdmin(c *gin.Context) bool {
	claims := GetJWTClaims(c)
	return claims != nil && claims.Role == string(identity.UserRoleAdmin)
}
