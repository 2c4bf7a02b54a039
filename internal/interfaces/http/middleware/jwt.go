package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/wikiboard/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// Context keys for JWT data
const (
	ContextKeyJWTClaims = "jwt_claims"
	ContextKeyUserID    = "jwt_user_id"
	ContextKeyUserRole  = "jwt_user_role"
)

// JWTMiddlewareConfig holds configuration for JWT middleware
type JWTMiddlewareConfig struct {
	// JWTService validates tokens
	JWTService *auth.JWTService
	// TokenBlacklist checks revoked tokens (optional)
	TokenBlacklist auth.TokenBlacklist
	// SkipPaths are exact paths that bypass authentication
	SkipPaths []string
	// SkipPathPrefixes are path prefixes that bypass authentication
	SkipPathPrefixes []string
	// OnError overrides the default error response (optional)
	OnError func(c *gin.Context, err error)
	// Logger for middleware logging (optional)
	Logger *zap.Logger
}

// JWTAuthMiddleware creates a JWT authentication middleware.
// It validates the Bearer token, rejects revoked tokens, and stores the
// claims plus user identity in the request context for handlers.
func JWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path

		for _, skip := range cfg.SkipPaths {
			if path == skip {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		tokenString, err := extractBearerToken(c)
		if err != nil {
			handleAuthError(c, cfg, err)
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			handleAuthError(c, cfg, err)
			return
		}

		if cfg.TokenBlacklist != nil {
			jti := claims.ID
			if jti != "" {
				blacklisted, err := cfg.TokenBlacklist.IsBlacklisted(c.Request.Context(), jti)
				if err != nil {
					// Fail open on blacklist errors so a Redis outage does not
					// take down every authenticated endpoint
					if cfg.Logger != nil {
						cfg.Logger.Warn("Token blacklist check failed",
							zap.Error(err),
							zap.String("path", path),
						)
					}
				} else if blacklisted {
					handleAuthError(c, cfg, auth.ErrTokenBlacklisted)
					return
				}
			}

			if claims.IssuedAt != nil {
				invalidated, err := cfg.TokenBlacklist.IsUserTokenInvalidated(
					c.Request.Context(), claims.UserID, claims.IssuedAt.Time)
				if err != nil {
					if cfg.Logger != nil {
						cfg.Logger.Warn("User token invalidation check failed",
							zap.Error(err),
							zap.String("user_id", claims.UserID),
						)
					}
				} else if invalidated {
					handleAuthError(c, cfg, auth.ErrTokenBlacklisted)
					return
				}
			}
		}

		c.Set(ContextKeyJWTClaims, claims)
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUserRole, claims.Role)

		c.Next()
	}
}

// OptionalJWTAuthMiddleware validates a token when present but lets
// unauthenticated requests through. Useful for endpoints that enrich
// responses for logged-in users.
func OptionalJWTAuthMiddleware(cfg JWTMiddlewareConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := extractBearerToken(c)
		if err != nil {
			c.Next()
			return
		}

		claims, err := cfg.JWTService.ValidateAccessToken(tokenString)
		if err != nil {
			c.Next()
			return
		}

		c.Set(ContextKeyJWTClaims, claims)
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyUserRole, claims.Role)

		c.Next()
	}
}

// extractBearerToken extracts the token from the Authorization header
func extractBearerToken(c *gin.Context) (string, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", auth.ErrInvalidToken
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", auth.ErrInvalidToken
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", auth.ErrInvalidToken
	}

	return token, nil
}

// handleAuthError responds with 401 and a code matched to the failure
func handleAuthError(c *gin.Context, cfg JWTMiddlewareConfig, err error) {
	if cfg.OnError != nil {
		cfg.OnError(c, err)
		return
	}

	code := "TOKEN_INVALID"
	message := "Invalid or missing authentication token"

	switch err {
	case auth.ErrExpiredToken:
		code = "TOKEN_EXPIRED"
		message = "Authentication token has expired"
	case auth.ErrTokenBlacklisted:
		code = "TOKEN_REVOKED"
		message = "Authentication token has been revoked"
	}

	if cfg.Logger != nil {
		cfg.Logger.Debug("Authentication failed",
			zap.String("code", code),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// GetJWTClaims retrieves JWT claims from the gin context.
// Returns nil if no claims are present (unauthenticated request).
func GetJWTClaims(c *gin.Context) *auth.Claims {
	value, exists := c.Get(ContextKeyJWTClaims)
	if !exists {
		return nil
	}
	claims, ok := value.(*auth.Claims)
	if !ok {
		return nil
	}
	return claims
}

// MustGetJWTClaims retrieves JWT claims or aborts with 401.
// Use only on routes behind JWTAuthMiddleware.
func MustGetJWTClaims(c *gin.Context) *auth.Claims {
	claims := GetJWTClaims(c)
	if claims == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "TOKEN_INVALID",
				"message": "Authentication required",
			},
		})
		return nil
	}
	return claims
}

// GetJWTUserID retrieves the authenticated user ID from the gin context
func GetJWTUserID(c *gin.Context) string {
	return c.GetString(ContextKeyUserID)
}
