package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"notes-service/internal/auth"
	"notes-service/internal/model"
	"notes-service/pkg/jwtutil"
	"notes-service/pkg/logger"
	"notes-service/prometheus"
)

const principalKey = "principal"

// Authenticate validates the bearer token from the Authorization header
// and resolves the principal from the database. Authentication always runs
// before any role or tenant check: an invalid credential is 401 regardless
// of what the request would otherwise be allowed to do.
func Authenticate(jwt *jwtutil.JWTUtil, resolver *auth.Resolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			// Get the Authorization header
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				log.Warn("Missing Authorization header")
				prometheus.RecordAuthError("missing_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			// Check if it's a Bearer token
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				log.Warn("Invalid Authorization header format")
				prometheus.RecordAuthError("invalid_auth_format")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			// Validate the token
			claims, err := jwt.ValidateToken(parts[1])
			if err != nil {
				log.Warn("Invalid JWT token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			// Resolve the principal fresh from the database. A deleted
			// user must not resolve even with a still-valid token.
			principal, err := resolver.Resolve(c.Request().Context(), claims.UserID)
			if err != nil {
				log.Warn("Failed to resolve principal",
					zap.Uint("user_id", claims.UserID),
					zap.Error(err))
				prometheus.RecordAuthError("principal_not_resolved")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			// Store the resolved principal in context for the handlers
			c.Set(principalKey, principal)

			log.Debug("Request authenticated",
				zap.Uint("user_id", principal.UserID),
				zap.Uint("tenant_id", principal.TenantID),
				zap.String("role", string(principal.Role)))

			return next(c)
		}
	}
}

// RequireRole allows the request through only when the resolved
// principal's role is in the allowed set. Must be mounted after
// Authenticate.
func RequireRole(allowed ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			principal := GetPrincipal(c)
			if principal == nil {
				log.Error("Role check reached without authenticated principal")
				prometheus.RecordAuthError("missing_principal")
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}

			if err := auth.Authorize(principal, allowed...); err != nil {
				log.Warn("Role denied",
					zap.Uint("user_id", principal.UserID),
					zap.String("role", string(principal.Role)))
				prometheus.RecordAuthError("role_denied")
				return c.JSON(http.StatusForbidden, echo.Map{"error": "insufficient permissions"})
			}

			return next(c)
		}
	}
}

// GetPrincipal returns the principal resolved by Authenticate, or nil.
func GetPrincipal(c echo.Context) *auth.Principal {
	principal, _ := c.Get(principalKey).(*auth.Principal)
	return principal
}
