package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"gstreco/internal/auth"
	"gstreco/internal/domain"
)

const (
	ContextKeyTenantID = "tenant_id"
	ContextKeyUserID   = "user_id"
	ContextKeyRole     = "role"
)

const bearerPrefix = "Bearer "

// AuthMiddleware validates the bearer token and scopes the request to the
// tenant and user in its claims. Claims with a nil tenant or user ID, or an
// unknown role, are refused with 401.
func AuthMiddleware(validator auth.TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
		if !strings.HasPrefix(header, bearerPrefix) || token == "" {
			abortUnauthorized(c, "missing_bearer", "missing or invalid authorization header")
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			requestLog(c).WithError(err).Warn("auth: token rejected")
			abortUnauthorized(c, "invalid_token", "invalid or expired token")
			return
		}
		if claims.TenantID == uuid.Nil || claims.UserID == uuid.Nil {
			abortUnauthorized(c, "missing_subject", "token does not identify a tenant and user")
			return
		}
		if !claims.Role.Valid() {
			abortUnauthorized(c, "unknown_role", "token carries an unknown role")
			return
		}

		c.Set(ContextKeyTenantID, claims.TenantID)
		c.Set(ContextKeyUserID, claims.UserID)
		c.Set(ContextKeyRole, string(claims.Role))
		c.Next()
	}
}

// RequireRole lets the request through only for the given roles.
func RequireRole(roles ...domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := domain.UserRole(GetRole(c))
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		requestLog(c).WithField("role", role).Warn("auth: insufficient role")
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"success": false,
			"error":   gin.H{"code": "FORBIDDEN", "message": "insufficient permissions"},
		})
	}
}

func abortUnauthorized(c *gin.Context, reason, message string) {
	requestLog(c).WithField("reason", reason).Warn("auth: request unauthorized")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"error":   gin.H{"code": "UNAUTHORIZED", "message": message},
	})
}

func requestLog(c *gin.Context) *logrus.Entry {
	requestID, _ := c.Get(ContextKeyRequestID)
	return logrus.WithFields(logrus.Fields{
		"request_id": requestID,
		"path":       c.Request.URL.Path,
	})
}

// GetTenantID returns the tenant the request is scoped to.
func GetTenantID(c *gin.Context) (uuid.UUID, error) {
	return contextUUID(c, ContextKeyTenantID)
}

// GetUserID returns the authenticated user.
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	return contextUUID(c, ContextKeyUserID)
}

func contextUUID(c *gin.Context, key string) (uuid.UUID, error) {
	v, _ := c.Get(key)
	id, ok := v.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return id, nil
}

// GetRole returns the role string, or "" when unauthenticated.
func GetRole(c *gin.Context) string {
	return c.GetString(ContextKeyRole)
}
