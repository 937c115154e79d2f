package middleware_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstreco/internal/auth"
	"gstreco/internal/domain"
	"gstreco/internal/middleware"
	"gstreco/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	validator := new(mocks.MockTokenValidator)
	tenantID, userID := uuid.New(), uuid.New()
	validator.On("ValidateToken", "valid-token").Return(&auth.Claims{
		TenantID: tenantID,
		UserID:   userID,
		Role:     domain.RoleMember,
	}, nil)

	r := gin.New()
	r.Use(middleware.AuthMiddleware(validator))
	r.GET("/test", func(c *gin.Context) {
		tid, _ := middleware.GetTenantID(c)
		uid, _ := middleware.GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"tenant_id": tid, "user_id": uid, "role": middleware.GetRole(c)})
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
	req.Header.Set("Authorization", "Bearer valid-token")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, tenantID.String(), resp["tenant_id"])
	assert.Equal(t, userID.String(), resp["user_id"])
	assert.Equal(t, "member", resp["role"])
	validator.AssertExpectations(t)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	validator := new(mocks.MockTokenValidator)
	validator.On("ValidateToken", "bad-token").Return(nil, errors.New("expired"))

	r := gin.New()
	r.Use(middleware.AuthMiddleware(validator))
	r.GET("/test", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, header := range []string{"", "Basic abc", "Bearer ", "Bearer bad-token"} {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestAuthMiddleware_RejectsIncompleteClaims(t *testing.T) {
	tests := []struct {
		name   string
		claims *auth.Claims
		reason string
	}{
		{"nil tenant", &auth.Claims{UserID: uuid.New(), Role: domain.RoleAdmin}, "missing_subject"},
		{"nil user", &auth.Claims{TenantID: uuid.New(), Role: domain.RoleAdmin}, "missing_subject"},
		{"unknown role", &auth.Claims{TenantID: uuid.New(), UserID: uuid.New(), Role: "owner"}, "unknown_role"},
		{"empty role", &auth.Claims{TenantID: uuid.New(), UserID: uuid.New()}, "unknown_role"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hook := logtest.NewGlobal()
			defer hook.Reset()

			validator := new(mocks.MockTokenValidator)
			validator.On("ValidateToken", "tok").Return(tt.claims, nil)

			reached := false
			r := gin.New()
			r.Use(middleware.RequestID(), middleware.AuthMiddleware(validator))
			r.GET("/test", func(c *gin.Context) { reached = true })

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodGet, "/test", http.NoBody)
			req.Header.Set("Authorization", "Bearer tok")
			req.Header.Set("X-Request-ID", "req-42")
			r.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), "UNAUTHORIZED")
			assert.False(t, reached)

			entry := hook.LastEntry()
			require.NotNil(t, entry)
			assert.Equal(t, logrus.WarnLevel, entry.Level)
			assert.Equal(t, "req-42", entry.Data["request_id"])
			assert.Equal(t, tt.reason, entry.Data["reason"])
		})
	}
}

func TestGetTenantID_Unauthenticated(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, err := middleware.GetTenantID(c)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	c.Set(middleware.ContextKeyTenantID, uuid.Nil)
	_, err = middleware.GetTenantID(c)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	c.Set(middleware.ContextKeyUserID, "not-a-uuid")
	_, err = middleware.GetUserID(c)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, middleware.GetRole(c))
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		role string
		want int
	}{
		{"admin", http.StatusOK},
		{"member", http.StatusForbidden},
		{"", http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.role, func(t *testing.T) {
			r := gin.New()
			r.Use(func(c *gin.Context) {
				if tt.role != "" {
					c.Set(middleware.ContextKeyRole, tt.role)
				}
			})
			r.Use(middleware.RequireRole(domain.RoleAdmin))
			r.DELETE("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

			w := httptest.NewRecorder()
			req, _ := http.NewRequest(http.MethodDelete, "/x", http.NoBody)
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
