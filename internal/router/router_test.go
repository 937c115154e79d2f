package router_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gstreco/internal/auth"
	"gstreco/internal/domain"
	"gstreco/internal/handler"
	"gstreco/internal/router"
	"gstreco/mocks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(role domain.UserRole) (*gin.Engine, *mocks.MockReconciliationService) {
	validator := new(mocks.MockTokenValidator)
	validator.On("ValidateToken", "token").Return(&auth.Claims{
		TenantID: uuid.New(),
		UserID:   uuid.New(),
		Role:     role,
	}, nil)
	svc := new(mocks.MockReconciliationService)
	r := router.Setup(validator, nil, handler.NewReconciliationHandler(svc, 1), handler.NewHealthHandler(nil, nil))
	return r, svc
}

func do(r *gin.Engine, method, path string) int {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, http.NoBody)
	req.Header.Set("Authorization", "Bearer token")
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRouter_Liveness(t *testing.T) {
	r, _ := setupRouter(domain.RoleViewer)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", http.NoBody)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ViewerCannotEdit(t *testing.T) {
	r, svc := setupRouter(domain.RoleViewer)
	id := uuid.New().String()

	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/api/v1/reconciliations/"+id+"/run"))
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/api/v1/reconciliations/"+id))
	svc.AssertNotCalled(t, "Run", mock.Anything, mock.Anything)
}

func TestRouter_ViewerCanRead(t *testing.T) {
	r, svc := setupRouter(domain.RoleViewer)
	svc.On("List", mock.Anything, mock.Anything, 0, 20).Return([]domain.ReconciliationSession{}, 0, nil)

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/reconciliations"))
}

func TestRouter_MemberCannotDelete(t *testing.T) {
	r, _ := setupRouter(domain.RoleMember)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodDelete, "/api/v1/reconciliations/"+uuid.New().String()))
}

func TestRouter_RequiresToken(t *testing.T) {
	r, _ := setupRouter(domain.RoleAdmin)
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/v1/reconciliations", http.NoBody)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
