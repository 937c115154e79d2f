package router

import (
	"github.com/gin-gonic/gin"

	"gstreco/internal/auth"
	"gstreco/internal/domain"
	"gstreco/internal/handler"
	"gstreco/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	validator auth.TokenValidator,
	allowedOrigins []string,
	reconH *handler.ReconciliationHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(allowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(validator))

	// Viewers read; members and admins edit.
	editors := middleware.RequireRole(domain.RoleAdmin, domain.RoleMember)

	recons := v1.Group("/reconciliations")
	recons.GET("", reconH.List)
	recons.GET("/:id", reconH.GetByID)
	recons.GET("/:id/export/csv", reconH.ExportCSV)
	recons.POST("/:id/export/xlsx", reconH.ExportXLSX)
	recons.GET("/:id/invoices/:invoiceId/candidates", reconH.MergeCandidates)

	recons.POST("", editors, reconH.Create)
	recons.POST("/:id/imports/:source", editors, reconH.Import)
	recons.POST("/:id/run", editors, reconH.Run)
	recons.POST("/:id/overrides", editors, reconH.Override)
	recons.POST("/:id/carry-forward", editors, reconH.CarryForward)
	recons.POST("/:id/merge", editors, reconH.Merge)
	recons.POST("/:id/supplier-links/confirm", editors, reconH.ConfirmSupplierLink)
	recons.POST("/:id/supplier-links/reject", editors, reconH.RejectSupplierLink)
	recons.PUT("/:id/policy", editors, reconH.SetPolicy)
	recons.DELETE("/:id", middleware.RequireRole(domain.RoleAdmin), reconH.Delete)

	v1.GET("/carry-forward/:period", reconH.PendingCarryForward)
	v1.GET("/templates/:source", reconH.Template)

	return r
}
