package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"notes-service/internal/auth"
	"notes-service/internal/middleware"
	"notes-service/internal/scope"
	"notes-service/internal/store"
	"notes-service/pkg/logger"
	"notes-service/prometheus"
)

// TenantHandler serves tenant administration.
type TenantHandler struct {
	filter *scope.Filter
}

// NewTenantHandler creates a tenant handler with its collaborators.
func NewTenantHandler(filter *scope.Filter) *TenantHandler {
	return &TenantHandler{filter: filter}
}

// UpgradePlan upgrades the tenant addressed by slug to the pro plan. The
// route is mounted behind RequireRole(admin); the isolation filter
// additionally verifies the slug belongs to the caller's own tenant.
func (h *TenantHandler) UpgradePlan(c echo.Context) error {
	log := logger.FromContext(c)
	principal := middleware.GetPrincipal(c)
	slug := c.Param("slug")

	defer prometheus.TrackDBOperation("update")(time.Now())
	tenant, err := h.filter.UpgradePlan(c.Request().Context(), principal, slug)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrForbidden):
			log.Warn("Upgrade denied for tenant slug",
				zap.String("slug", slug),
				zap.Uint("caller_tenant_id", principal.TenantID))
			prometheus.RecordAuthError("tenant_access_denied")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied to this tenant"})
		case errors.Is(err, store.ErrAlreadyPro):
			log.Info("Tenant already on pro plan", zap.String("slug", slug))
			return c.JSON(http.StatusBadRequest, echo.Map{
				"error": "Tenant is already on Pro plan",
				"code":  "ALREADY_PRO",
			})
		default:
			log.Error("Failed to upgrade tenant", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to upgrade tenant"})
		}
	}

	prometheus.PlanUpgradeCounter.Inc()
	log.Info("Tenant upgraded to pro plan",
		zap.Uint("tenant_id", tenant.ID),
		zap.String("slug", tenant.Slug))

	return c.JSON(http.StatusOK, echo.Map{
		"message": "Tenant successfully upgraded to Pro plan",
		"tenant": map[string]interface{}{
			"id":   tenant.ID,
			"name": tenant.Name,
			"slug": tenant.Slug,
			"plan": tenant.Plan,
		},
	})
}
