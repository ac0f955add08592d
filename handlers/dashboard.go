package handlers

import (
	"net/http"

	"cityportal/services/analytics"
	"cityportal/utils"

	"github.com/gin-gonic/gin"
)

// DashboardHandler serves /api/dashboard.
type DashboardHandler struct {
	Analytics analytics.AnalyticsService
}

func NewDashboardHandler(svc analytics.AnalyticsService) *DashboardHandler {
	return &DashboardHandler{Analytics: svc}
}

// EmployeeDashboardHandler handles GET /api/dashboard/employee.
func (h *DashboardHandler) EmployeeDashboardHandler(c *gin.Context) {
	d, err := h.Analytics.EmployeeDashboard(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// ResidentDashboardHandler handles GET /api/dashboard/resident.
func (h *DashboardHandler) ResidentDashboardHandler(c *gin.Context) {
	d, err := h.Analytics.ResidentDashboard(c.Request.Context(), utils.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// HealthHandler handles GET /health with the last stored health snapshot.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
