package handler

import (
	"net/http"
	"time"

	"hrm/internal/middleware"
	"hrm/internal/service"
	"hrm/pkg/daycount"
	"hrm/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboardService service.DashboardService
}

func NewDashboardHandler(dashboardService service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/dashboard", middleware.RequireAuth(), h.GetDashboard)
}

// GetDashboard returns the authenticated employee's current-month summary:
// quota, usage, upcoming requests and warning levels.
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "missing actor identity"))
		return
	}

	var asOf *time.Time
	if raw := c.Query("as_of"); raw != "" {
		parsed, err := time.Parse(daycount.DateFormat, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "as_of must be YYYY-MM-DD"))
			return
		}
		asOf = &parsed
	}

	result, err := h.dashboardService.GetDashboard(c.Request.Context(), actor.ID, asOf)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
