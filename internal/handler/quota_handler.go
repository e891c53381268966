package handler

import (
	"net/http"
	"strconv"

	"hrm/internal/middleware"
	"hrm/internal/model"
	"hrm/internal/service"
	"hrm/pkg/response"

	"github.com/gin-gonic/gin"
)

type QuotaHandler struct {
	quotaService service.QuotaService
}

func NewQuotaHandler(quotaService service.QuotaService) *QuotaHandler {
	return &QuotaHandler{quotaService: quotaService}
}

func (h *QuotaHandler) RegisterRoutes(router *gin.RouterGroup) {
	quotas := router.Group("/api/quotas")
	{
		quotas.GET("", middleware.RequireAuth(), h.GetQuota)
		quotas.GET("/history", middleware.RequireAuth(), h.ListQuotas)
		quotas.PUT("", middleware.RequireRole(model.RoleAdmin), h.UpsertQuota)
		quotas.POST("/bulk", middleware.RequireRole(model.RoleAdmin), h.BulkUpsertQuota)
	}
}

// GetQuota returns one employee's allowance for (year, month); unprovisioned
// periods come back with configured=false and 0 allowed days.
func (h *QuotaHandler) GetQuota(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "missing actor identity"))
		return
	}

	employeeID := c.DefaultQuery("employee_id", actor.ID.String())
	year, _ := strconv.Atoi(c.Query("year"))
	month, _ := strconv.Atoi(c.Query("month"))

	// Staff may only read their own ledger
	if c.GetString("employeeRole") == model.RoleStaff && employeeID != actor.ID.String() {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "staff may only read their own quota"))
		return
	}

	result, err := h.quotaService.GetQuota(c.Request.Context(), employeeID, year, month)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ListQuotas returns an employee's provisioned ledger rows, optionally for one year
func (h *QuotaHandler) ListQuotas(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "missing actor identity"))
		return
	}

	employeeID := c.DefaultQuery("employee_id", actor.ID.String())
	year, _ := strconv.Atoi(c.Query("year"))

	if c.GetString("employeeRole") == model.RoleStaff && employeeID != actor.ID.String() {
		c.JSON(http.StatusForbidden, response.Error(http.StatusForbidden, "staff may only read their own quota"))
		return
	}

	result, err := h.quotaService.ListQuotas(c.Request.Context(), employeeID, year)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// UpsertQuota creates or overwrites one employee's monthly allowance
func (h *QuotaHandler) UpsertQuota(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "missing actor identity"))
		return
	}

	var req service.UpsertQuotaDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.quotaService.UpsertQuota(c.Request.Context(), actor.ID, req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// BulkUpsertQuota applies one allowance across all employees or one department.
// Partial failure is an expected outcome: the response lists every row that
// could not be written alongside the count that was.
func (h *QuotaHandler) BulkUpsertQuota(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "missing actor identity"))
		return
	}

	var req service.BulkUpsertQuotaDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.quotaService.BulkUpsertQuota(c.Request.Context(), actor.ID, req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
