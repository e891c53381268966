package handler

import (
	"net/http"

	"hrm/internal/middleware"
	"hrm/internal/model"
	"hrm/internal/service"
	"hrm/pkg/pagination"
	"hrm/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/audit-logs", middleware.RequireRole(model.RoleAdmin), h.ListLogs)
}

// ListLogs returns audit entries, newest first, optionally filtered by action
func (h *AuditHandler) ListLogs(c *gin.Context) {
	page := pagination.Parse(c)

	logs, total, err := h.auditService.ListLogs(c.Request.Context(), c.Query("action"), page.Page, page.Limit)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, logs, total, page.Page, page.Limit))
}
