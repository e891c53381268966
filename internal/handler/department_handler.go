package handler

import (
	"net/http"

	"hrm/internal/middleware"
	"hrm/internal/model"
	"hrm/internal/service"
	"hrm/pkg/response"

	"github.com/gin-gonic/gin"
)

type DepartmentHandler struct {
	departmentService service.DepartmentService
}

func NewDepartmentHandler(departmentService service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{departmentService: departmentService}
}

func (h *DepartmentHandler) RegisterRoutes(router *gin.RouterGroup) {
	departments := router.Group("/api/departments")
	{
		departments.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateDepartment)
		departments.GET("", middleware.RequireAuth(), h.ListDepartments)
	}
}

// CreateDepartment registers a new department (admin only)
func (h *DepartmentHandler) CreateDepartment(c *gin.Context) {
	var req service.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.departmentService.CreateDepartment(c.Request.Context(), req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListDepartments returns all departments ordered by code
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	result, err := h.departmentService.ListDepartments(c.Request.Context())
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
