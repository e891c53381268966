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

type EmployeeHandler struct {
	employeeService service.EmployeeService
}

func NewEmployeeHandler(employeeService service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeService: employeeService}
}

func (h *EmployeeHandler) RegisterRoutes(router *gin.RouterGroup) {
	auth := router.Group("/api/auth")
	{
		auth.POST("/login", h.Login)
	}

	employees := router.Group("/api/employees")
	{
		employees.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateEmployee)
		employees.GET("", middleware.RequireRole(model.RoleAdmin, model.RoleDepartmentHead, model.RoleDirector), h.ListEmployees)
		employees.GET("/:id", middleware.RequireAuth(), h.GetEmployee)
	}
}

// Login authenticates an employee and returns a JWT access token
func (h *EmployeeHandler) Login(c *gin.Context) {
	var req service.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.employeeService.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "invalid email or password"))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CreateEmployee registers a new employee account (admin only)
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	actor, _ := actorFromContext(c)

	var req service.CreateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.employeeService.CreateEmployee(c.Request.Context(), &actor.ID, req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListEmployees returns paginated employees
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	page := pagination.Parse(c)

	employees, total, err := h.employeeService.ListEmployees(c.Request.Context(), page.Page, page.Limit)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, employees, total, page.Page, page.Limit))
}

// GetEmployee returns one employee by id
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	result, err := h.employeeService.GetEmployeeByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
