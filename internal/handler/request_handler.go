package handler

import (
	"errors"
	"io"
	"net/http"

	"hrm/internal/middleware"
	"hrm/internal/model"
	"hrm/internal/service"
	"hrm/pkg/pagination"
	"hrm/pkg/response"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requestService service.RequestService
}

func NewRequestHandler(requestService service.RequestService) *RequestHandler {
	return &RequestHandler{requestService: requestService}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	{
		requests.POST("", middleware.RequireAuth(), h.SubmitRequest)
		requests.GET("", middleware.RequireAuth(), h.ListRequests)
		requests.GET("/:id", middleware.RequireAuth(), h.GetRequest)
		requests.PUT("/:id/approve", middleware.RequireRole(model.RoleDepartmentHead, model.RoleDirector), h.ApproveRequest)
		requests.PUT("/:id/reject", middleware.RequireRole(model.RoleDepartmentHead, model.RoleDirector), h.RejectRequest)
		requests.PUT("/:id/cancel", middleware.RequireAuth(), h.CancelRequest)
	}
}

// SubmitRequest creates a new time-off request for the authenticated employee
func (h *RequestHandler) SubmitRequest(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "missing actor identity"))
		return
	}

	var req service.SubmitRequestDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.requestService.Submit(c.Request.Context(), actor.ID, req)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, result))
}

// ListRequests returns requests, optionally filtered by employee, status and kind.
// Staff only see their own submissions; approvers and admins see everything.
func (h *RequestHandler) ListRequests(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "missing actor identity"))
		return
	}

	page := pagination.Parse(c)
	filter := service.ListRequestsFilter{
		EmployeeID: c.Query("employee_id"),
		Status:     c.Query("status"),
		Kind:       c.Query("kind"),
		Page:       page.Page,
		Limit:      page.Limit,
	}

	role := c.GetString("employeeRole")
	if role == model.RoleStaff {
		filter.EmployeeID = actor.ID.String()
	}

	requests, total, err := h.requestService.ListRequests(c.Request.Context(), filter)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.List(http.StatusOK, requests, total, page.Page, page.Limit))
}

// GetRequest returns a single request by id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	result, err := h.requestService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

type decideBody struct {
	Note string `json:"note" binding:"max=500"`
}

// ApproveRequest approves a pending request
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	h.decide(c, service.OutcomeApproved)
}

// RejectRequest rejects a pending request
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	h.decide(c, service.OutcomeRejected)
}

func (h *RequestHandler) decide(c *gin.Context, outcome string) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "missing actor identity"))
		return
	}

	var body decideBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		// Only a missing body is fine (the note is optional); a malformed or
		// over-long note is still a client error.
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, err.Error()))
		return
	}

	result, err := h.requestService.Decide(c.Request.Context(), c.Param("id"), actor, outcome, body.Note)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// CancelRequest cancels the authenticated employee's own pending request
func (h *RequestHandler) CancelRequest(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "missing actor identity"))
		return
	}

	result, err := h.requestService.Cancel(c.Request.Context(), c.Param("id"), actor.ID)
	if err != nil {
		renderError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
