package handler

import (
	"hrm/internal/apperror"
	"hrm/internal/service"
	"hrm/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// actorFromContext rebuilds the authenticated actor the middleware stashed in
// the gin context. ok is false when the route was wired without auth.
func actorFromContext(c *gin.Context) (service.Actor, bool) {
	rawID, exists := c.Get("employeeID")
	if !exists {
		return service.Actor{}, false
	}
	idStr, _ := rawID.(string)
	id, err := uuid.Parse(idStr)
	if err != nil {
		return service.Actor{}, false
	}

	role := c.GetString("employeeRole")
	return service.Actor{ID: id, Roles: []string{role}}, true
}

// renderError maps a service failure to the HTTP envelope, preserving the
// typed failure code for the client.
func renderError(c *gin.Context, err error) {
	status := apperror.HTTPStatus(err)
	c.JSON(status, response.TypedError(status, string(apperror.CodeOf(err)), err.Error()))
}
