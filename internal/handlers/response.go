package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
)

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, dto.NewEnvelope(status, message, data))
}

// pathID parses a numeric path parameter. On failure the request is aborted
// with 400 and ok is false.
func pathID(c *gin.Context, name, label string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.Abort(c, apierrors.BadRequest("Invalid "+label+" ID"))
		return 0, false
	}
	return id, true
}
