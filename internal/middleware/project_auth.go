package middleware

import (
	"errors"
	"slices"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

// RequireProjectRole checks that the current user is a member of the project
// in the path. With no roles any member passes; otherwise the member's role
// must be one of roles.
func RequireProjectRole(memberships repository.MembershipRepository, roles ...models.ProjectRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		projectID, err := strconv.ParseUint(c.Param("projectId"), 10, 64)
		if err != nil {
			apierrors.Abort(c, apierrors.BadRequest("Invalid project ID"))
			return
		}

		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Abort(c, apierrors.Unauthorized(""))
			return
		}

		member, err := memberships.Find(c.Request.Context(), projectID, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.Abort(c, apierrors.Forbidden("You are not a member of this project"))
				return
			}
			apierrors.Abort(c, err)
			return
		}

		if len(roles) > 0 && !slices.Contains(roles, member.Role) {
			apierrors.Abort(c, apierrors.Forbidden("You do not have permission to perform this action"))
			return
		}

		c.Set(constants.ContextKeyProjectID, projectID)
		c.Set(constants.ContextKeyProjectRole, member.Role)
		c.Next()
	}
}

// GetProjectID retrieves the project ID resolved by RequireProjectRole
func GetProjectID(c *gin.Context) (uint64, bool) {
	value, exists := c.Get(constants.ContextKeyProjectID)
	if !exists {
		return 0, false
	}
	projectID, ok := value.(uint64)
	return projectID, ok
}

// GetProjectRole retrieves the caller's role resolved by RequireProjectRole
func GetProjectRole(c *gin.Context) (models.ProjectRole, bool) {
	value, exists := c.Get(constants.ContextKeyProjectRole)
	if !exists {
		return "", false
	}
	role, ok := value.(models.ProjectRole)
	return role, ok
}
