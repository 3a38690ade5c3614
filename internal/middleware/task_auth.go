package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

// RequireTask loads the task in the path. It must run after
// RequireProjectRole; a task of another project is reported as not found.
func RequireTask(tasks repository.TaskRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("taskId"), 10, 64)
		if err != nil {
			apierrors.Abort(c, apierrors.BadRequest("Invalid task ID"))
			return
		}

		projectID, exists := GetProjectID(c)
		if !exists {
			apierrors.Abort(c, apierrors.Forbidden(""))
			return
		}

		task, err := tasks.FindInProject(c.Request.Context(), projectID, taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				apierrors.Abort(c, apierrors.NotFound("Task not found"))
				return
			}
			apierrors.Abort(c, err)
			return
		}

		c.Set(constants.ContextKeyTask, task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTask
func GetTask(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return nil, false
	}
	task, ok := value.(*models.Task)
	return task, ok
}
