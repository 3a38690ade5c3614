package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yukikurage/project-management-api/internal/dto"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/utils"
	"github.com/yukikurage/project-management-api/internal/validator"
)

type TaskHandler struct {
	taskService    *services.TaskService
	subTaskService *services.SubTaskService
}

func NewTaskHandler(taskService *services.TaskService, subTaskService *services.SubTaskService) *TaskHandler {
	return &TaskHandler{
		taskService:    taskService,
		subTaskService: subTaskService,
	}
}

// ListTasks returns the tasks of the project, optionally filtered by status
// and assignee
func (h *TaskHandler) ListTasks(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)

	var assignedTo *uint64
	if raw := c.Query("assigned_to"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			apierrors.Abort(c, apierrors.BadRequest("Invalid assigned_to"))
			return
		}
		assignedTo = &id
	}

	params := utils.PaginationFromQuery(c)
	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), services.ListTasksInput{
		ProjectID:    projectID,
		Status:       c.Query("status"),
		AssignedToID: assignedTo,
		Pagination:   params,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	taskDTOs := make([]dto.TaskDTO, len(tasks))
	for i, task := range tasks {
		taskDTOs[i] = dto.ToTaskDTO(task)
	}

	respond(c, http.StatusOK, "Tasks fetched successfully", dto.TaskListResponse{
		Tasks: taskDTOs,
		Pagination: params.Response(total),
	})
}

// GetTask returns a task with its assignee, attachments and subtasks
func (h *TaskHandler) GetTask(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.Abort(c, apierrors.NotFound("Task not found"))
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), projectID, task.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task fetched successfully", dto.ToTaskDTO(*task))
}

// CreateTask creates a new task in the project
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	projectID, _ := middleware.GetProjectID(c)

	var req dto.CreateTaskRequest
	if err := validator.Bind(c, &req); err != nil {
		apierrors.Abort(c, err)
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		ProjectID:   projectID,
		Title:       req.Title,
		Description: req.Description,
		Status:      models.TaskStatus(req.Status),
		AssignedTo:  req.AssignedTo,
		AssignedBy:  userID,
		Attachments: dto.ToAttachments(req.Attachments),
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Task created successfully", dto.ToTaskDTO(*task))
}

// UpdateTask updates the fields present in the request
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.Abort(c, apierrors.NotFound("Task not found"))
		return
	}

	var req dto.UpdateTaskRequest
	if err := validator.Bind(c, &req); err != nil {
		apierrors.Abort(c, err)
		return
	}

	input := services.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
	}
	if req.Status != nil {
		status := models.TaskStatus(*req.Status)
		input.Status = &status
	}
	if req.Attachments != nil {
		attachments := dto.ToAttachments(*req.Attachments)
		input.Attachments = &attachments
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), projectID, task.ID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task updated successfully", dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task with its subtasks and attachments
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	projectID, _ := middleware.GetProjectID(c)
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.Abort(c, apierrors.NotFound("Task not found"))
		return
	}

	deleted, err := h.taskService.DeleteTask(c.Request.Context(), projectID, task.ID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respond(c, http.StatusOK, "Task deleted successfully", dto.ToTaskDTO(*deleted))
}

// GenerateTasks suggests tasks extracted from free text using AI. The
// suggestions are returned, not saved.
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	var req dto.GenerateTasksRequest
	if err := validator.Bind(c, &req); err != nil {
		apierrors.Abort(c, err)
		return
	}

	tasks, err := h.taskService.GenerateTasks(c.Request.Context(), req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respond(c, http.StatusOK, "Tasks generated successfully", gin.H{"tasks": tasks})
}

// CreateSubTask adds a subtask to the task
func (h *TaskHandler) CreateSubTask(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.Abort(c, apierrors.NotFound("Task not found"))
		return
	}

	var req dto.CreateSubTaskRequest
	if err := validator.Bind(c, &req); err != nil {
		apierrors.Abort(c, err)
		return
	}

	subTask, err := h.subTaskService.CreateSubTask(c.Request.Context(), services.CreateSubTaskInput{
		TaskID:      task.ID,
		Title:       req.Title,
		Description: req.Description,
		CreatedBy:   userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respond(c, http.StatusCreated, "Subtask created successfully", dto.ToSubTaskDTO(*subTask))
}

// UpdateSubTask updates a subtask of the task
func (h *TaskHandler) UpdateSubTask(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.Abort(c, apierrors.NotFound("Task not found"))
		return
	}
	subTaskID, ok := pathID(c, "subtaskId", "subtask")
	if !ok {
		return
	}

	var req dto.UpdateSubTaskRequest
	if err := validator.Bind(c, &req); err != nil {
		apierrors.Abort(c, err)
		return
	}

	subTask, err := h.subTaskService.UpdateSubTask(c.Request.Context(), task.ID, subTaskID, services.UpdateSubTaskInput{
		Title:       req.Title,
		Description: req.Description,
		IsCompleted: req.IsCompleted,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respond(c, http.StatusOK, "Subtask updated successfully", dto.ToSubTaskDTO(*subTask))
}

// DeleteSubTask deletes a subtask of the task
func (h *TaskHandler) DeleteSubTask(c *gin.Context) {
	task, exists := middleware.GetTask(c)
	if !exists {
		apierrors.Abort(c, apierrors.NotFound("Task not found"))
		return
	}
	subTaskID, ok := pathID(c, "subtaskId", "subtask")
	if !ok {
		return
	}

	subTask, err := h.subTaskService.DeleteSubTask(c.Request.Context(), task.ID, subTaskID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	respond(c, http.StatusOK, "Subtask deleted successfully", dto.ToSubTaskDTO(*subTask))
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.Abort(c, apierrors.NotFound("Task not found"))
	case errors.Is(err, services.ErrSubTaskNotFound):
		apierrors.Abort(c, apierrors.NotFound("Subtask not found"))
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrAssigneeNotMember):
		apierrors.Abort(c, apierrors.BadRequest(err.Error()))
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.Abort(c, apierrors.ServiceUnavailable("AI service is not configured"))
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.Abort(c, apierrors.New(http.StatusUnprocessableEntity, err.Error()))
	default:
		apierrors.Abort(c, err)
	}
}
