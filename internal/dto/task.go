package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// AttachmentDTO represents attachment metadata in API responses
type AttachmentDTO struct {
	URL      string `json:"url"`
	MimeType string `json:"mimetype"`
	Size     int64  `json:"size"`
}

// SubTaskDTO represents a subtask in API responses
type SubTaskDTO struct {
	ID          uint64    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	TaskID      uint64    `json:"task_id"`
	IsCompleted bool      `json:"is_completed"`
	CreatedBy   uint64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID          uint64            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	ProjectID   uint64            `json:"project_id"`
	AssignedTo  uint64            `json:"assigned_to"`
	AssignedBy  uint64            `json:"assigned_by"`
	Status      models.TaskStatus `json:"status"`
	Attachments []AttachmentDTO   `json:"attachments"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	Assignee    *UserSummaryDTO   `json:"assignee,omitempty"`
	SubTasks    []SubTaskDTO      `json:"subtasks,omitempty"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO                `json:"tasks"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

type AttachmentRequest struct {
	URL      string `json:"url" binding:"required,url"`
	MimeType string `json:"mimetype"`
	Size     int64  `json:"size" binding:"gte=0"`
}

type CreateTaskRequest struct {
	Title       string              `json:"title" form:"title" binding:"required,max=255"`
	Description string              `json:"description" form:"description"`
	AssignedTo  *uint64             `json:"assigned_to" form:"assigned_to"`
	Status      string              `json:"status" form:"status" binding:"omitempty,task_status"`
	Attachments []AttachmentRequest `json:"attachments" binding:"omitempty,dive"`
}

type UpdateTaskRequest struct {
	Title       *string              `json:"title" form:"title" binding:"omitempty,min=1,max=255"`
	Description *string              `json:"description" form:"description"`
	AssignedTo  *uint64              `json:"assigned_to" form:"assigned_to"`
	Status      *string              `json:"status" form:"status" binding:"omitempty,task_status"`
	Attachments *[]AttachmentRequest `json:"attachments" binding:"omitempty,dive"`
}

type GenerateTasksRequest struct {
	Text string `json:"text" binding:"required,max=4000"`
}

type CreateSubTaskRequest struct {
	Title       string `json:"title" form:"title" binding:"required,max=255"`
	Description string `json:"description" form:"description"`
}

type UpdateSubTaskRequest struct {
	Title       *string `json:"title" form:"title" binding:"omitempty,min=1,max=255"`
	Description *string `json:"description" form:"description"`
	IsCompleted *bool   `json:"is_completed" form:"is_completed"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		ProjectID:   task.ProjectID,
		AssignedTo:  task.AssignedToID,
		AssignedBy:  task.AssignedByID,
		Status:      task.Status,
		Attachments: make([]AttachmentDTO, len(task.Attachments)),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}

	for i, attachment := range task.Attachments {
		dto.Attachments[i] = AttachmentDTO{
			URL:      attachment.URL,
			MimeType: attachment.MimeType,
			Size:     attachment.Size,
		}
	}

	// Include assignee if loaded
	if task.AssignedTo.ID != 0 {
		assignee := ToUserSummaryDTO(task.AssignedTo)
		dto.Assignee = &assignee
	}

	if len(task.SubTasks) > 0 {
		dto.SubTasks = make([]SubTaskDTO, len(task.SubTasks))
		for i, subTask := range task.SubTasks {
			dto.SubTasks[i] = ToSubTaskDTO(subTask)
		}
	}

	return dto
}

// ToSubTaskDTO converts a SubTask model to SubTaskDTO
func ToSubTaskDTO(subTask models.SubTask) SubTaskDTO {
	return SubTaskDTO{
		ID:          subTask.ID,
		Title:       subTask.Title,
		Description: subTask.Description,
		TaskID:      subTask.TaskID,
		IsCompleted: subTask.IsCompleted,
		CreatedBy:   subTask.CreatedByID,
		CreatedAt:   subTask.CreatedAt,
		UpdatedAt:   subTask.UpdatedAt,
	}
}

// ToAttachments converts request attachments to models
func ToAttachments(requests []AttachmentRequest) []models.TaskAttachment {
	attachments := make([]models.TaskAttachment, len(requests))
	for i, req := range requests {
		attachments[i] = models.TaskAttachment{
			URL:      req.URL,
			MimeType: req.MimeType,
			Size:     req.Size,
		}
	}
	return attachments
}
