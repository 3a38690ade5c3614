package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/constants"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/utils"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrInvalidTaskStatus      = errors.New("invalid task status")
	ErrAssigneeNotMember      = errors.New("assignee is not a member of the project")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskGenerator extracts task suggestions from free text.
type TaskGenerator interface {
	GenerateTasksFromText(ctx context.Context, text string) ([]GeneratedTask, error)
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo       repository.TaskRepository
	subTaskRepo    repository.SubTaskRepository
	membershipRepo repository.MembershipRepository
	generator      TaskGenerator
}

// NewTaskService creates a new TaskService. generator may be nil, in which
// case task generation reports ErrAIServiceNotConfigured.
func NewTaskService(taskRepo repository.TaskRepository, subTaskRepo repository.SubTaskRepository, membershipRepo repository.MembershipRepository, generator TaskGenerator) *TaskService {
	return &TaskService{
		taskRepo:       taskRepo,
		subTaskRepo:    subTaskRepo,
		membershipRepo: membershipRepo,
		generator:      generator,
	}
}

// ListTasksInput represents filters for listing tasks of a project
type ListTasksInput struct {
	ProjectID    uint64
	Status       string
	AssignedToID *uint64
	Pagination   utils.PaginationParams
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	ProjectID   uint64
	Title       string
	Description string
	Status      models.TaskStatus
	AssignedTo  *uint64
	AssignedBy  uint64
	Attachments []models.TaskAttachment
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *models.TaskStatus
	AssignedTo  *uint64
	Attachments *[]models.TaskAttachment
}

// ListTasks returns the tasks of a project
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	if input.Status != "" && !models.TaskStatus(input.Status).Valid() {
		return nil, 0, ErrInvalidTaskStatus
	}

	tasks, total, err := s.taskRepo.List(ctx, repository.TaskFilter{
		ProjectID:    input.ProjectID,
		Status:       input.Status,
		AssignedToID: input.AssignedToID,
		Pagination:   input.Pagination,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task of a project with its assignee, attachments and subtasks
func (s *TaskService) GetTask(ctx context.Context, projectID, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindInProject(ctx, projectID, taskID, "AssignedTo", "Attachments")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	task.SubTasks, err = s.subTaskRepo.ListForTask(ctx, task.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list subtasks: %w", err)
	}

	return task, nil
}

// CreateTask creates a new task. The assignee defaults to the creator and
// must be a member of the project.
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusToDo
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}

	assigneeID := input.AssignedBy
	if input.AssignedTo != nil {
		assigneeID = *input.AssignedTo
	}
	if err := s.ensureProjectMember(ctx, input.ProjectID, assigneeID); err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:        title,
		Description:  strings.TrimSpace(input.Description),
		ProjectID:    input.ProjectID,
		AssignedToID: assigneeID,
		AssignedByID: input.AssignedBy,
		Status:       input.Status,
		Attachments:  input.Attachments,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.GetTask(ctx, input.ProjectID, task.ID)
}

// UpdateTask updates an existing task of a project
func (s *TaskService) UpdateTask(ctx context.Context, projectID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindInProject(ctx, projectID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = strings.TrimSpace(*input.Description)
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.AssignedTo != nil {
		if err := s.ensureProjectMember(ctx, projectID, *input.AssignedTo); err != nil {
			return nil, err
		}
		task.AssignedToID = *input.AssignedTo
	}

	replaceAttachments := input.Attachments != nil
	if replaceAttachments {
		task.Attachments = *input.Attachments
	}

	if err := s.taskRepo.Update(ctx, task, replaceAttachments); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.GetTask(ctx, projectID, task.ID)
}

// DeleteTask deletes a task of a project with its subtasks and attachments
func (s *TaskService) DeleteTask(ctx context.Context, projectID, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindInProject(ctx, projectID, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}

	return task, nil
}

// GenerateTasks uses AI to suggest tasks from text. Nothing is persisted.
func (s *TaskService) GenerateTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.generator.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		aiTasks = aiTasks[:constants.MaxAIGeneratedTasks]
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	for _, aiTask := range aiTasks {
		aiTask.Title = strings.TrimSpace(aiTask.Title)
		if aiTask.Title == "" {
			continue
		}
		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

// ensureProjectMember verifies that a user belongs to a project
func (s *TaskService) ensureProjectMember(ctx context.Context, projectID, userID uint64) error {
	if _, err := s.membershipRepo.Find(ctx, projectID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotMember
		}
		return fmt.Errorf("failed to verify project membership: %w", err)
	}
	return nil
}
