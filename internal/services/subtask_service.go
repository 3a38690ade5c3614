package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

var ErrSubTaskNotFound = errors.New("subtask not found")

// SubTaskService handles subtask business logic. Callers have already
// checked that the parent task belongs to the project in the request.
type SubTaskService struct {
	subTaskRepo repository.SubTaskRepository
}

// NewSubTaskService creates a new SubTaskService
func NewSubTaskService(subTaskRepo repository.SubTaskRepository) *SubTaskService {
	return &SubTaskService{subTaskRepo: subTaskRepo}
}

// CreateSubTaskInput represents input for creating a subtask
type CreateSubTaskInput struct {
	TaskID      uint64
	Title       string
	Description string
	CreatedBy   uint64
}

// UpdateSubTaskInput represents input for updating a subtask
type UpdateSubTaskInput struct {
	Title       *string
	Description *string
	IsCompleted *bool
}

// CreateSubTask creates a subtask under a task
func (s *SubTaskService) CreateSubTask(ctx context.Context, input CreateSubTaskInput) (*models.SubTask, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	subTask := &models.SubTask{
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		TaskID:      input.TaskID,
		CreatedByID: input.CreatedBy,
	}
	if err := s.subTaskRepo.Create(ctx, subTask); err != nil {
		return nil, fmt.Errorf("failed to create subtask: %w", err)
	}

	return subTask, nil
}

// UpdateSubTask updates a subtask of a task
func (s *SubTaskService) UpdateSubTask(ctx context.Context, taskID, subTaskID uint64, input UpdateSubTaskInput) (*models.SubTask, error) {
	subTask, err := s.findSubTask(ctx, taskID, subTaskID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		subTask.Title = title
	}
	if input.Description != nil {
		subTask.Description = strings.TrimSpace(*input.Description)
	}
	if input.IsCompleted != nil {
		subTask.IsCompleted = *input.IsCompleted
	}

	if err := s.subTaskRepo.Update(ctx, subTask); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubTaskNotFound
		}
		return nil, fmt.Errorf("failed to update subtask: %w", err)
	}

	return subTask, nil
}

// DeleteSubTask deletes a subtask of a task
func (s *SubTaskService) DeleteSubTask(ctx context.Context, taskID, subTaskID uint64) (*models.SubTask, error) {
	subTask, err := s.findSubTask(ctx, taskID, subTaskID)
	if err != nil {
		return nil, err
	}

	if err := s.subTaskRepo.Delete(ctx, subTask.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubTaskNotFound
		}
		return nil, fmt.Errorf("failed to delete subtask: %w", err)
	}

	return subTask, nil
}

func (s *SubTaskService) findSubTask(ctx context.Context, taskID, subTaskID uint64) (*models.SubTask, error) {
	subTask, err := s.subTaskRepo.FindInTask(ctx, taskID, subTaskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubTaskNotFound
		}
		return nil, fmt.Errorf("failed to find subtask: %w", err)
	}
	return subTask, nil
}
