package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/logger"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

var (
	ErrProjectNotFound       = errors.New("project not found")
	ErrInvalidProjectName    = errors.New("project name cannot be empty")
	ErrFailedToCreateProject = errors.New("failed to create project")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo    repository.ProjectRepository
	membershipRepo repository.MembershipRepository
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, membershipRepo repository.MembershipRepository) *ProjectService {
	return &ProjectService{
		projectRepo:    projectRepo,
		membershipRepo: membershipRepo,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	Description string
	CreatorID   uint64
}

// CreateProject creates a project with its creator as admin. Both rows are
// written in one transaction.
func (s *ProjectService) CreateProject(ctx context.Context, input CreateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidProjectName
	}

	project := &models.Project{
		Name:        name,
		Description: strings.TrimSpace(input.Description),
		CreatedByID: input.CreatorID,
	}

	if err := s.projectRepo.CreateWithAdmin(ctx, project); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFailedToCreateProject, err)
	}

	return project, nil
}

// ListProjectsForUser returns the projects the user belongs to with their role.
func (s *ProjectService) ListProjectsForUser(ctx context.Context, userID uint64) ([]repository.ProjectSummary, error) {
	summaries, err := s.membershipRepo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return summaries, nil
}

// GetProject retrieves a project by ID.
func (s *ProjectService) GetProject(ctx context.Context, projectID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	return project, nil
}

// UpdateProjectInput represents the editable fields of a project.
type UpdateProjectInput struct {
	Name        string
	Description string
}

// UpdateProject updates a project's name and description.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrInvalidProjectName
	}

	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	project.Name = name
	project.Description = strings.TrimSpace(input.Description)
	if err := s.projectRepo.Update(ctx, project); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject deletes a project and then its memberships. The membership
// cleanup is not transactional with the delete: a failure there is logged
// and leaves orphan rows behind. Tasks are kept.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID uint64) (*models.Project, error) {
	project, err := s.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.Delete(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to delete project: %w", err)
	}

	if _, err := s.membershipRepo.DeleteAllForProject(ctx, projectID); err != nil {
		logger.FromContext(ctx).Error("Failed to delete project memberships",
			"project_id", projectID,
			"error", err,
		)
	}

	return project, nil
}
