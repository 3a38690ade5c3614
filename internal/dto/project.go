package dto

import (
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
)

// ProjectDTO represents a project in API responses
type ProjectDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   uint64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProjectWithRoleDTO is a project as listed for one of its members
type ProjectWithRoleDTO struct {
	Project ProjectSummaryDTO  `json:"project"`
	Role    models.ProjectRole `json:"role"`
}

// ProjectSummaryDTO is a project with its member count
type ProjectSummaryDTO struct {
	ID          uint64    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedBy   uint64    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	Members     int64     `json:"members"`
}

// ProjectMemberDTO represents a member in a project
type ProjectMemberDTO struct {
	User     UserSummaryDTO     `json:"user"`
	Role     models.ProjectRole `json:"role"`
	JoinedAt time.Time          `json:"joined_at"`
}

type CreateProjectRequest struct {
	Name        string `json:"name" form:"name" binding:"required,max=255"`
	Description string `json:"description" form:"description"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name" form:"name" binding:"required,max=255"`
	Description string `json:"description" form:"description"`
}

type AddMemberRequest struct {
	Email string `json:"email" form:"email" binding:"required,email"`
	Role  string `json:"role" form:"role" binding:"required"`
}

type UpdateMemberRoleRequest struct {
	Role string `json:"role" form:"role" binding:"required"`
}

// ToProjectDTO converts a Project model to ProjectDTO
func ToProjectDTO(project models.Project) ProjectDTO {
	return ProjectDTO{
		ID:          project.ID,
		Name:        project.Name,
		Description: project.Description,
		CreatedBy:   project.CreatedByID,
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ToProjectWithRoleDTO converts a membership summary to DTO with role
func ToProjectWithRoleDTO(summary repository.ProjectSummary) ProjectWithRoleDTO {
	return ProjectWithRoleDTO{
		Project: ProjectSummaryDTO{
			ID:          summary.ProjectID,
			Name:        summary.Name,
			Description: summary.Description,
			CreatedBy:   summary.CreatedByID,
			CreatedAt:   summary.CreatedAt,
			Members:     summary.MemberCount,
		},
		Role: summary.Role,
	}
}

// ToProjectMemberDTO converts a member to DTO
func ToProjectMemberDTO(member models.ProjectMember) ProjectMemberDTO {
	return ProjectMemberDTO{
		User:     ToUserSummaryDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.CreatedAt,
	}
}
