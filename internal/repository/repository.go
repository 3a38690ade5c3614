package repository

import (
	"context"
	"time"

	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// ExistsByUsernameOrEmail reports whether either identifier is taken
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)

	// Update saves every column of the user
	Update(ctx context.Context, user *models.User) error

	// SetRefreshToken stores token as the user's only refresh token; nil clears it
	SetRefreshToken(ctx context.Context, userID uint64, token *string) error

	// FindByEmailVerificationToken finds the user holding the hashed verification token
	FindByEmailVerificationToken(ctx context.Context, hash string) (*models.User, error)

	// FindByForgotPasswordToken finds the user holding the hashed reset token
	FindByForgotPasswordToken(ctx context.Context, hash string) (*models.User, error)

	// ClearExpiredTokens removes one-time token hashes that expired before now
	ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// CreateWithAdmin creates a project and its creator's admin membership
	// within a single transaction.
	CreateWithAdmin(ctx context.Context, project *models.Project) error

	// FindByID finds a project by ID
	FindByID(ctx context.Context, id uint64) (*models.Project, error)

	// Update updates a project's columns
	Update(ctx context.Context, project *models.Project) error

	// Delete soft deletes a project
	Delete(ctx context.Context, id uint64) error
}

// ProjectSummary is a project as seen by one of its members
type ProjectSummary struct {
	ProjectID   uint64
	Name        string
	Description string
	CreatedByID uint64
	CreatedAt   time.Time
	Role        models.ProjectRole
	MemberCount int64
}

// MembershipRepository defines the interface for project membership data access
type MembershipRepository interface {
	// ListForUser lists the projects a user belongs to with their member counts
	ListForUser(ctx context.Context, userID uint64) ([]ProjectSummary, error)

	// ListForProject lists the members of a project with their users
	ListForProject(ctx context.Context, projectID uint64) ([]models.ProjectMember, error)

	// Find finds the membership of a user in a project
	Find(ctx context.Context, projectID, userID uint64) (*models.ProjectMember, error)

	// Upsert inserts the membership or updates its role if the pair exists
	Upsert(ctx context.Context, member *models.ProjectMember) error

	// UpdateRole changes the role of an existing membership
	UpdateRole(ctx context.Context, projectID, userID uint64, role models.ProjectRole) error

	// Remove deletes a single membership
	Remove(ctx context.Context, projectID, userID uint64) error

	// DeleteAllForProject deletes every membership of a project
	DeleteAllForProject(ctx context.Context, projectID uint64) (int64, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task with its attachments
	Create(ctx context.Context, task *models.Task) error

	// FindInProject finds a task by ID scoped to a project, with optional preloading
	FindInProject(ctx context.Context, projectID, id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update updates a task; when replaceAttachments is set the stored
	// attachments are replaced by task.Attachments
	Update(ctx context.Context, task *models.Task, replaceAttachments bool) error

	// Delete soft deletes a task together with its subtasks and attachments
	Delete(ctx context.Context, id uint64) error
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	ProjectID    uint64
	Status       string
	AssignedToID *uint64
	Pagination   utils.PaginationParams
}

// SubTaskRepository defines the interface for subtask data access
type SubTaskRepository interface {
	// Create creates a new subtask
	Create(ctx context.Context, subTask *models.SubTask) error

	// FindInTask finds a subtask by ID scoped to its parent task
	FindInTask(ctx context.Context, taskID, id uint64) (*models.SubTask, error)

	// ListForTask lists the subtasks of a task
	ListForTask(ctx context.Context, taskID uint64) ([]models.SubTask, error)

	// Update updates a subtask
	Update(ctx context.Context, subTask *models.SubTask) error

	// Delete soft deletes a subtask
	Delete(ctx context.Context, id uint64) error
}
