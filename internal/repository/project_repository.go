package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/project-management-api/internal/models"
)

var (
	// ErrCreateProject is returned when inserting the project fails inside the creation transaction.
	ErrCreateProject = errors.New("project repository: create project failed")
	// ErrCreateProjectAdmin is returned when inserting the creator's admin membership fails inside the creation transaction.
	ErrCreateProjectAdmin = errors.New("project repository: create admin membership failed")
)

// GormProjectRepository is a GORM implementation of ProjectRepository
type GormProjectRepository struct {
	db *gorm.DB
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &GormProjectRepository{db: db}
}

// CreateWithAdmin creates the project and the admin membership of
// project.CreatedByID atomically. Nothing is persisted if either insert fails.
func (r *GormProjectRepository) CreateWithAdmin(ctx context.Context, project *models.Project) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(project).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateProject, err)
		}

		member := &models.ProjectMember{
			ProjectID: project.ID,
			UserID:    project.CreatedByID,
			Role:      models.RoleAdmin,
		}
		if err := tx.Omit(clause.Associations).Create(member).Error; err != nil {
			return fmt.Errorf("%w: %v", ErrCreateProjectAdmin, err)
		}

		return nil
	})
}

// FindByID finds a project by ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uint64) (*models.Project, error) {
	var project models.Project
	if err := r.db.WithContext(ctx).First(&project, id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Update updates a project's name and description
func (r *GormProjectRepository) Update(ctx context.Context, project *models.Project) error {
	result := r.db.WithContext(ctx).Model(project).Updates(map[string]interface{}{
		"name":        project.Name,
		"description": project.Description,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft deletes a project. Memberships and tasks are left untouched.
func (r *GormProjectRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.Project{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
