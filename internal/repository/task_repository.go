package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/models"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task with its attachments
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).
		Omit("Project", "AssignedTo", "AssignedBy", "SubTasks").
		Create(task).Error
}

// FindInProject finds a task by ID scoped to a project, with optional preloading
func (r *GormTaskRepository) FindInProject(ctx context.Context, projectID, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.Where("project_id = ?", projectID).First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("tasks.project_id = ?", filter.ProjectID).
		Scopes(database.WhereIfSet("tasks.status", filter.Status))

	if filter.AssignedToID != nil {
		query = query.Where("tasks.assigned_to_id = ?", *filter.AssignedToID)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC").Order("tasks.id DESC")
	if filter.Pagination.Limit > 0 {
		listQuery = listQuery.Scopes(database.Paginate(filter.Pagination))
	}

	if err := listQuery.Preload("AssignedTo").Preload("Attachments").Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task, replaceAttachments bool) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(task).Omit(clause.Associations).Updates(map[string]interface{}{
			"title":          task.Title,
			"description":    task.Description,
			"assigned_to_id": task.AssignedToID,
			"status":         task.Status,
		})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		if !replaceAttachments {
			return nil
		}

		if err := tx.Where("task_id = ?", task.ID).Delete(&models.TaskAttachment{}).Error; err != nil {
			return err
		}
		if len(task.Attachments) == 0 {
			return nil
		}
		for i := range task.Attachments {
			task.Attachments[i].ID = 0
			task.Attachments[i].TaskID = task.ID
		}
		return tx.Create(&task.Attachments).Error
	})
}

// Delete soft deletes a task together with its subtasks and attachments
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.SubTask{}).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.TaskAttachment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Task{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
