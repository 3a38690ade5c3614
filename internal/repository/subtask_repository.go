package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/project-management-api/internal/models"
)

// GormSubTaskRepository is a GORM implementation of SubTaskRepository
type GormSubTaskRepository struct {
	db *gorm.DB
}

// NewSubTaskRepository creates a new SubTaskRepository
func NewSubTaskRepository(db *gorm.DB) SubTaskRepository {
	return &GormSubTaskRepository{db: db}
}

// Create creates a new subtask
func (r *GormSubTaskRepository) Create(ctx context.Context, subTask *models.SubTask) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(subTask).Error
}

// FindInTask finds a subtask by ID scoped to its parent task
func (r *GormSubTaskRepository) FindInTask(ctx context.Context, taskID, id uint64) (*models.SubTask, error) {
	var subTask models.SubTask
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).First(&subTask, id).Error; err != nil {
		return nil, err
	}
	return &subTask, nil
}

// ListForTask lists the subtasks of a task, oldest first
func (r *GormSubTaskRepository) ListForTask(ctx context.Context, taskID uint64) ([]models.SubTask, error) {
	var subTasks []models.SubTask
	if err := r.db.WithContext(ctx).Where("task_id = ?", taskID).
		Order("created_at ASC").Order("id ASC").
		Find(&subTasks).Error; err != nil {
		return nil, err
	}
	return subTasks, nil
}

// Update updates a subtask
func (r *GormSubTaskRepository) Update(ctx context.Context, subTask *models.SubTask) error {
	result := r.db.WithContext(ctx).Model(subTask).Omit(clause.Associations).Updates(map[string]interface{}{
		"title":        subTask.Title,
		"description":  subTask.Description,
		"is_completed": subTask.IsCompleted,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete soft deletes a subtask
func (r *GormSubTaskRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.SubTask{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
