package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yukikurage/project-management-api/internal/models"
)

// GormMembershipRepository is a GORM implementation of MembershipRepository
type GormMembershipRepository struct {
	db *gorm.DB
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(db *gorm.DB) MembershipRepository {
	return &GormMembershipRepository{db: db}
}

// ListForUser lists the live projects a user belongs to, newest first
func (r *GormMembershipRepository) ListForUser(ctx context.Context, userID uint64) ([]ProjectSummary, error) {
	memberCount := r.db.Model(&models.ProjectMember{}).
		Select("COUNT(*)").
		Where("project_members.project_id = projects.id")

	var summaries []ProjectSummary
	err := r.db.WithContext(ctx).Table("project_members AS pm").
		Select("projects.id AS project_id, projects.name, projects.description, "+
			"projects.created_by_id, projects.created_at, pm.role, (?) AS member_count", memberCount).
		Joins("JOIN projects ON projects.id = pm.project_id AND projects.deleted_at IS NULL").
		Where("pm.user_id = ?", userID).
		Order("projects.created_at DESC").
		Scan(&summaries).Error
	if err != nil {
		return nil, err
	}
	return summaries, nil
}

// ListForProject lists the members of a project with their users
func (r *GormMembershipRepository) ListForProject(ctx context.Context, projectID uint64) ([]models.ProjectMember, error) {
	var members []models.ProjectMember
	if err := r.db.WithContext(ctx).Preload("User").
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&members).Error; err != nil {
		return nil, err
	}
	return members, nil
}

// Find finds the membership of a user in a project
func (r *GormMembershipRepository) Find(ctx context.Context, projectID, userID uint64) (*models.ProjectMember, error) {
	var member models.ProjectMember
	if err := r.db.WithContext(ctx).Where("project_id = ? AND user_id = ?", projectID, userID).
		First(&member).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// Upsert inserts the membership or updates its role if the pair exists
func (r *GormMembershipRepository) Upsert(ctx context.Context, member *models.ProjectMember) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "project_id"}, {Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"role", "updated_at"}),
		}).
		Create(member).Error
}

// UpdateRole changes the role of an existing membership
func (r *GormMembershipRepository) UpdateRole(ctx context.Context, projectID, userID uint64, role models.ProjectRole) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var member models.ProjectMember
		if err := tx.Where("project_id = ? AND user_id = ?", projectID, userID).
			First(&member).Error; err != nil {
			return err
		}

		return tx.Model(&member).Update("role", role).Error
	})
}

// Remove deletes a single membership
func (r *GormMembershipRepository) Remove(ctx context.Context, projectID, userID uint64) error {
	result := r.db.WithContext(ctx).Where("project_id = ? AND user_id = ?", projectID, userID).
		Delete(&models.ProjectMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteAllForProject deletes every membership of a project
func (r *GormMembershipRepository) DeleteAllForProject(ctx context.Context, projectID uint64) (int64, error) {
	result := r.db.WithContext(ctx).Where("project_id = ?", projectID).
		Delete(&models.ProjectMember{})
	return result.RowsAffected, result.Error
}
