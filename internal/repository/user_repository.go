package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/models"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(ctx context.Context, id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findBy(ctx, "email", email)
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findBy(ctx, "username", username)
}

// ExistsByUsernameOrEmail reports whether either identifier is taken
func (r *GormUserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error
	return count > 0, err
}

// Update saves every column of the user
func (r *GormUserRepository) Update(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Omit("Memberships").Save(user).Error
}

// SetRefreshToken stores token as the user's only refresh token; nil clears it
func (r *GormUserRepository) SetRefreshToken(ctx context.Context, userID uint64, token *string) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Update("refresh_token", token)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindByEmailVerificationToken finds the user holding the hashed verification token
func (r *GormUserRepository) FindByEmailVerificationToken(ctx context.Context, hash string) (*models.User, error) {
	return r.findBy(ctx, "email_verification_token", hash)
}

// FindByForgotPasswordToken finds the user holding the hashed reset token
func (r *GormUserRepository) FindByForgotPasswordToken(ctx context.Context, hash string) (*models.User, error) {
	return r.findBy(ctx, "forgot_password_token", hash)
}

// ClearExpiredTokens removes one-time token hashes that expired before now
func (r *GormUserRepository) ClearExpiredTokens(ctx context.Context, now time.Time) (int64, error) {
	var cleared int64

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.User{}).
			Where("email_verification_token_expiry < ?", now).
			Updates(map[string]interface{}{
				"email_verification_token":        nil,
				"email_verification_token_expiry": nil,
			})
		if result.Error != nil {
			return result.Error
		}
		cleared += result.RowsAffected

		result = tx.Model(&models.User{}).
			Where("forgot_password_token_expiry < ?", now).
			Updates(map[string]interface{}{
				"forgot_password_token":        nil,
				"forgot_password_token_expiry": nil,
			})
		if result.Error != nil {
			return result.Error
		}
		cleared += result.RowsAffected

		return nil
	})

	return cleared, err
}

func (r *GormUserRepository) findBy(ctx context.Context, column, value string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(column+" = ?", value).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}
