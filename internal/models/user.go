package models

import (
	"time"

	"gorm.io/gorm"
)

// DefaultAvatarURL is assigned to users that register without an avatar.
const DefaultAvatarURL = "https://placehold.co/200x200"

type Avatar struct {
	URL       string `gorm:"type:varchar(512)" json:"url"`
	LocalPath string `gorm:"type:varchar(512)" json:"local_path"`
}

type User struct {
	ID              uint64 `gorm:"primarykey" json:"id"`
	Username        string `gorm:"type:varchar(100);uniqueIndex;not null" json:"username"`
	Email           string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FullName        string `gorm:"type:varchar(255)" json:"full_name"`
	Avatar          Avatar `gorm:"embedded;embeddedPrefix:avatar_" json:"avatar"`
	PasswordHash    string `gorm:"type:varchar(255);not null" json:"-"`
	IsEmailVerified bool   `gorm:"not null;default:false" json:"is_email_verified"`

	RefreshToken                 *string    `gorm:"type:varchar(512)" json:"-"`
	EmailVerificationToken       *string    `gorm:"type:varchar(64);index" json:"-"`
	EmailVerificationTokenExpiry *time.Time `json:"-"`
	ForgotPasswordToken          *string    `gorm:"type:varchar(64);index" json:"-"`
	ForgotPasswordTokenExpiry    *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Memberships []ProjectMember `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate fills in the placeholder avatar.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.Avatar.URL == "" {
		u.Avatar.URL = DefaultAvatarURL
	}
	return nil
}
