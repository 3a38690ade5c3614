package models

import (
	"time"

	"gorm.io/gorm"
)

type SubTask struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Title       string         `gorm:"type:varchar(255);not null" json:"title"`
	Description string         `gorm:"type:text" json:"description"`
	TaskID      uint64         `gorm:"not null;index" json:"task_id"`
	IsCompleted bool           `gorm:"not null;default:false" json:"is_completed"`
	CreatedByID uint64         `gorm:"not null" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Task      Task `gorm:"foreignKey:TaskID" json:"-"`
	CreatedBy User `gorm:"foreignKey:CreatedByID" json:"-"`
}
