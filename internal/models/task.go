package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusToDo       TaskStatus = "to_do"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusToDo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	ID           uint64         `gorm:"primarykey" json:"id"`
	Title        string         `gorm:"type:varchar(255);not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	ProjectID    uint64         `gorm:"not null;index" json:"project_id"`
	AssignedToID uint64         `gorm:"not null;index" json:"assigned_to"`
	AssignedByID uint64         `gorm:"not null" json:"assigned_by"`
	Status       TaskStatus     `gorm:"type:varchar(20);not null;default:'to_do'" json:"status"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Project     Project          `gorm:"foreignKey:ProjectID" json:"-"`
	AssignedTo  User             `gorm:"foreignKey:AssignedToID" json:"-"`
	AssignedBy  User             `gorm:"foreignKey:AssignedByID" json:"-"`
	Attachments []TaskAttachment `gorm:"foreignKey:TaskID" json:"attachments"`
	SubTasks    []SubTask        `gorm:"foreignKey:TaskID" json:"-"`
}
