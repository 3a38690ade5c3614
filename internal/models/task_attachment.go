package models

import "time"

// TaskAttachment is metadata about a file attached to a task. The file itself
// lives outside the database.
type TaskAttachment struct {
	ID        uint64    `gorm:"primarykey" json:"id"`
	TaskID    uint64    `gorm:"not null;index" json:"task_id"`
	URL       string    `gorm:"type:varchar(1024);not null" json:"url"`
	MimeType  string    `gorm:"type:varchar(255)" json:"mimetype"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}
