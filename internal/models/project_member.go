package models

import "time"

type ProjectRole string

const (
	RoleAdmin        ProjectRole = "admin"
	RoleProjectAdmin ProjectRole = "project_admin"
	RoleMember       ProjectRole = "member"
)

// AvailableRoles lists every role a membership may hold.
var AvailableRoles = []ProjectRole{RoleAdmin, RoleProjectAdmin, RoleMember}

// Valid reports whether r is one of AvailableRoles.
func (r ProjectRole) Valid() bool {
	for _, role := range AvailableRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ProjectMember is the role a user holds within a project. The composite
// primary key allows at most one row per (project, user).
type ProjectMember struct {
	ProjectID uint64      `gorm:"primarykey;autoIncrement:false" json:"project_id"`
	UserID    uint64      `gorm:"primarykey;autoIncrement:false;index" json:"user_id"`
	Role      ProjectRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`

	// Relations
	Project Project `gorm:"foreignKey:ProjectID" json:"-"`
	User    User    `gorm:"foreignKey:UserID" json:"-"`
}
