package models

import (
	"time"

	"gorm.io/gorm"
)

// Project belongs to exactly one workspace. WorkspaceID never changes after
// creation; moving a project between workspaces is not supported.
type Project struct {
	ID          uint64         `gorm:"primarykey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	ImageURL    string         `gorm:"type:text" json:"image_url,omitempty"`
	WorkspaceID uint64         `gorm:"not null" json:"workspace_id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	Tasks     []Task    `gorm:"foreignKey:ProjectID" json:"tasks,omitempty"`
}
