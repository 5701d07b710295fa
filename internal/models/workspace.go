package models

import (
	"time"

	"gorm.io/gorm"
)

type Workspace struct {
	ID         uint64         `gorm:"primarykey" json:"id"`
	Name       string         `gorm:"type:varchar(255);not null" json:"name"`
	ImageURL   string         `gorm:"type:text" json:"image_url,omitempty"`
	InviteCode string         `gorm:"type:varchar(50);uniqueIndex;not null" json:"invite_code"`
	OwnerID    uint64         `gorm:"not null" json:"owner_id"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relations
	Members  []Member  `gorm:"foreignKey:WorkspaceID" json:"members,omitempty"`
	Projects []Project `gorm:"foreignKey:WorkspaceID" json:"projects,omitempty"`
	Tasks    []Task    `gorm:"foreignKey:WorkspaceID" json:"tasks,omitempty"`
}
