package models

import "time"

type MemberRole string

const (
	RoleAdmin  MemberRole = "ADMIN"
	RoleMember MemberRole = "MEMBER"
)

// Member links a user to a workspace. The composite primary key makes the
// (workspace, user) pair unique at the storage level, so a concurrent join
// cannot create a duplicate membership.
type Member struct {
	WorkspaceID uint64     `gorm:"primarykey" json:"workspace_id"`
	UserID      uint64     `gorm:"primarykey" json:"user_id"`
	Role        MemberRole `gorm:"type:varchar(20);not null" json:"role"`
	JoinedAt    time.Time  `json:"joined_at"`

	// Relations
	Workspace Workspace `gorm:"foreignKey:WorkspaceID" json:"workspace,omitempty"`
	User      User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
