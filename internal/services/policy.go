package services

import "github.com/yukikurage/workspace-management-api/internal/models"

// Action identifies an operation checked against the role policy.
type Action string

const (
	ActionViewWorkspace    Action = "workspace:view"
	ActionUpdateWorkspace  Action = "workspace:update"
	ActionDeleteWorkspace  Action = "workspace:delete"
	ActionRotateInviteCode Action = "workspace:rotate_invite_code"
	ActionRemoveMember     Action = "member:remove"
	ActionChangeMemberRole Action = "member:change_role"
	ActionManageProjects   Action = "project:manage"
	ActionManageTasks      Action = "task:manage"
)

// rolePermissions is a static table, not a rule engine. Adding a role tier
// means extending this table; callers go through Permits and never branch on
// the role themselves.
var rolePermissions = map[models.MemberRole]map[Action]bool{
	models.RoleAdmin: {
		ActionViewWorkspace:    true,
		ActionUpdateWorkspace:  true,
		ActionDeleteWorkspace:  true,
		ActionRotateInviteCode: true,
		ActionRemoveMember:     true,
		ActionChangeMemberRole: true,
		ActionManageProjects:   true,
		ActionManageTasks:      true,
	},
	models.RoleMember: {
		ActionViewWorkspace:  true,
		ActionManageProjects: true,
		ActionManageTasks:    true,
	},
}

// Permits reports whether a role allows an action.
func Permits(role models.MemberRole, action Action) bool {
	return rolePermissions[role][action]
}
