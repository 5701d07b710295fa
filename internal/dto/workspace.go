package dto

import (
	"time"

	"github.com/yukikurage/workspace-management-api/internal/models"
)

// WorkspaceDTO represents a workspace in API responses
type WorkspaceDTO struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	ImageURL   string `json:"image_url,omitempty"`
	InviteCode string `json:"invite_code,omitempty"`
}

// WorkspaceWithRoleDTO represents a workspace with the caller's role
type WorkspaceWithRoleDTO struct {
	WorkspaceDTO
	Role models.MemberRole `json:"role"`
}

// MemberDTO represents a member in a workspace
type MemberDTO struct {
	User     UserDTO           `json:"user"`
	Role     models.MemberRole `json:"role"`
	JoinedAt time.Time         `json:"joined_at"`
}

// WorkspaceDetailDTO represents detailed workspace information
type WorkspaceDetailDTO struct {
	WorkspaceDTO
	Members  []MemberDTO       `json:"members"`
	YourRole models.MemberRole `json:"your_role"`
}

// ToWorkspaceDTO converts a Workspace model to WorkspaceDTO. The invite code
// is only included where the caller is entitled to see it.
func ToWorkspaceDTO(workspace models.Workspace, includeInviteCode bool) WorkspaceDTO {
	dto := WorkspaceDTO{
		ID:       workspace.ID,
		Name:     workspace.Name,
		ImageURL: workspace.ImageURL,
	}
	if includeInviteCode {
		dto.InviteCode = workspace.InviteCode
	}
	return dto
}

// ToWorkspaceWithRoleDTO converts a workspace and the caller's role to DTO
func ToWorkspaceWithRoleDTO(workspace models.Workspace, role models.MemberRole) WorkspaceWithRoleDTO {
	return WorkspaceWithRoleDTO{
		WorkspaceDTO: ToWorkspaceDTO(workspace, false),
		Role:         role,
	}
}

// ToMemberDTO converts a member to DTO
func ToMemberDTO(member models.Member) MemberDTO {
	return MemberDTO{
		User:     ToUserDTO(member.User),
		Role:     member.Role,
		JoinedAt: member.JoinedAt,
	}
}

// ToWorkspaceDetailDTO converts a workspace with members to detailed DTO.
// The invite code is admin-only; it gates joining, and only admins rotate it.
func ToWorkspaceDetailDTO(workspace models.Workspace, members []models.Member, yourRole models.MemberRole) WorkspaceDetailDTO {
	memberDTOs := make([]MemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = ToMemberDTO(member)
	}

	return WorkspaceDetailDTO{
		WorkspaceDTO: ToWorkspaceDTO(workspace, yourRole == models.RoleAdmin),
		Members:      memberDTOs,
		YourRole:     yourRole,
	}
}
