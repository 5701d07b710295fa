package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/workspace-management-api/internal/constants"
	"github.com/yukikurage/workspace-management-api/internal/models"
	"github.com/yukikurage/workspace-management-api/internal/repository"
	"github.com/yukikurage/workspace-management-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrWorkspaceNotFound          = errors.New("workspace not found")
	ErrInvalidWorkspaceName       = errors.New("workspace name cannot be empty")
	ErrInviteCodeGenerationFailed = errors.New("failed to generate invite code")
	ErrInvalidInviteCode          = errors.New("invalid invite code")
	ErrCannotRemoveYourself       = errors.New("admins cannot remove themselves from the workspace")
	ErrCannotChangeOwnRole        = errors.New("cannot change your own role")
	ErrWorkspaceMemberNotFound    = errors.New("workspace member not found")
	ErrInvalidMemberRole          = errors.New("invalid member role")
)

// WorkspaceService provides business logic for workspace and membership operations.
type WorkspaceService struct {
	workspaceRepo repository.WorkspaceRepository
	guard         *Guard
}

// NewWorkspaceService creates a new WorkspaceService.
func NewWorkspaceService(workspaceRepo repository.WorkspaceRepository, guard *Guard) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		guard:         guard,
	}
}

// CreateWorkspaceInput represents parameters to create a new workspace.
type CreateWorkspaceInput struct {
	Name     string
	ImageURL string
	OwnerID  uint64
}

// CreateWorkspace creates a workspace and its creator's admin membership in
// one transaction, so a workspace can never exist without an admin.
func (s *WorkspaceService) CreateWorkspace(input CreateWorkspaceInput) (*models.Workspace, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidWorkspaceName
	}

	inviteCode, err := utils.GenerateInviteCode(constants.InviteCodeLength)
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	workspace := &models.Workspace{
		Name:       input.Name,
		ImageURL:   input.ImageURL,
		InviteCode: inviteCode,
		OwnerID:    input.OwnerID,
	}

	owner := &models.Member{
		UserID:   input.OwnerID,
		Role:     models.RoleAdmin,
		JoinedAt: time.Now(),
	}

	if err := s.workspaceRepo.CreateWithOwner(workspace, owner); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}

	return workspace, nil
}

// ListWorkspaces returns the workspaces the user belongs to, newest first,
// together with the user's role in each. A user with no memberships gets an
// empty list without a workspace query: an empty ID set must not widen into
// an unfiltered listing.
func (s *WorkspaceService) ListWorkspaces(userID uint64) ([]models.Workspace, map[uint64]models.MemberRole, error) {
	memberships, err := s.workspaceRepo.ListMembersByUserID(userID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list memberships: %w", err)
	}

	if len(memberships) == 0 {
		return []models.Workspace{}, map[uint64]models.MemberRole{}, nil
	}

	ids := make([]uint64, 0, len(memberships))
	roles := make(map[uint64]models.MemberRole, len(memberships))
	for _, m := range memberships {
		ids = append(ids, m.WorkspaceID)
		roles[m.WorkspaceID] = m.Role
	}

	workspaces, err := s.workspaceRepo.ListByIDs(ids)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list workspaces: %w", err)
	}

	return workspaces, roles, nil
}

// GetWorkspace returns a workspace with its members for a caller who belongs to it.
func (s *WorkspaceService) GetWorkspace(userID, workspaceID uint64) (*models.Workspace, []models.Member, *models.Member, error) {
	member, err := s.guard.Authorize(userID, workspaceID, ActionViewWorkspace)
	if err != nil {
		return nil, nil, nil, err
	}

	workspace, err := s.workspaceRepo.FindByID(workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, nil, ErrWorkspaceNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	members, err := s.workspaceRepo.ListMembers(workspaceID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to list workspace members: %w", err)
	}

	return workspace, members, member, nil
}

// UpdateWorkspaceInput holds the updatable workspace fields. Nil means unchanged.
type UpdateWorkspaceInput struct {
	Name     *string
	ImageURL *string
}

// UpdateWorkspace updates a workspace's name or image. Admin only.
func (s *WorkspaceService) UpdateWorkspace(userID, workspaceID uint64, input UpdateWorkspaceInput) (*models.Workspace, error) {
	if _, err := s.guard.Authorize(userID, workspaceID, ActionUpdateWorkspace); err != nil {
		return nil, err
	}

	workspace, err := s.workspaceRepo.FindByID(workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidWorkspaceName
		}
		workspace.Name = *input.Name
	}
	if input.ImageURL != nil {
		workspace.ImageURL = *input.ImageURL
	}

	if err := s.workspaceRepo.Update(workspace); err != nil {
		return nil, fmt.Errorf("failed to update workspace: %w", err)
	}

	return workspace, nil
}

// DeleteWorkspace removes a workspace and everything it owns. Admin only.
func (s *WorkspaceService) DeleteWorkspace(userID, workspaceID uint64) error {
	if _, err := s.guard.Authorize(userID, workspaceID, ActionDeleteWorkspace); err != nil {
		return err
	}

	if _, err := s.workspaceRepo.FindByID(workspaceID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceNotFound
		}
		return fmt.Errorf("failed to find workspace: %w", err)
	}

	if err := s.workspaceRepo.Delete(workspaceID); err != nil {
		return fmt.Errorf("failed to delete workspace: %w", err)
	}

	return nil
}

// Join redeems an invite code for a workspace. Joining a workspace the user
// already belongs to returns the existing membership unchanged; the invite
// code must match the workspace's current code exactly.
func (s *WorkspaceService) Join(userID, workspaceID uint64, inviteCode string) (*models.Member, error) {
	workspace, err := s.workspaceRepo.FindByID(workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	if workspace.InviteCode != inviteCode {
		return nil, ErrInvalidInviteCode
	}

	if member, err := s.workspaceRepo.FindMember(workspaceID, userID); err == nil {
		return member, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to verify membership: %w", err)
	}

	member := &models.Member{
		WorkspaceID: workspaceID,
		UserID:      userID,
		Role:        models.RoleMember,
		JoinedAt:    time.Now(),
	}

	// AddMember ignores a duplicate-key conflict, so a concurrent join that
	// won the race leaves exactly one membership; the fetch below returns it
	// either way.
	if err := s.workspaceRepo.AddMember(member); err != nil {
		return nil, fmt.Errorf("failed to add member to workspace: %w", err)
	}

	created, err := s.workspaceRepo.FindMember(workspaceID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load membership: %w", err)
	}

	return created, nil
}

// RegenerateInviteCode replaces the workspace's invite code. Admin only. The
// old code is dead as soon as the update commits; there is no grace period.
func (s *WorkspaceService) RegenerateInviteCode(userID, workspaceID uint64) (*models.Workspace, error) {
	if _, err := s.guard.Authorize(userID, workspaceID, ActionRotateInviteCode); err != nil {
		return nil, err
	}

	workspace, err := s.workspaceRepo.FindByID(workspaceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkspaceNotFound
		}
		return nil, fmt.Errorf("failed to find workspace: %w", err)
	}

	code, err := utils.GenerateInviteCode(constants.InviteCodeLength)
	if err != nil {
		return nil, ErrInviteCodeGenerationFailed
	}

	workspace.InviteCode = code
	if err := s.workspaceRepo.Update(workspace); err != nil {
		return nil, fmt.Errorf("failed to update invite code: %w", err)
	}

	return workspace, nil
}

// ListMembers returns the workspace's members for a caller who belongs to it.
func (s *WorkspaceService) ListMembers(userID, workspaceID uint64) ([]models.Member, error) {
	if _, err := s.guard.Authorize(userID, workspaceID, ActionViewWorkspace); err != nil {
		return nil, err
	}

	members, err := s.workspaceRepo.ListMembers(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace members: %w", err)
	}

	return members, nil
}

// RemoveMember removes a member from the workspace. A member may remove
// themselves (leave); removing anyone else requires the admin role. An admin
// cannot remove themselves, which keeps at least one admin in the workspace.
func (s *WorkspaceService) RemoveMember(workspaceID, actorID, targetID uint64) error {
	actor, err := s.guard.Authorize(actorID, workspaceID, ActionViewWorkspace)
	if err != nil {
		return err
	}

	if targetID == actorID {
		if actor.Role == models.RoleAdmin {
			return ErrCannotRemoveYourself
		}
	} else if !Permits(actor.Role, ActionRemoveMember) {
		return ErrInsufficientRole
	}

	if _, err := s.workspaceRepo.FindMember(workspaceID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceMemberNotFound
		}
		return fmt.Errorf("failed to find workspace member: %w", err)
	}

	if err := s.workspaceRepo.RemoveMember(workspaceID, targetID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}

	return nil
}

// ChangeMemberRole changes another member's role. Admin only; changing your
// own role is rejected.
func (s *WorkspaceService) ChangeMemberRole(workspaceID, actorID, targetID uint64, role models.MemberRole) error {
	if role != models.RoleAdmin && role != models.RoleMember {
		return ErrInvalidMemberRole
	}

	if _, err := s.guard.Authorize(actorID, workspaceID, ActionChangeMemberRole); err != nil {
		return err
	}

	if targetID == actorID {
		return ErrCannotChangeOwnRole
	}

	if _, err := s.workspaceRepo.FindMember(workspaceID, targetID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrWorkspaceMemberNotFound
		}
		return fmt.Errorf("failed to find workspace member: %w", err)
	}

	if err := s.workspaceRepo.UpdateMemberRole(workspaceID, targetID, role); err != nil {
		return fmt.Errorf("failed to change member role: %w", err)
	}

	return nil
}
