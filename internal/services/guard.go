package services

import (
	"errors"
	"fmt"

	"github.com/yukikurage/workspace-management-api/internal/models"
	"github.com/yukikurage/workspace-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrNotWorkspaceMember = errors.New("user is not a member of the workspace")
	ErrInsufficientRole   = errors.New("member role does not permit this action")
	ErrWorkspaceMismatch  = errors.New("resource does not belong to the given workspace")
)

// Guard is the single authorization choke point. Every workspace-scoped
// service operation derives the owning workspace from its input or target
// resource and calls Authorize before touching any repository.
type Guard struct {
	workspaceRepo repository.WorkspaceRepository
}

// NewGuard creates a new Guard.
func NewGuard(workspaceRepo repository.WorkspaceRepository) *Guard {
	return &Guard{
		workspaceRepo: workspaceRepo,
	}
}

// Authorize resolves the caller's membership in the workspace and checks the
// role policy for the action. The membership lookup always runs; a
// client-declared role is never trusted. Absence of a membership is
// ErrNotWorkspaceMember, a membership whose role does not cover the action is
// ErrInsufficientRole.
func (g *Guard) Authorize(userID, workspaceID uint64, action Action) (*models.Member, error) {
	member, err := g.workspaceRepo.FindMember(workspaceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotWorkspaceMember
		}
		return nil, fmt.Errorf("failed to resolve membership: %w", err)
	}

	if !Permits(member.Role, action) {
		return nil, ErrInsufficientRole
	}

	return member, nil
}

// CheckWorkspace rejects a request whose claimed workspace does not match the
// workspace the resource actually belongs to. A zero claim means the request
// carried no workspace ID and only the resource's own workspace applies.
func CheckWorkspace(resourceWorkspaceID, claimedWorkspaceID uint64) error {
	if claimedWorkspaceID != 0 && claimedWorkspaceID != resourceWorkspaceID {
		return ErrWorkspaceMismatch
	}
	return nil
}
