package repository

import (
	"time"

	"github.com/yukikurage/workspace-management-api/internal/models"
)

// WorkspaceRepository defines the interface for workspace and membership data access
type WorkspaceRepository interface {
	// CreateWithOwner creates a workspace and its owner's admin membership
	// within a single transaction.
	CreateWithOwner(workspace *models.Workspace, owner *models.Member) error

	// FindByID finds a workspace by ID
	FindByID(id uint64) (*models.Workspace, error)

	// ListByIDs lists workspaces whose ID is in ids, newest first
	ListByIDs(ids []uint64) ([]models.Workspace, error)

	// Update updates a workspace
	Update(workspace *models.Workspace) error

	// Delete deletes a workspace and all related data
	Delete(id uint64) error

	// AddMember adds a member to a workspace. Adding an existing
	// (workspace, user) pair is a no-op.
	AddMember(member *models.Member) error

	// RemoveMember removes a member from a workspace
	RemoveMember(workspaceID, userID uint64) error

	// UpdateMemberRole changes a member's role
	UpdateMemberRole(workspaceID, userID uint64, role models.MemberRole) error

	// FindMember finds a specific workspace member
	FindMember(workspaceID, userID uint64) (*models.Member, error)

	// ListMembersByUserID lists all memberships held by a user
	ListMembersByUserID(userID uint64) ([]models.Member, error)

	// ListMembers lists all members of a workspace
	ListMembers(workspaceID uint64) ([]models.Member, error)
}

// ProjectRepository defines the interface for project data access
type ProjectRepository interface {
	// Create creates a new project
	Create(project *models.Project) error

	// FindByID finds a project by ID
	FindByID(id uint64) (*models.Project, error)

	// ListByWorkspace lists projects in a workspace, newest first
	ListByWorkspace(workspaceID uint64) ([]models.Project, error)

	// Update updates a project
	Update(project *models.Project) error

	// Delete soft deletes a project and its tasks
	Delete(id uint64) error
}

// TaskFilter holds filtering options for listing tasks. WorkspaceID is
// required; each optional field narrows the result set when set.
type TaskFilter struct {
	WorkspaceID     uint64
	ProjectID       *uint64
	AssigneeID      *uint64
	Status          *models.TaskStatus
	DueDate         *time.Time
	DueDateFrom     *time.Time
	DueDateTo       *time.Time
	OrderByPosition bool
	Page            int
	PageSize        int
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(task *models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(filter TaskFilter) ([]models.Task, int64, error)

	// MaxPositionInProject returns the highest position among a project's tasks
	MaxPositionInProject(projectID uint64) (int, error)

	// Update updates a task
	Update(task *models.Task) error

	// Delete soft deletes a task
	Delete(id uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// CreateWithPersonalWorkspace creates a user, their personal workspace,
	// and the admin membership within a single transaction.
	CreateWithPersonalWorkspace(user *models.User, workspace *models.Workspace, member *models.Member) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)
}
