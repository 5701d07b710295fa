package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workspace-management-api/internal/models"
	"github.com/yukikurage/workspace-management-api/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type serviceTestEnv struct {
	db               *gorm.DB
	workspaceRepo    repository.WorkspaceRepository
	projectRepo      repository.ProjectRepository
	taskRepo         repository.TaskRepository
	guard            *Guard
	workspaceService *WorkspaceService
	projectService   *ProjectService
	taskService      *TaskService
}

func setupServiceTestEnv(t *testing.T) serviceTestEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Workspace{},
		&models.Member{},
		&models.Project{},
		&models.Task{},
	)
	require.NoError(t, err)

	workspaceRepo := repository.NewWorkspaceRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	guard := NewGuard(workspaceRepo)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return serviceTestEnv{
		db:               db,
		workspaceRepo:    workspaceRepo,
		projectRepo:      projectRepo,
		taskRepo:         taskRepo,
		guard:            guard,
		workspaceService: NewWorkspaceService(workspaceRepo, guard),
		projectService:   NewProjectService(projectRepo, guard),
		taskService:      NewTaskService(taskRepo, projectRepo, workspaceRepo, guard, nil),
	}
}

func createServiceTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		PasswordHash: "hashed",
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestGuard_Authorize_NonMember(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createServiceTestUser(t, env.db, "owner")
	outsider := createServiceTestUser(t, env.db, "outsider")

	workspace, err := env.workspaceService.CreateWorkspace(CreateWorkspaceInput{
		Name:    "Engineering",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	_, err = env.guard.Authorize(outsider.ID, workspace.ID, ActionViewWorkspace)
	require.ErrorIs(t, err, ErrNotWorkspaceMember)
}

func TestGuard_Authorize_MemberRole(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createServiceTestUser(t, env.db, "owner")
	member := createServiceTestUser(t, env.db, "member")

	workspace, err := env.workspaceService.CreateWorkspace(CreateWorkspaceInput{
		Name:    "Engineering",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	_, err = env.workspaceService.Join(member.ID, workspace.ID, workspace.InviteCode)
	require.NoError(t, err)

	// Viewing and task management are open to members
	resolved, err := env.guard.Authorize(member.ID, workspace.ID, ActionViewWorkspace)
	require.NoError(t, err)
	require.Equal(t, models.RoleMember, resolved.Role)

	_, err = env.guard.Authorize(member.ID, workspace.ID, ActionManageTasks)
	require.NoError(t, err)

	// Privileged actions are not
	_, err = env.guard.Authorize(member.ID, workspace.ID, ActionRotateInviteCode)
	require.ErrorIs(t, err, ErrInsufficientRole)

	_, err = env.guard.Authorize(member.ID, workspace.ID, ActionDeleteWorkspace)
	require.ErrorIs(t, err, ErrInsufficientRole)
}

func TestGuard_Authorize_AdminRole(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createServiceTestUser(t, env.db, "owner")

	workspace, err := env.workspaceService.CreateWorkspace(CreateWorkspaceInput{
		Name:    "Engineering",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	resolved, err := env.guard.Authorize(owner.ID, workspace.ID, ActionDeleteWorkspace)
	require.NoError(t, err)
	require.Equal(t, models.RoleAdmin, resolved.Role)
}

func TestGuard_Authorize_RoleChangeIsVisibleImmediately(t *testing.T) {
	env := setupServiceTestEnv(t)

	owner := createServiceTestUser(t, env.db, "owner")
	member := createServiceTestUser(t, env.db, "member")

	workspace, err := env.workspaceService.CreateWorkspace(CreateWorkspaceInput{
		Name:    "Engineering",
		OwnerID: owner.ID,
	})
	require.NoError(t, err)

	_, err = env.workspaceService.Join(member.ID, workspace.ID, workspace.InviteCode)
	require.NoError(t, err)

	_, err = env.guard.Authorize(member.ID, workspace.ID, ActionRotateInviteCode)
	require.ErrorIs(t, err, ErrInsufficientRole)

	// Promote and re-check: every decision runs a fresh lookup, so the
	// promotion takes effect without any cache invalidation.
	err = env.workspaceService.ChangeMemberRole(workspace.ID, owner.ID, member.ID, models.RoleAdmin)
	require.NoError(t, err)

	_, err = env.guard.Authorize(member.ID, workspace.ID, ActionRotateInviteCode)
	require.NoError(t, err)
}

func TestCheckWorkspace(t *testing.T) {
	require.NoError(t, CheckWorkspace(7, 0))
	require.NoError(t, CheckWorkspace(7, 7))
	require.ErrorIs(t, CheckWorkspace(7, 8), ErrWorkspaceMismatch)
}
