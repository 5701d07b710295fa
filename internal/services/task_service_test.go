package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workspace-management-api/internal/constants"
	"github.com/yukikurage/workspace-management-api/internal/models"
)

type taskTestFixture struct {
	env       serviceTestEnv
	owner     *models.User
	member    *models.User
	workspace *models.Workspace
	project   *models.Project
}

func setupTaskTestFixture(t *testing.T) taskTestFixture {
	t.Helper()

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

	project, err := env.projectService.CreateProject(CreateProjectInput{
		Name:        "Backend",
		WorkspaceID: workspace.ID,
		ActorID:     owner.ID,
	})
	require.NoError(t, err)

	return taskTestFixture{
		env:       env,
		owner:     owner,
		member:    member,
		workspace: workspace,
		project:   project,
	}
}

func (f taskTestFixture) createTask(t *testing.T, name string, status models.TaskStatus, assigneeID uint64) *models.Task {
	t.Helper()

	task, err := f.env.taskService.CreateTask(CreateTaskInput{
		Name:        name,
		Status:      status,
		WorkspaceID: f.workspace.ID,
		ProjectID:   f.project.ID,
		AssigneeID:  assigneeID,
		ActorID:     f.owner.ID,
	})
	require.NoError(t, err)
	return task
}

func TestCreateTask(t *testing.T) {
	f := setupTaskTestFixture(t)

	task, err := f.env.taskService.CreateTask(CreateTaskInput{
		Name:        "Design schema",
		Description: "Tables for tasks and members",
		WorkspaceID: f.workspace.ID,
		ProjectID:   f.project.ID,
		AssigneeID:  f.member.ID,
		ActorID:     f.owner.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusTodo, task.Status)
	require.Equal(t, constants.PositionStep, task.Position)

	// The next task in the project lands one step further
	next := f.createTask(t, "Write migrations", models.TaskStatusBacklog, f.owner.ID)
	require.Equal(t, 2*constants.PositionStep, next.Position)
}

func TestCreateTask_ProjectWorkspaceMismatch(t *testing.T) {
	f := setupTaskTestFixture(t)

	other, err := f.env.workspaceService.CreateWorkspace(CreateWorkspaceInput{
		Name:    "Marketing",
		OwnerID: f.owner.ID,
	})
	require.NoError(t, err)

	_, err = f.env.taskService.CreateTask(CreateTaskInput{
		Name:        "Sneaky task",
		WorkspaceID: other.ID,
		ProjectID:   f.project.ID,
		AssigneeID:  f.owner.ID,
		ActorID:     f.owner.ID,
	})
	require.ErrorIs(t, err, ErrProjectWorkspaceMismatch)
}

func TestCreateTask_AssigneeNotMember(t *testing.T) {
	f := setupTaskTestFixture(t)

	outsider := createServiceTestUser(t, f.env.db, "outsider")

	_, err := f.env.taskService.CreateTask(CreateTaskInput{
		Name:        "Orphan task",
		WorkspaceID: f.workspace.ID,
		ProjectID:   f.project.ID,
		AssigneeID:  outsider.ID,
		ActorID:     f.owner.ID,
	})
	require.ErrorIs(t, err, ErrAssigneeNotMember)
}

func TestCreateTask_InvalidStatus(t *testing.T) {
	f := setupTaskTestFixture(t)

	_, err := f.env.taskService.CreateTask(CreateTaskInput{
		Name:        "Task",
		Status:      "SOMEDAY",
		WorkspaceID: f.workspace.ID,
		ProjectID:   f.project.ID,
		AssigneeID:  f.owner.ID,
		ActorID:     f.owner.ID,
	})
	require.ErrorIs(t, err, ErrInvalidTaskStatus)
}

func TestListTasks_RequiresWorkspaceID(t *testing.T) {
	f := setupTaskTestFixture(t)

	_, _, err := f.env.taskService.ListTasks(ListTasksInput{ActorID: f.owner.ID})
	require.ErrorIs(t, err, ErrWorkspaceIDRequired)
}

func TestListTasks_UnauthorizedBeforeFilters(t *testing.T) {
	f := setupTaskTestFixture(t)

	outsider := createServiceTestUser(t, f.env.db, "outsider")
	badStatus := models.TaskStatus("SOMEDAY")

	// Membership is checked before the filters are even validated
	_, _, err := f.env.taskService.ListTasks(ListTasksInput{
		ActorID:     outsider.ID,
		WorkspaceID: f.workspace.ID,
		Status:      &badStatus,
	})
	require.ErrorIs(t, err, ErrNotWorkspaceMember)
}

func TestListTasks_FilterComposition(t *testing.T) {
	f := setupTaskTestFixture(t)

	f.createTask(t, "Task A", models.TaskStatusTodo, f.owner.ID)
	f.createTask(t, "Task B", models.TaskStatusTodo, f.member.ID)
	f.createTask(t, "Task C", models.TaskStatusDone, f.member.ID)

	all, total, err := f.env.taskService.ListTasks(ListTasksInput{
		ActorID:     f.owner.ID,
		WorkspaceID: f.workspace.ID,
	})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.EqualValues(t, 3, total)

	todo := models.TaskStatusTodo
	byStatus, _, err := f.env.taskService.ListTasks(ListTasksInput{
		ActorID:     f.owner.ID,
		WorkspaceID: f.workspace.ID,
		Status:      &todo,
	})
	require.NoError(t, err)
	require.Len(t, byStatus, 2)

	// Filters narrow conjunctively: status AND assignee
	combined, _, err := f.env.taskService.ListTasks(ListTasksInput{
		ActorID:     f.owner.ID,
		WorkspaceID: f.workspace.ID,
		Status:      &todo,
		AssigneeID:  &f.member.ID,
	})
	require.NoError(t, err)
	require.Len(t, combined, 1)
	require.Equal(t, "Task B", combined[0].Name)
}

func TestListTasks_ScopedToWorkspace(t *testing.T) {
	f := setupTaskTestFixture(t)

	f.createTask(t, "Ours", models.TaskStatusTodo, f.owner.ID)

	other, err := f.env.workspaceService.CreateWorkspace(CreateWorkspaceInput{
		Name:    "Marketing",
		OwnerID: f.owner.ID,
	})
	require.NoError(t, err)
	otherProject, err := f.env.projectService.CreateProject(CreateProjectInput{
		Name:        "Campaigns",
		WorkspaceID: other.ID,
		ActorID:     f.owner.ID,
	})
	require.NoError(t, err)
	_, err = f.env.taskService.CreateTask(CreateTaskInput{
		Name:        "Theirs",
		WorkspaceID: other.ID,
		ProjectID:   otherProject.ID,
		AssigneeID:  f.owner.ID,
		ActorID:     f.owner.ID,
	})
	require.NoError(t, err)

	tasks, _, err := f.env.taskService.ListTasks(ListTasksInput{
		ActorID:     f.owner.ID,
		WorkspaceID: f.workspace.ID,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "Ours", tasks[0].Name)
}

func TestListTasks_DueDateExactMatch(t *testing.T) {
	f := setupTaskTestFixture(t)

	soon := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.env.taskService.CreateTask(CreateTaskInput{
		Name:        "Due soon",
		DueDate:     &soon,
		WorkspaceID: f.workspace.ID,
		ProjectID:   f.project.ID,
		AssigneeID:  f.owner.ID,
		ActorID:     f.owner.ID,
	})
	require.NoError(t, err)
	_, err = f.env.taskService.CreateTask(CreateTaskInput{
		Name:        "Due later",
		DueDate:     &later,
		WorkspaceID: f.workspace.ID,
		ProjectID:   f.project.ID,
		AssigneeID:  f.owner.ID,
		ActorID:     f.owner.ID,
	})
	require.NoError(t, err)
	f.createTask(t, "No deadline", models.TaskStatusTodo, f.owner.ID)

	// Exact match: only the task due at precisely this timestamp
	tasks, _, err := f.env.taskService.ListTasks(ListTasksInput{
		ActorID:     f.owner.ID,
		WorkspaceID: f.workspace.ID,
		DueDate:     &soon,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "Due soon", tasks[0].Name)
}

func TestListTasks_DueDateRange(t *testing.T) {
	f := setupTaskTestFixture(t)

	soon := time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

	_, err := f.env.taskService.CreateTask(CreateTaskInput{
		Name:        "Due soon",
		DueDate:     &soon,
		WorkspaceID: f.workspace.ID,
		ProjectID:   f.project.ID,
		AssigneeID:  f.owner.ID,
		ActorID:     f.owner.ID,
	})
	require.NoError(t, err)
	_, err = f.env.taskService.CreateTask(CreateTaskInput{
		Name:        "Due later",
		DueDate:     &later,
		WorkspaceID: f.workspace.ID,
		ProjectID:   f.project.ID,
		AssigneeID:  f.owner.ID,
		ActorID:     f.owner.ID,
	})
	require.NoError(t, err)

	cutoff := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	tasks, _, err := f.env.taskService.ListTasks(ListTasksInput{
		ActorID:     f.owner.ID,
		WorkspaceID: f.workspace.ID,
		DueDateTo:   &cutoff,
	})
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	require.Equal(t, "Due soon", tasks[0].Name)
}

func TestGetTask_ClaimedWorkspaceMismatch(t *testing.T) {
	f := setupTaskTestFixture(t)

	task := f.createTask(t, "Task", models.TaskStatusTodo, f.owner.ID)

	other, err := f.env.workspaceService.CreateWorkspace(CreateWorkspaceInput{
		Name:    "Marketing",
		OwnerID: f.owner.ID,
	})
	require.NoError(t, err)

	// Claiming the wrong workspace is a mismatch even though the actor
	// belongs to both workspaces
	_, err = f.env.taskService.GetTask(f.owner.ID, task.ID, other.ID)
	require.ErrorIs(t, err, ErrWorkspaceMismatch)

	got, err := f.env.taskService.GetTask(f.owner.ID, task.ID, f.workspace.ID)
	require.NoError(t, err)
	require.Equal(t, task.ID, got.ID)

	got, err = f.env.taskService.GetTask(f.owner.ID, task.ID, 0)
	require.NoError(t, err)
	require.Equal(t, task.ID, got.ID)
}

func TestGetTask_NonMember(t *testing.T) {
	f := setupTaskTestFixture(t)

	task := f.createTask(t, "Task", models.TaskStatusTodo, f.owner.ID)
	outsider := createServiceTestUser(t, f.env.db, "outsider")

	_, err := f.env.taskService.GetTask(outsider.ID, task.ID, 0)
	require.ErrorIs(t, err, ErrNotWorkspaceMember)
}

func TestUpdateTask(t *testing.T) {
	f := setupTaskTestFixture(t)

	task := f.createTask(t, "Task", models.TaskStatusTodo, f.owner.ID)

	done := models.TaskStatusDone
	updated, err := f.env.taskService.UpdateTask(f.member.ID, task.ID, UpdateTaskInput{
		Status:     &done,
		AssigneeID: &f.member.ID,
	})
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusDone, updated.Status)
	require.Equal(t, f.member.ID, updated.AssigneeID)
}

func TestUpdateTask_MoveToOtherWorkspaceProject(t *testing.T) {
	f := setupTaskTestFixture(t)

	task := f.createTask(t, "Task", models.TaskStatusTodo, f.owner.ID)

	other, err := f.env.workspaceService.CreateWorkspace(CreateWorkspaceInput{
		Name:    "Marketing",
		OwnerID: f.owner.ID,
	})
	require.NoError(t, err)
	otherProject, err := f.env.projectService.CreateProject(CreateProjectInput{
		Name:        "Campaigns",
		WorkspaceID: other.ID,
		ActorID:     f.owner.ID,
	})
	require.NoError(t, err)

	_, err = f.env.taskService.UpdateTask(f.owner.ID, task.ID, UpdateTaskInput{
		ProjectID: &otherProject.ID,
	})
	require.ErrorIs(t, err, ErrProjectWorkspaceMismatch)
}

func TestUpdateTask_ClearDueDate(t *testing.T) {
	f := setupTaskTestFixture(t)

	due := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	task, err := f.env.taskService.CreateTask(CreateTaskInput{
		Name:        "Task",
		DueDate:     &due,
		WorkspaceID: f.workspace.ID,
		ProjectID:   f.project.ID,
		AssigneeID:  f.owner.ID,
		ActorID:     f.owner.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, task.DueDate)

	updated, err := f.env.taskService.UpdateTask(f.owner.ID, task.ID, UpdateTaskInput{
		ClearDueDate: true,
	})
	require.NoError(t, err)
	require.Nil(t, updated.DueDate)
}

func TestDeleteTask(t *testing.T) {
	f := setupTaskTestFixture(t)

	task := f.createTask(t, "Task", models.TaskStatusTodo, f.owner.ID)

	outsider := createServiceTestUser(t, f.env.db, "outsider")
	err := f.env.taskService.DeleteTask(outsider.ID, task.ID)
	require.ErrorIs(t, err, ErrNotWorkspaceMember)

	require.NoError(t, f.env.taskService.DeleteTask(f.member.ID, task.ID))

	err = f.env.taskService.DeleteTask(f.member.ID, task.ID)
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestDraftTasks_NotConfigured(t *testing.T) {
	f := setupTaskTestFixture(t)

	_, err := f.env.taskService.DraftTasks(context.Background(), DraftTasksInput{
		Text:        "Plan the launch",
		WorkspaceID: f.workspace.ID,
		ActorID:     f.owner.ID,
	})
	require.ErrorIs(t, err, ErrAIServiceNotConfigured)
}

func TestDraftTasks_GuardRunsFirst(t *testing.T) {
	f := setupTaskTestFixture(t)

	outsider := createServiceTestUser(t, f.env.db, "outsider")

	_, err := f.env.taskService.DraftTasks(context.Background(), DraftTasksInput{
		Text:        "Plan the launch",
		WorkspaceID: f.workspace.ID,
		ActorID:     outsider.ID,
	})
	require.ErrorIs(t, err, ErrNotWorkspaceMember)
}
