package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/workspace-management-api/internal/constants"
	"github.com/yukikurage/workspace-management-api/internal/models"
	"github.com/yukikurage/workspace-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound             = errors.New("task not found")
	ErrTaskNameRequired         = errors.New("task name is required")
	ErrTaskNameEmpty            = errors.New("task name cannot be empty")
	ErrInvalidTaskStatus        = errors.New("invalid task status")
	ErrProjectWorkspaceMismatch = errors.New("project belongs to a different workspace")
	ErrAssigneeNotMember        = errors.New("assignee is not a member of the workspace")
	ErrAIServiceNotConfigured   = errors.New("AI service is not configured")
	ErrAINoTasksGenerated       = errors.New("AI did not generate any tasks")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo      repository.TaskRepository
	projectRepo   repository.ProjectRepository
	workspaceRepo repository.WorkspaceRepository
	guard         *Guard
	aiService     *AIService
}

// NewTaskService creates a new TaskService
func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository, workspaceRepo repository.WorkspaceRepository, guard *Guard, aiService *AIService) *TaskService {
	return &TaskService{
		taskRepo:      taskRepo,
		projectRepo:   projectRepo,
		workspaceRepo: workspaceRepo,
		guard:         guard,
		aiService:     aiService,
	}
}

// ListTasksInput represents filters for listing tasks. WorkspaceID is
// required; the optional fields narrow the result set conjunctively.
type ListTasksInput struct {
	ActorID         uint64
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

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Name        string
	Description string
	Status      models.TaskStatus
	DueDate     *time.Time
	WorkspaceID uint64
	ProjectID   uint64
	AssigneeID  uint64
	ActorID     uint64
}

// UpdateTaskInput represents input for updating a task. Nil means unchanged.
type UpdateTaskInput struct {
	Name         *string
	Description  *string
	Status       *models.TaskStatus
	DueDate      *time.Time
	ClearDueDate bool
	ProjectID    *uint64
	AssigneeID   *uint64
	Position     *int
}

// ListTasks returns tasks in a workspace matching the filters. The caller is
// authorized for the workspace before any filter is evaluated, so an
// unauthorized caller never sees even partial results.
func (s *TaskService) ListTasks(input ListTasksInput) ([]models.Task, int64, error) {
	if input.WorkspaceID == 0 {
		return nil, 0, ErrWorkspaceIDRequired
	}

	if _, err := s.guard.Authorize(input.ActorID, input.WorkspaceID, ActionViewWorkspace); err != nil {
		return nil, 0, err
	}

	if input.Status != nil && !input.Status.Valid() {
		return nil, 0, ErrInvalidTaskStatus
	}

	filter := repository.TaskFilter{
		WorkspaceID:     input.WorkspaceID,
		ProjectID:       input.ProjectID,
		AssigneeID:      input.AssigneeID,
		Status:          input.Status,
		DueDate:         input.DueDate,
		DueDateFrom:     input.DueDateFrom,
		DueDateTo:       input.DueDateTo,
		OrderByPosition: input.OrderByPosition,
		Page:            input.Page,
		PageSize:        input.PageSize,
	}

	tasks, total, err := s.taskRepo.List(filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// CreateTask creates a task after verifying the actor's membership, the
// project's workspace, and the assignee's membership. The new task is placed
// after the project's current last position.
func (s *TaskService) CreateTask(input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrTaskNameRequired
	}
	if input.WorkspaceID == 0 {
		return nil, ErrWorkspaceIDRequired
	}

	if _, err := s.guard.Authorize(input.ActorID, input.WorkspaceID, ActionManageTasks); err != nil {
		return nil, err
	}

	project, err := s.projectRepo.FindByID(input.ProjectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}
	if project.WorkspaceID != input.WorkspaceID {
		return nil, ErrProjectWorkspaceMismatch
	}

	if err := s.ensureWorkspaceMember(input.WorkspaceID, input.AssigneeID); err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = models.TaskStatusTodo
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidTaskStatus
	}

	maxPosition, err := s.taskRepo.MaxPositionInProject(input.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to determine task position: %w", err)
	}

	task := &models.Task{
		Name:        input.Name,
		Description: input.Description,
		Status:      input.Status,
		DueDate:     input.DueDate,
		Position:    maxPosition + constants.PositionStep,
		WorkspaceID: input.WorkspaceID,
		ProjectID:   input.ProjectID,
		AssigneeID:  input.AssigneeID,
	}

	if err := s.taskRepo.Create(task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "Project")
}

// GetTask returns a task after deriving its owning workspace and authorizing
// the actor there. A claimed workspace that disagrees with the task's own is
// rejected.
func (s *TaskService) GetTask(actorID, taskID, claimedWorkspaceID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID, "Assignee", "Project")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if err := CheckWorkspace(task.WorkspaceID, claimedWorkspaceID); err != nil {
		return nil, err
	}

	if _, err := s.guard.Authorize(actorID, task.WorkspaceID, ActionViewWorkspace); err != nil {
		return nil, err
	}

	return task, nil
}

// UpdateTask updates a task. Moving a task to another project keeps it inside
// the same workspace; a reassignment keeps the assignee a workspace member.
func (s *TaskService) UpdateTask(actorID, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if _, err := s.guard.Authorize(actorID, task.WorkspaceID, ActionManageTasks); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrTaskNameEmpty
		}
		task.Name = *input.Name
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidTaskStatus
		}
		task.Status = *input.Status
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.ProjectID != nil && *input.ProjectID != task.ProjectID {
		project, err := s.projectRepo.FindByID(*input.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrProjectNotFound
			}
			return nil, fmt.Errorf("failed to find project: %w", err)
		}
		if project.WorkspaceID != task.WorkspaceID {
			return nil, ErrProjectWorkspaceMismatch
		}
		task.ProjectID = *input.ProjectID
	}
	if input.AssigneeID != nil && *input.AssigneeID != task.AssigneeID {
		if err := s.ensureWorkspaceMember(task.WorkspaceID, *input.AssigneeID); err != nil {
			return nil, err
		}
		task.AssigneeID = *input.AssigneeID
	}
	if input.Position != nil {
		task.Position = *input.Position
	}

	if err := s.taskRepo.Update(task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(task.ID, "Assignee", "Project")
}

// DeleteTask deletes a task.
func (s *TaskService) DeleteTask(actorID, taskID uint64) error {
	task, err := s.taskRepo.FindByID(taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to find task: %w", err)
	}

	if _, err := s.guard.Authorize(actorID, task.WorkspaceID, ActionManageTasks); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// DraftTasksInput represents input for AI task drafting
type DraftTasksInput struct {
	Text        string
	WorkspaceID uint64
	ActorID     uint64
}

// DraftTasks uses AI to propose tasks from a text brief. Nothing is
// persisted; the caller reviews the drafts and creates tasks explicitly.
func (s *TaskService) DraftTasks(ctx context.Context, input DraftTasksInput) ([]DraftedTask, error) {
	if input.WorkspaceID == 0 {
		return nil, ErrWorkspaceIDRequired
	}

	if _, err := s.guard.Authorize(input.ActorID, input.WorkspaceID, ActionManageTasks); err != nil {
		return nil, err
	}

	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}

	drafts, err := s.aiService.DraftTasksFromText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to draft tasks: %w", err)
	}

	valid := make([]DraftedTask, 0, len(drafts))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, draft := range drafts {
		if strings.TrimSpace(draft.Name) == "" {
			continue
		}
		if draft.DueDate != nil && draft.DueDate.Before(cutoff) {
			draft.DueDate = nil
		}
		valid = append(valid, draft)
	}

	if len(valid) == 0 {
		return nil, ErrAINoTasksGenerated
	}

	return valid, nil
}

// ensureWorkspaceMember verifies that a user belongs to a workspace
func (s *TaskService) ensureWorkspaceMember(workspaceID, userID uint64) error {
	_, err := s.workspaceRepo.FindMember(workspaceID, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAssigneeNotMember
		}
		return fmt.Errorf("failed to verify workspace membership: %w", err)
	}
	return nil
}
