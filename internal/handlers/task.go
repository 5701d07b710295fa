package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workspace-management-api/internal/dto"
	apierrors "github.com/yukikurage/workspace-management-api/internal/errors"
	"github.com/yukikurage/workspace-management-api/internal/middleware"
	"github.com/yukikurage/workspace-management-api/internal/models"
	"github.com/yukikurage/workspace-management-api/internal/services"
	"github.com/yukikurage/workspace-management-api/internal/utils"
)

// TaskHandler coordinates task HTTP handlers.
type TaskHandler struct {
	taskService *services.TaskService
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns tasks in a workspace, narrowed by the optional query
// filters. workspace_id is required.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	workspaceIDStr := c.Query("workspace_id")
	if workspaceIDStr == "" {
		apierrors.BadRequest(c, "Missing workspace_id")
		return
	}
	workspaceID, err := strconv.ParseUint(workspaceIDStr, 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid workspace_id")
		return
	}

	params := utils.GetPaginationParams(c)

	input := services.ListTasksInput{
		ActorID:         userID,
		WorkspaceID:     workspaceID,
		OrderByPosition: c.Query("order_by") == "position",
		Page:            params.Page,
		PageSize:        params.Limit,
	}

	if projectIDStr := c.Query("project_id"); projectIDStr != "" {
		projectID, err := strconv.ParseUint(projectIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid project_id")
			return
		}
		input.ProjectID = &projectID
	}
	if assigneeIDStr := c.Query("assignee_id"); assigneeIDStr != "" {
		assigneeID, err := strconv.ParseUint(assigneeIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid assignee_id")
			return
		}
		input.AssigneeID = &assigneeID
	}
	if statusStr := c.Query("status"); statusStr != "" {
		status := models.TaskStatus(statusStr)
		input.Status = &status
	}
	if dueDateStr := c.Query("due_date"); dueDateStr != "" {
		dueDate, err := time.Parse(time.RFC3339, dueDateStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_date")
			return
		}
		input.DueDate = &dueDate
	}
	if fromStr := c.Query("due_date_from"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_date_from")
			return
		}
		input.DueDateFrom = &from
	}
	if toStr := c.Query("due_date_to"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			apierrors.BadRequest(c, "Invalid due_date_to")
			return
		}
		input.DueDateTo = &to
	}

	tasks, total, err := h.taskService.ListTasks(input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// CreateTask creates a new task.
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Name        string            `json:"name" binding:"required"`
		Description string            `json:"description"`
		Status      models.TaskStatus `json:"status"`
		DueDate     *time.Time        `json:"due_date"`
		WorkspaceID uint64            `json:"workspace_id" binding:"required"`
		ProjectID   uint64            `json:"project_id" binding:"required"`
		AssigneeID  uint64            `json:"assignee_id" binding:"required"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(services.CreateTaskInput{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
		DueDate:     req.DueDate,
		WorkspaceID: req.WorkspaceID,
		ProjectID:   req.ProjectID,
		AssigneeID:  req.AssigneeID,
		ActorID:     userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// GetTask returns a specific task by ID.
func (h *TaskHandler) GetTask(c *gin.Context) {
	userID, taskID, claimedWorkspaceID, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(userID, taskID, claimedWorkspaceID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// UpdateTask partially updates a task. Only fields present in the request
// body change; an explicit null due_date clears the deadline.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	userID, taskID, _, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	var input services.UpdateTaskInput

	if name, ok := rawReq["name"]; ok {
		if nameStr, ok := name.(string); ok {
			input.Name = &nameStr
		}
	}
	if description, ok := rawReq["description"]; ok {
		if descStr, ok := description.(string); ok {
			input.Description = &descStr
		}
	}
	if status, ok := rawReq["status"]; ok {
		if statusStr, ok := status.(string); ok {
			taskStatus := models.TaskStatus(statusStr)
			input.Status = &taskStatus
		}
	}
	if _, ok := rawReq["due_date"]; ok {
		// due_date was provided (might be null)
		if rawReq["due_date"] == nil {
			input.ClearDueDate = true
		} else if dueDateStr, ok := rawReq["due_date"].(string); ok {
			parsedTime, err := time.Parse(time.RFC3339, dueDateStr)
			if err != nil {
				apierrors.BadRequest(c, "Invalid due_date")
				return
			}
			input.DueDate = &parsedTime
		}
	}
	if projectID, ok := rawReq["project_id"]; ok {
		if projectIDNum, ok := projectID.(float64); ok {
			id := uint64(projectIDNum)
			input.ProjectID = &id
		}
	}
	if assigneeID, ok := rawReq["assignee_id"]; ok {
		if assigneeIDNum, ok := assigneeID.(float64); ok {
			id := uint64(assigneeIDNum)
			input.AssigneeID = &id
		}
	}
	if position, ok := rawReq["position"]; ok {
		if positionNum, ok := position.(float64); ok {
			pos := int(positionNum)
			input.Position = &pos
		}
	}

	task, err := h.taskService.UpdateTask(userID, taskID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// DeleteTask deletes a task.
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	userID, taskID, _, ok := taskRequestIDs(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(userID, taskID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// DraftTasks proposes tasks from a text brief using AI. Nothing is persisted.
func (h *TaskHandler) DraftTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type DraftTasksRequest struct {
		Text        string `json:"text" binding:"required"`
		WorkspaceID uint64 `json:"workspace_id" binding:"required"`
	}

	var req DraftTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	drafts, err := h.taskService.DraftTasks(c.Request.Context(), services.DraftTasksInput{
		Text:        req.Text,
		WorkspaceID: req.WorkspaceID,
		ActorID:     userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": drafts,
	})
}

// taskRequestIDs extracts the caller, the task ID, and an optional claimed
// workspace ID from the request.
func taskRequestIDs(c *gin.Context) (userID, taskID, claimedWorkspaceID uint64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, 0, false
	}

	taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid task ID")
		return 0, 0, 0, false
	}

	if workspaceIDStr := c.Query("workspace_id"); workspaceIDStr != "" {
		claimedWorkspaceID, err = strconv.ParseUint(workspaceIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid workspace_id")
			return 0, 0, 0, false
		}
	}

	return userID, taskID, claimedWorkspaceID, true
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotWorkspaceMember):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrInsufficientRole),
		errors.Is(err, services.ErrWorkspaceMismatch),
		errors.Is(err, services.ErrProjectWorkspaceMismatch):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrWorkspaceIDRequired),
		errors.Is(err, services.ErrTaskNameRequired),
		errors.Is(err, services.ErrTaskNameEmpty),
		errors.Is(err, services.ErrInvalidTaskStatus),
		errors.Is(err, services.ErrAssigneeNotMember):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, err.Error())
	case errors.Is(err, services.ErrAINoTasksGenerated):
		apierrors.BadRequest(c, err.Error())
	case isTransientError(err):
		apierrors.ServiceUnavailable(c, "Temporarily unable to reach the data store")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
