package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workspace-management-api/internal/dto"
	apierrors "github.com/yukikurage/workspace-management-api/internal/errors"
	"github.com/yukikurage/workspace-management-api/internal/middleware"
	"github.com/yukikurage/workspace-management-api/internal/services"
)

// ProjectHandler coordinates project HTTP handlers.
type ProjectHandler struct {
	projectService *services.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
	}
}

// CreateProject creates a project in a workspace the caller belongs to.
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateProjectRequest struct {
		Name        string `json:"name" binding:"required"`
		ImageURL    string `json:"image_url"`
		WorkspaceID uint64 `json:"workspace_id" binding:"required"`
	}

	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.CreateProject(services.CreateProjectInput{
		Name:        req.Name,
		ImageURL:    req.ImageURL,
		WorkspaceID: req.WorkspaceID,
		ActorID:     userID,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project))
}

// ListProjects returns the projects of the workspace given in the query.
func (h *ProjectHandler) ListProjects(c *gin.Context) {
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

	projects, err := h.projectService.ListProjects(userID, workspaceID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"projects": dto.ToProjectDTOs(projects),
	})
}

// GetProject returns a project the caller can access.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	userID, projectID, claimedWorkspaceID, ok := projectRequestIDs(c)
	if !ok {
		return
	}

	project, err := h.projectService.GetProject(userID, projectID, claimedWorkspaceID)
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// UpdateProject updates a project's name or image.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, projectID, _, ok := projectRequestIDs(c)
	if !ok {
		return
	}

	type UpdateProjectRequest struct {
		Name     *string `json:"name"`
		ImageURL *string `json:"image_url"`
	}

	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	project, err := h.projectService.UpdateProject(userID, projectID, services.UpdateProjectInput{
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project))
}

// DeleteProject deletes a project and its tasks.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, projectID, _, ok := projectRequestIDs(c)
	if !ok {
		return
	}

	if err := h.projectService.DeleteProject(userID, projectID); err != nil {
		respondProjectError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Project deleted successfully",
	})
}

// projectRequestIDs extracts the caller, the project ID, and an optional
// claimed workspace ID from the request.
func projectRequestIDs(c *gin.Context) (userID, projectID, claimedWorkspaceID uint64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, 0, false
	}

	projectID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return 0, 0, 0, false
	}

	if workspaceIDStr := c.Query("workspace_id"); workspaceIDStr != "" {
		claimedWorkspaceID, err = strconv.ParseUint(workspaceIDStr, 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid workspace_id")
			return 0, 0, 0, false
		}
	}

	return userID, projectID, claimedWorkspaceID, true
}

func respondProjectError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotWorkspaceMember):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrInsufficientRole),
		errors.Is(err, services.ErrWorkspaceMismatch):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrWorkspaceIDRequired),
		errors.Is(err, services.ErrInvalidProjectName):
		apierrors.BadRequest(c, err.Error())
	case isTransientError(err):
		apierrors.ServiceUnavailable(c, "Temporarily unable to reach the data store")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
