package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/workspace-management-api/internal/dto"
	apierrors "github.com/yukikurage/workspace-management-api/internal/errors"
	"github.com/yukikurage/workspace-management-api/internal/middleware"
	"github.com/yukikurage/workspace-management-api/internal/models"
	"github.com/yukikurage/workspace-management-api/internal/services"
)

// WorkspaceHandler coordinates workspace and membership HTTP handlers.
type WorkspaceHandler struct {
	workspaceService *services.WorkspaceService
}

// NewWorkspaceHandler creates a new WorkspaceHandler.
func NewWorkspaceHandler(workspaceService *services.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{
		workspaceService: workspaceService,
	}
}

// CreateWorkspace creates a new workspace owned by the caller.
func (h *WorkspaceHandler) CreateWorkspace(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateWorkspaceRequest struct {
		Name     string `json:"name" binding:"required"`
		ImageURL string `json:"image_url"`
	}

	var req CreateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workspace, err := h.workspaceService.CreateWorkspace(services.CreateWorkspaceInput{
		Name:     req.Name,
		ImageURL: req.ImageURL,
		OwnerID:  userID,
	})
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToWorkspaceDTO(*workspace, true))
}

// ListWorkspaces returns the workspaces the caller is a member of.
func (h *WorkspaceHandler) ListWorkspaces(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	workspaces, roles, err := h.workspaceService.ListWorkspaces(userID)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	workspaceDTOs := make([]dto.WorkspaceWithRoleDTO, len(workspaces))
	for i, workspace := range workspaces {
		workspaceDTOs[i] = dto.ToWorkspaceWithRoleDTO(workspace, roles[workspace.ID])
	}

	c.JSON(http.StatusOK, gin.H{
		"workspaces": workspaceDTOs,
	})
}

// GetWorkspace returns workspace details including members.
func (h *WorkspaceHandler) GetWorkspace(c *gin.Context) {
	userID, workspaceID, ok := workspaceRequestIDs(c)
	if !ok {
		return
	}

	workspace, members, member, err := h.workspaceService.GetWorkspace(userID, workspaceID)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDetailDTO(*workspace, members, member.Role))
}

// UpdateWorkspace updates a workspace's name or image.
func (h *WorkspaceHandler) UpdateWorkspace(c *gin.Context) {
	userID, workspaceID, ok := workspaceRequestIDs(c)
	if !ok {
		return
	}

	type UpdateWorkspaceRequest struct {
		Name     *string `json:"name"`
		ImageURL *string `json:"image_url"`
	}

	var req UpdateWorkspaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	workspace, err := h.workspaceService.UpdateWorkspace(userID, workspaceID, services.UpdateWorkspaceInput{
		Name:     req.Name,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*workspace, true))
}

// DeleteWorkspace deletes a workspace and everything it owns.
func (h *WorkspaceHandler) DeleteWorkspace(c *gin.Context) {
	userID, workspaceID, ok := workspaceRequestIDs(c)
	if !ok {
		return
	}

	if err := h.workspaceService.DeleteWorkspace(userID, workspaceID); err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Workspace deleted successfully",
	})
}

// JoinWorkspace redeems an invite code for the workspace in the URL.
func (h *WorkspaceHandler) JoinWorkspace(c *gin.Context) {
	userID, workspaceID, ok := workspaceRequestIDs(c)
	if !ok {
		return
	}

	type JoinRequest struct {
		InviteCode string `json:"invite_code" binding:"required"`
	}

	var req JoinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	member, err := h.workspaceService.Join(userID, workspaceID, req.InviteCode)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":      "Successfully joined workspace",
		"workspace_id": member.WorkspaceID,
		"role":         member.Role,
	})
}

// RegenerateInviteCode rotates the workspace's invite code.
func (h *WorkspaceHandler) RegenerateInviteCode(c *gin.Context) {
	userID, workspaceID, ok := workspaceRequestIDs(c)
	if !ok {
		return
	}

	workspace, err := h.workspaceService.RegenerateInviteCode(userID, workspaceID)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToWorkspaceDTO(*workspace, true))
}

// ListMembers returns the workspace's members.
func (h *WorkspaceHandler) ListMembers(c *gin.Context) {
	userID, workspaceID, ok := workspaceRequestIDs(c)
	if !ok {
		return
	}

	members, err := h.workspaceService.ListMembers(userID, workspaceID)
	if err != nil {
		respondWorkspaceError(c, err)
		return
	}

	memberDTOs := make([]dto.MemberDTO, len(members))
	for i, member := range members {
		memberDTOs[i] = dto.ToMemberDTO(member)
	}

	c.JSON(http.StatusOK, gin.H{
		"members": memberDTOs,
	})
}

// RemoveMember removes a member from the workspace.
func (h *WorkspaceHandler) RemoveMember(c *gin.Context) {
	userID, workspaceID, ok := workspaceRequestIDs(c)
	if !ok {
		return
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.workspaceService.RemoveMember(workspaceID, userID, targetID); err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member removed successfully",
	})
}

// ChangeMemberRole changes a member's role.
func (h *WorkspaceHandler) ChangeMemberRole(c *gin.Context) {
	userID, workspaceID, ok := workspaceRequestIDs(c)
	if !ok {
		return
	}

	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	type ChangeRoleRequest struct {
		Role models.MemberRole `json:"role" binding:"required"`
	}

	var req ChangeRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.workspaceService.ChangeMemberRole(workspaceID, userID, targetID, req.Role); err != nil {
		respondWorkspaceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Member role updated successfully",
	})
}

// workspaceRequestIDs extracts the caller and the workspace ID from the
// request, writing the error response itself when either is missing.
func workspaceRequestIDs(c *gin.Context) (userID, workspaceID uint64, ok bool) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, 0, false
	}

	workspaceID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid workspace ID")
		return 0, 0, false
	}

	return userID, workspaceID, true
}

func respondWorkspaceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotWorkspaceMember):
		apierrors.Unauthorized(c, err.Error())
	case errors.Is(err, services.ErrInsufficientRole),
		errors.Is(err, services.ErrInvalidInviteCode),
		errors.Is(err, services.ErrCannotRemoveYourself),
		errors.Is(err, services.ErrCannotChangeOwnRole):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrWorkspaceNotFound),
		errors.Is(err, services.ErrWorkspaceMemberNotFound):
		apierrors.NotFound(c, err.Error())
	case errors.Is(err, services.ErrInvalidWorkspaceName),
		errors.Is(err, services.ErrInvalidMemberRole):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInviteCodeGenerationFailed):
		apierrors.InternalError(c, err.Error())
	case isTransientError(err):
		apierrors.ServiceUnavailable(c, "Temporarily unable to reach the data store")
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
