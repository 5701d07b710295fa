package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/workspace-management-api/internal/models"
	"github.com/yukikurage/workspace-management-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrInvalidProjectName  = errors.New("project name cannot be empty")
	ErrWorkspaceIDRequired = errors.New("workspace id is required")
)

// ProjectService provides business logic for project operations.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	guard       *Guard
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, guard *Guard) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		guard:       guard,
	}
}

// CreateProjectInput represents parameters to create a new project.
type CreateProjectInput struct {
	Name        string
	ImageURL    string
	WorkspaceID uint64
	ActorID     uint64
}

// CreateProject creates a project inside a workspace the actor belongs to.
func (s *ProjectService) CreateProject(input CreateProjectInput) (*models.Project, error) {
	if input.WorkspaceID == 0 {
		return nil, ErrWorkspaceIDRequired
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, ErrInvalidProjectName
	}

	if _, err := s.guard.Authorize(input.ActorID, input.WorkspaceID, ActionManageProjects); err != nil {
		return nil, err
	}

	project := &models.Project{
		Name:        input.Name,
		ImageURL:    input.ImageURL,
		WorkspaceID: input.WorkspaceID,
	}

	if err := s.projectRepo.Create(project); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

// ListProjects returns the workspace's projects, newest first. The caller is
// authorized before any project row is read.
func (s *ProjectService) ListProjects(actorID, workspaceID uint64) ([]models.Project, error) {
	if workspaceID == 0 {
		return nil, ErrWorkspaceIDRequired
	}

	if _, err := s.guard.Authorize(actorID, workspaceID, ActionViewWorkspace); err != nil {
		return nil, err
	}

	projects, err := s.projectRepo.ListByWorkspace(workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, nil
}

// GetProject returns a project after deriving its owning workspace and
// authorizing the actor there. A claimed workspace that disagrees with the
// project's own is rejected, never silently ignored.
func (s *ProjectService) GetProject(actorID, projectID, claimedWorkspaceID uint64) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if err := CheckWorkspace(project.WorkspaceID, claimedWorkspaceID); err != nil {
		return nil, err
	}

	if _, err := s.guard.Authorize(actorID, project.WorkspaceID, ActionViewWorkspace); err != nil {
		return nil, err
	}

	return project, nil
}

// UpdateProjectInput holds the updatable project fields. Nil means unchanged.
type UpdateProjectInput struct {
	Name     *string
	ImageURL *string
}

// UpdateProject updates a project's name or image.
func (s *ProjectService) UpdateProject(actorID, projectID uint64, input UpdateProjectInput) (*models.Project, error) {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("failed to find project: %w", err)
	}

	if _, err := s.guard.Authorize(actorID, project.WorkspaceID, ActionManageProjects); err != nil {
		return nil, err
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, ErrInvalidProjectName
		}
		project.Name = *input.Name
	}
	if input.ImageURL != nil {
		project.ImageURL = *input.ImageURL
	}

	if err := s.projectRepo.Update(project); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

// DeleteProject deletes a project and its tasks.
func (s *ProjectService) DeleteProject(actorID, projectID uint64) error {
	project, err := s.projectRepo.FindByID(projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("failed to find project: %w", err)
	}

	if _, err := s.guard.Authorize(actorID, project.WorkspaceID, ActionManageProjects); err != nil {
		return err
	}

	if err := s.projectRepo.Delete(projectID); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}
