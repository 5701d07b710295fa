package database

import (
	"fmt"
	"log"

	"github.com/yukikurage/workspace-management-api/internal/models"
	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database. AutoMigrate
// only creates the indexes declared in model tags; the query-path indexes for
// filter composition and membership lookups are created here. Existence is
// checked through the gorm migrator so the same code runs on every supported
// driver.
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		model   any
		table   string
		name    string
		columns string
	}{
		// Task indexes for filter composition and sorting
		{&models.Task{}, "tasks", "idx_tasks_workspace_id", "workspace_id"},
		{&models.Task{}, "tasks", "idx_tasks_project_id", "project_id"},
		{&models.Task{}, "tasks", "idx_tasks_assignee_id", "assignee_id"},
		{&models.Task{}, "tasks", "idx_tasks_status", "status"},
		{&models.Task{}, "tasks", "idx_tasks_due_date", "due_date"},
		{&models.Task{}, "tasks", "idx_tasks_created_at", "created_at"},
		{&models.Task{}, "tasks", "idx_tasks_position", "position"},

		// Membership lookups run on every guarded request
		{&models.Member{}, "members", "idx_members_workspace_id", "workspace_id"},
		{&models.Member{}, "members", "idx_members_user_id", "user_id"},

		// Project indexes
		{&models.Project{}, "projects", "idx_projects_workspace_id", "workspace_id"},
		{&models.Project{}, "projects", "idx_projects_created_at", "created_at"},

		// Workspace invite code index
		{&models.Workspace{}, "workspaces", "idx_workspaces_invite_code", "invite_code"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.model, idx.name) {
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		log.Printf("Created index %s on %s(%s)", idx.name, idx.table, idx.columns)
	}

	return nil
}
