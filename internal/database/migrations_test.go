package database

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/workspace-management-api/internal/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestAddIndexes(t *testing.T) {
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

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, AddIndexes(db))

	require.True(t, db.Migrator().HasIndex(&models.Task{}, "idx_tasks_workspace_id"))
	require.True(t, db.Migrator().HasIndex(&models.Task{}, "idx_tasks_due_date"))
	require.True(t, db.Migrator().HasIndex(&models.Member{}, "idx_members_user_id"))
	require.True(t, db.Migrator().HasIndex(&models.Workspace{}, "idx_workspaces_invite_code"))

	// Running again is a no-op; existing indexes are skipped
	require.NoError(t, AddIndexes(db))
}
