package database

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/logger"
)

type index struct {
	table   string
	name    string
	columns string
}

// Composite indexes backing the list queries. Single-column indexes are
// declared on the models.
var indexes = []index{
	// Task listing filtered by status within a project
	{"tasks", "idx_tasks_project_status", "project_id, status"},
	{"tasks", "idx_tasks_project_created_at", "project_id, created_at"},

	// Members of a project by role
	{"project_members", "idx_project_members_project_role", "project_id, role"},

	// Subtasks of a task
	{"sub_tasks", "idx_sub_tasks_task_completed", "task_id, is_completed"},

	// Expired token sweep
	{"users", "idx_users_verification_expiry", "email_verification_token_expiry"},
	{"users", "idx_users_forgot_password_expiry", "forgot_password_token_expiry"},
}

// EnsureIndexes creates the indexes above when they do not exist yet.
func EnsureIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range indexes {
		if migrator.HasIndex(idx.table, idx.name) {
			logger.Debug("Index already exists, skipping", "index", idx.name)
			continue
		}

		sql := fmt.Sprintf("CREATE INDEX %s ON %s (%s)", idx.name, idx.table, idx.columns)
		if err := db.Exec(sql).Error; err != nil {
			return fmt.Errorf("failed to create index %s: %w", idx.name, err)
		}

		logger.Info("Created index", "index", idx.name, "table", idx.table, "columns", idx.columns)
	}

	return nil
}
