package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// AddIndexes adds performance-critical indexes to the database
func AddIndexes(db *gorm.DB) error {
	indexes := []struct {
		table   string
		name    string
		columns string
	}{
		// Task indexes for board loads and uniqueness joins
		{"tasks", "idx_tasks_status_id", "status_id"},
		{"tasks", "idx_tasks_milestone_id", "milestone_id"},
		{"tasks", "idx_tasks_name", "name"},

		// Column and milestone lookups by project
		{"statuses", "idx_statuses_project_id", "project_id"},
		{"milestones", "idx_milestones_project_id", "project_id"},

		// Membership lookups
		{"project_members", "idx_project_members_project_id", "project_id"},
		{"project_members", "idx_project_members_user_id", "user_id"},

		// Assignment and dependency fan-out
		{"task_assignments", "idx_task_assignments_task_id", "task_id"},
		{"task_assignments", "idx_task_assignments_user_id", "user_id"},
		{"task_dependencies", "idx_task_dependencies_dependant_id", "dependant_id"},

		// Lazy expiry purge
		{"invitation_codes", "idx_invitation_codes_expired_at", "expired_at"},
		{"invitation_codes", "idx_invitation_codes_project_id", "project_id"},
	}

	for _, idx := range indexes {
		if db.Migrator().HasIndex(idx.table, idx.name) {
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
