package database

import (
	"fmt"
	"log"

	"gorm.io/gorm"
)

// compositeIndexes are the query paths that the single-column tags don't cover.
var compositeIndexes = []struct {
	table   string
	name    string
	columns string
}{
	// Owner-scoped listing and the completed-task count
	{"tasks", "idx_tasks_user_completed", "user_id, completed"},
	// Calendar view
	{"tasks", "idx_tasks_user_due_date", "user_id, due_date"},
	// Analytics ranges
	{"tasks", "idx_tasks_user_created_at", "user_id, created_at"},
	// Ledger history
	{"reward_events", "idx_reward_events_user_created_at", "user_id, created_at"},
	{"vision_plans", "idx_vision_plans_user_created_at", "user_id, created_at"},
}

// AddIndexes creates the composite indexes that are missing.
func AddIndexes(db *gorm.DB) error {
	migrator := db.Migrator()

	for _, idx := range compositeIndexes {
		if migrator.HasIndex(idx.table, idx.name) {
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
