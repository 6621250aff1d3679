package models

import (
	"time"

	"github.com/yukikurage/levelup-todo-api/internal/gamification"
)

// EarnedAchievement records that a user unlocked a catalog achievement. The
// unique (user_id, kind) index keeps awards idempotent.
type EarnedAchievement struct {
	ID        uint64                       `gorm:"primarykey" json:"id"`
	UserID    uint64                       `gorm:"not null;uniqueIndex:idx_earned_user_kind,priority:1" json:"user_id"`
	Kind      gamification.AchievementKind `gorm:"type:varchar(50);not null;uniqueIndex:idx_earned_user_kind,priority:2" json:"kind"`
	Title     string                       `gorm:"type:varchar(100);not null" json:"title"`
	Icon      string                       `gorm:"type:varchar(16)" json:"icon"`
	XPBonus   int                          `gorm:"not null" json:"xp_bonus"`
	CoinBonus int                          `gorm:"not null" json:"coin_bonus"`
	EarnedAt  time.Time                    `gorm:"not null" json:"earned_at"`
}
