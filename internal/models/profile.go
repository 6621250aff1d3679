package models

import (
	"time"

	"github.com/yukikurage/levelup-todo-api/internal/gamification"
)

// Profile holds the materialized gamification balances for a user. XP and coins
// only change through reward events; level is kept equal to LevelForXP(XP).
type Profile struct {
	ID               uint64     `gorm:"primarykey" json:"id"`
	UserID           uint64     `gorm:"uniqueIndex;not null" json:"user_id"`
	Username         string     `gorm:"type:varchar(50)" json:"username"`
	Level            int        `gorm:"not null;default:1" json:"level"`
	XP               int        `gorm:"not null;default:0" json:"xp"`
	Coins            int        `gorm:"not null;default:0" json:"coins"`
	StreakCount      int        `gorm:"not null;default:0" json:"streak_count"`
	LastActivityDate *time.Time `json:"last_activity_date"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// LevelInSync reports whether the stored level matches the level derived from XP.
func (p *Profile) LevelInSync() bool {
	return p.Level == gamification.LevelForXP(p.XP)
}
