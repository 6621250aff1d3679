package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"gorm.io/gorm"
)

type RewardSource string

const (
	RewardSourceTaskCompletion   RewardSource = "task_completion"
	RewardSourceAchievementBonus RewardSource = "achievement_bonus"
)

// RewardEvent is an append-only ledger entry. Summing a user's events yields the
// XP and coin balances stored on the profile.
type RewardEvent struct {
	ID              uuid.UUID                     `gorm:"type:varchar(36);primaryKey" json:"id"`
	UserID          uint64                        `gorm:"not null;index" json:"user_id"`
	Source          RewardSource                  `gorm:"type:varchar(30);not null" json:"source"`
	TaskID          *uint64                       `gorm:"index" json:"task_id,omitempty"`
	AchievementKind *gamification.AchievementKind `gorm:"type:varchar(50)" json:"achievement_kind,omitempty"`
	OnTime          bool                          `gorm:"not null;default:false" json:"on_time"`
	XP              int                           `gorm:"not null" json:"xp"`
	Coins           int                           `gorm:"not null" json:"coins"`
	CreatedAt       time.Time                     `gorm:"index" json:"created_at"`
}

func (e *RewardEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func (e *RewardEvent) Reward() gamification.Reward {
	return gamification.Reward{XP: e.XP, Coins: e.Coins}
}
