package models

import (
	"time"

	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"gorm.io/gorm"
)

type Task struct {
	ID            uint64                      `gorm:"primarykey" json:"id"`
	UserID        uint64                      `gorm:"not null;index" json:"user_id"`
	Title         string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description   string                      `gorm:"type:text" json:"description"`
	Category      gamification.Category       `gorm:"type:varchar(20);not null;default:'personal'" json:"category"`
	Difficulty    gamification.Difficulty     `gorm:"type:varchar(20);not null;default:'easy'" json:"difficulty"`
	Completed     bool                        `gorm:"not null;default:false;index" json:"completed"`
	CompletedAt   *time.Time                  `json:"completed_at"`
	DueDate       *time.Time                  `gorm:"index" json:"due_date"`
	IsRecurring   bool                        `gorm:"not null;default:false" json:"is_recurring"`
	RecurringType *gamification.RecurringType `gorm:"type:varchar(20)" json:"recurring_type"`
	XPReward      int                         `gorm:"not null" json:"xp_reward"`
	CoinReward    int                         `gorm:"not null" json:"coin_reward"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
	DeletedAt     gorm.DeletedAt              `gorm:"index" json:"-"`

	// Relations
	User User `gorm:"foreignKey:UserID" json:"-"`
}

// ApplyDifficulty sets the difficulty and the rewards that derive from it.
func (t *Task) ApplyDifficulty(d gamification.Difficulty) {
	r := gamification.BaseReward(d)
	t.Difficulty = d
	t.XPReward = r.XP
	t.CoinReward = r.Coins
}
