package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ValidTimelineYears are the long-term horizons a vision plan can target.
var ValidTimelineYears = []int{1, 3, 5, 10}

func IsValidTimeline(years int) bool {
	for _, y := range ValidTimelineYears {
		if y == years {
			return true
		}
	}
	return false
}

type VisionPlan struct {
	ID                 uint64                      `gorm:"primarykey" json:"id"`
	UserID             uint64                      `gorm:"not null;index" json:"user_id"`
	Title              string                      `gorm:"type:varchar(255);not null" json:"title"`
	Description        string                      `gorm:"type:text" json:"description"`
	TimelineYears      int                         `gorm:"not null" json:"timeline_years"`
	TargetDate         time.Time                   `gorm:"not null" json:"target_date"`
	Category           string                      `gorm:"type:varchar(50)" json:"category"`
	ProgressPercentage int                         `gorm:"not null;default:0" json:"progress_percentage"`
	Milestones         datatypes.JSONSlice[string] `json:"milestones"`
	CreatedAt          time.Time                   `json:"created_at"`
	UpdatedAt          time.Time                   `json:"updated_at"`
	DeletedAt          gorm.DeletedAt              `gorm:"index" json:"-"`
}
