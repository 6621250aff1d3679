package dto

import (
	"time"

	"github.com/yukikurage/levelup-todo-api/internal/models"
)

// VisionDTO represents a vision plan in API responses
type VisionDTO struct {
	ID                 uint64    `json:"id"`
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	TimelineYears      int       `json:"timeline_years"`
	TargetDate         time.Time `json:"target_date"`
	Category           string    `json:"category"`
	ProgressPercentage int       `json:"progress_percentage"`
	Milestones         []string  `json:"milestones"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func ToVisionDTO(plan models.VisionPlan) VisionDTO {
	milestones := []string(plan.Milestones)
	if milestones == nil {
		milestones = []string{}
	}

	return VisionDTO{
		ID:                 plan.ID,
		Title:              plan.Title,
		Description:        plan.Description,
		TimelineYears:      plan.TimelineYears,
		TargetDate:         plan.TargetDate,
		Category:           plan.Category,
		ProgressPercentage: plan.ProgressPercentage,
		Milestones:         milestones,
		CreatedAt:          plan.CreatedAt,
		UpdatedAt:          plan.UpdatedAt,
	}
}
