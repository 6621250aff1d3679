package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/repository"
	"github.com/yukikurage/levelup-todo-api/internal/utils"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrVisionNotFound    = errors.New("vision plan not found")
	ErrVisionNotOwned    = errors.New("vision plan belongs to another user")
	ErrInvalidTimeline   = errors.New("timeline_years must be one of 1, 3, 5, 10")
	ErrInvalidProgress   = errors.New("progress_percentage must be between 0 and 100")
	ErrTooManyMilestones = errors.New("too many milestones")
)

const maxMilestones = 50

// VisionService manages long-term vision plans
type VisionService struct {
	visionRepo repository.VisionRepository
	now        func() time.Time
}

// NewVisionService creates a new VisionService
func NewVisionService(visionRepo repository.VisionRepository) *VisionService {
	return &VisionService{
		visionRepo: visionRepo,
		now:        time.Now,
	}
}

// SetClock replaces the time source (used for testing)
func (s *VisionService) SetClock(now func() time.Time) {
	s.now = now
}

type CreateVisionInput struct {
	UserID        uint64
	Title         string
	Description   string
	TimelineYears int
	Category      string
	Milestones    []string
}

type UpdateVisionInput struct {
	Title              *string
	Description        *string
	Category           *string
	ProgressPercentage *int
	Milestones         *[]string
}

func (s *VisionService) ListVisions(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.VisionPlan, int64, error) {
	plans, total, err := s.visionRepo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list vision plans: %w", err)
	}
	return plans, total, nil
}

// GetVision returns a plan owned by userID
func (s *VisionService) GetVision(ctx context.Context, id, userID uint64) (*models.VisionPlan, error) {
	plan, err := s.visionRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVisionNotFound
		}
		return nil, fmt.Errorf("failed to find vision plan: %w", err)
	}

	if plan.UserID != userID {
		return nil, ErrVisionNotOwned
	}

	return plan, nil
}

// CreateVision stores a plan whose target date is the timeline away from now
func (s *VisionService) CreateVision(ctx context.Context, input CreateVisionInput) (*models.VisionPlan, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}
	if !models.IsValidTimeline(input.TimelineYears) {
		return nil, ErrInvalidTimeline
	}

	milestones, err := cleanMilestones(input.Milestones)
	if err != nil {
		return nil, err
	}

	plan := &models.VisionPlan{
		UserID:        input.UserID,
		Title:         title,
		Description:   input.Description,
		TimelineYears: input.TimelineYears,
		TargetDate:    s.now().AddDate(input.TimelineYears, 0, 0),
		Category:      strings.TrimSpace(input.Category),
		Milestones:    milestones,
	}

	if err := s.visionRepo.Create(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to create vision plan: %w", err)
	}

	return plan, nil
}

// UpdateVision applies a partial update to a plan owned by userID
func (s *VisionService) UpdateVision(ctx context.Context, id, userID uint64, input UpdateVisionInput) (*models.VisionPlan, error) {
	plan, err := s.GetVision(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		plan.Title = title
	}
	if input.Description != nil {
		plan.Description = *input.Description
	}
	if input.Category != nil {
		plan.Category = strings.TrimSpace(*input.Category)
	}
	if input.ProgressPercentage != nil {
		p := *input.ProgressPercentage
		if p < 0 || p > 100 {
			return nil, ErrInvalidProgress
		}
		plan.ProgressPercentage = p
	}
	if input.Milestones != nil {
		milestones, err := cleanMilestones(*input.Milestones)
		if err != nil {
			return nil, err
		}
		plan.Milestones = milestones
	}

	if err := s.visionRepo.Update(ctx, plan); err != nil {
		return nil, fmt.Errorf("failed to update vision plan: %w", err)
	}

	return plan, nil
}

// DeleteVision deletes a plan owned by userID
func (s *VisionService) DeleteVision(ctx context.Context, id, userID uint64) error {
	if _, err := s.GetVision(ctx, id, userID); err != nil {
		return err
	}

	if err := s.visionRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete vision plan: %w", err)
	}
	return nil
}

// cleanMilestones trims entries and drops blank ones.
func cleanMilestones(input []string) (datatypes.JSONSlice[string], error) {
	milestones := make(datatypes.JSONSlice[string], 0, len(input))
	for _, m := range input {
		m = strings.TrimSpace(m)
		if m == "" {
			continue
		}
		milestones = append(milestones, m)
	}
	if len(milestones) > maxMilestones {
		return nil, ErrTooManyMilestones
	}
	return milestones, nil
}
