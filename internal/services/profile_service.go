package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/repository"
	"github.com/yukikurage/levelup-todo-api/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrProfileNotFound  = errors.New("profile not found")
	ErrUsernameRequired = errors.New("username is required")
	ErrUsernameTooLong  = errors.New("username must be at most 50 characters")
)

// ProfileService handles profile reads and edits.
type ProfileService struct {
	profileRepo repository.ProfileRepository
	userRepo    repository.UserRepository
}

// NewProfileService creates a new ProfileService
func NewProfileService(profileRepo repository.ProfileRepository, userRepo repository.UserRepository) *ProfileService {
	return &ProfileService{
		profileRepo: profileRepo,
		userRepo:    userRepo,
	}
}

// ProfileView is a profile together with its derived level progress.
type ProfileView struct {
	Profile  *models.Profile
	Progress gamification.LevelProgress
}

// EnsureProfile returns the profile of a user, creating it on first use and
// repairing a stale level column.
func (s *ProfileService) EnsureProfile(ctx context.Context, userID uint64) (*models.Profile, error) {
	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("failed to find profile: %w", err)
		}

		user, err := s.userRepo.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrUserNotFound
			}
			return nil, fmt.Errorf("failed to find user: %w", err)
		}

		profile, err = s.profileRepo.GetOrCreate(ctx, userID, user.Username)
		if err != nil {
			return nil, fmt.Errorf("failed to create profile: %w", err)
		}
	}

	if err := s.profileRepo.SyncLevel(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to sync level: %w", err)
	}

	return profile, nil
}

// GetProfile returns the profile with level progress
func (s *ProfileService) GetProfile(ctx context.Context, userID uint64) (*ProfileView, error) {
	profile, err := s.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &ProfileView{
		Profile:  profile,
		Progress: gamification.ProgressForXP(profile.XP),
	}, nil
}

// UpdateProfileInput represents the editable profile fields
type UpdateProfileInput struct {
	Username *string
}

// UpdateProfile changes the display name. Balances are never editable.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID uint64, input UpdateProfileInput) (*ProfileView, error) {
	if _, err := s.EnsureProfile(ctx, userID); err != nil {
		return nil, err
	}

	if input.Username != nil {
		username := strings.TrimSpace(*input.Username)
		if username == "" {
			return nil, ErrUsernameRequired
		}
		if len([]rune(username)) > 50 {
			return nil, ErrUsernameTooLong
		}

		if err := s.profileRepo.UpdateUsername(ctx, userID, username); err != nil {
			return nil, fmt.Errorf("failed to update profile: %w", err)
		}
	}

	return s.GetProfile(ctx, userID)
}

// ListRewards returns the reward ledger of a user, newest first
func (s *ProfileService) ListRewards(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.RewardEvent, int64, error) {
	events, total, err := s.profileRepo.ListRewardEvents(ctx, userID, params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list rewards: %w", err)
	}
	return events, total, nil
}
