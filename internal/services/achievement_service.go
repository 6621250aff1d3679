package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/repository"
)

// AchievementService evaluates the achievement catalog against a user's
// statistics and awards what is newly satisfied.
type AchievementService struct {
	taskRepo        repository.TaskRepository
	profileRepo     repository.ProfileRepository
	achievementRepo repository.AchievementRepository
	tx              repository.Transactor
	policy          gamification.ThresholdPolicy
	now             func() time.Time
}

// NewAchievementService creates a new AchievementService
func NewAchievementService(
	taskRepo repository.TaskRepository,
	profileRepo repository.ProfileRepository,
	achievementRepo repository.AchievementRepository,
	tx repository.Transactor,
	policy gamification.ThresholdPolicy,
) *AchievementService {
	if !policy.IsValid() {
		policy = gamification.ThresholdAtLeast
	}
	return &AchievementService{
		taskRepo:        taskRepo,
		profileRepo:     profileRepo,
		achievementRepo: achievementRepo,
		tx:              tx,
		policy:          policy,
		now:             time.Now,
	}
}

// SetClock replaces the time source (used for testing)
func (s *AchievementService) SetClock(now func() time.Time) {
	s.now = now
}

// Policy returns the threshold policy in use
func (s *AchievementService) Policy() gamification.ThresholdPolicy {
	return s.policy
}

// AchievementStatus is a catalog entry with the user's unlock state.
type AchievementStatus struct {
	Definition gamification.AchievementDefinition
	Earned     bool
	EarnedAt   *time.Time
}

// Metrics reads the statistics achievements are checked against.
func (s *AchievementService) Metrics(ctx context.Context, userID uint64) (gamification.Metrics, error) {
	completed, err := s.taskRepo.CountCompleted(ctx, userID)
	if err != nil {
		return gamification.Metrics{}, fmt.Errorf("failed to count completed tasks: %w", err)
	}

	profile, err := s.profileRepo.FindByUserID(ctx, userID)
	if err != nil {
		return gamification.Metrics{}, fmt.Errorf("failed to find profile: %w", err)
	}

	return gamification.Metrics{
		CompletedTasks: int(completed),
		StreakDays:     profile.StreakCount,
		Level:          gamification.LevelForXP(profile.XP),
	}, nil
}

// Evaluate awards every achievement the user satisfies but does not hold yet
// and returns the ones awarded by this call. Bonuses can raise the level, so
// evaluation repeats until a pass awards nothing.
//
// A failure to award one kind is logged and the others are still tried.
func (s *AchievementService) Evaluate(ctx context.Context, userID uint64) ([]models.EarnedAchievement, error) {
	var awarded []models.EarnedAchievement

	for pass := 0; pass < len(gamification.Catalog()); pass++ {
		newly, err := s.evaluateOnce(ctx, userID)
		if err != nil {
			return awarded, err
		}
		if len(newly) == 0 {
			break
		}
		awarded = append(awarded, newly...)
	}

	return awarded, nil
}

func (s *AchievementService) evaluateOnce(ctx context.Context, userID uint64) ([]models.EarnedAchievement, error) {
	metrics, err := s.Metrics(ctx, userID)
	if err != nil {
		return nil, err
	}

	held, err := s.heldKinds(ctx, userID)
	if err != nil {
		return nil, err
	}

	var awarded []models.EarnedAchievement
	for _, def := range gamification.Satisfied(metrics, s.policy) {
		if _, ok := held[def.Kind]; ok {
			continue
		}

		earned, err := s.award(ctx, userID, def)
		if err != nil {
			log.Printf("achievements: failed to award %s to user %d: %v", def.Kind, userID, err)
			continue
		}
		if earned != nil {
			awarded = append(awarded, *earned)
		}
	}

	return awarded, nil
}

// award inserts the achievement and pays its bonus in one transaction. It
// returns nil when another caller already holds the row.
func (s *AchievementService) award(ctx context.Context, userID uint64, def gamification.AchievementDefinition) (*models.EarnedAchievement, error) {
	earned := &models.EarnedAchievement{
		UserID:    userID,
		Kind:      def.Kind,
		Title:     def.Title,
		Icon:      def.Icon,
		XPBonus:   def.Bonus.XP,
		CoinBonus: def.Bonus.Coins,
		EarnedAt:  s.now(),
	}

	inserted := false
	err := s.tx.WithinTransaction(ctx, func(repos repository.Repositories) error {
		var err error
		inserted, err = repos.Achievements.InsertIfAbsent(ctx, earned)
		if err != nil {
			return fmt.Errorf("failed to insert achievement: %w", err)
		}
		if !inserted {
			return nil
		}

		kind := def.Kind
		_, err = repos.Profiles.ApplyReward(ctx, &models.RewardEvent{
			UserID:          userID,
			Source:          models.RewardSourceAchievementBonus,
			AchievementKind: &kind,
			XP:              def.Bonus.XP,
			Coins:           def.Bonus.Coins,
		})
		if err != nil {
			return fmt.Errorf("failed to pay achievement bonus: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, nil
	}

	return earned, nil
}

// List returns the whole catalog with the user's earned state
func (s *AchievementService) List(ctx context.Context, userID uint64) ([]AchievementStatus, error) {
	earned, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	earnedAt := make(map[gamification.AchievementKind]time.Time, len(earned))
	for _, e := range earned {
		earnedAt[e.Kind] = e.EarnedAt
	}

	catalog := gamification.Catalog()
	statuses := make([]AchievementStatus, 0, len(catalog))
	for _, def := range catalog {
		status := AchievementStatus{Definition: def}
		if at, ok := earnedAt[def.Kind]; ok {
			at := at
			status.Earned = true
			status.EarnedAt = &at
		}
		statuses = append(statuses, status)
	}

	return statuses, nil
}

func (s *AchievementService) heldKinds(ctx context.Context, userID uint64) (map[gamification.AchievementKind]struct{}, error) {
	earned, err := s.achievementRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}

	held := make(map[gamification.AchievementKind]struct{}, len(earned))
	for _, e := range earned {
		held[e.Kind] = struct{}{}
	}
	return held, nil
}
