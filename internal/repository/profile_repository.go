package repository

import (
	"context"
	"time"

	"github.com/yukikurage/levelup-todo-api/internal/database"
	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProfileRepository is a GORM implementation of ProfileRepository
type GormProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &GormProfileRepository{db: db}
}

// FindByUserID finds the profile of a user
func (r *GormProfileRepository) FindByUserID(ctx context.Context, userID uint64) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetOrCreate returns the profile of a user, creating it on first use
func (r *GormProfileRepository) GetOrCreate(ctx context.Context, userID uint64, username string) (*models.Profile, error) {
	profile := &models.Profile{
		UserID:   userID,
		Username: username,
		Level:    gamification.LevelForXP(0),
	}

	// A concurrent first request may insert the same user_id; keep the winner.
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(profile).Error
	if err != nil {
		return nil, err
	}

	return r.FindByUserID(ctx, userID)
}

// ApplyReward records event in the ledger and increments the profile balances
func (r *GormProfileRepository) ApplyReward(ctx context.Context, event *models.RewardEvent) (*models.Profile, error) {
	db := r.db.WithContext(ctx)

	if err := db.Create(event).Error; err != nil {
		return nil, err
	}

	err := db.Model(&models.Profile{}).
		Where("user_id = ?", event.UserID).
		Updates(map[string]interface{}{
			"xp":    gorm.Expr("xp + ?", event.XP),
			"coins": gorm.Expr("coins + ?", event.Coins),
		}).Error
	if err != nil {
		return nil, err
	}

	profile, err := r.FindByUserID(ctx, event.UserID)
	if err != nil {
		return nil, err
	}

	if err := r.SyncLevel(ctx, profile); err != nil {
		return nil, err
	}

	return profile, nil
}

// UpdateStreak stores the streak counter and last activity time
func (r *GormProfileRepository) UpdateStreak(ctx context.Context, userID uint64, streak int, lastActivity time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{
			"streak_count":       streak,
			"last_activity_date": lastActivity,
		}).Error
}

// UpdateUsername changes the display name on the profile
func (r *GormProfileRepository) UpdateUsername(ctx context.Context, userID uint64, username string) error {
	return r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("user_id = ?", userID).
		Update("username", username).Error
}

// SyncLevel writes the level derived from XP when the stored one is stale
func (r *GormProfileRepository) SyncLevel(ctx context.Context, profile *models.Profile) error {
	if profile.LevelInSync() {
		return nil
	}

	level := gamification.LevelForXP(profile.XP)
	err := r.db.WithContext(ctx).Model(&models.Profile{}).
		Where("id = ?", profile.ID).
		Update("level", level).Error
	if err != nil {
		return err
	}

	profile.Level = level
	return nil
}

// LedgerTotals sums the reward events of a user
func (r *GormProfileRepository) LedgerTotals(ctx context.Context, userID uint64, since *time.Time) (gamification.Reward, error) {
	var totals struct {
		XP    int
		Coins int
	}

	query := r.db.WithContext(ctx).Model(&models.RewardEvent{}).
		Select("COALESCE(SUM(xp), 0) AS xp, COALESCE(SUM(coins), 0) AS coins").
		Where("user_id = ?", userID)
	if since != nil {
		query = query.Where("created_at >= ?", *since)
	}

	if err := query.Scan(&totals).Error; err != nil {
		return gamification.Reward{}, err
	}

	return gamification.Reward{XP: totals.XP, Coins: totals.Coins}, nil
}

// ListRewardEvents lists the ledger of a user, newest first
func (r *GormProfileRepository) ListRewardEvents(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.RewardEvent, int64, error) {
	var events []models.RewardEvent

	query := r.db.WithContext(ctx).Model(&models.RewardEvent{}).Scopes(database.OwnedBy("reward_events", userID))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("reward_events.created_at DESC").
		Scopes(database.Paginate(params)).
		Find(&events).Error
	if err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
