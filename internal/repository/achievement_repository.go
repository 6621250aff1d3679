package repository

import (
	"context"

	"github.com/yukikurage/levelup-todo-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormAchievementRepository is a GORM implementation of AchievementRepository
type GormAchievementRepository struct {
	db *gorm.DB
}

// NewAchievementRepository creates a new AchievementRepository
func NewAchievementRepository(db *gorm.DB) AchievementRepository {
	return &GormAchievementRepository{db: db}
}

// ListByUser lists the achievements a user earned
func (r *GormAchievementRepository) ListByUser(ctx context.Context, userID uint64) ([]models.EarnedAchievement, error) {
	var earned []models.EarnedAchievement
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("earned_at ASC").
		Order("id ASC").
		Find(&earned).Error
	return earned, err
}

// InsertIfAbsent inserts the achievement unless (user_id, kind) already exists
func (r *GormAchievementRepository) InsertIfAbsent(ctx context.Context, achievement *models.EarnedAchievement) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "kind"}},
			DoNothing: true,
		}).
		Create(achievement)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}
