package repository

import (
	"context"

	"github.com/yukikurage/levelup-todo-api/internal/database"
	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/utils"
	"gorm.io/gorm"
)

// GormVisionRepository is a GORM implementation of VisionRepository
type GormVisionRepository struct {
	db *gorm.DB
}

// NewVisionRepository creates a new VisionRepository
func NewVisionRepository(db *gorm.DB) VisionRepository {
	return &GormVisionRepository{db: db}
}

func (r *GormVisionRepository) Create(ctx context.Context, plan *models.VisionPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *GormVisionRepository) FindByID(ctx context.Context, id uint64) (*models.VisionPlan, error) {
	var plan models.VisionPlan
	if err := r.db.WithContext(ctx).First(&plan, id).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListByUser lists the plans of a user, newest first
func (r *GormVisionRepository) ListByUser(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.VisionPlan, int64, error) {
	var plans []models.VisionPlan

	query := r.db.WithContext(ctx).Model(&models.VisionPlan{}).Scopes(database.OwnedBy("vision_plans", userID))

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Scopes(database.NewestFirst("vision_plans"), database.Paginate(params)).
		Find(&plans).Error
	if err != nil {
		return nil, 0, err
	}

	return plans, total, nil
}

func (r *GormVisionRepository) Update(ctx context.Context, plan *models.VisionPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

// Delete soft deletes a plan
func (r *GormVisionRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.VisionPlan{}, id).Error
}
