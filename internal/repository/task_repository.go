package repository

import (
	"context"
	"time"

	"github.com/yukikurage/levelup-todo-api/internal/database"
	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/utils"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.WithContext(ctx).Model(&models.Task{}).Scopes(database.OwnedBy("tasks", filter.UserID))

	// Apply filters
	if filter.Completed != nil {
		query = query.Where("tasks.completed = ?", *filter.Completed)
	}
	if filter.Category != nil {
		query = query.Where("tasks.category = ?", *filter.Category)
	}
	if filter.Difficulty != nil {
		query = query.Where("tasks.difficulty = ?", *filter.Difficulty)
	}
	if filter.DueDateFrom != nil {
		query = query.Where("tasks.due_date >= ?", *filter.DueDateFrom)
	}
	if filter.DueDateTo != nil {
		query = query.Where("tasks.due_date < ?", *filter.DueDateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query
	if filter.SortByDueDate {
		listQuery = listQuery.Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END, tasks.due_date ASC")
	} else {
		listQuery = listQuery.Scopes(database.NewestFirst("tasks"))
	}

	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Scopes(database.Paginate(utils.PaginationParams{
			Page:   filter.Page,
			Limit:  filter.PageSize,
			Offset: (filter.Page - 1) * filter.PageSize,
		}))
	}

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// Update updates the editable columns of a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Model(task).
		Select("title", "description", "category", "difficulty", "due_date",
			"is_recurring", "recurring_type", "xp_reward", "coin_reward").
		Updates(task).Error
}

// Delete soft deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Delete(&models.Task{}, id).Error
}

// DeleteOwned soft deletes the listed tasks owned by userID
func (r *GormTaskRepository) DeleteOwned(ctx context.Context, userID uint64, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&models.Task{})

	return result.RowsAffected, result.Error
}

// MarkCompleted flips the completed flag if it is still false
func (r *GormTaskRepository) MarkCompleted(ctx context.Context, id uint64, completedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND completed = ?", id, false).
		Updates(map[string]interface{}{
			"completed":    true,
			"completed_at": completedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// CountCompleted counts the completed tasks of a user
func (r *GormTaskRepository) CountCompleted(ctx context.Context, userID uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error
	return count, err
}

// ListCompletionTimes returns completed_at of every completed task of a user
func (r *GormTaskRepository) ListCompletionTimes(ctx context.Context, userID uint64) ([]time.Time, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Select("id", "completed_at").
		Where("user_id = ? AND completed = ? AND completed_at IS NOT NULL", userID, true).
		Order("completed_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}

	times := make([]time.Time, 0, len(tasks))
	for _, t := range tasks {
		if t.CompletedAt != nil {
			times = append(times, *t.CompletedAt)
		}
	}
	return times, nil
}

// ListCreatedSince returns the tasks a user created at or after since
func (r *GormTaskRepository) ListCreatedSince(ctx context.Context, userID uint64, since time.Time) ([]models.Task, error) {
	var tasks []models.Task
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").
		Find(&tasks).Error
	return tasks, err
}
