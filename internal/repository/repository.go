package repository

import (
	"context"
	"time"

	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// Update writes the editable columns of a task. Completion state is never
	// touched here; use MarkCompleted.
	Update(ctx context.Context, task *models.Task) error

	// Delete soft deletes a task
	Delete(ctx context.Context, id uint64) error

	// DeleteOwned soft deletes the listed tasks that belong to userID and
	// returns how many were removed.
	DeleteOwned(ctx context.Context, userID uint64, ids []uint64) (int64, error)

	// MarkCompleted flips completed from false to true. It reports false when
	// the task was already completed, so concurrent callers cannot both win.
	MarkCompleted(ctx context.Context, id uint64, completedAt time.Time) (bool, error)

	// CountCompleted counts the completed tasks of a user
	CountCompleted(ctx context.Context, userID uint64) (int64, error)

	// ListCompletionTimes returns completed_at for every completed task of a user
	ListCompletionTimes(ctx context.Context, userID uint64) ([]time.Time, error)

	// ListCreatedSince returns the tasks a user created at or after since
	ListCreatedSince(ctx context.Context, userID uint64, since time.Time) ([]models.Task, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	UserID        uint64
	Completed     *bool
	Category      *gamification.Category
	Difficulty    *gamification.Difficulty
	DueDateFrom   *time.Time
	DueDateTo     *time.Time
	SortByDueDate bool
	Page          int
	PageSize      int
}

// ProfileRepository defines the interface for profile and reward ledger access
type ProfileRepository interface {
	// FindByUserID finds the profile of a user
	FindByUserID(ctx context.Context, userID uint64) (*models.Profile, error)

	// GetOrCreate returns the profile of a user, creating a fresh one when missing
	GetOrCreate(ctx context.Context, userID uint64, username string) (*models.Profile, error)

	// ApplyReward appends event to the ledger and adds its amounts to the
	// profile balances, resyncing the level. Callers run it inside a transaction.
	ApplyReward(ctx context.Context, event *models.RewardEvent) (*models.Profile, error)

	// UpdateStreak stores the streak counter and the last activity time
	UpdateStreak(ctx context.Context, userID uint64, streak int, lastActivity time.Time) error

	// UpdateUsername changes the display name on the profile
	UpdateUsername(ctx context.Context, userID uint64, username string) error

	// SyncLevel rewrites the stored level when it drifted from the XP
	SyncLevel(ctx context.Context, profile *models.Profile) error

	// LedgerTotals sums the reward events of a user, optionally from since on
	LedgerTotals(ctx context.Context, userID uint64, since *time.Time) (gamification.Reward, error)

	// ListRewardEvents lists the ledger of a user, newest first
	ListRewardEvents(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.RewardEvent, int64, error)
}

// AchievementRepository defines the interface for earned achievement access
type AchievementRepository interface {
	// ListByUser lists the achievements a user earned, oldest first
	ListByUser(ctx context.Context, userID uint64) ([]models.EarnedAchievement, error)

	// InsertIfAbsent inserts the achievement unless the user already holds that
	// kind. It reports whether a row was written.
	InsertIfAbsent(ctx context.Context, achievement *models.EarnedAchievement) (bool, error)
}

// VisionRepository defines the interface for vision plan data access
type VisionRepository interface {
	Create(ctx context.Context, plan *models.VisionPlan) error
	FindByID(ctx context.Context, id uint64) (*models.VisionPlan, error)
	ListByUser(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.VisionPlan, int64, error)
	Update(ctx context.Context, plan *models.VisionPlan) error
	Delete(ctx context.Context, id uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// CreateWithProfile creates a user and their profile within a single transaction.
	CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(ctx context.Context, username string) (*models.User, error)
}

// Repositories groups the stores that take part in a transaction.
type Repositories struct {
	Tasks        TaskRepository
	Profiles     ProfileRepository
	Achievements AchievementRepository
}

// Transactor runs fn with repositories bound to one database transaction.
// Returning an error from fn rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(repos Repositories) error) error
}
