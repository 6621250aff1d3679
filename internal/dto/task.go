package dto

import (
	"time"

	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/services"
	"github.com/yukikurage/levelup-todo-api/internal/utils"
)

// UserDTO represents a user in API responses
type UserDTO struct {
	ID       uint64      `json:"id"`
	Username string      `json:"username"`
	Profile  *ProfileDTO `json:"profile,omitempty"`
}

// TokenDTO is an issued bearer token
type TokenDTO struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID            uint64                      `json:"id"`
	Title         string                      `json:"title"`
	Description   string                      `json:"description"`
	Category      gamification.Category       `json:"category"`
	Difficulty    gamification.Difficulty     `json:"difficulty"`
	Completed     bool                        `json:"completed"`
	CompletedAt   *time.Time                  `json:"completed_at"`
	DueDate       *time.Time                  `json:"due_date"`
	IsRecurring   bool                        `json:"is_recurring"`
	RecurringType *gamification.RecurringType `json:"recurring_type"`
	XPReward      int                         `json:"xp_reward"`
	CoinReward    int                         `json:"coin_reward"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

// TaskListResponse represents a paginated list of tasks
type TaskListResponse struct {
	Tasks      []TaskDTO `json:"tasks"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalCount int64     `json:"total_count"`
	TotalPages int       `json:"total_pages"`
}

// CompletionDTO is the outcome of completing a task
type CompletionDTO struct {
	Task            TaskDTO          `json:"task"`
	NextOccurrence  *TaskDTO         `json:"next_occurrence,omitempty"`
	Reward          RewardDTO        `json:"reward"`
	OnTime          bool             `json:"on_time"`
	LevelBefore     int              `json:"level_before"`
	LevelAfter      int              `json:"level_after"`
	LevelUp         bool             `json:"level_up"`
	NewAchievements []AchievementDTO `json:"new_achievements"`
	Profile         ProfileDTO       `json:"profile"`
}

type RewardDTO struct {
	XP    int `json:"xp"`
	Coins int `json:"coins"`
}

// Conversion functions

// ToUserDTO converts a User model to UserDTO
func ToUserDTO(user models.User) UserDTO {
	dto := UserDTO{
		ID:       user.ID,
		Username: user.Username,
	}
	if user.Profile != nil {
		profile := ToProfileDTO(*user.Profile)
		dto.Profile = &profile
	}
	return dto
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	return TaskDTO{
		ID:            task.ID,
		Title:         task.Title,
		Description:   task.Description,
		Category:      task.Category,
		Difficulty:    task.Difficulty,
		Completed:     task.Completed,
		CompletedAt:   task.CompletedAt,
		DueDate:       task.DueDate,
		IsRecurring:   task.IsRecurring,
		RecurringType: task.RecurringType,
		XPReward:      task.XPReward,
		CoinReward:    task.CoinReward,
		CreatedAt:     task.CreatedAt,
		UpdatedAt:     task.UpdatedAt,
	}
}

// ToTaskListResponse converts a slice of tasks to TaskListResponse
func ToTaskListResponse(tasks []models.Task, page, pageSize int, totalCount int64) TaskListResponse {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task)
	}

	return TaskListResponse{
		Tasks:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: totalCount,
		TotalPages: utils.TotalPages(totalCount, pageSize),
	}
}

func ToRewardDTO(r gamification.Reward) RewardDTO {
	return RewardDTO{XP: r.XP, Coins: r.Coins}
}

// ToCompletionDTO converts a completion result to CompletionDTO
func ToCompletionDTO(result *services.CompletionResult) CompletionDTO {
	dto := CompletionDTO{
		Task:            ToTaskDTO(*result.Task),
		Reward:          ToRewardDTO(result.Reward),
		OnTime:          result.OnTime,
		LevelBefore:     result.LevelBefore,
		LevelAfter:      result.LevelAfter,
		LevelUp:         result.LeveledUp,
		NewAchievements: make([]AchievementDTO, len(result.NewAchievements)),
	}

	if result.NextOccurrence != nil {
		next := ToTaskDTO(*result.NextOccurrence)
		dto.NextOccurrence = &next
	}
	for i, a := range result.NewAchievements {
		dto.NewAchievements[i] = ToAchievementDTO(a)
	}
	if result.Profile != nil {
		dto.Profile = ToProfileDTO(*result.Profile)
	}

	return dto
}
