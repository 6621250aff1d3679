package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/yukikurage/levelup-todo-api/internal/constants"
	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskNotOwned           = errors.New("task belongs to another user")
	ErrTaskAlreadyCompleted   = errors.New("task is already completed")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleEmpty             = errors.New("title cannot be empty")
	ErrInvalidCategory        = errors.New("invalid category")
	ErrInvalidDifficulty      = errors.New("invalid difficulty")
	ErrInvalidRecurringType   = errors.New("invalid recurring type")
	ErrRecurringTypeRequired  = errors.New("recurring_type is required for recurring tasks")
	ErrNoTaskIDsProvided      = errors.New("at least one task ID is required")
	ErrTooManyTaskIDs         = errors.New("too many task IDs")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAINoValidTasks         = errors.New("no valid tasks could be created from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	taskRepo     repository.TaskRepository
	tx           repository.Transactor
	profiles     *ProfileService
	achievements *AchievementService
	generator    TaskGenerator
	location     *time.Location
	now          func() time.Time
}

// NewTaskService creates a new TaskService. generator may be nil when AI
// suggestions are not configured.
func NewTaskService(
	taskRepo repository.TaskRepository,
	tx repository.Transactor,
	profiles *ProfileService,
	achievements *AchievementService,
	generator TaskGenerator,
) *TaskService {
	return &TaskService{
		taskRepo:     taskRepo,
		tx:           tx,
		profiles:     profiles,
		achievements: achievements,
		generator:    generator,
		location:     time.UTC,
		now:          time.Now,
	}
}

// SetClock replaces the time source (used for testing)
func (s *TaskService) SetClock(now func() time.Time) {
	s.now = now
}

// SetLocation sets the time zone calendar days are counted in
func (s *TaskService) SetLocation(loc *time.Location) {
	if loc != nil {
		s.location = loc
	}
}

func (s *TaskService) currentTime() time.Time {
	return s.now().In(s.location)
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	UserID        uint64
	Completed     *bool
	Category      *gamification.Category
	Difficulty    *gamification.Difficulty
	DueFrom       *time.Time
	DueTo         *time.Time
	DueToday      bool
	SortByDueDate bool
	Page          int
	PageSize      int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	UserID        uint64
	Title         string
	Description   string
	Category      gamification.Category
	Difficulty    gamification.Difficulty
	DueDate       *time.Time
	IsRecurring   bool
	RecurringType *gamification.RecurringType
}

// UpdateTaskInput represents input for updating a task
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Category      *gamification.Category
	Difficulty    *gamification.Difficulty
	DueDate       *time.Time
	ClearDueDate  bool
	IsRecurring   *bool
	RecurringType *gamification.RecurringType
}

// CompletionResult describes what completing a task awarded
type CompletionResult struct {
	Task            *models.Task
	NextOccurrence  *models.Task
	Reward          gamification.Reward
	OnTime          bool
	LevelBefore     int
	LevelAfter      int
	LeveledUp       bool
	NewAchievements []models.EarnedAchievement
	Profile         *models.Profile
}

// ListTasks returns the caller's tasks matching the filters
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	filter := repository.TaskFilter{
		UserID:        input.UserID,
		Completed:     input.Completed,
		Category:      input.Category,
		Difficulty:    input.Difficulty,
		DueDateFrom:   input.DueFrom,
		DueDateTo:     input.DueTo,
		SortByDueDate: input.SortByDueDate,
		Page:          input.Page,
		PageSize:      input.PageSize,
	}

	if input.Category != nil && !input.Category.IsValid() {
		return nil, 0, ErrInvalidCategory
	}
	if input.Difficulty != nil && !input.Difficulty.IsValid() {
		return nil, 0, ErrInvalidDifficulty
	}

	if input.DueToday {
		now := s.currentTime()
		startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		endOfDay := startOfDay.AddDate(0, 0, 1)
		filter.DueDateFrom = &startOfDay
		filter.DueDateTo = &endOfDay
	}

	tasks, total, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, total, nil
}

// GetTask returns a task owned by userID
func (s *TaskService) GetTask(ctx context.Context, taskID, userID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.UserID != userID {
		return nil, ErrTaskNotOwned
	}

	return task, nil
}

// CreateTask validates the input and stores a new task with the base reward
// of its difficulty
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	if input.Category == "" {
		input.Category = gamification.CategoryPersonal
	}
	if !input.Category.IsValid() {
		return nil, ErrInvalidCategory
	}

	if input.Difficulty == "" {
		input.Difficulty = gamification.DifficultyEasy
	}
	if !input.Difficulty.IsValid() {
		return nil, ErrInvalidDifficulty
	}

	recurringType, err := validateRecurrence(input.IsRecurring, input.RecurringType)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		UserID:        input.UserID,
		Title:         title,
		Description:   input.Description,
		Category:      input.Category,
		DueDate:       input.DueDate,
		IsRecurring:   input.IsRecurring,
		RecurringType: recurringType,
	}
	task.ApplyDifficulty(input.Difficulty)

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	return task, nil
}

// UpdateTask applies a partial update to a task owned by userID
func (s *TaskService) UpdateTask(ctx context.Context, taskID, userID uint64, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = title
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Category != nil {
		if !input.Category.IsValid() {
			return nil, ErrInvalidCategory
		}
		task.Category = *input.Category
	}
	if input.Difficulty != nil {
		if !input.Difficulty.IsValid() {
			return nil, ErrInvalidDifficulty
		}
		task.ApplyDifficulty(*input.Difficulty)
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}

	if input.IsRecurring != nil || input.RecurringType != nil {
		isRecurring := task.IsRecurring
		if input.IsRecurring != nil {
			isRecurring = *input.IsRecurring
		}
		recurringType := task.RecurringType
		if input.RecurringType != nil {
			recurringType = input.RecurringType
		}

		recurringType, err = validateRecurrence(isRecurring, recurringType)
		if err != nil {
			return nil, err
		}
		task.IsRecurring = isRecurring
		task.RecurringType = recurringType
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	return s.taskRepo.FindByID(ctx, task.ID)
}

// DeleteTask deletes a task owned by userID
func (s *TaskService) DeleteTask(ctx context.Context, taskID, userID uint64) error {
	if _, err := s.GetTask(ctx, taskID, userID); err != nil {
		return err
	}

	if err := s.taskRepo.Delete(ctx, taskID); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	return nil
}

// DeleteTasks deletes the listed tasks that belong to userID and returns how
// many were removed. IDs of other users' tasks are ignored.
func (s *TaskService) DeleteTasks(ctx context.Context, userID uint64, ids []uint64) (int64, error) {
	if len(ids) == 0 {
		return 0, ErrNoTaskIDsProvided
	}

	uniqueIDs := uniqueUint64(ids)
	if len(uniqueIDs) > constants.MaxBulkDeleteIDs {
		return 0, ErrTooManyTaskIDs
	}

	deleted, err := s.taskRepo.DeleteOwned(ctx, userID, uniqueIDs)
	if err != nil {
		return 0, fmt.Errorf("failed to delete tasks: %w", err)
	}

	return deleted, nil
}

// CompleteTask marks a task completed and pays its reward. The completion,
// the ledger entry, the balance increment, the streak update and the next
// occurrence of a recurring task are written in one transaction. Achievements
// are evaluated afterwards; their failures never undo the completion.
func (s *TaskService) CompleteTask(ctx context.Context, taskID, userID uint64) (*CompletionResult, error) {
	task, err := s.GetTask(ctx, taskID, userID)
	if err != nil {
		return nil, err
	}
	if task.Completed {
		return nil, ErrTaskAlreadyCompleted
	}

	before, err := s.profiles.EnsureProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.currentTime()
	onTime := gamification.IsOnTime(now, task.DueDate)
	reward := gamification.CalculateReward(task.Difficulty, onTime)

	var (
		profile *models.Profile
		next    *models.Task
	)
	err = s.tx.WithinTransaction(ctx, func(repos repository.Repositories) error {
		marked, err := repos.Tasks.MarkCompleted(ctx, task.ID, now)
		if err != nil {
			return fmt.Errorf("failed to mark task completed: %w", err)
		}
		if !marked {
			return ErrTaskAlreadyCompleted
		}

		id := task.ID
		profile, err = repos.Profiles.ApplyReward(ctx, &models.RewardEvent{
			UserID: userID,
			Source: models.RewardSourceTaskCompletion,
			TaskID: &id,
			OnTime: onTime,
			XP:     reward.XP,
			Coins:  reward.Coins,
		})
		if err != nil {
			return fmt.Errorf("failed to apply reward: %w", err)
		}

		streak := gamification.NextStreakCount(profile.StreakCount, profile.LastActivityDate, now)
		if err := repos.Profiles.UpdateStreak(ctx, userID, streak, now); err != nil {
			return fmt.Errorf("failed to update streak: %w", err)
		}
		profile.StreakCount = streak
		profile.LastActivityDate = &now

		if task.IsRecurring && task.RecurringType != nil {
			next, err = nextOccurrence(task, now)
			if err != nil {
				return err
			}
			if err := repos.Tasks.Create(ctx, next); err != nil {
				return fmt.Errorf("failed to create next occurrence: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, ErrTaskAlreadyCompleted) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to complete task: %w", err)
	}

	task.Completed = true
	task.CompletedAt = &now

	result := &CompletionResult{
		Task:           task,
		NextOccurrence: next,
		Reward:         reward,
		OnTime:         onTime,
		LevelBefore:    gamification.LevelForXP(before.XP),
		Profile:        profile,
	}

	if s.achievements != nil {
		earned, err := s.achievements.Evaluate(ctx, userID)
		if err != nil {
			log.Printf("tasks: achievement evaluation failed for user %d: %v", userID, err)
		}
		result.NewAchievements = earned

		if len(earned) > 0 {
			if refreshed, err := s.profiles.EnsureProfile(ctx, userID); err == nil {
				result.Profile = refreshed
			} else {
				log.Printf("tasks: failed to reload profile for user %d: %v", userID, err)
			}
		}
	}

	result.LevelAfter = gamification.LevelForXP(result.Profile.XP)
	result.LeveledUp = result.LevelAfter > result.LevelBefore

	return result, nil
}

// GenerateTasksInput represents input for AI task generation
type GenerateTasksInput struct {
	Text   string
	UserID uint64
}

// GenerateTasks uses AI to suggest tasks from text. Suggestions are not stored.
func (s *TaskService) GenerateTasks(ctx context.Context, input GenerateTasksInput) ([]GeneratedTask, error) {
	if s.generator == nil {
		return nil, ErrAIServiceNotConfigured
	}

	aiTasks, err := s.generator.GenerateTasksFromText(ctx, input.Text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	if len(aiTasks) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(aiTasks) > constants.MaxAIGeneratedTasks {
		aiTasks = aiTasks[:constants.MaxAIGeneratedTasks]
	}

	validTasks := make([]GeneratedTask, 0, len(aiTasks))
	cutoff := s.now().Add(-24 * time.Hour)
	for _, aiTask := range aiTasks {
		aiTask.Title = strings.TrimSpace(aiTask.Title)
		if aiTask.Title == "" {
			continue
		}

		if !aiTask.Category.IsValid() {
			aiTask.Category = gamification.CategoryPersonal
		}
		if !aiTask.Difficulty.IsValid() {
			aiTask.Difficulty = gamification.DifficultyEasy
		}
		if aiTask.DueDate != nil && aiTask.DueDate.Before(cutoff) {
			aiTask.DueDate = nil
		}

		validTasks = append(validTasks, aiTask)
	}

	if len(validTasks) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validTasks, nil
}

// nextOccurrence builds the follow-up of a completed recurring task. The due
// date advances one period from the old due date, or from now when it had none.
func nextOccurrence(task *models.Task, now time.Time) (*models.Task, error) {
	from := now
	if task.DueDate != nil {
		from = *task.DueDate
	}

	due, err := gamification.NextOccurrence(from, *task.RecurringType)
	if err != nil {
		return nil, err
	}

	recurringType := *task.RecurringType
	next := &models.Task{
		UserID:        task.UserID,
		Title:         task.Title,
		Description:   task.Description,
		Category:      task.Category,
		DueDate:       &due,
		IsRecurring:   true,
		RecurringType: &recurringType,
	}
	next.ApplyDifficulty(task.Difficulty)

	return next, nil
}

func validateRecurrence(isRecurring bool, recurringType *gamification.RecurringType) (*gamification.RecurringType, error) {
	if !isRecurring {
		return nil, nil
	}
	if recurringType == nil || *recurringType == "" {
		return nil, ErrRecurringTypeRequired
	}
	if !recurringType.IsValid() {
		return nil, ErrInvalidRecurringType
	}
	rt := *recurringType
	return &rt, nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
