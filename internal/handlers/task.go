package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/levelup-todo-api/internal/constants"
	"github.com/yukikurage/levelup-todo-api/internal/dto"
	apierrors "github.com/yukikurage/levelup-todo-api/internal/errors"
	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"github.com/yukikurage/levelup-todo-api/internal/middleware"
	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/services"
	"github.com/yukikurage/levelup-todo-api/internal/utils"
)

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the current user's tasks.
// Supports completed, category, difficulty, due_from, due_to, due=today and
// sort=due_date filters.
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	input := services.ListTasksInput{
		UserID:        userID,
		DueToday:      c.Query("due") == "today",
		SortByDueDate: c.Query("sort") == "due_date",
		Page:          params.Page,
		PageSize:      params.Limit,
	}

	if v := c.Query("completed"); v != "" {
		completed, err := strconv.ParseBool(v)
		if err != nil {
			apierrors.BadRequest(c, "Invalid completed filter")
			return
		}
		input.Completed = &completed
	}
	if v := c.Query("category"); v != "" {
		category, err := gamification.ParseCategory(v)
		if err != nil {
			apierrors.BadRequest(c, err.Error())
			return
		}
		input.Category = &category
	}
	if v := c.Query("difficulty"); v != "" {
		difficulty, err := gamification.ParseDifficulty(v)
		if err != nil {
			apierrors.BadRequest(c, err.Error())
			return
		}
		input.Difficulty = &difficulty
	}

	var err error
	if input.DueFrom, err = parseTimeQuery(c, "due_from"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}
	if input.DueTo, err = parseTimeQuery(c, "due_to"); err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	tasks, total, err := h.taskService.ListTasks(c.Request.Context(), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskListResponse(tasks, params.Page, params.Limit, total))
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*task))
}

// CreateTask creates a new task
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type CreateTaskRequest struct {
		Title         string     `json:"title" binding:"required"`
		Description   string     `json:"description"`
		Category      string     `json:"category"`
		Difficulty    string     `json:"difficulty"`
		DueDate       *time.Time `json:"due_date"`
		IsRecurring   bool       `json:"is_recurring"`
		RecurringType *string    `json:"recurring_type"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input := services.CreateTaskInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    gamification.Category(req.Category),
		Difficulty:  gamification.Difficulty(req.Difficulty),
		DueDate:     req.DueDate,
		IsRecurring: req.IsRecurring,
	}
	if req.RecurringType != nil {
		rt := gamification.RecurringType(*req.RecurringType)
		input.RecurringType = &rt
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates an existing task. Only fields present in the body are
// changed, and "due_date": null clears the due date.
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	// Parse raw JSON to detect which fields were sent
	var rawReq map[string]any
	if err := c.ShouldBindJSON(&rawReq); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	input, err := parseUpdateTaskRequest(rawReq)
	if err != nil {
		apierrors.BadRequest(c, err.Error())
		return
	}

	userID, _ := middleware.GetUserID(c)
	updated, err := h.taskService.UpdateTask(c.Request.Context(), task.ID, userID, input)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	if err := h.taskService.DeleteTask(c.Request.Context(), task.ID, userID); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted successfully",
	})
}

// BulkDeleteTasks deletes the listed tasks owned by the current user
func (h *TaskHandler) BulkDeleteTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type BulkDeleteRequest struct {
		IDs []uint64 `json:"ids" binding:"required"`
	}

	var req BulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	deleted, err := h.taskService.DeleteTasks(c.Request.Context(), userID, req.IDs)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Tasks deleted successfully",
		"deleted": deleted,
	})
}

// CompleteTask marks a task completed and returns the rewards it earned
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	task, ok := taskFromContext(c)
	if !ok {
		return
	}

	userID, _ := middleware.GetUserID(c)
	result, err := h.taskService.CompleteTask(c.Request.Context(), task.ID, userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToCompletionDTO(result))
}

// GenerateTasks generates task suggestions from text using AI
func (h *TaskHandler) GenerateTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	type GenerateTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req GenerateTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	suggestions, err := h.taskService.GenerateTasks(c.Request.Context(), services.GenerateTasksInput{
		Text:   req.Text,
		UserID: userID,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tasks": suggestions,
		"count": len(suggestions),
	})
}

func taskFromContext(c *gin.Context) (*models.Task, bool) {
	value, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		apierrors.InternalError(c, "Task not found in context")
		return nil, false
	}

	task, ok := value.(*models.Task)
	if !ok {
		apierrors.InternalError(c, "Invalid task data")
		return nil, false
	}

	return task, true
}

func parseUpdateTaskRequest(raw map[string]any) (services.UpdateTaskInput, error) {
	var input services.UpdateTaskInput

	stringField := func(key string) (*string, error) {
		v, ok := raw[key]
		if !ok || v == nil {
			return nil, nil
		}
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s must be a string", key)
		}
		return &s, nil
	}

	var err error
	if input.Title, err = stringField("title"); err != nil {
		return input, err
	}
	if input.Description, err = stringField("description"); err != nil {
		return input, err
	}

	category, err := stringField("category")
	if err != nil {
		return input, err
	}
	if category != nil {
		c := gamification.Category(*category)
		input.Category = &c
	}

	difficulty, err := stringField("difficulty")
	if err != nil {
		return input, err
	}
	if difficulty != nil {
		d := gamification.Difficulty(*difficulty)
		input.Difficulty = &d
	}

	if v, ok := raw["due_date"]; ok {
		if v == nil {
			input.ClearDueDate = true
		} else {
			s, ok := v.(string)
			if !ok {
				return input, errors.New("due_date must be an RFC3339 timestamp")
			}
			due, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return input, errors.New("due_date must be an RFC3339 timestamp")
			}
			input.DueDate = &due
		}
	}

	if v, ok := raw["is_recurring"]; ok && v != nil {
		b, ok := v.(bool)
		if !ok {
			return input, errors.New("is_recurring must be a boolean")
		}
		input.IsRecurring = &b
	}

	recurring, err := stringField("recurring_type")
	if err != nil {
		return input, err
	}
	if recurring != nil {
		rt := gamification.RecurringType(*recurring)
		input.RecurringType = &rt
	}

	return input, nil
}

// parseTimeQuery accepts RFC3339 timestamps or plain dates.
func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s", key)
	}
	return &t, nil
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTaskNotOwned):
		apierrors.Forbidden(c, "You do not have access to this task")
	case errors.Is(err, services.ErrTaskAlreadyCompleted):
		apierrors.AlreadyCompleted(c)
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidCategory),
		errors.Is(err, services.ErrInvalidDifficulty),
		errors.Is(err, services.ErrInvalidRecurringType),
		errors.Is(err, services.ErrRecurringTypeRequired),
		errors.Is(err, services.ErrNoTaskIDsProvided):
		apierrors.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrTooManyTaskIDs):
		apierrors.BadRequest(c, fmt.Sprintf("At most %d task IDs can be deleted at once", constants.MaxBulkDeleteIDs))
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	case errors.Is(err, services.ErrAINoTasksGenerated),
		errors.Is(err, services.ErrAINoValidTasks):
		apierrors.Unprocessable(c, err.Error())
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, err.Error())
	default:
		apierrors.InternalError(c, "Internal server error")
	}
}
