package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"github.com/yukikurage/levelup-todo-api/internal/services"
)

func TestAnalyticsHandler_Streak(t *testing.T) {
	app := newTestApp(t, nil)
	user := app.signup(t, "alice")

	w := serve(t, app, user.ID, http.MethodGet, "/api/analytics/streak", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"current_streak":0,"longest_streak":0,"total_active_days":0}`, w.Body.String())

	completeTask(t, app, user.ID, gamification.DifficultyEasy)
	completeTask(t, app, user.ID, gamification.DifficultyHard)

	w = serve(t, app, user.ID, http.MethodGet, "/api/analytics/streak", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"current_streak":1,"longest_streak":1,"total_active_days":1}`, w.Body.String())
}

func TestAnalyticsHandler_Summary(t *testing.T) {
	app := newTestApp(t, nil)
	user := app.signup(t, "alice")

	completeTask(t, app, user.ID, gamification.DifficultyMedium)
	_, err := app.taskService.CreateTask(context.Background(), services.CreateTaskInput{UserID: user.ID, Title: "Open"})
	require.NoError(t, err)

	w := serve(t, app, user.ID, http.MethodGet, "/api/analytics/summary?range=30d", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var summary services.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	assert.Equal(t, "30d", summary.Range)
	assert.Equal(t, 2, summary.TotalTasks)
	assert.Equal(t, 1, summary.CompletedTasks)
	assert.Equal(t, 50, summary.CompletionRate)
	assert.Equal(t, 20, summary.XPEarned)
	assert.Len(t, summary.Weekdays, 7)
	assert.Equal(t, 1, summary.Streak.CurrentStreak)

	w = serve(t, app, user.ID, http.MethodGet, "/api/analytics/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"range":"7d"`)

	w = serve(t, app, user.ID, http.MethodGet, "/api/analytics/summary?range=2w", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
