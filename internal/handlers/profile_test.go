package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/levelup-todo-api/internal/dto"
	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/services"
)

func serve(t *testing.T, app *testApp, userID uint64, method, url string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	body := bytes.NewReader(nil)
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, url, body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.router(userID).ServeHTTP(w, req)
	return w
}

func completeTask(t *testing.T, app *testApp, userID uint64, d gamification.Difficulty) {
	t.Helper()
	ctx := context.Background()

	task, err := app.taskService.CreateTask(ctx, services.CreateTaskInput{
		UserID:     userID,
		Title:      "Task",
		Difficulty: d,
	})
	require.NoError(t, err)
	_, err = app.taskService.CompleteTask(ctx, task.ID, userID)
	require.NoError(t, err)
}

func TestProfileHandler_GetProfileCreatesMissingProfile(t *testing.T) {
	app := newTestApp(t, nil)

	// Accounts from before profiles existed have no row yet.
	user := &models.User{Username: "legacy", PasswordHash: "hashedpassword"}
	require.NoError(t, app.db.Create(user).Error)

	w := serve(t, app, user.ID, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var profile dto.ProfileDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "legacy", profile.Username)
	assert.Equal(t, 1, profile.Level)
	assert.Equal(t, 100, profile.XPToNextLevel)

	var count int64
	require.NoError(t, app.db.Model(&models.Profile{}).Where("user_id = ?", user.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestProfileHandler_GetProfileAfterCompletions(t *testing.T) {
	app := newTestApp(t, nil)
	user := app.signup(t, "alice")

	completeTask(t, app, user.ID, gamification.DifficultyEpic)

	w := serve(t, app, user.ID, http.MethodGet, "/api/profile", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var profile dto.ProfileDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	// 96 for the epic task plus 10 for the first completion bonus
	assert.Equal(t, 106, profile.XP)
	assert.Equal(t, 2, profile.Level)
	assert.Equal(t, 6, profile.XPIntoLevel)
	assert.Equal(t, 94, profile.XPToNextLevel)
	assert.Equal(t, 45, profile.Coins)
}

func TestProfileHandler_UpdateProfile(t *testing.T) {
	app := newTestApp(t, nil)
	user := app.signup(t, "alice")

	w := serve(t, app, user.ID, http.MethodPatch, "/api/profile", map[string]any{"username": "  Alice W.  "})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"username":"Alice W."`)

	w = serve(t, app, user.ID, http.MethodPatch, "/api/profile", map[string]any{"username": ""})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// balances are not editable through the profile endpoint
	w = serve(t, app, user.ID, http.MethodPatch, "/api/profile", map[string]any{"xp": 5000})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"xp":0`)
}

func TestProfileHandler_ListAchievements(t *testing.T) {
	app := newTestApp(t, nil)
	user := app.signup(t, "alice")

	completeTask(t, app, user.ID, gamification.DifficultyEasy)

	w := serve(t, app, user.ID, http.MethodGet, "/api/profile/achievements", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.AchievementListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Earned, 1)
	assert.Equal(t, gamification.AchievementFirstTodo, resp.Earned[0].Kind)
	assert.NotNil(t, resp.Earned[0].EarnedAt)
	assert.Len(t, resp.Available, len(gamification.Catalog())-1)
	assert.Equal(t, string(gamification.ThresholdAtLeast), resp.Policy)
}

func TestProfileHandler_ListRewards(t *testing.T) {
	app := newTestApp(t, nil)
	user := app.signup(t, "alice")

	completeTask(t, app, user.ID, gamification.DifficultyMedium)

	w := serve(t, app, user.ID, http.MethodGet, "/api/profile/rewards", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Rewards    []dto.RewardEventDTO `json:"rewards"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(2), resp.Pagination.Total)
	require.Len(t, resp.Rewards, 2)

	total := 0
	sources := map[models.RewardSource]int{}
	for _, r := range resp.Rewards {
		total += r.XP
		sources[r.Source]++
	}
	assert.Equal(t, 34, total)
	assert.Equal(t, 1, sources[models.RewardSourceTaskCompletion])
	assert.Equal(t, 1, sources[models.RewardSourceAchievementBonus])
}
