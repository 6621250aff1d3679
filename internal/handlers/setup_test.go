package handlers

import (
	"context"
	"strconv"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/levelup-todo-api/internal/constants"
	"github.com/yukikurage/levelup-todo-api/internal/database"
	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"github.com/yukikurage/levelup-todo-api/internal/middleware"
	"github.com/yukikurage/levelup-todo-api/internal/models"
	"github.com/yukikurage/levelup-todo-api/internal/repository"
	"github.com/yukikurage/levelup-todo-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testApp wires every service and handler against an in-memory database.
type testApp struct {
	db *gorm.DB

	authService      *services.AuthService
	profileService   *services.ProfileService
	taskService      *services.TaskService
	visionService    *services.VisionService
	analyticsService *services.AnalyticsService
	tokens           *middleware.TokenManager

	auth      *AuthHandler
	tasks     *TaskHandler
	profile   *ProfileHandler
	analytics *AnalyticsHandler
	visions   *VisionHandler
}

func newTestApp(t *testing.T, generator services.TaskGenerator) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	require.NoError(t, db.AutoMigrate(database.Models()...))
	database.SetDB(db)

	taskRepo := repository.NewTaskRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	userRepo := repository.NewUserRepository(db)
	tx := repository.NewTransactor(db)

	app := &testApp{db: db, tokens: middleware.NewTokenManager("test-secret")}
	app.profileService = services.NewProfileService(profileRepo, userRepo)
	achievementService := services.NewAchievementService(taskRepo, profileRepo,
		repository.NewAchievementRepository(db), tx, gamification.ThresholdAtLeast)
	app.taskService = services.NewTaskService(taskRepo, tx, app.profileService, achievementService, generator)
	app.authService = services.NewAuthService(userRepo, app.profileService)
	app.visionService = services.NewVisionService(repository.NewVisionRepository(db))
	app.analyticsService = services.NewAnalyticsService(taskRepo)

	app.auth = NewAuthHandler(app.authService, app.tokens)
	app.tasks = NewTaskHandler(app.taskService)
	app.profile = NewProfileHandler(app.profileService, achievementService)
	app.analytics = NewAnalyticsHandler(app.analyticsService)
	app.visions = NewVisionHandler(app.visionService)

	return app
}

func (app *testApp) signup(t *testing.T, username string) *models.User {
	t.Helper()
	user, err := app.authService.Signup(context.Background(), services.SignupInput{
		Username: username,
		Password: "supersecret",
	})
	require.NoError(t, err)
	return user
}

// router returns an engine whose requests are authenticated as userID.
func (app *testApp) router(userID uint64) *gin.Engine {
	r := gin.New()
	r.Use(sessions.Sessions(constants.SessionCookieName, cookie.NewStore([]byte("secret"))))
	r.Use(func(c *gin.Context) {
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	})

	api := r.Group("/api")
	api.GET("/tasks", app.tasks.ListTasks)
	api.POST("/tasks", app.tasks.CreateTask)
	api.POST("/tasks/generate", app.tasks.GenerateTasks)
	api.POST("/tasks/bulk-delete", app.tasks.BulkDeleteTasks)

	task := api.Group("/tasks/:id", middleware.RequireTaskAccess(app.taskService))
	task.GET("", app.tasks.GetTask)
	task.PATCH("", app.tasks.UpdateTask)
	task.DELETE("", app.tasks.DeleteTask)
	task.POST("/complete", app.tasks.CompleteTask)

	api.GET("/profile", app.profile.GetProfile)
	api.PATCH("/profile", app.profile.UpdateProfile)
	api.GET("/profile/achievements", app.profile.ListAchievements)
	api.GET("/profile/rewards", app.profile.ListRewards)

	api.GET("/analytics/streak", app.analytics.GetStreak)
	api.GET("/analytics/summary", app.analytics.GetSummary)

	api.GET("/visions", app.visions.ListVisions)
	api.POST("/visions", app.visions.CreateVision)
	vision := api.Group("/visions/:id", middleware.RequireVisionAccess(app.visionService))
	vision.GET("", app.visions.GetVision)
	vision.PATCH("", app.visions.UpdateVision)
	vision.DELETE("", app.visions.DeleteVision)

	return r
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
