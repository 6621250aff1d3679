package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yukikurage/levelup-todo-api/internal/config"
	"github.com/yukikurage/levelup-todo-api/internal/constants"
	"github.com/yukikurage/levelup-todo-api/internal/database"
	"github.com/yukikurage/levelup-todo-api/internal/gamification"
	"github.com/yukikurage/levelup-todo-api/internal/handlers"
	"github.com/yukikurage/levelup-todo-api/internal/middleware"
	"github.com/yukikurage/levelup-todo-api/internal/repository"
	"github.com/yukikurage/levelup-todo-api/internal/services"
	"gorm.io/gorm"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run migrations and start the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe()
		},
	}
}

func runServe() error {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	store, err := newSessionStore(cfg)
	if err != nil {
		return err
	}

	r, err := setupRouter(cfg, database.GetDB(), store)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	log.Printf("Server starting on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// newSessionStore uses Redis when REDIS_HOST is set and signed cookies otherwise.
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	var store sessions.Store
	if cfg.RedisHost != "" {
		redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
		rs, err := redisStore.NewStore(
			10,        // Redis pool size
			"tcp",     // network type
			redisAddr, // Redis address from config
			"",        // username (empty for default user)
			"",        // password (empty = no password)
			[]byte(cfg.SessionSecret),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}
		store = rs
	} else {
		log.Println("REDIS_HOST not set, using cookie sessions")
		store = cookie.NewStore([]byte(cfg.SessionSecret))
	}

	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return store, nil
}

func setupRouter(cfg *config.Config, db *gorm.DB, store sessions.Store) (*gin.Engine, error) {
	loc, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.TimeZone, err)
	}

	policy, err := gamification.ParseThresholdPolicy(cfg.AchievementThresholdPolicy)
	if err != nil {
		log.Printf("Unknown achievement threshold policy %q, using %s", cfg.AchievementThresholdPolicy, gamification.ThresholdAtLeast)
		policy = gamification.ThresholdAtLeast
	}

	// Repositories
	taskRepo := repository.NewTaskRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	userRepo := repository.NewUserRepository(db)
	tx := repository.NewTransactor(db)

	// AI suggestions are optional
	var generator services.TaskGenerator
	if cfg.OpenAIAPIKey != "" {
		generator = services.NewAIService(cfg.OpenAIAPIKey)
	}

	// Services
	profileService := services.NewProfileService(profileRepo, userRepo)
	achievementService := services.NewAchievementService(taskRepo, profileRepo, repository.NewAchievementRepository(db), tx, policy)
	taskService := services.NewTaskService(taskRepo, tx, profileService, achievementService, generator)
	taskService.SetLocation(loc)
	analyticsService := services.NewAnalyticsService(taskRepo)
	analyticsService.SetLocation(loc)
	visionService := services.NewVisionService(repository.NewVisionRepository(db))
	authService := services.NewAuthService(userRepo, profileService)
	tokens := middleware.NewTokenManager(cfg.JWTSecret)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, tokens)
	taskHandler := handlers.NewTaskHandler(taskService)
	profileHandler := handlers.NewProfileHandler(profileService, achievementService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	visionHandler := handlers.NewVisionHandler(visionService)

	r := gin.Default()
	r.Use(sessions.Sessions(constants.SessionCookieName, store))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "LevelUp API is running",
		})
	})

	requireAuth := middleware.RequireAuth(tokens)

	api := r.Group("/api")
	{
		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authHandler.Signup)
			auth.POST("/login", authHandler.Login)
			auth.POST("/logout", authHandler.Logout)
			auth.POST("/token", requireAuth, authHandler.IssueToken)
			auth.GET("/me", requireAuth, authHandler.GetCurrentUser)
		}

		// Task routes (protected)
		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			taskAccess := middleware.RequireTaskAccess(taskService)

			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/generate", taskHandler.GenerateTasks)
			tasks.POST("/bulk-delete", taskHandler.BulkDeleteTasks)
			tasks.GET("/:id", taskAccess, taskHandler.GetTask)
			tasks.PATCH("/:id", taskAccess, taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskAccess, taskHandler.DeleteTask)
			tasks.POST("/:id/complete", taskAccess, taskHandler.CompleteTask)
		}

		// Profile routes (protected)
		profile := api.Group("/profile")
		profile.Use(requireAuth)
		{
			profile.GET("", profileHandler.GetProfile)
			profile.PATCH("", profileHandler.UpdateProfile)
			profile.GET("/achievements", profileHandler.ListAchievements)
			profile.GET("/rewards", profileHandler.ListRewards)
		}

		// Analytics routes (protected)
		analytics := api.Group("/analytics")
		analytics.Use(requireAuth)
		{
			analytics.GET("/streak", analyticsHandler.GetStreak)
			analytics.GET("/summary", analyticsHandler.GetSummary)
		}

		// Vision routes (protected)
		visions := api.Group("/visions")
		visions.Use(requireAuth)
		{
			visionAccess := middleware.RequireVisionAccess(visionService)

			visions.GET("", visionHandler.ListVisions)
			visions.POST("", visionHandler.CreateVision)
			visions.GET("/:id", visionAccess, visionHandler.GetVision)
			visions.PATCH("/:id", visionAccess, visionHandler.UpdateVision)
			visions.DELETE("/:id", visionAccess, visionHandler.DeleteVision)
		}
	}

	return r, nil
}
