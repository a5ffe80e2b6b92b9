package main

import (
	"log"

	"github.com/gin-contrib/sessions"
	redisStore "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"
	"github.com/shirayuki/taskboard/internal/board"
	"github.com/shirayuki/taskboard/internal/config"
	"github.com/shirayuki/taskboard/internal/database"
	"github.com/shirayuki/taskboard/internal/handlers"
	"github.com/shirayuki/taskboard/internal/middleware"
	"github.com/shirayuki/taskboard/internal/repository"
	"github.com/shirayuki/taskboard/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	if err := database.AddIndexes(database.GetDB()); err != nil {
		log.Fatalf("Failed to add indexes: %v", err)
	}

	// Initialize Gin router
	r := gin.Default()

	// Setup session middleware with Redis
	redisAddr := cfg.RedisHost + ":" + cfg.RedisPort
	store, err := redisStore.NewStore(
		10,        // Redis pool size
		"tcp",     // network type
		redisAddr, // Redis address from config
		"",        // username (empty for default user)
		"",        // password (empty = no password)
		[]byte(cfg.SessionSecret), // authentication key
	)
	if err != nil {
		log.Fatalf("Failed to create Redis store: %v", err)
	}
	// Configure session options based on environment
	isProduction := cfg.GinMode == "release"
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7, // 7 days
		HttpOnly: true,
		Secure:   isProduction,
		SameSite: 2, // SameSite=Lax (1=Strict, 2=Lax, 3=None)
	})
	r.Use(sessions.Sessions("taskboard_session", store))

	// Initialize repositories and services
	db := database.GetDB()
	projectRepo := repository.NewProjectRepository(db)
	statusRepo := repository.NewStatusRepository(db)
	milestoneRepo := repository.NewMilestoneRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	projectService := services.NewProjectService(projectRepo)
	statusService := services.NewStatusService(statusRepo)
	milestoneService := services.NewMilestoneService(milestoneRepo, taskRepo)
	taskService := services.NewTaskService(taskRepo, statusRepo, milestoneRepo)

	// One board store per browser session
	boardManager := board.NewManager(func() *board.Store {
		return board.NewStore(projectService, statusService, milestoneService, taskService)
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(boardManager)
	projectHandler := handlers.NewProjectHandler(projectService)
	boardHandler := handlers.NewBoardHandler(boardManager)
	taskHandler := handlers.NewTaskHandler(taskService)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Task board API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (identity provider in front of the service)
		auth := api.Group("/auth")
		{
			auth.POST("/session", authHandler.CreateSession)
			auth.DELETE("/session", authHandler.DeleteSession)
			auth.GET("/me", middleware.RequireAuth(), authHandler.GetCurrentUser)
		}

		// Project routes (protected)
		projects := api.Group("/projects")
		projects.Use(middleware.RequireAuth())
		{
			projects.POST("", projectHandler.CreateProject)
			projects.GET("", projectHandler.ListProjects)
			projects.GET("/:id", middleware.RequireProjectAccess(), projectHandler.GetProject)
			projects.POST("/:id/invitation", middleware.RequireProjectAccess(), middleware.RequireProjectOwner(), projectHandler.CreateInvitation)
			projects.GET("/:id/board", middleware.RequireProjectAccess(), boardHandler.LoadBoard)
		}

		// Invitation routes (protected)
		invitations := api.Group("/invitations")
		invitations.Use(middleware.RequireAuth())
		{
			invitations.GET("/:code", projectHandler.LookupInvitation)
			invitations.POST("/:code/redeem", projectHandler.RedeemInvitation)
		}

		// Board routes operate on the session's loaded projection
		boardRoutes := api.Group("/board")
		boardRoutes.Use(middleware.RequireAuth())
		{
			boardRoutes.GET("", boardHandler.GetBoard)
			boardRoutes.POST("/statuses", boardHandler.CreateStatus)
			boardRoutes.PATCH("/statuses/:status_id", boardHandler.RenameStatus)
			boardRoutes.DELETE("/statuses/:status_id", boardHandler.DeleteStatus)
			boardRoutes.POST("/tasks", boardHandler.CreateTask)
			boardRoutes.PATCH("/tasks/:task_id/name", boardHandler.RenameTask)
			boardRoutes.PATCH("/tasks/:task_id/description", boardHandler.SetTaskDescription)
			boardRoutes.PATCH("/tasks/:task_id/dates", boardHandler.UpdateTaskDates)
			boardRoutes.POST("/tasks/:task_id/move", boardHandler.MoveTask)
			boardRoutes.POST("/tasks/:task_id/milestone", boardHandler.AssignMilestone)
			boardRoutes.DELETE("/tasks/:task_id", boardHandler.DeleteTask)
			boardRoutes.POST("/milestones", boardHandler.CreateMilestone)
			boardRoutes.DELETE("/milestones/:milestone_id", boardHandler.DeleteMilestone)
		}

		// Task relations the projection does not track
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(), middleware.RequireTaskAccess())
		{
			tasks.GET("/:task_id/assignees", taskHandler.ListAssignees)
			tasks.POST("/:task_id/assignees", taskHandler.AssignUser)
			tasks.DELETE("/:task_id/assignees/:user_id", taskHandler.UnassignUser)
			tasks.POST("/:task_id/dependencies", taskHandler.CreateDependency)
			tasks.DELETE("/:task_id/dependencies/:dependency_id", taskHandler.DeleteDependency)
		}
	}

	// Start server
	log.Printf("Server starting on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
