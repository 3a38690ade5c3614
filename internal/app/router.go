// Package app wires repositories, services and handlers into the HTTP router.
package app

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yukikurage/project-management-api/internal/auth"
	"github.com/yukikurage/project-management-api/internal/config"
	"github.com/yukikurage/project-management-api/internal/constants"
	apierrors "github.com/yukikurage/project-management-api/internal/errors"
	"github.com/yukikurage/project-management-api/internal/handlers"
	"github.com/yukikurage/project-management-api/internal/logger"
	"github.com/yukikurage/project-management-api/internal/mail"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/services"
	"github.com/yukikurage/project-management-api/internal/validator"
)

// Dependencies are the collaborators the router is built from.
type Dependencies struct {
	Config *config.Config
	DB     *gorm.DB
	Mailer mail.Mailer
	// Generator may be nil; task generation then answers 503.
	Generator services.TaskGenerator
	// Clock overrides the token clock. Used by tests.
	Clock func() time.Time
	// RateLimiter guards the auth routes. When nil one is built from the
	// server config; pass one in to prune it from outside.
	RateLimiter *middleware.RateLimiter
}

// NewRouter builds the gin engine with every route mounted under the API prefix.
func NewRouter(deps Dependencies) *gin.Engine {
	cfg := deps.Config
	validator.Register()

	userRepo := repository.NewUserRepository(deps.DB)
	projectRepo := repository.NewProjectRepository(deps.DB)
	membershipRepo := repository.NewMembershipRepository(deps.DB)
	taskRepo := repository.NewTaskRepository(deps.DB)
	subTaskRepo := repository.NewSubTaskRepository(deps.DB)

	tokens := auth.NewTokenService(cfg.Tokens, userRepo)
	if deps.Clock != nil {
		tokens.WithClock(deps.Clock)
	}

	authService := services.NewAuthService(userRepo, tokens, deps.Mailer, cfg.Mail)
	projectService := services.NewProjectService(projectRepo, membershipRepo)
	membershipService := services.NewMembershipService(projectRepo, membershipRepo, userRepo)
	taskService := services.NewTaskService(taskRepo, subTaskRepo, membershipRepo, deps.Generator)
	subTaskService := services.NewSubTaskService(subTaskRepo)

	authHandler := handlers.NewAuthHandler(authService, handlers.CookieConfig{
		Secure:     cfg.Server.SecureCookies,
		AccessTTL:  cfg.Tokens.AccessTTL,
		RefreshTTL: cfg.Tokens.RefreshTTL,
	})
	projectHandler := handlers.NewProjectHandler(projectService, membershipService)
	taskHandler := handlers.NewTaskHandler(taskService, subTaskService)
	healthHandler := handlers.NewHealthHandler(deps.DB)

	limiter := deps.RateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimitPerMin)
	}

	r := gin.New()
	if err := r.SetTrustedProxies(cfg.Server.TrustedProxies); err != nil {
		logger.Error("Invalid trusted proxies, trusting none", "error", err)
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middleware.RequestID(), middleware.Logging(), apierrors.Handler())
	if len(cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	requireAuth := middleware.RequireAuth(tokens, userRepo)
	anyMember := middleware.RequireProjectRole(membershipRepo)
	adminOnly := middleware.RequireProjectRole(membershipRepo, models.RoleAdmin)
	taskManagers := middleware.RequireProjectRole(membershipRepo, models.RoleAdmin, models.RoleProjectAdmin)
	requireTask := middleware.RequireTask(taskRepo)

	api := r.Group(constants.APIPrefix)
	{
		api.GET("/healthcheck", healthHandler.HealthCheck)

		// Auth routes
		authRoutes := api.Group("/auth")
		authRoutes.Use(limiter.Middleware())
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.GET("/verify-email/:token", authHandler.VerifyEmail)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
			authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
			authRoutes.POST("/reset-password/:token", authHandler.ResetPassword)

			authRoutes.GET("/logout", requireAuth, authHandler.Logout)
			authRoutes.GET("/current-user", requireAuth, authHandler.GetCurrentUser)
			authRoutes.POST("/change-password", requireAuth, authHandler.ChangePassword)
			authRoutes.POST("/resend-email-verification", requireAuth, authHandler.ResendEmailVerification)
		}

		// Project routes
		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:projectId", anyMember, projectHandler.GetProject)
			projects.PUT("/:projectId", adminOnly, projectHandler.UpdateProject)
			projects.DELETE("/:projectId", adminOnly, projectHandler.DeleteProject)

			projects.GET("/:projectId/members", anyMember, projectHandler.ListMembers)
			projects.POST("/:projectId/members", adminOnly, projectHandler.AddMember)
			projects.PUT("/:projectId/members/:userId", adminOnly, projectHandler.UpdateMemberRole)
			projects.DELETE("/:projectId/members/:userId", adminOnly, projectHandler.RemoveMember)

			projects.GET("/:projectId/tasks", anyMember, taskHandler.ListTasks)
			projects.POST("/:projectId/tasks", taskManagers, taskHandler.CreateTask)
			projects.POST("/:projectId/tasks/generate", taskManagers, taskHandler.GenerateTasks)
			projects.GET("/:projectId/tasks/:taskId", anyMember, requireTask, taskHandler.GetTask)
			projects.PUT("/:projectId/tasks/:taskId", taskManagers, requireTask, taskHandler.UpdateTask)
			projects.DELETE("/:projectId/tasks/:taskId", taskManagers, requireTask, taskHandler.DeleteTask)

			projects.POST("/:projectId/tasks/:taskId/subtasks", anyMember, requireTask, taskHandler.CreateSubTask)
			projects.PUT("/:projectId/tasks/:taskId/subtasks/:subtaskId", anyMember, requireTask, taskHandler.UpdateSubTask)
			projects.DELETE("/:projectId/tasks/:taskId/subtasks/:subtaskId", taskManagers, requireTask, taskHandler.DeleteSubTask)
		}
	}

	return r
}
