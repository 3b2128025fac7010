// main.go
package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Marga-Ghale/ora-hr-backend/internal/api/handlers"
	"github.com/Marga-Ghale/ora-hr-backend/internal/api/middleware"
	"github.com/Marga-Ghale/ora-hr-backend/internal/config"
	"github.com/Marga-Ghale/ora-hr-backend/internal/cron"
	"github.com/Marga-Ghale/ora-hr-backend/internal/db"
	"github.com/Marga-Ghale/ora-hr-backend/internal/email"
	"github.com/Marga-Ghale/ora-hr-backend/internal/notification"
	"github.com/Marga-Ghale/ora-hr-backend/internal/repository"
	"github.com/Marga-Ghale/ora-hr-backend/internal/seed"
	"github.com/Marga-Ghale/ora-hr-backend/internal/service"
	"github.com/Marga-Ghale/ora-hr-backend/internal/socket"
	"github.com/Marga-Ghale/ora-hr-backend/internal/types"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
)

func main() {
	// ============================================
	// Load environment variables
	// ============================================
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// ============================================
	// Load configuration
	// ============================================
	cfg := config.Load()

	// ============================================
	// Set Gin mode
	// ============================================
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ============================================
	// Run Database Migrations FIRST
	// ============================================
	log.Println("🔄 Running database migrations...")
	migrationsPath := "./internal/db/migrations"
	if err := db.RunMigrations(cfg.DatabaseURL, migrationsPath); err != nil {
		log.Fatalf("❌ Migration failed: %v", err)
	}
	log.Println("✅ Database migrations completed")

	// ============================================
	// Initialize PostgreSQL (pgxpool + sql.DB)
	// ============================================
	postgres, err := db.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to create pgx pool: %v", err)
	}
	defer postgres.Close()

	sqlDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("❌ Failed to open sql DB: %v", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		log.Fatalf("❌ Failed to ping sql DB: %v", err)
	}

	// ============================================
	// Initialize Repositories
	// ============================================
	repos := repository.NewRepositories(postgres.Pool, sqlDB)
	log.Println("📦 Repositories initialized")

	// ============================================
	// Initialize Redis (optional)
	// ============================================
	var redisDB *db.RedisDB
	if cfg.RedisURL != "" {
		redisDB, err = db.NewRedisDB(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️ Failed to connect to Redis: %v (continuing without cache)", err)
		} else {
			defer redisDB.Close()
			log.Println("⚡ Redis cache enabled")
		}
	}

	// ============================================
	// Initialize Email Service (optional)
	// ============================================
	var emailSvc *email.Service
	if cfg.SMTPHost != "" {
		emailSvc = email.NewService(&email.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
			UseTLS:   cfg.SMTPUseTLS,
		})
		log.Println("📧 Email service initialized")
	} else {
		log.Println("⚠️  Email not configured (SMTP_HOST not set)")
	}

	// ============================================
	// Initialize WebSocket Hub
	// ============================================
	hub := socket.NewHub()
	go hub.Run()
	broadcaster := socket.NewBroadcaster(hub)

	// WebSocket handler with JWT secret for self-authentication
	wsHandler := socket.NewHandler(hub, cfg.JWTSecret)
	log.Println("🔌 WebSocket hub initialized")

	// ============================================
	// Seed Data (for development)
	// ============================================
	if cfg.Environment != "production" {
		log.Println("🌱 Seeding development data...")
		seed.SeedData(repos)
	}

	// ============================================
	// Initialize Notification Service
	// ============================================
	notificationSvc := notification.NewService(repos.Notification, repos.Member)
	notificationSvc.SetBroadcaster(broadcaster)

	// ============================================
	// Initialize All Services
	// ============================================
	services := service.NewServices(&service.ServiceDeps{
		Config:      cfg,
		Repos:       repos,
		NotifSvc:    notificationSvc,
		EmailSvc:    emailSvc,
		Broadcaster: broadcaster,
		Redis:       redisDB,
	})
	log.Println("✨ All services initialized")

	// ============================================
	// Initialize Handlers
	// ============================================
	h := handlers.NewHandlers(services)

	// ============================================
	// Initialize Cron Scheduler
	// ============================================
	cronScheduler := cron.NewScheduler(cfg, services, notificationSvc, emailSvc, repos)
	cronScheduler.Start()
	defer cronScheduler.Stop()

	// ============================================
	// Create Gin Router
	// ============================================
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())

	// Configure CORS
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://localhost:5173", "*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"timestamp":  time.Now(),
			"database":   "connected",
			"cache":      getCacheStatus(redisDB),
			"websocket":  "active",
			"ws_clients": hub.GetConnectedClientsCount(),
			"email":      getEmailStatus(emailSvc),
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// ============================================
		// Public routes (no auth required)
		// ============================================
		auth := api.Group("/auth")
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
			auth.POST("/logout", h.Auth.Logout)
		}

		// WebSocket route
		api.GET("/ws", wsHandler.HandleWebSocket)

		// ============================================
		// Protected routes (require auth middleware)
		// ============================================
		protected := api.Group("")
		protected.Use(middleware.AuthMiddleware(services.Auth))
		{
			// Member routes
			members := protected.Group("/members")
			{
				members.GET("/me", h.Member.GetCurrentMember)
				members.PUT("/me", h.Member.UpdateCurrentMember)
				members.GET("", h.Member.List)
				members.GET("/search", h.Member.Search)
				members.GET("/:memberId", h.Member.Get)
				members.PUT("/:memberId", middleware.RequirePermission(services.Role, types.PermOrgEdit), h.Member.Update)
				members.POST("/:memberId/approve", middleware.RequirePermission(services.Role, types.PermOrgEdit), h.Member.Approve)
				members.POST("/:memberId/deactivate", middleware.RequirePermission(services.Role, types.PermOrgEdit), h.Member.Deactivate)

				// Role assignment
				members.GET("/:memberId/roles", h.Role.ListMemberRoles)
				members.POST("/:memberId/roles", middleware.RequirePermission(services.Role, types.PermRoleManage), h.Role.Assign)
				members.DELETE("/:memberId/roles/:roleId", middleware.RequirePermission(services.Role, types.PermRoleManage), h.Role.Unassign)

				// Feedback about a member
				members.GET("/:memberId/feedback", h.Feedback.ListForSubject)
			}

			// Org chart routes
			org := protected.Group("/org")
			{
				org.GET("/chart", h.Org.GetChart)
				org.POST("/validate-move", h.Org.ValidateMove)
				org.PATCH("/members/:memberId/supervisor", middleware.RequirePermission(services.Role, types.PermOrgEdit), h.Org.UpdateSupervisor)
				org.POST("/reassign", middleware.RequirePermission(services.Role, types.PermOrgEdit), h.Org.Reassign)
			}

			// Review cycle routes
			cycles := protected.Group("/cycles")
			{
				cycles.GET("", h.Assessment.ListCycles)
				cycles.GET("/open", h.Assessment.GetOpenCycle)
				cycles.POST("", middleware.RequirePermission(services.Role, types.PermReviewManage), h.Assessment.CreateCycle)
				cycles.PATCH("/:id/status", middleware.RequirePermission(services.Role, types.PermReviewManage), h.Assessment.UpdateCycleStatus)
			}

			// Assessment routes
			assessments := protected.Group("/assessments")
			{
				assessments.PUT("/draft", h.Assessment.SaveDraft)
				assessments.POST("/cycles/:cycleId/submit", h.Assessment.Submit)
				assessments.GET("/cycles/:cycleId/mine", h.Assessment.GetOwn)
				assessments.GET("/:id", h.Assessment.Get)
				assessments.POST("/:id/review", h.Assessment.MarkReviewed)
			}

			// Feedback routes
			feedback := protected.Group("/feedback")
			{
				feedback.POST("", h.Feedback.Create)
				feedback.GET("/authored", h.Feedback.ListAuthored)
				feedback.DELETE("/:id", h.Feedback.Delete)
			}

			// Dashboard routes
			dashboard := protected.Group("/dashboard")
			{
				dashboard.GET("/overview", middleware.RequirePermission(services.Role, types.PermDashboard), h.Dashboard.Overview)
				dashboard.GET("/team", h.Dashboard.Team)
			}

			// Role routes
			roles := protected.Group("/roles")
			{
				roles.GET("", h.Role.List)
				roles.POST("", middleware.RequirePermission(services.Role, types.PermRoleManage), h.Role.Create)
				roles.PUT("/:id", middleware.RequirePermission(services.Role, types.PermRoleManage), h.Role.Update)
				roles.DELETE("/:id", middleware.RequirePermission(services.Role, types.PermRoleManage), h.Role.Delete)
			}

			// Notification routes
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", h.Notification.List)
				notifications.GET("/count", h.Notification.UnreadCount)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
			}

			// Department and stage routes
			departments := protected.Group("/departments")
			{
				departments.GET("", h.Member.ListDepartments)
				departments.POST("", middleware.RequirePermission(services.Role, types.PermOrgEdit), h.Member.CreateDepartment)
			}

			protected.GET("/stages", h.Member.ListStages)
		}
	}

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

func getCacheStatus(redisDB *db.RedisDB) string {
	if redisDB != nil {
		return "connected"
	}
	return "disabled"
}

func getEmailStatus(emailSvc *email.Service) string {
	if emailSvc != nil {
		return "configured"
	}
	return "disabled"
}
