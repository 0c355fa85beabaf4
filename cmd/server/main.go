package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/crewhq/backend/internal/application/services"
	"github.com/crewhq/backend/internal/bootstrap"
	"github.com/crewhq/backend/internal/infrastructure/database"
	"github.com/crewhq/backend/internal/infrastructure/persistence"
	"github.com/crewhq/backend/internal/interfaces/middleware"
	"github.com/crewhq/backend/internal/interfaces/rest"
)

func main() {
	// Load .env if present; real deployments set env directly
	if err := godotenv.Load(); err == nil {
		log.Println("📦 Loaded environment from .env")
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}

	// Initialize database connection
	db, err := database.GetInstance()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("✅ Database connection established")

	// Create tables and seed the default stage catalogs
	if err := bootstrap.InitializeSchema(db); err != nil {
		log.Fatalf("Failed to initialize schema: %v", err)
	}
	if err := bootstrap.SeedStageCatalogs(persistence.NewStageRepository(db.DB())); err != nil {
		log.Fatalf("Failed to seed stage catalogs: %v", err)
	}

	// Initialize service manager
	svcMgr := services.NewServiceManager(db)
	log.Println("🔧 Service manager initialized")

	// Create Gin router
	router := gin.Default()
	router.Use(middleware.Cors())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "ok",
			"server": "golang",
		})
	})

	// Initialize handlers
	onboardingHandler := rest.NewOnboardingHandler(svcMgr)
	hiringHandler := rest.NewHiringHandler(svcMgr)
	ptoHandler := rest.NewPTOHandler(svcMgr)
	complianceHandler := rest.NewComplianceHandler(svcMgr)
	leadHandler := rest.NewLeadHandler(svcMgr)
	notificationHandler := rest.NewNotificationHandler(svcMgr)

	requireAuth := middleware.RequireAuth()

	// API routes
	api := router.Group("/api")
	api.Use(requireAuth)
	{
		onboarding := api.Group("/onboarding")
		{
			onboarding.GET("/stages", onboardingHandler.GetStages)
			onboarding.POST("/stages", onboardingHandler.CreateStage)
			onboarding.DELETE("/stages/:id", onboardingHandler.DeactivateStage)
			onboarding.GET("/employee/:id", onboardingHandler.GetEmployeeProgress)
			onboarding.GET("/employee/:id/history", onboardingHandler.GetEmployeeHistory)
			onboarding.POST("/employee/:id/stage/:stageId/complete", onboardingHandler.CompleteStage)
		}

		hiring := api.Group("/hiring")
		{
			hiring.GET("/flows", hiringHandler.GetFlows)
			hiring.POST("/stages", hiringHandler.CreateStage)
			hiring.GET("/candidates", hiringHandler.GetCandidates)
			hiring.POST("/candidates", hiringHandler.CreateCandidate)
			hiring.GET("/candidates/:id/progress", hiringHandler.GetCandidateProgress)
			hiring.POST("/candidates/:id/advance", hiringHandler.AdvanceCandidate)
		}

		pto := api.Group("/pto")
		{
			pto.GET("/requests", ptoHandler.GetRequests)
			pto.POST("/requests", ptoHandler.CreateRequest)
			pto.PUT("/requests/:id", ptoHandler.DecideRequest)
		}

		compliance := api.Group("/compliance")
		{
			compliance.GET("/workers-comp", complianceHandler.GetObligations)
			compliance.POST("/workers-comp", complianceHandler.OpenObligation)
			compliance.POST("/workers-comp/:id/submit", complianceHandler.SubmitObligation)
			compliance.PUT("/workers-comp/:id/review", complianceHandler.ReviewObligation)
		}

		assignments := api.Group("/assignments")
		{
			assignments.GET("", leadHandler.GetAssignments)
			assignments.GET("/qr-scans", leadHandler.GetQRScans)
		}

		qr := api.Group("/qr-generator")
		{
			qr.POST("/leads", leadHandler.CreateLead)
			qr.PUT("/leads/:id", leadHandler.UpdateLead)
			qr.GET("/leads/:id/history", leadHandler.GetLeadHistory)
		}

		routing := api.Group("/routing")
		{
			routing.GET("/rules", leadHandler.GetRoutingRules)
			routing.POST("/rules", leadHandler.CreateRoutingRule)
		}

		notifications := api.Group("/notifications")
		{
			notifications.GET("", notificationHandler.GetNotifications)
			notifications.POST("/:id/read", notificationHandler.MarkAsRead)
		}
	}

	// Start the overdue sweep
	if err := svcMgr.StartScheduler(); err != nil {
		log.Fatalf("Failed to start scheduler: %v", err)
	}

	log.Println("🚀 CrewHQ backend started")
	log.Printf("📍 Server:       http://localhost:%s", port)
	log.Printf("💚 Health check: http://localhost:%s/health", port)

	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	svcMgr.StopScheduler()
	log.Println("🛑 Scheduler stopped")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exiting")
}
