package main

import (
	"context"
	"log"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cservice/cservice-backend/internal/booking"
	"github.com/cservice/cservice-backend/internal/config"
	"github.com/cservice/cservice-backend/internal/database"
	"github.com/cservice/cservice-backend/internal/handlers"
	"github.com/cservice/cservice-backend/internal/metrics"
	"github.com/cservice/cservice-backend/internal/middleware"
	"github.com/cservice/cservice-backend/internal/services"
	"github.com/cservice/cservice-backend/internal/tasks"
	"github.com/cservice/cservice-backend/pkg/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	config.LoadConfig()
	cfg := config.AppConfig

	utils.InitializeLogger(cfg.IsProduction())
	logger := utils.GetLogger()
	defer logger.Sync()

	// Initialize database with better error handling
	db, err := database.InitDB(cfg)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}

	if err := database.RunMigrations(db); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get database instance", zap.Error(err))
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Initialize Redis
	if err := services.InitRedis(cfg.RedisURL); err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}

	// Notification pipeline: enqueue on commit, deliver in the background
	redisOpt, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to parse Redis URL for task queue", zap.Error(err))
	}
	asynqClient := asynq.NewClient(redisOpt)
	defer asynqClient.Close()

	worker, mux, err := tasks.NewWorker(cfg.RedisURL, logger)
	if err != nil {
		logger.Fatal("Failed to build notification worker", zap.Error(err))
	}
	go func() {
		if err := worker.Run(mux); err != nil {
			logger.Fatal("Notification worker stopped", zap.Error(err))
		}
	}()

	// Booking engine
	calendar := booking.NewCalendar(cfg.BusinessHoursStart, cfg.BusinessHoursEnd, cfg.SlotDuration())
	svc := booking.NewService(
		booking.NewGormStore(db),
		calendar,
		booking.SystemClock{},
		tasks.NewAsynqDispatcher(asynqClient),
		booking.Config{
			CancelWindow:   cfg.CancelWindow(),
			DefaultPerPage: cfg.DefaultPerPage,
			MaxPerPage:     cfg.MaxPerPage,
		},
		logger,
	)

	metrics.Register()

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()
	go services.RelayBookingEvents(context.Background(), hub)

	// Initialize router
	r := gin.Default()

	// Configure CORS
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"wsClients": hub.GetConnectedClients(),
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(db))
			auth.POST("/login", handlers.Login(db))
		}

		// WebSocket connection
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("/profile", handlers.GetProfile(db))
				users.PUT("/profile", handlers.UpdateProfile(db))
			}

			// Assistant chat
			chat := protected.Group("/chat")
			{
				chat.POST("", handlers.ChatMessage(db))
				chat.GET("/history", handlers.GetChatHistory(db))
			}

			// Booking routes
			bookings := protected.Group("/bookings")
			{
				bookings.POST("", handlers.CreateBooking(svc))
				bookings.GET("", handlers.ListBookings(svc))
				bookings.GET("/slots", handlers.GetAvailableSlots(svc))
				bookings.GET("/:id", handlers.GetBooking(svc))
				bookings.PATCH("/:id", handlers.UpdateBooking(svc))
				bookings.POST("/:id/cancel", handlers.CancelBooking(svc))
			}
		}
	}

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}
