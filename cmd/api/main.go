package main

import (
	"log"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/routegenius/logistics-backend/internal/database"
	"github.com/routegenius/logistics-backend/internal/handlers"
	"github.com/routegenius/logistics-backend/internal/middleware"
	"github.com/routegenius/logistics-backend/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found, using environment variables")
	}

	db, err := database.InitDB()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Get underlying SQL DB instance
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get database instance: %v", err)
	}

	// Configure connection pool
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Redis backs the unread-count cache and parcel update fan-out; the
	// service falls back to the database when it is unavailable.
	if err := services.InitRedis(); err != nil {
		log.Printf("Redis initialization warning: %v", err)
	}

	// Initialize WebSocket hub
	hub := services.NewHub()
	go hub.Run()

	userService := services.NewUserService(db)
	notificationService := services.NewNotificationService(db, hub)
	parcelService := services.NewParcelService(db, notificationService)
	feedbackService := services.NewFeedbackService(db)

	// Initialize router
	r := gin.Default()

	// Configure CORS
	config := cors.DefaultConfig()
	config.AllowOrigins = []string{"*"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	r.Use(cors.New(config))

	// Routes
	api := r.Group("/api")
	{
		// Public routes
		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.Register(userService))
			auth.POST("/login", handlers.Login(userService))
		}

		// WebSocket connection for live parcel updates
		api.GET("/ws", middleware.AuthMiddleware(), handlers.WebSocketHandler(hub))

		// Protected routes
		protected := api.Group("/")
		protected.Use(middleware.AuthMiddleware())
		{
			// User routes
			users := protected.Group("/users")
			{
				users.GET("", middleware.RequireAdmin(), handlers.GetAllUsers(userService))
				users.POST("/admin/create", middleware.RequireAdmin(), handlers.CreateUserByAdmin(userService))
				users.GET("/:id", handlers.GetUser(userService))
				users.PUT("/:id", handlers.UpdateUser(userService))
				users.DELETE("/:id", middleware.RequireAdmin(), handlers.DeleteUser(userService))
			}

			// Parcel routes
			parcels := protected.Group("/parcels")
			{
				parcels.POST("", middleware.RequireAdmin(), handlers.CreateParcel(parcelService))
				parcels.PUT("/:id", middleware.RequireAdmin(), handlers.UpdateParcel(parcelService))
				parcels.GET("/all", middleware.RequireAdmin(), handlers.GetAllParcels(parcelService))
				parcels.GET("/my-parcels", handlers.GetMyParcels(parcelService))
				parcels.GET("/track/:trackingCode", handlers.TrackParcel(parcelService))
				parcels.DELETE("/:id", middleware.RequireAdmin(), handlers.DeleteParcel(parcelService))
			}

			// Feedback routes
			feedback := protected.Group("/feedback")
			{
				feedback.POST("", handlers.SubmitFeedback(feedbackService))
				feedback.GET("", middleware.RequireAdmin(), handlers.GetAllFeedback(feedbackService))
				feedback.GET("/exists/:parcelId", handlers.FeedbackExists(feedbackService))
				feedback.DELETE("/:id", middleware.RequireAdmin(), handlers.DeleteFeedback(feedbackService))
			}

			// Notification routes
			notifications := protected.Group("/notifications")
			{
				notifications.GET("", handlers.GetNotifications(notificationService))
				notifications.GET("/unread/count", handlers.GetUnreadCount(notificationService))
				notifications.PUT("/read/:id", handlers.MarkNotificationRead(notificationService))
				notifications.DELETE("/:id", middleware.RequireAdmin(), handlers.DeleteNotification(notificationService))
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
