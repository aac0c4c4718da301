package router

import (
	"context"
	"time"

	"firebase.google.com/go/v4/auth"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/nahid71/vibegram/backend/internal/handlers"
	"github.com/nahid71/vibegram/backend/internal/middleware"
	"github.com/nahid71/vibegram/backend/internal/models"
	"github.com/nahid71/vibegram/backend/internal/notify"
	"github.com/nahid71/vibegram/backend/internal/realtime"
	"github.com/nahid71/vibegram/backend/internal/repositories"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	e.Use(eMiddleware.Logger())
}

// Options carries the dependencies the route tree needs
type Options struct {
	Postgres      *gorm.DB
	Mongo         *mongo.Client
	MongoDatabase string
	FirebaseAuth  *auth.Client
	Hub           *realtime.Hub
	StoryTTL      time.Duration
	JWTSecret     string
	Log           *zap.SugaredLogger
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, opts Options) error {
	log := opts.Log

	// AutoMigrate PostgreSQL models
	err := opts.Postgres.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.FollowRequest{},
		&models.Comment{},
		&models.Like{},
		&models.Notification{},
		&models.Report{},
	)
	if err != nil {
		return err
	}
	log.Info("PostgreSQL auto-migrations completed for all models.")

	mongoDB := opts.Mongo.Database(opts.MongoDatabase)

	// --- Initialize repositories ---
	userRepo := repositories.NewPostgresUserRepository(opts.Postgres)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	storyRepo := repositories.NewMongoStoryRepository(mongoDB, opts.StoryTTL)
	followRepo := repositories.NewPostgresFollowRepository(opts.Postgres)
	likeRepo := repositories.NewPostgresLikeRepository(opts.Postgres)
	commentRepo := repositories.NewPostgresCommentRepository(opts.Postgres)
	notificationRepo := repositories.NewPostgresNotificationRepository(opts.Postgres)
	reportRepo := repositories.NewPostgresReportRepository(opts.Postgres)

	// Story expiry is enforced by the store's TTL index.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := storyRepo.EnsureIndexes(ctx); err != nil {
		return err
	}
	log.Info("MongoDB story TTL index ensured.")

	emitter := notify.NewEmitter(notificationRepo, opts.Hub, log)

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, opts.FirebaseAuth, opts.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)
	log.Info("Auth routes configured.")

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(opts.JWTSecret))

	// User profile routes
	userHandler := handlers.NewUserHandler(userRepo, followRepo, storyRepo, postRepo, notificationRepo)
	userHandler.RegisterProfileRoutes(api)
	api.GET("/users/search", userHandler.SearchUsers)
	log.Info("User profile routes configured.")

	// Story routes
	storyHandler := handlers.NewStoryHandler(storyRepo, userRepo, followRepo, reportRepo, notificationRepo, emitter)
	storyHandler.RegisterStoryRoutes(api)
	log.Info("Story routes configured.")

	// Post routes
	postHandler := handlers.NewPostHandler(postRepo, userRepo, likeRepo, commentRepo, reportRepo, notificationRepo, emitter)
	postHandler.RegisterPostRoutes(api)
	log.Info("Post routes configured.")

	// Feed routes
	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, followRepo, likeRepo)
	feedHandler.RegisterFeedRoutes(api)
	log.Info("Feed routes configured.")

	// Follow routes
	followHandler := handlers.NewFollowHandler(followRepo, userRepo, notificationRepo, emitter)
	followHandler.RegisterFollowRoutes(api)
	log.Info("Follow routes configured.")

	// Notification routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	log.Info("Notification routes configured.")

	// Report routes
	reportHandler := handlers.NewReportHandler(reportRepo)
	reportHandler.RegisterReportRoutes(api)
	log.Info("Report routes configured.")

	// Realtime channel
	realtimeHandler := handlers.NewRealtimeHandler(opts.Hub)
	realtimeHandler.RegisterRealtimeRoutes(api)
	log.Info("Realtime routes configured.")

	log.Info("All routes configured.")
	return nil
}
