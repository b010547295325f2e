package router

import (
	"context"

	"firebase.google.com/go/v4/auth"
	"github.com/catatanku/backend/internal/handlers"
	"github.com/catatanku/backend/internal/middleware"
	"github.com/catatanku/backend/internal/models"
	"github.com/catatanku/backend/internal/repositories"
	"github.com/catatanku/backend/internal/services"
	"github.com/catatanku/backend/internal/session"
	"github.com/catatanku/backend/internal/tags"
	"github.com/catatanku/backend/pkg/config"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
	logrus.Info("Global middleware configured.")
}

// SetupRoutes configures all application routes and injects dependencies.
// The returned context cancel stops the background notification watcher.
func SetupRoutes(e *echo.Echo, cfg *config.Config, db *config.DB, firebaseAuthClient *auth.Client, blobs services.BlobStore) (stop func(), err error) {
	// Per-viewer story seen tracking lives in PostgreSQL
	if err := db.Postgres.AutoMigrate(&models.StorySeen{}); err != nil {
		return nil, err
	}
	logrus.Info("PostgreSQL auto-migrations completed.")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	mongoDB := db.Mongo.Database(cfg.MongoDatabase)

	// --- Repositories ---
	userRepo := repositories.NewMongoUserRepository(mongoDB)
	postRepo := repositories.NewMongoPostRepository(mongoDB)
	storyRepo := repositories.NewStoryRepository(mongoDB, db.Postgres)
	notificationRepo := repositories.NewMongoNotificationRepository(mongoDB)
	txn := repositories.NewMongoTxnRunner(db.Mongo)

	// --- Services ---
	indicators := session.NewRegistry()
	coordinator := services.NewNotificationCoordinator(notificationRepo, userRepo, txn, indicators, cfg.SuperUserID)
	socialGraph := services.NewSocialGraph(userRepo, coordinator, txn)
	engagement := services.NewEngagement(postRepo, userRepo, coordinator)
	stories := services.NewStories(storyRepo, blobs)
	suggester := tags.NewHTTPSuggester(cfg.TagSuggestURL)

	// Every route requires a verified identity, signup included: the auth
	// provider issues the token before the user document exists.
	api := e.Group("/api/v1")
	api.Use(middleware.FirebaseAuthMiddleware(firebaseAuthClient))
	logrus.Info("Firebase authentication middleware applied to /api/v1 group.")

	authHandler := handlers.NewAuthHandler(userRepo)
	authHandler.RegisterAuthRoutes(api.Group("/auth"))
	logrus.Info("Auth routes configured.")

	userHandler := handlers.NewUserHandler(userRepo, postRepo)
	userHandler.RegisterProfileRoutes(api)
	api.GET("/users/search", userHandler.SearchUsers)
	logrus.Info("User profile routes configured.")

	postHandler := handlers.NewPostHandler(postRepo, userRepo, suggester, indicators)
	postHandler.RegisterPostRoutes(api)
	logrus.Info("Post routes configured.")

	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, indicators)
	feedHandler.RegisterFeedRoutes(api)
	logrus.Info("Feed routes configured.")

	followHandler := handlers.NewFollowHandler(socialGraph, userRepo)
	followHandler.RegisterFollowRoutes(api)
	logrus.Info("Follow routes configured.")

	likeHandler := handlers.NewLikeHandler(engagement, postRepo)
	likeHandler.RegisterLikeRoutes(api)
	logrus.Info("Like routes configured.")

	savedPostHandler := handlers.NewSavedPostHandler(engagement)
	savedPostHandler.RegisterSavedPostRoutes(api)
	logrus.Info("Saved post routes configured.")

	storyHandler := handlers.NewStoryHandler(stories, userRepo)
	storyHandler.RegisterStoryRoutes(api)
	logrus.Info("Story routes configured.")

	notificationHandler := handlers.NewNotificationHandler(coordinator, userRepo)
	notificationHandler.RegisterNotificationRoutes(api)
	logrus.Info("Notification routes configured.")

	sessionHandler := handlers.NewSessionHandler(indicators)
	sessionHandler.RegisterSessionRoutes(api)
	logrus.Info("Session routes configured.")

	// Standing watch that flips unread indicators on notification inserts
	watchCtx, cancel := context.WithCancel(context.Background())
	go func() {
		if err := coordinator.Watch(watchCtx); err != nil && watchCtx.Err() == nil {
			logrus.WithError(err).Error("Notification watch stopped")
		}
	}()

	logrus.Info("All routes configured.")
	return cancel, nil
}
