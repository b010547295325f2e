package main

import (
	"context"

	"github.com/catatanku/backend/internal/router"
	"github.com/catatanku/backend/pkg/config"
	"github.com/catatanku/backend/pkg/firebase"
	"github.com/catatanku/backend/validators"
	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// goJSONSerializer plugs goccy/go-json into Echo in place of encoding/json.
type goJSONSerializer struct{}

func (goJSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (goJSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	return json.NewDecoder(c.Request().Body).Decode(i)
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.Env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	// Initialize database connections
	db, err := config.InitDB(cfg)
	if err != nil {
		logrus.Fatalf("Failed to initialize databases: %v", err)
	}
	defer db.CloseDB()

	// Initialize Firebase
	ctx := context.Background()
	firebaseApp, err := firebase.InitFirebase(ctx, cfg.FirebaseCredentialsPath, cfg.StorageBucket)
	if err != nil {
		logrus.Fatalf("Failed to initialize Firebase: %v", err)
	}

	// Create Echo instance
	e := echo.New()
	e.JSONSerializer = goJSONSerializer{}
	e.Validator = validators.NewValidator()

	// Setup global middleware
	router.SetupMiddleware(e)

	// Setup routes and dependencies
	stop, err := router.SetupRoutes(e, cfg, db, firebaseApp.AuthClient, firebaseApp)
	if err != nil {
		logrus.Fatalf("Failed to set up routes: %v", err)
	}
	defer stop()

	// Start server
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}
