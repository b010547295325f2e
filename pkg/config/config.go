package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config holds every runtime setting the service reads from the environment.
type Config struct {
	Port string `env:"PORT,default=8080"`
	Env  string `env:"ENV,default=development"`

	MongoURI        string `env:"MONGO_URI,default=mongodb://localhost:27017"`
	MongoDatabase   string `env:"MONGO_DATABASE,default=catatanku"`
	PostgresConnStr string `env:"POSTGRES_CONN_STR"`

	FirebaseCredentialsPath string `env:"FIREBASE_CREDENTIALS_PATH,default=./firebase_credentials.json"`
	StorageBucket           string `env:"FIREBASE_STORAGE_BUCKET"`

	// SuperUserID is the single privileged recipient of verification requests.
	SuperUserID string `env:"SUPER_USER_ID,default=GFQXQNBxx6QcYRjWPMFeT3CuBai1"`

	// TagSuggestURL is the endpoint of the external tag-suggestion collaborator.
	// Empty disables tag suggestions.
	TagSuggestURL string `env:"TAG_SUGGEST_URL"`
}

// Load reads the optional .env file and decodes the configuration.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found, assuming environment variables are set.")
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding environment: %w", err)
	}
	return &cfg, nil
}
