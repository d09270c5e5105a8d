package config

import (
	"time"

	"github.com/spf13/viper"
)

// DefaultDatabasePath is the default path for the application database.
const DefaultDatabasePath = "./bookstore.db"

type (
	Config struct {
		HTTP
		Global
		Database
		Auth
		Uploads
		Import
	}

	HTTP struct {
		Port int32
		Host string
		// PublicBaseURL is the externally visible origin used when
		// composing image URLs, e.g. "https://shop.example.com".
		PublicBaseURL string
		// CORSOrigins lists allowed browser origins; "*" allows any.
		CORSOrigins []string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Auth struct {
		JWTSecret   string
		TokenExpiry time.Duration
		BcryptCost  int
	}

	Uploads struct {
		Dir string
		// MaxSizeMB caps a single uploaded image.
		MaxSizeMB int
		// SweepSchedule is a cron expression for the orphan-image sweep;
		// empty disables it.
		SweepSchedule string
	}

	Import struct {
		// DefaultPassword is assigned to every bulk-imported user.
		DefaultPassword string
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8188)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("public_base_url", "http://localhost:8188")
	v.SetDefault("cors_origins", "*")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("jwt_secret", "") // must be set outside local dev
	v.SetDefault("token_expiry", "24h")
	v.SetDefault("bcrypt_cost", 12)

	// Upload defaults
	v.SetDefault("uploads_dir", "./uploads")
	v.SetDefault("upload_max_size_mb", 2)
	v.SetDefault("uploads_sweep_schedule", "0 3 * * *") // daily at 03:00

	// Import defaults
	v.SetDefault("import_default_password", "123456789")

	return &Config{
		HTTP: HTTP{
			Port:          v.GetInt32("PORT"),
			Host:          v.GetString("HOST"),
			PublicBaseURL: v.GetString("PUBLIC_BASE_URL"),
			CORSOrigins:   v.GetStringSlice("CORS_ORIGINS"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			JWTSecret:   v.GetString("JWT_SECRET"),
			TokenExpiry: v.GetDuration("TOKEN_EXPIRY"),
			BcryptCost:  v.GetInt("BCRYPT_COST"),
		},
		Uploads: Uploads{
			Dir:           v.GetString("UPLOADS_DIR"),
			MaxSizeMB:     v.GetInt("UPLOAD_MAX_SIZE_MB"),
			SweepSchedule: v.GetString("UPLOADS_SWEEP_SCHEDULE"),
		},
		Import: Import{
			DefaultPassword: v.GetString("IMPORT_DEFAULT_PASSWORD"),
		},
	}
}
