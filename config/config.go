package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// This function will Load the ENVIORNMENT VARIABLES from .env if GO_ENV variable is not set
func LoadENV() error {
	goEnv := os.Getenv("GO_ENV")

	if goEnv == "" || goEnv == "development" {
		err := godotenv.Load()
		if err != nil && !os.IsNotExist(err) {
			return err
		}
	}

	return nil
}

type EnviornmentVariable struct {
	GO_ENV string
	PORT   int
	// Database
	DB_DRIVER    string // postgres or sqlite
	DB_USER_NAME string
	DB_PASSWORD  string
	DB_NAME      string
	DB_HOST      string
	DB_PORT      string
	DB_SSL_MODE  string
	DB_PATH      string // sqlite file path
	// JWT Configuration
	JWT_ACCESS_SECRET  string
	JWT_REFRESH_SECRET string
	JWT_ISSUER         string
	JWT_ACCESS_EXPIRY  time.Duration
	JWT_REFRESH_EXPIRY time.Duration
	// Redis Configuration
	REDIS_URL string
	// HTTP
	ALLOWED_ORIGINS     string
	RATE_LIMIT_REQUESTS int
	RATE_LIMIT_WINDOW   time.Duration
	// Background jobs
	CRON_ENABLED bool
	// S3-compatible object storage (DigitalOcean Spaces, MinIO, S3)
	DO_SPACES_KEY      string
	DO_SPACES_SECRET   string
	DO_SPACES_BUCKET   string
	DO_SPACES_REGION   string
	DO_SPACES_ENDPOINT string
	DO_SPACES_CDN_URL  string
}

func Get() (*EnviornmentVariable, error) {

	port, err := strconv.Atoi(os.Getenv("PORT"))
	if err != nil {
		port = 8080
	}

	// Both secrets fall back to the legacy single secret
	accessSecret := getEnv("JWT_ACCESS_SECRET", os.Getenv("JWT_SECRET"))
	refreshSecret := getEnv("JWT_REFRESH_SECRET", os.Getenv("JWT_SECRET"))

	envVariables := &EnviornmentVariable{
		GO_ENV: os.Getenv("GO_ENV"),
		PORT:   port,
		// Database
		DB_DRIVER:    getEnv("DB_DRIVER", "postgres"),
		DB_USER_NAME: os.Getenv("DB_USER_NAME"),
		DB_PASSWORD:  os.Getenv("DB_PASSWORD"),
		DB_NAME:      os.Getenv("DB_NAME"),
		DB_HOST:      getEnv("DB_HOST", "localhost"),
		DB_PORT:      getEnv("DB_PORT", "5432"),
		DB_SSL_MODE:  getEnv("DB_SSL_MODE", "disable"),
		DB_PATH:      getEnv("DB_PATH", "learnhub.db"),
		// JWT
		JWT_ACCESS_SECRET:  accessSecret,
		JWT_REFRESH_SECRET: refreshSecret,
		JWT_ISSUER:         getEnv("JWT_ISSUER", "learnhub-api"),
		JWT_ACCESS_EXPIRY:  getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
		JWT_REFRESH_EXPIRY: getDuration("JWT_REFRESH_EXPIRY", 7*24*time.Hour),
		// Redis
		REDIS_URL: os.Getenv("REDIS_URL"),
		// HTTP
		ALLOWED_ORIGINS:     getEnv("ALLOWED_ORIGINS", "http://localhost:3000"),
		RATE_LIMIT_REQUESTS: getInt("RATE_LIMIT_REQUESTS", 100),
		RATE_LIMIT_WINDOW:   getDuration("RATE_LIMIT_WINDOW", time.Minute),
		// Cron is on unless explicitly disabled
		CRON_ENABLED: os.Getenv("CRON_ENABLED") != "false",
		// Object storage
		DO_SPACES_KEY:      os.Getenv("DO_SPACES_KEY"),
		DO_SPACES_SECRET:   os.Getenv("DO_SPACES_SECRET"),
		DO_SPACES_BUCKET:   os.Getenv("DO_SPACES_BUCKET"),
		DO_SPACES_REGION:   getEnv("DO_SPACES_REGION", "nyc3"),
		DO_SPACES_ENDPOINT: os.Getenv("DO_SPACES_ENDPOINT"),
		DO_SPACES_CDN_URL:  os.Getenv("DO_SPACES_CDN_URL"),
	}

	return envVariables, nil
}

// IsProduction reports whether the app runs with GO_ENV=production.
func (e *EnviornmentVariable) IsProduction() bool {
	return e.GO_ENV == "production"
}

// Validate rejects configurations the server cannot start with
func (e *EnviornmentVariable) Validate() error {
	if e.JWT_ACCESS_SECRET == "" || e.JWT_REFRESH_SECRET == "" {
		return errors.New("JWT_ACCESS_SECRET and JWT_REFRESH_SECRET (or JWT_SECRET) must be set")
	}
	if e.IsProduction() && e.JWT_ACCESS_SECRET == e.JWT_REFRESH_SECRET {
		return errors.New("access and refresh tokens must use different secrets in production")
	}
	switch e.DB_DRIVER {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", e.DB_DRIVER)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(os.Getenv(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
