package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	AppPort string
	DSN     string

	MigrateOnStart bool

	JWTSecret string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	GoogleClientID     string
	GoogleClientSecret string
	OAuthRedirectURL   string
	FrontendURI        string

	GeminiAPIKey  string
	KMAServiceKey string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Hour of day (local time) the reminder sweep runs at.
	NotifyHour int
}

// Load reads .env (if present) and builds the config from environment
// variables. A missing .env is not an error; deployments set real env vars.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:            getEnv("APP_PORT", "3001"),
		DSN:                os.Getenv("DATABASE_URL"),
		MigrateOnStart:     os.Getenv("MIGRATE_ON_START") == "true",
		JWTSecret:          os.Getenv("JWT_SECRET"),
		SMTPHost:           os.Getenv("SMTP_HOST"),
		SMTPPort:           getEnv("SMTP_PORT", "587"),
		SMTPUsername:       os.Getenv("EMAIL_USER"),
		SMTPPassword:       os.Getenv("EMAIL_PASS"),
		SMTPFrom:           getEnv("EMAIL_FROM", os.Getenv("EMAIL_USER")),
		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		OAuthRedirectURL:   os.Getenv("OAUTH_REDIRECT_URL"),
		FrontendURI:        getEnv("FRONTEND_URI", "http://localhost:3000"),
		GeminiAPIKey:       os.Getenv("GEMINI_API_KEY"),
		KMAServiceKey:      os.Getenv("KMA_SERVICE_KEY"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            getEnvInt("REDIS_DB", 0),
		NotifyHour:         getEnvInt("NOTIFY_HOUR", 0),
	}

	if cfg.DSN == "" {
		cfg.DSN = fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable TimeZone=UTC",
			getEnv("POSTGRES_HOST", "localhost"),
			getEnv("POSTGRES_USER", "postgres"),
			os.Getenv("POSTGRES_PASSWORD"),
			getEnv("POSTGRES_DB", "diary"),
			getEnv("POSTGRES_PORT", "5432"),
		)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
