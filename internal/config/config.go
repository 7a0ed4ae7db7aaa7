package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// APIBaseURL is the backend root including the /api prefix.
	APIBaseURL string
	// StatePath is the local state database file.
	StatePath string
	LogLevel  string
	// HTTPTimeout bounds every backend call.
	HTTPTimeout time.Duration

	// Stub backend settings.
	Port        int
	DatabaseURL string
	DBPath      string
	JWTSecret   string
}

func Load() Config {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("notice: .env file not found: %v, using system environment", err)
	}

	return Config{
		APIBaseURL:  envDefault("API_BASE_URL", "http://localhost:8000/api"),
		StatePath:   envDefault("STATE_PATH", defaultStatePath()),
		LogLevel:    envDefault("LOG_LEVEL", "info"),
		HTTPTimeout: envDurationDefault("HTTP_TIMEOUT", 10*time.Second),

		Port:        envIntDefault("PORT", 8000),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		DBPath:      envDefault("DB_PATH", "stubserver.db"),
		JWTSecret:   envDefault("JWT_SECRET", "dev-only-secret"),
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "storefront.db"
	}
	return dir + string(os.PathSeparator) + "storefront" + string(os.PathSeparator) + "state.db"
}

func envDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envDurationDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
