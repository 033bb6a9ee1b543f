package config

import (
	"os"      // For environment variables
	"strconv" // For string to int conversion

	"github.com/joho/godotenv" // For loading .env files
)

// Config holds the application configuration
type Config struct {
	DatabaseURL string // Turso/libSQL connection endpoint
	AuthToken   string // Turso auth token
	AppPort     string // Application port
	JWTSecret   string // JWT secret key
	RedisAddr   string // Redis server address, empty disables caching
	RedisPass   string // Redis password
	RedisDB     int    // Redis database number
	LogLevel    string // Logrus level name
	IsProd      bool   // Is production environment
}

// LoadConfig loads configuration from a .env file (if present) and the environment
func LoadConfig() *Config {
	_ = godotenv.Load() // Load .env file if present
	return FromEnv()
}

// FromEnv builds a Config from the current process environment only
func FromEnv() *Config {
	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	return &Config{
		DatabaseURL: os.Getenv("TURSO_DATABASE_URL"), // Connection endpoint
		AuthToken:   os.Getenv("TURSO_AUTH_TOKEN"),   // Credential
		AppPort:     getEnv("APP_PORT", "8080"),      // Application port
		JWTSecret:   os.Getenv("JWT_SECRET"),         // JWT secret key
		RedisAddr:   os.Getenv("REDIS_ADDR"),         // Redis server address
		RedisPass:   os.Getenv("REDIS_PASS"),         // Redis password
		RedisDB:     redisDB,                         // Redis database number
		LogLevel:    getEnv("LOG_LEVEL", "info"),     // Log level
		IsProd:      os.Getenv("IS_PROD") == "true",  // Is production environment
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return fallback
}
