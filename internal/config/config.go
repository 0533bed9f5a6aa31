package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	GinMode       string
	ListenAddr    string

	// AllowedOrigins feeds the CSRF origin check.
	AllowedOrigins []string

	// Account policy knobs. Injectable so tests can use small values.
	LoginMinLength    int
	PasswordMinLength int

	// Password-reset token lifetime and the minimum gap between two
	// reset requests for the same account.
	PasswordResetHours        int
	PasswordResetRetryMinutes int
}

func Load() *Config {
	return &Config{
		DBDriver:      getEnv("DB_DRIVER", "mysql"),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "3306"),
		DBUser:        getEnv("DB_USER", "timetrack"),
		DBPassword:    getEnv("DB_PASSWORD", "timetrack"),
		DBName:        getEnv("DB_NAME", "timetrack"),
		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		ListenAddr:    getEnv("LISTEN_ADDR", ":8080"),

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:8080"), ","),

		LoginMinLength:    getEnvInt("LOGIN_MIN_LENGTH", 5),
		PasswordMinLength: getEnvInt("PASSWORD_MIN_LENGTH", 8),

		PasswordResetHours:        getEnvInt("PASSWORD_RESET_HOURS", 24),
		PasswordResetRetryMinutes: getEnvInt("PASSWORD_RESET_RETRY_MINUTES", 15),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
