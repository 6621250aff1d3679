package config

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	DBSSLMode     string
	SQLitePath    string
	RedisHost     string
	RedisPort     string
	SessionSecret string
	JWTSecret     string
	GinMode       string
	Port          string
	OpenAIAPIKey  string
	TimeZone      string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration

	// AchievementThresholdPolicy is "at_least" or "exact".
	AchievementThresholdPolicy string
}

// Load reads the configuration from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Ignoring .env file: %v", err)
	}

	return &Config{
		DBDriver:                   getEnv("DB_DRIVER", "mysql"),
		DBHost:                     getEnv("DB_HOST", "localhost"),
		DBPort:                     getEnv("DB_PORT", "3306"),
		DBUser:                     getEnv("DB_USER", "levelup"),
		DBPassword:                 getEnv("DB_PASSWORD", "levelup"),
		DBName:                     getEnv("DB_NAME", "levelup"),
		DBSSLMode:                  getEnv("DB_SSLMODE", "disable"),
		SQLitePath:                 getEnv("SQLITE_PATH", "levelup.db"),
		RedisHost:                  getEnv("REDIS_HOST", ""),
		RedisPort:                  getEnv("REDIS_PORT", "6379"),
		SessionSecret:              getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		JWTSecret:                  getEnv("JWT_SECRET", "default-jwt-secret-change-me"),
		GinMode:                    getEnv("GIN_MODE", "debug"),
		Port:                       getEnv("PORT", "8080"),
		OpenAIAPIKey:               getEnv("OPENAI_API_KEY", ""),
		TimeZone:                   getEnv("TIMEZONE", "UTC"),
		ReadTimeout:                getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout:               getEnvDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		AchievementThresholdPolicy: getEnv("ACHIEVEMENT_THRESHOLD_POLICY", "at_least"),
	}
}

// IsProduction reports whether gin runs in release mode.
func (c *Config) IsProduction() bool {
	return c.GinMode == "release"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("Invalid %s %q, using %s", key, value, defaultValue)
		return defaultValue
	}
	return d
}
