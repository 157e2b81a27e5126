package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/piresc/kasbot/internal/pkg/models"
)

func InitConfig(configPath string) *models.Config {
	local := GetEnv("APP_ENV", "local")
	if local == "local" {
		// Load config from file
		err := godotenv.Load(configPath)
		if err != nil {
			log.Println("error loading config from file", err)
		}
	}
	// Create config from environment variables
	return loadConfigFromEnv()
}

func loadConfigFromEnv() *models.Config {
	configs := &models.Config{}

	// App config
	configs.App.Name = GetEnv("APP_NAME", "kasbot")
	configs.App.Environment = GetEnv("APP_ENV", "")
	configs.App.Debug = GetEnvAsBool("APP_DEBUG", true)
	configs.App.Version = GetEnv("APP_VERSION", "")

	// Server config
	configs.Server.Host = GetEnv("SERVER_HOST", "")
	configs.Server.Port = GetEnvAsInt("SERVER_PORT", 9990)
	configs.Server.ReadTimeout = GetEnvAsInt("SERVER_READ_TIMEOUT", 0)
	configs.Server.WriteTimeout = GetEnvAsInt("SERVER_WRITE_TIMEOUT", 0)
	configs.Server.ShutdownTimeout = GetEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 0)

	// Database config
	configs.Database.Driver = GetEnv("DB_DRIVER", "pgx")
	configs.Database.Host = GetEnv("DB_HOST", "")
	configs.Database.Port = GetEnvAsInt("DB_PORT", 5432)
	configs.Database.Username = GetEnv("DB_USERNAME", "")
	configs.Database.Password = GetEnv("DB_PASSWORD", "")
	configs.Database.Database = GetEnv("DB_DATABASE", "")
	configs.Database.SSLMode = GetEnv("DB_SSL_MODE", "disable")
	configs.Database.MaxConns = GetEnvAsInt("DB_MAX_CONNS", 0)
	configs.Database.IdleConns = GetEnvAsInt("DB_IDLE_CONNS", 0)

	// Redis config
	configs.Redis.Host = GetEnv("REDIS_HOST", "")
	configs.Redis.Port = GetEnvAsInt("REDIS_PORT", 6379)
	configs.Redis.Password = GetEnv("REDIS_PASSWORD", "")
	configs.Redis.DB = GetEnvAsInt("REDIS_DB", 0)
	configs.Redis.PoolSize = GetEnvAsInt("REDIS_POOL_SIZE", 0)

	// NATS config
	configs.NATS.URL = GetEnv("NATS_URL", "")

	// Telegram config
	configs.Telegram.APIBaseURL = GetEnv("TELEGRAM_API_BASE_URL", "https://api.telegram.org")
	configs.Telegram.BotToken = GetEnv("TELEGRAM_BOT_TOKEN", "")
	configs.Telegram.BotUsername = GetEnv("TELEGRAM_BOT_USERNAME", "")
	configs.Telegram.WebhookToken = GetEnv("TELEGRAM_WEBHOOK_TOKEN", "")

	// AI config
	configs.AI.BaseURL = GetEnv("AI_BASE_URL", "https://api.openai.com/v1")
	configs.AI.APIKey = GetEnv("AI_API_KEY", "")
	configs.AI.PrimaryModel = GetEnv("AI_PRIMARY_MODEL", "gpt-4o")
	configs.AI.SecondaryModel = GetEnv("AI_SECONDARY_MODEL", "gpt-4o-mini")
	configs.AI.TertiaryModel = GetEnv("AI_TERTIARY_MODEL", "gpt-3.5-turbo")
	configs.AI.VisionModel = GetEnv("AI_VISION_MODEL", "gemini-2.0-flash")
	configs.AI.TextTimeout = GetEnvAsInt("AI_TEXT_TIMEOUT", 10)
	configs.AI.MediaTimeout = GetEnvAsInt("AI_MEDIA_TIMEOUT", 30)

	// Currency config
	configs.Currency.Default = GetEnv("CURRENCY_DEFAULT", "USD")
	configs.Currency.PrimaryURL = GetEnv("CURRENCY_PRIMARY_URL", "https://api.exchangerate.host")
	configs.Currency.PrimaryKey = GetEnv("CURRENCY_PRIMARY_KEY", "")
	configs.Currency.FallbackURL = GetEnv("CURRENCY_FALLBACK_URL", "https://open.er-api.com/v6")
	configs.Currency.CacheTTLMins = GetEnvAsInt("CURRENCY_CACHE_TTL_MINS", 60)

	// Logger config
	configs.Logger.Level = GetEnv("LOG_LEVEL", "info")
	configs.Logger.FilePath = GetEnv("LOG_FILE_PATH", "")

	return configs
}

// Helper functions to get environment variables with different types
func GetEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvAsInt(key string, defaultValue int) int {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return value
}

func GetEnvAsBool(key string, defaultValue bool) bool {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}

func GetEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := GetEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		log.Printf("Warning: Invalid float value for %s, using default: %v", key, defaultValue)
		return defaultValue
	}

	return value
}
