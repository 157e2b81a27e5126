package models

// Config represents application configuration
type Config struct {
	App      AppConfig
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	Telegram TelegramConfig
	AI       AIConfig
	Currency CurrencyConfig
	Logger   LoggerConfig
}

// AppConfig contains application-specific configuration
type AppConfig struct {
	Name        string
	Environment string
	Debug       bool
	Version     string
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     int
	WriteTimeout    int
	ShutdownTimeout int
}

// DatabaseConfig contains database connection configuration
type DatabaseConfig struct {
	Driver    string
	Host      string
	Port      int
	Username  string
	Password  string
	Database  string
	SSLMode   string
	MaxConns  int
	IdleConns int
}

// RedisConfig contains Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
	PoolSize int
}

// NATSConfig contains NATS connection configuration
type NATSConfig struct {
	URL string
}

// TelegramConfig contains bot API configuration
type TelegramConfig struct {
	APIBaseURL   string
	BotToken     string
	BotUsername  string
	WebhookToken string // shared secret carried in the webhook path
}

// AIConfig contains extraction model configuration
type AIConfig struct {
	BaseURL        string // OpenAI-compatible endpoint for text and audio calls
	APIKey         string
	PrimaryModel   string
	SecondaryModel string
	TertiaryModel  string
	VisionModel    string // Gemini model used for photo extraction
	TextTimeout    int    // in seconds
	MediaTimeout   int    // in seconds, audio and vision calls
}

// CurrencyConfig contains exchange rate provider configuration
type CurrencyConfig struct {
	Default      string // fallback context currency for fresh contexts
	PrimaryURL   string
	PrimaryKey   string
	FallbackURL  string
	CacheTTLMins int
}

// LoggerConfig contains logger configuration
type LoggerConfig struct {
	Level    string
	FilePath string
}
