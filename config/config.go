package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`

	// MongoDB holds the reservation records.
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Redis configuration.
	RedisAddr           string `mapstructure:"REDIS_ADDR"`
	RedisPassword       string `mapstructure:"REDIS_PASSWORD"`
	RedisConversationDB int    `mapstructure:"REDIS_CONVERSATION_DB"`
	RedisQueueDB        int    `mapstructure:"REDIS_QUEUE_DB"`

	// Gemini powers intent classification, inquiries and confirmation text.
	GeminiAPIKey string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel  string `mapstructure:"GEMINI_MODEL"`

	// Instagram messaging webhook.
	InstagramAccessToken string `mapstructure:"INSTAGRAM_ACCESS_TOKEN"`
	InstagramAppSecret   string `mapstructure:"INSTAGRAM_APP_SECRET"`
	InstagramVerifyToken string `mapstructure:"INSTAGRAM_VERIFY_TOKEN"`
	InstagramAPIVersion  string `mapstructure:"INSTAGRAM_API_VERSION"`

	// Conversation handling.
	ConversationBackend string        `mapstructure:"CONVERSATION_BACKEND"` // "memory" or "redis"
	ConversationIdleTTL time.Duration `mapstructure:"CONVERSATION_IDLE_TTL"`
	TurnTimeout         time.Duration `mapstructure:"TURN_TIMEOUT"`
	DispatchMode        string        `mapstructure:"DISPATCH_MODE"` // "queue" or "inline"
	WorkerConcurrency   int           `mapstructure:"WORKER_CONCURRENCY"`

	// Stay rules enforced by the slot validator.
	MinNights   int `mapstructure:"BOOKING_MIN_NIGHTS"`
	MaxNights   int `mapstructure:"BOOKING_MAX_NIGHTS"`
	MaxLeadDays int `mapstructure:"BOOKING_MAX_LEAD_DAYS"`

	Hotel HotelFacts `mapstructure:"HOTEL"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig.Hotel = AppConfig.Hotel.withDefaults()
}

func setDefaults() {
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 120)
	viper.SetDefault("JWT_SECRET", "")
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "hotelbot")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CONVERSATION_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("GEMINI_API_KEY", "")
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("INSTAGRAM_ACCESS_TOKEN", "")
	viper.SetDefault("INSTAGRAM_APP_SECRET", "")
	viper.SetDefault("INSTAGRAM_VERIFY_TOKEN", "")
	viper.SetDefault("INSTAGRAM_API_VERSION", "18.0")
	viper.SetDefault("CONVERSATION_BACKEND", "memory")
	viper.SetDefault("CONVERSATION_IDLE_TTL", 24*time.Hour)
	viper.SetDefault("TURN_TIMEOUT", 20*time.Second)
	viper.SetDefault("DISPATCH_MODE", "queue")
	viper.SetDefault("WORKER_CONCURRENCY", 10)
	viper.SetDefault("BOOKING_MIN_NIGHTS", 1)
	viper.SetDefault("BOOKING_MAX_NIGHTS", 30)
	viper.SetDefault("BOOKING_MAX_LEAD_DAYS", 365)
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
