package utils

import (
	"log"

	"hotelbot/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Global logger instance
var Logger *zap.Logger

// InitializeLogger sets up the logging configuration
func InitializeLogger() {
	var cfg zap.Config

	if config.IsProduction() {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	level := zap.InfoLevel
	if config.AppConfig.LogLevel != "" {
		if err := level.UnmarshalText([]byte(config.AppConfig.LogLevel)); err != nil {
			log.Printf("Unknown LOG_LEVEL %q, using info", config.AppConfig.LogLevel)
			level = zap.InfoLevel
		}
	} else if !config.IsProduction() {
		level = zap.DebugLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	// Create logger
	var err error
	Logger, err = cfg.Build()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	// Middleware logs through zap.L().
	zap.ReplaceGlobals(Logger)
}

// GetLogger retrieves the global logger
func GetLogger() *zap.Logger {
	if Logger == nil {
		InitializeLogger()
	}
	return Logger
}
