package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Discord configuration
	BotToken         string
	GuildID          string
	RequestChannelID string
	ManageChannelID  string
	ResultChannelID  string
	RequiredRoleID   string

	// Scheduling configuration
	Location         *time.Location
	ReminderInterval time.Duration
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	cfg := &Config{}

	// Required configurations
	required := map[string]*string{
		"DISCORD_TOKEN":      &cfg.BotToken,
		"REQUEST_CHANNEL_ID": &cfg.RequestChannelID,
		"MANAGE_CHANNEL_ID":  &cfg.ManageChannelID,
		"RESULT_CHANNEL_ID":  &cfg.ResultChannelID,
		"REQUIRED_ROLE_ID":   &cfg.RequiredRoleID,
	}
	for name, dst := range required {
		value := os.Getenv(name)
		if value == "" {
			return nil, fmt.Errorf("%s environment variable is required", name)
		}
		*dst = value
	}

	// Optional configurations with defaults
	cfg.GuildID = os.Getenv("GUILD_ID")

	tzName := getEnvWithDefault("TIMEZONE", "Asia/Tokyo")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tzName, err)
	}
	cfg.Location = loc

	intervalStr := getEnvWithDefault("REMINDER_INTERVAL_SECONDS", "60")
	intervalSec, err := strconv.Atoi(intervalStr)
	if err != nil || intervalSec <= 0 {
		return nil, fmt.Errorf("invalid REMINDER_INTERVAL_SECONDS %q", intervalStr)
	}
	cfg.ReminderInterval = time.Duration(intervalSec) * time.Second

	// Log configuration with sensitive data redacted
	logCfg := *cfg
	if len(logCfg.BotToken) > 8 {
		logCfg.BotToken = logCfg.BotToken[:8] + "...REDACTED..."
	}
	log.Printf("Configuration loaded: %+v", logCfg)
	return cfg, nil
}

// getEnvWithDefault returns the value of the environment variable or the default value
func getEnvWithDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
