package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type MongoConfig struct {
	URL      string
	Database string
}

type LogConfig struct {
	Level  string
	Format string
}

type TelegramConfig struct {
	Token  string
	ChatID int64
}

func (c TelegramConfig) Enabled() bool { return c.Token != "" && c.ChatID != 0 }

type OpenAIConfig struct {
	Token string
	Model string
}

func (c OpenAIConfig) Enabled() bool { return c.Token != "" }

type Config struct {
	AppName           string
	Port              string
	StoreDriver       string
	Mongo             MongoConfig
	Log               LogConfig
	ReferenceCacheTTL time.Duration
	Telegram          TelegramConfig
	OpenAI            OpenAIConfig
}

// Load reads an optional .env file (or the given path) and then the
// environment. A missing .env file is not an error.
func Load(envPath ...string) (*Config, error) {
	if err := godotenv.Load(envPath...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load env file %v: %w", envPath, err)
	}

	cfg := &Config{
		AppName:     getEnvAsString("APP_NAME", "inmobiliaria"),
		Port:        getEnvAsString("PORT", "5000"),
		StoreDriver: strings.ToLower(getEnvAsString("STORE_DRIVER", DriverMongo)),
		Mongo: MongoConfig{
			URL:      os.Getenv("ME_CONFIG_MONGODB_URL"),
			Database: getEnvAsString("MONGODB_DATABASE", "inmobiliaria"),
		},
		Log: LogConfig{
			Level:  getEnvAsString("LOG_LEVEL", "info"),
			Format: getEnvAsString("LOG_FORMAT", "text"),
		},
		Telegram: TelegramConfig{
			Token: os.Getenv("TG_BOT_API_TOKEN"),
		},
		OpenAI: OpenAIConfig{
			Token: os.Getenv("OPEN_AI_TOKEN"),
			Model: getEnvAsString("OPEN_AI_MODEL", "gpt-4o-mini"),
		},
	}

	var err error
	if cfg.ReferenceCacheTTL, err = getEnvAsDuration("REFERENCE_CACHE_TTL", 5*time.Minute); err != nil {
		return nil, err
	}
	if cfg.Telegram.ChatID, err = getEnvAsInt64("TG_NOTIFY_CHAT_ID", 0); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverMongo:
		if c.Mongo.URL == "" {
			return fmt.Errorf("ME_CONFIG_MONGODB_URL environment variable is required for the %s store", DriverMongo)
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (want %s or %s)", c.StoreDriver, DriverMongo, DriverMemory)
	}
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	return nil
}

func getEnvAsString(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) (int64, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue, nil
	}
	v, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s (value: %s) could not be parsed as int: %w", key, valueStr, err)
	}
	return v, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue, nil
	}
	v, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s (value: %s) could not be parsed as duration: %w", key, valueStr, err)
	}
	return v, nil
}
