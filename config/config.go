package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tableorder-backend/utils"
)

const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config is read from the environment once at startup.
type Config struct {
	Server        ServerConfig
	Store         StoreConfig
	Auth          AuthConfig
	Notifications NotificationConfig
	ClientBaseURL string
	CORSOrigins   []string
	LogLevel      string
}

type ServerConfig struct {
	Port            string
	ShutdownTimeout time.Duration
}

type StoreConfig struct {
	Driver        string
	URL           string
	MongoDatabase string
}

type AuthConfig struct {
	JWTSecret string
	JWTExpiry time.Duration
}

// NotificationConfig leaves a channel disabled when its credentials are
// missing.
type NotificationConfig struct {
	TwilioAccountSID  string
	TwilioAuthToken   string
	TwilioPhoneNumber string
	TelegramToken     string
	TelegramChatID    int64
}

func (n NotificationConfig) SMSEnabled() bool {
	return n.TwilioAccountSID != "" && n.TwilioAuthToken != "" && n.TwilioPhoneNumber != ""
}

func (n NotificationConfig) TelegramEnabled() bool {
	return n.TelegramToken != "" && n.TelegramChatID != 0
}

func Load() (*Config, error) {
	chatID, err := getEnvAsInt64("TELEGRAM_CHAT_ID", 0)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ShutdownTimeout: time.Duration(getEnvAsInt("SHUTDOWN_TIMEOUT", 15)) * time.Second,
		},
		Store: StoreConfig{
			Driver:        strings.ToLower(getEnv("STORE_DRIVER", DriverPostgres)),
			URL:           os.Getenv("DB_URL"),
			MongoDatabase: getEnv("MONGO_DATABASE", "tableorder"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("JWT_SECRET"),
			JWTExpiry: time.Duration(getEnvAsInt("JWT_EXPIRY_HOURS", 168)) * time.Hour,
		},
		Notifications: NotificationConfig{
			TwilioAccountSID:  os.Getenv("TWILIO_ACCOUNT_SID"),
			TwilioAuthToken:   os.Getenv("TWILIO_AUTH_TOKEN"),
			TwilioPhoneNumber: os.Getenv("TWILIO_PHONE_NUMBER"),
			TelegramToken:     os.Getenv("TELEGRAM_TOKEN"),
			TelegramChatID:    chatID,
		},
		ClientBaseURL: os.Getenv("CLIENT_BASE_URL"),
		CORSOrigins:   getEnvAsSlice("CORS_ORIGINS", []string{"http://localhost:3000"}),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if c.Store.Driver != DriverPostgres && c.Store.Driver != DriverMongo {
		return fmt.Errorf("STORE_DRIVER must be %s or %s, got %q", DriverPostgres, DriverMongo, c.Store.Driver)
	}
	if c.Store.URL == "" {
		return fmt.Errorf("DB_URL is required")
	}
	if c.Store.Driver == DriverMongo && c.Store.MongoDatabase == "" {
		return fmt.Errorf("MONGO_DATABASE is required for the mongo driver")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required, for example JWT_SECRET=%s", utils.GenerateJWTSecret())
	}
	if c.Auth.JWTExpiry <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be positive")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if _, err := utils.ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsInt64(key string, defaultValue int64) (int64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return value, nil
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
