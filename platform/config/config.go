// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SheetsConfig provides settings for the spreadsheet source.
type SheetsConfig interface {
	GetSpreadsheetID() string
	GetSheetsAPIKey() string
	GetOrderRange() string
	GetClientDirectoryRange() string
}

// WhatsAppConfig provides settings for the WhatsApp gateway client.
type WhatsAppConfig interface {
	GetWhatsAppURL() string
	GetWhatsAppKey() string
	GetWhatsAppDeviceID() string
}

// NotifierConfig provides settings for the notification batcher.
type NotifierConfig interface {
	GetNotifyBatchSize() int
	GetNotifySendDelay() time.Duration
	GetNotifySendTimeout() time.Duration
	GetNotifyLocale() string
}

// PhoneConfig provides settings for phone number normalization.
type PhoneConfig interface {
	GetPhoneCountryPrefix() string
	GetPhoneRegion() string
}

// WebhookConfig provides settings for the outbound webhook mirror.
type WebhookConfig interface {
	GetOrderWebhookURL() string
}

// SchedulerConfig provides settings for asynq and the run-level lock.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOBucket() string
	IsMinIOEnabled() bool
}

// EmailConfig provides settings for run report emails.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetAlertRecipients() []string
}

// RetentionConfig provides settings for the retention cleanup sweep.
type RetentionConfig interface {
	GetRetentionMaxAge() time.Duration
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                  string
	HTTPAddr             string
	DatabaseURL          string
	JWTAccessSecret      string
	CORSAllowAll         bool
	CORSOrigins          []string
	CORSAllowCreds       bool
	SpreadsheetID        string
	SheetsAPIKey         string
	OrderRange           string
	ClientDirectoryRange string
	WhatsAppURL          string
	WhatsAppKey          string
	WhatsAppDeviceID     string
	NotifyBatchSize      int
	NotifySendDelay      time.Duration
	NotifySendTimeout    time.Duration
	NotifyLocale         string
	PhoneCountryPrefix   string
	PhoneRegion          string
	OrderWebhookURL      string
	RedisURL             string
	RedisTLSInsecure     bool
	AsynqQueueName       string
	AsynqConcurrency     int
	MinIOEndpoint        string
	MinIOAccessKey       string
	MinIOSecretKey       string
	MinIOUseSSL          bool
	MinIOBucket          string
	EmailEnabled         bool
	SMTPHost             string
	SMTPPort             int
	SMTPUsername         string
	SMTPPassword         string
	EmailFromName        string
	EmailFromAddress     string
	AlertRecipients      []string
	RetentionMaxAge      time.Duration
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SheetsConfig implementation
func (c *Config) GetSpreadsheetID() string        { return c.SpreadsheetID }
func (c *Config) GetSheetsAPIKey() string         { return c.SheetsAPIKey }
func (c *Config) GetOrderRange() string           { return c.OrderRange }
func (c *Config) GetClientDirectoryRange() string { return c.ClientDirectoryRange }

// WhatsAppConfig implementation
func (c *Config) GetWhatsAppURL() string      { return c.WhatsAppURL }
func (c *Config) GetWhatsAppKey() string      { return c.WhatsAppKey }
func (c *Config) GetWhatsAppDeviceID() string { return c.WhatsAppDeviceID }

// NotifierConfig implementation
func (c *Config) GetNotifyBatchSize() int              { return c.NotifyBatchSize }
func (c *Config) GetNotifySendDelay() time.Duration    { return c.NotifySendDelay }
func (c *Config) GetNotifySendTimeout() time.Duration  { return c.NotifySendTimeout }
func (c *Config) GetNotifyLocale() string              { return c.NotifyLocale }

// PhoneConfig implementation
func (c *Config) GetPhoneCountryPrefix() string { return c.PhoneCountryPrefix }
func (c *Config) GetPhoneRegion() string        { return c.PhoneRegion }

// WebhookConfig implementation
func (c *Config) GetOrderWebhookURL() string { return c.OrderWebhookURL }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// MinIOConfig implementation
func (c *Config) GetMinIOEndpoint() string  { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool      { return c.MinIOUseSSL }
func (c *Config) GetMinIOBucket() string    { return c.MinIOBucket }
func (c *Config) IsMinIOEnabled() bool      { return c.MinIOEndpoint != "" }

// EmailConfig implementation
func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetAlertRecipients() []string { return c.AlertRecipients }

// RetentionConfig implementation
func (c *Config) GetRetentionMaxAge() time.Duration { return c.RetentionMaxAge }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	emailEnabled := strings.EqualFold(getEnv("EMAIL_ENABLED", "false"), "true")

	cfg := &Config{
		Env:                  getEnv("APP_ENV", "development"),
		HTTPAddr:             getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:          getEnv("DATABASE_URL", ""),
		JWTAccessSecret:      getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:         corsAllowAll,
		CORSOrigins:          corsOrigins,
		CORSAllowCreds:       strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		SpreadsheetID:        getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsAPIKey:         getEnv("SHEETS_API_KEY", ""),
		OrderRange:           getEnv("SHEETS_ORDER_RANGE", "A:F"),
		ClientDirectoryRange: getEnv("SHEETS_CLIENT_DIRECTORY_RANGE", "Clients!A2:D"),
		WhatsAppURL:          getEnv("WHATSAPP_URL", ""),
		WhatsAppKey:          getEnv("WHATSAPP_KEY", ""),
		WhatsAppDeviceID:     getEnv("WHATSAPP_DEVICE_ID", ""),
		NotifyBatchSize:      mustInt(getEnv("NOTIFY_BATCH_SIZE", "10")),
		NotifySendDelay:      mustDuration(getEnv("NOTIFY_SEND_DELAY", "1s")),
		NotifySendTimeout:    mustDuration(getEnv("NOTIFY_SEND_TIMEOUT", "30s")),
		NotifyLocale:         getEnv("NOTIFY_LOCALE", "ru"),
		PhoneCountryPrefix:   getEnv("PHONE_COUNTRY_PREFIX", "996"),
		PhoneRegion:          getEnv("PHONE_REGION", "KG"),
		OrderWebhookURL:      getEnv("ORDER_WEBHOOK_URL", ""),
		RedisURL:             getEnv("REDIS_URL", ""),
		RedisTLSInsecure:     strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:       getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:     mustInt(getEnv("ASYNQ_CONCURRENCY", "10")),
		MinIOEndpoint:        getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:       getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:       getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:          strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOBucket:          getEnv("MINIO_BUCKET", "run-archive"),
		EmailEnabled:         emailEnabled,
		SMTPHost:             getEnv("SMTP_HOST", ""),
		SMTPPort:             mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:         getEnv("SMTP_USERNAME", ""),
		SMTPPassword:         getEnv("SMTP_PASSWORD", ""),
		EmailFromName:        getEnv("EMAIL_FROM_NAME", "Cargo Panel"),
		EmailFromAddress:     getEnv("EMAIL_FROM_ADDRESS", ""),
		AlertRecipients:      splitCSV(getEnv("ALERT_RECIPIENTS", "")),
		RetentionMaxAge:      mustDuration(getEnv("RETENTION_MAX_AGE", "720h")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.NotifyBatchSize < 1 {
		return nil, fmt.Errorf("NOTIFY_BATCH_SIZE must be at least 1")
	}
	if emailEnabled && (cfg.SMTPHost == "" || cfg.EmailFromAddress == "" || len(cfg.AlertRecipients) == 0) {
		return nil, fmt.Errorf("SMTP_HOST, EMAIL_FROM_ADDRESS and ALERT_RECIPIENTS are required when EMAIL_ENABLED is true")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return result
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
