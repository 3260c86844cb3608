// Package config provides application configuration loaded from the
// environment. Consumers depend on the narrow interfaces below rather than
// the full Config struct.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DatabaseConfig exposes database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// HTTPConfig exposes HTTP server settings.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
}

// JWTConfig exposes token verification settings for the identity boundary.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// SchedulerConfig exposes background queue settings.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// EmailConfig exposes outbound SMTP delivery settings.
type EmailConfig interface {
	IsEmailEnabled() bool
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetEmailFromAddress() string
	GetEmailFromName() string
}

// AgentConfig exposes settings for the AI lead analyzer.
type AgentConfig interface {
	IsAgentEnabled() bool
	GetGeminiAPIKey() string
	GetAgentModel() string
}

// PolicyConfig consolidates the pipeline policy constants so components
// receive them by injection instead of hardcoding per call site.
type PolicyConfig interface {
	GetQualifyThreshold() int
	GetFollowupWindow() time.Duration
	GetNextActionsLimit() int
	GetLocation() *time.Location
}

// Config holds all application configuration.
type Config struct {
	Env              string
	HTTPAddr         string
	DatabaseURL      string
	JWTAccessSecret  string
	CORSAllowAll     bool
	CORSOrigins      []string
	RedisURL         string
	RedisTLSInsecure bool
	AsynqQueueName   string
	AsynqConcurrency int
	EmailEnabled     bool
	SMTPHost         string
	SMTPPort         int
	SMTPUsername     string
	SMTPPassword     string
	EmailFromAddress string
	EmailFromName    string
	GeminiAPIKey     string
	AgentModel       string
	QualifyThreshold int
	FollowupWindow   time.Duration
	NextActionsLimit int
	Location         *time.Location
}

// Load reads configuration from the environment, applying defaults and
// failing fast on invalid required settings.
func Load() (*Config, error) {
	_ = godotenv.Load()

	loc := time.UTC
	if tz := getEnv("TIME_ZONE", ""); tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			return nil, fmt.Errorf("invalid TIME_ZONE %q: %w", tz, err)
		}
		loc = parsed
	}

	cfg := &Config{
		Env:              getEnv("APP_ENV", "development"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		JWTAccessSecret:  getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:     strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true"),
		CORSOrigins:      splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200")),
		RedisURL:         getEnv("REDIS_URL", ""),
		RedisTLSInsecure: strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:   getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency: getEnvInt("ASYNQ_CONCURRENCY", 10),
		EmailEnabled:     strings.EqualFold(getEnv("EMAIL_ENABLED", "false"), "true"),
		SMTPHost:         getEnv("SMTP_HOST", ""),
		SMTPPort:         getEnvInt("SMTP_PORT", 587),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),
		EmailFromAddress: getEnv("EMAIL_FROM_ADDRESS", ""),
		EmailFromName:    getEnv("EMAIL_FROM_NAME", "Leadflow"),
		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		AgentModel:       getEnv("AGENT_MODEL", "gemini-2.0-flash"),
		QualifyThreshold: getEnvInt("QUALIFY_THRESHOLD", 15),
		FollowupWindow:   mustDuration(getEnv("FOLLOWUP_WINDOW", "48h")),
		NextActionsLimit: getEnvInt("NEXT_ACTIONS_LIMIT", 10),
		Location:         loc,
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.EmailEnabled && (cfg.SMTPHost == "" || cfg.EmailFromAddress == "") {
		return nil, fmt.Errorf("SMTP_HOST and EMAIL_FROM_ADDRESS are required when EMAIL_ENABLED is true")
	}
	if cfg.QualifyThreshold < 0 || cfg.QualifyThreshold > 100 {
		return nil, fmt.Errorf("QUALIFY_THRESHOLD must be between 0 and 100")
	}
	if cfg.NextActionsLimit < 1 {
		return nil, fmt.Errorf("NEXT_ACTIONS_LIMIT must be at least 1")
	}
	if cfg.FollowupWindow <= 0 {
		return nil, fmt.Errorf("FOLLOWUP_WINDOW must be a positive duration")
	}

	return cfg, nil
}

func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }

func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetRedisURL() string      { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

func (c *Config) IsEmailEnabled() bool         { return c.EmailEnabled }
func (c *Config) GetSMTPHost() string          { return c.SMTPHost }
func (c *Config) GetSMTPPort() int             { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string      { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string      { return c.SMTPPassword }
func (c *Config) GetEmailFromAddress() string  { return c.EmailFromAddress }
func (c *Config) GetEmailFromName() string     { return c.EmailFromName }

func (c *Config) IsAgentEnabled() bool    { return c.GeminiAPIKey != "" }
func (c *Config) GetGeminiAPIKey() string { return c.GeminiAPIKey }
func (c *Config) GetAgentModel() string   { return c.AgentModel }

func (c *Config) GetQualifyThreshold() int           { return c.QualifyThreshold }
func (c *Config) GetFollowupWindow() time.Duration   { return c.FollowupWindow }
func (c *Config) GetNextActionsLimit() int           { return c.NextActionsLimit }
func (c *Config) GetLocation() *time.Location        { return c.Location }

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
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
