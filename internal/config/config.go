package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName          string
	AppEnv           string
	AppPort          string
	AppBaseURL       string
	FrontendBaseURL  string
	DatabaseURL      string
	RedisURL         string
	NATSURL          string
	JWTSecret        string
	JWTRefreshSecret string
	ResendAPIKey     string
	EmailFromAddress string
	EmailFromName    string
	SupportEmail     string
	ExportDir        string
	CORSAllowOrigins string
	StatsCacheTTL    time.Duration
	SSEKeepAlive     time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// ActivityURL builds the frontend deep link for an activity.
func (c Config) ActivityURL(activityID uint) string {
	base := strings.TrimRight(c.FrontendBaseURL, "/")
	return fmt.Sprintf("%s/activities/%d", base, activityID)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("ENGAGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Engage API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("app.base_url", "http://localhost:8080")
	v.SetDefault("frontend.base_url", "http://localhost:3000")
	v.SetDefault("email.from_address", "no-reply@engage.example")
	v.SetDefault("email.from_name", "Engage")
	v.SetDefault("support.email", "support@engage.example")
	v.SetDefault("export.dir", "exports")
	v.SetDefault("stats.cache_ttl", "5m")
	v.SetDefault("sse.keepalive", "30s")

	ttlString := v.GetString("stats.cache_ttl")
	if ttlString == "" {
		ttlString = "5m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid stats cache ttl: %w", err)
	}

	keepAliveString := v.GetString("sse.keepalive")
	if keepAliveString == "" {
		keepAliveString = "30s"
	}

	keepAlive, err := time.ParseDuration(keepAliveString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid sse keepalive: %w", err)
	}

	cfg := Config{
		AppName:          v.GetString("app.name"),
		AppEnv:           v.GetString("app.env"),
		AppPort:          v.GetString("app.port"),
		AppBaseURL:       v.GetString("app.base_url"),
		FrontendBaseURL:  v.GetString("frontend.base_url"),
		DatabaseURL:      v.GetString("database.url"),
		RedisURL:         v.GetString("redis.url"),
		NATSURL:          v.GetString("nats.url"),
		JWTSecret:        v.GetString("jwt.secret"),
		JWTRefreshSecret: v.GetString("jwt.refresh_secret"),
		ResendAPIKey:     v.GetString("resend.api_key"),
		EmailFromAddress: v.GetString("email.from_address"),
		EmailFromName:    v.GetString("email.from_name"),
		SupportEmail:     v.GetString("support.email"),
		ExportDir:        v.GetString("export.dir"),
		CORSAllowOrigins: v.GetString("cors.allow_origins"),
		StatsCacheTTL:    ttl,
		SSEKeepAlive:     keepAlive,
	}

	if cfg.JWTSecret == "" || cfg.JWTRefreshSecret == "" {
		return Config{}, fmt.Errorf("jwt secrets must be provided")
	}

	return cfg, nil
}
