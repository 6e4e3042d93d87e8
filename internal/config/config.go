package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	envPrefix                = "TRENDFORGE"
	defaultHTTPAddress       = "0.0.0.0:8080"
	defaultDatabasePath      = "trendforge.db"
	defaultLogLevel          = "info"
	defaultTokenTTLMinutes   = 30
	defaultGroqBaseURL       = "https://api.groq.com/openai/v1"
	defaultGroqModel         = "llama-3.3-70b-versatile"
	defaultGeminiModel       = "gemini-2.5-flash-image"
	defaultCloudinaryFolder  = "trendforge"
	defaultTrendsFeedURL     = "https://trends.google.com/trending/rss?geo=IN"
	defaultRevalidateSeconds = 600
)

// AppConfig captures runtime configuration for the API server.
type AppConfig struct {
	HTTPAddress         string
	DatabasePath        string
	LogLevel            string
	SigningSecret       string
	TokenTTL            time.Duration
	GroqAPIKey          string
	GroqBaseURL         string
	GroqModel           string
	GeminiAPIKey        string
	GeminiModel         string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
	TrendsFeedURL       string
	TrendsRevalidate    time.Duration
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("auth.token_ttl_minutes", defaultTokenTTLMinutes)
	configViper.SetDefault("groq.base_url", defaultGroqBaseURL)
	configViper.SetDefault("groq.model", defaultGroqModel)
	configViper.SetDefault("gemini.model", defaultGeminiModel)
	configViper.SetDefault("cloudinary.folder", defaultCloudinaryFolder)
	configViper.SetDefault("trends.feed_url", defaultTrendsFeedURL)
	configViper.SetDefault("trends.revalidate_seconds", defaultRevalidateSeconds)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:         configViper.GetString("http.address"),
		DatabasePath:        configViper.GetString("database.path"),
		LogLevel:            configViper.GetString("log.level"),
		SigningSecret:       configViper.GetString("auth.signing_secret"),
		TokenTTL:            time.Duration(configViper.GetInt("auth.token_ttl_minutes")) * time.Minute,
		GroqAPIKey:          configViper.GetString("groq.api_key"),
		GroqBaseURL:         configViper.GetString("groq.base_url"),
		GroqModel:           configViper.GetString("groq.model"),
		GeminiAPIKey:        configViper.GetString("gemini.api_key"),
		GeminiModel:         configViper.GetString("gemini.model"),
		CloudinaryCloudName: configViper.GetString("cloudinary.cloud_name"),
		CloudinaryAPIKey:    configViper.GetString("cloudinary.api_key"),
		CloudinaryAPISecret: configViper.GetString("cloudinary.api_secret"),
		CloudinaryFolder:    configViper.GetString("cloudinary.folder"),
		TrendsFeedURL:       configViper.GetString("trends.feed_url"),
		TrendsRevalidate:    time.Duration(configViper.GetInt("trends.revalidate_seconds")) * time.Second,
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.SigningSecret) == "" {
		return fmt.Errorf("auth.signing_secret is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if strings.TrimSpace(c.TrendsFeedURL) == "" {
		return fmt.Errorf("trends.feed_url is required")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl_minutes must be positive")
	}
	return nil
}
