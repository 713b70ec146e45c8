// Package config provides configuration for the trip planner relay.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultModels is the fallback order used when LLM_MODELS is unset.
var DefaultModels = []string{
	"google/gemini-2.0-flash-exp:free",
	"google/gemini-flash-1.5",
	"openai/gpt-4o-mini",
	"meta-llama/llama-3.1-70b-instruct:free",
}

// Config holds the relay configuration.
type Config struct {
	// Server settings
	Env      string
	HTTPPort int

	// LLM settings
	Mode         string
	BaseURL      string
	APIKey       string
	Models       []string
	LLMTimeout   time.Duration
	ChainTimeout time.Duration
	SiteURL      string
	SiteName     string
	GeminiAPIKey string

	// Temperature is nil when LLM_TEMPERATURE is unset. MaxTokens 0 means
	// the provider default.
	Temperature *float64
	MaxTokens   int

	// Policy
	PolicyFile string

	// Conversation settings
	Greeting             string
	SessionTTL           time.Duration
	StrictItineraryShape bool

	// WebSocket settings
	PingInterval   time.Duration
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	MaxMessageSize int64

	// Logging
	LogLevel string
}

// IsDevelopment reports whether the relay runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file, an optional config.yaml and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "production")
	v.SetDefault("HTTP_PORT", 8080)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TRIP_MODE", "")
	v.SetDefault("LLM_BASE_URL", "https://openrouter.ai/api")
	v.SetDefault("LLM_API_KEY", "")
	v.SetDefault("OPENROUTER_API_KEY", "")
	v.SetDefault("LLM_MODELS", strings.Join(DefaultModels, ","))
	v.SetDefault("LLM_TIMEOUT_MS", 60000)
	v.SetDefault("CHAIN_TIMEOUT_MS", 30000)
	v.SetDefault("SITE_URL", "http://localhost:5173")
	v.SetDefault("SITE_NAME", "TripPlanner.ai")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("LLM_MAX_TOKENS", 0)
	v.SetDefault("POLICY_FILE", "")
	v.SetDefault("SESSION_TTL_MIN", 120)
	v.SetDefault("STRICT_ITINERARY_SHAPE", false)
	v.SetDefault("GREETING", "")
	v.SetDefault("WS_PING_INTERVAL_MS", 30000)
	v.SetDefault("WS_WRITE_TIMEOUT_MS", 10000)
	v.SetDefault("WS_READ_TIMEOUT_MS", 60000)
	v.SetDefault("WS_MAX_MESSAGE_SIZE", 65536)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		Env:                  strings.ToLower(v.GetString("ENV")),
		HTTPPort:             v.GetInt("HTTP_PORT"),
		Mode:                 strings.ToUpper(strings.TrimSpace(v.GetString("TRIP_MODE"))),
		BaseURL:              v.GetString("LLM_BASE_URL"),
		APIKey:               v.GetString("LLM_API_KEY"),
		Models:               splitList(v.GetString("LLM_MODELS")),
		LLMTimeout:           millis(v.GetInt("LLM_TIMEOUT_MS")),
		ChainTimeout:         millis(v.GetInt("CHAIN_TIMEOUT_MS")),
		SiteURL:              v.GetString("SITE_URL"),
		SiteName:             v.GetString("SITE_NAME"),
		GeminiAPIKey:         v.GetString("GEMINI_API_KEY"),
		PolicyFile:           v.GetString("POLICY_FILE"),
		Greeting:             v.GetString("GREETING"),
		SessionTTL:           time.Duration(v.GetInt("SESSION_TTL_MIN")) * time.Minute,
		StrictItineraryShape: v.GetBool("STRICT_ITINERARY_SHAPE"),
		PingInterval:         millis(v.GetInt("WS_PING_INTERVAL_MS")),
		WriteTimeout:         millis(v.GetInt("WS_WRITE_TIMEOUT_MS")),
		ReadTimeout:          millis(v.GetInt("WS_READ_TIMEOUT_MS")),
		MaxMessageSize:       v.GetInt64("WS_MAX_MESSAGE_SIZE"),
		MaxTokens:            v.GetInt("LLM_MAX_TOKENS"),
		LogLevel:             v.GetString("LOG_LEVEL"),
	}
	if v.IsSet("LLM_TEMPERATURE") {
		t := v.GetFloat64("LLM_TEMPERATURE")
		cfg.Temperature = &t
	}
	if cfg.APIKey == "" {
		cfg.APIKey = v.GetString("OPENROUTER_API_KEY")
	}

	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		return nil, fmt.Errorf("invalid HTTP_PORT %d", cfg.HTTPPort)
	}
	if cfg.Temperature != nil && (*cfg.Temperature < 0 || *cfg.Temperature > 2) {
		return nil, fmt.Errorf("invalid LLM_TEMPERATURE %v", *cfg.Temperature)
	}
	if cfg.MaxTokens < 0 {
		return nil, fmt.Errorf("invalid LLM_MAX_TOKENS %d", cfg.MaxTokens)
	}
	if len(cfg.Models) == 0 {
		return nil, errors.New("LLM_MODELS must name at least one model")
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}
