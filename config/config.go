// Package config loads connector configuration from a YAML document with
// environment-variable overrides for credentials, so secrets can stay out of
// checked-in files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/signalhouse/connectors/internal/otelx"
)

type Config struct {
	Reddit   RedditConfig   `yaml:"reddit"`
	Telegram TelegramConfig `yaml:"telegram"`
	Twitter  TwitterConfig  `yaml:"twitter"`
	YouTube  YouTubeConfig  `yaml:"youtube"`
	GTrends  GTrendsConfig  `yaml:"gtrends"`
	GNews    GNewsConfig    `yaml:"gnews"`
	OTel     OTelConfig     `yaml:"otel"`
}

type RedditConfig struct {
	ClientID     string        `yaml:"client_id"`
	ClientSecret string        `yaml:"client_secret"`
	Username     string        `yaml:"username"`
	Password     string        `yaml:"password"`
	UserAgent    string        `yaml:"user_agent"`
	Timeout      time.Duration `yaml:"timeout"`
	RateLimit    int           `yaml:"rate_limit"`
}

type TelegramConfig struct {
	APIID       int           `yaml:"api_id"`
	APIHash     string        `yaml:"api_hash"`
	Phone       string        `yaml:"phone"`
	SessionFile string        `yaml:"session_file"`
	Timeout     time.Duration `yaml:"timeout"`
	RateLimit   int           `yaml:"rate_limit"`
}

type TwitterConfig struct {
	BearerToken string        `yaml:"bearer_token"`
	Timeout     time.Duration `yaml:"timeout"`
	RateLimit   int           `yaml:"rate_limit"`
}

type YouTubeConfig struct {
	YTDLPPath           string        `yaml:"ytdlp_path"`
	OpenAIAPIKey        string        `yaml:"openai_api_key"`
	WhisperModel        string        `yaml:"whisper_model"`
	DisableCaptions     bool          `yaml:"disable_captions"`
	TranscriptLanguages []string      `yaml:"transcript_languages"`
	MaxVideoLength      int           `yaml:"max_video_length"`
	AudioFormat         string        `yaml:"audio_format"`
	Timeout             time.Duration `yaml:"timeout"`
	RateLimit           int           `yaml:"rate_limit"`
}

type GTrendsConfig struct {
	Language  string        `yaml:"language"`
	Timezone  int           `yaml:"timezone"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit int           `yaml:"rate_limit"`
}

type GNewsConfig struct {
	APIKey    string        `yaml:"api_key"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit int           `yaml:"rate_limit"`
}

type OTelConfig struct {
	Enabled     bool              `yaml:"enabled"`
	ServiceName string            `yaml:"service_name"`
	Endpoint    string            `yaml:"endpoint"`
	Protocol    string            `yaml:"protocol"`
	Headers     map[string]string `yaml:"headers"`
	Insecure    bool              `yaml:"insecure"`
	SampleRatio float64           `yaml:"sample_ratio"`
}

// OTelX converts the YAML section into the otelx setup config.
func (c OTelConfig) OTelX() otelx.Config {
	return otelx.Config{
		Enabled:     c.Enabled,
		ServiceName: c.ServiceName,
		Endpoint:    c.Endpoint,
		Protocol:    c.Protocol,
		Headers:     c.Headers,
		Insecure:    c.Insecure,
		SampleRatio: c.SampleRatio,
	}
}

// Load reads a YAML config file and applies environment overrides on top.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	cfg.applyEnv()
	return &cfg, nil
}

// LoadEnv builds a config from environment variables alone.
func LoadEnv() *Config {
	var cfg Config
	cfg.applyEnv()
	return &cfg
}

func (c *Config) applyEnv() {
	c.Reddit.ClientID = envString("REDDIT_CLIENT_ID", c.Reddit.ClientID)
	c.Reddit.ClientSecret = envString("REDDIT_CLIENT_SECRET", c.Reddit.ClientSecret)
	c.Reddit.Username = envString("REDDIT_USERNAME", c.Reddit.Username)
	c.Reddit.Password = envString("REDDIT_PASSWORD", c.Reddit.Password)
	c.Reddit.UserAgent = envString("REDDIT_USER_AGENT", c.Reddit.UserAgent)
	c.Reddit.Timeout = envDuration("REDDIT_HTTP_TIMEOUT", c.Reddit.Timeout)

	c.Telegram.APIID = envInt("TELEGRAM_API_ID", c.Telegram.APIID)
	c.Telegram.APIHash = envString("TELEGRAM_API_HASH", c.Telegram.APIHash)
	c.Telegram.Phone = envString("TELEGRAM_PHONE", c.Telegram.Phone)
	c.Telegram.SessionFile = envString("TELEGRAM_SESSION_FILE", c.Telegram.SessionFile)

	c.Twitter.BearerToken = envString("TWITTER_BEARER_TOKEN", c.Twitter.BearerToken)

	c.YouTube.YTDLPPath = envString("YTDLP_PATH", c.YouTube.YTDLPPath)
	c.YouTube.OpenAIAPIKey = envString("OPENAI_API_KEY", c.YouTube.OpenAIAPIKey)

	c.GNews.APIKey = envString("GNEWS_API_KEY", c.GNews.APIKey)

	c.OTel.Enabled = envBool("OTEL_ENABLED", c.OTel.Enabled)
	c.OTel.ServiceName = envString("OTEL_SERVICE_NAME", c.OTel.ServiceName)
	c.OTel.Endpoint = envString("OTEL_EXPORTER_OTLP_ENDPOINT", c.OTel.Endpoint)
	c.OTel.Protocol = envString("OTEL_EXPORTER_OTLP_PROTOCOL", c.OTel.Protocol)
}

func envString(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "on":
			return true
		case "0", "false", "no", "off":
			return false
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(strings.TrimSpace(v)); err == nil {
			return d
		}
	}
	return fallback
}
