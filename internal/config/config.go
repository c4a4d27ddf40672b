// Package config loads careerflow settings from defaults, an optional
// config.yaml, a .env file and CAREERFLOW_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration. Precedence, highest first:
// environment variables, config file, defaults.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Interview InterviewConfig `mapstructure:"interview"`
	Speech    SpeechConfig    `mapstructure:"speech"`
	Playback  PlaybackConfig  `mapstructure:"playback"`
	History   HistoryConfig   `mapstructure:"history"`
	Supabase  SupabaseConfig  `mapstructure:"supabase"`
	User      UserConfig      `mapstructure:"user"`
	Log       LogConfig       `mapstructure:"log"`
	Server    ServerConfig    `mapstructure:"server"`
	LLM       LLMConfig       `mapstructure:"llm"`
}

// APIConfig points the client at the interview API.
type APIConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	LockRetryDelay time.Duration `mapstructure:"lock_retry_delay"`
}

// InterviewConfig holds setup form defaults.
type InterviewConfig struct {
	DefaultRole     string        `mapstructure:"default_role"`
	DefaultLevel    string        `mapstructure:"default_level"`
	AutoSubmitDelay time.Duration `mapstructure:"auto_submit_delay"`
}

// SpeechConfig controls microphone capture and transcription.
type SpeechConfig struct {
	Enabled  bool           `mapstructure:"enabled"`
	FFmpeg   FFmpegConfig   `mapstructure:"ffmpeg"`
	Deepgram DeepgramConfig `mapstructure:"deepgram"`
}

type FFmpegConfig struct {
	Command     string `mapstructure:"command"`
	InputFormat string `mapstructure:"input_format"`
	InputDevice string `mapstructure:"input_device"`
}

type DeepgramConfig struct {
	APIKey   string `mapstructure:"api_key"`
	BaseURL  string `mapstructure:"base_url"`
	Model    string `mapstructure:"model"`
	Language string `mapstructure:"language"`
}

// PlaybackConfig selects the external audio player.
type PlaybackConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Player  string   `mapstructure:"player"`
	Args    []string `mapstructure:"args"`
}

// HistoryConfig selects where interview history is stored.
type HistoryConfig struct {
	Backend string `mapstructure:"backend"`
	DBPath  string `mapstructure:"db_path"`
}

type SupabaseConfig struct {
	URL string `mapstructure:"url"`
	Key string `mapstructure:"key"`
}

// UserConfig identifies whose history is written.
type UserConfig struct {
	ID    string `mapstructure:"id"`
	Email string `mapstructure:"email"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// ServerConfig configures the local interview API.
type ServerConfig struct {
	Addr                  string               `mapstructure:"addr"`
	QuestionsPerInterview int                  `mapstructure:"questions_per_interview"`
	FinalScore            int                  `mapstructure:"final_score"`
	AudioDir              string               `mapstructure:"audio_dir"`
	MetricsPath           string               `mapstructure:"metrics_path"`
	ShutdownTimeout       time.Duration        `mapstructure:"shutdown_timeout"`
	RateLimit             RateLimitConfig      `mapstructure:"rate_limit"`
	CircuitBreaker        CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type RateLimitConfig struct {
	Enabled        bool `mapstructure:"enabled"`
	RequestsPerMin int  `mapstructure:"requests_per_min"`
	Burst          int  `mapstructure:"burst"`
}

// CircuitBreakerConfig guards the LLM question source.
type CircuitBreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MinRequests      uint32        `mapstructure:"min_requests"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
}

// LLMConfig selects the question generator for the local server. An empty
// provider keeps the scripted interviewer.
type LLMConfig struct {
	Provider  string         `mapstructure:"provider"`
	Timeout   time.Duration  `mapstructure:"timeout"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
	OpenAI    ProviderConfig `mapstructure:"openai"`
	Gemini    ProviderConfig `mapstructure:"gemini"`
	Retry     RetryConfig    `mapstructure:"retry"`
}

type ProviderConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

type RetryConfig struct {
	MaxAttempts int           `mapstructure:"max_attempts"`
	InitialWait time.Duration `mapstructure:"initial_wait"`
	MaxWait     time.Duration `mapstructure:"max_wait"`
	Multiplier  float64       `mapstructure:"multiplier"`
}

// Load reads configuration. When path is empty, config.yaml is searched in
// $XDG_CONFIG_HOME/careerflow, $HOME/.careerflow and the working directory.
// A missing config file or .env file is not an error.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CAREERFLOW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath("$HOME/.careerflow")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// configDir returns $XDG_CONFIG_HOME/careerflow.
func configDir() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "careerflow"), nil
}

// Validate rejects settings that cannot work.
func (c *Config) Validate() error {
	switch c.History.Backend {
	case "sqlite", "none":
	case "supabase":
		if c.Supabase.URL == "" || c.Supabase.Key == "" {
			return errors.New("supabase.url and supabase.key are required for the supabase history backend")
		}
	default:
		return fmt.Errorf("unknown history backend %q (want sqlite, supabase or none)", c.History.Backend)
	}

	if c.Interview.AutoSubmitDelay <= 0 {
		return errors.New("interview.auto_submit_delay must be positive")
	}
	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if c.API.Timeout < 0 {
		return errors.New("api.timeout must not be negative")
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.Log.Level)
	}

	if c.Server.QuestionsPerInterview < 1 {
		return errors.New("server.questions_per_interview must be at least 1")
	}
	if c.Server.FinalScore < 0 || c.Server.FinalScore > 100 {
		return errors.New("server.final_score must be between 0 and 100")
	}
	return nil
}
