package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Paths    PathsConfig    `yaml:"paths"`
	Logging  LoggingConfig  `yaml:"logging"`
}

type ServerConfig struct {
	Port          string `yaml:"port"`
	MaxUploadSize int64  `yaml:"max_upload_size"`
}

type OpenAIConfig struct {
	// APIKey is never read from the file, only from OPENAI_API_KEY.
	APIKey     string `yaml:"-"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	MaxTokens  int    `yaml:"max_tokens"`
	MaxRetries int    `yaml:"max_retries"`
}

type PipelineConfig struct {
	IntervalSeconds float64 `yaml:"interval_seconds"`
	FrameSize       int     `yaml:"frame_size"`
	BatchSize       int     `yaml:"batch_size"`
	Polish          bool    `yaml:"polish"`
	Smoothing       bool    `yaml:"smoothing"`
}

type PathsConfig struct {
	Output        string `yaml:"output"`
	Uploads       string `yaml:"uploads"`
	HistoryDB     string `yaml:"history_db"`
	Watch         string `yaml:"watch"`
	CustomPrompts string `yaml:"custom_prompts"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Load reads the YAML config file, applies environment overrides, and fills
// in defaults. A missing file is not an error, everything has a default
// except the API key which callers check when they actually need it.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.OpenAI.BaseURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := os.Getenv("MAX_UPLOAD_SIZE"); v != "" {
		if size, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Server.MaxUploadSize = size
		}
	}
}

// Validate fills defaults and rejects nonsense values.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.MaxUploadSize == 0 {
		c.Server.MaxUploadSize = 512 << 20
	}

	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.OpenAI.MaxTokens == 0 {
		c.OpenAI.MaxTokens = 300
	}
	if c.OpenAI.MaxRetries < 0 {
		return fmt.Errorf("openai.max_retries must not be negative")
	}

	if c.Pipeline.IntervalSeconds == 0 {
		c.Pipeline.IntervalSeconds = 5
	}
	if c.Pipeline.IntervalSeconds < 0 {
		return fmt.Errorf("pipeline.interval_seconds must be positive")
	}
	if c.Pipeline.FrameSize == 0 {
		c.Pipeline.FrameSize = 768
	}
	if c.Pipeline.BatchSize == 0 {
		c.Pipeline.BatchSize = 1
	}
	if c.Pipeline.BatchSize < 0 {
		return fmt.Errorf("pipeline.batch_size must be positive")
	}

	if c.Paths.Output == "" {
		c.Paths.Output = "output"
	}
	if c.Paths.Uploads == "" {
		c.Paths.Uploads = "uploads"
	}
	if c.Paths.HistoryDB == "" {
		c.Paths.HistoryDB = "vidvoice.db"
	}
	if c.Paths.Watch == "" {
		c.Paths.Watch = "incoming"
	}
	if c.Paths.CustomPrompts == "" {
		c.Paths.CustomPrompts = "custom_prompts.json"
	}

	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}

	return nil
}
