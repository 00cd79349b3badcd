// Package config loads application configuration from an optional YAML file,
// environment variables, and defaults, in that order of precedence.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggerConfig controls log output.
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"` // "console" or "json"
	LogFile    string `mapstructure:"log_file"`
	MaxSize    int    `mapstructure:"max_size"` // megabytes
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"` // days
	Compress   bool   `mapstructure:"compress"`
}

// StoreConfig controls template persistence.
type StoreConfig struct {
	Dir string `mapstructure:"dir"`
}

// CaptureConfig controls screenshot capture and archiving.
type CaptureConfig struct {
	Dir string `mapstructure:"dir"` // timestamped screenshot archive; "" disables
}

// MatchConfig controls the template matcher.
type MatchConfig struct {
	Confidence float64 `mapstructure:"confidence"`
	Policy     string  `mapstructure:"policy"` // "first" or "best"
}

// LLMConfig configures the vision model boundary.
type LLMConfig struct {
	Model      string        `mapstructure:"model"`
	APIKey     string        `mapstructure:"api_key"`
	Endpoint   string        `mapstructure:"endpoint"` // override; derived from model when empty
	APITimeout time.Duration `mapstructure:"api_timeout"`
}

// DispatchConfig controls the input-dispatch throttle.
type DispatchConfig struct {
	MinInterval  time.Duration `mapstructure:"min_interval"`  // floor between consecutive actions
	WindowCap    int           `mapstructure:"window_cap"`    // max actions per rolling minute
	Cooldown     time.Duration `mapstructure:"cooldown"`      // extra sleep when the cap is hit
	DragDuration time.Duration `mapstructure:"drag_duration"` // press-and-drag travel time
}

// Config is the complete application configuration.
type Config struct {
	Logger   LoggerConfig   `mapstructure:"logger"`
	Store    StoreConfig    `mapstructure:"store"`
	Capture  CaptureConfig  `mapstructure:"capture"`
	Match    MatchConfig    `mapstructure:"match"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Dispatch DispatchConfig `mapstructure:"dispatch"`
}

// Load reads configuration from the given file path (optional), the
// LLMCU_* environment, and built-in defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LLMCU")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The original tooling reads the key from GEMINI_API_KEY; honor it as a
	// fallback so existing environments keep working.
	_ = v.BindEnv("llm.api_key", "LLMCU_LLM_API_KEY", "GEMINI_API_KEY")

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks ranges that would otherwise fail deep inside a pipeline.
func (c *Config) Validate() error {
	if c.Match.Confidence <= 0 || c.Match.Confidence > 1 {
		return fmt.Errorf("match.confidence must be in (0, 1], got %v", c.Match.Confidence)
	}
	if p := c.Match.Policy; p != "first" && p != "best" {
		return fmt.Errorf("match.policy must be \"first\" or \"best\", got %q", p)
	}
	if c.Dispatch.MinInterval < 0 || c.Dispatch.Cooldown < 0 {
		return fmt.Errorf("dispatch intervals must be non-negative")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)

	v.SetDefault("store.dir", "templates")
	v.SetDefault("capture.dir", "screenshots")

	v.SetDefault("match.confidence", 0.7)
	v.SetDefault("match.policy", "first")

	v.SetDefault("llm.model", "gemini-2.5-pro-exp-03-25")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.endpoint", "")
	v.SetDefault("llm.api_timeout", 120*time.Second)

	v.SetDefault("dispatch.min_interval", 500*time.Millisecond)
	v.SetDefault("dispatch.window_cap", 30)
	v.SetDefault("dispatch.cooldown", 2*time.Second)
	v.SetDefault("dispatch.drag_duration", time.Second)
}
