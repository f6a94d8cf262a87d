// Package config loads tool configuration from a YAML file with environment
// variable overrides. Environment always wins so CI and one-off runs can
// override a checked-in config file without editing it.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/seoforge/seoforge/internal/publish"
	"github.com/seoforge/seoforge/internal/types"
)

// Config is the full tool configuration.
type Config struct {
	// API credentials. All optional except AnthropicAPIKey; a missing key
	// disables that provider's feature.
	AnthropicAPIKey string `yaml:"anthropic_api_key"`
	SerperAPIKey    string `yaml:"serper_api_key"`
	YouTubeAPIKey   string `yaml:"youtube_api_key"`
	ScorerAPIKey    string `yaml:"scorer_api_key"`
	ScorerBaseURL   string `yaml:"scorer_base_url"`
	ScorerProjectID string `yaml:"scorer_project_id"`

	// DatabasePath is where run history is stored. Empty disables persistence.
	DatabasePath string `yaml:"database_path"`

	// Country is the default SERP locale.
	Country string `yaml:"country"`

	WordPress publish.WordPressConfig `yaml:"wordpress"`

	// Settings overrides; zero fields keep the defaults.
	TargetScore          float64 `yaml:"target_score"`
	MaxOptimizeAttempts  int     `yaml:"max_optimize_attempts"`
	MinWordCount         int     `yaml:"min_word_count"`
	NetworkTimeoutSecs   int     `yaml:"network_timeout_secs"`
	EnforceCoverageMarks bool    `yaml:"enforce_coverage_marks"`
}

// Default returns the baseline configuration.
func Default() *Config {
	return &Config{
		DatabasePath: ".seoforge/seoforge.db",
		Country:      "us",
	}
}

// Load reads the config file at path (missing file is fine, defaults apply)
// and applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	setString(&c.SerperAPIKey, "SERPER_API_KEY")
	setString(&c.YouTubeAPIKey, "YOUTUBE_API_KEY")
	setString(&c.ScorerAPIKey, "SEOFORGE_SCORER_API_KEY")
	setString(&c.ScorerBaseURL, "SEOFORGE_SCORER_URL")
	setString(&c.ScorerProjectID, "SEOFORGE_SCORER_PROJECT")
	setString(&c.DatabasePath, "SEOFORGE_DB_PATH")
	setString(&c.Country, "SEOFORGE_COUNTRY")
	setString(&c.WordPress.BaseURL, "SEOFORGE_WP_URL")
	setString(&c.WordPress.Username, "SEOFORGE_WP_USER")
	setString(&c.WordPress.Password, "SEOFORGE_WP_PASSWORD")
	setFloat(&c.TargetScore, "SEOFORGE_TARGET_SCORE")
	setInt(&c.MaxOptimizeAttempts, "SEOFORGE_MAX_OPTIMIZE_ATTEMPTS")
	setInt(&c.MinWordCount, "SEOFORGE_MIN_WORD_COUNT")
	setBool(&c.EnforceCoverageMarks, "SEOFORGE_COVERAGE_MARKS")
}

// Settings materializes pipeline settings from the defaults plus this
// config's overrides.
func (c *Config) Settings() types.Settings {
	s := types.DefaultSettings()
	if c.TargetScore > 0 {
		s.TargetScore = c.TargetScore
	}
	if c.MaxOptimizeAttempts > 0 {
		s.MaxOptimizeAttempts = c.MaxOptimizeAttempts
	}
	if c.MinWordCount > 0 {
		s.MinWordCount = c.MinWordCount
	}
	if c.NetworkTimeoutSecs > 0 {
		s.NetworkTimeout = time.Duration(c.NetworkTimeoutSecs) * time.Second
	}
	s.EnforceCoverageMarks = c.EnforceCoverageMarks
	return s
}

// Validate reports whether the config can drive a generation run.
func (c *Config) Validate() error {
	if c.AnthropicAPIKey == "" {
		return fmt.Errorf("anthropic API key is required (set ANTHROPIC_API_KEY)")
	}
	if c.TargetScore < 0 || c.TargetScore > 100 {
		return fmt.Errorf("target_score must be between 0 and 100, got %.0f", c.TargetScore)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}
