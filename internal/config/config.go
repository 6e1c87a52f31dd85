// Package config loads term-prettify settings from a YAML config file
// via viper, with defaults for every key so a missing file works.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/samsaffron/term-prettify/internal/prettify"
)

// Config is the root of the config file.
type Config struct {
	Prettify PrettifyConfig `mapstructure:"prettify"`
}

// PrettifyConfig is the prettify section.
type PrettifyConfig struct {
	Enabled             bool              `mapstructure:"enabled"`
	Scope               string            `mapstructure:"scope"`
	ConfidenceThreshold float64           `mapstructure:"confidence_threshold"`
	MaxScanLines        int               `mapstructure:"max_scan_lines"`
	DebounceMs          int               `mapstructure:"debounce_ms"`
	BlankLineThreshold  int               `mapstructure:"blank_line_threshold"`
	Cache               CacheConfig       `mapstructure:"cache"`
	ClaudeCode          ClaudeCodeConfig  `mapstructure:"claude_code"`
	Theme               map[string]string `mapstructure:"theme"`
}

// CacheConfig bounds the render cache.
type CacheConfig struct {
	MaxEntries int `mapstructure:"max_entries"`
}

// ClaudeCodeConfig controls the Claude Code session integration.
type ClaudeCodeConfig struct {
	AutoDetect         bool `mapstructure:"auto_detect"`
	RenderMarkdown     bool `mapstructure:"render_markdown"`
	RenderDiffs        bool `mapstructure:"render_diffs"`
	AutoRenderOnExpand bool `mapstructure:"auto_render_on_expand"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("prettify.enabled", true)
	v.SetDefault("prettify.scope", "all")
	v.SetDefault("prettify.confidence_threshold", 0.6)
	v.SetDefault("prettify.max_scan_lines", 500)
	v.SetDefault("prettify.debounce_ms", 100)
	v.SetDefault("prettify.blank_line_threshold", 2)
	v.SetDefault("prettify.cache.max_entries", 64)
	v.SetDefault("prettify.claude_code.auto_detect", true)
	v.SetDefault("prettify.claude_code.render_markdown", true)
	v.SetDefault("prettify.claude_code.render_diffs", true)
	v.SetDefault("prettify.claude_code.auto_render_on_expand", true)
}

// Load reads the config file from ~/.config/term-prettify/config.yaml.
// A missing file yields the defaults; a malformed file is an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".config", "term-prettify"))
	}
	v.AddConfigPath(".")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Default returns the built-in configuration without touching disk.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// PipelineOptions converts the config into pipeline options. An unknown
// scope string falls back to scanning everything, with a warning.
func (c *PrettifyConfig) PipelineOptions(logger *slog.Logger) prettify.Options {
	scope, ok := prettify.ParseDetectionScope(c.Scope)
	if !ok && logger != nil {
		logger.Warn("unknown detection scope, using all", "scope", c.Scope)
	}
	theme := prettify.DefaultTheme()
	theme.ApplyOverrides(c.Theme)

	opts := prettify.DefaultOptions()
	opts.Scope = scope
	opts.ConfidenceThreshold = c.ConfidenceThreshold
	opts.BlankLineThreshold = c.BlankLineThreshold
	opts.MaxScanLines = c.MaxScanLines
	opts.Debounce = time.Duration(c.DebounceMs) * time.Millisecond
	opts.CacheSize = c.Cache.MaxEntries
	opts.Theme = theme
	opts.ClaudeCode = prettify.ClaudeCodeOptions{
		AutoDetect:         c.ClaudeCode.AutoDetect,
		RenderMarkdown:     c.ClaudeCode.RenderMarkdown,
		RenderDiffs:        c.ClaudeCode.RenderDiffs,
		AutoRenderOnExpand: c.ClaudeCode.AutoRenderOnExpand,
	}
	opts.Logger = logger
	return opts
}
