// Package config loads logreader settings from YAML and the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/atikulmunna/logreader/internal/analyzer"
	"github.com/atikulmunna/logreader/internal/model"
)

// EnvPrefix is the prefix for environment overrides, e.g. LOGREADER_SERVER_PORT.
const EnvPrefix = "LOGREADER"

// Config represents the root configuration structure
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Log      LogConfig      `mapstructure:"log"`
	Output   OutputConfig   `mapstructure:"output"`
	Watch    WatchConfig    `mapstructure:"watch"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// StoreConfig controls result persistence. An empty path keeps everything in memory.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// AnalysisConfig tunes the analyzer and the batch runner.
type AnalysisConfig struct {
	MaxBytes    int64        `mapstructure:"max_bytes"`
	Concurrency int          `mapstructure:"concurrency"`
	Rules       []RuleConfig `mapstructure:"rules"`
}

// RuleConfig declares an extra detection rule.
type RuleConfig struct {
	Name           string                `mapstructure:"name"`
	Keywords       []string              `mapstructure:"keywords"`
	Severity       string                `mapstructure:"severity"`
	Description    string                `mapstructure:"description"`
	Recommendation *RecommendationConfig `mapstructure:"recommendation"`
}

// RecommendationConfig is the advice attached to a custom rule.
type RecommendationConfig struct {
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Priority    string `mapstructure:"priority"`
}

// LogConfig holds diagnostic logging settings
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// OutputConfig selects the report renderer.
type OutputConfig struct {
	Format string `mapstructure:"format"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	StateFile string `mapstructure:"state_file"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("store.path", "")
	v.SetDefault("analysis.max_bytes", 64<<20)
	v.SetDefault("analysis.concurrency", 4)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("output.format", "text")
	v.SetDefault("watch.state_file", ".logreader-state.json")
}

// BindEnv enables LOGREADER_* environment overrides on v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load unmarshals and validates the configuration held by v. The caller
// is responsible for reading any config file first.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := ValidateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ValidateConfig validates the configuration values
func ValidateConfig(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", cfg.Server.Port)
	}
	if cfg.Analysis.Concurrency < 1 {
		return fmt.Errorf("analysis.concurrency must be at least 1, got %d", cfg.Analysis.Concurrency)
	}
	if cfg.Analysis.MaxBytes < 0 {
		return fmt.Errorf("analysis.max_bytes cannot be negative")
	}

	switch cfg.Output.Format {
	case "text", "json":
	default:
		return fmt.Errorf("output.format must be text or json, got %q", cfg.Output.Format)
	}

	seen := map[string]bool{
		analyzer.IssueError:   true,
		analyzer.IssueWarning: true,
	}
	for _, r := range analyzer.DefaultRules() {
		seen[r.Name] = true
	}
	for i, r := range cfg.Analysis.Rules {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return fmt.Errorf("analysis.rules[%d]: name cannot be empty", i)
		}
		if seen[name] {
			return fmt.Errorf("analysis.rules[%d]: duplicate rule name %q", i, name)
		}
		seen[name] = true

		if !hasKeyword(r.Keywords) {
			return fmt.Errorf("analysis.rules[%d] (%s): at least one keyword is required", i, name)
		}
		if !model.Severity(r.Severity).Valid() {
			return fmt.Errorf("analysis.rules[%d] (%s): invalid severity %q", i, name, r.Severity)
		}
		if rec := r.Recommendation; rec != nil {
			if strings.TrimSpace(rec.Title) == "" {
				return fmt.Errorf("analysis.rules[%d] (%s): recommendation title cannot be empty", i, name)
			}
			if !model.Severity(rec.Priority).Valid() {
				return fmt.Errorf("analysis.rules[%d] (%s): invalid recommendation priority %q", i, name, rec.Priority)
			}
		}
	}
	return nil
}

func hasKeyword(kws []string) bool {
	for _, k := range kws {
		if strings.TrimSpace(k) != "" {
			return true
		}
	}
	return false
}

// AnalyzerOptions converts the analysis section into analyzer options.
func (a AnalysisConfig) AnalyzerOptions() []analyzer.Option {
	rules := make([]analyzer.Rule, 0, len(a.Rules))
	for _, r := range a.Rules {
		rule := analyzer.Rule{
			Name:        strings.TrimSpace(r.Name),
			Keywords:    r.Keywords,
			Severity:    model.Severity(r.Severity),
			Description: r.Description,
		}
		if rec := r.Recommendation; rec != nil {
			rule.Recommendation = &model.Recommendation{
				Title:       rec.Title,
				Description: rec.Description,
				Priority:    model.Severity(rec.Priority),
			}
		}
		rules = append(rules, rule)
	}
	return []analyzer.Option{
		analyzer.WithRules(rules...),
		analyzer.WithMaxBytes(a.MaxBytes),
	}
}
