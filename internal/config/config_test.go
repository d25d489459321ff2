package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atikulmunna/logreader/internal/analyzer"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	if yaml != "" {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
		v.SetConfigFile(path)
		require.NoError(t, v.ReadInConfig())
	}
	return v
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, ":8080", cfg.Server.Addr())
	assert.Equal(t, int64(64<<20), cfg.Analysis.MaxBytes)
	assert.Equal(t, 4, cfg.Analysis.Concurrency)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Empty(t, cfg.Store.Path)
}

func TestLoadCustomRules(t *testing.T) {
	cfg, err := Load(newViper(t, `
server:
  port: 9090
analysis:
  rules:
    - name: oom
      keywords: ["OutOfMemory", "oom-killer"]
      severity: high
      description: Memory exhaustion detected
      recommendation:
        title: Increase memory limits
        priority: high
`))
	require.NoError(t, err)
	require.Len(t, cfg.Analysis.Rules, 1)
	assert.Equal(t, 9090, cfg.Server.Port)

	a := analyzer.New(cfg.Analysis.AnalyzerOptions()...)
	res := a.Analyze("kernel: oom-killer invoked")
	require.Len(t, res.Issues, 1)
	assert.Equal(t, "oom", res.Issues[0].Type)
	require.Len(t, res.Recommendations, 1)
	assert.Equal(t, "Increase memory limits", res.Recommendations[0].Title)
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv("LOGREADER_SERVER_PORT", "7000")
	v := newViper(t, "server:\n  port: 9090\n")
	BindEnv(v)

	cfg, err := Load(v)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestValidateConfig(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080},
			Analysis: AnalysisConfig{Concurrency: 1},
			Output:   OutputConfig{Format: "text"},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"zero concurrency", func(c *Config) { c.Analysis.Concurrency = 0 }},
		{"negative max bytes", func(c *Config) { c.Analysis.MaxBytes = -1 }},
		{"bad format", func(c *Config) { c.Output.Format = "pdf" }},
		{"empty rule name", func(c *Config) {
			c.Analysis.Rules = []RuleConfig{{Keywords: []string{"x"}, Severity: "high"}}
		}},
		{"builtin name clash", func(c *Config) {
			c.Analysis.Rules = []RuleConfig{{Name: "timeout", Keywords: []string{"x"}, Severity: "high"}}
		}},
		{"no keywords", func(c *Config) {
			c.Analysis.Rules = []RuleConfig{{Name: "x", Keywords: []string{" "}, Severity: "high"}}
		}},
		{"bad severity", func(c *Config) {
			c.Analysis.Rules = []RuleConfig{{Name: "x", Keywords: []string{"x"}, Severity: "urgent"}}
		}},
		{"bad priority", func(c *Config) {
			c.Analysis.Rules = []RuleConfig{{Name: "x", Keywords: []string{"x"}, Severity: "high",
				Recommendation: &RecommendationConfig{Title: "t", Priority: "soon"}}}
		}},
	}

	require.NoError(t, ValidateConfig(base()))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			assert.Error(t, ValidateConfig(cfg))
		})
	}
}
