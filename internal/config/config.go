// Package config loads runtime configuration and regulatory reference data.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/finnet/internal/common"
	"github.com/Veraticus/finnet/internal/engine"
	"github.com/Veraticus/finnet/internal/llm"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config is the resolved runtime configuration.
type Config struct {
	Advisory   AdvisoryConfig
	Database   DatabaseConfig
	Export     ExportConfig
	Server     ServerConfig
	Schedule   ScheduleConfig
	Compliance ComplianceConfig
	Engine     EngineConfig
}

// ComplianceConfig holds the regulatory settings.
type ComplianceConfig struct {
	AMLThreshold  decimal.Decimal
	ReferenceData string // Optional YAML file with product codes, rules and advisory categories
}

// AdvisoryConfig configures the Tier 3 advisory classifier.
type AdvisoryConfig struct {
	Provider    string
	Endpoint    string
	Model       string
	APIKey      string
	Timeout     time.Duration
	CacheTTL    time.Duration
	RateLimit   int
	Temperature float64
	MaxTokens   int
}

// EngineConfig configures batch processing.
type EngineConfig struct {
	Workers int
}

// DatabaseConfig locates the review database.
type DatabaseConfig struct {
	Path string
}

// ExportConfig controls where returns are written.
type ExportConfig struct {
	Dir string
}

// ServerConfig configures the review API.
type ServerConfig struct {
	Addr string
}

// ScheduleConfig configures the unattended daily run.
type ScheduleConfig struct {
	Cron  string
	Input string
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("compliance.aml_threshold", "1000000.00")
	v.SetDefault("compliance.reference_data", "")
	v.SetDefault("advisory.provider", llm.ProviderOllama)
	v.SetDefault("advisory.endpoint", "")
	v.SetDefault("advisory.model", "")
	v.SetDefault("advisory.timeout", "30s")
	v.SetDefault("advisory.cache_ttl", "24h")
	v.SetDefault("advisory.rate_limit", 600)
	v.SetDefault("advisory.temperature", 0.0)
	v.SetDefault("advisory.max_tokens", 16)
	v.SetDefault("engine.workers", 4)
	v.SetDefault("database.path", "$HOME/.local/share/finnet/finnet.db")
	v.SetDefault("export.dir", ".")
	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("schedule.cron", "0 18 * * *")
	v.SetDefault("schedule.input", "")
}

// Load resolves the configuration from v. Defaults must already be registered.
func Load(v *viper.Viper) (*Config, error) {
	threshold, err := decimal.NewFromString(strings.TrimSpace(v.GetString("compliance.aml_threshold")))
	if err != nil {
		return nil, fmt.Errorf("%w: compliance.aml_threshold: %v", common.ErrInvalidConfig, err)
	}

	cfg := &Config{
		Compliance: ComplianceConfig{
			AMLThreshold:  threshold,
			ReferenceData: ExpandPath(v.GetString("compliance.reference_data")),
		},
		Advisory: AdvisoryConfig{
			Provider:    strings.ToLower(v.GetString("advisory.provider")),
			Endpoint:    v.GetString("advisory.endpoint"),
			Model:       v.GetString("advisory.model"),
			APIKey:      v.GetString("advisory.api_key"),
			Timeout:     v.GetDuration("advisory.timeout"),
			CacheTTL:    v.GetDuration("advisory.cache_ttl"),
			RateLimit:   v.GetInt("advisory.rate_limit"),
			Temperature: v.GetFloat64("advisory.temperature"),
			MaxTokens:   v.GetInt("advisory.max_tokens"),
		},
		Engine:   EngineConfig{Workers: v.GetInt("engine.workers")},
		Database: DatabaseConfig{Path: ExpandPath(v.GetString("database.path"))},
		Export:   ExportConfig{Dir: ExpandPath(v.GetString("export.dir"))},
		Server:   ServerConfig{Addr: v.GetString("server.addr")},
		Schedule: ScheduleConfig{
			Cron:  v.GetString("schedule.cron"),
			Input: ExpandPath(v.GetString("schedule.input")),
		},
	}

	cfg.resolveProviderDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveProviderDefaults fills the local model server defaults and falls back
// to the provider's conventional API key environment variable.
func (c *Config) resolveProviderDefaults() {
	switch c.Advisory.Provider {
	case llm.ProviderOllama:
		if c.Advisory.Endpoint == "" {
			c.Advisory.Endpoint = llm.DefaultOllamaEndpoint
		}
		if c.Advisory.Model == "" {
			c.Advisory.Model = llm.DefaultOllamaModel
		}
	case llm.ProviderOpenAI:
		if c.Advisory.APIKey == "" {
			c.Advisory.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case llm.ProviderAnthropic:
		if c.Advisory.APIKey == "" {
			c.Advisory.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
}

// Validate checks the configuration for values the application cannot run with.
func (c *Config) Validate() error {
	if c.Compliance.AMLThreshold.IsNegative() {
		return fmt.Errorf("%w: AML threshold must not be negative", common.ErrInvalidConfig)
	}

	switch c.Advisory.Provider {
	case llm.ProviderOllama, llm.ProviderMock:
	case llm.ProviderOpenAI, llm.ProviderAnthropic:
		if c.Advisory.APIKey == "" {
			return fmt.Errorf("%w: %s provider requires an API key (advisory.api_key)", common.ErrMissingConfig, c.Advisory.Provider)
		}
	default:
		return fmt.Errorf("%w: unsupported advisory provider %q", common.ErrInvalidConfig, c.Advisory.Provider)
	}

	if c.Advisory.Timeout < 0 {
		return fmt.Errorf("%w: advisory.timeout must not be negative", common.ErrInvalidConfig)
	}
	if c.Engine.Workers < 1 {
		return fmt.Errorf("%w: engine.workers must be at least 1", common.ErrInvalidConfig)
	}
	return nil
}

// WaterfallConfig combines thresholds and reference data into an engine configuration.
func (c *Config) WaterfallConfig(ref *ReferenceData) engine.Config {
	return engine.Config{
		AMLThreshold: c.Compliance.AMLThreshold,
		Mapping:      ref.ProductCodes,
		Rules:        ref.KeywordRules,
		Workers:      c.Engine.Workers,
	}
}

// LLMConfig builds the advisory classifier configuration.
func (c *Config) LLMConfig(ref *ReferenceData) llm.Config {
	return llm.Config{
		Provider:    c.Advisory.Provider,
		Endpoint:    c.Advisory.Endpoint,
		APIKey:      c.Advisory.APIKey,
		Model:       c.Advisory.Model,
		Categories:  ref.AdvisoryCategories,
		Timeout:     c.Advisory.Timeout,
		CacheTTL:    c.Advisory.CacheTTL,
		RateLimit:   c.Advisory.RateLimit,
		Temperature: c.Advisory.Temperature,
		MaxTokens:   c.Advisory.MaxTokens,
	}
}

// ExpandPath expands a leading ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
		}
	}

	return os.ExpandEnv(path)
}
