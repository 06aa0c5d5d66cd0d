// Package config loads daemon configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moisenya/pronoai/pkg/fixtures"
	"github.com/moisenya/pronoai/pkg/gate"
	"github.com/moisenya/pronoai/pkg/rationale"
	"github.com/moisenya/pronoai/pkg/slate"
)

type Config struct {
	Env       string          `yaml:"env"` // "local", "dev", "prod"
	HTTPAddr  string          `yaml:"http_addr"`
	Scan      ScanConfig      `yaml:"scan"`
	Sources   SourcesConfig   `yaml:"sources"`
	Reconcile ReconcileConfig `yaml:"reconcile"`
	Gate      GateConfig      `yaml:"gate"`
	Rationale RationaleConfig `yaml:"rationale"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ScanConfig struct {
	Timezone     string        `yaml:"timezone"`
	WindowBuffer time.Duration `yaml:"window_buffer"`
	DayOffsets   []int         `yaml:"day_offsets"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	KickoffGrace time.Duration `yaml:"kickoff_grace"`
	Interval     time.Duration `yaml:"interval"` // 0 disables the scan loop
	PerSport     int           `yaml:"per_sport"`
	MaxPicks     int           `yaml:"max_picks"`
}

type SourcesConfig struct {
	ESPN      SourceConfig `yaml:"espn"`
	Sofascore SourceConfig `yaml:"sofascore"`
}

type SourceConfig struct {
	BaseURL   string        `yaml:"base_url"`
	RateLimit float64       `yaml:"rate_limit"` // requests per second
	Burst     int           `yaml:"burst"`
	Timeout   time.Duration `yaml:"timeout"`
}

type ReconcileConfig struct {
	Tolerance time.Duration `yaml:"tolerance"`
}

type GateConfig struct {
	MinProviders   int                `yaml:"min_providers"`
	OddsMin        float64            `yaml:"odds_min"`
	OddsMax        float64            `yaml:"odds_max"`
	DispersionFlag float64            `yaml:"dispersion_flag"`
	MinSignals     int                `yaml:"min_signals"`
	MinEdge        map[string]float64 `yaml:"min_edge"` // keyed by sport name
}

type RationaleConfig struct {
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	Timeout     time.Duration `yaml:"timeout"`
	Temperature float64       `yaml:"temperature"`
	MaxTokens   int           `yaml:"max_tokens"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Default returns the production defaults.
func Default() *Config {
	t := gate.DefaultThresholds()
	minEdge := make(map[string]float64, len(t.MinEdge))
	for sport, v := range t.MinEdge {
		minEdge[string(sport)] = v
	}
	g := rationale.DefaultGeminiConfig()

	return &Config{
		Env:      "local",
		HTTPAddr: ":8080",
		Scan: ScanConfig{
			Timezone:     "Europe/Paris",
			WindowBuffer: fixtures.DefaultWindowBuffer,
			DayOffsets:   []int{-1, 0, 1},
			FetchTimeout: 5 * time.Second,
			KickoffGrace: 5 * time.Minute,
			PerSport:     3,
			MaxPicks:     9,
		},
		Sources: SourcesConfig{
			ESPN:      SourceConfig{BaseURL: "https://site.api.espn.com", RateLimit: 5, Burst: 5, Timeout: 5 * time.Second},
			Sofascore: SourceConfig{BaseURL: "https://api.sofascore.com", RateLimit: 2, Burst: 3, Timeout: 5 * time.Second},
		},
		Reconcile: ReconcileConfig{Tolerance: 10 * time.Minute},
		Gate: GateConfig{
			MinProviders:   t.MinProviders,
			OddsMin:        t.OddsMin,
			OddsMax:        t.OddsMax,
			DispersionFlag: t.DispersionFlag,
			MinSignals:     t.MinSignals,
			MinEdge:        minEdge,
		},
		Rationale: RationaleConfig{
			Model:       g.Model,
			BaseURL:     g.BaseURL,
			Timeout:     g.Timeout,
			Temperature: g.Temperature,
			MaxTokens:   g.MaxTokens,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()
	if configPath == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides values from environment variables.
func (c *Config) ApplyEnv() {
	c.Env = getEnv("PRONO_ENV", c.Env)
	c.HTTPAddr = getEnv("PRONO_HTTP_ADDR", c.HTTPAddr)
	c.Scan.Timezone = getEnv("PRONO_TIMEZONE", c.Scan.Timezone)
	c.Scan.Interval = getEnvDuration("PRONO_SCAN_INTERVAL", c.Scan.Interval)
	c.Rationale.APIKey = getEnv("GEMINI_API_KEY", c.Rationale.APIKey)
	c.Rationale.Model = getEnv("GEMINI_MODEL", c.Rationale.Model)
	c.Logging.Level = getEnv("PRONO_LOG_LEVEL", c.Logging.Level)
}

// Validate checks values that would make the pipeline misbehave.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Scan.Timezone) == "" {
		errs = append(errs, errors.New("scan.timezone is required"))
	}
	if len(c.Scan.DayOffsets) == 0 {
		errs = append(errs, errors.New("scan.day_offsets must not be empty"))
	}
	if c.Scan.PerSport <= 0 || c.Scan.MaxPicks <= 0 {
		errs = append(errs, errors.New("scan.per_sport and scan.max_picks must be positive"))
	}
	if c.Gate.OddsMin >= c.Gate.OddsMax {
		errs = append(errs, fmt.Errorf("gate.odds_min %.2f must be below gate.odds_max %.2f", c.Gate.OddsMin, c.Gate.OddsMax))
	}
	for name := range c.Gate.MinEdge {
		if !fixtures.Sport(name).Valid() {
			errs = append(errs, fmt.Errorf("gate.min_edge: unknown sport %q", name))
		}
	}
	if c.Reconcile.Tolerance < 0 {
		errs = append(errs, errors.New("reconcile.tolerance must not be negative"))
	}
	return errors.Join(errs...)
}

// Thresholds converts the gate section.
func (c *Config) Thresholds() *gate.Thresholds {
	t := gate.DefaultThresholds()
	t.MinProviders = c.Gate.MinProviders
	t.OddsMin = c.Gate.OddsMin
	t.OddsMax = c.Gate.OddsMax
	t.DispersionFlag = c.Gate.DispersionFlag
	t.MinSignals = c.Gate.MinSignals
	for name, v := range c.Gate.MinEdge {
		t.MinEdge[fixtures.Sport(name)] = v
	}
	return t
}

// ReconcilerConfig converts the reconcile section.
func (c *Config) ReconcilerConfig() *fixtures.ReconcilerConfig {
	rc := fixtures.DefaultReconcilerConfig()
	rc.Tolerance = c.Reconcile.Tolerance
	return rc
}

// BuilderConfig converts the slate limits.
func (c *Config) BuilderConfig() *slate.BuilderConfig {
	return &slate.BuilderConfig{PerSport: c.Scan.PerSport, MaxPicks: c.Scan.MaxPicks}
}

// GeminiConfig converts the rationale section.
func (c *Config) GeminiConfig() rationale.GeminiConfig {
	return rationale.GeminiConfig{
		APIKey:      c.Rationale.APIKey,
		Model:       c.Rationale.Model,
		BaseURL:     c.Rationale.BaseURL,
		MaxTokens:   c.Rationale.MaxTokens,
		Temperature: c.Rationale.Temperature,
		Timeout:     c.Rationale.Timeout,
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
