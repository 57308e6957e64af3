// Package config loads the service configuration
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"escrutinio/internal/feed"
	"escrutinio/internal/models"
	"escrutinio/internal/parser"
)

// Config holds all application configuration.
type Config struct {
	HTTPAddr           string           `yaml:"http_addr"`
	DataDir            string           `yaml:"data_dir"`
	PocketBaseAddr     string           `yaml:"pocketbase_addr"`
	DisablePartyStore  bool             `yaml:"disable_party_store"`
	LogLevel           string           `yaml:"log_level"`
	PollInterval       time.Duration    `yaml:"poll_interval"`
	RequestTimeout     time.Duration    `yaml:"request_timeout"`
	PartyCacheTTL      time.Duration    `yaml:"party_cache_ttl"`
	ResolveConcurrency int              `yaml:"resolve_concurrency"`
	Encoding           string           `yaml:"encoding"`
	CORSOrigins        []string         `yaml:"cors_origins"`
	Contests           []models.Contest `yaml:"contests"`
}

// Load reads configuration from a YAML file and applies defaults.
// A missing file is not an error; defaults and environment apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config yaml: %w", err)
		}
	}

	applyDefaults(cfg)
	applyEnvironmentOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// GetConfigPath returns the config file path from environment or default.
func GetConfigPath() string {
	if path := os.Getenv("ESCRUTINIO_CONFIG"); path != "" {
		return path
	}
	return "./config.yaml"
}

// DefaultContest is the Castilla y León regional election
func DefaultContest() models.Contest {
	return models.Contest{
		ID:      "cyl",
		Name:    "Elecciones a las Cortes de Castilla y León",
		TopKey:  "castilla-y-leon",
		TopName: "Castilla y León",
		Subdivisions: map[string]models.GeoKey{
			"05": "avila",
			"09": "burgos",
			"24": "leon",
			"34": "palencia",
			"37": "salamanca",
			"40": "segovia",
			"42": "soria",
			"47": "valladolid",
			"49": "zamora",
		},
	}
}

func applyDefaults(cfg *Config) {
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./pb_data"
	}
	if cfg.PocketBaseAddr == "" {
		cfg.PocketBaseAddr = "127.0.0.1:8090"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.PollInterval == 0 {
		cfg.PollInterval = 60 * time.Second
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 30 * time.Second
	}
	if cfg.PartyCacheTTL == 0 {
		cfg.PartyCacheTTL = 10 * time.Minute
	}
	if cfg.ResolveConcurrency == 0 {
		cfg.ResolveConcurrency = 8
	}
	if cfg.Encoding == "" {
		cfg.Encoding = feed.EncodingLatin1
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if len(cfg.Contests) == 0 {
		cfg.Contests = []models.Contest{DefaultContest()}
	}
	for i := range cfg.Contests {
		if len(cfg.Contests[i].TurnoutLabels) == 0 {
			cfg.Contests[i].TurnoutLabels = parser.DefaultTurnoutLabels
		}
	}
}

func applyEnvironmentOverrides(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		cfg.HTTPAddr = ":" + port
	}
	if dataDir := os.Getenv("DATA_DIR"); dataDir != "" {
		cfg.DataDir = dataDir
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.LogLevel = level
	}

	// feed URLs of the first contest, for single-contest deployments
	first := &cfg.Contests[0]
	for env, dst := range map[string]*string{
		"ESCRUTINIO_DISPATCH_URL": &first.DispatchURL,
		"ESCRUTINIO_PAYLOAD_URL":  &first.PayloadURL,
		"ESCRUTINIO_BASELINE_URL": &first.BaselineURL,
		"ESCRUTINIO_TURNOUT_URL":  &first.TurnoutURL,
	} {
		if v := os.Getenv(env); v != "" {
			*dst = v
		}
	}
}

func validate(cfg *Config) error {
	if cfg.PollInterval < time.Second {
		return fmt.Errorf("poll_interval must be at least 1s, got %s", cfg.PollInterval)
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive")
	}
	if cfg.PartyCacheTTL <= 0 {
		return fmt.Errorf("party_cache_ttl must be positive")
	}
	if cfg.ResolveConcurrency < 1 {
		return fmt.Errorf("resolve_concurrency must be at least 1")
	}
	if _, err := feed.LookupEncoding(cfg.Encoding); err != nil {
		return err
	}
	if _, err := zap.ParseAtomicLevel(cfg.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level %q: %w", cfg.LogLevel, err)
	}

	seen := make(map[string]bool, len(cfg.Contests))
	for i := range cfg.Contests {
		c := &cfg.Contests[i]
		if err := c.Validate(); err != nil {
			return err
		}
		if seen[c.ID] {
			return fmt.Errorf("duplicate contest id %q", c.ID)
		}
		seen[c.ID] = true
	}
	return nil
}

// NewLogger builds the production logger at the configured level
func (c *Config) NewLogger(verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	level, err := zap.ParseAtomicLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	zc.Level = level
	if verbose {
		zc.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return zc.Build()
}
