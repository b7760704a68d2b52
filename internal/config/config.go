package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/huntline/phrasehound/internal/domain"
)

// Config holds the phrasehound bot configuration.
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Telemetr TelemetrConfig `yaml:"telemetr"`
	Match    MatchConfig    `yaml:"match"`
	Search   SearchConfig   `yaml:"search"`
	Sessions SessionsConfig `yaml:"sessions"`
	Ops      OpsConfig      `yaml:"ops"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TelegramConfig holds bot API settings.
type TelegramConfig struct {
	Token          string  `yaml:"token"`
	PollTimeoutSec int     `yaml:"poll_timeout_sec"`
	AllowedChatIDs []int64 `yaml:"allowed_chat_ids"` // empty = any chat
	MaxResultCards int     `yaml:"max_result_cards"` // result cards per search
}

// TelemetrConfig holds the content search provider settings.
type TelemetrConfig struct {
	BaseURL    string `yaml:"base_url"`
	Token      string `yaml:"token"`
	Pages      int    `yaml:"pages"`     // page budget per seed
	PageSize   int    `yaml:"page_size"` // items per page
	MinViews   int    `yaml:"min_views"`
	UseQuotes  *bool  `yaml:"use_quotes"` // wrap the query in double quotes
	TimeoutSec int    `yaml:"timeout_sec"`
}

// MatchConfig holds the phrase match engine knobs.
type MatchConfig struct {
	RequireExact   *bool    `yaml:"require_exact"`
	MaxGapWords    int      `yaml:"max_gap_words"`
	FuzzyThreshold *float64 `yaml:"fuzzy_threshold"` // [0,1]
	Debug          bool     `yaml:"debug"`
}

// SearchConfig holds fan-out settings for one search run.
type SearchConfig struct {
	Workers int `yaml:"workers"`
}

// SessionsConfig holds conversation state storage settings.
type SessionsConfig struct {
	Driver           string   `yaml:"driver"` // redis, memory (default: memory)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// OpsConfig holds the operational HTTP server settings (health, metrics).
type OpsConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Telegram.PollTimeoutSec <= 0 {
		c.Telegram.PollTimeoutSec = 25
	}
	if c.Telegram.MaxResultCards <= 0 {
		c.Telegram.MaxResultCards = 8
	}
	if c.Telemetr.BaseURL == "" {
		c.Telemetr.BaseURL = "https://api.telemetr.me"
	}
	if c.Telemetr.Pages <= 0 {
		c.Telemetr.Pages = 3
	}
	if c.Telemetr.PageSize <= 0 {
		c.Telemetr.PageSize = 50
	}
	if c.Telemetr.UseQuotes == nil {
		c.Telemetr.UseQuotes = boolPtr(true)
	}
	if c.Telemetr.TimeoutSec <= 0 {
		c.Telemetr.TimeoutSec = 30
	}
	if c.Match.RequireExact == nil {
		c.Match.RequireExact = boolPtr(true)
	}
	if c.Match.FuzzyThreshold == nil {
		v := 0.72
		c.Match.FuzzyThreshold = &v
	}
	if c.Search.Workers <= 0 {
		c.Search.Workers = 4
	}
	if c.Sessions.Driver == "" {
		c.Sessions.Driver = "memory"
	}
	if c.Sessions.TTLSec <= 0 {
		c.Sessions.TTLSec = 3600
	}
	if c.Sessions.KeyPrefix == "" {
		c.Sessions.KeyPrefix = "phrasehound:"
	}
	if c.Sessions.ReadinessTimeout <= 0 {
		c.Sessions.ReadinessTimeout = 10
	}
	if c.Ops.Port <= 0 {
		c.Ops.Port = 8080
	}
	if c.Ops.ReadTimeoutSec <= 0 {
		c.Ops.ReadTimeoutSec = 10
	}
	if c.Ops.WriteTimeoutSec <= 0 {
		c.Ops.WriteTimeoutSec = 10
	}
	if c.Ops.ShutdownSec <= 0 {
		c.Ops.ShutdownSec = 10
	}
}

// Validate checks the configuration for correctness. Every violation wraps
// domain.ErrInvalidConfig so callers can tell a bad config from an IO error.
func (c *Config) Validate() error {
	if c.Telegram.Token == "" {
		return fmt.Errorf("%w: telegram.token is required", domain.ErrInvalidConfig)
	}
	if c.Telemetr.Token == "" {
		return fmt.Errorf("%w: telemetr.token is required", domain.ErrInvalidConfig)
	}
	if c.Telemetr.PageSize > 100 {
		return fmt.Errorf("%w: telemetr.page_size must be at most 100, got %d",
			domain.ErrInvalidConfig, c.Telemetr.PageSize)
	}
	if c.Match.MaxGapWords < 0 {
		return fmt.Errorf("%w: match.max_gap_words must not be negative, got %d",
			domain.ErrInvalidConfig, c.Match.MaxGapWords)
	}
	if t := *c.Match.FuzzyThreshold; t < 0 || t > 1 {
		return fmt.Errorf("%w: match.fuzzy_threshold must be within [0,1], got %v",
			domain.ErrInvalidConfig, t)
	}
	switch c.Sessions.Driver {
	case "memory":
	case "redis":
		if len(c.Sessions.Addrs) == 0 {
			return fmt.Errorf("%w: sessions.addrs is required for the redis driver",
				domain.ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: sessions.driver must be \"redis\" or \"memory\", got %q",
			domain.ErrInvalidConfig, c.Sessions.Driver)
	}
	if c.Ops.Port > 65535 {
		return fmt.Errorf("%w: ops.port must be between 1 and 65535, got %d",
			domain.ErrInvalidConfig, c.Ops.Port)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}

func boolPtr(v bool) *bool { return &v }
