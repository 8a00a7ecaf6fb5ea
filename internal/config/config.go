package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Search index drivers.
const (
	DriverRedis = "redis"
	DriverBleve = "bleve"
)

// Config holds the figdex configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Auth     AuthConfig     `yaml:"auth"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig maps API keys to the owner they act for. Empty disables auth;
// the owner is then read from the X-Owner-ID header.
type AuthConfig struct {
	APIKeys map[string]string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`

	// Per-owner request budget; 0 disables rate limiting.
	RateLimitRPS   float64 `yaml:"rate_limit_rps"`
	RateLimitBurst int     `yaml:"rate_limit_burst"`
}

// DatabaseConfig holds primary store settings.
type DatabaseConfig struct {
	Path string `yaml:"path"` // SQLite file
}

// SearchConfig holds managed index and query settings.
type SearchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	TestMode bool   `yaml:"test_mode"`
	Driver   string `yaml:"driver"` // redis, bleve (default: redis)

	Addrs     []string `yaml:"addrs"`
	Password  string   `yaml:"password"`
	BlevePath string   `yaml:"bleve_path"` // empty = in-memory

	KeyPrefix string `yaml:"key_prefix"`
	IndexName string `yaml:"index_name"`

	DefaultLimit int `yaml:"default_limit"`
	MaxLimit     int `yaml:"max_limit"`
	FullLimit    int `yaml:"full_limit"`

	FallbackOverfetch     int `yaml:"fallback_overfetch"`
	FallbackMaxCandidates int `yaml:"fallback_max_candidates"`

	QueryTimeoutMs   int `yaml:"query_timeout_ms"`
	ReadinessTimeout int `yaml:"readiness_timeout_sec"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
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
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 10
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.HTTP.RateLimitRPS > 0 && c.HTTP.RateLimitBurst <= 0 {
		c.HTTP.RateLimitBurst = 20
	}
	if c.Database.Path == "" {
		c.Database.Path = "figdex.db"
	}
	if c.Search.Driver == "" {
		c.Search.Driver = DriverRedis
	}
	if c.Search.KeyPrefix == "" {
		c.Search.KeyPrefix = "figdex:"
	}
	if c.Search.IndexName == "" {
		c.Search.IndexName = c.Search.KeyPrefix + "idx"
	}
	if c.Search.DefaultLimit <= 0 {
		c.Search.DefaultLimit = 10
	}
	if c.Search.MaxLimit <= 0 {
		c.Search.MaxLimit = 100
	}
	if c.Search.FullLimit <= 0 {
		c.Search.FullLimit = 50
	}
	if c.Search.FallbackOverfetch <= 0 {
		c.Search.FallbackOverfetch = 3
	}
	if c.Search.FallbackMaxCandidates <= 0 {
		c.Search.FallbackMaxCandidates = 300
	}
	if c.Search.QueryTimeoutMs <= 0 {
		c.Search.QueryTimeoutMs = 2000
	}
	if c.Search.ReadinessTimeout <= 0 {
		c.Search.ReadinessTimeout = 10
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.HTTP.RateLimitRPS < 0 {
		return fmt.Errorf("http.rate_limit_rps must not be negative, got %v", c.HTTP.RateLimitRPS)
	}
	switch c.Search.Driver {
	case DriverRedis, DriverBleve:
	default:
		return fmt.Errorf("search.driver must be %q or %q, got %q", DriverRedis, DriverBleve, c.Search.Driver)
	}
	if c.Search.Enabled && c.Search.Driver == DriverRedis && len(c.Search.Addrs) == 0 {
		return fmt.Errorf("search.addrs is required for the redis driver")
	}
	if c.Search.DefaultLimit > c.Search.MaxLimit {
		return fmt.Errorf("search.default_limit (%d) exceeds search.max_limit (%d)",
			c.Search.DefaultLimit, c.Search.MaxLimit)
	}
	for key, owner := range c.Auth.APIKeys {
		if key == "" || strings.TrimSpace(owner) == "" {
			return fmt.Errorf("auth.api_keys entries need a key and an owner")
		}
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
