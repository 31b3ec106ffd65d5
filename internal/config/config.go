package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the sunbird service configuration.
type Config struct {
	HTTP    HTTPConfig              `yaml:"http"`
	Auth    AuthConfig              `yaml:"auth"`
	Logging LoggingConfig           `yaml:"logging"`
	Backend BackendConfig           `yaml:"backend"`
	Sources map[string]SourceConfig `yaml:"sources"`
	Cache   CacheConfig             `yaml:"cache"`
	MCP     MCPConfig               `yaml:"mcp"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// BackendConfig holds outbound call settings shared by every source.
type BackendConfig struct {
	UserAgent          string      `yaml:"user_agent"`
	Retry              RetryConfig `yaml:"retry"`
	MaxConcurrentReads int         `yaml:"max_concurrent_reads"`
	MaxCollectionDepth int         `yaml:"max_collection_depth"`
}

// RetryConfig holds the retry policy.
type RetryConfig struct {
	MaxAttempts       int     `yaml:"max_attempts"`
	AttemptTimeoutSec int     `yaml:"attempt_timeout_sec"`
	BackoffInitialMs  int     `yaml:"backoff_initial_ms"`
	BackoffMultiplier float64 `yaml:"backoff_multiplier"`
	BackoffMaxMs      int     `yaml:"backoff_max_ms"`
}

// AttemptTimeout returns the per-attempt timeout.
func (r RetryConfig) AttemptTimeout() time.Duration {
	return time.Duration(r.AttemptTimeoutSec) * time.Second
}

// BackoffInitial returns the first backoff delay.
func (r RetryConfig) BackoffInitial() time.Duration {
	return time.Duration(r.BackoffInitialMs) * time.Millisecond
}

// BackoffMax returns the backoff cap.
func (r RetryConfig) BackoffMax() time.Duration {
	return time.Duration(r.BackoffMaxMs) * time.Millisecond
}

// SourceConfig describes one content platform deployment.
type SourceConfig struct {
	Catalog        string              `yaml:"catalog"` // default, sandbox
	BaseURL        string              `yaml:"base_url"`
	SearchEndpoint string              `yaml:"search_endpoint"`
	ReadEndpoint   string              `yaml:"read_endpoint"`
	FiltersJSON    string              `yaml:"filters_json"` // overrides catalog allow-lists when valid
	DefaultFilters map[string][]string `yaml:"default_filters"`
	DefaultLimit   int                 `yaml:"default_limit"`
	MaxLimit       int                 `yaml:"max_limit"`
}

// CacheConfig holds content read cache settings.
type CacheConfig struct {
	Driver           string   `yaml:"driver"` // none, memory, redis (default: none)
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	Size             int      `yaml:"size"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// TTL returns the entry lifetime.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// MCPConfig holds MCP server identity.
type MCPConfig struct {
	Name string `yaml:"name"`
}

// Cache drivers.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// Catalog names.
const (
	CatalogDefault = "default"
	CatalogSandbox = "sandbox"
)

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes a YAML document, expanding ${VAR} references, then applies
// defaults and validates.
func Parse(data []byte) (Config, error) {
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
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 8080
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		// Must outlast the default retry ceiling of about 91s.
		c.HTTP.WriteTimeoutSec = 120
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	r := &c.Backend.Retry
	if r.MaxAttempts <= 0 {
		r.MaxAttempts = 3
	}
	if r.AttemptTimeoutSec <= 0 {
		r.AttemptTimeoutSec = 30
	}
	if r.BackoffInitialMs <= 0 {
		r.BackoffInitialMs = 200
	}
	if r.BackoffMultiplier < 1 {
		r.BackoffMultiplier = 2
	}
	if r.BackoffMaxMs <= 0 {
		r.BackoffMaxMs = 2000
	}
	if c.Backend.MaxConcurrentReads <= 0 {
		c.Backend.MaxConcurrentReads = 20
	}
	if c.Backend.MaxCollectionDepth <= 0 {
		c.Backend.MaxCollectionDepth = 8
	}
	if c.Backend.UserAgent == "" {
		c.Backend.UserAgent = "sunbird-content-gateway"
	}

	if len(c.Sources) == 0 {
		c.Sources = map[string]SourceConfig{
			"sunbird": {Catalog: CatalogDefault, BaseURL: "https://diksha.gov.in"},
		}
	}
	for name, s := range c.Sources {
		if s.Catalog == "" {
			s.Catalog = CatalogDefault
		}
		if s.DefaultLimit <= 0 {
			s.DefaultLimit = 10
		}
		if s.MaxLimit <= 0 {
			s.MaxLimit = 100
		}
		c.Sources[name] = s
	}

	if c.Cache.Driver == "" {
		c.Cache.Driver = CacheNone
	}
	if c.Cache.Size <= 0 {
		c.Cache.Size = 1024
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 600
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}

	if c.MCP.Name == "" {
		c.MCP.Name = "sunbird-content"
	}
}

var sourceNameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Backend.Retry.MaxAttempts > 10 {
		return fmt.Errorf("backend.retry.max_attempts must be at most 10, got %d", c.Backend.Retry.MaxAttempts)
	}
	for _, name := range c.SourceNames() {
		s := c.Sources[name]
		if !sourceNameRegex.MatchString(name) {
			return fmt.Errorf("sources.%s: name must match %s", name, sourceNameRegex)
		}
		u, err := url.Parse(s.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("sources.%s.base_url must be an absolute http(s) url, got %q", name, s.BaseURL)
		}
		switch s.Catalog {
		case CatalogDefault, CatalogSandbox:
		default:
			return fmt.Errorf("sources.%s.catalog must be %q or %q, got %q", name, CatalogDefault, CatalogSandbox, s.Catalog)
		}
		if s.MaxLimit > 100 {
			return fmt.Errorf("sources.%s.max_limit must be at most 100, got %d", name, s.MaxLimit)
		}
	}
	switch c.Cache.Driver {
	case CacheNone, CacheMemory:
	case CacheRedis:
		if len(c.Cache.Addrs) == 0 {
			return fmt.Errorf("cache.addrs is required for the redis driver")
		}
	default:
		return fmt.Errorf("cache.driver must be %q, %q or %q, got %q", CacheNone, CacheMemory, CacheRedis, c.Cache.Driver)
	}
	return nil
}

// SourceNames returns configured source names in sorted order.
func (c *Config) SourceNames() []string {
	names := make([]string, 0, len(c.Sources))
	for name := range c.Sources {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
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
