package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type AppConfig struct {
	Port            string        `yaml:"port"             env:"PORT"             env-default:"8080"`
	Environment     string        `yaml:"environment"      env:"ENVIRONMENT"      env-default:"development"`
	ServiceName     string        `yaml:"service_name"     env:"SERVICE_NAME"     env-default:"todohub"`
	ServiceVersion  string        `yaml:"service_version"  env:"SERVICE_VERSION"  env-default:"1.0.0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`

	MetricsPort  string `yaml:"metrics_port"  env:"METRICS_PORT"  env-default:"9091"`
	OTLPEndpoint string `yaml:"otlp_endpoint" env:"OTLP_ENDPOINT"`
	LokiURL      string `yaml:"loki_url"      env:"LOKI_URL"`

	RateLimitEnabled bool                       `yaml:"rate_limit_enabled" env:"RATE_LIMIT_ENABLED" env-default:"true"`
	RateLimitConfigs map[string]RateLimitConfig `yaml:"-"`

	CacheEnabled bool          `yaml:"cache_enabled" env:"CACHE_ENABLED" env-default:"true"`
	CacheTTL     time.Duration `yaml:"cache_ttl"     env:"CACHE_TTL"     env-default:"3s"`

	EnforceHTTPS bool `yaml:"enforce_https" env:"ENFORCE_HTTPS" env-default:"false"`

	MCPEnabled bool   `yaml:"mcp_enabled" env:"MCP_ENABLED" env-default:"true"`
	MCPPath    string `yaml:"mcp_path"    env:"MCP_PATH"    env-default:"/mcp"`
}

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

func defaultRateLimits() map[string]RateLimitConfig {
	return map[string]RateLimitConfig{
		"/todos": {
			Requests: 100,
			Window:   time.Minute,
		},
		"/mcp": {
			Requests: 300,
			Window:   time.Minute,
		},
	}
}

// GetDefaultConfig returns the configuration used when nothing is set in the
// environment.
func GetDefaultConfig() *AppConfig {
	return &AppConfig{
		Port:             "8080",
		Environment:      "development",
		ServiceName:      "todohub",
		ServiceVersion:   "1.0.0",
		ShutdownTimeout:  10 * time.Second,
		MetricsPort:      "9091",
		RateLimitEnabled: true,
		RateLimitConfigs: defaultRateLimits(),
		CacheEnabled:     true,
		CacheTTL:         3 * time.Second,
		EnforceHTTPS:     false,
		MCPEnabled:       true,
		MCPPath:          "/mcp",
	}
}

// Load reads CONFIG_PATH (default ./config.yaml) when it exists, then the
// environment. Env vars win over the file; env-default tags fill the rest.
func Load() (*AppConfig, error) {
	var cfg AppConfig

	path := os.Getenv("CONFIG_PATH")
	explicitPath := path != ""

	if !explicitPath {
		path = "./config.yaml"
	}

	if _, err := os.Stat(path); err == nil {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if explicitPath {
		return nil, fmt.Errorf("config: file %s: %w", path, err)
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	cfg.RateLimitConfigs = defaultRateLimits()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	return &cfg, nil
}

func (c *AppConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	if c.CacheEnabled && c.CacheTTL <= 0 {
		return errors.New("cache_ttl must be positive when the cache is enabled")
	}

	if c.MCPEnabled && (c.MCPPath == "" || c.MCPPath[0] != '/') {
		return fmt.Errorf("mcp_path must start with '/': %q", c.MCPPath)
	}

	if c.ShutdownTimeout <= 0 {
		return errors.New("shutdown_timeout must be positive")
	}

	return nil
}

func (c *AppConfig) IsProduction() bool {
	return c.Environment == "production"
}
