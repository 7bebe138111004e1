package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIURL     = "http://localhost:8000/"
	DefaultHTTPAddr   = ":8080"
	DefaultSessionTTL = 24 * time.Hour
	devSessionSecret  = "dev-secret-change-me"
)

type Config struct {
	API     APIConfig     `yaml:"api"`
	HTTP    HTTPConfig    `yaml:"http"`
	Session SessionConfig `yaml:"session"`
	Store   StoreConfig   `yaml:"store"`
	Logging LoggingConfig `yaml:"logging"`
}

// APIConfig locates the analysis backend.
type APIConfig struct {
	URL     string `yaml:"url"`
	Version string `yaml:"version"` // optional path segment after /api
}

type HTTPConfig struct {
	Addr     string `yaml:"addr"`
	GRPCAddr string `yaml:"grpc_addr"` // empty disables the gRPC health service
}

type SessionConfig struct {
	Secret     string        `yaml:"secret"`
	Issuer     string        `yaml:"issuer"`
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
}

type StoreConfig struct {
	Driver string `yaml:"driver"` // memory, sqlite
	Path   string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

func DefaultConfig() Config {
	return Config{
		API: APIConfig{URL: DefaultAPIURL},
		HTTP: HTTPConfig{
			Addr: DefaultHTTPAddr,
		},
		Session: SessionConfig{
			Secret:     devSessionSecret,
			Issuer:     "queryosity",
			CookieName: "queryosity_session",
			TTL:        DefaultSessionTTL,
		},
		Store: StoreConfig{
			Driver: "memory",
			Path:   defaultDBPath(),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadConfig reads the YAML file at path on top of the defaults and then
// applies environment overrides. A missing file is not an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("API_URL"); v != "" {
		c.API.URL = v
	}
	if v := os.Getenv("API_VERSION"); v != "" {
		c.API.Version = v
	}
	if v := os.Getenv("QUERYOSITY_HTTP_ADDR"); v != "" {
		c.HTTP.Addr = v
	}
	if v := os.Getenv("QUERYOSITY_GRPC_ADDR"); v != "" {
		c.HTTP.GRPCAddr = v
	}
	if v := os.Getenv("QUERYOSITY_SESSION_SECRET"); v != "" {
		c.Session.Secret = v
	}
	if v := os.Getenv("QUERYOSITY_SESSION_TTL_HOURS"); v != "" {
		// unparsable values keep the configured TTL
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			c.Session.TTL = time.Duration(hours) * time.Hour
		}
	}
	if v := os.Getenv("QUERYOSITY_STORE"); v != "" {
		c.Store.Driver = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("QUERYOSITY_DB_PATH"); v != "" {
		c.Store.Path = v
	}
	if v := os.Getenv("QUERYOSITY_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.API.URL) == "" {
		return fmt.Errorf("api.url is required")
	}
	switch c.Store.Driver {
	case "memory":
	case "sqlite":
		if c.Store.Path == "" {
			return fmt.Errorf("store.path is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.Session.Secret == "" {
		return fmt.Errorf("session.secret is required")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	return nil
}

// UsesDevSecret reports whether the built-in session secret is in effect.
func (c Config) UsesDevSecret() bool {
	return c.Session.Secret == devSessionSecret
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		home = "."
	}
	return filepath.Join(home, ".queryosity", "state.db")
}
