package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jmcallister/forecast-service/internal/identity"
)

// Config holds settings for both binaries, loaded from YAML and env.
type Config struct {
	APIPort    string
	PortalPort string

	// Identity-provider settings used by the portal to call the API.
	AuthorityTemplate  string
	Tenant             string
	Audience           string
	ClientID           string
	ClientSecret       string
	ServiceBaseAddress string
	AmbientCredentials bool

	// Token validation settings for the API's bearer middleware.
	AuthIssuer     string
	AuthAudience   string
	AuthSigningKey string

	ForecastDays int

	RequestTimeout time.Duration
	RateLimitRPS   int
	RateLimitBurst int

	ShutdownTimeout               time.Duration
	ShutdownInFlightTimeout       time.Duration
	ShutdownInFlightCheckInterval time.Duration
}

type fileConfig struct {
	Server struct {
		APIPort    string `yaml:"api_port"`
		PortalPort string `yaml:"portal_port"`
	} `yaml:"server"`

	Identity struct {
		AuthorityTemplate  string `yaml:"authority_template"`
		Tenant             string `yaml:"tenant"`
		Audience           string `yaml:"audience"`
		ClientID           string `yaml:"client_id"`
		BaseAddress        string `yaml:"base_address"`
		AmbientCredentials bool   `yaml:"ambient_credentials"`
	} `yaml:"identity"`

	Auth struct {
		Issuer   string `yaml:"issuer"`
		Audience string `yaml:"audience"`
	} `yaml:"auth"`

	Forecast struct {
		Days int `yaml:"days"`
	} `yaml:"forecast"`

	Request struct {
		Timeout string `yaml:"timeout"`
	} `yaml:"request"`

	Reliability struct {
		RateLimitRPS   int `yaml:"rate_limit_rps"`
		RateLimitBurst int `yaml:"rate_limit_burst"`
	} `yaml:"reliability"`

	Shutdown struct {
		Timeout               string `yaml:"timeout"`
		InFlightTimeout       string `yaml:"in_flight_timeout"`
		InFlightCheckInterval string `yaml:"in_flight_check_interval"`
	} `yaml:"shutdown"`
}

type secretsFile struct {
	ClientSecret   string `yaml:"client_secret"`
	AuthSigningKey string `yaml:"auth_signing_key"`
}

// Load reads configuration from config/{ENV_NAME}.yaml (default dev) and
// config/secrets.yaml. Secrets come from CLIENT_SECRET / AUTH_SIGNING_KEY
// env or the secrets file. Call from project root.
func Load() (*Config, error) {
	env := os.Getenv("ENV_NAME")
	if env == "" {
		env = "dev"
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("config: get working directory: %w", err)
	}
	configPath := filepath.Join(cwd, "config", env+".yaml")
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", configPath)
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	cfg := &Config{}

	cfg.APIPort = fc.Server.APIPort
	if cfg.APIPort == "" {
		cfg.APIPort = "8080"
	}
	cfg.PortalPort = fc.Server.PortalPort
	if cfg.PortalPort == "" {
		cfg.PortalPort = "8081"
	}

	cfg.AuthorityTemplate = fc.Identity.AuthorityTemplate
	cfg.Tenant = fc.Identity.Tenant
	cfg.Audience = fc.Identity.Audience
	cfg.ClientID = fc.Identity.ClientID
	cfg.ServiceBaseAddress = fc.Identity.BaseAddress
	if cfg.ServiceBaseAddress == "" {
		cfg.ServiceBaseAddress = "http://localhost:" + cfg.APIPort + "/weatherforecast"
	}
	cfg.AmbientCredentials = fc.Identity.AmbientCredentials

	cfg.AuthIssuer = fc.Auth.Issuer
	cfg.AuthAudience = fc.Auth.Audience
	if cfg.AuthAudience == "" {
		cfg.AuthAudience = cfg.Audience
	}

	var sec secretsFile
	secretsPath := filepath.Join(cwd, "config", "secrets.yaml")
	secretsData, err := os.ReadFile(secretsPath)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read secrets file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(secretsData, &sec); err != nil {
			return nil, fmt.Errorf("parse secrets file: %w", err)
		}
	}
	cfg.ClientSecret = os.Getenv("CLIENT_SECRET")
	if cfg.ClientSecret == "" {
		cfg.ClientSecret = sec.ClientSecret
	}
	cfg.AuthSigningKey = os.Getenv("AUTH_SIGNING_KEY")
	if cfg.AuthSigningKey == "" {
		cfg.AuthSigningKey = sec.AuthSigningKey
	}

	cfg.ForecastDays = fc.Forecast.Days
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = 5
	}

	cfg.RequestTimeout = parseDuration(fc.Request.Timeout, 5*time.Second)
	cfg.RateLimitRPS = fc.Reliability.RateLimitRPS
	if cfg.RateLimitRPS <= 0 {
		cfg.RateLimitRPS = 100
	}
	cfg.RateLimitBurst = fc.Reliability.RateLimitBurst
	if cfg.RateLimitBurst <= 0 {
		cfg.RateLimitBurst = 250
	}

	cfg.ShutdownTimeout = parseDuration(fc.Shutdown.Timeout, 30*time.Second)
	cfg.ShutdownInFlightTimeout = parseDuration(fc.Shutdown.InFlightTimeout, 10*time.Second)
	cfg.ShutdownInFlightCheckInterval = parseDuration(fc.Shutdown.InFlightCheckInterval, 100*time.Millisecond)

	if err := validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Identity assembles the identity configuration consumed by the client
// wrapper. Validation happens at wrapper construction.
func (c *Config) Identity() identity.Config {
	return identity.Config{
		AuthorityTemplate:  c.AuthorityTemplate,
		Tenant:             c.Tenant,
		Audience:           c.Audience,
		ClientID:           c.ClientID,
		ClientSecret:       c.ClientSecret,
		BaseAddress:        c.ServiceBaseAddress,
		AmbientCredentials: c.AmbientCredentials,
	}
}

// ValidateAPI checks the settings the API binary cannot run without.
func (c *Config) ValidateAPI() error {
	if c.AuthSigningKey == "" {
		return fmt.Errorf("AUTH_SIGNING_KEY required (set env or config/secrets.yaml auth_signing_key)")
	}
	if c.AuthIssuer == "" {
		return fmt.Errorf("auth.issuer is required")
	}
	if c.AuthAudience == "" {
		return fmt.Errorf("auth.audience is required (or identity.audience)")
	}
	return nil
}

// ValidatePortal checks the settings the portal binary cannot run without.
func (c *Config) ValidatePortal() error {
	if c.ClientSecret == "" {
		return fmt.Errorf("CLIENT_SECRET required (set env or config/secrets.yaml client_secret)")
	}
	return c.Identity().Validate()
}

// parseDuration parses a duration string and returns defaultVal on empty
// string, parse error, or non-positive result.
func parseDuration(s string, defaultVal time.Duration) time.Duration {
	s = strings.TrimSpace(s)
	if s == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

// validate performs post-load validation of values shared by both binaries.
func validate(cfg *Config) error {
	if cfg.ForecastDays > 50 {
		return fmt.Errorf("forecast.days must be at most 50, got %d", cfg.ForecastDays)
	}
	if cfg.AuthorityTemplate != "" && !strings.Contains(cfg.AuthorityTemplate, "%s") {
		return fmt.Errorf("identity.authority_template must contain a %%s tenant placeholder")
	}
	return nil
}
