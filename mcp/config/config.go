package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/viant/afs"
	mcp "github.com/viant/mcp"
	"gopkg.in/yaml.v3"
)

const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"

	DefaultAddr           = ":5000"
	DefaultKeyringService = "servicenow-mcp"
)

// Environment variables overriding file settings.
const (
	EnvInstance     = "SERVICENOW_INSTANCE"
	EnvBaseURL      = "SERVICENOW_BASE_URL"
	EnvUsername     = "SERVICENOW_USERNAME"
	EnvPassword     = "SERVICENOW_PASSWORD"
	EnvLogLevel     = "SERVICENOW_LOG_LEVEL"
	EnvOTLPEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
)

type Config struct {
	Server *mcp.ServerOptions `yaml:"server,omitempty" json:"server,omitempty"`

	// Instance is the ServiceNow instance name, e.g. dev12345.
	Instance string `yaml:"instance,omitempty" json:"instance,omitempty"`
	// BaseURL overrides https://{instance}.service-now.com.
	BaseURL     string       `yaml:"baseURL,omitempty" json:"baseURL,omitempty"`
	Credentials *Credentials `yaml:"credentials,omitempty" json:"credentials,omitempty"`

	Transport string `yaml:"transport,omitempty" json:"transport,omitempty"`
	Addr      string `yaml:"addr,omitempty" json:"addr,omitempty"`
	// Tools lists exposed tool patterns: "*", a glob, a prefix or a "!"
	// exclusion.
	Tools            []string   `yaml:"tools,omitempty" json:"tools,omitempty"`
	TimeoutSec       int        `yaml:"timeoutSec,omitempty" json:"timeoutSec,omitempty"`
	MaxResponseBytes int64      `yaml:"maxResponseBytes,omitempty" json:"maxResponseBytes,omitempty"`
	LogLevel         string     `yaml:"logLevel,omitempty" json:"logLevel,omitempty"`
	Telemetry        *Telemetry `yaml:"telemetry,omitempty" json:"telemetry,omitempty"`
}

// Credentials describes where the Basic account comes from. Inline values
// win, then the scy secret resource, then the OS keyring.
type Credentials struct {
	Username  string `yaml:"username,omitempty" json:"username,omitempty"`
	Password  string `yaml:"password,omitempty" json:"-"`
	SecretURL string `yaml:"secretURL,omitempty" json:"secretURL,omitempty"`
	SecretKey string `yaml:"secretKey,omitempty" json:"secretKey,omitempty"`
	// Keyring names the OS keyring service holding the account.
	Keyring string `yaml:"keyring,omitempty" json:"keyring,omitempty"`
}

type Telemetry struct {
	ServiceName  string `yaml:"serviceName,omitempty" json:"serviceName,omitempty"`
	OTLPEndpoint string `yaml:"otlpEndpoint,omitempty" json:"otlpEndpoint,omitempty"`
	Tracing      bool   `yaml:"tracing,omitempty" json:"tracing,omitempty"`
	Metrics      bool   `yaml:"metrics,omitempty" json:"metrics,omitempty"`
}

// Load reads a YAML or JSON config from a local path or any URL supported
// by afs.
func Load(ctx context.Context, location string) (*Config, error) {
	var data []byte
	var err error
	if strings.Contains(location, "://") {
		data, err = afs.New().DownloadWithURL(ctx, location)
	} else {
		data, err = os.ReadFile(location)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", location, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %q: %w", location, err)
	}
	return &cfg, nil
}

// ApplyEnv overrides settings with non-empty environment variables.
func (c *Config) ApplyEnv(lookup func(string) string) {
	if lookup == nil {
		lookup = os.Getenv
	}
	set := func(target *string, key string) {
		if v := lookup(key); v != "" {
			*target = v
		}
	}
	set(&c.Instance, EnvInstance)
	set(&c.BaseURL, EnvBaseURL)
	set(&c.LogLevel, EnvLogLevel)
	if c.Credentials == nil {
		c.Credentials = &Credentials{}
	}
	set(&c.Credentials.Username, EnvUsername)
	set(&c.Credentials.Password, EnvPassword)
	if endpoint := lookup(EnvOTLPEndpoint); endpoint != "" {
		if c.Telemetry == nil {
			c.Telemetry = &Telemetry{}
		}
		c.Telemetry.OTLPEndpoint = endpoint
		c.Telemetry.Tracing = true
	}
}

// Init applies defaults for unset options.
func (c *Config) Init() {
	if c.Credentials == nil {
		c.Credentials = &Credentials{}
	}
	if c.Transport == "" {
		c.Transport = TransportStdio
	}
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if len(c.Tools) == 0 {
		c.Tools = []string{"*"}
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Telemetry == nil {
		c.Telemetry = &Telemetry{}
	}
	if c.Telemetry.ServiceName == "" {
		c.Telemetry.ServiceName = "servicenow-mcp"
	}
}

// Validate reports missing mandatory settings. Credentials are validated
// after resolution because they may live outside the file.
func (c *Config) Validate() error {
	if c.Instance == "" && c.BaseURL == "" {
		return fmt.Errorf("instance is required (set instance or %s)", EnvInstance)
	}
	switch c.Transport {
	case "", TransportStdio, TransportHTTP:
	default:
		return fmt.Errorf("unsupported transport %q", c.Transport)
	}
	if c.TimeoutSec < 0 {
		return fmt.Errorf("timeoutSec must not be negative")
	}
	return nil
}
