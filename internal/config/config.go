// Package config holds the runtime configuration, loaded from an optional
// YAML file and environment variables.
package config

import (
	"net"
	"strconv"
	"strings"
	"time"
)

// Config is the root configuration.
type Config struct {
	Server         ServerConfig         `yaml:"server" mapstructure:"server"`
	Auth           AuthConfig           `yaml:"auth" mapstructure:"auth"`
	RateLimit      RateLimitConfig      `yaml:"rate_limit" mapstructure:"rate_limit"`
	Ollama         OllamaConfig         `yaml:"ollama" mapstructure:"ollama"`
	TransformerBee TransformerBeeConfig `yaml:"transformerbee" mapstructure:"transformerbee"`
}

// ServerConfig configures the REST listener.
type ServerConfig struct {
	Host           string `yaml:"host" mapstructure:"host" validate:"required"`
	Port           int    `yaml:"port" mapstructure:"port" validate:"min=1,max=65535"`
	LogLevel       string `yaml:"log_level" mapstructure:"log_level" validate:"omitempty,oneof=debug info warn warning error"`
	AllowedOrigins string `yaml:"allowed_origins" mapstructure:"allowed_origins" validate:"omitempty,origin_list"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Origins splits the comma-separated origin allowlist.
func (s ServerConfig) Origins() []string {
	if s.AllowedOrigins == "" {
		return nil
	}
	parts := strings.Split(s.AllowedOrigins, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}

// AuthConfig configures bearer token verification.
type AuthConfig struct {
	Auth0Domain   string `yaml:"auth0_domain" mapstructure:"auth0_domain" validate:"required,hostname"`
	Auth0Audience string `yaml:"auth0_audience" mapstructure:"auth0_audience" validate:"required"`
}

// RateLimitConfig configures the per-identity sliding window.
type RateLimitConfig struct {
	Limit         int `yaml:"limit" mapstructure:"limit" validate:"min=1"`
	WindowSeconds int `yaml:"window_seconds" mapstructure:"window_seconds" validate:"min=1"`
}

// Window returns the configured window as a duration.
func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}

// OllamaConfig configures the summarization backend.
type OllamaConfig struct {
	Host  string `yaml:"host" mapstructure:"host" validate:"required,url"`
	Model string `yaml:"model" mapstructure:"model" validate:"required"`
}

// TransformerBeeConfig configures the conversion backend. ClientID and
// ClientSecret are optional; when both are set the client authenticates via
// the OAuth client credentials flow.
type TransformerBeeConfig struct {
	Host         string `yaml:"host" mapstructure:"host" validate:"required,url"`
	ClientID     string `yaml:"client_id" mapstructure:"client_id"`
	ClientSecret string `yaml:"client_secret" mapstructure:"client_secret" validate:"required_with=ClientID"`
}

// Authenticated reports whether client credentials are configured.
func (t TransformerBeeConfig) Authenticated() bool {
	return t.ClientID != "" && t.ClientSecret != ""
}

// SetDefaults applies default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}
	if c.Server.AllowedOrigins == "" {
		c.Server.AllowedOrigins = "http://localhost:5173," +
			"https://nice-mushroom-04ebea203.3.azurestaticapps.net," +
			"https://thankful-water-00644131e.3.azurestaticapps.net"
	}
	if c.Auth.Auth0Domain == "" {
		c.Auth.Auth0Domain = "hochfrequenz.eu.auth0.com"
	}
	if c.Auth.Auth0Audience == "" {
		c.Auth.Auth0Audience = "https://transformer.bee"
	}
	if c.RateLimit.Limit == 0 {
		c.RateLimit.Limit = 10
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.Ollama.Host == "" {
		c.Ollama.Host = "http://localhost:11434"
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = "llama3"
	}
	if c.TransformerBee.Host == "" {
		c.TransformerBee.Host = "https://transformerstage.utilibee.io"
	}
}
