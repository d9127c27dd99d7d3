package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestSetDefaults(t *testing.T) {
	var cfg Config
	cfg.SetDefaults()

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Server.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.Server.LogLevel)
	}
	if cfg.Auth.Auth0Domain != "hochfrequenz.eu.auth0.com" {
		t.Errorf("Auth0Domain = %q", cfg.Auth.Auth0Domain)
	}
	if cfg.Auth.Auth0Audience != "https://transformer.bee" {
		t.Errorf("Auth0Audience = %q", cfg.Auth.Auth0Audience)
	}
	if cfg.RateLimit.Limit != 10 || cfg.RateLimit.Window() != time.Minute {
		t.Errorf("rate limit = %d/%v", cfg.RateLimit.Limit, cfg.RateLimit.Window())
	}
	if cfg.Ollama.Host != "http://localhost:11434" || cfg.Ollama.Model != "llama3" {
		t.Errorf("ollama = %q/%q", cfg.Ollama.Host, cfg.Ollama.Model)
	}
	if cfg.TransformerBee.Host != "https://transformerstage.utilibee.io" {
		t.Errorf("transformerbee host = %q", cfg.TransformerBee.Host)
	}
	if cfg.TransformerBee.Authenticated() {
		t.Error("Authenticated() = true without credentials")
	}
}

func TestSetDefaultsKeepsExplicitValues(t *testing.T) {
	cfg := Config{
		Server: ServerConfig{Host: "127.0.0.1", Port: 9090},
		Ollama: OllamaConfig{Model: "mistral"},
	}
	cfg.SetDefaults()

	if cfg.Server.Addr() != "127.0.0.1:9090" {
		t.Errorf("Addr() = %q", cfg.Server.Addr())
	}
	if cfg.Ollama.Model != "mistral" {
		t.Errorf("Model = %q", cfg.Ollama.Model)
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		var cfg Config
		cfg.SetDefaults()
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"with credentials", func(c *Config) {
			c.TransformerBee.ClientID = "id"
			c.TransformerBee.ClientSecret = "secret"
		}, ""},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "Port"},
		{"bad log level", func(c *Config) { c.Server.LogLevel = "verbose" }, "LogLevel"},
		{"bad origin scheme", func(c *Config) { c.Server.AllowedOrigins = "ftp://example.com" }, "AllowedOrigins"},
		{"origin without host", func(c *Config) { c.Server.AllowedOrigins = "http://" }, "AllowedOrigins"},
		{"bad ollama url", func(c *Config) { c.Ollama.Host = "not a url" }, "Host"},
		{"secret without client id", func(c *Config) {
			c.TransformerBee.ClientSecret = "secret"
		}, "client_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate(): unexpected error %v", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestOrigins(t *testing.T) {
	s := ServerConfig{AllowedOrigins: "http://localhost:3000, https://app.example.com ,"}
	got := s.Origins()
	want := []string{"http://localhost:3000", "https://app.example.com"}
	if len(got) != len(want) {
		t.Fatalf("Origins() = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Origins()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	file := filepath.Join(dir, "transformerbee-mcp.yaml")
	body := `
server:
  port: 9999
  allowed_origins: "https://app.example.com"
ollama:
  model: mistral
`
	if err := os.WriteFile(file, []byte(body), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}

	if err := InitViper(file); err != nil {
		t.Fatalf("InitViper(): %v", err)
	}
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig(): %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
	if got := cfg.Server.Origins(); len(got) != 1 || got[0] != "https://app.example.com" {
		t.Errorf("Origins() = %v", got)
	}
	if cfg.Ollama.Model != "mistral" {
		t.Errorf("Model = %q", cfg.Ollama.Model)
	}
	// Untouched keys fall back to defaults.
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Host = %q", cfg.Server.Host)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	t.Setenv("OLLAMA_MODEL", "phi3")
	t.Setenv("RATE_LIMIT", "5")
	t.Setenv("TRANSFORMERBEE_MCP_SERVER_PORT", "8888")

	if err := InitViper(""); err != nil {
		t.Fatalf("InitViper(): %v", err)
	}
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig(): %v", err)
	}

	if cfg.Ollama.Model != "phi3" {
		t.Errorf("Model = %q", cfg.Ollama.Model)
	}
	if cfg.RateLimit.Limit != 5 {
		t.Errorf("Limit = %d", cfg.RateLimit.Limit)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
}

func TestLoadConfigWithoutFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	// Search from a directory guaranteed to hold no config file.
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(cwd) })

	if err := InitViper(""); err != nil {
		t.Fatalf("InitViper(): %v", err)
	}
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig(): %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Port = %d", cfg.Server.Port)
	}
}
