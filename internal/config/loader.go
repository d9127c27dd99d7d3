package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "TRANSFORMERBEE_MCP"

// envBindings maps viper keys to their environment variable names. Each key
// answers to the prefixed form (TRANSFORMERBEE_MCP_SERVER_PORT) and to the
// short form the Docker images have always used (PORT).
var envBindings = map[string][]string{
	"server.host":                  {"HOST"},
	"server.port":                  {"PORT"},
	"server.log_level":             {"LOG_LEVEL"},
	"server.allowed_origins":       {"ALLOWED_ORIGINS"},
	"auth.auth0_domain":            {"AUTH0_DOMAIN"},
	"auth.auth0_audience":          {"AUTH0_AUDIENCE"},
	"rate_limit.limit":             {"RATE_LIMIT"},
	"rate_limit.window_seconds":    {"RATE_WINDOW_SECONDS"},
	"ollama.host":                  {"OLLAMA_HOST"},
	"ollama.model":                 {"OLLAMA_MODEL"},
	"transformerbee.host":          {"TRANSFORMERBEE_HOST"},
	"transformerbee.client_id":     {"TRANSFORMERBEE_CLIENT_ID"},
	"transformerbee.client_secret": {"TRANSFORMERBEE_CLIENT_SECRET"},
}

// InitViper configures viper with the config file location and environment
// variable bindings. Pass an empty configFile to search the default locations.
func InitViper(configFile string) error {
	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	bindEnvKeys()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		return nil
	}

	found, err := findConfigFile()
	if err != nil {
		return err
	}
	if found != "" {
		viper.SetConfigFile(found)
	}
	return nil
}

// bindEnvKeys registers every known key explicitly so that AutomaticEnv picks
// it up even when the key never appears in a config file.
func bindEnvKeys() {
	for key, aliases := range envBindings {
		names := make([]string, 0, len(aliases)+2)
		names = append(names, key)
		names = append(names, envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")))
		names = append(names, aliases...)
		_ = viper.BindEnv(names...)
	}
}

// findConfigFile searches the standard locations for a config file. Returns
// an empty string when none exists.
func findConfigFile() (string, error) {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".transformerbee-mcp"))
	}
	dirs = append(dirs, "/etc/transformerbee-mcp")

	for _, dir := range dirs {
		for _, ext := range []string{"yaml", "yml"} {
			candidate := filepath.Join(dir, "transformerbee-mcp."+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate, nil
			}
		}
	}
	return "", nil
}

// ConfigFileUsed returns the path of the config file in use, or an empty
// string when running on defaults and environment variables only.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

// LoadConfig reads the config file (if any), applies environment overrides
// and defaults, and validates the result.
func LoadConfig() (*Config, error) {
	if viper.ConfigFileUsed() != "" {
		if err := viper.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) && !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
