package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBaseURL      = "http://localhost:8000"
	DefaultLogLevel        = "INFO"
	DefaultFallbackMessage = "Error al conectar con el servidor."
)

type Config struct {
	APIBaseURL      string `yaml:"api_base_url"`
	LogLevel        string `yaml:"log_level"`
	FallbackMessage string `yaml:"fallback_message"`
}

// LoadConfig reads .env (if present) and the process environment, then
// overlays the YAML file at path when path is non-empty.
func LoadConfig(path string) (Config, error) {
	// A missing .env is normal; the environment alone is enough.
	_ = godotenv.Load()

	cfg := Config{
		APIBaseURL:      getEnv("DASHBOARD_API_URL", DefaultAPIBaseURL),
		LogLevel:        getEnv("LOG_LEVEL", DefaultLogLevel),
		FallbackMessage: getEnv("DASHBOARD_FALLBACK_MESSAGE", DefaultFallbackMessage),
	}

	if path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return Config{}, err
		}
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")
	cfg.LogLevel = strings.ToUpper(cfg.LogLevel)

	if cfg.APIBaseURL == "" {
		return Config{}, fmt.Errorf("api base url must not be empty")
	}
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if file.APIBaseURL != "" {
		c.APIBaseURL = file.APIBaseURL
	}
	if file.LogLevel != "" {
		c.LogLevel = file.LogLevel
	}
	if file.FallbackMessage != "" {
		c.FallbackMessage = file.FallbackMessage
	}
	return nil
}

func (c Config) Debug() bool {
	return c.LogLevel == "DEBUG"
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
