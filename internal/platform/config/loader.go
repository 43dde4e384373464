package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ConfigFile is looked up in the working directory; when absent, defaults
// plus environment overrides apply.
const ConfigFile = ".config.yaml"

// Loader reads configuration from an optional yaml file layered with
// environment variables. Provider credentials only ever come from the
// environment, never from the browser-facing side.
type Loader struct {
	useDotEnv bool
	path      string
}

func NewLoader() *Loader {
	return &Loader{
		useDotEnv: true,
		path:      ConfigFile,
	}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the config file location (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// Result captures the loaded configuration and its origin.
type Result struct {
	Config *Config
	Path   string
}

// Load builds the effective configuration: defaults, then the yaml file if
// present, then environment overrides.
func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("no .env file found, using process environment")
		}
	}

	cfg := DefaultConfig()
	origin := "defaults"

	if data, err := os.ReadFile(l.path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", l.path, err)
		}
		origin = l.path
	}

	l.applyEnv(cfg)

	if err := l.validate(cfg); err != nil {
		return nil, err
	}

	return &Result{
		Config: cfg,
		Path:   origin,
	}, nil
}

func (l *Loader) applyEnv(cfg *Config) {
	if port := os.Getenv("PORT"); port != "" {
		if v, err := strconv.Atoi(port); err == nil {
			cfg.Server.Port = v
		}
	}
	if env := os.Getenv("ENVIRONMENT"); env != "" {
		cfg.Server.Environment = env
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if relay := os.Getenv("CAPTION_RELAY_URL"); relay != "" {
		cfg.Client.RelayURL = relay
	}
	if selected := os.Getenv("CAPTION_PROVIDER"); selected != "" {
		cfg.Selected.Provider = selected
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		provider := cfg.Providers["openai"]
		provider.APIKey = key
		cfg.Providers["openai"] = provider
	}
	if base := os.Getenv("OLLAMA_BASE_URL"); base != "" {
		provider := cfg.Providers["ollama"]
		provider.BaseURL = base
		cfg.Providers["ollama"] = provider
	}
}

func (l *Loader) validate(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Upload.MaxFileSize <= 0 {
		return fmt.Errorf("upload max_file_size must be positive")
	}
	if cfg.Upload.MaxDimension <= 0 {
		return fmt.Errorf("upload max_dimension must be positive")
	}
	if cfg.Upload.JPEGQuality <= 0 || cfg.Upload.JPEGQuality > 100 {
		return fmt.Errorf("upload jpeg_quality must be within 1-100")
	}
	if _, _, ok := cfg.SelectedProvider(); !ok {
		return fmt.Errorf("selected provider %q is not configured", cfg.Selected.Provider)
	}
	return nil
}
