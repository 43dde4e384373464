package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoader_Load(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, ".config.yaml")

	configContent := `
server:
  ip: "127.0.0.1"
  port: 8080
  environment: "test"
log:
  log_level: "debug"
upload:
  max_file_size: 1048576
`

	if err := os.WriteFile(configFile, []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := NewLoader().WithDotEnv(false).WithPath(configFile)
	result, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg := result.Config

	if cfg.Server.IP != "127.0.0.1" {
		t.Errorf("expected server IP 127.0.0.1, got %s", cfg.Server.IP)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected server port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level debug, got %s", cfg.Log.Level)
	}
	if cfg.Upload.MaxFileSize != 1048576 {
		t.Errorf("expected max file size 1048576, got %d", cfg.Upload.MaxFileSize)
	}
	// Untouched sections keep their defaults.
	if cfg.Upload.MaxDimension != 1920 {
		t.Errorf("expected default max dimension 1920, got %d", cfg.Upload.MaxDimension)
	}
	if result.Path != configFile {
		t.Errorf("expected origin %s, got %s", configFile, result.Path)
	}
}

func TestLoader_LoadDefaultsWhenFileMissing(t *testing.T) {
	loader := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "absent.yaml"))
	result, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if result.Path != "defaults" {
		t.Errorf("expected defaults origin, got %s", result.Path)
	}
	if result.Config.Server.Port != 3000 {
		t.Errorf("expected default port 3000, got %d", result.Config.Server.Port)
	}
	if result.Config.HasAPIToken() {
		t.Error("defaults must not carry an API token")
	}
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "4100")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("OPENAI_API_KEY", "sk-test-not-a-real-key")

	loader := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "absent.yaml"))
	result, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	cfg := result.Config

	if cfg.Server.Port != 4100 {
		t.Errorf("expected overridden port 4100, got %d", cfg.Server.Port)
	}
	if cfg.Server.Environment != "production" {
		t.Errorf("expected environment production, got %s", cfg.Server.Environment)
	}
	if !cfg.HasAPIToken() {
		t.Error("expected HasAPIToken true after OPENAI_API_KEY override")
	}
}

func TestLoader_Validate(t *testing.T) {
	loader := NewLoader()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid defaults",
			mutate:  func(*Config) {},
			wantErr: false,
		},
		{
			name:    "invalid server port",
			mutate:  func(c *Config) { c.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "zero max file size",
			mutate:  func(c *Config) { c.Upload.MaxFileSize = 0 },
			wantErr: true,
		},
		{
			name:    "quality out of range",
			mutate:  func(c *Config) { c.Upload.JPEGQuality = 101 },
			wantErr: true,
		},
		{
			name:    "unknown selected provider",
			mutate:  func(c *Config) { c.Selected.Provider = "nonexistent" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := loader.validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
