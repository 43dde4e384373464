package config

import "time"

type Config struct {
	Server    ServerConfig              `yaml:"server"`
	Log       LogConfig                 `yaml:"log"`
	Web       WebConfig                 `yaml:"web"`
	Upload    UploadConfig              `yaml:"upload"`
	Client    ClientConfig              `yaml:"client"`
	Selected  SelectedConfig            `yaml:"selected_module"`
	Providers map[string]ProviderConfig `yaml:"providers"`
}

type ServerConfig struct {
	IP          string `yaml:"ip"`
	Port        int    `yaml:"port"`
	Environment string `yaml:"environment"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type WebConfig struct {
	StaticDir    string `yaml:"static_dir"`
	PayloadLimit int64  `yaml:"payload_limit"`
}

// UploadConfig bounds what the validator accepts and when the encoder
// downscales before transport.
type UploadConfig struct {
	MaxFileSize        int64    `yaml:"max_file_size"`
	AllowedTypes       []string `yaml:"allowed_types"`
	DownscaleThreshold int64    `yaml:"downscale_threshold"`
	MaxDimension       int      `yaml:"max_dimension"`
	JPEGQuality        int      `yaml:"jpeg_quality"`
}

// ClientConfig configures the caption client side of the pipeline.
type ClientConfig struct {
	RelayURL string        `yaml:"relay_url"`
	Timeout  time.Duration `yaml:"timeout"`
}

type SelectedConfig struct {
	Provider string `yaml:"provider"`
}

type ProviderConfig struct {
	Type        string  `yaml:"type"`
	ModelName   string  `yaml:"model_name"`
	BaseURL     string  `yaml:"url"`
	APIKey      string  `yaml:"api_key"`
	Prompt      string  `yaml:"prompt"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// SelectedProvider resolves the configured upstream provider entry.
func (c *Config) SelectedProvider() (string, ProviderConfig, bool) {
	name := c.Selected.Provider
	if name == "" {
		return "", ProviderConfig{}, false
	}
	provider, ok := c.Providers[name]
	return name, provider, ok
}

// HasAPIToken reports whether the selected provider carries a credential.
// Exposed through /health without revealing the value.
func (c *Config) HasAPIToken() bool {
	_, provider, ok := c.SelectedProvider()
	return ok && provider.APIKey != ""
}
