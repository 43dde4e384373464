package config

import "time"

const (
	// DefaultMaxFileSize is the validator's upload ceiling (10 MiB).
	DefaultMaxFileSize = 10 * 1024 * 1024

	// DefaultDownscaleThreshold is the size above which the encoder
	// downscales before base64 transport (5 MiB).
	DefaultDownscaleThreshold = 5 * 1024 * 1024

	// DefaultPayloadLimit bounds the relay's request body. Base64 inflates
	// payloads by roughly a third, so this sits well above the upload cap.
	DefaultPayloadLimit = 50 * 1024 * 1024
)

// DefaultConfig returns the configuration used when no file overrides it.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			IP:          "0.0.0.0",
			Port:        3000,
			Environment: "development",
		},
		Log: LogConfig{
			Level: "info",
			Dir:   "data/logs",
			File:  "server.log",
		},
		Web: WebConfig{
			StaticDir:    "./web",
			PayloadLimit: DefaultPayloadLimit,
		},
		Upload: UploadConfig{
			MaxFileSize:        DefaultMaxFileSize,
			AllowedTypes:       []string{"image/jpeg", "image/png", "image/gif", "image/webp"},
			DownscaleThreshold: DefaultDownscaleThreshold,
			MaxDimension:       1920,
			JPEGQuality:        80,
		},
		Client: ClientConfig{
			RelayURL: "http://localhost:3000",
			Timeout:  45 * time.Second,
		},
		Selected: SelectedConfig{
			Provider: "openai",
		},
		Providers: map[string]ProviderConfig{
			"openai": {
				Type:      "openai",
				ModelName: "gpt-4o",
				Prompt:    "Describe this image in a detailed caption.",
				MaxTokens: 100,
				Timeout:   30 * time.Second,
			},
			"ollama": {
				Type:        "ollama",
				ModelName:   "llava",
				BaseURL:     "http://localhost:11434",
				Prompt:      "Describe this image in a detailed caption.",
				Temperature: 0.7,
				Timeout:     30 * time.Second,
			},
		},
	}
}
