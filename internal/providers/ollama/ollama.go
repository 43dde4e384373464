// Package ollama adapts an Ollama-style hosted inference endpoint to the
// relay's provider contract.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/platform/config"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/providers"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/utils"
)

const providerName = "ollama"

type Provider struct {
	config     config.ProviderConfig
	httpClient *http.Client
	logger     *utils.Logger
}

type chatRequest struct {
	Model    string                 `json:"model"`
	Messages []chatMessage          `json:"messages"`
	Stream   bool                   `json:"stream"`
	Options  map[string]interface{} `json:"options,omitempty"`
}

type chatMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	Done  bool   `json:"done"`
	Error string `json:"error,omitempty"`
}

func New(cfg config.ProviderConfig, logger *utils.Logger) (*Provider, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("ollama model name is required")
	}
	if cfg.Prompt == "" {
		cfg.Prompt = "Describe this image in a detailed caption."
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Provider{
		config:     cfg,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

func (p *Provider) Name() string {
	return providerName
}

// Caption posts a non-streaming chat request carrying the image as a bare
// base64 entry (no data-URL prefix) and returns the reply content.
func (p *Provider) Caption(ctx context.Context, req providers.CaptionRequest) (providers.CaptionResponse, error) {
	request := chatRequest{
		Model: p.config.ModelName,
		Messages: []chatMessage{
			{
				Role:    "user",
				Content: p.config.Prompt,
				Images:  []string{req.ImageBase64},
			},
		},
		Stream: false,
	}
	if p.config.Temperature > 0 {
		request.Options = map[string]interface{}{
			"temperature": p.config.Temperature,
		}
	}

	body, err := json.Marshal(request)
	if err != nil {
		return providers.CaptionResponse{}, &providers.Error{
			Class:    providers.ClassUpstream,
			Provider: providerName,
			Message:  "serialize chat request",
			Cause:    err,
		}
	}

	url := fmt.Sprintf("%s/api/chat", strings.TrimSuffix(p.config.BaseURL, "/"))
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return providers.CaptionResponse{}, &providers.Error{
			Class:    providers.ClassUpstream,
			Provider: providerName,
			Message:  "build chat request",
			Cause:    err,
		}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	p.logger.DebugTag("PROVIDER", "ollama caption request: url=%s model=%s", url, p.config.ModelName)

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return providers.CaptionResponse{}, &providers.Error{
			Class:    providers.ClassifyTransport(err),
			Provider: providerName,
			Message:  "hosted inference call failed",
			Detail:   err.Error(),
			Cause:    err,
		}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return providers.CaptionResponse{}, &providers.Error{
			Class:    providers.ClassUpstream,
			Provider: providerName,
			Message:  "read hosted inference response",
			Cause:    err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return providers.CaptionResponse{}, &providers.Error{
			Class:    providers.ClassifyStatus(resp.StatusCode),
			Provider: providerName,
			Message:  fmt.Sprintf("hosted inference returned status %d", resp.StatusCode),
			Detail:   strings.TrimSpace(string(raw)),
		}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return providers.CaptionResponse{}, &providers.Error{
			Class:    providers.ClassUpstream,
			Provider: providerName,
			Message:  "malformed hosted inference response",
			Detail:   err.Error(),
			Cause:    err,
		}
	}
	if parsed.Error != "" {
		return providers.CaptionResponse{}, &providers.Error{
			Class:    providers.ClassUpstream,
			Provider: providerName,
			Message:  "hosted inference reported an error",
			Detail:   parsed.Error,
		}
	}

	return providers.CaptionResponse{
		Caption: parsed.Message.Content,
		Model:   parsed.Model,
	}, nil
}
