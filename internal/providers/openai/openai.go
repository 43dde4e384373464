// Package openai adapts the OpenAI chat-completions vision API to the
// relay's provider contract.
package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/platform/config"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/providers"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/utils"
)

const providerName = "openai"

type Provider struct {
	config config.ProviderConfig
	client *openai.Client
	logger *utils.Logger
}

func New(cfg config.ProviderConfig, logger *utils.Logger) (*Provider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	if cfg.ModelName == "" {
		cfg.ModelName = "gpt-4o"
	}
	if cfg.Prompt == "" {
		cfg.Prompt = "Describe this image in a detailed caption."
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 100
	}

	return &Provider{
		config: cfg,
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}, nil
}

func (p *Provider) Name() string {
	return providerName
}

// Caption sends the image as a data-URL part of a single user message and
// returns the model's text.
func (p *Provider) Caption(ctx context.Context, req providers.CaptionRequest) (providers.CaptionResponse, error) {
	message := openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: p.config.Prompt,
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: fmt.Sprintf("data:image/%s;base64,%s", req.Format, req.ImageBase64),
				},
			},
		},
	}

	p.logger.DebugTag("PROVIDER", "openai caption request: model=%s image_chars=%d",
		p.config.ModelName, len(req.ImageBase64))

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     p.config.ModelName,
		Messages:  []openai.ChatCompletionMessage{message},
		MaxTokens: p.config.MaxTokens,
	})
	if err != nil {
		return providers.CaptionResponse{}, p.classify(err)
	}

	if len(resp.Choices) == 0 {
		return providers.CaptionResponse{}, &providers.Error{
			Class:    providers.ClassUpstream,
			Provider: providerName,
			Message:  "the model returned no choices",
		}
	}

	return providers.CaptionResponse{
		Caption: resp.Choices[0].Message.Content,
		Model:   resp.Model,
	}, nil
}

func (p *Provider) classify(err error) *providers.Error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &providers.Error{
			Class:    providers.ClassifyStatus(apiErr.HTTPStatusCode),
			Provider: providerName,
			Message:  "OpenAI API call failed",
			Detail:   apiErr.Message,
			Cause:    err,
		}
	}

	return &providers.Error{
		Class:    providers.ClassifyTransport(err),
		Provider: providerName,
		Message:  "OpenAI API call failed",
		Detail:   err.Error(),
		Cause:    err,
	}
}
