package caption

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/domain/image"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/platform/config"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/platform/errors"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/utils"
)

// Client submits encoded images to the relay and returns the caption it
// produces. A client allows at most one request in flight; concurrent calls
// fail fast with ErrBusy instead of queueing.
type Client struct {
	relayURL   string
	httpClient *http.Client
	logger     *utils.Logger
	busy       atomic.Bool
}

type captionRequest struct {
	Image string `json:"image"`
}

type captionResponse struct {
	Caption    string `json:"caption"`
	Confidence string `json:"confidence,omitempty"`
	Error      string `json:"error,omitempty"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func NewClient(cfg config.ClientConfig, logger *utils.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Client{
		relayURL:   strings.TrimSuffix(cfg.RelayURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Generate sends the encoded image to the relay and parses its reply. The
// busy guard is released before returning, success or not.
func (c *Client) Generate(ctx context.Context, payload *image.EncodedPayload) (Result, error) {
	const op = "caption.Client.Generate"

	if !c.busy.CompareAndSwap(false, true) {
		return Result{}, ErrBusy
	}
	defer c.busy.Store(false)

	body, err := json.Marshal(captionRequest{Image: payload.Base64})
	if err != nil {
		return Result{}, errors.Wrap(errors.KindCaption, op, "serialize caption request", err)
	}

	url := c.relayURL + "/api/caption"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Result{}, errors.Wrap(errors.KindCaption, op, "build caption request", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.DebugTag("CAPTION", "posting image to %s (%d base64 bytes)", url, len(payload.Base64))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Result{}, errors.Wrap(errors.KindTransport, op, "caption service unreachable", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return Result{}, errors.Wrap(errors.KindTransport, op, "read caption response", err)
	}

	var parsed captionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, errors.Wrap(errors.KindCaption, op, "malformed caption response", err)
	}

	if resp.StatusCode != http.StatusOK || parsed.Caption == "" {
		message := parsed.Error
		if message == "" {
			message = fmt.Sprintf("caption service returned status %d", resp.StatusCode)
		}
		return Result{}, errors.New(errors.KindCaption, op, message)
	}

	confidence := parsed.Confidence
	if confidence == "" {
		confidence = "AI Caption"
	}

	return Result{
		Caption:    parsed.Caption,
		Confidence: confidence,
		Words:      WordCount(parsed.Caption),
	}, nil
}
