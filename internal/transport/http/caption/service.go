// Package caption is the HTTP transport for the captioning relay: it accepts
// a base64 image, forwards it to the configured upstream provider and
// normalizes success and failure into a stable wire shape.
package caption

import (
	"context"
	"encoding/base64"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/domain/eventbus"
	domainimage "github.com/NickiMash17/AI-Image-Caption-Generator/internal/domain/image"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/platform/config"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/platform/errors"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/providers"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/utils"
)

// Service relays caption requests to the upstream vision provider. It keeps
// no per-request state beyond the handler stack: every request is decoded,
// validated, forwarded once and answered.
type Service struct {
	logger    *utils.Logger
	config    *config.Config
	validator *domainimage.Validator
	provider  providers.Provider
}

func NewService(cfg *config.Config, logger *utils.Logger, provider providers.Provider) (*Service, error) {
	if cfg == nil {
		return nil, errors.New(errors.KindConfig, "caption.new", "config is required")
	}
	if logger == nil {
		return nil, errors.New(errors.KindConfig, "caption.new", "logger is required")
	}
	if provider == nil {
		return nil, errors.New(errors.KindConfig, "caption.new", "provider is required")
	}

	return &Service{
		logger:    logger,
		config:    cfg,
		validator: domainimage.NewValidator(&cfg.Upload),
		provider:  provider,
	}, nil
}

// Register mounts the caption routes on the API group and the health probe
// on the engine root.
func (s *Service) Register(ctx context.Context, engine *gin.Engine, api *gin.RouterGroup) error {
	api.POST("/caption", s.handleCaption)
	api.OPTIONS("/caption", s.handleOptions)
	engine.GET("/health", s.handleHealth)

	s.logger.InfoTag("HTTP", "caption relay routes registered (provider=%s)", s.provider.Name())
	return nil
}

func (s *Service) handleOptions(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (s *Service) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:      "OK",
		Timestamp:   time.Now().Format(time.RFC3339),
		Environment: s.config.Server.Environment,
		HasAPIToken: s.config.HasAPIToken(),
	})
}

func (s *Service) handleCaption(c *gin.Context) {
	requestID := uuid.NewString()
	start := time.Now()

	var req CaptionRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Image == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No image provided."})
		return
	}

	decoded, err := base64.StdEncoding.DecodeString(req.Image)
	if err != nil {
		s.logger.WarnTag("HTTP", "request %s: image is not valid base64: %v", requestID, err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid image data.",
			Details: "the image field is not valid base64",
		})
		return
	}

	// The client already validated the file, but the relay is a public
	// surface and revalidates everything it forwards.
	detectedMIME := http.DetectContentType(decoded)
	img, err := s.validator.Validate(requestID, decoded, detectedMIME)
	if err != nil {
		s.logger.WarnTag("HTTP", "request %s: rejected image: %v", requestID, err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid image data.",
			Details: errors.UserMessage(err),
		})
		return
	}

	// Scratch copy for providers that read from disk. Removed on every
	// path once the upstream call finishes.
	scratch, err := s.writeScratch(requestID, decoded)
	if err != nil {
		s.logger.ErrorTag("HTTP", "request %s: scratch write failed: %v", requestID, err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Server error."})
		return
	}
	defer os.Remove(scratch)

	timeout := 30 * time.Second
	if _, providerCfg, ok := s.config.SelectedProvider(); ok && providerCfg.Timeout > 0 {
		timeout = providerCfg.Timeout
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
	defer cancel()

	s.logger.InfoTag("CAPTION", "request %s: forwarding %s image (%dx%d, %d bytes) to %s",
		requestID, img.Format, img.Width, img.Height, img.Size, s.provider.Name())

	resp, err := s.provider.Caption(ctx, providers.CaptionRequest{
		ImageBase64: req.Image,
		Format:      img.Format,
		ScratchPath: scratch,
	})
	if err != nil {
		s.respondProviderError(c, requestID, start, err)
		return
	}

	s.publishRelayEvent(requestID, http.StatusOK, start)
	c.JSON(http.StatusOK, CaptionResponse{
		Caption:    resp.Caption,
		Confidence: resp.Confidence,
	})
}

func (s *Service) respondProviderError(c *gin.Context, requestID string, start time.Time, err error) {
	class := providers.ClassOf(err)
	status := providers.HTTPStatus(class)

	s.logger.ErrorTag("CAPTION", "request %s: provider %s failed (%s): %v",
		requestID, s.provider.Name(), class, err)

	s.publishRelayEvent(requestID, status, start)
	c.JSON(status, ErrorResponse{
		Error:      providers.UserMessage(class),
		Details:    providers.DetailOf(err),
		Suggestion: providers.Suggestion(class),
	})
}

func (s *Service) publishRelayEvent(requestID string, status int, start time.Time) {
	eventbus.Publish(eventbus.EventRelayRequest, eventbus.RelayEventData{
		RequestID: requestID,
		Provider:  s.provider.Name(),
		Status:    status,
		Duration:  time.Since(start).String(),
	})
}

func (s *Service) writeScratch(requestID string, decoded []byte) (string, error) {
	f, err := os.CreateTemp("", "caption-"+requestID+"-*.img")
	if err != nil {
		return "", err
	}
	if _, err := f.Write(decoded); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", err
	}
	return f.Name(), nil
}
