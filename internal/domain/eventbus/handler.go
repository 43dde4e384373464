package eventbus

import (
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/utils"
)

// LoggingHandler forwards bus events to the application logger so that
// session activity shows up alongside relay logs.
type LoggingHandler struct {
	logger *utils.Logger
}

func NewLoggingHandler(logger *utils.Logger) *LoggingHandler {
	return &LoggingHandler{logger: logger}
}

func (h *LoggingHandler) handleState(data StateEventData) {
	h.logger.InfoTag("SESSION", "state %s -> %s file=%s", data.Previous, data.Current, data.FileName)
}

func (h *LoggingHandler) handleNotify(data NotifyEventData) {
	switch data.Level {
	case LevelError:
		h.logger.WarnTag("SESSION", "notify: %s", data.Message)
	default:
		h.logger.InfoTag("SESSION", "notify: %s", data.Message)
	}
}

func (h *LoggingHandler) handleCaption(data CaptionEventData) {
	h.logger.InfoTag("CAPTION", "caption ready: demo=%v words=%d file=%s", data.Demo, data.Words, data.FileName)
}

func (h *LoggingHandler) handleRelay(data RelayEventData) {
	h.logger.InfoTag("HTTP", "relay request %s provider=%s status=%d duration=%s",
		data.RequestID, data.Provider, data.Status, data.Duration)
}

func (h *LoggingHandler) handleSystem(data SystemEventData) {
	switch data.Level {
	case LevelError:
		h.logger.ErrorTag("BOOT", "%s", data.Message)
	default:
		h.logger.InfoTag("BOOT", "%s", data.Message)
	}
}

// SetupEventHandlers wires the logging handler into the shared bus.
func SetupEventHandlers(logger *utils.Logger) error {
	handler := NewLoggingHandler(logger)

	if err := Subscribe(EventSessionState, handler.handleState); err != nil {
		return err
	}
	if err := Subscribe(EventSessionNotify, handler.handleNotify); err != nil {
		return err
	}
	if err := Subscribe(EventCaptionResult, handler.handleCaption); err != nil {
		return err
	}
	if err := Subscribe(EventRelayRequest, handler.handleRelay); err != nil {
		return err
	}
	return Subscribe(EventSystemError, handler.handleSystem)
}
