package caption

import (
	"context"
	"fmt"
	"sync"

	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/domain/eventbus"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/domain/image"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/platform/errors"
	"github.com/NickiMash17/AI-Image-Caption-Generator/internal/utils"
)

// State names the phases of a captioning session.
type State string

const (
	StateEmpty         State = "empty"
	StateImageSelected State = "image_selected"
	StateGenerating    State = "generating"
	StateDisplayed     State = "displayed"
)

// Session drives a single user's captioning flow: select an image, generate
// a caption, inspect the result, reset. State transitions and notifications
// are published on the event bus for observers such as the CLI.
type Session struct {
	validator *image.Validator
	encoder   *image.Encoder
	client    *Client
	logger    *utils.Logger

	mu       sync.Mutex
	state    State
	selected *image.UploadedImage
	encoded  *image.EncodedPayload
	result   *Result
}

func NewSession(validator *image.Validator, encoder *image.Encoder, client *Client, logger *utils.Logger) *Session {
	return &Session{
		validator: validator,
		encoder:   encoder,
		client:    client,
		logger:    logger,
		state:     StateEmpty,
	}
}

// State reports the current session phase.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Selected returns the currently selected image, or nil.
func (s *Session) Selected() *image.UploadedImage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// Result returns the displayed caption, or nil when none is shown.
func (s *Session) Result() *Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result
}

// SelectFile validates the candidate file and, on success, makes it the
// session's selected image. A rejected file leaves the previous selection
// untouched.
func (s *Session) SelectFile(name string, raw []byte, declaredMIME string) error {
	img, err := s.validator.Validate(name, raw, declaredMIME)
	if err != nil {
		s.notify(eventbus.LevelError, errors.UserMessage(err))
		return err
	}

	s.mu.Lock()
	prev := s.state
	s.selected = img
	s.encoded = nil
	s.result = nil
	s.state = StateImageSelected
	s.mu.Unlock()

	s.publishState(prev, StateImageSelected, img.Name)
	s.notify(eventbus.LevelSuccess, fmt.Sprintf("Image %q selected (%s, %dx%d).", img.Name, utils.FormatFileSize(img.Size), img.Width, img.Height))
	return nil
}

// Generate encodes the selected image and asks the relay for a caption. If
// the relay fails for any reason the session falls back to a demo caption so
// the user always sees a result. A concurrent Generate returns ErrBusy and
// does not disturb the in-flight request.
func (s *Session) Generate(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	if s.selected == nil {
		s.mu.Unlock()
		s.notify(eventbus.LevelError, "Please select an image file first.")
		return nil, errors.New(errors.KindCaption, "caption.Session.Generate", "no image selected")
	}
	if s.state == StateGenerating {
		s.mu.Unlock()
		return nil, ErrBusy
	}
	prev := s.state
	s.state = StateGenerating
	img := s.selected
	encoded := s.encoded
	s.mu.Unlock()

	s.publishState(prev, StateGenerating, img.Name)

	if encoded == nil {
		var err error
		encoded, err = s.encoder.Encode(ctx, img)
		if err != nil {
			s.mu.Lock()
			s.state = StateImageSelected
			s.mu.Unlock()
			s.publishState(StateGenerating, StateImageSelected, img.Name)
			s.notify(eventbus.LevelError, errors.UserMessage(err))
			return nil, err
		}
		s.mu.Lock()
		s.encoded = encoded
		s.mu.Unlock()
	}

	result, err := s.client.Generate(ctx, encoded)
	if err != nil {
		if err == ErrBusy {
			s.mu.Lock()
			s.state = prev
			s.mu.Unlock()
			return nil, err
		}
		s.logger.WarnTag("CAPTION", "relay failed, serving demo caption: %v", err)
		s.notify(eventbus.LevelError, "Failed to generate caption from backend. Showing demo.")
		result = DemoResult()
	}

	s.mu.Lock()
	s.result = &result
	s.state = StateDisplayed
	s.mu.Unlock()

	s.publishState(StateGenerating, StateDisplayed, img.Name)
	eventbus.Publish(eventbus.EventCaptionResult, eventbus.CaptionEventData{
		Caption:  result.Caption,
		Demo:     result.Demo,
		Words:    result.Words,
		FileName: img.Name,
	})
	return &result, nil
}

// Reset clears the selection and any displayed result. Resetting an empty
// session is a no-op.
func (s *Session) Reset() {
	s.mu.Lock()
	prev := s.state
	if prev == StateEmpty {
		s.mu.Unlock()
		return
	}
	s.selected = nil
	s.encoded = nil
	s.result = nil
	s.state = StateEmpty
	s.mu.Unlock()

	s.publishState(prev, StateEmpty, "")
	s.notify(eventbus.LevelInfo, "Session reset.")
}

// CaptionText returns the displayed caption, for clipboard-style consumers.
func (s *Session) CaptionText() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil {
		return "", false
	}
	return s.result.Caption, true
}

// ExportText renders the displayed result as a small plain-text report.
func (s *Session) ExportText() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.result == nil || s.selected == nil {
		return "", false
	}
	source := "AI"
	if s.result.Demo {
		source = "demo"
	}
	return fmt.Sprintf("File: %s\nCaption: %s\nConfidence: %s\nWords: %d\nSource: %s\n",
		s.selected.Name, s.result.Caption, s.result.Confidence, s.result.Words, source), true
}

func (s *Session) publishState(prev, curr State, fileName string) {
	eventbus.Publish(eventbus.EventSessionState, eventbus.StateEventData{
		Previous: string(prev),
		Current:  string(curr),
		FileName: fileName,
	})
}

func (s *Session) notify(level, message string) {
	eventbus.Publish(eventbus.EventSessionNotify, eventbus.NotifyEventData{
		Level:   level,
		Message: message,
	})
}
