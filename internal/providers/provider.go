// Package providers defines the contract between the relay service and the
// upstream captioning model. The relay sees one provider-agnostic surface;
// each adapter translates it to a concrete API.
package providers

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// CaptionRequest carries a single validated image to an upstream adapter.
// ScratchPath points at the decoded image on disk for adapters whose client
// libraries want a file; the relay owns creating and removing it.
type CaptionRequest struct {
	ImageBase64 string
	Format      string
	ScratchPath string
}

// CaptionResponse is the normalized upstream result.
type CaptionResponse struct {
	Caption    string
	Confidence string
	Model      string
}

// Provider is one configured upstream captioning backend.
type Provider interface {
	Name() string
	Caption(ctx context.Context, req CaptionRequest) (CaptionResponse, error)
}

// Class buckets upstream failures into the categories the relay maps to
// HTTP statuses and user-legible messages.
type Class string

const (
	ClassAuth        Class = "auth"
	ClassRateLimited Class = "rate_limited"
	ClassTimeout     Class = "timeout"
	ClassUnreachable Class = "unreachable"
	ClassUpstream    Class = "upstream"
)

// Error is a classified upstream failure. Detail preserves the raw
// upstream message for the relay's details field.
type Error struct {
	Class    Class
	Provider string
	Message  string
	Detail   string
	Cause    error
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s provider %s: %s (%s)", e.Provider, e.Class, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s provider %s: %s", e.Provider, e.Class, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ClassOf extracts the failure class from an error chain, defaulting to
// ClassUpstream for unclassified errors.
func ClassOf(err error) Class {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Class
	}
	return ClassUpstream
}

// DetailOf extracts the raw upstream message from an error chain, if any.
func DetailOf(err error) string {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Detail
	}
	return ""
}

// ClassifyTransport buckets plain transport errors from an adapter's HTTP
// call: deadline expiry becomes timeout, everything else unreachable.
func ClassifyTransport(err error) Class {
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return ClassTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ClassTimeout
	}
	return ClassUnreachable
}

// ClassifyStatus buckets an upstream HTTP status code.
func ClassifyStatus(status int) Class {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ClassAuth
	case status == http.StatusTooManyRequests:
		return ClassRateLimited
	case status == http.StatusGatewayTimeout || status == http.StatusRequestTimeout:
		return ClassTimeout
	default:
		return ClassUpstream
	}
}

// HTTPStatus maps a failure class to the status the relay returns.
func HTTPStatus(class Class) int {
	switch class {
	case ClassRateLimited:
		return http.StatusTooManyRequests
	case ClassTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// UserMessage maps a failure class to the message shown to the client.
func UserMessage(class Class) string {
	switch class {
	case ClassAuth:
		return "The captioning provider rejected the server's credentials."
	case ClassRateLimited:
		return "The captioning provider rate limit was reached."
	case ClassTimeout:
		return "The captioning provider took too long to respond."
	case ClassUnreachable:
		return "The captioning provider could not be reached."
	default:
		return "The captioning provider returned an error."
	}
}

// Suggestion offers a recovery hint for a failure class, or "".
func Suggestion(class Class) string {
	switch class {
	case ClassAuth:
		return "Check the provider API key configured on the server."
	case ClassRateLimited:
		return "Wait a moment before trying again."
	case ClassTimeout:
		return "Try again with a smaller image."
	case ClassUnreachable:
		return "Verify the upstream endpoint is reachable from the server."
	default:
		return ""
	}
}
