// Package caption implements the client side of the captioning pipeline: a
// relay client with an offline demo fallback and a session controller that
// tracks the upload/generate/display lifecycle.
package caption

import "errors"

// ErrBusy is returned when a generation request arrives while a previous one
// is still in flight. The caller keeps its current state and no request is
// sent to the relay.
var ErrBusy = errors.New("caption generation already in progress")

// Result is a finished caption together with the statistics shown to the
// user. Demo marks results produced by the offline fallback rather than the
// relay.
type Result struct {
	Caption        string
	Confidence     string
	Demo           bool
	Objects        int
	ProcessingTime float64
	Words          int
	Accuracy       int
}

// Notification is a user-facing message emitted by the session controller.
type Notification struct {
	Level   string
	Message string
}
