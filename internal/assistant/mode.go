// Package assistant implements the voice assistant dialog: a three-phase
// session (listening, processing, response) fed by a pluggable recognizer.
package assistant

import (
	"errors"
	"fmt"
)

// Mode selects which canned question and response the dialog uses.
type Mode string

const (
	ModePostMeeting Mode = "post-meeting"
	ModePreMeeting  Mode = "pre-meeting"
)

// Modes lists every mode in display order.
func Modes() []Mode {
	return []Mode{ModePostMeeting, ModePreMeeting}
}

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModePostMeeting, ModePreMeeting:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown mode %q (want %s or %s)", s, ModePostMeeting, ModePreMeeting)
}

// Title is the dialog heading for the mode.
func (m Mode) Title() string {
	if m == ModePreMeeting {
		return "Pre-Meeting Memory Assistant"
	}
	return "Post-Meeting Insight Assistant"
}

// Phase is the dialog stage.
type Phase string

const (
	PhaseListening  Phase = "listening"
	PhaseProcessing Phase = "processing"
	PhaseResponse   Phase = "response"
)

var (
	// ErrCaptureUnavailable means the recognizer cannot capture in this
	// environment. The session is left untouched.
	ErrCaptureUnavailable = errors.New("speech capture is not available")

	// ErrDialogClosed is returned by operations that need an open dialog.
	ErrDialogClosed = errors.New("assistant dialog is not open")
)
