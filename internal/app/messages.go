package app

import (
	"github.com/execmind/execmind/internal/actions"
	"github.com/execmind/execmind/internal/ideas"
)

// StateChangedMsg is sent when the assistant, share panel or idea inbox
// changed state outside the update loop.
type StateChangedMsg struct{}

// DashboardLoadedMsg carries the sidebar and inbox contents from the store.
type DashboardLoadedMsg struct {
	Actions []actions.PendingAction
	Ideas   []ideas.Idea
	Err     error
}

// ClearTransientErrorMsg clears a transient error after a timeout.
type ClearTransientErrorMsg struct{}

// CaptureToggledMsg reports the result of starting or stopping capture.
type CaptureToggledMsg struct {
	Started bool
	Err     error
}
