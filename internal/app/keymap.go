package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds every binding handled in handleKey.
type KeyMap struct {
	Quit        key.Binding
	ForceQuit   key.Binding
	PostMeeting key.Binding
	PreMeeting  key.Binding
	Capture     key.Binding
	Reset       key.Binding
	Save        key.Binding
	Share       key.Binding
	Confirm     key.Binding
	Cancel      key.Binding
	Idea        key.Binding
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	ScrollUp    key.Binding
	ScrollDown  key.Binding
}

// DefaultKeyMap returns the default bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "Q"),
			key.WithHelp("q", "quit"),
		),
		ForceQuit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
		PostMeeting: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "post-meeting"),
		),
		PreMeeting: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "pre-meeting"),
		),
		Capture: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "listen/stop"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reset"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Share: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "share"),
		),
		Confirm: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "close"),
		),
		Idea: key.NewBinding(
			key.WithKeys("i"),
			key.WithHelp("i", "capture idea"),
		),
		Up: key.NewBinding(
			key.WithKeys("k"),
			key.WithHelp("j/k", "select"),
		),
		Down: key.NewBinding(
			key.WithKeys("j"),
			key.WithHelp("j/k", "select"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "done"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up"),
			key.WithHelp("↑↓", "scroll"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("down"),
			key.WithHelp("↑↓", "scroll"),
		),
	}
}
