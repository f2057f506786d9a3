package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings.
//
// Form screens only use control keys, tab and enter so every printable
// character reaches the focused field. Dashboard lists use single letters.
type KeyMap struct {
	// Forms.
	NextField      key.Binding
	PrevField      key.Binding
	Submit         key.Binding
	DemoFill       key.Binding // Login: cycle through demo accounts.
	ToggleRemember key.Binding
	SwitchForm     key.Binding // Login <-> register.
	CycleRole      key.Binding // Register: citizen/worker/admin.
	Locate         key.Binding // Report: capture location.
	CyclePriority  key.Binding // Report: Low/Medium/High.
	SendReport     key.Binding
	Back           key.Binding

	// Dashboard.
	Up          key.Binding
	Down        key.Binding
	NextView    key.Binding
	PrevView    key.Binding
	Refresh     key.Binding
	ChangeState key.Binding // Worker/admin: open the status picker.
	Assign      key.Binding // Admin: open the worker picker.
	Export      key.Binding // Admin: write the PNG report.
	Dismiss     key.Binding // Drop the newest toast.
	Logout      key.Binding

	Quit      key.Binding
	ForceQuit key.Binding
}

// DefaultKeyMap is the built-in binding set.
var DefaultKeyMap = KeyMap{
	NextField: key.NewBinding(
		key.WithKeys("tab", "down"),
		key.WithHelp("tab", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("shift+tab", "up"),
		key.WithHelp("shift+tab", "previous field"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	DemoFill: key.NewBinding(
		key.WithKeys("ctrl+d"),
		key.WithHelp("ctrl+d", "demo account"),
	),
	ToggleRemember: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "remember me"),
	),
	SwitchForm: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("ctrl+n", "login/register"),
	),
	CycleRole: key.NewBinding(
		key.WithKeys("ctrl+t"),
		key.WithHelp("ctrl+t", "role"),
	),
	Locate: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "get location"),
	),
	CyclePriority: key.NewBinding(
		key.WithKeys("ctrl+p"),
		key.WithHelp("ctrl+p", "priority"),
	),
	SendReport: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "submit report"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),

	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	NextView: key.NewBinding(
		key.WithKeys("tab", "l", "right"),
		key.WithHelp("tab", "next view"),
	),
	PrevView: key.NewBinding(
		key.WithKeys("shift+tab", "h", "left"),
		key.WithHelp("shift+tab", "previous view"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	ChangeState: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "status"),
	),
	Assign: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "assign"),
	),
	Export: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "export report"),
	),
	Dismiss: key.NewBinding(
		key.WithKeys("x"),
		key.WithHelp("x", "dismiss"),
	),
	Logout: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "logout"),
	),

	Quit: key.NewBinding(
		key.WithKeys("q"),
		key.WithHelp("q", "quit"),
	),
	ForceQuit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}
