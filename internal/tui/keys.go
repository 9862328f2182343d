package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all keyboard shortcuts
type KeyMap struct {
	Search     key.Binding
	Reset      key.Binding
	Fit        key.Binding
	Close      key.Binding
	Activate   key.Binding
	MoreLinks  key.Binding
	FewerLinks key.Binding
	ZoomIn     key.Binding
	ZoomOut    key.Binding
	Help       key.Binding
	Quit       key.Binding
}

var DefaultKeyMap = KeyMap{
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Reset: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reset view"),
	),
	Fit: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "fit graph"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close popup"),
	),
	Activate: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open node"),
	),
	MoreLinks: key.NewBinding(
		key.WithKeys("-"),
		key.WithHelp("-", "lower threshold"),
	),
	FewerLinks: key.NewBinding(
		key.WithKeys("+", "="),
		key.WithHelp("+", "raise threshold"),
	),
	ZoomIn: key.NewBinding(
		key.WithKeys("ctrl+up"),
		key.WithHelp("ctrl+↑", "zoom in"),
	),
	ZoomOut: key.NewBinding(
		key.WithKeys("ctrl+down"),
		key.WithHelp("ctrl+↓", "zoom out"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Fit, k.Reset, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Search, k.Close, k.Activate},
		{k.Fit, k.Reset, k.ZoomIn, k.ZoomOut},
		{k.FewerLinks, k.MoreLinks, k.Help, k.Quit},
	}
}
