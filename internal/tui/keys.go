package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the TUI
type KeyMap struct {
	ScrollUp   key.Binding
	ScrollDown key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	NextDay    key.Binding
	PrevDay    key.Binding
	NextWeek   key.Binding
	PrevWeek   key.Binding
	Today      key.Binding
	NextView   key.Binding
	PrevView   key.Binding
	SelectSlot key.Binding
	Edit       key.Binding
	Open       key.Binding
	ViewEvent  key.Binding
	Detail     key.Binding
	Clear      key.Binding
	Refresh    key.Binding
	Quit       key.Binding
	Help       key.Binding
}

var DefaultKeyMap = KeyMap{
	ScrollUp: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "earlier"),
	),
	ScrollDown: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "later"),
	),
	PageUp: key.NewBinding(
		key.WithKeys("pgup", "ctrl+u"),
		key.WithHelp("pgup", "page up"),
	),
	PageDown: key.NewBinding(
		key.WithKeys("pgdown", "ctrl+d"),
		key.WithHelp("pgdn", "page down"),
	),
	NextDay: key.NewBinding(
		key.WithKeys("right", "l"),
		key.WithHelp("→/l", "next day"),
	),
	PrevDay: key.NewBinding(
		key.WithKeys("left", "h"),
		key.WithHelp("←/h", "prev day"),
	),
	NextWeek: key.NewBinding(
		key.WithKeys("shift+right", "L"),
		key.WithHelp("L", "next week"),
	),
	PrevWeek: key.NewBinding(
		key.WithKeys("shift+left", "H"),
		key.WithHelp("H", "prev week"),
	),
	Today: key.NewBinding(
		key.WithKeys("t"),
		key.WithHelp("t", "today"),
	),
	NextView: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next appointment"),
	),
	PrevView: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev appointment"),
	),
	SelectSlot: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "select slot"),
	),
	Edit: key.NewBinding(
		key.WithKeys("e", "enter"),
		key.WithHelp("e", "edit title"),
	),
	Open: key.NewBinding(
		key.WithKeys("o"),
		key.WithHelp("o", "join meeting"),
	),
	ViewEvent: key.NewBinding(
		key.WithKeys("v"),
		key.WithHelp("v", "open in calendar"),
	),
	Detail: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "details"),
	),
	Clear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear selection"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r", "ctrl+r"),
		key.WithHelp("r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
}

// ShortHelp lists the bindings shown in the help bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevDay, k.NextWeek, k.Today, k.NextView, k.Edit, k.Refresh, k.Quit, k.Help}
}

// FullHelp lists every binding for the help panel.
func (k KeyMap) FullHelp() []key.Binding {
	return []key.Binding{
		k.ScrollUp, k.ScrollDown, k.PageUp, k.PageDown,
		k.PrevDay, k.NextDay, k.PrevWeek, k.NextWeek, k.Today,
		k.NextView, k.PrevView, k.SelectSlot, k.Edit, k.Open, k.ViewEvent,
		k.Detail, k.Clear, k.Refresh, k.Quit, k.Help,
	}
}
