package teaui

import "github.com/charmbracelet/bubbles/v2/key"

// KeyMap holds the application level bindings. Grid keys are handled by the
// grid itself.
type KeyMap struct {
	Quit        key.Binding
	Help        key.Binding
	Command     key.Binding
	FocusToggle key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
	Reload      key.Binding

	SearchNext key.Binding
	SearchPrev key.Binding
	Close      key.Binding
}

// DefaultKeyMap is the built-in binding set.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Command: key.NewBinding(
			key.WithKeys(":"),
			key.WithHelp(":", "command"),
		),
		FocusToggle: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "tables"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("ctrl+pgdown"),
			key.WithHelp("ctrl+pgdn", "next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("ctrl+pgup"),
			key.WithHelp("ctrl+pgup", "previous page"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload"),
		),
		SearchNext: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "next match"),
		),
		SearchPrev: key.NewBinding(
			key.WithKeys("shift+enter"),
			key.WithHelp("shift+enter", "previous match"),
		),
		Close: key.NewBinding(
			key.WithKeys("esc", "q"),
			key.WithHelp("esc", "close"),
		),
	}
}

// ShortHelp lists the bindings shown in the title bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Command, k.FocusToggle, k.Quit}
}

// FullHelp lists every application binding.
func (k KeyMap) FullHelp() []key.Binding {
	return []key.Binding{
		k.Command, k.FocusToggle, k.NextPage, k.PrevPage, k.Reload,
		k.SearchNext, k.SearchPrev, k.Help, k.Close, k.Quit,
	}
}
