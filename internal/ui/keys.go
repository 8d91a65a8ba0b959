package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the application.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding

	// Submission
	Submit      key.Binding
	ShowResults key.Binding

	// Results
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	OpenLink key.Binding
	CopyLink key.Binding
	Reload   key.Binding
	Back     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		// Global
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),

		// Submission
		Submit: key.NewBinding(
			key.WithKeys("s", "ctrl+s"),
			key.WithHelp("s", "Upload image"),
		),
		ShowResults: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Latest results"),
		),

		// Results
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Previous item"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Next item"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "First item"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Last item"),
		),
		OpenLink: key.NewBinding(
			key.WithKeys("enter", "o"),
			key.WithHelp("enter/o", "Open link"),
		),
		CopyLink: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "Copy link"),
		),
		Reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Reload"),
		),
		Back: key.NewBinding(
			key.WithKeys("b", "esc"),
			key.WithHelp("b/esc", "New search"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.ShowResults},
		{k.Up, k.Down, k.Top, k.Bottom},
		{k.OpenLink, k.CopyLink, k.Reload, k.Back},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
