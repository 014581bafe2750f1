package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause    key.Binding
	Faster   key.Binding
	Slower   key.Binding
	Bigger   key.Binding
	Smaller  key.Binding
	Color    key.Binding
	Settings key.Binding
	Open     key.Binding
	QA       key.Binding
	Copy     key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Pause:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		Faster:   key.NewBinding(key.WithKeys("+", "=", "right"), key.WithHelp("+/→", "faster")),
		Slower:   key.NewBinding(key.WithKeys("-", "_", "left"), key.WithHelp("-/←", "slower")),
		Bigger:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "bigger")),
		Smaller:  key.NewBinding(key.WithKeys("["), key.WithHelp("[", "smaller")),
		Color:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "color")),
		Settings: key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "settings")),
		Open:     key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open")),
		QA:       key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "questions")),
		Copy:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy sentence")),
		Help:     key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.Faster, k.Slower, k.Open, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.Faster, k.Slower},
		{k.Bigger, k.Smaller, k.Color},
		{k.Settings, k.Open, k.QA},
		{k.Copy, k.Help, k.Quit},
	}
}
