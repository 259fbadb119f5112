package console

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the console key bindings.
type keyMap struct {
	Quit        key.Binding
	Help        key.Binding
	SwitchTab   key.Binding
	Up          key.Binding
	Down        key.Binding
	Toggle      key.Binding
	ToggleAll   key.Binding
	Clear       key.Binding
	Search      key.Binding
	Distributor key.Binding
	Status      key.Binding
	Review      key.Binding
	Remove      key.Binding
	Commit      key.Binding
	Cancel      key.Binding
	NextPage    key.Binding
	PrevPage    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		SwitchTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "Available/Synced"),
		),
		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "Select row"),
		),
		ToggleAll: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Select all visible"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "Clear selection"),
		),
		Search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "Search"),
		),
		Distributor: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "Cycle distributor"),
		),
		Status: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle status"),
		),
		Review: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Review selection"),
		),
		Remove: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "Remove from review"),
		),
		Commit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "Apply updates"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Close review"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("n", "right"),
			key.WithHelp("n", "Next page"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("p", "left"),
			key.WithHelp("p", "Previous page"),
		),
	}
}

func (k keyMap) browseHelp() []key.Binding {
	return []key.Binding{k.SwitchTab, k.Up, k.Down, k.Toggle, k.ToggleAll, k.Clear, k.Search, k.Distributor, k.Status, k.Review, k.NextPage, k.PrevPage, k.Help, k.Quit}
}

func (k keyMap) reviewHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Remove, k.Commit, k.Cancel}
}
