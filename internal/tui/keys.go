package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Script    key.Binding
	Up        key.Binding
	Down      key.Binding
	Toggle    key.Binding
	All       key.Binding
	Combos    key.Binding
	Start     key.Binding
	Choose    key.Binding
	Left      key.Binding
	Right     key.Binding
	Submit    key.Binding
	Restart   key.Binding
	Retry     key.Binding
	Home      key.Binding
	Selection key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Script:    key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "script")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "toggle")),
		All:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "all")),
		Combos:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "combinations")),
		Start:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "start")),
		Choose:    key.NewBinding(key.WithKeys("1", "2", "3", "4", "5"), key.WithHelp("1-5", "choose")),
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
		Right:     key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next")),
		Submit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "pick")),
		Restart:   key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "restart")),
		Retry:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "try again")),
		Home:      key.NewBinding(key.WithKeys("h", "esc"), key.WithHelp("h", "home")),
		Selection: key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "groups")),
	}
}

// screenKeys adapts a binding list to help.KeyMap.
type screenKeys []key.Binding

func (s screenKeys) ShortHelp() []key.Binding  { return s }
func (s screenKeys) FullHelp() [][]key.Binding { return [][]key.Binding{s} }

func (k keyMap) selectionHelp() screenKeys {
	return screenKeys{k.Script, k.Up, k.Down, k.Toggle, k.All, k.Combos, k.Start, k.Quit}
}

func (k keyMap) quizHelp() screenKeys {
	return screenKeys{k.Choose, k.Left, k.Right, k.Submit, k.Restart, k.Selection}
}

func (k keyMap) completedHelp() screenKeys {
	return screenKeys{k.Retry, k.Home, k.Quit}
}
