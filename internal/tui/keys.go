package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle       key.Binding
	Skip         key.Binding
	Drink        key.Binding
	Undo         key.Binding
	Shorter      key.Binding
	Longer       key.Binding
	Smart        key.Binding
	Less         key.Binding
	More         key.Binding
	WakeEarlier  key.Binding
	WakeLater    key.Binding
	SleepEarlier key.Binding
	SleepLater   key.Binding
	Hours        key.Binding
	GoalMode     key.Binding
	Lighter      key.Binding
	Heavier      key.Binding
	GoalDown     key.Binding
	GoalUp       key.Binding
	Help         key.Binding
	Quit         key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:       key.NewBinding(key.WithKeys("s", " "), key.WithHelp("s", "start/pause")),
		Skip:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "skip")),
		Drink:        key.NewBinding(key.WithKeys("d", "enter"), key.WithHelp("d", "drink")),
		Undo:         key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "undo")),
		Shorter:      key.NewBinding(key.WithKeys("["), key.WithHelp("[", "interval -15m")),
		Longer:       key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "interval +15m")),
		Smart:        key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "smart schedule")),
		Less:         key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "portion -50")),
		More:         key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "portion +50")),
		WakeEarlier:  key.NewBinding(key.WithKeys("W"), key.WithHelp("W", "wake -15m")),
		WakeLater:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "wake +15m")),
		SleepEarlier: key.NewBinding(key.WithKeys("B"), key.WithHelp("B", "bedtime -15m")),
		SleepLater:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "bedtime +15m")),
		Hours:        key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "set awake hours")),
		GoalMode:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "recommended/custom goal")),
		Lighter:      key.NewBinding(key.WithKeys("K"), key.WithHelp("K", "weight -1kg")),
		Heavier:      key.NewBinding(key.WithKeys("k"), key.WithHelp("k", "weight +1kg")),
		GoalDown:     key.NewBinding(key.WithKeys("G"), key.WithHelp("G", "goal -250")),
		GoalUp:       key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "goal +250")),
		Help:         key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Drink, k.Skip, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Skip, k.Drink, k.Undo},
		{k.Shorter, k.Longer, k.Smart, k.Less, k.More},
		{k.WakeEarlier, k.WakeLater, k.SleepEarlier, k.SleepLater, k.Hours},
		{k.GoalMode, k.Lighter, k.Heavier, k.GoalDown, k.GoalUp},
		{k.Help, k.Quit},
	}
}
