package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	enter  key.Binding
	cancel key.Binding
	quit   key.Binding
	sync   key.Binding
	flush  key.Binding
}

var keys = keyMap{
	enter:  key.NewBinding(key.WithKeys("enter")),
	cancel: key.NewBinding(key.WithKeys("esc", "ctrl+c")),
	quit:   key.NewBinding(key.WithKeys("q", "ctrl+c")),
	sync:   key.NewBinding(key.WithKeys("s")),
	flush:  key.NewBinding(key.WithKeys("f")),
}
