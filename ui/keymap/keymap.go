package keymap

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the masked prompt's keybindings.
// Editing keys (backspace, word deletion, cursor motion) belong to the text input itself.
type KeyMap struct {
	Submit key.Binding
	Cancel key.Binding
	Paste  key.Binding // reads the system clipboard
	Clear  key.Binding

	ToggleHelp key.Binding
}

// DefaultKeyMap returns the default bindings. No binding uses a printable key,
// since every printable key is password input.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		Cancel: key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("ctrl+c/esc", "cancel")),
		Paste:  key.NewBinding(key.WithKeys("ctrl+v"), key.WithHelp("ctrl+v", "paste")),
		Clear:  key.NewBinding(key.WithKeys("ctrl+l"), key.WithHelp("ctrl+l", "clear")),

		ToggleHelp: key.NewBinding(key.WithKeys("f1"), key.WithHelp("f1", "toggle help")),
	}
}
