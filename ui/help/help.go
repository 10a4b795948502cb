package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/tmc/maskfield/ui/keymap"
)

var _ help.KeyMap = (*Model)(nil)

// Model wraps the bubbles/help model for the masked prompt.
type Model struct {
	inner  help.Model
	keyMap keymap.KeyMap
	Show   bool
}

// New creates a hidden help model over km.
func New(km keymap.KeyMap) Model {
	h := help.New()
	h.ShowAll = false
	return Model{inner: h, keyMap: km}
}

// Init does nothing.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update toggles visibility on ToggleHelp and tracks the window width.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keyMap.ToggleHelp) {
			m.Show = !m.Show
			m.inner.ShowAll = m.Show
		}
	case tea.WindowSizeMsg:
		m.inner.Width = msg.Width
	}
	return m, nil
}

// View renders the short help line, or the full table while toggled on.
func (m Model) View() string {
	return m.inner.View(m)
}

// ShortHelp implements help.KeyMap.
func (m Model) ShortHelp() []key.Binding {
	return []key.Binding{m.keyMap.Submit, m.keyMap.Cancel, m.keyMap.ToggleHelp}
}

// FullHelp implements help.KeyMap.
func (m Model) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{m.keyMap.Submit, m.keyMap.Cancel},
		{m.keyMap.Paste, m.keyMap.Clear, m.keyMap.ToggleHelp},
	}
}

// SetWidth updates the width for the help view.
func (m *Model) SetWidth(w int) {
	m.inner.Width = w
}
