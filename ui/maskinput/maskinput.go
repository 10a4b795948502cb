// Package maskinput provides a bubbletea text input that only ever displays
// mask symbols. The input's own buffer holds the mask; the true value lives in
// a maskfield.Masker and is updated from each edit the input makes.
package maskinput

import (
	"sync/atomic"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/tmc/maskfield"
	"github.com/tmc/maskfield/ui/keymap"
)

var lastID atomic.Int64

func nextID() int { return int(lastID.Add(1)) }

// SubmitMsg is emitted when the user submits the field.
type SubmitMsg struct {
	Value string
}

// CancelMsg is emitted when the user cancels.
type CancelMsg struct{}

type (
	pasteMsg     string
	pasteErrMsg  struct{ err error }
	caretTickMsg struct{ id, gen int }
)

// ReadClipboard reads the system clipboard for the paste binding.
var ReadClipboard = clipboard.ReadAll

// Model is a masked single line input. Models are values: the masker is copied
// before every change, so an earlier copy keeps its own true value.
type Model struct {
	input    textinput.Model
	keyMap   keymap.KeyMap
	masker   *maskfield.Masker
	policy   maskfield.LiteralPolicy
	rule     maskfield.ConfineRule
	interval time.Duration
	log      *zap.SugaredLogger

	// id and gen tag caret ticks so stale ticks from an earlier focus are dropped.
	id  int
	gen int

	// Err holds the last clipboard error.
	Err error
}

// Option configures a Model.
type Option func(*Model)

// WithRule sets the caret confinement rule.
func WithRule(r maskfield.ConfineRule) Option {
	return func(m *Model) { m.rule = r }
}

// WithInterval sets the caret check interval.
func WithInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.interval = d
		}
	}
}

// WithLiteralPolicy sets how typed mask symbols are treated.
func WithLiteralPolicy(p maskfield.LiteralPolicy) Option {
	return func(m *Model) { m.policy = p }
}

// WithKeyMap replaces the default key bindings.
func WithKeyMap(km keymap.KeyMap) Option {
	return func(m *Model) { m.keyMap = km }
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(m *Model) {
		if l != nil {
			m.log = l
		}
	}
}

// New returns a blurred Model masking with symbol (zero means maskfield.DefaultSymbol).
func New(symbol rune, opts ...Option) Model {
	m := Model{
		keyMap:   keymap.DefaultKeyMap(),
		interval: maskfield.DefaultPollInterval,
		log:      zap.NewNop().Sugar(),
		id:       nextID(),
	}
	for _, o := range opts {
		o(&m)
	}
	m.log = m.log.Named("maskinput")
	m.masker = maskfield.NewMasker(symbol,
		maskfield.WithLiteralPolicy(m.policy),
		maskfield.WithLogger(m.log))
	m.input = textinput.New()
	m.input.EchoMode = textinput.EchoNormal
	m.input.Prompt = "> "
	return m
}

// Value returns the true value.
func (m Model) Value() string { return m.masker.Value() }

// Len returns the number of runes in the true value.
func (m Model) Len() int { return m.masker.Len() }

// Symbol returns the mask symbol.
func (m Model) Symbol() rune { return m.masker.Symbol() }

// Display returns what the input shows.
func (m Model) Display() string { return m.input.Value() }

// Position returns the caret position in runes.
func (m Model) Position() int { return m.input.Position() }

// SetCursor moves the caret. The caret guard moves it back to the tail.
func (m *Model) SetCursor(pos int) { m.input.SetCursor(pos) }

// SetPrompt sets the prompt shown before the field.
func (m *Model) SetPrompt(p string) { m.input.Prompt = p }

// SetPlaceholder sets the text shown while the field is empty.
func (m *Model) SetPlaceholder(p string) { m.input.Placeholder = p }

// Focused reports whether the field has focus.
func (m Model) Focused() bool { return m.input.Focused() }

// Focus focuses the field and starts the caret guard.
func (m *Model) Focus() tea.Cmd {
	m.gen++
	return tea.Batch(m.input.Focus(), m.tick())
}

// Blur removes focus and stops the caret guard.
func (m *Model) Blur() {
	m.gen++
	m.input.Blur()
}

// Reset clears the true value and the display.
func (m *Model) Reset() {
	m.masker = m.masker.Clone()
	m.masker.Reset()
	m.input.Reset()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case caretTickMsg:
		if msg.id != m.id || msg.gen != m.gen || !m.input.Focused() {
			return m, nil
		}
		m.confine()
		return m, m.tick()

	case pasteMsg:
		pos := m.input.Position()
		m.apply(maskfield.Edit{Start: pos, End: pos, Inserted: string(msg)})
		return m, nil

	case pasteErrMsg:
		m.Err = msg.err
		m.log.Debugw("clipboard read failed", "error", msg.err)
		return m, nil

	case tea.KeyMsg:
		if !m.input.Focused() {
			return m, nil
		}
		switch {
		case key.Matches(msg, m.keyMap.Submit):
			v := m.Value()
			return m, func() tea.Msg { return SubmitMsg{Value: v} }
		case key.Matches(msg, m.keyMap.Cancel):
			return m, func() tea.Msg { return CancelMsg{} }
		case key.Matches(msg, m.keyMap.Paste):
			return m, paste
		case key.Matches(msg, m.keyMap.Clear):
			m.Reset()
			return m, nil
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if after := m.input.Value(); after != before {
			m.apply(maskfield.DiffEdit(before, after, m.input.Position()))
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m Model) View() string {
	return m.input.View()
}

// apply records e in the true value and redraws the mask with the caret at the tail.
func (m *Model) apply(e maskfield.Edit) {
	m.masker = m.masker.Clone()
	m.input.SetValue(m.masker.Apply(e))
	m.input.CursorEnd()
}

// confine moves a caret that left the tail back to it and reports whether it moved.
func (m *Model) confine() bool {
	pos := m.input.Position()
	start, _, moved := maskfield.Confine(m.rule, pos, pos, m.masker.Len())
	if moved {
		m.log.Debugw("caret confined", "from", pos, "to", start)
		m.input.SetCursor(start)
	}
	return moved
}

func (m Model) tick() tea.Cmd {
	id, gen := m.id, m.gen
	return tea.Tick(m.interval, func(time.Time) tea.Msg {
		return caretTickMsg{id: id, gen: gen}
	})
}

func paste() tea.Msg {
	s, err := ReadClipboard()
	if err != nil {
		return pasteErrMsg{err}
	}
	return pasteMsg(s)
}
