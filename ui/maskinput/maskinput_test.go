package maskinput

import (
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap/zaptest"

	"github.com/tmc/maskfield"
)

func newFocused(t *testing.T, opts ...Option) Model {
	t.Helper()
	opts = append([]Option{WithLogger(zaptest.NewLogger(t).Sugar())}, opts...)
	m := New('*', opts...)
	m.Focus()
	return m
}

func typeString(m Model, s string) Model {
	for _, r := range s {
		m, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return m
}

func TestTypingShowsOnlyMask(t *testing.T) {
	m := newFocused(t)
	typed := ""
	for _, r := range "pa55wörd" {
		m = typeString(m, string(r))
		typed += string(r)
		if m.Value() != typed {
			t.Fatalf("Value() = %q, want %q", m.Value(), typed)
		}
		if want := maskfield.Render(len([]rune(typed)), '*'); m.Display() != want {
			t.Fatalf("Display() = %q, want %q", m.Display(), want)
		}
		if m.Position() != m.Len() {
			t.Fatalf("caret at %d, want tail %d", m.Position(), m.Len())
		}
	}
	if strings.Contains(m.View(), "pa55") {
		t.Errorf("View() leaks the value: %q", m.View())
	}
}

func TestBackspaceAndMidEdit(t *testing.T) {
	m := newFocused(t)
	m = typeString(m, "abcd")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Value() != "abc" {
		t.Fatalf("after backspace Value() = %q", m.Value())
	}

	// Before the guard fires the caret can sit mid-value; edits still land there.
	m.SetCursor(1)
	m = typeString(m, "*")
	if m.Value() != "a*bc" || m.Display() != "****" {
		t.Errorf("Value() = %q Display() = %q", m.Value(), m.Display())
	}
	if m.Position() != 4 {
		t.Errorf("caret at %d after edit, want 4", m.Position())
	}
}

func TestSubmitAndCancel(t *testing.T) {
	m := newFocused(t)
	m = typeString(m, "hunter2")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("enter returned no command")
	}
	if got, ok := cmd().(SubmitMsg); !ok || got.Value != "hunter2" {
		t.Errorf("enter produced %#v", cmd())
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c returned no command")
	}
	if _, ok := cmd().(CancelMsg); !ok {
		t.Errorf("ctrl+c produced %#v", cmd())
	}
}

func TestPaste(t *testing.T) {
	orig := ReadClipboard
	t.Cleanup(func() { ReadClipboard = orig })

	m := newFocused(t)
	m = typeString(m, "ab")

	ReadClipboard = func() (string, error) { return "c*d", nil }
	m, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	if cmd == nil {
		t.Fatal("ctrl+v returned no command")
	}
	m, _ = m.Update(cmd())
	if m.Value() != "abc*d" || m.Display() != "*****" {
		t.Errorf("after paste Value() = %q Display() = %q", m.Value(), m.Display())
	}

	ReadClipboard = func() (string, error) { return "", errors.New("no clipboard") }
	m, cmd = m.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	m, _ = m.Update(cmd())
	if m.Err == nil || m.Value() != "abc*d" {
		t.Errorf("after failed paste Err = %v Value() = %q", m.Err, m.Value())
	}
}

func TestClear(t *testing.T) {
	m := newFocused(t)
	m = typeString(m, "secret")
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlL})
	if m.Value() != "" || m.Display() != "" {
		t.Errorf("after clear Value() = %q Display() = %q", m.Value(), m.Display())
	}
}

func TestCopiesKeepTheirOwnValue(t *testing.T) {
	m := newFocused(t)
	m = typeString(m, "abc")
	saved := m

	m = typeString(m, "def")
	if saved.Value() != "abc" || saved.Len() != 3 {
		t.Errorf("earlier copy changed: Value() = %q Len() = %d", saved.Value(), saved.Len())
	}
	m.Reset()
	if saved.Value() != "abc" {
		t.Errorf("Reset changed an earlier copy: %q", saved.Value())
	}

	saved = typeString(saved, "x")
	if saved.Value() != "abcx" || m.Value() != "" {
		t.Errorf("saved = %q, m = %q", saved.Value(), m.Value())
	}
}

func TestCaretGuardTicks(t *testing.T) {
	m := newFocused(t, WithInterval(10*time.Millisecond))
	m = typeString(m, "abc")
	m.SetCursor(0)

	m, cmd := m.Update(caretTickMsg{id: m.id, gen: m.gen})
	if m.Position() != 3 {
		t.Errorf("caret at %d after tick, want 3", m.Position())
	}
	if cmd == nil {
		t.Error("tick did not reschedule")
	}

	// Ticks from a previous focus or another input are ignored.
	m.SetCursor(1)
	for _, msg := range []caretTickMsg{{id: m.id, gen: m.gen - 1}, {id: m.id + 1000, gen: m.gen}} {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		if cmd != nil || m.Position() != 1 {
			t.Errorf("stale tick %+v: caret %d, cmd %v", msg, m.Position(), cmd != nil)
		}
	}

	m.Blur()
	m, cmd = m.Update(caretTickMsg{id: m.id, gen: m.gen})
	if cmd != nil {
		t.Error("tick rescheduled while blurred")
	}
}

func TestBlurredIgnoresKeys(t *testing.T) {
	m := New('#')
	m = typeString(m, "abc")
	if m.Value() != "" {
		t.Errorf("blurred input accepted %q", m.Value())
	}
	if m.Symbol() != '#' {
		t.Errorf("Symbol() = %q", m.Symbol())
	}
}

func TestLiteralPolicyDrop(t *testing.T) {
	m := newFocused(t, WithLiteralPolicy(maskfield.LiteralDrop))
	m = typeString(m, "a*")
	// The edit is known exactly, so a typed mask symbol is kept under either policy.
	if m.Value() != "a*" {
		t.Errorf("Value() = %q", m.Value())
	}
}
